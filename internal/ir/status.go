package ir

import (
	"sort"
	"strconv"
	"strings"
)

// statusRank orders response keys: numeric codes, then wildcard classes such
// as 2XX, then anything unrecognized, then default.
func statusRank(code string) (int, int) {
	if n, err := strconv.Atoi(code); err == nil && len(code) == 3 {
		return 0, n
	}
	upper := strings.ToUpper(code)
	if len(upper) == 3 && upper[0] >= '1' && upper[0] <= '5' && upper[1:] == "XX" {
		return 1, int(upper[0] - '0')
	}
	if code == "default" {
		return 3, 0
	}
	return 2, 0
}

// StatusLess reports whether response key a sorts before b.
func StatusLess(a, b string) bool {
	ra, na := statusRank(a)
	rb, nb := statusRank(b)
	if ra != rb {
		return ra < rb
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

// SortStatusCodes sorts response keys in emission order.
func SortStatusCodes(codes []string) {
	sort.SliceStable(codes, func(i, j int) bool { return StatusLess(codes[i], codes[j]) })
}

// IsSuccessStatus reports whether a key is a 2xx code or the 2XX class.
func IsSuccessStatus(code string) bool {
	rank, n := statusRank(code)
	switch rank {
	case 0:
		return n >= 200 && n < 300
	case 1:
		return n == 2
	}
	return false
}
