// Package registry decides which schemas become named declarations and gives
// those declarations stable, collision-free identifiers.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"
	"strings"
	"unicode"

	json "github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/castr-dev/castr/internal/ir"
)

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// Service hands out declaration names for one writer run. Names are
// resolved in registration order, so callers register in a deterministic
// order (sorted component names, then use sites in walk order).
type Service struct {
	used   map[string]struct{}
	byKey  map[string]map[string]string // key -> fingerprint -> name
	titler cases.Caser
	debug  Debugger
}

// NewService creates an empty registry.
func NewService() *Service {
	return &Service{
		used:   make(map[string]struct{}),
		byKey:  make(map[string]map[string]string),
		titler: cases.Title(language.English, cases.NoLower),
	}
}

// SetDebugger sets the debugger.
func (s *Service) SetDebugger(debug Debugger) {
	s.debug = debug
}

// Register returns the declaration name for schema registered under key.
// The same key and content always return the same name; a base identifier
// that is already taken gets `__2`, `__3`, ... appended.
func (s *Service) Register(key, base string, schema *ir.CastrSchema) string {
	fp := Fingerprint(schema)
	if names, ok := s.byKey[key]; ok {
		if name, ok := names[fp]; ok {
			return name
		}
	}

	ident := s.Identifier(base)
	name := ident
	for n := 2; s.taken(name); n++ {
		name = ident + "__" + strconv.Itoa(n)
	}
	s.used[name] = struct{}{}
	if s.byKey[key] == nil {
		s.byKey[key] = make(map[string]string)
	}
	s.byKey[key][fp] = name
	if s.debug != nil && name != ident {
		s.debug.Printf("name %s taken, registered %s for %s", ident, name, key)
	}
	return name
}

// Reserve marks a name as taken without binding it to a schema.
func (s *Service) Reserve(name string) {
	s.used[name] = struct{}{}
}

func (s *Service) taken(name string) bool {
	_, ok := s.used[name]
	return ok
}

// Identifier converts a component name or context phrase into a PascalCase
// identifier: `pet_owner` → `PetOwner`, `listPets` → `ListPets`.
func (s *Service) Identifier(base string) string {
	words := strings.FieldsFunc(base, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(s.titler.String(w))
	}
	ident := sb.String()
	if ident == "" {
		return "Schema"
	}
	if unicode.IsDigit(rune(ident[0])) {
		return "_" + ident
	}
	return ident
}

// ContextName builds a fallback base name from an operation and a role,
// e.g. ("listPets", "Response") → "ListPetsResponse".
func (s *Service) ContextName(operationID, role string) string {
	return s.Identifier(operationID + " " + role)
}

// Fingerprint returns a digest of the schema's structural content. Property
// insertion order and metadata do not affect it.
func Fingerprint(schema *ir.CastrSchema) string {
	h := sha256.New()
	writeCanonical(h, schema)
	return hex.EncodeToString(h.Sum(nil))
}

func writeCanonical(h hash.Hash, s *ir.CastrSchema) {
	if s == nil {
		h.Write([]byte("null;"))
		return
	}
	shallow := *s
	shallow.Properties, shallow.PatternProperties, shallow.DependentSchemas = nil, nil, nil
	shallow.Items, shallow.PrefixItems, shallow.Not = nil, nil, nil
	shallow.AllOf, shallow.OneOf, shallow.AnyOf = nil, nil, nil
	shallow.AdditionalProperties = stripAdditional(s.AdditionalProperties)
	shallow.UnevaluatedProperties = stripAdditional(s.UnevaluatedProperties)
	shallow.UnevaluatedItems = stripAdditional(s.UnevaluatedItems)
	shallow.Metadata = ir.SchemaMetadata{Nullable: s.Metadata.Nullable}
	if len(s.Required) > 0 {
		shallow.Required = append([]string{}, s.Required...)
		sort.Strings(shallow.Required)
	}
	data, err := json.Marshal(shallow)
	if err != nil {
		data = []byte(err.Error())
	}
	h.Write(data)
	for _, c := range ir.Children(s) {
		h.Write([]byte(c.Segment))
		writeCanonical(h, c.Schema)
	}
	h.Write([]byte(";"))
}

func stripAdditional(a *ir.Additional) *ir.Additional {
	if a == nil {
		return nil
	}
	return &ir.Additional{Allows: a.Allows}
}
