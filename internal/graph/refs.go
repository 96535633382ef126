// Package graph builds the component dependency graph of a document and
// detects circular references.
package graph

import (
	"sort"

	"github.com/castr-dev/castr/internal/ir"
)

// RefSite is a `$ref` found in a schema tree together with where it was found.
type RefSite struct {
	Ref  string
	Path string
}

// CollectRefs walks a schema tree and returns every `$ref` in it, in walk
// order. Refs are not followed.
func CollectRefs(root *ir.CastrSchema, path string) []RefSite {
	var out []RefSite
	ir.Walk(root, path, func(p string, s *ir.CastrSchema) bool {
		if s.Ref != "" {
			out = append(out, RefSite{Ref: s.Ref, Path: p})
		}
		return true
	})
	return out
}

// UniqueRefs returns the distinct refs of sites, sorted.
func UniqueRefs(sites []RefSite) []string {
	seen := make(map[string]struct{}, len(sites))
	out := make([]string, 0, len(sites))
	for _, site := range sites {
		if _, ok := seen[site.Ref]; ok {
			continue
		}
		seen[site.Ref] = struct{}{}
		out = append(out, site.Ref)
	}
	sort.Strings(out)
	return out
}
