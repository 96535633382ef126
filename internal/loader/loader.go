package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/castr-dev/castr/internal/oas"
)

// LoadFile reads one JSON or YAML document.
func (s *Service) LoadFile(path string) (*oas.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := s.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return doc, nil
}

// LoadBytes decodes a JSON or YAML document. JSON is read by the YAML
// decoder, which keeps key order for both.
func (s *Service) LoadBytes(data []byte) (*oas.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if root.Kind == 0 {
		return nil, fmt.Errorf("decode document: empty input")
	}

	var doc oas.Document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	if err := s.check(&doc, &root); err != nil {
		return nil, err
	}
	s.debug.Printf("loaded OpenAPI %s document %q", doc.OpenAPI, doc.Info.Title)
	return &doc, nil
}

// check reports version and external-ref problems; they are errors in
// strict mode and debug messages otherwise.
func (s *Service) check(doc *oas.Document, root *yaml.Node) error {
	var problems []string
	if !strings.HasPrefix(doc.OpenAPI, "3.0") && !strings.HasPrefix(doc.OpenAPI, "3.1") {
		problems = append(problems, fmt.Sprintf("unsupported openapi version %q", doc.OpenAPI))
	}
	for _, ref := range ExternalRefs(root) {
		problems = append(problems, fmt.Sprintf("external reference %q is not bundled", ref))
	}
	if len(problems) == 0 {
		return nil
	}
	if s.strict {
		return fmt.Errorf("invalid document: %s", strings.Join(problems, "; "))
	}
	for _, p := range problems {
		s.debug.Printf("warning: %s", p)
	}
	return nil
}

// ExternalRefs lists the distinct `$ref` values that do not start with "#",
// sorted.
func ExternalRefs(root *yaml.Node) []string {
	seen := map[string]bool{}
	stack := []*yaml.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if n.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(n.Content); i += 2 {
				k, v := n.Content[i], n.Content[i+1]
				if k.Value == "$ref" && v.Kind == yaml.ScalarNode && !strings.HasPrefix(v.Value, "#") {
					seen[v.Value] = true
				}
			}
		}
		stack = append(stack, n.Content...)
	}
	refs := make([]string, 0, len(seen))
	for r := range seen {
		refs = append(refs, r)
	}
	sort.Strings(refs)
	return refs
}

// LoadSearchDirs loads every document under the given directories, keyed
// by path.
func (s *Service) LoadSearchDirs(dirs []string) (*LoadResult, error) {
	result := &LoadResult{
		Documents: make(map[string]*oas.Document),
	}

	for _, searchDir := range dirs {
		absDir, err := filepath.Abs(searchDir)
		if err != nil {
			return nil, err
		}
		if err := s.walkDirectory(absDir, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// walkDirectory walks a directory and loads matching files
func (s *Service) walkDirectory(searchDir string, result *LoadResult) error {
	return filepath.Walk(searchDir, func(path string, f os.FileInfo, wError error) error {
		if wError != nil {
			return fmt.Errorf("failed to access path %q, err: %v", path, wError)
		}

		if err := s.shouldSkipDir(path, f); err != nil {
			return err
		}

		if f.IsDir() || s.shouldSkipFile(path) {
			return nil
		}

		doc, err := s.LoadFile(path)
		if err != nil {
			return err
		}
		result.Documents[path] = doc
		return nil
	})
}

// shouldSkipFile checks if a file should be skipped
func (s *Service) shouldSkipFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range s.extensions {
		if ext == want {
			return false
		}
	}
	return true
}

// shouldSkipDir checks if a directory should be skipped
func (s *Service) shouldSkipDir(path string, f os.FileInfo) error {
	if !f.IsDir() {
		return nil
	}

	if len(f.Name()) > 1 && f.Name()[0] == '.' && f.Name() != ".." {
		return filepath.SkipDir
	}

	if s.excludes != nil {
		if _, ok := s.excludes[path]; ok {
			return filepath.SkipDir
		}
		if _, ok := s.excludes[f.Name()]; ok {
			return filepath.SkipDir
		}
	}

	return nil
}
