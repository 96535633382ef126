package orchestrator

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
)

// Result is the outcome of one document build.
type Result struct {
	Name     string
	Document *ir.CastrDocument
	Warnings []diag.Warning
}

// BuildAll builds several documents concurrently using an errgroup bounded
// by the number of CPUs. Results are sorted by name so output does not
// depend on goroutine scheduling order.
func (s *Service) BuildAll(docs map[string]*oas.Document) ([]*Result, error) {
	var (
		mu      sync.Mutex
		results []*Result
	)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for name, doc := range docs {
		if doc == nil {
			continue
		}

		g.Go(func() error {
			built, warnings, err := s.Build(doc)
			if err != nil {
				return fmt.Errorf("failed to build %s: %w", name, err)
			}

			mu.Lock()
			results = append(results, &Result{Name: name, Document: built, Warnings: warnings})
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
	return results, nil
}

// ParseAll loads every input and builds them with BuildAll. An input may be
// a document or a directory, which is walked for documents.
func (s *Service) ParseAll(inputs []string) ([]*Result, error) {
	docs := make(map[string]*oas.Document)
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			doc, err := s.loader.LoadFile(input)
			if err != nil {
				return nil, err
			}
			docs[input] = doc
			continue
		}
		found, err := s.loader.LoadSearchDirs([]string{input})
		if err != nil {
			return nil, err
		}
		for name, doc := range found.Documents {
			docs[name] = doc
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in %v", inputs)
	}
	return s.BuildAll(docs)
}
