// Package orchestrator coordinates all services to build the IR of a document.
// It provides a clean, simple coordinator that delegates to specialized services.
package orchestrator

import (
	"fmt"
	"sort"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/graph"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/loader"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/parser/base"
	"github.com/castr-dev/castr/internal/parser/route"
	"github.com/castr-dev/castr/internal/schema"
)

// Service coordinates the builder services. It keeps no per-build state,
// so one Service may build several documents concurrently.
type Service struct {
	loader *loader.Service
	config *Config
}

// Config holds orchestrator configuration options.
type Config struct {
	// MergeMalformedAllOf replaces required-only allOf members with an
	// object synthesized from their siblings.
	MergeMalformedAllOf   bool
	DefaultStatusBehavior route.DefaultStatusBehavior
	MaxDepth              int
	// TargetVersion is the OpenAPI version writers target; empty keeps the
	// source version.
	TargetVersion string
	Strict        bool
	// Excludes names directories ParseAll skips while walking.
	Excludes map[string]struct{}
	Debug    Debugger
}

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// DefaultConfig returns the configuration New uses for a nil config.
func DefaultConfig() *Config {
	return &Config{
		MergeMalformedAllOf:   true,
		DefaultStatusBehavior: route.DefaultStatusSpecCompliant,
		MaxDepth:              schema.DefaultMaxDepth,
	}
}

// New creates a new orchestrator service with the given configuration.
func New(config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}

	// Apply defaults for zero values
	if config.DefaultStatusBehavior == "" {
		config.DefaultStatusBehavior = route.DefaultStatusSpecCompliant
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = schema.DefaultMaxDepth
	}
	if config.Debug == nil {
		config.Debug = noOpDebugger{}
	}

	loaderService := loader.NewService(
		loader.WithStrict(config.Strict),
		loader.WithExcludes(config.Excludes),
		loader.WithDebugger(config.Debug),
	)

	return &Service{
		loader: loaderService,
		config: config,
	}
}

// ParseFile loads a document from disk and builds its IR.
func (s *Service) ParseFile(path string) (*ir.CastrDocument, []diag.Warning, error) {
	doc, err := s.loader.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return s.Build(doc)
}

// build holds the services of a single Build call.
type build struct {
	doc      *oas.Document
	out      *ir.CastrDocument
	warnings *diag.Collector
	builder  *schema.BuilderService
	base     *base.Service
	routes   *route.Service
	schemas  map[string]*ir.CastrSchema
}

// Build converts doc into IR. It either returns a complete document or an
// error; warnings are returned together once the build has finished.
func (s *Service) Build(doc *oas.Document) (*ir.CastrDocument, []diag.Warning, error) {
	debug := s.config.Debug
	b := s.newBuild(doc)

	// Step 1: general info
	debug.Printf("Orchestrator: Step 1 - Parsing general API info")
	if err := b.base.ParseGeneralInfo(b.out); err != nil {
		return nil, nil, fmt.Errorf("failed to parse general API info: %w", err)
	}

	// Step 2: components, own table first, then x-ext bundles by hash
	debug.Printf("Orchestrator: Step 2 - Building components")
	if err := b.buildComponents("", doc.Components); err != nil {
		return nil, nil, err
	}
	for _, hash := range sortedBundles(doc.XExt) {
		if err := b.buildComponents(hash, doc.XExt[hash].Components); err != nil {
			return nil, nil, err
		}
	}
	debug.Printf("Orchestrator: Built %d components (%d schemas)", len(b.out.Components), len(b.schemas))

	// Step 3: dependency graph
	debug.Printf("Orchestrator: Step 3 - Building dependency graph")
	g, err := graph.Build(b.schemas)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	b.out.DependencyGraph = g
	debug.Printf("Orchestrator: %d circular references", len(g.CircularReferences))

	// Step 4: operations and webhooks
	debug.Printf("Orchestrator: Step 4 - Parsing routes")
	if b.out.Operations, err = b.routes.ParseRoutes(); err != nil {
		return nil, nil, fmt.Errorf("failed to parse routes: %w", err)
	}
	if b.out.Webhooks, err = b.routes.ParseWebhooks(); err != nil {
		return nil, nil, fmt.Errorf("failed to parse webhooks: %w", err)
	}
	debug.Printf("Orchestrator: Parsed %d operations, %d webhooks", len(b.out.Operations), len(b.out.Webhooks))

	// Step 5: graph metadata on every schema site
	debug.Printf("Orchestrator: Step 5 - Annotating schema metadata")
	graph.Annotate(b.out, b.schemas)

	// Step 6: document indexes
	b.out.SchemaNames = schemaNames(b.out)
	b.out.Enums = enums(b.out)

	ws := b.warnings.Warnings()
	debug.Printf("Orchestrator: Build complete with %d warnings", len(ws))
	return b.out, ws, nil
}

func (s *Service) newBuild(doc *oas.Document) *build {
	warnings := &diag.Collector{}

	builder := schema.NewBuilder(doc)
	builder.SetMaxDepth(s.config.MaxDepth)
	builder.SetMergeMalformedAllOf(s.config.MergeMalformedAllOf)
	builder.SetWarnings(warnings)
	builder.SetDebugger(s.config.Debug)

	baseParser := base.NewService(doc)
	baseParser.SetDebugger(s.config.Debug)

	routeParser := route.NewService(doc, builder, baseParser)
	routeParser.SetDefaultStatusBehavior(s.config.DefaultStatusBehavior)
	routeParser.SetWarnings(warnings)
	routeParser.SetDebugger(s.config.Debug)

	target := s.config.TargetVersion
	if target == "" {
		target = doc.OpenAPI
	}

	return &build{
		doc: doc,
		out: &ir.CastrDocument{
			Version:       ir.FormatVersion,
			TargetVersion: target,
		},
		warnings: warnings,
		builder:  builder,
		base:     baseParser,
		routes:   routeParser,
		schemas:  make(map[string]*ir.CastrSchema),
	}
}

func sortedBundles(bundles map[string]*oas.Bundle) []string {
	var hashes []string
	for hash, bundle := range bundles {
		if bundle != nil {
			hashes = append(hashes, hash)
		}
	}
	sort.Strings(hashes)
	return hashes
}
