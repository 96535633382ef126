// Package gen builds the IR of every input document and writes the requested
// artifacts for each.
package gen

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode"

	json "github.com/goccy/go-json"
	"golang.org/x/tools/imports"
	"sigs.k8s.io/yaml"

	"github.com/castr-dev/castr/internal/console"
	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/irjson"
	"github.com/castr-dev/castr/internal/orchestrator"
	"github.com/castr-dev/castr/internal/parser/route"
	"github.com/castr-dev/castr/internal/registry"
	"github.com/castr-dev/castr/internal/writer/jsonschema"
	"github.com/castr-dev/castr/internal/writer/openapi"
	"github.com/castr-dev/castr/internal/writer/swagger"
	"github.com/castr-dev/castr/internal/writer/types"
	"github.com/castr-dev/castr/internal/writer/zod"
)

type genTypeWriter func(*Config, *artifact) error

// Gen presents a generate tool for castr.
type Gen struct {
	json          func(data interface{}) ([]byte, error)
	jsonToYAML    func(data []byte) ([]byte, error)
	outputTypeMap map[string]genTypeWriter
	warnings      io.Writer
	debug         Debugger
}

// Debugger is the interface that wraps the basic Printf method.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// New creates a new Gen.
func New() *Gen {
	gen := Gen{
		json:       json.Marshal,
		jsonToYAML: yaml.JSONToYAML,
		warnings:   os.Stderr,
		debug:      log.New(os.Stdout, "", log.LstdFlags),
	}

	gen.outputTypeMap = map[string]genTypeWriter{
		"json":               gen.writeOpenAPIJSON,
		"yaml":               gen.writeOpenAPIYAML,
		"yml":                gen.writeOpenAPIYAML,
		"jsonschema":         gen.jsonSchemaWriter(jsonschema.Draft2020),
		"jsonschema-draft04": gen.jsonSchemaWriter(jsonschema.Draft04),
		"swagger":            gen.writeSwagger,
		"types":              gen.writeTypes,
		"zod":                gen.writeZod,
		"ir":                 gen.writeIR,
		"go":                 gen.writeGoDoc,
	}

	return &gen
}

// OutputTypes lists the supported output types, sorted.
func (g *Gen) OutputTypes() []string {
	return ir.SortedKeys(g.outputTypeMap)
}

// SetWarningOutput sets where build and writer warnings are printed.
func (g *Gen) SetWarningOutput(w io.Writer) {
	g.warnings = w
}

// Config presents Gen configurations.
type Config struct {
	Debugger Debugger

	// Inputs are documents or directories searched for documents
	Inputs []string

	// Excludes are directory names skipped while searching, comma separated
	Excludes string

	// OutputDir represents the output directory for all the generated files
	OutputDir string

	// OutputTypes define types of files which should be generated
	OutputTypes []string

	// TargetVersion is the OpenAPI version of the json and yaml outputs;
	// empty keeps each document's own version
	TargetVersion string

	// Strict turns downlevel warnings into errors and rejects documents with
	// unbundled references
	Strict bool

	// SkipValidation disables meta-schema validation of written documents
	SkipValidation bool

	// MaxDepth bounds schema nesting; zero uses the builder default
	MaxDepth int

	// DefaultStatus is the `default` response behavior: spec-compliant or auto-correct
	DefaultStatus string

	// KeepMalformedAllOf leaves required-only allOf members as they are
	KeepMalformedAllOf bool

	// ComplexityThreshold is the score at which inline schemas get their own
	// types and zod declarations; registry.AlwaysInline disables extraction
	ComplexityThreshold int

	// PackageName defines package name of generated go files
	PackageName string

	// GeneratedTime whether castr should write a timestamp into go files
	GeneratedTime bool
}

// artifact is one built document and the names its outputs are written under.
type artifact struct {
	source string
	stem   string // file name prefix
	ident  string // Go identifier prefix
	doc    *ir.CastrDocument
}

// Build builds the IR of every input and writes each requested output type.
func (g *Gen) Build(config *Config) error {
	if config.Debugger != nil {
		g.debug = config.Debugger
	}
	if len(config.Inputs) == 0 {
		return fmt.Errorf("no input documents")
	}
	for _, input := range config.Inputs {
		if _, err := os.Stat(input); os.IsNotExist(err) {
			return fmt.Errorf("input: %s does not exist", input)
		}
	}

	behavior, err := route.ParseDefaultStatusBehavior(config.DefaultStatus)
	if err != nil {
		return err
	}

	console.Logger.Debug("Build IR....")

	orc := orchestrator.New(&orchestrator.Config{
		MergeMalformedAllOf:   !config.KeepMalformedAllOf,
		DefaultStatusBehavior: behavior,
		MaxDepth:              config.MaxDepth,
		TargetVersion:         config.TargetVersion,
		Strict:                config.Strict,
		Excludes:              parseExcludes(config.Excludes),
		Debug:                 g.debug,
	})

	results, err := orc.ParseAll(config.Inputs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(config.OutputDir, os.ModePerm); err != nil {
		return err
	}

	artifacts := newArtifacts(results)
	for i, a := range artifacts {
		g.report(a, results[i].Warnings)
		for _, outputType := range config.OutputTypes {
			outputType = strings.ToLower(strings.TrimSpace(outputType))
			typeWriter, ok := g.outputTypeMap[outputType]
			if !ok {
				console.Logger.Warn("output type '%s' not supported", outputType)
				continue
			}
			if err := typeWriter(config, a); err != nil {
				return fmt.Errorf("%s: write %s: %w", a.source, outputType, err)
			}
		}
	}

	return nil
}

// newArtifacts names results after their file names. Results arrive sorted
// by path, so a repeated file name gets the same suffix on every run.
func newArtifacts(results []*orchestrator.Result) []*artifact {
	names := registry.NewService()
	stems := map[string]int{}
	out := make([]*artifact, len(results))
	for i, r := range results {
		base := filepath.Base(r.Name)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		stems[stem]++
		if n := stems[stem]; n > 1 {
			stem += "_" + strconv.Itoa(n)
		}
		out[i] = &artifact{
			source: r.Name,
			stem:   stem,
			ident:  names.Register(r.Name, stem, nil),
			doc:    r.Document,
		}
	}
	return out
}

func (g *Gen) report(a *artifact, ws diag.Warnings) {
	console.PrintWarnings(g.warnings, a.source, ws)
}

func (g *Gen) openAPIWriter(config *Config) *openapi.Writer {
	w := openapi.NewWriter()
	w.SetStrict(config.Strict)
	w.SetValidation(!config.SkipValidation)
	w.SetTargetVersion(config.TargetVersion)
	w.SetDebugger(g.debug)
	return w
}

func (g *Gen) writeOpenAPIJSON(config *Config, a *artifact) error {
	b, warnings, err := g.openAPIWriter(config).WriteJSON(a.doc)
	g.report(a, warnings)
	if err != nil {
		return err
	}
	return g.writeOutput(config, a.stem+".openapi.json", b)
}

func (g *Gen) writeOpenAPIYAML(config *Config, a *artifact) error {
	doc, warnings, err := g.openAPIWriter(config).Write(a.doc)
	g.report(a, warnings)
	if err != nil {
		return err
	}

	b, err := g.json(doc)
	if err != nil {
		return err
	}

	y, err := g.jsonToYAML(b)
	if err != nil {
		return fmt.Errorf("cannot covert json to yaml error: %s", err)
	}

	return g.writeOutput(config, a.stem+".openapi.yaml", y)
}

func (g *Gen) jsonSchemaWriter(dialect jsonschema.Dialect) genTypeWriter {
	suffix := ".schema.json"
	if dialect == jsonschema.Draft04 {
		suffix = ".draft04.schema.json"
	}
	return func(config *Config, a *artifact) error {
		w := jsonschema.NewWriter()
		w.SetDialect(dialect)
		w.SetValidation(!config.SkipValidation)
		w.SetDebugger(g.debug)

		b, warnings, err := w.Write(a.doc)
		g.report(a, warnings)
		if err != nil {
			return err
		}
		return g.writeOutput(config, a.stem+suffix, b)
	}
}

func (g *Gen) writeSwagger(config *Config, a *artifact) error {
	w := swagger.NewWriter()
	w.SetStrict(config.Strict)
	w.SetValidation(!config.SkipValidation)
	w.SetDebugger(g.debug)

	b, warnings, err := w.WriteJSON(a.doc)
	g.report(a, warnings)
	if err != nil {
		return err
	}
	return g.writeOutput(config, a.stem+".swagger.json", b)
}

func (g *Gen) declarations(config *Config, a *artifact) (*types.Result, error) {
	w := types.NewWriter()
	w.SetThreshold(config.ComplexityThreshold)
	w.SetDebugger(g.debug)
	return w.Write(a.doc)
}

func (g *Gen) writeTypes(config *Config, a *artifact) error {
	result, err := g.declarations(config, a)
	if err != nil {
		return err
	}
	return g.writeOutput(config, a.stem+".types.ts", types.Render(result))
}

func (g *Gen) writeZod(config *Config, a *artifact) error {
	result, err := g.declarations(config, a)
	if err != nil {
		return err
	}
	return g.writeOutput(config, a.stem+".zod.ts", zod.NewWriter().Write(result))
}

func (g *Gen) writeIR(config *Config, a *artifact) error {
	b, err := irjson.SerializeIndent(a.doc)
	if err != nil {
		return err
	}
	return g.writeOutput(config, a.stem+".ir.json", b)
}

func (g *Gen) writeGoDoc(config *Config, a *artifact) error {
	w := g.openAPIWriter(config)
	doc, warnings, err := w.WriteJSON(a.doc)
	g.report(a, warnings)
	if err != nil {
		return err
	}

	packageName := config.PackageName
	if packageName == "" {
		absOutputDir, err := filepath.Abs(config.OutputDir)
		if err != nil {
			return err
		}
		packageName = goPackageName(filepath.Base(absOutputDir))
	}

	filename := a.stem + "_docs.go"
	src, err := g.goDoc(filename, packageName, a, w.Version(a.doc), doc, config.GeneratedTime)
	if err != nil {
		return err
	}
	return g.writeOutput(config, filename, src)
}

func (g *Gen) goDoc(filename, packageName string, a *artifact, version string, doc []byte, generatedTime bool) ([]byte, error) {
	generator, err := template.New("castr_doc").Funcs(template.FuncMap{
		"printDoc": func(v string) string {
			// Sanitize backticks
			return strings.ReplaceAll(v, "`", "`+\"`\"+`")
		},
	}).Parse(packageTemplate)
	if err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	err = generator.Execute(buffer, struct {
		Timestamp     time.Time
		GeneratedTime bool
		PackageName   string
		Name          string
		Source        string
		Version       string
		Doc           string
	}{
		Timestamp:     time.Now(),
		GeneratedTime: generatedTime,
		PackageName:   packageName,
		Name:          a.ident,
		Source:        filepath.ToSlash(a.source),
		Version:       version,
		Doc:           string(doc),
	})
	if err != nil {
		return nil, err
	}

	// imports adds encoding/json for the decode helper
	code, err := imports.Process(filename, buffer.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", filename, err)
	}
	return code, nil
}

var packageTemplate = `// Code generated by castr{{ if .GeneratedTime }} at {{ .Timestamp }}{{ end }}. DO NOT EDIT.

package {{.PackageName}}

// {{.Name}}Source is the document {{.Name}}OpenAPI was built from.
const {{.Name}}Source = {{ printf "%q" .Source }}

// {{.Name}}OpenAPI is the OpenAPI {{.Version}} document.
const {{.Name}}OpenAPI = ` + "`{{ printDoc .Doc }}`" + `

// {{.Name}}Document decodes {{.Name}}OpenAPI.
func {{.Name}}Document() (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte({{.Name}}OpenAPI), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
`

func (g *Gen) writeOutput(config *Config, name string, b []byte) error {
	file := filepath.Join(config.OutputDir, name)
	if err := g.writeFile(b, file); err != nil {
		return err
	}
	console.Logger.Debug("create %s at %+v", name, file)
	return nil
}

func (g *Gen) writeFile(b []byte, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	defer f.Close()

	_, err = f.Write(b)

	return err
}

// goPackageName turns a directory name into a package name: runes that
// cannot appear in an identifier become '_', and a leading digit gets a '_'
// prefix.
func goPackageName(dir string) string {
	name := strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, dir)
	if name == "" || name == "_" {
		return "docs"
	}
	if unicode.IsDigit([]rune(name)[0]) {
		name = "_" + name
	}
	return name
}

// parseExcludes converts comma-separated exclude string to map.
func parseExcludes(excludes string) map[string]struct{} {
	result := make(map[string]struct{})
	if excludes == "" {
		return result
	}

	for _, exclude := range strings.Split(excludes, ",") {
		exclude = strings.TrimSpace(exclude)
		if exclude != "" {
			result[exclude] = struct{}{}
		}
	}
	return result
}
