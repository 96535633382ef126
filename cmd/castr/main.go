package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/castr-dev/castr/internal/config"
	"github.com/castr-dev/castr/internal/console"
	"github.com/castr-dev/castr/internal/gen"
)

const version = "v0.1.0"

const (
	configFlag              = "config"
	inputFlag               = "input"
	excludeFlag             = "exclude"
	outputFlag              = "output"
	outputTypesFlag         = "outputTypes"
	targetVersionFlag       = "targetVersion"
	strictFlag              = "strict"
	skipValidationFlag      = "skipValidation"
	maxDepthFlag            = "maxDepth"
	defaultStatusFlag       = "defaultStatus"
	keepMalformedAllOfFlag  = "keepMalformedAllOf"
	complexityThresholdFlag = "complexityThreshold"
	packageNameFlag         = "packageName"
	generatedTimeFlag       = "generatedTime"
	quietFlag               = "quiet"
	debugFlag               = "debug"
)

var buildFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    configFlag,
		Aliases: []string{"c"},
		Usage:   "Config file, castr.yaml in the working directory by default",
	},
	&cli.BoolFlag{
		Name:    quietFlag,
		Aliases: []string{"q"},
		Usage:   "Make the logger quiet.",
	},
	&cli.StringFlag{
		Name:    inputFlag,
		Aliases: []string{"i"},
		Usage:   "Documents or directories to build, comma separated",
	},
	&cli.StringFlag{
		Name:  excludeFlag,
		Usage: "Exclude directories when searching, comma separated",
	},
	&cli.StringFlag{
		Name:    outputFlag,
		Aliases: []string{"o"},
		Usage:   "Output directory for all the generated files",
	},
	&cli.StringFlag{
		Name:    outputTypesFlag,
		Aliases: []string{"ot"},
		Usage:   "Output types of generated files like json,yaml,swagger,zod",
	},
	&cli.StringFlag{
		Name:    targetVersionFlag,
		Aliases: []string{"tv"},
		Usage:   "OpenAPI version of the json and yaml outputs, 3.0.x or 3.1.x",
	},
	&cli.BoolFlag{
		Name:  strictFlag,
		Usage: "Fail on lossy conversions and unbundled references",
	},
	&cli.BoolFlag{
		Name:  skipValidationFlag,
		Usage: "Skip meta-schema validation of written documents",
	},
	&cli.IntFlag{
		Name:  maxDepthFlag,
		Usage: "Schema nesting limit",
	},
	&cli.StringFlag{
		Name:  defaultStatusFlag,
		Usage: "Behavior for `default` responses: spec-compliant or auto-correct",
	},
	&cli.BoolFlag{
		Name:  keepMalformedAllOfFlag,
		Usage: "Keep required-only allOf members as they are instead of merging them",
	},
	&cli.IntFlag{
		Name:    complexityThresholdFlag,
		Aliases: []string{"ct"},
		Usage:   "Score at which inline schemas get their own declarations, -1 never extracts",
	},
	&cli.StringFlag{
		Name:  packageNameFlag,
		Usage: "Package name of generated go files, the output directory name by default",
	},
	&cli.BoolFlag{
		Name:  generatedTimeFlag,
		Usage: "Write a timestamp into generated go files",
	},
	&cli.BoolFlag{
		Name:  debugFlag,
		Usage: "Enable debug mode, disabled by default",
	},
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// overlay copies the flags set on the command line over the loaded config.
func overlay(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet(inputFlag) {
		cfg.Inputs = splitList(ctx.String(inputFlag))
	}
	if ctx.IsSet(excludeFlag) {
		cfg.Excludes = splitList(ctx.String(excludeFlag))
	}
	if ctx.IsSet(outputFlag) {
		cfg.Output.Dir = ctx.String(outputFlag)
	}
	if ctx.IsSet(outputTypesFlag) {
		cfg.Output.Types = splitList(ctx.String(outputTypesFlag))
	}
	if ctx.IsSet(packageNameFlag) {
		cfg.Output.PackageName = ctx.String(packageNameFlag)
	}
	if ctx.IsSet(generatedTimeFlag) {
		cfg.Output.GeneratedTime = ctx.Bool(generatedTimeFlag)
	}
	if ctx.IsSet(targetVersionFlag) {
		cfg.Build.TargetVersion = ctx.String(targetVersionFlag)
	}
	if ctx.IsSet(strictFlag) {
		cfg.Build.Strict = ctx.Bool(strictFlag)
	}
	if ctx.IsSet(skipValidationFlag) {
		cfg.Build.Validate = !ctx.Bool(skipValidationFlag)
	}
	if ctx.IsSet(maxDepthFlag) {
		cfg.Build.MaxDepth = ctx.Int(maxDepthFlag)
	}
	if ctx.IsSet(defaultStatusFlag) {
		cfg.Build.DefaultStatus = ctx.String(defaultStatusFlag)
	}
	if ctx.IsSet(keepMalformedAllOfFlag) {
		cfg.Build.MergeMalformedAllOf = !ctx.Bool(keepMalformedAllOfFlag)
	}
	if ctx.IsSet(complexityThresholdFlag) {
		cfg.Build.ComplexityThreshold = ctx.Int(complexityThresholdFlag)
	}
	if ctx.IsSet(debugFlag) {
		cfg.Debug = ctx.Bool(debugFlag)
	}
}

func buildAction(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String(configFlag))
	if err != nil {
		return err
	}
	overlay(ctx, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if len(cfg.Output.Types) == 0 {
		return fmt.Errorf("no output types specified")
	}

	g := gen.New()
	if cfg.Debug {
		console.Logger.SetLevel(console.DebugLevel)
	}
	if ctx.Bool(quietFlag) {
		console.Logger.SetLevel(console.QuietLevel)
		g.SetWarningOutput(io.Discard)
	}
	defer func() { _ = console.Logger.Sync() }()

	return g.Build(&gen.Config{
		Debugger:            console.Logger,
		Inputs:              cfg.Inputs,
		Excludes:            strings.Join(cfg.Excludes, ","),
		OutputDir:           cfg.Output.Dir,
		OutputTypes:         cfg.Output.Types,
		TargetVersion:       cfg.Build.TargetVersion,
		Strict:              cfg.Build.Strict,
		SkipValidation:      !cfg.Build.Validate,
		MaxDepth:            cfg.Build.MaxDepth,
		DefaultStatus:       cfg.Build.DefaultStatus,
		KeepMalformedAllOf:  !cfg.Build.MergeMalformedAllOf,
		ComplexityThreshold: cfg.Build.ComplexityThreshold,
		PackageName:         cfg.Output.PackageName,
		GeneratedTime:       cfg.Output.GeneratedTime,
	})
}

func main() {
	app := cli.NewApp()
	app.Name = "castr"
	app.Version = version
	app.Usage = "Compile OpenAPI documents into OpenAPI, Swagger 2.0, JSON Schema, TypeScript types and zod."
	app.Commands = []*cli.Command{
		{
			Name:    "build",
			Aliases: []string{"b"},
			Usage:   "Build the IR of every input and write the requested outputs",
			Action:  buildAction,
			Flags:   buildFlags,
		},
		{
			Name:  "types",
			Usage: "List the supported output types",
			Action: func(c *cli.Context) error {
				for _, t := range gen.New().OutputTypes() {
					fmt.Fprintln(c.App.Writer, t)
				}
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
