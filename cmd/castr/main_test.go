package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/castr-dev/castr/internal/config"
)

func buildContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("build", flag.ContinueOnError)
	for _, f := range buildFlags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"json", "yaml"}, splitList(" json, ,yaml "))
	assert.Nil(t, splitList(""))
}

func TestOverlay(t *testing.T) {
	cfg := config.Default()
	overlay(buildContext(t,
		"--input", "a.yaml,specs",
		"--output", "gen",
		"--outputTypes", "swagger,zod",
		"--strict",
		"--skipValidation",
		"--keepMalformedAllOf",
		"--complexityThreshold", "3",
	), cfg)

	assert.Equal(t, []string{"a.yaml", "specs"}, cfg.Inputs)
	assert.Equal(t, "gen", cfg.Output.Dir)
	assert.Equal(t, []string{"swagger", "zod"}, cfg.Output.Types)
	assert.True(t, cfg.Build.Strict)
	assert.False(t, cfg.Build.Validate)
	assert.False(t, cfg.Build.MergeMalformedAllOf)
	assert.Equal(t, 3, cfg.Build.ComplexityThreshold)
}

func TestOverlay_UnsetFlagsKeepConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = "from-file"
	overlay(buildContext(t), cfg)

	assert.Equal(t, "from-file", cfg.Output.Dir)
	assert.Equal(t, config.Default().Build, cfg.Build)
}
