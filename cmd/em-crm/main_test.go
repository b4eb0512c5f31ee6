package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/darnellt0/em-crm-core/core"
)

func TestParseMappingOverrides(t *testing.T) {
	t.Run("valid pairs", func(t *testing.T) {
		overrides, err := parseMappingOverrides([]string{"Work Email=email", "Notes=skip"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"Work Email": "email", "Notes": "skip"}, overrides)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := parseMappingOverrides([]string{"WorkEmail"})
		assert.Error(t, err)
	})

	t.Run("empty field", func(t *testing.T) {
		_, err := parseMappingOverrides([]string{"Work Email="})
		assert.Error(t, err)
	})

	t.Run("no pairs", func(t *testing.T) {
		overrides, err := parseMappingOverrides(nil)
		require.NoError(t, err)
		assert.Empty(t, overrides)
	})
}

func TestParseIDs(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ids, err := parseIDs([]string{"1", "42"})
		require.NoError(t, err)
		assert.Equal(t, []core.ID{1, 42}, ids)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := parseIDs(nil)
		assert.Error(t, err)
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := parseIDs([]string{"abc"})
		assert.Error(t, err)
	})
}

func TestSetupRejectsInvalidLogLevel(t *testing.T) {
	app := &cli.App{
		Name:   "em-crm",
		Before: setup,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info"},
		},
		Action: func(c *cli.Context) error { return nil },
	}

	err := app.Run([]string{"em-crm", "--log-level", "verbose"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	err = app.Run([]string{"em-crm", "--log-level", "WARN"})
	assert.NoError(t, err)
}
