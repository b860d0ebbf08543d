package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayFlags_OnlyChangedFlagsAreSet(t *testing.T) {
	var d displayFlags
	cmd := &cobra.Command{Use: "test"}
	d.register(cmd)

	require.NoError(t, cmd.ParseFlags([]string{"--show-success=false", "-v"}))
	opts := d.options(cmd)

	require.NotNil(t, opts.Verbose)
	assert.True(t, *opts.Verbose)
	require.NotNil(t, opts.ShowSuccess)
	assert.False(t, *opts.ShowSuccess)
	assert.Nil(t, opts.ShowCompliance, "unset flags fall back to configuration")
	assert.Nil(t, opts.ShowProfile)
}

func TestParseKwargs(t *testing.T) {
	got, err := parseKwargs([]string{"min_uid=1000", "strict=true", "ports=[22, 80]", "name=web01", "empty="})
	require.NoError(t, err)

	require.Len(t, got, 5)
	assert.EqualValues(t, 1000, got["min_uid"])
	assert.Equal(t, true, got["strict"])
	assert.Equal(t, "web01", got["name"])
	assert.Equal(t, "", got["empty"])

	ports, ok := got["ports"].([]any)
	require.True(t, ok)
	require.Len(t, ports, 2)
	assert.EqualValues(t, 22, ports[0])
	assert.EqualValues(t, 80, ports[1])
}

func TestParseKwargs_Invalid(t *testing.T) {
	for _, pair := range []string{"novalue", "=x", " =x"} {
		_, err := parseKwargs([]string{pair})
		assert.Error(t, err, pair)
	}
}

func TestParseKwargs_None(t *testing.T) {
	got, err := parseKwargs(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
