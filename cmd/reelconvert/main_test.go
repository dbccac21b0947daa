package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKVArgs(t *testing.T) {
	got, err := parseKVArgs("--input-arg", []string{"version=2", "strict=true", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"version": "2", "strict": "true", "note": "a=b"}, got)
}

func TestParseKVArgsEmpty(t *testing.T) {
	got, err := parseKVArgs("--input-arg", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseKVArgsMalformed(t *testing.T) {
	for _, bad := range []string{"noequals", "=value"} {
		_, err := parseKVArgs("--output-arg", []string{bad})
		require.Error(t, err, "input %q", bad)
		assert.Contains(t, err.Error(), "--output-arg")
		assert.Contains(t, err.Error(), "key=value")
	}
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}
