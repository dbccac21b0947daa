package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelbridge/internal/domain"
)

type stubAdapter struct {
	name     string
	suffixes []string
}

func (s stubAdapter) Info() domain.AdapterInfo {
	return domain.AdapterInfo{Name: s.name, Suffixes: s.suffixes}
}

func TestRegistryOrderPreserved(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, reg.Register(stubAdapter{name: name}))
	}
	adapters, err := reg.Adapters()
	require.NoError(t, err)
	var got []string
	for _, a := range adapters {
		got = append(got, a.Info().Name)
	}
	assert.Equal(t, []string{"charlie", "alpha", "bravo"}, got)
}

func TestRegistryDuplicateName(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(stubAdapter{name: "dup"}))
	err := reg.Register(stubAdapter{name: "dup"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateAdapter))
}

func TestRegistryByNameCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(stubAdapter{name: "FCPX"}))

	a, err := reg.ByName("fcpx")
	require.NoError(t, err)
	assert.Equal(t, "FCPX", a.Info().Name)
}

func TestRegistryByNameMissing(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.ByName("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAdapterNotFound))
}

func TestRegistryBySuffix(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(stubAdapter{name: "fcpx", suffixes: []string{"fcpxml"}}))

	for _, suffix := range []string{"fcpxml", ".fcpxml", "FCPXML"} {
		a, err := reg.BySuffix(suffix)
		require.NoError(t, err, "suffix %q", suffix)
		assert.Equal(t, "fcpx", a.Info().Name)
	}

	_, err := reg.BySuffix("mov")
	assert.True(t, errors.Is(err, domain.ErrAdapterNotFound))
}

func TestRegistrySuffixFirstClaimWins(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(stubAdapter{name: "first", suffixes: []string{"xml"}}))
	require.NoError(t, reg.Register(stubAdapter{name: "second", suffixes: []string{"xml"}}))

	a, err := reg.BySuffix("xml")
	require.NoError(t, err)
	assert.Equal(t, "first", a.Info().Name)
}
