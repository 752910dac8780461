package rtspgateway

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceRegistryResolveByNameAndAlias(t *testing.T) {
	r := NewSourceRegistry()
	src := NewSource("cam1", []string{"front-door"}, nullPuller{})
	require.NoError(t, r.Add(src))

	require.Equal(t, src, r.Resolve("/live/cam1/trackID=0"))
	require.Equal(t, src, r.Resolve("/live/CAM1/trackID=0"))
	require.Equal(t, src, r.Resolve("/live/front-door/"))
	require.Nil(t, r.Resolve("/live/unknown"))
	require.Nil(t, r.Resolve("/archive/cam1"))
}

func TestSourceRegistryAddRejectsDuplicateID(t *testing.T) {
	r := NewSourceRegistry()
	src := NewSource("cam1", nil, nullPuller{})
	require.NoError(t, r.Add(src))
	require.Error(t, r.Add(src))
}

func TestSourceRegistryAddStartsWhenListening(t *testing.T) {
	r := NewSourceRegistry()
	r.SetListening(true)

	src := NewSource("cam1", nil, nullPuller{})
	require.NoError(t, r.Add(src))
	require.Equal(t, SourceStateStarted, src.State())
}

func TestSourceRegistryRemove(t *testing.T) {
	r := NewSourceRegistry()
	src := NewSource("cam1", nil, nullPuller{})
	require.NoError(t, r.Add(src))

	require.True(t, r.Remove(src.ID, false))
	require.False(t, r.Remove(src.ID, false))

	_, ok := r.Get(src.ID)
	require.False(t, ok)
}
