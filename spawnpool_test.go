package spawnpool_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachpo/spawnpool"
	"github.com/coachpo/spawnpool/internal/scene"
)

func TestDefaultManagerIsShared(t *testing.T) {
	t.Cleanup(spawnpool.ResetDefault)

	first := spawnpool.Default()
	require.Same(t, first, spawnpool.Default())
	assert.Equal(t, []string{spawnpool.DefaultManagerName}, spawnpool.Registry().Built())
}

func TestGlobalSpawnRoundTrip(t *testing.T) {
	t.Cleanup(spawnpool.ResetDefault)

	tpl := scene.NewTemplate("coin", nil)
	n, err := spawnpool.SpawnTemplate(tpl, spawnpool.At(scene.V(1, 0, 0), scene.Identity()), 2, 5, true)
	require.NoError(t, err)
	require.True(t, n.Active())

	p, err := spawnpool.Default().GetPool("coin")
	require.NoError(t, err)
	assert.Equal(t, 1, p.CountActive())
	assert.Equal(t, 1, p.CountInactive())

	spawnpool.Despawn(n)
	assert.Equal(t, 0, p.CountActive())
	assert.Equal(t, 2, p.CountInactive())

	again, err := spawnpool.Spawn("coin", spawnpool.Placement{})
	require.NoError(t, err)
	assert.Same(t, n, again)
}

func TestGlobalSpawnUnknownKey(t *testing.T) {
	t.Cleanup(spawnpool.ResetDefault)

	n, err := spawnpool.Spawn("missing", spawnpool.Placement{})
	require.Nil(t, n)
	require.True(t, errors.Is(err, spawnpool.ErrPoolNotFound))
}

func TestResetDefaultClearsPools(t *testing.T) {
	before := spawnpool.Default()
	n, err := spawnpool.SpawnTemplate(scene.NewTemplate("gem", nil), spawnpool.Placement{}, 0, 1, false)
	require.NoError(t, err)

	spawnpool.ResetDefault()

	assert.True(t, n.Destroyed())
	assert.Equal(t, 0, before.Len())
	after := spawnpool.Default()
	assert.NotSame(t, before, after)
	assert.Equal(t, 0, after.Len())
	spawnpool.ResetDefault()
}
