package cache

import (
	"context"
	"testing"

	"github.com/pdrpinto/sokoban"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func parse(t *testing.T, text string) *sokoban.Warehouse {
	t.Helper()
	w, err := sokoban.Parse(text)
	require.NoError(t, err)
	return w
}

const room = "#######\n#     #\n# $@  #\n#  .  #\n#######"

func TestKeyIgnoresLayoutNoise(t *testing.T) {
	a := parse(t, room)
	b := parse(t, "\n  #######\n  #     #\n  # $@  #\n  #  .  #\n  #######\n\n")
	weighted := parse(t, "3\n"+room)

	assert.Equal(t, Key(a), Key(b))
	assert.NotEqual(t, Key(a), Key(weighted))
}

func TestGetPut(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	w := parse(t, room)

	_, ok, err := store.Get(ctx, w)
	require.NoError(t, err)
	assert.False(t, ok)

	want := sokoban.Solution{Solved: true, Actions: []sokoban.Action{sokoban.Up, sokoban.Left}, Cost: 2}
	require.NoError(t, store.Put(ctx, w, want))

	got, ok, err := store.Get(ctx, w)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSolveUsesCache(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	w := parse(t, room)

	first, hit, err := store.Solve(ctx, w)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, first.Solved)
	assert.Equal(t, 6, first.Cost)

	second, hit, err := store.Solve(ctx, w)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Actions, second.Actions)
	assert.Equal(t, first.Cost, second.Cost)
}

func TestSolveCachesImpossible(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	w := parse(t, "#####\n#$ @#\n#  .#\n#####")

	_, _, err := store.Solve(ctx, w)
	require.NoError(t, err)

	cached, hit, err := store.Solve(ctx, w)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.False(t, cached.Solved)
}

func TestSolveDoesNotCacheLimitedSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	w := parse(t, room)

	_, _, err := store.Solve(ctx, w, sokoban.WithMaxExpansions(1))
	require.ErrorIs(t, err, sokoban.ErrSearchLimit)

	n, err := store.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCancelledContext(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := parse(t, room)
	assert.ErrorIs(t, store.Put(ctx, w, sokoban.Solution{}), context.Canceled)
	_, _, err := store.Get(ctx, w)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenPersistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	w := parse(t, room)

	store, err := Open(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, w, sokoban.Solution{Solved: true, Actions: []sokoban.Action{}}))
	require.NoError(t, store.Close())

	store, err = Open(Config{Dir: dir})
	require.NoError(t, err)
	defer store.Close()
	_, ok, err := store.Get(ctx, w)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Open(Config{})
	assert.Error(t, err)
}
