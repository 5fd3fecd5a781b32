package registry

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/treesync/internal/core/repository"
)

func p(parts ...string) string {
	return filepath.Join(append([]string{string(filepath.Separator)}, parts...)...)
}

// fakeGit treats every path under a known root as part of that tree
type fakeGit struct {
	mu      sync.Mutex
	roots   []string
	status  map[string]string
	commit  string
	panicOn string
}

func newFakeGit(roots ...string) *fakeGit {
	return &fakeGit{roots: roots, status: map[string]string{}, commit: "abc1234"}
}

func (g *fakeGit) Toplevel(dir string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var best string
	for _, r := range g.roots {
		if within(r, dir) && len(r) > len(best) {
			best = r
		}
	}
	return best
}

func (g *fakeGit) ShortCommitID(string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.commit
}

func (g *fakeGit) Status(dir string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if dir == g.panicOn {
		panic("status exploded")
	}
	return g.status[dir]
}

func (g *fakeGit) LastCommit(dir, path string) string {
	return "deadbeef|Jane|2024-03-05 14:07:09 +0000|touch " + filepath.Base(path)
}

func (g *fakeGit) BranchLabel(dir string) string {
	return filepath.Base(dir) + "@main"
}

func (g *fakeGit) setStatus(dir, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status[dir] = status
}

func drain(r *Registry) {
	select {
	case <-r.Repaint():
	default:
	}
}

func TestNew_ID(t *testing.T) {
	g := newFakeGit()
	a := New(NewFactory(g))
	b := New(NewFactory(g))

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestReconcile(t *testing.T) {
	g := newFakeGit(p("a"), p("b"))
	r := New(NewFactory(g))

	r.Reconcile([]string{p("a"), p("b"), p("plain"), p("a") + "/"})
	trees := r.Trees()
	require.Len(t, trees, 3, "duplicates collapse after cleaning")

	a, ok := r.Lookup(p("a", "x.txt"))
	require.True(t, ok)
	plain := trees[2]
	assert.Equal(t, p("plain"), plain.Path())
	assert.True(t, plain.Disposed(), "a path outside any tree is disposed at construction")

	r.Reconcile([]string{p("a"), p("plain")})
	trees = r.Trees()
	require.Len(t, trees, 2)
	assert.Same(t, a, trees[0], "existing trees are kept")
	assert.Same(t, plain, trees[1], "a disposed tree is not rebuilt")

	r.Reconcile(nil)
	assert.Empty(t, r.Trees())
	assert.True(t, a.Disposed())
}

func TestReconcile_OneTreePerRoot(t *testing.T) {
	g := newFakeGit(p("proj"))
	r := New(NewFactory(g))

	r.Reconcile([]string{p("proj"), p("proj", "assets")})
	trees := r.Trees()
	require.Len(t, trees, 1, "a path inside a tracked tree is not tracked twice")
	proj := trees[0]
	assert.Equal(t, p("proj"), proj.Path())

	found, ok := r.Lookup(p("proj", "assets", "x.png"))
	require.True(t, ok)
	assert.Same(t, proj, found)

	r.Reconcile([]string{p("proj", "assets"), p("proj")})
	trees = r.Trees()
	require.Len(t, trees, 1)
	assert.Same(t, proj, trees[0], "the existing tree keeps its root")

	r.Reconcile([]string{p("proj", "assets")})
	trees = r.Trees()
	require.Len(t, trees, 1)
	assert.True(t, proj.Disposed())
	assert.Equal(t, p("proj", "assets"), trees[0].Path())
	assert.False(t, trees[0].Disposed(), "the remaining path takes over the root")
	assert.Equal(t, p("proj"), trees[0].Root())
}

func TestTick_SignalsRepaint(t *testing.T) {
	g := newFakeGit(p("a"))
	g.setStatus(p("a"), " M f.txt")
	r := New(NewFactory(g))
	r.Reconcile([]string{p("a")})

	assert.True(t, r.Tick())
	select {
	case <-r.Repaint():
	default:
		t.Fatal("expected a repaint signal")
	}

	assert.False(t, r.Tick(), "nothing changed")
	select {
	case <-r.Repaint():
		t.Fatal("unexpected repaint")
	default:
	}
}

func TestTick_CoalescesRepaints(t *testing.T) {
	g := newFakeGit(p("a"))
	r := New(NewFactory(g))
	r.Reconcile([]string{p("a")})
	r.Tick()
	drain(r)

	for _, status := range []string{" M 1", " M 2", " M 3"} {
		g.setStatus(p("a"), status)
		r.Refresh()
		require.True(t, r.Tick())
	}

	<-r.Repaint()
	select {
	case <-r.Repaint():
		t.Fatal("repaints are coalesced")
	default:
	}
}

func TestTick_IsolatesPanics(t *testing.T) {
	g := newFakeGit(p("a"), p("b"))
	g.panicOn = p("a")
	g.setStatus(p("b"), " M ok.txt")
	r := New(NewFactory(g))
	r.Reconcile([]string{p("a"), p("b")})

	assert.NotPanics(t, func() {
		assert.True(t, r.Tick())
	})
	assert.True(t, r.IsDirty(p("b", "ok.txt")), "the healthy tree was updated")
}

func TestSetPaths_LastWriteWins(t *testing.T) {
	g := newFakeGit(p("a"), p("b"), p("c"))
	r := New(NewFactory(g))

	r.SetPaths([]string{p("a")})
	r.SetPaths([]string{p("b"), p("c")})
	assert.Empty(t, r.Trees(), "paths are applied by the loop")
	assert.False(t, r.Settled())

	r.Tick()
	trees := r.Trees()
	require.Len(t, trees, 2)
	assert.Equal(t, p("b"), trees[0].Path())
	assert.Equal(t, p("c"), trees[1].Path())
}

func TestSetOptions(t *testing.T) {
	g := newFakeGit(p("a"), p("b"))
	g.setStatus(p("a"), " M f.txt")
	r := New(NewFactory(g), WithOptions(repository.Options{}))
	r.Reconcile([]string{p("a")})

	r.Tick()
	assert.False(t, r.IsDirty(p("a", "f.txt")))

	r.SetOptions(repository.Options{MarkDirtyFiles: true})
	r.Tick()
	assert.True(t, r.IsDirty(p("a", "f.txt")))
	assert.True(t, r.Options().MarkDirtyFiles)

	r.Reconcile([]string{p("a"), p("b")})
	tree, ok := r.Lookup(p("b", "f.txt"))
	require.True(t, ok)
	assert.True(t, tree.Options().MarkDirtyFiles, "new trees start with the current options")
}

func TestOnFocusChanged(t *testing.T) {
	g := newFakeGit(p("a"), p("b"))
	r := New(NewFactory(g))
	r.Reconcile([]string{p("a"), p("b")})
	for !r.Settled() {
		r.Tick()
	}

	r.OnFocusChanged()
	for _, tree := range r.Trees() {
		assert.True(t, tree.Pending().CommitID, tree.Path())
		assert.False(t, tree.Pending().DirtyScan, tree.Path())
	}
	assert.False(t, r.Settled())
}

func TestRefresh(t *testing.T) {
	g := newFakeGit(p("a"))
	r := New(NewFactory(g))
	r.Reconcile([]string{p("a")})
	r.Tick()

	r.Refresh()
	tree := r.Trees()[0]
	assert.Equal(t, repository.Flags{CommitID: true, DirtyScan: true, BranchInfo: true}, tree.Pending())
}

func TestLookup_DeepestRoot(t *testing.T) {
	g := newFakeGit(p("w"), p("w", "nested"))
	r := New(NewFactory(g))
	r.Reconcile([]string{p("w"), p("w", "nested")})

	tree, ok := r.Lookup(p("w", "nested", "file.txt"))
	require.True(t, ok)
	assert.Equal(t, p("w", "nested"), tree.Root())

	tree, ok = r.Lookup(p("w", "other.txt"))
	require.True(t, ok)
	assert.Equal(t, p("w"), tree.Root())

	_, ok = r.Lookup(p("elsewhere"))
	assert.False(t, ok)
	assert.False(t, r.GetOrQuery(p("elsewhere", "x")).Available)
}

func TestGetOrQuery(t *testing.T) {
	g := newFakeGit(p("a"))
	r := New(NewFactory(g))
	r.Reconcile([]string{p("a")})

	assert.False(t, r.GetOrQuery(p("a", "x.txt")).Available)
	r.Tick()

	info := r.GetOrQuery(p("a", "x.txt"))
	require.True(t, info.Available)
	assert.Equal(t, "touch x.txt", info.Message)
}

func TestStartStop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGit(p("a"))
	g.setStatus(p("a"), " M f.txt")
	r := New(NewFactory(g), WithClock(clock), WithInterval(50*time.Millisecond))
	r.SetPaths([]string{p("a")})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, r.Start(ctx))
	assert.ErrorIs(t, r.Start(ctx), ErrAlreadyRunning)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(50 * time.Millisecond)

	select {
	case <-r.Repaint():
	case <-ctx.Done():
		t.Fatal("loop never ticked")
	}
	assert.True(t, r.IsDirty(p("a", "f.txt")))

	r.Stop()
	r.Stop()

	require.NoError(t, r.Start(ctx), "a stopped registry can be started again")
	r.Close()
	assert.Empty(t, r.Trees())
}

func TestStart_ContextCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := New(NewFactory(newFakeGit()), WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()

	r.Stop()
}
