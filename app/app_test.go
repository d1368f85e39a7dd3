package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// step records the order of lifecycle calls across components; 0 means never called.
type step struct {
	init, run, close int64
}

type recorder struct {
	n atomic.Int64
}

type plain struct {
	name    string
	rec     *recorder
	initErr error
	steps   step
}

func (p *plain) Init(a *App) error {
	p.steps.init = p.rec.n.Inc()
	return p.initErr
}

func (p *plain) Name() string { return p.name }

type runnable struct {
	plain
	runErr   error
	closeErr error
}

func (r *runnable) Run(ctx context.Context) error {
	r.steps.run = r.rec.n.Inc()
	return r.runErr
}

func (r *runnable) Close(ctx context.Context) error {
	r.steps.close = r.rec.n.Inc()
	return r.closeErr
}

type lookup struct {
	target string
	found  Component
}

func (l *lookup) Init(a *App) error {
	l.found = a.MustComponent(l.target)
	return nil
}

func (l *lookup) Name() string { return "lookup" }

func TestApp_Registry(t *testing.T) {
	rec := new(recorder)
	a := new(App)
	a.Register(&runnable{plain: plain{name: "fetch", rec: rec}}).
		Register(&plain{name: "config", rec: rec})

	assert.Panics(t, func() { a.Register(&plain{name: "config", rec: rec}) })

	assert.Nil(t, a.Component("missing"))
	assert.Equal(t, "config", a.Component("config").Name())
	assert.NotPanics(t, func() { a.MustComponent("fetch") })
	assert.Panics(t, func() { a.MustComponent("missing") })

	assert.Equal(t, "fetch", MustComponent[*runnable](a).Name())
	assert.Panics(t, func() { MustComponent[*lookup](a) })
}

func TestApp_Start(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		rec := new(recorder)
		first := &runnable{plain: plain{name: "first", rec: rec}}
		second := &runnable{plain: plain{name: "second", rec: rec}}
		passive := &plain{name: "passive", rec: rec}
		last := &runnable{plain: plain{name: "last", rec: rec}}
		a := new(App)
		a.Register(first).Register(second).Register(passive).Register(last)

		require.NoError(t, a.Start(context.Background()))
		require.NoError(t, a.Close(context.Background()))

		assert.Equal(t, step{1, 5, 10}, first.steps)
		assert.Equal(t, step{2, 6, 9}, second.steps)
		assert.Equal(t, step{3, 0, 0}, passive.steps)
		assert.Equal(t, step{4, 7, 8}, last.steps)
	})
	t.Run("init error closes started ones", func(t *testing.T) {
		rec := new(recorder)
		initErr := errors.New("bad config")
		ok := &runnable{plain: plain{name: "ok", rec: rec}}
		broken := &runnable{plain: plain{name: "broken", rec: rec, initErr: initErr}}
		a := new(App)
		a.Register(ok).Register(broken)

		err := a.Start(context.Background())
		require.ErrorIs(t, err, initErr)
		assert.Contains(t, err.Error(), "'broken'")
		assert.Equal(t, step{1, 0, 4}, ok.steps)
		assert.Equal(t, step{2, 0, 3}, broken.steps)
	})
	t.Run("run error", func(t *testing.T) {
		rec := new(recorder)
		runErr := errors.New("listen failed")
		ok := &runnable{plain: plain{name: "ok", rec: rec}}
		broken := &runnable{plain: plain{name: "broken", rec: rec}, runErr: runErr, closeErr: errors.New("ignored")}
		never := &runnable{plain: plain{name: "never", rec: rec}}
		a := new(App)
		a.Register(ok).Register(broken).Register(never)

		err := a.Start(context.Background())
		require.ErrorIs(t, err, runErr)
		assert.Equal(t, step{1, 4, 7}, ok.steps)
		assert.Equal(t, step{2, 5, 6}, broken.steps)
		assert.Equal(t, step{3, 0, 0}, never.steps)
	})
	t.Run("lookup in init", func(t *testing.T) {
		a := new(App)
		a.Register(&plain{name: "dep", rec: new(recorder)})
		l := &lookup{target: "dep"}
		a.Register(l)
		require.NoError(t, a.Start(context.Background()))
		assert.Equal(t, "dep", l.found.Name())
		require.NoError(t, a.Close(context.Background()))
	})
}

func TestApp_Close(t *testing.T) {
	rec := new(recorder)
	a := new(App)
	a.Register(&runnable{plain: plain{name: "metric", rec: rec}, closeErr: errors.New("shutdown")}).
		Register(&runnable{plain: plain{name: "fetch", rec: rec}}).
		Register(&runnable{plain: plain{name: "inspector", rec: rec}, closeErr: errors.New("busy")})
	require.NoError(t, a.Start(context.Background()))

	err := a.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'metric' close error: shutdown")
	assert.Contains(t, err.Error(), "'inspector' close error: busy")
	assert.NotContains(t, err.Error(), "'fetch'")
}

func TestVersion(t *testing.T) {
	defer func(s, c, d string) { GitSummary, GitCommit, BuildDate = s, c, d }(GitSummary, GitCommit, BuildDate)

	GitSummary, GitCommit, BuildDate = "", "", ""
	assert.NotEmpty(t, new(App).Version())

	GitSummary, GitCommit, BuildDate = "v0.3.1", "abc123", "2026-01-02"
	assert.Equal(t, "v0.3.1", new(App).Version())
	assert.Equal(t, "v0.3.1 (abc123) built 2026-01-02", VersionDescription())
	assert.Equal(t, "icid", new(App).Name())
}
