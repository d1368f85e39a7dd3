// Package app wires icid components together: it initialises them in
// registration order, runs the runnable ones and closes them in reverse.
package app

import (
	"context"
	"fmt"
	"os"
	rtdebug "runtime/debug"
	"sync"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/icidkit/icid/app/logger"
	"github.com/icidkit/icid/util/debug"
)

// Set with -ldflags "-X github.com/icidkit/icid/app.GitSummary=..." at release.
var (
	GitCommit, GitSummary, BuildDate string
)

const name = "icid"

// closeWatchdog aborts the process when components hang on Close.
const closeWatchdog = time.Minute

var log = logger.NewNamed("app")

// Component is a unit registered in the App.
type Component interface {
	// Init is called in registration order. The App is passed so a component
	// can look up the config and the components registered before it.
	// An error aborts Start.
	Init(a *App) (err error)
	// Name must be unique within the App
	Name() (name string)
}

// ComponentRunnable is a Component with a lifetime: Run is called after every
// Init succeeded and Close on shutdown or when a later component fails.
type ComponentRunnable interface {
	Component
	Run(ctx context.Context) (err error)
	Close(ctx context.Context) (err error)
}

type App struct {
	components []Component
	mu         sync.RWMutex
}

func (app *App) Name() string {
	return name
}

// Version returns the release tag set at link time or, for go install builds,
// the module version.
func (app *App) Version() string {
	return version()
}

func version() string {
	if GitSummary != "" {
		return GitSummary
	}
	if bi, ok := rtdebug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "devel"
}

// VersionDescription is the --version line of the CLI.
func VersionDescription() string {
	desc := version()
	if GitCommit != "" {
		desc += " (" + GitCommit + ")"
	}
	if BuildDate != "" {
		desc += " built " + BuildDate
	}
	return desc
}

// Register appends a component. It panics on a duplicate name.
func (app *App) Register(s Component) *App {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.find(s.Name()) != nil {
		panic(fmt.Errorf("component '%s' already registered", s.Name()))
	}
	app.components = append(app.components, s)
	return app
}

func (app *App) find(name string) Component {
	for _, s := range app.components {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Component returns the component registered under name or nil.
func (app *App) Component(name string) Component {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.find(name)
}

// MustComponent is like Component but panics when name is not registered.
func (app *App) MustComponent(name string) Component {
	s := app.Component(name)
	if s == nil {
		panic(fmt.Errorf("component '%s' not registered", name))
	}
	return s
}

// MustComponent returns the first component of type T.
func MustComponent[T Component](app *App) T {
	app.mu.RLock()
	defer app.mu.RUnlock()
	for _, s := range app.components {
		if v, ok := s.(T); ok {
			return v
		}
	}
	panic(fmt.Errorf("component of type %T not registered", *new(T)))
}

// Start initialises every component, then runs the runnable ones. On failure
// the components touched so far are closed and the error names the culprit.
func (app *App) Start(ctx context.Context) (err error) {
	app.mu.RLock()
	defer app.mu.RUnlock()

	for i, s := range app.components {
		if err = s.Init(app); err != nil {
			app.closeDown(ctx, i)
			return fmt.Errorf("can't init component '%s': %w", s.Name(), err)
		}
	}
	for i, s := range app.components {
		r, ok := s.(ComponentRunnable)
		if !ok {
			continue
		}
		start := time.Now()
		if err = r.Run(ctx); err != nil {
			app.closeDown(ctx, i)
			return fmt.Errorf("can't run component '%s': %w", s.Name(), err)
		}
		log.Debug("component started", zap.String("component", s.Name()), zap.Duration("spent", time.Since(start)))
	}
	log.Debug("all components started", zap.Int("count", len(app.components)))
	return nil
}

// closeDown closes runnable components from index from down to 0 after a
// failed start. Errors are only logged; the start error wins.
func (app *App) closeDown(ctx context.Context, from int) {
	if err := app.closeFrom(ctx, from); err != nil {
		log.Warn("close after failed start", zap.Error(err))
	}
}

func (app *App) closeFrom(ctx context.Context, from int) error {
	var group errs.Group
	for i := from; i >= 0; i-- {
		if r, ok := app.components[i].(ComponentRunnable); ok {
			if err := r.Close(ctx); err != nil {
				group.Add(fmt.Errorf("component '%s' close error: %w", r.Name(), err))
			}
		}
	}
	return group.Err()
}

// Close closes runnable components in reverse registration order and
// returns every close error combined.
func (app *App) Close(ctx context.Context) error {
	app.mu.RLock()
	defer app.mu.RUnlock()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-done:
		case <-time.After(closeWatchdog):
			_, _ = fmt.Fprintf(os.Stderr, "app.Close timeout after %s\n", closeWatchdog)
			_, _ = os.Stderr.Write(debug.Stack(true))
			panic("app.Close timeout")
		}
	}()

	if err := app.closeFrom(ctx, len(app.components)-1); err != nil {
		return err
	}
	log.Debug("all components closed")
	return nil
}
