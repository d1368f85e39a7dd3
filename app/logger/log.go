package logger

import (
	"sync"

	"github.com/gobwas/glob"
	"go.uber.org/zap"
)

// DefaultConfig is used until ApplyGlobal is called. The C and wasm adapters
// never call it, so embedded use only prints warnings and errors.
func DefaultConfig() Config {
	return Config{DefaultLevel: "warn", Format: PlaintextOutput}
}

type levelRule struct {
	pattern string
	glob    glob.Glob // nil if pattern is not a valid glob
	level   zap.AtomicLevel
}

func (r levelRule) matches(name string) bool {
	return r.pattern == name || (r.glob != nil && r.glob.Match(name))
}

type namedLogger struct {
	l      *zap.Logger
	fields []zap.Field
}

var (
	mu       sync.Mutex
	base     *zap.Logger
	baseConf zap.Config
	rules    []levelRule
	named    = make(map[string]namedLogger)
)

func init() {
	baseConf = DefaultConfig().zapConfig()
	var err error
	if base, err = baseConf.Build(); err != nil {
		base = zap.NewNop()
	}
}

// SetDefault replaces the root logger. Existing named loggers are rebound to it.
func SetDefault(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	rebindAll()
}

// SetNamedLevels replaces the per-name level rules. Patterns may be globs
// like "candid*"; the first matching rule wins.
func SetNamedLevels(nls []NamedLevel) {
	mu.Lock()
	defer mu.Unlock()
	rules = rules[:0]

	minLevel := base.Level()
	for _, nl := range nls {
		lvl, err := zap.ParseAtomicLevel(nl.Level)
		if err != nil {
			continue
		}
		r := levelRule{pattern: nl.Name, level: lvl}
		if g, gErr := glob.Compile(nl.Name); gErr == nil {
			r.glob = g
		}
		rules = append(rules, r)
		if lvl.Level() < minLevel {
			minLevel = lvl.Level()
		}
	}

	if minLevel < base.Level() {
		// the root must let through everything a named logger may emit
		baseConf.Level = zap.NewAtomicLevelAt(minLevel)
		if lg, err := baseConf.Build(); err == nil {
			base = lg
		}
	}
	rebindAll()
}

func Default() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return base
}

// getLevel returns the level of the first rule matching name, or the root level.
func getLevel(name string) zap.AtomicLevel {
	for _, r := range rules {
		if r.matches(name) {
			return r.level
		}
	}
	return zap.NewAtomicLevelAt(base.Level())
}

func build(name string, fields []zap.Field) *zap.Logger {
	return zap.New(base.Core()).Named(name).WithOptions(
		zap.IncreaseLevel(getLevel(name)),
		zap.Fields(fields...),
	)
}

// rebindAll swaps every named logger in place, so package-level loggers
// created at init pick up the applied config.
func rebindAll() {
	for name, nl := range named {
		*nl.l = *build(name, nl.fields)
	}
}

// NewNamed returns the logger registered under name, creating it on first use.
// Fields are only applied on creation.
func NewNamed(name string, fields ...zap.Field) CtxLogger {
	mu.Lock()
	defer mu.Unlock()

	if nl, ok := named[name]; ok {
		return CtxLogger{Logger: nl.l, name: name}
	}
	l := build(name, fields)
	named[name] = namedLogger{l: l, fields: fields}
	return CtxLogger{Logger: l, name: name}
}
