package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func Test_getLevel(t *testing.T) {
	t.Run("first match wins", func(t *testing.T) {
		SetNamedLevels([]NamedLevel{
			{Name: "app", Level: "debug"},
			{Name: "app*", Level: "info"},
			{Name: "app.sub", Level: "warn"},
			{Name: "*", Level: "fatal"},
		})
		assert.Equal(t, zap.DebugLevel, getLevel("app").Level())
		assert.Equal(t, zap.InfoLevel, getLevel("app.aaa").Level())
		assert.Equal(t, zap.InfoLevel, getLevel("app.sub").Level())
		assert.Equal(t, zap.FatalLevel, getLevel("random").Level())
	})
	t.Run("wildcard first", func(t *testing.T) {
		SetNamedLevels([]NamedLevel{
			{Name: "*", Level: "ERROR"},
			{Name: "app", Level: "info"},
			{Name: "app.sub", Level: "warn"},
		})
		for _, name := range []string{"app", "app.aaa", "app.sub", "random"} {
			assert.Equal(t, zap.ErrorLevel, getLevel(name).Level(), name)
		}
	})
	t.Run("suffix glob", func(t *testing.T) {
		SetNamedLevels([]NamedLevel{
			{Name: "identity", Level: "info"},
			{Name: "*.fetch", Level: "warn"},
			{Name: "*", Level: "fatal"},
		})
		assert.Equal(t, zap.InfoLevel, getLevel("identity").Level())
		assert.Equal(t, zap.WarnLevel, getLevel("candid.fetch").Level())
		assert.Equal(t, zap.FatalLevel, getLevel("random").Level())
	})
	t.Run("invalid levels skipped", func(t *testing.T) {
		SetNamedLevels([]NamedLevel{
			{Name: "*", Level: "invalid"},
			{Name: "app", Level: "info"},
			{Name: "b", Level: "invalid"},
		})
		assert.Equal(t, zap.InfoLevel, getLevel("app").Level())
		assert.Equal(t, base.Level(), getLevel("app.sub").Level())
		assert.Equal(t, base.Level(), getLevel("b").Level())
	})
}

func TestDefaultConfig(t *testing.T) {
	conf := DefaultConfig().zapConfig()
	assert.Equal(t, zap.WarnLevel, conf.Level.Level())
	assert.Equal(t, "console", conf.Encoding)
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	l := NewNamed("logger.rebind", zap.String("component", "test"))
	assert.Equal(t, l.Logger, NewNamed("logger.rebind").Logger)

	core, logs := observer.New(zap.DebugLevel)
	SetDefault(zap.New(core))
	SetNamedLevels([]NamedLevel{{Name: "logger.*", Level: "info"}})

	l.Debug("hidden")
	l.Info("hello")
	l.Sugar().Infow("sugared", "k", "v")

	entries := logs.FilterMessage("hello").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "logger.rebind", entries[0].LoggerName)
	assert.Equal(t, "test", entries[0].ContextMap()["component"])
	assert.Empty(t, logs.FilterMessage("hidden").All())
	assert.Len(t, logs.FilterMessage("sugared").All(), 1)
}

func TestLevelsFromStr(t *testing.T) {
	levels := LevelsFromStr("identity=DEBUG; candid*=WARN;ERROR;bad=nope")
	assert.Equal(t, []NamedLevel{
		{Name: "identity", Level: "DEBUG"},
		{Name: "candid*", Level: "WARN"},
		{Name: "*", Level: "ERROR"},
	}, levels)
	assert.Empty(t, LevelsFromStr(""))
}

func TestCtxWithFields(t *testing.T) {
	ctx := CtxWithFields(context.Background(), zap.String("a", "1"))
	ctx = CtxWithFields(ctx, zap.String("b", "2"))
	fields := CtxGetFields(ctx)
	require.Len(t, fields, 2)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Empty(t, CtxGetFields(context.Background()))
}

func TestConfig_Build(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		lg, err := Config{Format: JSONOutput, DefaultLevel: "warn", DisableStdErr: true}.Build()
		require.NoError(t, err)
		assert.Equal(t, zap.WarnLevel, lg.Level())
	})
	t.Run("named level lowers main level", func(t *testing.T) {
		lg, err := Config{DefaultLevel: "error", Levels: []NamedLevel{{Name: "x", Level: "debug"}}}.Build()
		require.NoError(t, err)
		assert.Equal(t, zap.DebugLevel, lg.Level())
	})
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "icid.log")
		lg, err := Config{
			DefaultLevel:  "info",
			DisableStdErr: true,
			File:          &FileConfig{Path: path, MaxSizeMb: 1},
		}.Build()
		require.NoError(t, err)
		lg.Info("written to file", zap.String("k", "v"))
		_ = lg.Sync()
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"written to file"`)
		assert.Contains(t, string(data), `"k":"v"`)
	})
}
