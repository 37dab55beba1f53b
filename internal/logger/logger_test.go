package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestResolveLogFilePathDefaultDir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	require.NoError(t, os.Chdir(tmpDir))

	got, err := resolveLogFilePath(Options{})
	require.NoError(t, err)
	assert.Equal(t, defaultLogFilename, filepath.Base(got))
	assert.Equal(t, defaultLogDirName, filepath.Base(filepath.Dir(got)))
	_, err = os.Stat(got)
	assert.NoError(t, err)
}

func TestNewReleaseWritesToConfiguredFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "release.log"})
	log.Info("release-log-test")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "release-log-test")
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 7, orDefault(0, 7))
	assert.Equal(t, 3, orDefault(3, 7))
}

func TestContextLoggerCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := L
	L = zap.New(core)
	t.Cleanup(func() { L = prev })

	ctx := WithContext(context.Background(), "request_id", "req-1")
	FromContext(ctx).Infow("order_created", "order_id", 9)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.EqualValues(t, 9, fields["order_id"])

	assert.NotNil(t, FromContext(context.Background()))
}

func TestGormLoggerLevelByMode(t *testing.T) {
	assert.Equal(t, gormlogger.Info, NewGormLogger("debug", 0).level)

	release := NewGormLogger("release", 0)
	assert.Equal(t, gormlogger.Warn, release.level)
	assert.Equal(t, defaultSlowQuery, release.slowThreshold)

	called := false
	release.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "", 0
	}, errors.New("boom"))
	assert.False(t, called, "silent logger should not render sql")

	called = false
	release.Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "", 0
	}, nil)
	assert.False(t, called, "fast successful query is not logged in release mode")
}
