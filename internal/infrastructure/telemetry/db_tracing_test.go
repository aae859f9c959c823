package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTracedDB(t *testing.T, cfg DBTracingConfig) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))
	return db, recorder
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db, recorder := setupTracedDB(t, DefaultDBTracingConfig())

	require.NoError(t, db.Create(&tracedRow{Name: "a"}).Error)
	assert.Empty(t, recorder.Ended())
}

func TestDBTracingPlugin_AnnotatesSpans(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	db, recorder := setupTracedDB(t, cfg)

	ctx, span := otel.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "a"}).Error)
	var missing tracedRow
	err := db.WithContext(ctx).First(&missing, 999).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	span.End()

	var dbSpans []sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Name() != "parent" {
			dbSpans = append(dbSpans, s)
		}
	}
	require.NotEmpty(t, dbSpans)

	for _, s := range dbSpans {
		assert.NotEqual(t, codes.Error, s.Status().Code, "not found must not mark %s as failed", s.Name())
		var table string
		for _, attr := range s.Attributes() {
			if attr.Key == "db.sql.table" {
				table = attr.Value.AsString()
			}
		}
		assert.Equal(t, "traced_rows", table)
	}
}

func TestDBTracingPlugin_SlowQuery(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.SlowQueryThresh = -1
	db, recorder := setupTracedDB(t, cfg)

	require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{Name: "a"}).Error)

	var slow bool
	for _, s := range recorder.Ended() {
		for _, e := range s.Events() {
			if e.Name == "slow_query_warning" {
				slow = true
			}
		}
	}
	assert.True(t, slow)
}
