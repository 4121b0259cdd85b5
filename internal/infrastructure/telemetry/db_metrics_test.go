package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type metricRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewDBMetrics_NilMeter(t *testing.T) {
	_, err := NewDBMetrics(nil, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestDBMetrics_Plugin(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.AutoMigrate(&metricRow{}))

	metrics, err := NewDBMetrics(provider.Meter("test"), sqlDB, nil)
	require.NoError(t, err)
	require.NoError(t, db.Use(metrics))

	require.NoError(t, db.Create(&metricRow{Name: "a"}).Error)
	var got metricRow
	require.NoError(t, db.First(&got).Error)
	assert.ErrorIs(t, db.First(&got, 99).Error, gorm.ErrRecordNotFound)

	metricsByName := collect(t, reader)

	total, ok := metricsByName["db.query.total"]
	require.True(t, ok)
	sum := total.Data.(metricdata.Sum[int64])
	var inserts, selects int64
	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value(AttrDBOperation)
		failed, _ := dp.Attributes.Value(AttrDBError)
		assert.False(t, failed.AsBool(), "record not found is not a failure")
		switch op.AsString() {
		case "INSERT":
			inserts += dp.Value
		case "SELECT":
			selects += dp.Value
		}
	}
	assert.Equal(t, int64(1), inserts)
	assert.Equal(t, int64(2), selects)

	_, ok = metricsByName["db.query.duration"]
	assert.True(t, ok)

	maxConns, ok := metricsByName["db.pool.connections_max"]
	require.True(t, ok)
	gauge := maxConns.Data.(metricdata.Gauge[int64])
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(1), gauge.DataPoints[0].Value)
}

func TestDetectOperationType(t *testing.T) {
	tests := map[string]string{
		"select * from clients":          "SELECT",
		"  INSERT INTO addresses":        "INSERT",
		"update clients set name = ?":    "UPDATE",
		"DELETE FROM clients WHERE id=?": "DELETE",
		"PRAGMA foreign_keys":            "OTHER",
	}
	for sql, want := range tests {
		assert.Equal(t, want, detectOperationType(sql), sql)
	}
}

func TestDBMetrics_RecordQuery_NilReceiver(t *testing.T) {
	var m *DBMetrics
	assert.NotPanics(t, func() {
		m.RecordQuery(context.Background(), "SELECT", "clients", 0, nil)
	})
}
