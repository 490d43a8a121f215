package db

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type ledgerRow struct {
	ID   int
	Note string
}

func openClient(t *testing.T) *Client {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&ledgerRow{}))
	client := NewFromConn(gdb)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func countNotes(t *testing.T, c *Client, note string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, c.DB().Model(&ledgerRow{}).Where("note = ?", note).Count(&n).Error)
	return n
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	c := openClient(t)
	err := c.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&ledgerRow{Note: "kept"}).Error
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, countNotes(t, c, "kept"))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	c := openClient(t)
	sentinel := errors.New("abort")
	err := c.WithTx(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&ledgerRow{Note: "dropped"}).Error)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Zero(t, countNotes(t, c, "dropped"))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	c := openClient(t)
	require.Panics(t, func() {
		_ = c.WithTx(context.Background(), func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&ledgerRow{Note: "panicked"}).Error)
			panic("boom")
		})
	})
	require.Zero(t, countNotes(t, c, "panicked"))
}

func TestPingAndClose(t *testing.T) {
	c := openClient(t)
	require.NoError(t, c.Ping(context.Background()))
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, true, nil)
	require.Error(t, err)
}

func TestNewOpensSQLite(t *testing.T) {
	c, err := New(context.Background(), config.DBConfig{
		DSN:          "file:" + t.Name() + "?mode=memory",
		MaxOpenConns: 1,
	}, true, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.Equal(t, "sqlite", c.DB().Dialector.Name())
}

func TestQueryLoggerDiscardsWithoutSink(t *testing.T) {
	require.Equal(t, gormlogger.Discard, queryLogger(config.DBConfig{SlowQuery: 1}, nil))
}
