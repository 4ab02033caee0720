package dbtx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	return gdb
}

func TestClassifiers(t *testing.T) {
	deadlock := fmt.Errorf("update: %w", &mysql.MySQLError{Number: 1213})
	assert.True(t, IsRetryable(deadlock))
	assert.True(t, IsRetryable(&mysql.MySQLError{Number: 1205}))
	assert.False(t, IsRetryable(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsRetryable(errors.New("boom")))

	assert.True(t, IsDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicate(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsDuplicate(deadlock))
}

func TestRetryStartsOverOnDeadlock(t *testing.T) {
	gdb := openMemory(t)
	calls := 0
	err := Retry(context.Background(), gdb, 3, func(tx *gorm.DB) error {
		calls++
		if calls < 3 {
			return &mysql.MySQLError{Number: 1213}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	gdb := openMemory(t)
	calls := 0
	boom := errors.New("boom")
	err := Retry(context.Background(), gdb, 3, func(tx *gorm.DB) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	calls = 0
	err = Retry(context.Background(), gdb, 2, func(tx *gorm.DB) error {
		calls++
		return &mysql.MySQLError{Number: 1205}
	})
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 2, calls)
}
