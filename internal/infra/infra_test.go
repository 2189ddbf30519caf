package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQL(t *testing.T) {
	sql := stripSQLComments("-- header\nCREATE TABLE a (id INT);\n\n-- second\nCREATE INDEX i ON a (id);\n")
	stmts := splitSQL(sql)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id INT)", stmts[0])
	assert.Equal(t, "CREATE INDEX i ON a (id)", stmts[1])
}

func TestFindMigrationsDir(t *testing.T) {
	dir, err := FindMigrationsDir()
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestNewLoggerLevels(t *testing.T) {
	logger, err := NewLogger(true, "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(1))

	logger, err = NewLogger(false, "nonsense")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(0))
}
