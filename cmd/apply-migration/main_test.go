package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements_CommentBeforeStatement(t *testing.T) {
	sql := `-- creates the table
CREATE TABLE things (
    id UUID PRIMARY KEY
);

-- and its index
CREATE INDEX idx_things ON things (id);
`
	statements := splitStatements(sql)
	require.Len(t, statements, 2)
	assert.True(t, strings.HasPrefix(statements[0], "CREATE TABLE things"))
	assert.True(t, strings.HasPrefix(statements[1], "CREATE INDEX idx_things"))
}

func TestSplitStatements_CommentOnlyAndEmptyChunks(t *testing.T) {
	sql := `-- nothing but commentary

-- more commentary
;
;
`
	assert.Empty(t, splitStatements(sql))
}

func TestSplitStatements_ShippedMigration(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_monitored_resources.sql"))
	require.NoError(t, err)

	statements := splitStatements(string(content))
	require.Len(t, statements, 3)
	assert.Contains(t, statements[0], "CREATE TABLE IF NOT EXISTS monitored_resources")
	assert.Contains(t, statements[1], "CREATE INDEX IF NOT EXISTS idx_monitored_resources_tenant")
	assert.Contains(t, statements[2], "CREATE INDEX IF NOT EXISTS idx_monitored_resources_active")
}
