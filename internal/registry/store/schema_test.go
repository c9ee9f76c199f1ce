package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// The Postgres store and the migration DDL live in different files; this
// keeps the columns the store SQL names from drifting out of the schema
// without needing a live database.
func TestMigrationCoversStoreColumns(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "000001_init.up.sql"))
	require.NoError(t, err)
	ddl := string(raw)

	columns := map[string][]string{
		"gift_lists": {
			"id", "wedding_date", "wedding_name", "spouse_x_name",
			"spouse_y_name", "owner_user_id", "active",
		},
		"guests": {"id", "email", "recipient_name", "gift_list_id", "user_id"},
		"gift_list_items": {
			"id", "gift_list_id", "product_id", "qty", "qty_purchased",
			"price", "date_added", "added_by",
		},
		"purchases": {"id", "item_id", "qty", "guest_id", "date_paid", "total"},
	}

	for table, cols := range columns {
		body := tableBody(t, ddl, table)
		for _, col := range cols {
			require.Contains(t, body, col, "column %s.%s missing from migration", table, col)
		}
	}
}

// tableBody returns the CREATE TABLE block for one table.
func tableBody(t *testing.T, ddl, table string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	start := strings.Index(ddl, marker)
	require.GreaterOrEqual(t, start, 0, "table %s missing from migration", table)
	rest := ddl[start+len(marker):]
	end := strings.Index(rest, ");")
	require.GreaterOrEqual(t, end, 0, "unterminated definition for %s", table)
	return rest[:end]
}
