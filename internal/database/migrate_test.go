package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRunMigrations(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db))

	for _, table := range []string{
		"users", "user_settings", "chats", "messages",
		"dishes", "meal_plans", "meal_plan_entries",
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}
