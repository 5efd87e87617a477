// Package testutil holds helpers shared by the package tests: an isolated
// sqlite database per test, fixtures and the GO_ENV safety check.
package testutil

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sipstation/bubble-tea-pos-api/config"
	"github.com/sipstation/bubble-tea-pos-api/models"
)

// RunWithTestEnv runs the tests only when GO_ENV=test so a misconfigured
// shell can never point the suite at a real database
func RunWithTestEnv(m *testing.M) {
	env := os.Getenv("GO_ENV")
	if env != "test" {
		fmt.Fprintf(os.Stderr, "\n"+
			"╔════════════════════════════════════════════════════════════════╗\n"+
			"║                    SAFETY CHECK FAILED                         ║\n"+
			"║                                                                ║\n"+
			"║  Tests must run with GO_ENV=test to prevent data loss!        ║\n"+
			"║                                                                ║\n"+
			"║  Current GO_ENV: %-45s ║\n"+
			"║                                                                ║\n"+
			"║  To run tests safely:                                          ║\n"+
			"║    GO_ENV=test go test ./...                                   ║\n"+
			"╚════════════════════════════════════════════════════════════════╝\n\n",
			fmt.Sprintf("%q", env))
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// NewTestDB opens a private in-memory sqlite database with every table
// migrated. The pool is pinned to one connection so the whole test sees the
// same database.
func NewTestDB(t *testing.T, withUsageLedger bool) *gorm.DB {
	t.Helper()

	RequireTestEnvironment(t)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig(gormlogger.Silent))
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db, withUsageLedger), "Failed to migrate test database")
	return db
}

// NewConcurrentTestDB opens a file-backed sqlite database that several
// connections can use at once. Transactions take the write lock when they
// begin and wait on each other through the busy timeout.
func NewConcurrentTestDB(t *testing.T, withUsageLedger bool) *gorm.DB {
	t.Helper()

	RequireTestEnvironment(t)

	path := filepath.Join(t.TempDir(), "pos.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate", path)
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig(gormlogger.Silent))
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db, withUsageLedger), "Failed to migrate test database")
	return db
}

// CreateMenuItem inserts a menu item with the given name and base price
func CreateMenuItem(t *testing.T, db *gorm.DB, name, basePrice string, category models.Category) models.MenuItem {
	t.Helper()
	item := models.MenuItem{
		Name:         name,
		BasePrice:    decimal.RequireFromString(basePrice),
		Category:     category,
		Calories:     240,
		SugarGrams:   30,
		ProteinGrams: 3,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

// CreateIngredient inserts an inventory row
func CreateIngredient(t *testing.T, db *gorm.DB, name, quantity, minQuantity string) models.InventoryItem {
	t.Helper()
	item := models.InventoryItem{
		IngredientName: name,
		Quantity:       decimal.RequireFromString(quantity),
		Unit:           "units",
		MinQuantity:    decimal.RequireFromString(minQuantity),
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

// InventorySnapshot maps ingredient name to current quantity
func InventorySnapshot(t *testing.T, db *gorm.DB) map[string]decimal.Decimal {
	t.Helper()
	var items []models.InventoryItem
	require.NoError(t, db.Find(&items).Error)

	snapshot := make(map[string]decimal.Decimal, len(items))
	for _, item := range items {
		snapshot[item.IngredientName] = item.Quantity
	}
	return snapshot
}

// CountRows returns the number of rows stored for model
func CountRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

// RequireTestEnvironment fails the test immediately unless GO_ENV=test
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// NewFileHeader builds the multipart.FileHeader a form upload of content
// under field "image" would produce
func NewFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.NotEmpty(t, form.File["image"])
	return form.File["image"][0]
}
