package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/comedor/backend/internal/database"
	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/types"
)

const sheet = "SEMANA 1\r\n" +
	",LUNES,MARTES,MIÉRCOLES,JUEVES,VIERNES\r\n" +
	"COMIDA,\"Lentejas, pizza margarita\",Merluza al horno,,,\r\n" +
	"CENA,Tortilla de patatas,,,,\r\n"

// setupEnv points the tool at a fresh sqlite file.
func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("LOG_FILE", "")
	path := filepath.Join(t.TempDir(), "menus.db")
	t.Setenv("SQLITE_PATH", path)
	return path
}

func openDB(t *testing.T, path string) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(database.SQLiteDSN(path)), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func runCmd(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	code := run(context.Background(), args, &out)
	return code, out.String()
}

func writeSheets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	raw, err := charmap.Windows1252.NewEncoder().String(sheet)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "S1.csv"), []byte(raw), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.txt"), []byte("ignored"), 0o600))
	return dir
}

func TestProcessCSVThenMigrate(t *testing.T) {
	dbPath := setupEnv(t)
	out := filepath.Join(t.TempDir(), "menu_data.json")

	code, _ := runCmd(t, "process-csv", "--dir", writeSheets(t), "--out", out)
	require.Equal(t, 0, code)

	data, err := readMenuData(out)
	require.NoError(t, err)
	require.Len(t, data.Weeks, 1)
	assert.Equal(t, 1, data.Weeks[0].Week)
	assert.Len(t, data.Allergens, 14)
	lunch := data.Weeks[0].Days[0].Meals[0]
	require.Len(t, lunch.Items, 2)
	assert.Equal(t, "Pizza Margarita", lunch.Items[1].Name)
	assert.Equal(t, []string{"gluten", "lacteos"}, lunch.Items[1].Allergens)

	code, stdout := runCmd(t, "migrate-menu", "--start-date", "2025-01-13", "--file", out)
	require.Equal(t, 0, code)
	var summary types.ImportSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, []string{"2025-01-20", "2025-01-21"}, summary.CreatedDates)

	code, stdout = runCmd(t, "migrate-menu", "-d", "2025-01-13", "-f", out)
	require.Equal(t, 0, code)
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, 2, summary.SkippedCount)

	code, stdout = runCmd(t, "migrate-menu", "-d", "2025-01-13", "-f", out, "--delete-existing")
	require.Equal(t, 0, code)
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, 2, summary.CreatedCount)

	db := openDB(t, dbPath)
	var menus int64
	require.NoError(t, db.Model(&models.Menu{}).Count(&menus).Error)
	assert.Equal(t, int64(2), menus)
	var runs int64
	require.NoError(t, db.Model(&models.ImportRun{}).Where("source = ?", "cli").Count(&runs).Error)
	assert.Equal(t, int64(3), runs)
}

func TestProcessCSVNoSheets(t *testing.T) {
	setupEnv(t)
	code, _ := runCmd(t, "process-csv", "--dir", t.TempDir(), "--out", filepath.Join(t.TempDir(), "out.json"))
	assert.Equal(t, 1, code)
}

func TestMigrateMenuFailures(t *testing.T) {
	setupEnv(t)
	file := filepath.Join(t.TempDir(), "menu_data.json")
	require.NoError(t, writeMenuData(file, &types.MenuData{Weeks: []types.MenuWeek{}}))

	tests := []struct {
		name string
		args []string
	}{
		{"missing start date", []string{"migrate-menu", "-f", file}},
		{"bad start date", []string{"migrate-menu", "-d", "13/01/2025", "-f", file}},
		{"missing file", []string{"migrate-menu", "-d", "2025-01-13", "-f", filepath.Join(t.TempDir(), "nope.json")}},
		{"empty document", []string{"migrate-menu", "-d", "2025-01-13", "-f", file}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := runCmd(t, tt.args...)
			assert.Equal(t, 1, code)
		})
	}
}

func TestInferAllergens(t *testing.T) {
	setupEnv(t)
	in := filepath.Join(t.TempDir(), "menu_data.json")
	doc := &types.MenuData{Weeks: []types.MenuWeek{{Week: 0, Days: []types.MenuDay{{Day: "LUN", Meals: []types.MenuMeal{
		{Type: "lunch", Items: []types.MenuItem{{Name: "Merluza Rebozada"}, {Name: "Lentejas"}}},
	}}}}}}
	require.NoError(t, writeMenuData(in, doc))

	code, _ := runCmd(t, "infer-allergens", "--in", in)
	require.Equal(t, 0, code)

	data, err := readMenuData(in)
	require.NoError(t, err)
	items := data.Weeks[0].Days[0].Meals[0].Items
	assert.Equal(t, []string{"pescado"}, items[0].Allergens)
	assert.Empty(t, items[1].Allergens)
	assert.Len(t, data.Allergens, 14)
}

func TestSeedAndConfigFile(t *testing.T) {
	setupEnv(t)
	dbPath := filepath.Join(t.TempDir(), "from-file.db")
	cfgPath := filepath.Join(t.TempDir(), "menuctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  driver: sqlite\n  sqlitePath: "+dbPath+"\nlogging:\n  level: warn\n"), 0o600))

	code, _ := runCmd(t, "--config", cfgPath, "seed", "--username", "cocina", "--password", "secret123")
	require.Equal(t, 0, code)

	code, _ = runCmd(t, "--config", cfgPath, "seed", "--username", "cocina", "--password", "secret123")
	require.Equal(t, 0, code)

	db := openDB(t, dbPath)
	var users, allergens int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Allergen{}).Count(&allergens).Error)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(14), allergens)

	code, _ = runCmd(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "automigrate")
	assert.Equal(t, 1, code)
}

func TestAutomigrate(t *testing.T) {
	dbPath := setupEnv(t)
	code, _ := runCmd(t, "automigrate")
	require.Equal(t, 0, code)
	assert.True(t, openDB(t, dbPath).Migrator().HasTable(&models.MenuTemplate{}))
}
