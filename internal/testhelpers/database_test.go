package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/comedor/backend/internal/models"
)

func TestNewSQLiteDB(t *testing.T) {
	db := NewSQLiteDB(t)
	user := CreateTestUser(t, db, "cocina", "secret123")
	assert.NotEmpty(t, user.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetupTestDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	db := SetupTestDatabase(t)
	require.NoError(t, db.Create(&models.Allergen{Name: "gluten"}).Error)
}

func TestSampleMenuData(t *testing.T) {
	data := SampleMenuData()
	require.NoError(t, data.Validate())
	assert.Equal(t, 7, data.ItemCount())
}
