package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/killallgit/reelgen/internal/models"
	"github.com/killallgit/reelgen/pkg/logging"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name   string
		dbPath string
	}{
		{name: "in-memory database", dbPath: ":memory:"},
		{name: "empty path creates in-memory database", dbPath: ""},
		{name: "file database in a new directory", dbPath: filepath.Join(t.TempDir(), "nested", "jobs.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Initialize(tt.dbPath, false, logging.Discard())
			require.NoError(t, err)
			require.NotNil(t, conn)
			defer conn.Close()

			assert.NoError(t, conn.HealthCheck())
		})
	}
}

func TestDB_Close(t *testing.T) {
	conn, err := Initialize(":memory:", false, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	assert.Error(t, conn.HealthCheck(), "HealthCheck should fail after database is closed")
}

func TestDB_HealthCheckNil(t *testing.T) {
	var conn *DB
	assert.Error(t, conn.HealthCheck())
	assert.Error(t, (&DB{}).HealthCheck())
}

func TestDB_StoredJobRoundTrip(t *testing.T) {
	conn, err := Initialize(":memory:", false, logging.Discard())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.AutoMigrate(&models.StoredJob{}))

	job := &models.StoredJob{
		ID:      "5f0c6a52-0000-4000-8000-000000000001",
		Status:  models.JobStatusGeneratingScript,
		Request: models.StoredRequest(models.DefaultRequest("morning habits")),
		Script:  &models.StoredScript{Title: "Habits", Hashtags: []string{"#habits"}},
	}
	require.NoError(t, conn.Create(job).Error)

	var loaded models.StoredJob
	require.NoError(t, conn.First(&loaded, "id = ?", job.ID).Error)
	assert.Equal(t, "morning habits", loaded.Request.Topic)
	require.NotNil(t, loaded.Script)
	assert.Equal(t, "Habits", loaded.Script.Title)
	assert.False(t, loaded.CreatedAt.IsZero())
}

func TestDB_Transaction(t *testing.T) {
	conn, err := Initialize(":memory:", false, logging.Discard())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.AutoMigrate(&models.StoredJob{}))

	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.StoredJob{ID: "rollback", Status: models.JobStatusPending}).Error; err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	assert.Error(t, err)

	var count int64
	conn.Model(&models.StoredJob{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
