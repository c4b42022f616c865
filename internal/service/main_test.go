package service

import (
	"Duet/internal/model"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "duet_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.PairingCode{},
		&model.Conversation{},
		&model.Message{},
		&model.MediaFile{},
		&model.Notification{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, name string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: &name, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}
