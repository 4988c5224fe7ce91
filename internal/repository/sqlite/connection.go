package sqlite

import (
	glebsqlite "github.com/glebarez/sqlite"
	"github.com/rafaeltorres/user-registry/internal/domain"
	"github.com/rafaeltorres/user-registry/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databasePath string) (*gorm.DB, error) {
	db, err := gorm.Open(glebsqlite.Open(databasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User: NewUserRepository(db),
	}
}
