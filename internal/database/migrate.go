package database

import (
	"pulse/internal/models"

	"gorm.io/gorm"
)

// AllModels returns every model registered for schema migration, in an order
// that satisfies foreign key dependencies.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Follow{},
		&models.Notification{},
		&models.Hashtag{},
		&models.PostHashtag{},
	}
}

// Migrate runs AutoMigrate for every registered model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
