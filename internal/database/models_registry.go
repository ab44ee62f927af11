package database

import "pulse/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.View{},
		&models.Bookmark{},
		&models.Repost{},
		&models.Follow{},
	}
}
