package database

import (
	"github.com/s/courseCatalog/internal/models"
	"gorm.io/gorm"
)

var defaultCategories = []models.Category{
	{Name: "Development", Slug: "development", Icon: "code", Gradient: "from-blue-500 to-indigo-600", SortOrder: 1},
	{Name: "Design", Slug: "design", Icon: "palette", Gradient: "from-pink-500 to-rose-500", SortOrder: 2},
	{Name: "Marketing", Slug: "marketing", Icon: "megaphone", Gradient: "from-amber-400 to-orange-500", SortOrder: 3},
	{Name: "Data Science", Slug: "data-science", Icon: "chart", Gradient: "from-emerald-400 to-teal-600", SortOrder: 4},
}

// Seed inserts the default categories that are missing. Safe to run on every start.
func Seed(db *gorm.DB) error {
	for _, c := range defaultCategories {
		c := c
		if err := db.Where(models.Category{Slug: c.Slug}).FirstOrCreate(&c).Error; err != nil {
			return err
		}
	}
	return nil
}
