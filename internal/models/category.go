package models

type Category struct {
	Model

	Name        string `gorm:"size:120;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Gradient    string `json:"gradient"`
	SortOrder   int    `gorm:"not null;default:0" json:"sortOrder"`
}
