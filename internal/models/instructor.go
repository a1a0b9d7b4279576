package models

type Instructor struct {
	Model

	Name      string `gorm:"size:255;not null" json:"name"`
	Slug      string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Title     string `json:"title"`
	Bio       string `gorm:"type:text" json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}
