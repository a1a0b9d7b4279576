package models

type User struct {
	Model

	GoogleID string `gorm:"size:64;index" json:"-"`
	Email    string `gorm:"uniqueIndex;size:255" json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Role     string `gorm:"size:16;not null;default:USER" json:"role"`
}
