package models

import "github.com/google/uuid"

// Review is a student's rating of a course. One per user and course.
type Review struct {
	Model

	UserID   uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	CourseID uuid.UUID `gorm:"type:uuid;index;not null" json:"courseId"`
	Rating   int       `gorm:"not null" json:"rating"` // 1-5
	Comment  string    `gorm:"type:text" json:"comment"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
