package models

import "github.com/google/uuid"

const (
	EnrollmentPending  = "pending"
	EnrollmentApproved = "approved"
	EnrollmentRejected = "rejected"
)

// Enrollment is a user's request to join a course.
type Enrollment struct {
	Model

	UserID   uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	CourseID uuid.UUID `gorm:"type:uuid;index;not null" json:"courseId"`
	Status   string    `gorm:"size:16;not null;default:pending" json:"status"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
