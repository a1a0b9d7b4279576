package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	StatusDraft     CourseStatus = "DRAFT"
	StatusPublished CourseStatus = "PUBLISHED"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "BEGINNER"
	LevelIntermediate CourseLevel = "INTERMEDIATE"
	LevelAdvanced     CourseLevel = "ADVANCED"
)

// Course is a catalog entry. DisplayOrder is nil until a reorder assigns a rank.
type Course struct {
	Model

	Title            string       `gorm:"size:255;not null" json:"title"`
	Slug             string       `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	ShortDescription string       `gorm:"size:512" json:"shortDescription"`
	Description      string       `gorm:"type:text" json:"description"`
	Status           CourseStatus `gorm:"size:16;index;not null;default:DRAFT" json:"status"`
	Level            CourseLevel  `gorm:"size:16;index" json:"level"`
	Featured         bool         `gorm:"index;not null;default:false" json:"featured"`
	DisplayOrder     *int         `gorm:"index" json:"displayOrder"`
	ImageURL         string       `json:"imageUrl"`
	Language         string       `gorm:"size:32" json:"language"`
	DurationHours    int          `json:"durationHours"`
	Rating           float64      `gorm:"not null;default:0" json:"rating"`
	ReviewCount      int          `gorm:"not null;default:0" json:"reviewCount"`

	InstructorID *uuid.UUID      `gorm:"type:uuid;index" json:"instructorId"`
	Instructor   *Instructor     `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Price        *Price          `gorm:"foreignKey:CourseID" json:"price,omitempty"`
	Categories   []Category      `gorm:"many2many:course_categories" json:"categories"`
	Lessons      []Lesson        `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
	FAQs         []FAQ           `gorm:"foreignKey:CourseID" json:"faqs,omitempty"`
	Contents     []CourseContent `gorm:"foreignKey:CourseID" json:"contents,omitempty"`
	SEO          *SEO            `gorm:"foreignKey:CourseID" json:"seo,omitempty"`
}

// Price is owned by exactly one course.
type Price struct {
	Model

	CourseID           uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"courseId"`
	OriginalPrice      decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"originalPrice"`
	DiscountedPrice    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"discountedPrice"`
	DiscountPercentage int              `gorm:"not null;default:0" json:"discountPercentage"`
	Currency           string           `gorm:"size:3;not null;default:USD" json:"currency"`
}

// CourseCategory links courses and categories.
type CourseCategory struct {
	CourseID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

type Lesson struct {
	Model

	CourseID        uuid.UUID `gorm:"type:uuid;index;not null" json:"courseId"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	VideoURL        string    `json:"videoUrl"`
	DurationMinutes int       `json:"durationMinutes"`
	Position        int       `gorm:"not null;default:0" json:"position"`
	IsPreview       bool      `gorm:"not null;default:false" json:"isPreview"`
}

type FAQ struct {
	Model

	CourseID uuid.UUID `gorm:"type:uuid;index;not null" json:"courseId"`
	Question string    `gorm:"type:text;not null" json:"question"`
	Answer   string    `gorm:"type:text;not null" json:"answer"`
	Position int       `gorm:"not null;default:0" json:"position"`
}

func (FAQ) TableName() string {
	return "faqs"
}

// CourseContent holds a block of free-form course page content, e.g. "text", "video", "curriculum".
type CourseContent struct {
	Model

	CourseID uuid.UUID      `gorm:"type:uuid;index;not null" json:"courseId"`
	Kind     string         `gorm:"size:32" json:"kind"`
	Position int            `json:"position"`
	Blocks   datatypes.JSON `json:"blocks"`
}

// SEO is the search-engine metadata of a course page.
type SEO struct {
	Model

	CourseID        uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"courseId"`
	MetaTitle       string         `gorm:"size:255" json:"metaTitle"`
	MetaDescription string         `gorm:"size:512" json:"metaDescription"`
	Keywords        datatypes.JSON `json:"keywords"`
	CanonicalURL    string         `json:"canonicalUrl"`
}

func (SEO) TableName() string {
	return "seo_metadata"
}

// BeforeSave keeps DiscountPercentage in step with the two amounts.
func (p *Price) BeforeSave(tx *gorm.DB) error {
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.DiscountPercentage = 0
	if p.DiscountedPrice != nil && p.OriginalPrice.IsPositive() {
		off := p.OriginalPrice.Sub(*p.DiscountedPrice)
		p.DiscountPercentage = int(off.Div(p.OriginalPrice).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	}
	return nil
}
