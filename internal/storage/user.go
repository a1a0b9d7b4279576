package storage

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/s/courseCatalog/internal/models"
)

type UserRepo struct {
	db          *gorm.DB
	adminEmails map[string]bool
}

// NewUserRepo returns a repo that grants ADMIN to newly created users whose email is in adminEmails.
func NewUserRepo(db *gorm.DB, adminEmails []string) *UserRepo {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = true
		}
	}
	return &UserRepo{db: db, adminEmails: admins}
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// SaveUser finds a user by Google ID; if found, it refreshes the profile, otherwise it creates the user.
// The role of an existing user is never touched here.
func (r *UserRepo) SaveUser(ctx context.Context, info models.User) (*models.User, error) {
	db := r.db.WithContext(ctx)

	var existing models.User
	err := db.Where("google_id = ?", info.GoogleID).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"email":   info.Email,
			"name":    info.Name,
			"picture": info.Picture,
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, errors.Wrap(translate(err), "update user")
		}
		return &existing, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		info.ID = uuid.Nil
		info.Role = models.RoleUser
		if r.adminEmails[strings.ToLower(info.Email)] {
			info.Role = models.RoleAdmin
		}
		if err := db.Create(&info).Error; err != nil {
			return nil, errors.Wrap(translate(err), "create user")
		}
		return &info, nil

	default:
		return nil, err
	}
}
