package service

import (
	"fmt"

	"github.com/usjp/campus-panel/database"
	"github.com/usjp/campus-panel/database/model"

	"gorm.io/gorm"
)

// ProfileAssigner attaches the one and only profile of a new identity.
type ProfileAssigner interface {
	Assign(tx *gorm.DB, userID int, role model.Role, phone string) (*model.Profile, error)
}

// ProfileService is the directory mapping identities to roles. Roles are
// written once, when the identity is created, and never updated.
type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService() *ProfileService {
	return &ProfileService{DB: database.GetDB()}
}

// RoleOf returns the role of a user; ok is false when no profile exists.
func (s *ProfileService) RoleOf(userID int) (role model.Role, ok bool, err error) {
	profile := &model.Profile{}
	err = s.DB.Where("user_id = ?", userID).First(profile).Error
	if database.IsNotFound(err) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return profile.Role, true, nil
}

func (s *ProfileService) Assign(tx *gorm.DB, userID int, role model.Role, phone string) (*model.Profile, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("assign profile: invalid role %q", role)
	}
	profile := &model.Profile{
		UserId: userID,
		Role:   role,
		Phone:  phone,
	}
	if err := tx.Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// UsersWithRole lists the users provisioned with role, oldest first.
func (s *ProfileService) UsersWithRole(role model.Role) ([]model.User, error) {
	var users []model.User
	err := s.DB.Preload("Profile").
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Where("profiles.role = ?", role).
		Order("users.id ASC").
		Find(&users).
		Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Remove deletes the profile of a user inside tx.
func (s *ProfileService) Remove(tx *gorm.DB, userID int) error {
	return tx.Where("user_id = ?", userID).Delete(&model.Profile{}).Error
}
