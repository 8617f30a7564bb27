package service

import (
	"github.com/usjp/campus-panel/database"
	"github.com/usjp/campus-panel/database/model"
	"github.com/usjp/campus-panel/logger"
	"github.com/usjp/campus-panel/util/crypto"

	"gorm.io/gorm"
)

// CredentialService stores usernames with password hashes and checks
// credentials against them.
type CredentialService struct {
	DB *gorm.DB
}

func NewCredentialService() *CredentialService {
	return &CredentialService{DB: database.GetDB()}
}

// Authenticate returns the matching user with its profile loaded.
func (s *CredentialService) Authenticate(username string, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, ErrAuthenticationFailed
	}

	user := &model.User{}
	err := s.DB.Preload("Profile").
		Where("username = ?", username).
		First(user).
		Error
	if database.IsNotFound(err) {
		crypto.CheckUnknownUser(password)
		return nil, ErrAuthenticationFailed
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, err
	}

	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil, ErrAuthenticationFailed
	}
	return user, nil
}

// GetUser loads a user and its optional profile.
func (s *CredentialService) GetUser(id int) (*model.User, error) {
	user := &model.User{}
	err := s.DB.Preload("Profile").First(user, id).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// LoadPrincipal resolves the identity bound to a session.
func (s *CredentialService) LoadPrincipal(id int) (*model.User, error) {
	return s.GetUser(id)
}

// UsernameTaken must run inside the provisioning transaction.
func (s *CredentialService) UsernameTaken(tx *gorm.DB, username string) (bool, error) {
	var count int64
	err := tx.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// Create stores a new identity with a hashed password.
func (s *CredentialService) Create(tx *gorm.DB, username, email, password string) (*model.User, error) {
	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	if err := tx.Create(user).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, invalid("username", RuleUsernameTaken)
		}
		return nil, err
	}
	return user, nil
}

// SetPassword overwrites the stored credential. Sessions already bound to
// the user stay valid.
func (s *CredentialService) SetPassword(id int, password string) error {
	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	res := s.DB.Model(&model.User{}).
		Where("id = ?", id).
		Update("password", hashedPassword)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the identity row. Callers clear dependent rows first in
// the same transaction.
func (s *CredentialService) Delete(tx *gorm.DB, id int) error {
	res := tx.Delete(&model.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
