package service

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/usjp/campus-panel/database/model"
	"github.com/usjp/campus-panel/logger"
	"github.com/usjp/campus-panel/util/metrics"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer input
	maxPasswordBytes = 72
)

var validate = validator.New()

// AccountForm carries the fields of a new account.
type AccountForm struct {
	Username string `form:"username" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Phone    string `form:"phone" validate:"omitempty,max=15"`
}

// PasswordForm carries an admin-initiated password reset.
type PasswordForm struct {
	NewPassword     string `form:"new_password"`
	ConfirmPassword string `form:"confirm_password"`
}

// ProvisionService creates, deletes and resets management assistant
// accounts on behalf of an admin.
type ProvisionService struct {
	DB          *gorm.DB
	Credentials *CredentialService
	Profiles    ProfileAssigner
	Directory   *ProfileService
}

func NewProvisionService(credentials *CredentialService, profiles *ProfileService) *ProvisionService {
	return &ProvisionService{
		DB:          credentials.DB,
		Credentials: credentials,
		Profiles:    profiles,
		Directory:   profiles,
	}
}

// ListMA returns every management assistant account.
func (s *ProvisionService) ListMA() ([]model.User, error) {
	return s.Directory.UsersWithRole(model.RoleMA)
}

// CreateMA provisions a management assistant. The identity and its profile
// are written in one transaction.
func (s *ProvisionService) CreateMA(form AccountForm) (*model.User, error) {
	user, err := s.provision(form, model.RoleMA)
	metrics.ObserveProvisioning("create_ma", outcome(err))
	return user, err
}

// CreateAdmin provisions an admin account through the same rules. Used to
// bootstrap a deployment.
func (s *ProvisionService) CreateAdmin(form AccountForm) (*model.User, error) {
	user, err := s.provision(form, model.RoleAdmin)
	metrics.ObserveProvisioning("create_admin", outcome(err))
	return user, err
}

func (s *ProvisionService) provision(form AccountForm, role model.Role) (*model.User, error) {
	if err := validateAccountForm(form); err != nil {
		return nil, err
	}

	var user *model.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		taken, err := s.Credentials.UsernameTaken(tx, form.Username)
		if err != nil {
			return err
		}
		if taken {
			return invalid("username", RuleUsernameTaken)
		}

		user, err = s.Credentials.Create(tx, form.Username, form.Email, form.Password)
		if err != nil {
			return err
		}
		profile, err := s.Profiles.Assign(tx, user.Id, role, form.Phone)
		if err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("provisioned %s account %q", role, user.Username)
	return user, nil
}

// validateAccountForm applies the field rules in order and stops at the
// first violation.
func validateAccountForm(form AccountForm) error {
	if err := validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return invalid(strings.ToLower(fieldErrs[0].Field()), RuleInvalidForm)
		}
		return invalid("form", RuleInvalidForm)
	}
	if strings.IndexFunc(form.Username, unicode.IsSpace) >= 0 {
		return invalid("username", RuleUsernameWhitespace)
	}
	if utf8.RuneCountInString(form.Password) < minPasswordLength {
		return invalid("password", RulePasswordTooShort)
	}
	if len(form.Password) > maxPasswordBytes {
		return invalid("password", RulePasswordTooLong)
	}
	return nil
}

// DeleteMA removes a management assistant. Divisions it was assigned to
// become unassigned.
func (s *ProvisionService) DeleteMA(actorID, targetID int) (*model.User, error) {
	user, err := s.deleteMA(actorID, targetID)
	metrics.ObserveProvisioning("delete_ma", outcome(err))
	return user, err
}

func (s *ProvisionService) deleteMA(actorID, targetID int) (*model.User, error) {
	if actorID == targetID {
		return nil, ErrSelfActionForbidden
	}
	user, err := s.Credentials.GetUser(targetID)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(model.RoleMA) {
		return nil, ErrTargetNotMA
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Division{}).
			Where("assistant_id = ?", user.Id).
			Update("assistant_id", nil).Error; err != nil {
			return err
		}
		if err := s.Directory.Remove(tx, user.Id); err != nil {
			return err
		}
		return s.Credentials.Delete(tx, user.Id)
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("deleted management assistant %q", user.Username)
	return user, nil
}

// GetMA returns a management assistant account or an error suitable for
// the password reset form.
func (s *ProvisionService) GetMA(targetID int) (*model.User, error) {
	user, err := s.Credentials.GetUser(targetID)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(model.RoleMA) {
		return nil, ErrTargetNotMA
	}
	return user, nil
}

// ChangeMAPassword resets the password of a management assistant.
func (s *ProvisionService) ChangeMAPassword(targetID int, form PasswordForm) (*model.User, error) {
	user, err := s.changeMAPassword(targetID, form)
	metrics.ObserveProvisioning("change_ma_password", outcome(err))
	return user, err
}

func (s *ProvisionService) changeMAPassword(targetID int, form PasswordForm) (*model.User, error) {
	user, err := s.GetMA(targetID)
	if err != nil {
		return nil, err
	}
	if form.NewPassword == "" || form.ConfirmPassword == "" {
		return nil, invalid("new_password", RulePasswordRequired)
	}
	if form.NewPassword != form.ConfirmPassword {
		return nil, invalid("confirm_password", RulePasswordMismatch)
	}
	if utf8.RuneCountInString(form.NewPassword) < minPasswordLength {
		return nil, invalid("new_password", RulePasswordTooShort)
	}
	if len(form.NewPassword) > maxPasswordBytes {
		return nil, invalid("new_password", RulePasswordTooLong)
	}
	if err := s.Credentials.SetPassword(user.Id, form.NewPassword); err != nil {
		return nil, err
	}
	logger.Infof("password changed for management assistant %q", user.Username)
	return user, nil
}
