package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/usjp/campus-panel/config"
	"github.com/usjp/campus-panel/database"
	"github.com/usjp/campus-panel/database/model"
)

type services struct {
	db          *gorm.DB
	credentials *CredentialService
	profiles    *ProfileService
	provision   *ProvisionService
	auth        *AuthService
	campus      *CampusService
	audit       *AuditLogService
}

func setup(t *testing.T) *services {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Type:   config.DatabaseTypeSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	}
	db, err := database.Open(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	credentials := &CredentialService{DB: db}
	profiles := &ProfileService{DB: db}
	return &services{
		db:          db,
		credentials: credentials,
		profiles:    profiles,
		provision:   NewProvisionService(credentials, profiles),
		auth:        NewAuthService(credentials),
		campus:      NewCampusService(credentials),
		audit:       &AuditLogService{DB: db},
	}
}

func (s *services) mustCreateAdmin(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := s.provision.CreateAdmin(AccountForm{
		Username: username,
		Email:    username + "@sjp.ac.lk",
		Password: "adminpass",
	})
	require.NoError(t, err)
	return u
}

func (s *services) mustCreateMA(t *testing.T, username, password string) *model.User {
	t.Helper()
	u, err := s.provision.CreateMA(AccountForm{
		Username: username,
		Email:    username + "@sjp.ac.lk",
		Password: password,
		Phone:    "0771234567",
	})
	require.NoError(t, err)
	return u
}

// mustCreateBareUser creates an identity that was never given a profile.
func (s *services) mustCreateBareUser(t *testing.T, username, password string) *model.User {
	t.Helper()
	u, err := s.credentials.Create(s.db, username, username+"@sjp.ac.lk", password)
	require.NoError(t, err)
	return u
}
