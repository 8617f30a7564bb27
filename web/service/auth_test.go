package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usjp/campus-panel/database/model"
)

func TestLoginMatchingRole(t *testing.T) {
	s := setup(t)
	ma := s.mustCreateMA(t, "jsmith", "pass1234")

	user, err := s.auth.Login("jsmith", "pass1234", model.RoleMA)
	require.NoError(t, err)
	assert.Equal(t, ma.Id, user.Id)
	require.NotNil(t, user.Profile)
	assert.Equal(t, model.RoleMA, user.Profile.Role)
}

func TestLoginRoleMismatch(t *testing.T) {
	s := setup(t)
	s.mustCreateMA(t, "jsmith", "pass1234")
	s.mustCreateAdmin(t, "root")

	_, err := s.auth.Login("jsmith", "pass1234", model.RoleAdmin)
	assert.ErrorIs(t, err, ErrRoleMismatch)

	_, err = s.auth.Login("root", "adminpass", model.RoleMA)
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestLoginBadCredentials(t *testing.T) {
	s := setup(t)
	s.mustCreateMA(t, "jsmith", "pass1234")

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "jsmith", "pass12345"},
		{"unknown user", "nobody", "pass1234"},
		{"empty username", "", "pass1234"},
		{"empty password", "jsmith", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.auth.Login(tc.username, tc.password, model.RoleMA)
			assert.ErrorIs(t, err, ErrAuthenticationFailed)
		})
	}
}

func TestLoginWithoutProfile(t *testing.T) {
	s := setup(t)
	s.mustCreateBareUser(t, "orphan", "pass1234")

	for _, role := range []model.Role{model.RoleAdmin, model.RoleMA} {
		_, err := s.auth.Login("orphan", "pass1234", role)
		assert.ErrorIs(t, err, ErrNotProvisioned)
	}
}

func TestRoleOf(t *testing.T) {
	s := setup(t)
	ma := s.mustCreateMA(t, "jsmith", "pass1234")
	orphan := s.mustCreateBareUser(t, "orphan", "pass1234")

	role, ok, err := s.profiles.RoleOf(ma.Id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.RoleMA, role)

	_, ok, err = s.profiles.RoleOf(orphan.Id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMessageKey(t *testing.T) {
	assert.Equal(t, "errors.validation.username_taken", MessageKey(invalid("username", RuleUsernameTaken)))
	assert.Equal(t, "errors.targetNotMA", MessageKey(ErrTargetNotMA))
	assert.Equal(t, "errors.roleMismatch", MessageKey(ErrRoleMismatch))
	assert.Equal(t, "errors.selfActionForbidden", MessageKey(ErrSelfActionForbidden))
	assert.Equal(t, "errors.internal", MessageKey(assert.AnError))
	assert.ErrorIs(t, ErrTargetNotMA, ErrRoleMismatch)
}
