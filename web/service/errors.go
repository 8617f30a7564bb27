package service

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrNotProvisioned       = errors.New("account has no role assigned")
	ErrRoleMismatch         = errors.New("role does not permit this operation")
	ErrValidationFailed     = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrSelfActionForbidden  = errors.New("cannot act on own account")

	// ErrTargetNotMA rejects account operations aimed at admins or
	// unassigned accounts.
	ErrTargetNotMA = fmt.Errorf("%w: target is not a management assistant", ErrRoleMismatch)

	// ErrInvalidForm reports a request body that could not be bound.
	ErrInvalidForm error = &ValidationError{Field: "form", Rule: RuleInvalidForm}
)

// Validation rules, in the order provisioning checks them.
const (
	RuleInvalidForm        = "invalid_form"
	RuleUsernameWhitespace = "username_whitespace"
	RulePasswordTooShort   = "password_too_short"
	RulePasswordTooLong    = "password_too_long"
	RuleUsernameTaken      = "username_taken"
	RulePasswordRequired   = "password_required"
	RulePasswordMismatch   = "password_mismatch"
	RuleNameTaken          = "name_taken"
)

// ValidationError is a field-level rule violation.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func invalid(field, rule string) error {
	return &ValidationError{Field: field, Rule: rule}
}

// HasRule reports whether err is a ValidationError for rule.
func HasRule(err error, rule string) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Rule == rule
}

// MessageKey maps an error to the translation key shown to the user.
func MessageKey(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return "errors.validation." + ve.Rule
	case errors.Is(err, ErrValidationFailed):
		return "errors.validation." + RuleInvalidForm
	case errors.Is(err, ErrAuthenticationFailed):
		return "errors.authenticationFailed"
	case errors.Is(err, ErrNotProvisioned):
		return "errors.notProvisioned"
	case errors.Is(err, ErrTargetNotMA):
		return "errors.targetNotMA"
	case errors.Is(err, ErrRoleMismatch):
		return "errors.roleMismatch"
	case errors.Is(err, ErrNotFound):
		return "errors.notFound"
	case errors.Is(err, ErrSelfActionForbidden):
		return "errors.selfActionForbidden"
	default:
		return "errors.internal"
	}
}

// outcome classifies an operation result for metrics and audit.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidationFailed),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrRoleMismatch),
		errors.Is(err, ErrSelfActionForbidden):
		return "rejected"
	default:
		return "error"
	}
}
