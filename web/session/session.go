// Package session keeps the authenticated user id and one-shot flash
// messages in the gin session.
package session

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "campus_session"

	// RenewIDKey asks a server-side store to issue a new session id on
	// the next save and drop the old one.
	RenewIDKey = "RENEW_SESSION_ID"

	loginUser    = "LOGIN_USER_ID"
	flashError   = "flash_error"
	flashSuccess = "flash_success"
)

// Options returns the cookie options shared by every store.
func Options(maxAge int, secure bool) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetLoginUser binds the session to userID. Any previous binding is
// replaced and the session id is renewed.
func SetLoginUser(c *gin.Context, userID int) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(loginUser, userID)
	s.Set(RenewIDKey, true)
	return s.Save()
}

// GetLoginUserID returns the bound user id, or false for an anonymous session.
func GetLoginUserID(c *gin.Context) (int, bool) {
	s := sessions.Default(c)
	if id, ok := s.Get(loginUser).(int); ok && id > 0 {
		return id, true
	}
	return 0, false
}

// ClearSession drops the binding and every pending flash.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}

// AddError queues an error message for the next rendered page.
func AddError(c *gin.Context, msg string) error {
	return addFlash(c, msg, flashError)
}

// AddSuccess queues a success message for the next rendered page.
func AddSuccess(c *gin.Context, msg string) error {
	return addFlash(c, msg, flashSuccess)
}

func addFlash(c *gin.Context, msg, kind string) error {
	s := sessions.Default(c)
	s.AddFlash(msg, kind)
	return s.Save()
}

// Flashes holds the messages drained from a session.
type Flashes struct {
	Errors  []string
	Success []string
}

func (f Flashes) Empty() bool {
	return len(f.Errors) == 0 && len(f.Success) == 0
}

// PopFlashes drains pending messages. They are shown at most once.
func PopFlashes(c *gin.Context) Flashes {
	s := sessions.Default(c)
	f := Flashes{
		Errors:  toStrings(s.Flashes(flashError)),
		Success: toStrings(s.Flashes(flashSuccess)),
	}
	if !f.Empty() {
		_ = s.Save()
	}
	return f
}

func toStrings(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if msg, ok := v.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}
