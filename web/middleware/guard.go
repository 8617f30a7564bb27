package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/usjp/campus-panel/database/model"
	"github.com/usjp/campus-panel/logger"
	"github.com/usjp/campus-panel/util/metrics"
	"github.com/usjp/campus-panel/web/entity"
	"github.com/usjp/campus-panel/web/locale"
	"github.com/usjp/campus-panel/web/service"
	"github.com/usjp/campus-panel/web/session"
)

const principalKey = "principal"

// PrincipalLoader resolves a session's user id into a user with its
// profile preloaded.
type PrincipalLoader interface {
	LoadPrincipal(id int) (*model.User, error)
}

// Paths are the entry points the guard redirects to. Every path already
// includes the base path.
type Paths struct {
	AdminLogin     string
	MALogin        string
	AdminDashboard string
	MADashboard    string
}

// LoginFor returns the login entry point reserved for role.
func (p Paths) LoginFor(role model.Role) string {
	if role == model.RoleMA {
		return p.MALogin
	}
	return p.AdminLogin
}

// DashboardFor returns the home of role.
func (p Paths) DashboardFor(role model.Role) string {
	if role == model.RoleMA {
		return p.MADashboard
	}
	return p.AdminDashboard
}

// Authenticate loads the principal bound to the session. A binding to a
// user that no longer exists is dropped and the request continues as
// anonymous.
func Authenticate(loader PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := session.GetLoginUserID(c)
		if !ok {
			c.Next()
			return
		}
		user, err := loader.LoadPrincipal(id)
		switch {
		case err == nil:
			c.Set(principalKey, user)
		case errors.Is(err, service.ErrNotFound):
			logger.Infof("dropping session of deleted user %d", id)
			if err := session.ClearSession(c); err != nil {
				logger.Warning("clear session failed:", err)
			}
		default:
			logger.Error("load principal failed:", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated user of the request, or nil.
func Principal(c *gin.Context) *model.User {
	if v, ok := c.Get(principalKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

// LoginRequired sends anonymous callers to the admin login.
func LoginRequired(paths Paths) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c) == nil {
			metrics.AccessDenied.WithLabelValues("any", "anonymous").Inc()
			redirect(c, paths.AdminLogin)
			return
		}
		c.Next()
	}
}

// RequireRole admits only principals whose profile carries role. It never
// changes the session binding; it only queues a flash for the caller.
func RequireRole(paths Paths, role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := Principal(c)
		switch {
		case user == nil:
			metrics.AccessDenied.WithLabelValues(string(role), "anonymous").Inc()
			redirect(c, paths.LoginFor(role))
		case user.Profile == nil:
			metrics.AccessDenied.WithLabelValues(string(role), "not_provisioned").Inc()
			logger.Warningf("user %q has no profile; access to %s denied", user.Username, c.Request.URL.Path)
			if err := session.AddError(c, locale.T(c, service.MessageKey(service.ErrNotProvisioned))); err != nil {
				logger.Warning("add flash failed:", err)
			}
			redirect(c, paths.AdminLogin)
		case user.Profile.Role != role:
			metrics.AccessDenied.WithLabelValues(string(role), "role_mismatch").Inc()
			logger.Debugf("user %q with role %s redirected away from %s", user.Username, user.Profile.Role, c.Request.URL.Path)
			redirect(c, paths.DashboardFor(user.Profile.Role))
		default:
			c.Next()
		}
	}
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// RequireRoleJSON is RequireRole for API routes: it answers 401 or 403
// instead of redirecting.
func RequireRoleJSON(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := Principal(c)
		var status int
		var key string
		switch {
		case user == nil:
			status, key = http.StatusUnauthorized, "errors.loginRequired"
			metrics.AccessDenied.WithLabelValues(string(role), "anonymous").Inc()
		case user.Profile == nil:
			status, key = http.StatusForbidden, service.MessageKey(service.ErrNotProvisioned)
			metrics.AccessDenied.WithLabelValues(string(role), "not_provisioned").Inc()
		case user.Profile.Role != role:
			status, key = http.StatusForbidden, service.MessageKey(service.ErrRoleMismatch)
			metrics.AccessDenied.WithLabelValues(string(role), "role_mismatch").Inc()
		default:
			c.Next()
			return
		}
		c.AbortWithStatusJSON(status, entity.Msg{Success: false, Msg: locale.T(c, key)})
	}
}
