package controller

import (
	"errors"
	"net/http"
	"text/template"

	"github.com/gin-gonic/gin"

	"github.com/usjp/campus-panel/database/model"
	"github.com/usjp/campus-panel/logger"
	"github.com/usjp/campus-panel/util/metrics"
	"github.com/usjp/campus-panel/web/entity"
	"github.com/usjp/campus-panel/web/middleware"
	"github.com/usjp/campus-panel/web/service"
	"github.com/usjp/campus-panel/web/session"
)

// IndexController handles the public pages, both login surfaces, logout
// and the own-profile page.
type IndexController struct {
	BaseController

	authService  *service.AuthService
	loginLimiter middleware.Limiter
}

// NewIndexController creates a new IndexController and initializes its routes.
// A nil limiter disables login throttling.
func NewIndexController(g *gin.RouterGroup, paths middleware.Paths, auth *service.AuthService,
	audit *service.AuditLogService, limiter middleware.Limiter,
) *IndexController {
	a := &IndexController{
		BaseController: newBase(paths, audit),
		authService:    auth,
		loginLimiter:   limiter,
	}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.page("home.html", "pages.home.title"))
	g.GET("/about", a.page("about.html", "pages.about.title"))
	g.GET("/contact", a.page("contact.html", "pages.contact.title"))
	g.GET("/login", func(c *gin.Context) { a.redirect(c, a.paths.AdminLogin) })

	for _, role := range []model.Role{model.RoleAdmin, model.RoleMA} {
		path := "/" + string(role) + "-login"
		g.GET(path, a.loginPage(role))
		g.POST(path, a.throttle(role), a.login(role))
	}

	authed := g.Group("/", middleware.LoginRequired(a.paths))
	authed.POST("/logout", a.logout)
	authed.GET("/profile", a.profile)
}

func (a *IndexController) page(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		html(c, name, title, nil)
	}
}

func loginTitle(role model.Role) string {
	if role == model.RoleMA {
		return "pages.maLogin.title"
	}
	return "pages.adminLogin.title"
}

func (a *IndexController) renderLogin(c *gin.Context, code int, role model.Role, username, errMsg string) {
	htmlStatus(c, code, "login.html", loginTitle(role), gin.H{
		"role":     string(role),
		"action":   a.paths.LoginFor(role),
		"username": username,
		"error":    errMsg,
	})
}

func (a *IndexController) loginPage(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		a.renderLogin(c, http.StatusOK, role, "", "")
	}
}

func (a *IndexController) throttle(role model.Role) gin.HandlerFunc {
	return middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Limiter: a.loginLimiter,
		OnLimit: func(c *gin.Context) {
			metrics.LoginAttempts.WithLabelValues(string(role), "throttled").Inc()
			a.renderLogin(c, http.StatusTooManyRequests, role, "", I18nWeb(c, "errors.tooManyAttempts"))
		},
	})
}

// login authenticates on the surface reserved for role. Only a successful
// attempt binds the session.
func (a *IndexController) login(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form entity.LoginForm
		if err := c.ShouldBind(&form); err != nil {
			a.renderLogin(c, http.StatusBadRequest, role, "", I18nWeb(c, "errors.validation.invalid_form"))
			return
		}
		safeUser := template.HTMLEscapeString(form.Username)

		user, err := a.authService.Login(form.Username, form.Password, role)
		if err != nil {
			metrics.LoginAttempts.WithLabelValues(string(role), loginOutcome(err)).Inc()
			logger.Warningf("%s login rejected for %q from %s: %v", role, safeUser, c.ClientIP(), err)
			a.record(c, service.AuditEntry{
				Username: form.Username,
				Action:   service.ActionLoginFailed,
				Resource: "session",
				Details:  map[string]any{"surface": role, "reason": service.MessageKey(err)},
			})
			switch {
			case errors.Is(err, service.ErrNotProvisioned):
				a.flashError(c, err)
				a.redirect(c, a.paths.AdminLogin)
			case errors.Is(err, service.ErrRoleMismatch):
				a.flashError(c, err)
				a.redirect(c, a.paths.LoginFor(role))
			default:
				code := http.StatusOK
				if !errors.Is(err, service.ErrAuthenticationFailed) {
					logger.Error("login failed:", err)
					code = http.StatusInternalServerError
				}
				a.renderLogin(c, code, role, form.Username, I18nWeb(c, service.MessageKey(err)))
			}
			return
		}

		if err := session.SetLoginUser(c, user.Id); err != nil {
			logger.Warning("Unable to save session:", err)
			a.renderLogin(c, http.StatusInternalServerError, role, form.Username, I18nWeb(c, "errors.internal"))
			return
		}
		metrics.LoginAttempts.WithLabelValues(string(role), "success").Inc()
		logger.Infof("%s logged in successfully, Ip Address: %s", safeUser, c.ClientIP())
		a.record(c, service.AuditEntry{
			UserID:   user.Id,
			Username: user.Username,
			Action:   service.ActionLogin,
			Resource: "session",
			Details:  map[string]any{"surface": role},
		})
		a.redirect(c, a.paths.DashboardFor(user.Profile.Role))
	}
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		return "bad_credentials"
	case errors.Is(err, service.ErrNotProvisioned):
		return "not_provisioned"
	case errors.Is(err, service.ErrRoleMismatch):
		return "role_mismatch"
	default:
		return "error"
	}
}

func (a *IndexController) logout(c *gin.Context) {
	user := middleware.Principal(c)
	logger.Infof("%s logged out successfully", user.Username)
	a.record(c, service.AuditEntry{Action: service.ActionLogout, Resource: "session"})
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	a.redirect(c, a.paths.AdminLogin)
}

func (a *IndexController) profile(c *gin.Context) {
	html(c, "profile.html", "pages.profile.title", gin.H{
		"user":    middleware.Principal(c),
		"profile": middleware.Principal(c).Profile,
	})
}
