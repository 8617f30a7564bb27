// Package controller provides the HTTP handlers of the campus panel: the
// public pages, the two login surfaces, the admin account screens and the
// campus JSON API.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/usjp/campus-panel/logger"
	"github.com/usjp/campus-panel/web/locale"
	"github.com/usjp/campus-panel/web/middleware"
	"github.com/usjp/campus-panel/web/service"
	"github.com/usjp/campus-panel/web/session"
)

// BaseController provides what every controller shares: the route table
// the guard redirects to and the audit trail.
type BaseController struct {
	paths middleware.Paths
	audit *service.AuditLogService
}

func newBase(paths middleware.Paths, audit *service.AuditLogService) BaseController {
	return BaseController{paths: paths, audit: audit}
}

// I18nWeb retrieves an internationalized message for the web interface based on the current locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.T(c, name, params...)
}

func (a *BaseController) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// flashError queues the localized message of err for the next page.
func (a *BaseController) flashError(c *gin.Context, err error) {
	if service.MessageKey(err) == "errors.internal" {
		logger.Error(c.Request.URL.Path, "failed:", err)
	}
	if ferr := session.AddError(c, I18nWeb(c, service.MessageKey(err))); ferr != nil {
		logger.Warning("Unable to save flash:", ferr)
	}
}

func (a *BaseController) flashSuccess(c *gin.Context, key string, params ...string) {
	if err := session.AddSuccess(c, I18nWeb(c, key, params...)); err != nil {
		logger.Warning("Unable to save flash:", err)
	}
}

// record writes an audit entry, filling the request metadata and, when
// the entry names no user, the principal. Audit failures never fail the
// request.
func (a *BaseController) record(c *gin.Context, entry service.AuditEntry) {
	if a.audit == nil {
		return
	}
	if entry.UserID == 0 && entry.Username == "" {
		if user := middleware.Principal(c); user != nil {
			entry.UserID = user.Id
			entry.Username = user.Username
		}
	}
	entry.IP = c.ClientIP()
	entry.UserAgent = c.GetHeader("User-Agent")
	entry.RequestID = middleware.GetRequestID(c)
	_ = a.audit.LogAction(entry)
}
