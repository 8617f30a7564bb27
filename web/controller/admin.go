package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/usjp/campus-panel/database/model"
	"github.com/usjp/campus-panel/web/middleware"
	"github.com/usjp/campus-panel/web/service"
)

// AdminController serves the admin dashboard and the management assistant
// account screens. Every route requires the admin role.
type AdminController struct {
	BaseController

	provisionService *service.ProvisionService
}

func NewAdminController(g *gin.RouterGroup, paths middleware.Paths, provision *service.ProvisionService,
	audit *service.AuditLogService,
) *AdminController {
	a := &AdminController{
		BaseController:   newBase(paths, audit),
		provisionService: provision,
	}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/", middleware.RequireRole(a.paths, model.RoleAdmin))

	g.GET("/admin-dashboard", a.dashboard)
	g.GET("/create-ma", a.createMAPage)
	g.POST("/create-ma", a.createMA)
	g.POST("/delete-ma/:id", a.deleteMA)
	g.GET("/change-ma-password/:id", a.changePasswordPage)
	g.POST("/change-ma-password/:id", a.changePassword)
}

func (a *AdminController) dashboard(c *gin.Context) {
	users, err := a.provisionService.ListMA()
	if err != nil {
		a.flashError(c, err)
		users = nil
	}
	html(c, "admin_dashboard.html", "pages.adminDashboard.title", gin.H{
		"ma_users": users,
		"ma_count": strconv.Itoa(len(users)),
	})
}

func (a *AdminController) createMAPage(c *gin.Context) {
	html(c, "create_ma.html", "pages.createMA.title", nil)
}

func (a *AdminController) createMA(c *gin.Context) {
	var form service.AccountForm
	if err := c.ShouldBind(&form); err != nil {
		a.flashError(c, service.ErrInvalidForm)
		a.redirect(c, c.Request.URL.Path)
		return
	}
	user, err := a.provisionService.CreateMA(form)
	if err != nil {
		a.flashError(c, err)
		a.redirect(c, c.Request.URL.Path)
		return
	}
	a.record(c, service.AuditEntry{
		Action:     service.ActionCreate,
		Resource:   "ma",
		ResourceID: user.Id,
		Details:    map[string]any{"username": user.Username},
	})
	a.flashSuccess(c, "success.maCreated", "Username=="+user.Username)
	a.redirect(c, a.paths.AdminDashboard)
}

func (a *AdminController) deleteMA(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		var user *model.User
		user, err = a.provisionService.DeleteMA(middleware.Principal(c).Id, id)
		if err == nil {
			a.record(c, service.AuditEntry{
				Action:     service.ActionDelete,
				Resource:   "ma",
				ResourceID: user.Id,
				Details:    map[string]any{"username": user.Username},
			})
			a.flashSuccess(c, "success.maDeleted", "Username=="+user.Username)
		}
	}
	if err != nil {
		a.flashError(c, err)
	}
	a.redirect(c, a.paths.AdminDashboard)
}

func (a *AdminController) changePasswordPage(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		a.flashError(c, err)
		a.redirect(c, a.paths.AdminDashboard)
		return
	}
	user, err := a.provisionService.GetMA(id)
	if err != nil {
		a.flashError(c, err)
		a.redirect(c, a.paths.AdminDashboard)
		return
	}
	html(c, "change_ma_password.html", "pages.changePassword.title", gin.H{
		"target": user,
	})
}

// changePassword sends rule violations back to the form of the same user;
// a missing or non-MA target goes back to the dashboard.
func (a *AdminController) changePassword(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		a.flashError(c, err)
		a.redirect(c, a.paths.AdminDashboard)
		return
	}
	var form service.PasswordForm
	if err := c.ShouldBind(&form); err != nil {
		a.flashError(c, service.ErrInvalidForm)
		a.redirect(c, c.Request.URL.Path)
		return
	}
	user, err := a.provisionService.ChangeMAPassword(id, form)
	if err != nil {
		a.flashError(c, err)
		if errors.Is(err, service.ErrValidationFailed) {
			a.redirect(c, c.Request.URL.Path)
		} else {
			a.redirect(c, a.paths.AdminDashboard)
		}
		return
	}
	a.record(c, service.AuditEntry{
		Action:     service.ActionPasswordChange,
		Resource:   "ma",
		ResourceID: user.Id,
		Details:    map[string]any{"username": user.Username},
	})
	a.flashSuccess(c, "success.passwordChanged", "Username=="+user.Username)
	a.redirect(c, a.paths.AdminDashboard)
}
