package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/usjp/campus-panel/database/model"
	"github.com/usjp/campus-panel/web/middleware"
	"github.com/usjp/campus-panel/web/service"
)

// MAController serves the management assistant dashboard.
type MAController struct {
	BaseController

	campusService *service.CampusService
}

func NewMAController(g *gin.RouterGroup, paths middleware.Paths, campus *service.CampusService) *MAController {
	a := &MAController{
		BaseController: newBase(paths, nil),
		campusService:  campus,
	}
	a.initRouter(g)
	return a
}

func (a *MAController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/", middleware.RequireRole(a.paths, model.RoleMA))
	g.GET("/ma-dashboard", a.dashboard)
}

func (a *MAController) dashboard(c *gin.Context) {
	user := middleware.Principal(c)
	divisions, err := a.campusService.DivisionsOf(user.Id)
	if err != nil {
		a.flashError(c, err)
	}
	html(c, "ma_dashboard.html", "pages.maDashboard.title", gin.H{
		"profile":   user.Profile,
		"divisions": divisions,
	})
}
