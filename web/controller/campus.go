package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/usjp/campus-panel/database/model"
	"github.com/usjp/campus-panel/web/entity"
	"github.com/usjp/campus-panel/web/middleware"
	"github.com/usjp/campus-panel/web/service"
)

// CampusController exposes the zone / building / division record store
// to admins as JSON.
type CampusController struct {
	BaseController

	campusService *service.CampusService
}

func NewCampusController(g *gin.RouterGroup, campus *service.CampusService, audit *service.AuditLogService) *CampusController {
	a := &CampusController{
		BaseController: newBase(middleware.Paths{}, audit),
		campusService:  campus,
	}
	a.initRouter(g)
	return a
}

func (a *CampusController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/campus", middleware.RequireRoleJSON(model.RoleAdmin))

	g.GET("/zones", a.listZones)
	g.POST("/zones", a.createZone)
	g.POST("/buildings", a.createBuilding)
	g.POST("/divisions", a.createDivision)
	g.POST("/divisions/:id/assistant", a.assignAssistant)
	g.GET("/assistants/:id/divisions", a.divisionsOf)
}

func (a *CampusController) bind(c *gin.Context, form any) bool {
	if err := c.ShouldBind(form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, service.MessageKey(service.ErrInvalidForm)))
		return false
	}
	return true
}

func (a *CampusController) listZones(c *gin.Context) {
	zones, err := a.campusService.ListZones()
	jsonObj(c, zones, err)
}

func (a *CampusController) createZone(c *gin.Context) {
	var form entity.ZoneForm
	if !a.bind(c, &form) {
		return
	}
	zone := &model.Zone{Name: form.Name}
	err := a.campusService.CreateZone(zone)
	if err == nil {
		a.record(c, service.AuditEntry{Action: service.ActionCreate, Resource: "zone", ResourceID: zone.Id})
	}
	jsonObj(c, zone, err)
}

func (a *CampusController) createBuilding(c *gin.Context) {
	var form entity.BuildingForm
	if !a.bind(c, &form) {
		return
	}
	building := &model.Building{ZoneId: form.ZoneId, Name: form.Name, Floors: form.Floors}
	err := a.campusService.CreateBuilding(building)
	if err == nil {
		a.record(c, service.AuditEntry{Action: service.ActionCreate, Resource: "building", ResourceID: building.Id})
	}
	jsonObj(c, building, err)
}

func (a *CampusController) createDivision(c *gin.Context) {
	var form entity.DivisionForm
	if !a.bind(c, &form) {
		return
	}
	division := &model.Division{BuildingId: form.BuildingId, Name: form.Name, Description: form.Description}
	err := a.campusService.CreateDivision(division)
	if err == nil {
		a.record(c, service.AuditEntry{Action: service.ActionCreate, Resource: "division", ResourceID: division.Id})
	}
	jsonObj(c, division, err)
}

func (a *CampusController) assignAssistant(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		jsonObj(c, nil, err)
		return
	}
	var form entity.AssignForm
	if !a.bind(c, &form) {
		return
	}
	division, err := a.campusService.AssignAssistant(id, form.AssistantId)
	if err == nil {
		a.record(c, service.AuditEntry{
			Action:     service.ActionAssign,
			Resource:   "division",
			ResourceID: division.Id,
			Details:    map[string]any{"assistantId": form.AssistantId},
		})
	}
	jsonObj(c, division, err)
}

func (a *CampusController) divisionsOf(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		jsonObj(c, nil, err)
		return
	}
	divisions, err := a.campusService.DivisionsOf(id)
	jsonObj(c, divisions, err)
}
