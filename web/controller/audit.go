package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/usjp/campus-panel/database/model"
	"github.com/usjp/campus-panel/web/middleware"
	"github.com/usjp/campus-panel/web/service"
)

// AuditController handles audit log operations
type AuditController struct {
	BaseController
}

// NewAuditController creates a new audit controller
func NewAuditController(g *gin.RouterGroup, audit *service.AuditLogService) *AuditController {
	a := &AuditController{
		BaseController: newBase(middleware.Paths{}, audit),
	}
	a.initRouter(g)
	return a
}

func (a *AuditController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/audit", middleware.RequireRoleJSON(model.RoleAdmin))
	g.GET("/logs", a.getAuditLogs)
	g.POST("/clean", a.cleanOldLogs)
}

// getAuditLogs retrieves audit logs with filters
func (a *AuditController) getAuditLogs(c *gin.Context) {
	type request struct {
		UserID int    `form:"user_id"`
		Action string `form:"action"`
		Limit  int    `form:"limit"`
		Offset int    `form:"offset"`
	}

	var req request
	if err := c.ShouldBindQuery(&req); err != nil {
		jsonMsg(c, "", service.ErrInvalidForm)
		return
	}

	// Validate and set defaults
	if req.Limit <= 0 || req.Limit > 1000 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	logs, total, err := a.audit.GetAuditLogs(req.UserID, req.Action, req.Limit, req.Offset)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}

	jsonObj(c, gin.H{
		"logs":  logs,
		"total": total,
	}, nil)
}

// cleanOldLogs removes old audit logs
func (a *AuditController) cleanOldLogs(c *gin.Context) {
	type request struct {
		Days int `form:"days" json:"days" binding:"required,gt=0"`
	}
	var req request
	if err := c.ShouldBind(&req); err != nil {
		jsonMsg(c, "", service.ErrInvalidForm)
		return
	}
	removed, err := a.audit.CleanOldLogs(req.Days)
	jsonObj(c, gin.H{"removed": removed}, err)
}
