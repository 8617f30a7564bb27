package service

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/usjp/campus-panel/database"
	"github.com/usjp/campus-panel/database/model"
	"github.com/usjp/campus-panel/logger"
)

// Audit actions.
const (
	ActionLogin          = "LOGIN"
	ActionLoginFailed    = "LOGIN_FAILED"
	ActionLogout         = "LOGOUT"
	ActionCreate         = "CREATE"
	ActionDelete         = "DELETE"
	ActionPasswordChange = "PASSWORD_CHANGE"
	ActionAssign         = "ASSIGN"
)

// AuditEntry describes one audited action.
type AuditEntry struct {
	UserID     int
	Username   string
	Action     string
	Resource   string
	ResourceID int
	IP         string
	UserAgent  string
	RequestID  string
	Details    map[string]any
}

// AuditLogService handles audit logging
type AuditLogService struct {
	DB *gorm.DB
}

func NewAuditLogService() *AuditLogService {
	return &AuditLogService{DB: database.GetDB()}
}

// LogAction stores an audit entry. Failures are logged and returned; callers
// never abort the audited operation because of them.
func (s *AuditLogService) LogAction(entry AuditEntry) error {
	detailsJSON := ""
	if entry.Details != nil {
		jsonData, err := json.Marshal(entry.Details)
		if err != nil {
			logger.Warning("Failed to marshal audit log details:", err)
		} else {
			detailsJSON = string(jsonData)
		}
	}

	auditLog := model.AuditLog{
		UserID:     entry.UserID,
		Username:   entry.Username,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		IP:         entry.IP,
		UserAgent:  entry.UserAgent,
		RequestID:  entry.RequestID,
		Details:    detailsJSON,
		Timestamp:  time.Now(),
	}

	if err := s.DB.Create(&auditLog).Error; err != nil {
		logger.Warningf("Failed to create audit log: user=%d, action=%s, resource=%s, error=%v", entry.UserID, entry.Action, entry.Resource, err)
		return err
	}
	return nil
}

// GetAuditLogs retrieves audit logs, newest first, optionally filtered by
// user and action.
func (s *AuditLogService) GetAuditLogs(userID int, action string, limit, offset int) ([]model.AuditLog, int64, error) {
	query := s.DB.Model(&model.AuditLog{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AuditLog
	if err := query.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// CleanOldLogs removes audit logs older than specified days
func (s *AuditLogService) CleanOldLogs(days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be greater than 0")
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	result := s.DB.Where("timestamp < ?", cutoff).Delete(&model.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	logger.Infof("Cleaned %d old audit logs (older than %d days)", result.RowsAffected, days)
	return result.RowsAffected, nil
}
