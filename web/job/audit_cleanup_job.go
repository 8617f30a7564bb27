// Package job holds the periodic maintenance tasks scheduled by the web
// server's cron.
package job

import (
	"github.com/usjp/campus-panel/logger"
)

// AuditCleaner deletes audit entries older than a number of days.
type AuditCleaner interface {
	CleanOldLogs(days int) (int64, error)
}

// AuditCleanupJob cleans up old audit logs
type AuditCleanupJob struct {
	auditService  AuditCleaner
	retentionDays int
}

// NewAuditCleanupJob creates a new audit cleanup job. A non-positive
// retention falls back to 90 days.
func NewAuditCleanupJob(audit AuditCleaner, retentionDays int) *AuditCleanupJob {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &AuditCleanupJob{
		auditService:  audit,
		retentionDays: retentionDays,
	}
}

// Run cleans up old audit logs
func (j *AuditCleanupJob) Run() {
	logger.Debug("Audit cleanup job started")

	removed, err := j.auditService.CleanOldLogs(j.retentionDays)
	if err != nil {
		logger.Warning("Failed to clean old audit logs:", err)
		return
	}
	logger.Debugf("Audit cleanup completed (retention: %d days, removed: %d)", j.retentionDays, removed)
}
