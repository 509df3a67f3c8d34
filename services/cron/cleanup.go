package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/campuslane/lms-api/model"
	"github.com/campuslane/lms-api/utils/auth"
)

// CleanupExpiredTokens removes blacklist rows whose tokens have expired;
// validation rejects them on expiry alone, the rows just stop mattering.
func (m *CronManager) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "cleanup_expired_tokens"

	removed, err := auth.NewBlacklistService(m.db).CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete expired tokens: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired token(s)", removed))
}

// CleanupOldJobLogs prunes cron job logs older than 30 days.
func (m *CronManager) CleanupOldJobLogs() {
	jobName := "cleanup_old_job_logs"
	cutoff := time.Now().AddDate(0, 0, -30)

	res := m.db.Where("created_at < ?", cutoff).Delete(&model.CronJobLog{})
	if res.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to prune job logs: %w", res.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Pruned %d old log row(s)", res.RowsAffected))
}
