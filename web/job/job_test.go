package job

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCleaner struct {
	days []int
	err  error
}

func (f *fakeCleaner) CleanOldLogs(days int) (int64, error) {
	f.days = append(f.days, days)
	return 3, f.err
}

func TestAuditCleanupJob(t *testing.T) {
	cleaner := &fakeCleaner{}
	NewAuditCleanupJob(cleaner, 30).Run()
	NewAuditCleanupJob(cleaner, 0).Run()

	cleaner.err = errors.New("locked")
	NewAuditCleanupJob(cleaner, 7).Run()

	assert.Equal(t, []int{30, 90, 7}, cleaner.days)
}

type fakeSweeper struct{ idle time.Duration }

func (f *fakeSweeper) Sweep(idle time.Duration) int {
	f.idle = idle
	return 1
}

func TestLimiterSweepJob(t *testing.T) {
	s := &fakeSweeper{}
	NewLimiterSweepJob(s, 10*time.Minute).Run()
	assert.Equal(t, 10*time.Minute, s.idle)
}
