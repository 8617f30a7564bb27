package job

import (
	"time"

	"github.com/usjp/campus-panel/logger"
)

// Sweeper forgets throttling state of idle clients.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

type LimiterSweepJob struct {
	limiter Sweeper
	idle    time.Duration
}

func NewLimiterSweepJob(limiter Sweeper, idle time.Duration) *LimiterSweepJob {
	return &LimiterSweepJob{limiter: limiter, idle: idle}
}

func (j *LimiterSweepJob) Run() {
	if n := j.limiter.Sweep(j.idle); n > 0 {
		logger.Debugf("Forgot login throttling state of %d idle clients", n)
	}
}
