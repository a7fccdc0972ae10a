package logging

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Rotator rotates the log file on a cron schedule
type Rotator struct {
	cron   *cron.Cron
	logDir string
}

// StartRotation schedules RotateLogs for logDir. schedule uses standard
// five-field cron syntax or a descriptor such as "@daily".
func StartRotation(logDir, schedule string) (*Rotator, error) {
	r := &Rotator{
		cron:   cron.New(),
		logDir: logDir,
	}

	if _, err := r.cron.AddFunc(schedule, r.rotate); err != nil {
		return nil, fmt.Errorf("failed to schedule log rotation: %w", err)
	}

	r.cron.Start()
	Debug("Log rotation scheduled (%s) for %s", schedule, logDir)
	return r, nil
}

func (r *Rotator) rotate() {
	if err := RotateLogs(r.logDir); err != nil {
		Error("Log rotation failed: %v", err)
	}
}

// Stop halts the scheduler and waits for a running rotation to finish
func (r *Rotator) Stop() {
	<-r.cron.Stop().Done()
}
