package scheduler

import (
	"sync"

	"github.com/robfig/cron/v3"
)

// ScheduledTask runs a function on a cron schedule until cancelled. Runs
// never overlap; a run still in progress when the next one is due is
// skipped.
type ScheduledTask struct {
	cronID cron.EntryID
	cron   *cron.Cron
	cancel chan struct{}
	once   sync.Once
}

func NewScheduledTask(cronSpec string, taskFunc func()) (*ScheduledTask, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	cancel := make(chan struct{})
	task := &ScheduledTask{
		cron:   c,
		cancel: cancel,
	}

	id, err := c.AddFunc(cronSpec, func() {
		select {
		case <-cancel:
			return
		default:
			taskFunc()
		}
	})
	if err != nil {
		return nil, err
	}

	task.cronID = id
	c.Start()
	return task, nil
}

// Cancel stops the schedule and waits for a running invocation to finish.
// It is safe to call more than once.
func (s *ScheduledTask) Cancel() {
	s.once.Do(func() {
		close(s.cancel)
		s.cron.Remove(s.cronID)
		<-s.cron.Stop().Done()
	})
}
