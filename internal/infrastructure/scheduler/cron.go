package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"NewsSearchEngine/internal/ports"
)

// CronScheduler runs a job on a standard five-field cron expression.
type CronScheduler struct {
	spec       string
	location   *time.Location
	runOnStart bool

	mu      sync.Mutex
	cron    *cron.Cron
	stopped chan struct{}
	// startup tracks the runOnStart execution, which the cron runner does not.
	startup sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for spec evaluated in loc (UTC when nil).
// With runOnStart the job also fires once right after Start.
func NewCronScheduler(spec string, loc *time.Location, runOnStart bool) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{spec: spec, location: loc, runOnStart: runOnStart}
}

// Validate parses the expression without scheduling anything.
func (c *CronScheduler) Validate() error {
	if _, err := cron.ParseStandard(c.spec); err != nil {
		return fmt.Errorf("parse cron %q: %w", c.spec, err)
	}
	return nil
}

// Next reports when the job fires next after from.
func (c *CronScheduler) Next(from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(c.spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron %q: %w", c.spec, err)
	}
	return schedule.Next(from.In(c.location)), nil
}

// Start registers job and begins ticking. Overlapping runs are skipped.
// Cancelling ctx stops the scheduler.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	schedule, err := cron.ParseStandard(c.spec)
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	// One wrapped job serves both the ticks and the start-up run so they never overlap.
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).
		Then(cron.FuncJob(func() { job(time.Now().In(c.location)) }))

	runner := cron.New(cron.WithLocation(c.location))
	runner.Schedule(schedule, wrapped)
	c.cron = runner
	c.stopped = make(chan struct{})
	stopped := c.stopped
	runner.Start()

	if c.runOnStart {
		c.startup.Add(1)
		go func() {
			defer c.startup.Done()
			wrapped.Run()
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop(context.Background())
		case <-stopped:
		}
	}()

	return nil
}

// Stop halts scheduling and waits for running jobs, including the start-up
// run, until ctx expires.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner := c.cron
	c.cron = nil
	if c.stopped != nil {
		close(c.stopped)
		c.stopped = nil
	}
	c.mu.Unlock()

	if runner == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		<-runner.Stop().Done()
		c.startup.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
