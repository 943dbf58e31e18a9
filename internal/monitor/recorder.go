package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/zulandar/retromgr/internal/config"
	"github.com/zulandar/retromgr/internal/db"
	"github.com/zulandar/retromgr/internal/logging"
	"github.com/zulandar/retromgr/internal/notify"
	"gorm.io/gorm"
)

// Sampler produces samples. *Reader satisfies it.
type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

// RecorderOpts configures a Recorder.
type RecorderOpts struct {
	DB         *gorm.DB
	Sampler    Sampler
	Notifier   notify.Notifier // nil disables alerts
	Schedule   string          // 5-field cron expression
	Retention  time.Duration   // 0 keeps everything
	TempAlertC float64         // 0 disables the temperature alert
	SiteName   string
}

// Recorder stores samples on a cron schedule, prunes old rows and raises
// a temperature alert once per crossing of the threshold.
type Recorder struct {
	opts RecorderOpts
	log  zerolog.Logger
	cron *cron.Cron

	mu      sync.Mutex
	alerted bool
}

// NewRecorder validates the schedule and returns a stopped recorder.
func NewRecorder(opts RecorderOpts) (*Recorder, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("monitor: recorder: db is required")
	}
	if opts.Sampler == nil {
		return nil, fmt.Errorf("monitor: recorder: sampler is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.Schedule == "" {
		opts.Schedule = config.Default().Monitoring.Schedule
	}
	if _, err := config.CronParser.Parse(opts.Schedule); err != nil {
		return nil, fmt.Errorf("monitor: recorder: schedule %q: %w", opts.Schedule, err)
	}
	return &Recorder{
		opts: opts,
		log:  logging.WithComponent("monitor"),
	}, nil
}

// RecordOnce takes one sample, stores it and prunes expired rows.
func (r *Recorder) RecordOnce(ctx context.Context) (Sample, error) {
	s, err := r.opts.Sampler.Sample(ctx)
	if err != nil {
		return s, err
	}
	if err := db.RecordSample(r.opts.DB.WithContext(ctx), s.Model()); err != nil {
		return s, fmt.Errorf("monitor: %w", err)
	}
	if r.opts.Retention > 0 {
		n, err := db.PruneSamples(r.opts.DB.WithContext(ctx), s.TakenAt.Add(-r.opts.Retention))
		if err != nil {
			return s, fmt.Errorf("monitor: %w", err)
		}
		if n > 0 {
			r.log.Debug().Int64("rows", n).Msg("pruned old samples")
		}
	}
	r.checkTemperature(ctx, s)
	return s, nil
}

// checkTemperature alerts when the threshold is first reached and re-arms
// once the temperature drops back below it.
func (r *Recorder) checkTemperature(ctx context.Context, s Sample) {
	if r.opts.TempAlertC <= 0 {
		return
	}
	r.mu.Lock()
	hot := s.CPUTempC >= r.opts.TempAlertC
	fire := hot && !r.alerted
	r.alerted = hot
	r.mu.Unlock()
	if !fire {
		return
	}

	temperatureAlerts.Inc()
	r.log.Warn().Float64("temp_c", s.CPUTempC).Float64("threshold_c", r.opts.TempAlertC).Msg("cpu temperature above threshold")
	evt := notify.Event{
		Title:    fmt.Sprintf("%s: CPU temperature %.1f°C", r.siteName(), s.CPUTempC),
		Body:     fmt.Sprintf("The CPU reached %.1f°C, alert threshold is %.1f°C.", s.CPUTempC, r.opts.TempAlertC),
		Severity: notify.SeverityWarning,
		Fields: []notify.Field{
			{Name: "Load", Value: fmt.Sprintf("%.2f %.2f %.2f", s.Load1, s.Load5, s.Load15)},
			{Name: "Memory used", Value: fmt.Sprintf("%.0f%%", s.MemUsedPercent())},
		},
	}
	if err := r.opts.Notifier.Notify(ctx, evt); err != nil {
		r.log.Error().Err(err).Msg("send temperature alert")
	}
}

func (r *Recorder) siteName() string {
	if r.opts.SiteName == "" {
		return "retromgr"
	}
	return r.opts.SiteName
}

// Start records one sample immediately, then on every schedule tick until
// ctx is cancelled or Stop is called.
func (r *Recorder) Start(ctx context.Context) error {
	c := cron.New(cron.WithParser(config.CronParser))
	if _, err := c.AddFunc(r.opts.Schedule, func() { r.tick(ctx) }); err != nil {
		return fmt.Errorf("monitor: recorder: %w", err)
	}
	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	r.tick(ctx)
	c.Start()
	r.log.Info().Str("schedule", r.opts.Schedule).Msg("recorder started")

	go func() {
		<-ctx.Done()
		r.Stop()
	}()
	return nil
}

func (r *Recorder) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := r.RecordOnce(ctx); err != nil {
		r.log.Error().Err(err).Msg("record sample")
	}
}

// Stop halts the schedule and waits for a running job to finish.
func (r *Recorder) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	r.log.Info().Msg("recorder stopped")
}
