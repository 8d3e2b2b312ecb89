package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2/log"

	"github.com/i474232898/city-weather/internal/weather"
)

// Lookup is the part of weather.Service the probe needs.
type Lookup interface {
	GetWeather(ctx context.Context, city string) (weather.Weather, error)
}

// Result is the outcome of the most recent probe.
type Result struct {
	Probed    bool
	OK        bool
	CheckedAt time.Time
	Err       error
}

// Scheduler periodically looks up a probe city to track provider health.
type Scheduler struct {
	scheduler *gocron.Scheduler
	lookup    Lookup
	city      string
	interval  time.Duration
	timeout   time.Duration

	mu   sync.RWMutex
	last Result
}

// New creates a new Scheduler.
func New(city string, interval time.Duration, lookup Lookup) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		lookup:    lookup,
		city:      city,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the probe job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.city == "" {
		log.Info("scheduler: no probe city configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Infof("scheduler: probing %q every %s", s.city, interval)
	return nil
}

// RunOnce performs a single probe lookup and records its outcome.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.lookup.GetWeather(ctx, s.city)

	s.mu.Lock()
	s.last = Result{
		Probed:    true,
		OK:        err == nil,
		CheckedAt: time.Now().UTC(),
		Err:       err,
	}
	s.mu.Unlock()

	if err != nil {
		log.Errorf("scheduler: probe failed for %q: %v", s.city, err)
		return
	}
	log.Debugf("scheduler: probe succeeded for %q", s.city)
}

// Last returns the most recent probe result.
func (s *Scheduler) Last() Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
