package apple

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"pickupwatch/pkg/logger"

	"go.uber.org/zap"
)

// CheckerOptions controls how results are pushed
type CheckerOptions struct {
	NotifyOnce     bool      // Push availability only when the store set changes
	NotifyFailures bool      // Push failed checks
	Output         io.Writer // Receives the full report text, may be nil
	Metrics        MetricsRecorder
}

// Checker runs availability checks and remembers the last result per model
type Checker struct {
	session     Bootstrapper
	fulfillment AvailabilityChecker
	notifier    Notifier
	opts        CheckerOptions

	mu          sync.RWMutex
	lastStatus  map[string]*ProductStatus // product code -> status
	lastRun     *RunStatus
	lastFailure string
}

// NewChecker creates a checker. notifier may be nil.
func NewChecker(session Bootstrapper, fulfillment AvailabilityChecker, notifier Notifier, opts CheckerOptions) *Checker {
	return &Checker{
		session:     session,
		fulfillment: fulfillment,
		notifier:    notifier,
		opts:        opts,
		lastStatus:  make(map[string]*ProductStatus),
	}
}

// Run performs one check: session bootstrap, fulfillment query, report, push
func (c *Checker) Run(ctx context.Context, sel *Selection) (*Report, error) {
	run := &RunStatus{
		RunID:     logger.NewRunID(),
		Country:   sel.CountryName,
		Zip:       sel.Zip,
		StartedAt: time.Now(),
	}
	ctx = logger.WithCountry(logger.WithRunID(ctx, run.RunID), sel.CountryName)
	log := logger.FromContext(ctx)

	log.Info("Checking pickup availability",
		zap.String("zip", sel.Zip),
		zap.Int("models", len(sel.Models)))

	cred, err := c.session.Bootstrap(ctx)
	if err != nil {
		return nil, c.fail(ctx, run, err)
	}

	results, err := c.fulfillment.CheckAvailability(ctx, cred.Cookie, sel)
	if err != nil {
		return nil, c.fail(ctx, run, err)
	}

	if m := c.opts.Metrics; m != nil {
		m.ObserveCheck(sel.CountryName, time.Since(run.StartedAt), nil)
		for _, res := range results {
			m.SetAvailableStores(sel.CountryName, res.Model.Code, len(res.Stores))
		}
	}

	report := BuildReport(sel.CountryName, sel.Country, results)
	log.Info(report.All)
	if c.opts.Output != nil {
		fmt.Fprintln(c.opts.Output, report.All)
	}

	changed := c.record(ctx, run, results)

	if report.HasAvailable() && (!c.opts.NotifyOnce || changed) {
		c.push(ctx, func(ctx context.Context) error {
			return c.notifier.SendAvailability(ctx, report.Available)
		})
	}

	return report, nil
}

// Status returns a copy of the latest run
func (c *Checker) Status() *RunStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.lastRun == nil {
		return nil
	}
	out := *c.lastRun
	out.Products = make([]*ProductStatus, len(c.lastRun.Products))
	for i, p := range c.lastRun.Products {
		cp := *p
		cp.Stores = append([]Store(nil), p.Stores...)
		out.Products[i] = &cp
	}
	return &out
}

// record stores the results and reports whether any model's store set changed
func (c *Checker) record(ctx context.Context, run *RunStatus, results []ModelAvailability) bool {
	log := logger.FromContext(ctx)
	now := time.Now()
	changed := false

	c.mu.Lock()
	defer c.mu.Unlock()

	run.FinishedAt = now
	for _, res := range results {
		current := &ProductStatus{
			ProductCode: res.Model.Code,
			ProductName: res.Model.Name,
			IsAvailable: res.Present,
			Stores:      res.Stores,
			CheckTime:   now,
			ChangedAt:   now,
		}

		last, exists := c.lastStatus[res.Model.Code]
		switch {
		case !exists:
			changed = true
			log.Debug("Initial status",
				zap.String("product", res.Model.Name),
				zap.Bool("available", res.Present))
		case storeKey(last.Stores) != storeKey(current.Stores):
			changed = true
			if current.IsAvailable && !last.IsAvailable {
				log.Info("🎉 STOCK AVAILABLE!", zap.String("product", res.Model.Name), zap.Int("stores", len(current.Stores)))
			} else if !current.IsAvailable && last.IsAvailable {
				log.Info("Stock no longer available", zap.String("product", res.Model.Name))
			} else {
				log.Info("Store list updated", zap.String("product", res.Model.Name), zap.Int("stores", len(current.Stores)))
			}
		default:
			current.ChangedAt = last.ChangedAt
		}

		c.lastStatus[res.Model.Code] = current
		run.Products = append(run.Products, current)
	}

	c.lastRun = run
	c.lastFailure = ""
	return changed
}

// fail records the error, pushes it and returns it wrapped
func (c *Checker) fail(ctx context.Context, run *RunStatus, err error) error {
	logger.FromContext(ctx).Error("Availability check failed", zap.Error(err))

	if c.opts.Metrics != nil {
		c.opts.Metrics.ObserveCheck(run.Country, time.Since(run.StartedAt), err)
	}

	c.mu.Lock()
	run.FinishedAt = time.Now()
	run.Error = err.Error()
	c.lastRun = run
	repeated := c.opts.NotifyOnce && c.lastFailure == run.Error
	c.lastFailure = run.Error
	c.mu.Unlock()

	if c.opts.NotifyFailures && !repeated {
		c.push(ctx, func(ctx context.Context) error {
			return c.notifier.SendFailure(ctx, err)
		})
	}

	return fmt.Errorf("availability check failed: %w", err)
}

// push delivers a notification. Delivery errors are logged only.
func (c *Checker) push(ctx context.Context, send func(context.Context) error) {
	if c.notifier == nil {
		return
	}
	if err := send(ctx); err != nil {
		logger.FromContext(ctx).Error("Failed to send notification", zap.Error(err))
	}
}

func storeKey(stores []Store) string {
	keys := make([]string, 0, len(stores))
	for _, s := range stores {
		keys = append(keys, s.Name+"|"+s.City+"|"+s.State)
	}
	sort.Strings(keys)
	return strings.Join(keys, ";")
}
