// Package orderaudit periodically checks that every ordered group holds the
// orders 1..N and, in repair mode, renumbers groups that drifted.
package orderaudit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/ordering"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

type Mode string

const (
	ModeReport Mode = "report"
	ModeRepair Mode = "repair"
)

// ParseMode accepts "report" or "repair" in any case; anything else reports.
func ParseMode(raw string) Mode {
	if strings.EqualFold(strings.TrimSpace(raw), string(ModeRepair)) {
		return ModeRepair
	}
	return ModeReport
}

// Store is the slice of an ordered repository the audit needs.
type Store interface {
	Groups(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
	GroupItems(ctx context.Context, tx *gorm.DB, group uuid.UUID) ([]ordering.Item, error)
	LockGroups(ctx context.Context, tx *gorm.DB, groups ...uuid.UUID) ([]uuid.UUID, error)
	SetPosition(ctx context.Context, tx *gorm.DB, id, group uuid.UUID, order int) (int64, error)
}

// Target names one ordered resource to audit.
type Target struct {
	Resource string
	Store    Store
}

type Config struct {
	// Schedule is a standard five-field cron expression.
	Schedule string
	Mode     Mode
	// GroupsPerSecond throttles group scans; 0 disables throttling.
	GroupsPerSecond float64
}

// Result summarizes one resource's pass.
type Result struct {
	Resource   string
	Groups     int
	Violations []uuid.UUID
	Repaired   int
}

type Auditor struct {
	db      *gorm.DB
	log     *logger.Logger
	metrics *observability.Metrics
	cfg     Config
	targets []Target
	limiter *rate.Limiter

	mu   sync.Mutex
	cron *cron.Cron
}

func New(db *gorm.DB, baseLog *logger.Logger, metrics *observability.Metrics, cfg Config, targets ...Target) *Auditor {
	if cfg.Mode == "" {
		cfg.Mode = ModeReport
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.GroupsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.GroupsPerSecond), 1)
	}
	return &Auditor{
		db:      db,
		log:     baseLog.With("job", "OrderAudit"),
		metrics: metrics,
		cfg:     cfg,
		targets: targets,
		limiter: limiter,
	}
}

// Start schedules Run on cfg.Schedule. Overlapping runs are skipped. The
// returned stop func waits for a running pass to finish.
func (a *Auditor) Start(ctx context.Context) (func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cron != nil {
		return nil, fmt.Errorf("order audit already started")
	}
	cl := cronLogger{log: a.log}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(a.cfg.Schedule, func() {
		if _, err := a.Run(ctx); err != nil {
			a.log.Warn("order audit run failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("order audit schedule %q: %w", a.cfg.Schedule, err)
	}
	c.Start()
	a.cron = c
	a.log.Info("order audit scheduled", "schedule", a.cfg.Schedule, "mode", a.cfg.Mode)

	return func() {
		<-c.Stop().Done()
		a.mu.Lock()
		a.cron = nil
		a.mu.Unlock()
	}, nil
}

// Run audits every target once.
func (a *Auditor) Run(ctx context.Context) ([]Result, error) {
	out := make([]Result, 0, len(a.targets))
	for _, t := range a.targets {
		res, err := a.audit(ctx, t)
		status := "ok"
		if err != nil {
			status = "error"
		} else if len(res.Violations) > 0 {
			status = "violations"
		}
		a.metrics.ObserveAuditRun(t.Resource, status, len(res.Violations), res.Repaired)
		if err != nil {
			return out, fmt.Errorf("audit %s: %w", t.Resource, err)
		}
		if len(res.Violations) > 0 {
			a.log.Warn("order audit found gaps",
				"resource", t.Resource,
				"groups", res.Groups,
				"violations", len(res.Violations),
				"repaired", res.Repaired,
			)
		} else {
			a.log.Debug("order audit clean", "resource", t.Resource, "groups", res.Groups)
		}
		out = append(out, res)
	}
	return out, nil
}

func (a *Auditor) audit(ctx context.Context, t Target) (Result, error) {
	res := Result{Resource: t.Resource}
	groups, err := t.Store.Groups(ctx, nil)
	if err != nil {
		return res, err
	}
	res.Groups = len(groups)
	for _, g := range groups {
		if err := a.limiter.Wait(ctx); err != nil {
			return res, err
		}
		items, err := t.Store.GroupItems(ctx, nil, g)
		if err != nil {
			return res, err
		}
		if ordering.IsDense(items) {
			continue
		}
		res.Violations = append(res.Violations, g)
		if a.cfg.Mode != ModeRepair {
			continue
		}
		fixed, err := a.repair(ctx, t.Store, g)
		if err != nil {
			a.log.Warn("order repair failed", "resource", t.Resource, "group", g, "error", err)
			continue
		}
		if fixed {
			res.Repaired++
		}
	}
	return res, nil
}

// repair renumbers group under its parent lock. It re-reads the group so a
// write that fixed it in the meantime is left alone.
func (a *Auditor) repair(ctx context.Context, store Store, group uuid.UUID) (bool, error) {
	fixed := false
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := store.LockGroups(ctx, tx, group); err != nil {
			return err
		}
		items, err := store.GroupItems(ctx, tx, group)
		if err != nil {
			return err
		}
		if ordering.IsDense(items) {
			return nil
		}
		for id, order := range ordering.Renumber(items) {
			if _, err := store.SetPosition(ctx, tx, id, group, order); err != nil {
				return err
			}
		}
		fixed = true
		return nil
	})
	return fixed, err
}

type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
