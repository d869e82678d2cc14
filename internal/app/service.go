// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/agegrader/internal/adapters/reftable"
	"github.com/okian/agegrader/internal/domain/agegrade"
	"github.com/okian/agegrader/internal/domain/model"
	"github.com/okian/agegrader/pkg/logger"
	"github.com/okian/agegrader/pkg/metrics"
)

const (
	defaultMaxAge             = 120
	nanosecondsPerMillisecond = 1e6
)

// Sentinel error kinds for this package.
var (
	ErrInvalidQuery = errors.New("invalid query")
	ErrNotStarted   = errors.New("service not started")
)

// Query is one race result to grade. Gender is the raw, case-insensitive
// string supplied by the caller.
type Query struct {
	Age        int
	Gender     string
	DistanceKM float64
	Seconds    float64
}

// RecordQuery asks how a distance resolves against the table. Age is optional.
type RecordQuery struct {
	Age        int
	Gender     string
	DistanceKM float64
}

// Service owns the active age-grading engine. Queries read the engine through
// an atomic pointer; a table reload swaps the pointer without blocking them.
type Service struct {
	mu sync.Mutex

	engine atomic.Pointer[agegrade.Engine]

	// Configuration
	tablePath  string
	watchTable bool
	maxAge     int

	// State
	started    bool
	cancel     context.CancelFunc
	watcherWG  sync.WaitGroup
	loadedAt   atomic.Int64
	reloads    atomic.Int64
	gradeCount atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTablePath loads the reference table from path instead of the bundled one.
func WithTablePath(path string) Option {
	return func(s *Service) {
		s.tablePath = path
	}
}

// WithTableWatch reloads the table file whenever it changes. Ignored without
// WithTablePath.
func WithTableWatch(enabled bool) Option {
	return func(s *Service) {
		s.watchTable = enabled
	}
}

// WithMaxAge sets the largest accepted age.
func WithMaxAge(age int) Option {
	return func(s *Service) {
		if age > 0 {
			s.maxAge = age
		}
	}
}

// WithTable installs a prebuilt table; Start will not load one.
func WithTable(table *agegrade.Table) Option {
	return func(s *Service) {
		if table != nil {
			s.engine.Store(agegrade.New(table))
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxAge: defaultMaxAge,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the reference table and, when configured, starts watching it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting age-grading service...")

	if s.engine.Load() == nil {
		if err := s.reload(ctx); err != nil {
			return err
		}
	} else {
		s.loadedAt.Store(time.Now().Unix())
		s.publishTableMetrics(s.engine.Load().Table())
	}

	if s.watchTable && s.tablePath != "" {
		watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.cancel = cancel
		s.watcherWG.Add(1)
		go func() {
			defer s.watcherWG.Done()
			err := reftable.Watch(watchCtx, s.tablePath, s.logger, func(t *agegrade.Table) {
				s.install(watchCtx, t)
			})
			if err != nil {
				s.logger.Error(watchCtx, "reference table watcher stopped", logger.Error(err))
			}
		}()
	}

	s.started = true
	s.logger.Info(ctx, "age-grading service started",
		logger.String("table", s.tableName()),
		logger.Int("entries", s.engine.Load().Table().Len()),
		logger.Bool("watch", s.watchTable),
	)
	return nil
}

// Stop stops the table watcher. The last loaded engine stays usable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping age-grading service...")
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.watcherWG.Wait()

	s.started = false
	s.logger.Info(context.Background(), "age-grading service stopped")
}

// Reload re-reads the configured table. On failure the current engine is kept.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s.reload(ctx)
}

func (s *Service) reload(ctx context.Context) error {
	table, err := reftable.Load(ctx, s.tablePath)
	if err != nil {
		metrics.RecordTableReload(metrics.ReloadFailure)
		s.logger.Error(ctx, "failed to load reference table",
			logger.String("table", s.tableName()), logger.Error(err))
		return err
	}
	s.install(ctx, table)
	return nil
}

// install swaps in a new engine for table.
func (s *Service) install(ctx context.Context, table *agegrade.Table) {
	s.engine.Store(agegrade.New(table))
	s.loadedAt.Store(time.Now().Unix())
	s.reloads.Add(1)

	metrics.RecordTableReload(metrics.ReloadSuccess)
	s.publishTableMetrics(table)
	s.logger.Debug(ctx, "reference table installed",
		logger.Int("entries", table.Len()),
		logger.Int("ageRecords", table.AgeRecordCount()),
	)
}

func (s *Service) publishTableMetrics(table *agegrade.Table) {
	for _, g := range model.Genders {
		distances, err := table.Distances(g)
		if err != nil {
			metrics.UpdateTableEntries(g.String(), 0)
			continue
		}
		metrics.UpdateTableEntries(g.String(), len(distances))
	}
	metrics.UpdateTableAgeRecords(table.AgeRecordCount())
	metrics.UpdateTableLastReload(time.Now().Unix())
}

func (s *Service) tableName() string {
	if s.tablePath == "" {
		return "bundled"
	}
	return s.tablePath
}

func (s *Service) current() (*agegrade.Engine, error) {
	e := s.engine.Load()
	if e == nil {
		return nil, ErrNotStarted
	}
	return e, nil
}

// Grade evaluates q against the active table. An age with no reference data
// yields a Grade with Available == false and a nil error.
func (s *Service) Grade(ctx context.Context, q Query) (model.Grade, error) {
	start := time.Now()
	g, err := s.grade(q)

	metrics.RecordGradeLatency(float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond)
	s.gradeCount.Add(1)
	switch {
	case err != nil:
		metrics.RecordGrade(metrics.OutcomeError)
		s.log().Debug(ctx, "grade failed", logger.Error(err))
	case !g.Available:
		metrics.RecordGrade(metrics.OutcomeUnavailable)
		s.log().Debug(ctx, "no age record for query",
			logger.Int("age", q.Age),
			logger.String("gender", g.Gender),
			logger.Float64("distanceKm", q.DistanceKM),
		)
	default:
		metrics.RecordGrade(metrics.OutcomeAvailable)
	}
	return g, err
}

func (s *Service) grade(q Query) (model.Grade, error) {
	gender, err := validateGenderDistance(q.Gender, q.DistanceKM)
	if err == nil {
		err = s.validateAge(q.Age)
	}
	if err != nil {
		return model.Grade{}, err
	}
	if !finitePositive(q.Seconds) {
		return model.Grade{}, fmt.Errorf("%w: seconds must be positive and finite", ErrInvalidQuery)
	}
	e, err := s.current()
	if err != nil {
		return model.Grade{}, err
	}
	return e.Grade(q.Age, gender, q.DistanceKM, q.Seconds)
}

// Record reports the bracketing distances, ratio and records for q.
func (s *Service) Record(ctx context.Context, q RecordQuery) (model.Bracket, error) {
	gender, err := validateGenderDistance(q.Gender, q.DistanceKM)
	if err == nil && q.Age != 0 {
		err = s.validateAge(q.Age)
	}
	if err != nil {
		metrics.RecordRecordQuery(metrics.OutcomeError)
		return model.Bracket{}, err
	}
	e, err := s.current()
	if err != nil {
		return model.Bracket{}, err
	}
	b, err := e.Bracket(q.Age, gender, q.DistanceKM)
	switch {
	case err != nil:
		metrics.RecordRecordQuery(metrics.OutcomeError)
		s.log().Debug(ctx, "record lookup failed", logger.Error(err))
	case q.Age > 0 && b.AgeRecord == nil:
		metrics.RecordRecordQuery(metrics.OutcomeUnavailable)
	default:
		metrics.RecordRecordQuery(metrics.OutcomeAvailable)
	}
	return b, err
}

// Distances lists the tabulated distances for a gender.
func (s *Service) Distances(_ context.Context, gender string) ([]float64, error) {
	g, err := model.ParseGender(gender)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	e, err := s.current()
	if err != nil {
		return nil, err
	}
	return e.Table().Distances(g)
}

func validateGenderDistance(gender string, distance float64) (model.Gender, error) {
	g, err := model.ParseGender(gender)
	if err != nil {
		return model.GenderUnknown, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if !finitePositive(distance) {
		return model.GenderUnknown, fmt.Errorf("%w: distance must be positive and finite", ErrInvalidQuery)
	}
	return g, nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func (s *Service) validateAge(age int) error {
	if age <= 0 || age > s.maxAge {
		return fmt.Errorf("%w: age must be between 1 and %d", ErrInvalidQuery, s.maxAge)
	}
	return nil
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	stats := map[string]interface{}{
		"started":    started,
		"table":      s.tableName(),
		"watchTable": s.watchTable,
		"maxAge":     s.maxAge,
		"grades":     s.gradeCount.Load(),
		"loads":      s.reloads.Load(),
	}

	if e := s.engine.Load(); e != nil {
		t := e.Table()
		stats["entries"] = t.Len()
		stats["ageRecords"] = t.AgeRecordCount()
		stats["loadedAt"] = s.loadedAt.Load()
	}
	return stats
}
