// Package store persists experiment runs and their metric series in a
// relational database, so results survive the process and can be
// compared across runs.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pearll/pearll/types"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Run is one training run.
type Run struct {
	ID          uint   `gorm:"primarykey"`
	UUID        string `gorm:"uniqueIndex;size:36"`
	Agent       string `gorm:"index;size:32"`
	Env         string `gorm:"index;size:64"`
	ConfigYAML  string
	Status      string `gorm:"size:16"`
	FinalReward float64
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// Metric is one scalar observation of a run.
type Metric struct {
	ID    uint   `gorm:"primarykey"`
	RunID uint   `gorm:"index:idx_metric_run_tag"`
	Tag   string `gorm:"index:idx_metric_run_tag;size:64"`
	Step  int
	Value float64
}

// Store wraps the database with run bookkeeping operations.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New migrates the schema and returns a Store.
func New(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&Run{}, &Metric{}); err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "schema migration failed").WithCause(err)
	}
	return &Store{
		db:     db,
		logger: logger.With(zap.String("component", "store")),
	}, nil
}

// CreateRun records the start of a training run and returns it.
func (s *Store) CreateRun(ctx context.Context, agent, env, configYAML string) (*Run, error) {
	run := &Run{
		UUID:       uuid.NewString(),
		Agent:      agent,
		Env:        env,
		ConfigYAML: configYAML,
		Status:     StatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "cannot create run").WithCause(err)
	}
	s.logger.Info("run created",
		zap.String("run_uuid", run.UUID),
		zap.String("agent", agent),
		zap.String("env", env),
	)
	return run, nil
}

// FinishRun marks a run as finished or failed and stores its final
// smoothed reward.
func (s *Store) FinishRun(ctx context.Context, runUUID, status string, finalReward float64) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&Run{}).
		Where("uuid = ?", runUUID).
		Updates(map[string]any{
			"status":       status,
			"final_reward": finalReward,
			"finished_at":  &now,
		})
	if res.Error != nil {
		return types.NewError(types.ErrStoreUnavailable, "cannot finish run").WithCause(res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NewErrorf(types.ErrStoreUnavailable, "run %s not found", runUUID)
	}
	return nil
}

// GetRun loads a run by its UUID.
func (s *Store) GetRun(ctx context.Context, runUUID string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Where("uuid = ?", runUUID).First(&run).Error
	if err != nil {
		return nil, types.NewErrorf(types.ErrStoreUnavailable, "run %s not found", runUUID).WithCause(err)
	}
	return &run, nil
}

// ListRuns returns runs newest first, at most limit (0 means all).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	q := s.db.WithContext(ctx).Order("started_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "cannot list runs").WithCause(err)
	}
	return runs, nil
}

// LogMetric appends one scalar to a run's series.
func (s *Store) LogMetric(ctx context.Context, runID uint, step int, tag string, value float64) error {
	m := &Metric{RunID: runID, Step: step, Tag: tag, Value: value}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return types.NewError(types.ErrStoreUnavailable, "cannot log metric").WithCause(err)
	}
	return nil
}

// LogMetrics appends a batch of scalars in one insert.
func (s *Store) LogMetrics(ctx context.Context, metrics []Metric) error {
	if len(metrics) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&metrics).Error; err != nil {
		return types.NewError(types.ErrStoreUnavailable, "cannot log metrics").WithCause(err)
	}
	return nil
}

// MetricSeries returns a run's series for one tag in step order.
func (s *Store) MetricSeries(ctx context.Context, runID uint, tag string) ([]Metric, error) {
	var metrics []Metric
	err := s.db.WithContext(ctx).
		Where("run_id = ? AND tag = ?", runID, tag).
		Order("step asc").
		Find(&metrics).Error
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "cannot load metric series").WithCause(err)
	}
	return metrics, nil
}
