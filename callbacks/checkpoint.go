package callbacks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pearll/pearll/types"
)

// Checkpoint is a restorable training snapshot: the model's flat
// parameters plus enough bookkeeping to know where it came from.
type Checkpoint struct {
	ID             string    `json:"id"`
	RunID          string    `json:"run_id"`
	Agent          string    `json:"agent"`
	Env            string    `json:"env"`
	Step           int       `json:"step"`
	Episode        int       `json:"episode"`
	SmoothedReward float64   `json:"smoothed_reward"`
	Parameters     []float64 `json:"parameters"`
	CreatedAt      time.Time `json:"created_at"`
}

// CheckpointStore persists checkpoints.
type CheckpointStore interface {
	Save(ctx context.Context, ckpt *Checkpoint) error
	Load(ctx context.Context, id string) (*Checkpoint, error)
	// LoadLatest returns the highest-step checkpoint of a run.
	LoadLatest(ctx context.Context, runID string) (*Checkpoint, error)
	// List returns a run's checkpoints, newest first, at most limit.
	List(ctx context.Context, runID string, limit int) ([]*Checkpoint, error)
	Delete(ctx context.Context, id string) error
}

// FileCheckpointStore keeps one JSON file per checkpoint in a directory.
type FileCheckpointStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileCheckpointStore creates (if needed) dir and a store over it.
func NewFileCheckpointStore(dir string, logger *zap.Logger) (*FileCheckpointStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "cannot create checkpoint directory").WithCause(err)
	}
	return &FileCheckpointStore{
		dir:    dir,
		logger: logger.With(zap.String("store", "file_checkpoint")),
	}, nil
}

func (s *FileCheckpointStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save implements CheckpointStore. Missing IDs and timestamps are
// filled in.
func (s *FileCheckpointStore) Save(_ context.Context, ckpt *Checkpoint) error {
	if ckpt.ID == "" {
		ckpt.ID = uuid.NewString()
	}
	if ckpt.CreatedAt.IsZero() {
		ckpt.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(ckpt)
	if err != nil {
		return types.NewError(types.ErrStoreUnavailable, "cannot marshal checkpoint").WithCause(err)
	}
	if err := os.WriteFile(s.path(ckpt.ID), data, 0o644); err != nil {
		return types.NewError(types.ErrStoreUnavailable, "cannot write checkpoint").WithCause(err)
	}
	s.logger.Debug("checkpoint saved",
		zap.String("checkpoint_id", ckpt.ID),
		zap.String("run_id", ckpt.RunID),
		zap.Int("step", ckpt.Step),
	)
	return nil
}

// Load implements CheckpointStore.
func (s *FileCheckpointStore) Load(_ context.Context, id string) (*Checkpoint, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, types.NewErrorf(types.ErrStoreUnavailable, "checkpoint %s not readable", id).WithCause(err)
	}
	var ckpt Checkpoint
	if err := json.Unmarshal(data, &ckpt); err != nil {
		return nil, types.NewErrorf(types.ErrStoreUnavailable, "checkpoint %s is corrupt", id).WithCause(err)
	}
	return &ckpt, nil
}

// LoadLatest implements CheckpointStore.
func (s *FileCheckpointStore) LoadLatest(ctx context.Context, runID string) (*Checkpoint, error) {
	ckpts, err := s.List(ctx, runID, 1)
	if err != nil {
		return nil, err
	}
	if len(ckpts) == 0 {
		return nil, types.NewErrorf(types.ErrStoreUnavailable, "run %s has no checkpoints", runID)
	}
	return ckpts[0], nil
}

// List implements CheckpointStore.
func (s *FileCheckpointStore) List(ctx context.Context, runID string, limit int) ([]*Checkpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "cannot list checkpoint directory").WithCause(err)
	}
	var ckpts []*Checkpoint
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ckpt, err := s.Load(ctx, strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			s.logger.Warn("skipping unreadable checkpoint", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		if runID == "" || ckpt.RunID == runID {
			ckpts = append(ckpts, ckpt)
		}
	}
	sort.Slice(ckpts, func(i, j int) bool { return ckpts[i].Step > ckpts[j].Step })
	if limit > 0 && len(ckpts) > limit {
		ckpts = ckpts[:limit]
	}
	return ckpts, nil
}

// Delete implements CheckpointStore.
func (s *FileCheckpointStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		return types.NewErrorf(types.ErrStoreUnavailable, "cannot delete checkpoint %s", id).WithCause(err)
	}
	return nil
}

// CheckpointCallback snapshots the model every Interval steps.
type CheckpointCallback struct {
	store    CheckpointStore
	interval int
	logger   *zap.Logger
}

// NewCheckpointCallback creates the periodic checkpointer. interval <= 0
// defaults to 10000 steps.
func NewCheckpointCallback(store CheckpointStore, interval int, logger *zap.Logger) *CheckpointCallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 10000
	}
	return &CheckpointCallback{
		store:    store,
		interval: interval,
		logger:   logger.With(zap.String("callback", "checkpoint")),
	}
}

// OnStep implements Callback.
func (c *CheckpointCallback) OnStep(ctx context.Context, state *TrainState) (bool, error) {
	if state.Model == nil || state.Step == 0 || state.Step%c.interval != 0 {
		return true, nil
	}
	ckpt := &Checkpoint{
		RunID:          state.RunID,
		Agent:          state.Agent,
		Env:            state.Env,
		Step:           state.Step,
		Episode:        state.Episode,
		SmoothedReward: state.SmoothedReward,
		Parameters:     state.Model.Parameters(),
	}
	if err := c.store.Save(ctx, ckpt); err != nil {
		return false, err
	}
	return true, nil
}

// Restore loads a run's latest checkpoint into model and returns it.
func Restore(ctx context.Context, store CheckpointStore, runID string, model Model) (*Checkpoint, error) {
	ckpt, err := store.LoadLatest(ctx, runID)
	if err != nil {
		return nil, err
	}
	if err := model.SetParameters(ckpt.Parameters); err != nil {
		return nil, err
	}
	return ckpt, nil
}
