package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pearll/pearll/types"
)

// Event is one scalar observation in a run's events.jsonl stream.
type Event struct {
	Step     int     `json:"step"`
	Tag      string  `json:"tag"`
	Value    float64 `json:"value"`
	WallTime float64 `json:"wall_time"`
}

// RunWriter owns a run directory and streams training scalars into it.
// Writes are buffered; syncs to disk are rate limited so per-step
// logging stays cheap.
type RunWriter struct {
	ID  string
	Dir string

	mu         sync.Mutex
	eventsFile *os.File
	events     *bufio.Writer
	tsvFile    *os.File
	tsv        *bufio.Writer
	limiter    *rate.Limiter
	logger     *zap.Logger
	closed     bool
}

// NewRunWriter creates <logDir>/<agent>_<env>_<timestamp>/ and opens the
// artifact files inside it.
func NewRunWriter(logDir, agent, env string, logger *zap.Logger) (*RunWriter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := filepath.Join(logDir, fmt.Sprintf("%s_%s_%s", agent, env, time.Now().Format("20060102_150405")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "cannot create run directory").WithCause(err)
	}

	eventsFile, err := os.Create(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "cannot create events file").WithCause(err)
	}
	tsvFile, err := os.Create(filepath.Join(dir, "metrics.tsv"))
	if err != nil {
		eventsFile.Close()
		return nil, types.NewError(types.ErrStoreUnavailable, "cannot create metrics file").WithCause(err)
	}

	w := &RunWriter{
		ID:         uuid.NewString(),
		Dir:        dir,
		eventsFile: eventsFile,
		events:     bufio.NewWriter(eventsFile),
		tsvFile:    tsvFile,
		tsv:        bufio.NewWriter(tsvFile),
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
	w.logger = logger.With(zap.String("run_id", w.ID), zap.String("run_dir", dir))

	fmt.Fprintln(w.tsv, "step\ttag\tvalue")
	w.logger.Info("run writer opened")
	return w, nil
}

// LogScalar records one tagged value at a step in both artifact files.
func (w *RunWriter) LogScalar(step int, tag string, value float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return types.NewError(types.ErrStoreUnavailable, "run writer is closed")
	}
	return w.writeLocked(step, tag, value)
}

// LogScalars records a set of tagged values at one step, tags in sorted
// order so the files stay deterministic.
func (w *RunWriter) LogScalars(step int, values map[string]float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return types.NewError(types.ErrStoreUnavailable, "run writer is closed")
	}
	tags := make([]string, 0, len(values))
	for tag := range values {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		if err := w.writeLocked(step, tag, values[tag]); err != nil {
			return err
		}
	}
	return nil
}

func (w *RunWriter) writeLocked(step int, tag string, value float64) error {
	ev := Event{
		Step:     step,
		Tag:      tag,
		Value:    value,
		WallTime: float64(time.Now().UnixNano()) / 1e9,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return types.NewError(types.ErrStoreUnavailable, "cannot encode event").WithCause(err)
	}
	if _, err := w.events.Write(append(data, '\n')); err != nil {
		return types.NewError(types.ErrStoreUnavailable, "cannot write event").WithCause(err)
	}
	if _, err := fmt.Fprintf(w.tsv, "%d\t%s\t%g\n", step, tag, value); err != nil {
		return types.NewError(types.ErrStoreUnavailable, "cannot write metric row").WithCause(err)
	}
	if w.limiter.Allow() {
		return w.flushLocked()
	}
	return nil
}

func (w *RunWriter) flushLocked() error {
	if err := w.events.Flush(); err != nil {
		return err
	}
	return w.tsv.Flush()
}

// Flush forces buffered scalars to disk.
func (w *RunWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	return w.flushLocked()
}

// Close flushes and closes the artifact files. Further writes fail.
func (w *RunWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	ferr := w.flushLocked()
	if err := w.eventsFile.Close(); ferr == nil {
		ferr = err
	}
	if err := w.tsvFile.Close(); ferr == nil {
		ferr = err
	}
	w.logger.Info("run writer closed")
	return ferr
}

// ReadEvents loads every event from a run directory's events.jsonl,
// what the plot command consumes.
func ReadEvents(runDir string) ([]Event, error) {
	f, err := os.Open(filepath.Join(runDir, "events.jsonl"))
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "cannot open events file").WithCause(err)
	}
	defer f.Close()

	var events []Event
	dec := json.NewDecoder(f)
	for dec.More() {
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			return nil, types.NewError(types.ErrStoreUnavailable, "corrupt events file").WithCause(err)
		}
		events = append(events, ev)
	}
	return events, nil
}
