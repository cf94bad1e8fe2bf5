// Package modeler reconstructs triangle meshes from matched stereo pairs on a background worker.
package modeler

import (
	"context"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/stereomesh/logging"
	"go.viam.com/stereomesh/rimage/transform"
	"go.viam.com/stereomesh/spatialmath"
	"go.viam.com/stereomesh/utils"
)

// Stats describe the reconstruction worker.
type Stats struct {
	// Processed counts published meshes.
	Processed uint64
	// Dropped counts pairs replaced by a newer pair before reconstruction started.
	Dropped uint64
	// Failed counts pairs no mesh could be built from.
	Failed uint64
	// MedianBuildTime is over the most recent builds.
	MedianBuildTime time.Duration
}

// A Modeler builds a mesh from the most recent pair handed to Process and keeps the newest mesh
// until NextMesh takes it.
type Modeler struct {
	cfg    *Config
	logger logging.Logger

	inbox   *utils.Mailbox[*transform.StereoPair]
	workers utils.StoppableWorkers

	meshMu sync.Mutex
	mesh   *spatialmath.Mesh

	processed atomic.Uint64
	failed    atomic.Uint64

	timesMu    sync.Mutex
	buildTimes *utils.RollingWindow

	closeOnce sync.Once
}

// NewModeler starts the reconstruction worker.
func NewModeler(cfg *Config, logger logging.Logger) (*Modeler, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate("modeler"); err != nil {
		return nil, err
	}
	m := &Modeler{
		cfg:        cfg,
		logger:     logger.Sublogger("modeler"),
		inbox:      utils.NewMailbox[*transform.StereoPair](),
		buildTimes: utils.NewRollingWindow(cfg.statsWindow()),
	}
	m.workers = utils.NewStoppableWorkers(m.run)
	return m, nil
}

// Process queues pair for reconstruction, replacing any pair still waiting. It never blocks.
func (m *Modeler) Process(pair *transform.StereoPair) {
	if !m.inbox.Push(pair) {
		m.logger.Debug("modeler closed, discarding stereo pair")
	}
}

// NextMesh takes the newest mesh, or returns nil if none was published since the last call.
func (m *Modeler) NextMesh() *spatialmath.Mesh {
	m.meshMu.Lock()
	defer m.meshMu.Unlock()
	mesh := m.mesh
	m.mesh = nil
	return mesh
}

func (m *Modeler) run(ctx context.Context) {
	for {
		pair, ok := m.inbox.Pop(ctx)
		if !ok {
			return
		}
		m.reconstruct(ctx, pair)
	}
}

func (m *Modeler) reconstruct(ctx context.Context, pair *transform.StereoPair) {
	start := time.Now()
	mesh, err := m.build(pair)
	if err != nil {
		m.failed.Inc()
		m.logger.Warnw("cannot build mesh", "error", err)
		return
	}
	elapsed := time.Since(start)

	m.meshMu.Lock()
	m.mesh = mesh
	m.meshMu.Unlock()
	m.processed.Inc()
	m.recordBuildTime(elapsed)
	m.logger.CDebugw(ctx, "mesh built",
		"vertices", len(mesh.Vertices),
		"triangles", len(mesh.Triangles),
		"area", mesh.SurfaceArea(),
		"elapsed", elapsed)
}

func (m *Modeler) build(pair *transform.StereoPair) (mesh *spatialmath.Mesh, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("mesh reconstruction panicked: %v", p)
		}
	}()
	return BuildMesh(pair, m.cfg.depthStep())
}

func (m *Modeler) recordBuildTime(d time.Duration) {
	m.timesMu.Lock()
	defer m.timesMu.Unlock()
	m.buildTimes.Add(float64(d) / float64(time.Millisecond))
}

// Stats returns a snapshot of the worker counters.
func (m *Modeler) Stats() Stats {
	s := Stats{
		Processed: m.processed.Load(),
		Dropped:   m.inbox.Dropped(),
		Failed:    m.failed.Load(),
	}
	m.timesMu.Lock()
	defer m.timesMu.Unlock()
	if median, err := stats.Median(m.buildTimes.Values()); err == nil {
		s.MedianBuildTime = time.Duration(median * float64(time.Millisecond))
	}
	return s
}

// Close stops the worker after its current reconstruction. It is safe to call more than once.
func (m *Modeler) Close() {
	m.closeOnce.Do(func() {
		m.inbox.Close()
		m.workers.Stop()
	})
}
