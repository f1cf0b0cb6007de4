// Package metrics exposes Prometheus collectors for uploads, meshing and
// sessions.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/philipparndt/gomesh/pkg/engine"
	"github.com/philipparndt/gomesh/pkg/shape"
)

// Result labels
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultFailed   = "failed"
	ResultCanceled = "canceled"
	ResultError    = "error"
)

// Metrics holds the collectors of one registry
type Metrics struct {
	registry *prometheus.Registry

	Loads          *prometheus.CounterVec
	LoadDuration   prometheus.Histogram
	Meshes         *prometheus.CounterVec
	MeshDuration   prometheus.Histogram
	MeshElements   prometheus.Histogram
	ActiveSessions prometheus.Gauge
	MeshesRunning  prometheus.Gauge
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Loads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomesh_geometry_loads_total",
			Help: "Geometry loads by result",
		}, []string{"result"}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gomesh_geometry_load_duration_seconds",
			Help:    "Time spent loading geometry files",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		Meshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomesh_mesh_generations_total",
			Help: "Mesh generations by result and dimension",
		}, []string{"result", "dim"}),
		MeshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gomesh_mesh_duration_seconds",
			Help:    "Time spent generating meshes",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		MeshElements: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gomesh_mesh_volume_elements",
			Help:    "Volume elements per generated mesh",
			Buckets: prometheus.ExponentialBuckets(100, 4, 10),
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gomesh_active_sessions",
			Help: "Browser sessions holding a controller",
		}),
		MeshesRunning: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gomesh_meshes_running",
			Help: "Mesh generations in progress",
		}),
	}
}

// Registry returns the registry the collectors live in
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func dimLabel(dim int) string {
	if dim == 2 {
		return "2"
	}
	return "3"
}

func loadResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, context.Canceled):
		return ResultCanceled
	case engine.IsInvalidGeometry(err):
		return ResultInvalid
	default:
		return ResultError
	}
}

func meshResult(err error) string {
	if _, ok := engine.AsMeshingError(err); ok {
		return ResultFailed
	}
	if errors.Is(err, engine.ErrInvalidParameters) {
		return ResultInvalid
	}
	return loadResult(err)
}

// instrumented decorates an engine with the collectors
type instrumented struct {
	next    engine.Engine
	metrics *Metrics
}

// InstrumentEngine wraps e so every call is counted and timed
func InstrumentEngine(e engine.Engine, m *Metrics) engine.Engine {
	return &instrumented{next: e, metrics: m}
}

func (i *instrumented) Load(ctx context.Context, path string) (*shape.Shape, error) {
	start := time.Now()
	s, err := i.next.Load(ctx, path)
	i.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	i.metrics.Loads.WithLabelValues(loadResult(err)).Inc()
	return s, err
}

func (i *instrumented) GenerateMesh(ctx context.Context, s *shape.Shape, params engine.MeshParameters) (*engine.Mesh, error) {
	i.metrics.MeshesRunning.Inc()
	defer i.metrics.MeshesRunning.Dec()

	start := time.Now()
	mesh, err := i.next.GenerateMesh(ctx, s, params)
	i.metrics.MeshDuration.Observe(time.Since(start).Seconds())
	i.metrics.Meshes.WithLabelValues(meshResult(err), dimLabel(params.Dim)).Inc()
	if err == nil {
		i.metrics.MeshElements.Observe(float64(mesh.Stats.VolumeElements))
	}
	return mesh, err
}
