package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/cantools/canlog/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus counters
var (
	LinesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "log_lines_read_total",
		Help: "Total input lines read by the running translator.",
	})
	LinesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "log_lines_written_total",
		Help: "Total output lines emitted by the running translator.",
	})
	MalformedLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "malformed_lines_total",
		Help: "Total rejected lines (grammar violations, non-hex data, bad lengths).",
	})
	Frames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frames_total",
		Help: "Total frames converted, by transport generation.",
	}, []string{"transport"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
)

// Transport label constants (stable label values to bound cardinality)
const (
	TransportCC = "cc"
	TransportFD = "fd"
	TransportXL = "xl"
)

// Error label constants
const (
	ErrRead   = "input_read"
	ErrWrite  = "output_write"
	ErrHeader = "asc_header"
	ErrDate   = "asc_date"
)

// StartHTTP serves Prometheus metrics at /metrics on the given address.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters for easy logging (avoid Prometheus scraping in-process)
var (
	localLinesRead    uint64
	localLinesWritten uint64
	localMalformed    uint64
	localFramesCC     uint64
	localFramesFD     uint64
	localFramesXL     uint64
	localErrors       uint64
)

// Snapshot is a cheap copy of local counters.
type Snapshot struct {
	LinesRead    uint64
	LinesWritten uint64
	Malformed    uint64
	FramesCC     uint64
	FramesFD     uint64
	FramesXL     uint64
	Errors       uint64 // sum across error labels
}

func Snap() Snapshot {
	return Snapshot{
		LinesRead:    atomic.LoadUint64(&localLinesRead),
		LinesWritten: atomic.LoadUint64(&localLinesWritten),
		Malformed:    atomic.LoadUint64(&localMalformed),
		FramesCC:     atomic.LoadUint64(&localFramesCC),
		FramesFD:     atomic.LoadUint64(&localFramesFD),
		FramesXL:     atomic.LoadUint64(&localFramesXL),
		Errors:       atomic.LoadUint64(&localErrors),
	}
}

// Wrapper helpers to keep call sites simple.
func IncLineRead() {
	LinesRead.Inc()
	atomic.AddUint64(&localLinesRead, 1)
}

func IncLineWritten() {
	LinesWritten.Inc()
	atomic.AddUint64(&localLinesWritten, 1)
}

func IncMalformed() {
	MalformedLines.Inc()
	atomic.AddUint64(&localMalformed, 1)
}

// IncFrame counts one converted frame under its transport label.
func IncFrame(transport string) {
	Frames.WithLabelValues(transport).Inc()
	switch transport {
	case TransportCC:
		atomic.AddUint64(&localFramesCC, 1)
	case TransportFD:
		atomic.AddUint64(&localFramesFD, 1)
	case TransportXL:
		atomic.AddUint64(&localFramesXL, 1)
	}
}

func IncError(label string) {
	Errors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localErrors, 1)
}

// InitBuildInfo sets the build info gauge (should be called once at startup).
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	// Pre-register common series so the first event does not pay a
	// registration latency.
	for _, lbl := range []string{ErrRead, ErrWrite, ErrHeader, ErrDate} {
		Errors.WithLabelValues(lbl).Add(0)
	}
	for _, lbl := range []string{TransportCC, TransportFD, TransportXL} {
		Frames.WithLabelValues(lbl).Add(0)
	}
}
