package van

import (
	"github.com/vancore/van/cable"
	"github.com/vancore/van/internal/clock"
	"github.com/vancore/van/internal/logging"
	"github.com/vancore/van/internal/uapi"
	"github.com/vancore/van/internal/worker"
)

// Runtime is the process-wide collection of live subsystems: the cable
// transport, the worker-thread table, the clock table, and the metrics
// they all report into. It replaces the source's process-wide globals
// (cab_dev[], os_thread_list, tm_t.elem) with one value callers construct
// explicitly via Init, grounded on the teacher's backend.go
// CreateAndServe orchestration shape.
type Runtime struct {
	cfg *Config

	Cable   *cable.Runtime
	Workers *worker.Table
	Clocks  *clock.Table
	Metrics *Metrics

	logger *logging.Logger
}

// Init constructs every subsystem and maps (or attaches to) the backing
// shared-memory file. A nil cfg uses DefaultConfig. This must be called
// before any subsystem is touched, closing the "trace config not yet
// initialised" hazard the source's lazy setup allowed (SPEC_FULL.md §9
// Open Question #3).
func Init(cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logging == nil {
		cfg.Logging = logging.DefaultConfig()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}
	if cfg.ShmPath == "" {
		cfg.ShmPath = ShmFile
	}

	logger := logging.NewLogger(cfg.Logging)

	cableRT, err := cable.NewRuntime(cfg.ShmPath, cfg.Creator, logger.WithComponent("cable"), cfg.Metrics)
	if err != nil {
		return nil, WrapError("Init", err)
	}

	return &Runtime{
		cfg:     cfg,
		Cable:   cableRT,
		Workers: worker.NewTable(logger.WithComponent("worker")),
		Clocks:  clock.NewTable(cfg.Metrics),
		Metrics: cfg.Metrics,
		logger:  logger,
	}, nil
}

// Open attaches to one of the four fixed cable endpoints, matching
// os_c_open.
func (rt *Runtime) Open(cfg uapi.EndpointConfig) (*cable.Endpoint, error) {
	return rt.Cable.Open(cfg)
}

// Close tears a single endpoint down, matching os_c_close.
func (rt *Runtime) Close(ep *cable.Endpoint) {
	rt.Cable.Close(ep)
}

// Exit performs an orderly shutdown: every open endpoint is closed, the
// shared-memory region is unmapped and, if this Runtime created the file,
// the file is unlinked, matching os_cab_exit. Named semaphores are not
// unlinked, and the worker and clock tables are left as they are.
func (rt *Runtime) Exit() {
	rt.Cable.Ripcord(false)
}

// Ripcord performs best-effort cleanup on abnormal exit, matching
// os_cab_ripcord. Safe to call from a deferred recover handler.
func (rt *Runtime) Ripcord(coverage bool) {
	rt.Cable.Ripcord(coverage)
}
