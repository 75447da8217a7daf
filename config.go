package van

import "github.com/vancore/van/internal/logging"

// Config configures a Runtime, grounded on the teacher's
// internal/logging.Config pattern: a defaultable value type rather than
// a builder, passed once to Init.
type Config struct {
	// ShmPath is the backing shared-memory file both endpoints of every
	// pair attach to.
	ShmPath string

	// Creator is true for the process that creates and zeroes the
	// shared-memory region; false for a process attaching to one another
	// process already created.
	Creator bool

	// Logging configures the leveled logger threaded through every
	// subsystem. A nil value uses logging.DefaultConfig().
	Logging *logging.Config

	// Metrics, if non-nil, is used instead of a freshly allocated one —
	// useful for sharing one Metrics instance across multiple Runtimes in
	// a test.
	Metrics *Metrics
}

// DefaultConfig returns a Config with the historical shared-memory path,
// creator semantics, and default logging.
func DefaultConfig() *Config {
	return &Config{
		ShmPath: ShmFile,
		Creator: true,
		Logging: logging.DefaultConfig(),
	}
}
