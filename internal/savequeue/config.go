package savequeue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups all tunables. Values are taken from environment variables
// with the prefix "SAVEQ_". Example: SAVEQ_MAX_ATTEMPTS=5 SAVEQ_QUEUE_SIZE=256 .
type Config struct {
	// Lanes is the number of worker goroutines; a record always maps to
	// the same lane, so writes per record stay strictly FIFO. One lane
	// suffices when a process syncs a single user record.
	Lanes          int           `envconfig:"LANES"           default:"1"`
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"64"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	// ErrorHandler is called synchronously after a save reaches terminal
	// failure. Leave nil if you do not care.
	ErrorHandler func(error) `envconfig:"-"`

	// MaxAttempts bounds total tries per save; the wait before attempt
	// n+1 is BaseBackoff * 2^(n-1), capped at MaxInterval.
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"3"`
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF" default:"1s"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL" default:"20s"`
}

// LoadConfig populates Config from environment variables (prefix SAVEQ_).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("SAVEQ", &c)
}
