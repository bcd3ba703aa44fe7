package cardsync

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/studykit/cardsync/internal/savequeue"
)

// Option configures a Client during construction in New.
//
// Options are applied before the auth transport wrapper is installed, so
// transport-related options (like debug logging) end up beneath the
// credential headers. Options must be deterministic and side-effect free.
type Option func(*Client) error

// QueueConfig exposes the save queue tunables on the public surface.
// Zero values fall back to the queue defaults.
type QueueConfig struct {
	Lanes          int
	QueueSize      int
	EnqueueTimeout time.Duration

	// MaxAttempts bounds total tries per save; the wait before attempt
	// n+1 is BaseBackoff * 2^(n-1), capped at MaxInterval.
	MaxAttempts int
	BaseBackoff time.Duration
	MaxInterval time.Duration
}

// WithHTTPClient injects a custom *http.Client. Useful for transport
// timeouts, tracing, or custom TLS settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP
// request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response
// is logged when enabled is true. Do not enable in production.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			transport := c.http.Transport
			if transport == nil {
				transport = http.DefaultTransport
			}
			c.http.Transport = &debugTransport{base: transport}
		}
		return nil
	}
}

// WithUserToken sets the per-user bearer token sent on every request.
// Record reads and writes act on behalf of this user.
func WithUserToken(token string) Option {
	return func(c *Client) error {
		c.userToken = token
		return nil
	}
}

// WithQueueConfig replaces the save queue tunables. The queue itself is
// still constructed by New.
func WithQueueConfig(qc QueueConfig) Option {
	return func(c *Client) error {
		c.exec = savequeue.New(savequeue.Config{
			Lanes:          qc.Lanes,
			QueueSize:      qc.QueueSize,
			EnqueueTimeout: qc.EnqueueTimeout,
			MaxAttempts:    qc.MaxAttempts,
			BaseBackoff:    qc.BaseBackoff,
			MaxInterval:    qc.MaxInterval,
		})
		return nil
	}
}
