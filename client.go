// Package cardsync is a client SDK that synchronizes a user's flashcard
// bank against a single platform record. All writes funnel through an
// internal save queue that guarantees FIFO order per record, one
// in-flight save at a time, and exponential-backoff retry.
package cardsync

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/studykit/cardsync/internal/savequeue"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

type Client struct {
	baseURL   string
	http      *http.Client
	exec      executor
	appID     string // platform application id (required header)
	apiKey    string // platform REST key (required header)
	userToken string // optional per-user bearer token

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for the given platform application.
// Additional options can be provided via functional arguments.
func New(baseURL, appID, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}
	if appID == "" {
		panic("appID cannot be empty")
	}
	if apiKey == "" {
		panic("apiKey cannot be empty")
	}

	c := &Client{
		baseURL: baseURL,
		appID:   appID,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}
	if c.exec == nil {
		c.exec = newDefaultQueue()
	}

	// Wrap the HTTP transport so every request carries the platform
	// auth headers.
	c.wrapTransportWithAuth()

	return c
}

// wrapTransportWithAuth installs the header-injecting transport beneath
// any transport options already applied.
func (c *Client) wrapTransportWithAuth() {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = &authTransport{
		base:      base,
		appID:     c.appID,
		apiKey:    c.apiKey,
		userToken: c.userToken,
	}
}

// authTransport adds the platform credential headers to every request.
type authTransport struct {
	base      http.RoundTripper
	appID     string
	apiKey    string
	userToken string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid mutating the caller's copy.
	cloned := req.Clone(req.Context())
	cloned.Header.Set("X-Knack-Application-Id", t.appID)
	cloned.Header.Set("X-Knack-REST-API-Key", t.apiKey)
	if t.userToken != "" {
		cloned.Header.Set("Authorization", "Bearer "+t.userToken)
	}
	return t.base.RoundTrip(cloned)
}

// Close stops the save queue, draining queued saves. Safe to call
// multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

// Flush blocks until all previously submitted saves for recordID have
// reached a terminal state.
func (c *Client) Flush(ctx context.Context, recordID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.exec.Barrier(ctx, recordID)
}

// newDefaultQueue constructs the save queue from the environment with
// sane defaults.
func newDefaultQueue() *savequeue.Queue {
	cfg, err := savequeue.LoadConfig()
	if err != nil {
		cfg = savequeue.Config{}
	}
	return savequeue.New(cfg)
}
