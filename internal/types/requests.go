package types

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// ------------------------------
// Save Request Types
// ------------------------------

// SaveType selects which logical section of the record a save writes.
type SaveType string

const (
	SaveCards  SaveType = "cards"
	SaveColors SaveType = "colors"
	SaveTopics SaveType = "topics"
	SaveFull   SaveType = "full"
)

// Valid reports whether t is a known save type.
func (t SaveType) Valid() bool {
	switch t {
	case SaveCards, SaveColors, SaveTopics, SaveFull:
		return true
	}
	return false
}

// SaveRequest describes one queued write against a record. Data is kept
// opaque until payload preparation; its shape depends on Type.
type SaveRequest struct {
	Type           SaveType        `json:"type"`
	RecordID       string          `json:"recordId"`
	PreserveFields bool            `json:"preserveFields"`
	Data           json.RawMessage `json:"data,omitempty"`
	EnqueuedAt     time.Time       `json:"-"`
}

// FullPayload is the composite shape accepted by SaveFull. Absent
// sub-keys are omitted from the write entirely, which is what lets
// field preservation restore them from the existing record.
type FullPayload struct {
	Cards            json.RawMessage   `json:"cards,omitempty"`
	ColorMapping     json.RawMessage   `json:"colorMapping,omitempty"`
	TopicLists       json.RawMessage   `json:"topicLists,omitempty"`
	SpacedRepetition *SpacedRepetition `json:"spacedRepetition,omitempty"`
	TopicMetadata    json.RawMessage   `json:"topicMetadata,omitempty"`
}

// SpacedRepetition carries up to five named review buckets.
type SpacedRepetition struct {
	Box1 json.RawMessage `json:"box1,omitempty"`
	Box2 json.RawMessage `json:"box2,omitempty"`
	Box3 json.RawMessage `json:"box3,omitempty"`
	Box4 json.RawMessage `json:"box4,omitempty"`
	Box5 json.RawMessage `json:"box5,omitempty"`
}

// Buckets returns the boxes in order 1..5.
func (s *SpacedRepetition) Buckets() [5]json.RawMessage {
	if s == nil {
		return [5]json.RawMessage{}
	}
	return [5]json.RawMessage{s.Box1, s.Box2, s.Box3, s.Box4, s.Box5}
}

// ------------------------------
// Results
// ------------------------------

// EnqueueAck is returned as soon as a save has been accepted by the queue.
type EnqueueAck struct {
	RecordID string `json:"recordId"`
	Status   string `json:"status"`
}

// Pending is the caller's handle on a queued save. It settles exactly
// once with the operation's terminal result: nil after a successful
// write, the last observed error after exhausted retries.
type Pending struct {
	once sync.Once
	err  error
	done chan struct{}
}

// NewPending returns an unsettled handle.
func NewPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Settle records the terminal result. Later calls are no-ops, so Wait is
// safe to call from any number of goroutines.
func (p *Pending) Settle(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Wait blocks until the save reaches a terminal state or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return p.err
	}
}

// Done is closed once the save has settled.
func (p *Pending) Done() <-chan struct{} { return p.done }
