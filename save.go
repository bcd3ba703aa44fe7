package cardsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/studykit/cardsync/internal/api"
	"github.com/studykit/cardsync/internal/types"
)

// --------------------------------------------------------------------
// Save operations - delegated to internal/api (async via the save queue)
// --------------------------------------------------------------------

// Save enqueues one write against the record. Missing type or record ID
// fails synchronously; nothing enters the queue. On success the returned
// Pending settles with the save's terminal result: nil after the write
// lands, the last error once retries are exhausted.
func (c *Client) Save(ctx context.Context, req SaveRequest) (*EnqueueAck, *Pending, error) {
	ack, pending, err := api.SubmitSave(ctx, c.exec, c.http, c.baseURL, req)
	if err != nil {
		return nil, nil, err
	}
	c.track(req.RecordID, pending)
	return ack, pending, nil
}

// SaveCards writes the full card bank (standardized) to the record.
func (c *Client) SaveCards(ctx context.Context, recordID string, cards json.RawMessage, preserve bool) (*EnqueueAck, *Pending, error) {
	return c.Save(ctx, SaveRequest{
		Type:           types.SaveCards,
		RecordID:       recordID,
		Data:           cards,
		PreserveFields: preserve,
	})
}

// SaveColorMapping writes the subject/topic color mapping.
func (c *Client) SaveColorMapping(ctx context.Context, recordID string, colors json.RawMessage, preserve bool) (*EnqueueAck, *Pending, error) {
	return c.Save(ctx, SaveRequest{
		Type:           types.SaveColors,
		RecordID:       recordID,
		Data:           colors,
		PreserveFields: preserve,
	})
}

// SaveTopicLists writes the topic-list array.
func (c *Client) SaveTopicLists(ctx context.Context, recordID string, topicLists json.RawMessage, preserve bool) (*EnqueueAck, *Pending, error) {
	return c.Save(ctx, SaveRequest{
		Type:           types.SaveTopics,
		RecordID:       recordID,
		Data:           topicLists,
		PreserveFields: preserve,
	})
}

// SaveFull writes a composite payload; absent sub-keys are left alone on
// the record when preserve is true.
func (c *Client) SaveFull(ctx context.Context, recordID string, full FullPayload, preserve bool) (*EnqueueAck, *Pending, error) {
	data, err := json.Marshal(full)
	if err != nil {
		return nil, nil, fmt.Errorf("encode full payload: %w", err)
	}
	return c.Save(ctx, SaveRequest{
		Type:           types.SaveFull,
		RecordID:       recordID,
		Data:           data,
		PreserveFields: preserve,
	})
}

// AddToBank appends standardized cards to the record's bank and
// registers them in spaced-repetition box 1. The read-merge-write runs
// inside the queued job, serialized with every other save for the record.
func (c *Client) AddToBank(ctx context.Context, recordID string, cards []json.RawMessage) (*EnqueueAck, *Pending, error) {
	ack, pending, err := api.SubmitAddToBank(ctx, c.exec, c.http, c.baseURL, recordID, cards)
	if err != nil {
		return nil, nil, err
	}
	c.track(recordID, pending)
	return ack, pending, nil
}

// --------------------------------------------------------------------
// Record reads - synchronous
// --------------------------------------------------------------------

// GetRecord fetches the raw record (synchronous).
func (c *Client) GetRecord(ctx context.Context, recordID string) (api.Record, error) {
	return api.GetRecord(ctx, c.http, c.baseURL, recordID)
}

// FindRecord locates the user's record by filter rules (synchronous).
func (c *Client) FindRecord(ctx context.Context, filters []api.FilterRule) (api.Record, error) {
	return api.FindRecord(ctx, c.http, c.baseURL, filters)
}

// track records metrics for a queued save's lifecycle.
func (c *Client) track(recordID string, pending *Pending) {
	label := recordLabel(recordID)
	savesEnqueuedTotal.WithLabelValues(label).Inc()
	go func() {
		if err := pending.Wait(context.Background()); err != nil {
			savesFailedTotal.WithLabelValues(label).Inc()
		}
	}()
}
