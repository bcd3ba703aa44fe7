package api

import (
	"encoding/json"
	"fmt"
	"time"

	syncerrors "github.com/studykit/cardsync/internal/errors"
	"github.com/studykit/cardsync/internal/fieldmap"
	"github.com/studykit/cardsync/internal/standardize"
	"github.com/studykit/cardsync/internal/types"
)

// Payload is the partial update document for one save: platform field ID
// to serialized value. Every payload carries the last-saved timestamp.
type Payload map[string]string

// Degenerate reports whether the payload has nothing beyond the
// mandatory timestamp, in which case the write is skipped entirely.
func (p Payload) Degenerate() bool { return len(p) == 1 }

// Prepare builds the write payload for one save request. Preparation
// failures are irrecoverable: they reject the save without retries.
func Prepare(req types.SaveRequest, now time.Time) (Payload, error) {
	p := Payload{fieldmap.LastSaved: now.UTC().Format(time.RFC3339)}

	switch req.Type {
	case types.SaveCards:
		bank, err := serializeBank(req.Data)
		if err != nil {
			return nil, err
		}
		p[fieldmap.CardBank] = bank

	case types.SaveColors:
		v, err := serializedValue(req.Data, '{', "colors payload")
		if err != nil {
			return nil, err
		}
		p[fieldmap.ColorMapping] = v

	case types.SaveTopics:
		v, err := serializedValue(req.Data, '[', "topics payload")
		if err != nil {
			return nil, err
		}
		p[fieldmap.TopicLists] = v

	case types.SaveFull:
		if err := prepareFull(p, req.Data); err != nil {
			return nil, err
		}

	default:
		return nil, syncerrors.NewValidationError(fmt.Errorf("unknown save type %q", req.Type))
	}
	return p, nil
}

// prepareFull expands the composite payload. Each present sub-key lands
// in its own field; absent sub-keys are omitted, not zeroed, so field
// preservation can restore them from the existing record.
func prepareFull(p Payload, data json.RawMessage) error {
	if len(data) == 0 {
		return nil
	}
	var full types.FullPayload
	if err := json.Unmarshal(data, &full); err != nil {
		return syncerrors.NewValidationError(fmt.Errorf("decode full payload: %w", err))
	}

	if full.Cards != nil {
		bank, err := serializeBank(full.Cards)
		if err != nil {
			return err
		}
		p[fieldmap.CardBank] = bank
	}
	if full.ColorMapping != nil {
		v, err := serializedValue(full.ColorMapping, '{', "colorMapping")
		if err != nil {
			return err
		}
		p[fieldmap.ColorMapping] = v
	}
	if full.TopicLists != nil {
		v, err := serializedValue(full.TopicLists, '[', "topicLists")
		if err != nil {
			return err
		}
		p[fieldmap.TopicLists] = v
	}
	if full.TopicMetadata != nil {
		v, err := serializedValue(full.TopicMetadata, '[', "topicMetadata")
		if err != nil {
			return err
		}
		p[fieldmap.TopicMetadata] = v
	}
	for i, bucket := range full.SpacedRepetition.Buckets() {
		if bucket == nil {
			continue
		}
		v, err := serializedValue(bucket, '[', fmt.Sprintf("spacedRepetition box%d", i+1))
		if err != nil {
			return err
		}
		p[fieldmap.Boxes[i]] = v
	}
	return nil
}

// serializeBank standardizes a raw card array and serializes the
// surviving items. Malformed items are dropped, never fatal.
func serializeBank(data json.RawMessage) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", syncerrors.NewValidationError(fmt.Errorf("cards payload must be an array: %w", err))
	}
	res := standardize.Standardize(raw)
	b, err := json.Marshal(res.Items)
	if err != nil {
		return "", syncerrors.NewValidationError(fmt.Errorf("serialize card bank: %w", err))
	}
	return string(b), nil
}

// serializedValue validates that data is JSON of the expected container
// kind and returns its compact serialized form.
func serializedValue(data json.RawMessage, open byte, what string) (string, error) {
	if !json.Valid(data) {
		return "", syncerrors.NewValidationError(fmt.Errorf("%s is not valid JSON", what))
	}
	var compact []byte
	{
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return "", syncerrors.NewValidationError(fmt.Errorf("%s: %w", what, err))
		}
		var err error
		compact, err = json.Marshal(v)
		if err != nil {
			return "", syncerrors.NewValidationError(fmt.Errorf("%s: %w", what, err))
		}
	}
	if len(compact) == 0 || compact[0] != open {
		return "", syncerrors.NewValidationError(fmt.Errorf("%s must start with %q", what, string(open)))
	}
	return string(compact), nil
}

// MergePreserved copies existing values into the payload for every
// managed field the payload does not already define. The copy is
// verbatim and field-level: it never reaches inside a field's serialized
// content.
func MergePreserved(p Payload, existing Record) {
	if existing == nil {
		return
	}
	for _, field := range fieldmap.Managed {
		if _, defined := p[field]; defined {
			continue
		}
		if v, ok := existing.Field(field); ok {
			p[field] = v
		}
	}
}
