package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	syncerrors "github.com/studykit/cardsync/internal/errors"
	"github.com/studykit/cardsync/internal/fieldmap"
	"github.com/studykit/cardsync/internal/standardize"
	"github.com/studykit/cardsync/internal/types"
)

// trackedJob pairs the save closure with the caller's Pending handle so
// the queue can deliver the terminal result.
type trackedJob struct {
	run     func(context.Context) error
	pending *types.Pending
}

func (j *trackedJob) Run(ctx context.Context) error { return j.run(ctx) }
func (j *trackedJob) Notify(err error)              { j.pending.Settle(err) }

// SubmitSave validates req and enqueues it keyed by record ID. Missing
// type or record ID fails synchronously; the request never enters the
// queue. The returned Pending settles with the save's terminal result.
func SubmitSave(ctx context.Context, exec types.Executor, httpClient HTTPClient, baseURL string, req types.SaveRequest) (*types.EnqueueAck, *types.Pending, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := types.ValidateSaveType(req.Type); err != nil {
		return nil, nil, err
	}
	if err := types.ValidateRecordID(req.RecordID); err != nil {
		return nil, nil, err
	}
	if req.EnqueuedAt.IsZero() {
		req.EnqueuedAt = time.Now()
	}

	pending := types.NewPending()
	saveJob := &trackedJob{
		pending: pending,
		run: func(jobCtx context.Context) error {
			var existing Record
			if req.PreserveFields {
				rec, err := GetRecord(jobCtx, httpClient, baseURL, req.RecordID)
				if err != nil {
					// A failed preservation fetch degrades to an
					// unpreserved write; it is never fatal on its own.
					log.Warn().Err(err).Str("recordId", req.RecordID).
						Msg("api: preservation fetch failed, writing without preservation")
				} else {
					existing = rec
				}
			}

			payload, err := Prepare(req, time.Now())
			if err != nil {
				return err
			}
			MergePreserved(payload, existing)

			if payload.Degenerate() {
				log.Debug().Str("recordId", req.RecordID).
					Msg("api: nothing to write beyond timestamp, skipping save")
				return nil
			}
			return UpdateRecord(jobCtx, httpClient, baseURL, req.RecordID, payload)
		},
	}

	if err := exec.Submit(ctx, req.RecordID, saveJob); err != nil {
		return nil, nil, err
	}
	return &types.EnqueueAck{RecordID: req.RecordID, Status: "enqueued"}, pending, nil
}

// SubmitAddToBank enqueues a bank append: fetch the current bank, merge
// in the standardized new cards, and write the bank plus refreshed box-1
// references. The whole read-merge-write runs inside the queued job so
// it serializes with every other save for the record.
func SubmitAddToBank(ctx context.Context, exec types.Executor, httpClient HTTPClient, baseURL, recordID string, cards []json.RawMessage) (*types.EnqueueAck, *types.Pending, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := types.ValidateRecordID(recordID); err != nil {
		return nil, nil, err
	}

	pending := types.NewPending()
	addJob := &trackedJob{
		pending: pending,
		run: func(jobCtx context.Context) error {
			existing, err := GetRecord(jobCtx, httpClient, baseURL, recordID)
			if err != nil && !errors.Is(err, types.ErrNotFound) {
				return err
			}

			bank := decodeBank(existing)
			incoming := standardize.Standardize(cards)

			merged, added := appendToBank(bank, incoming.Items)
			bankJSON, err := json.Marshal(merged)
			if err != nil {
				return syncerrors.NewValidationError(fmt.Errorf("serialize card bank: %w", err))
			}

			box1 := decodeBoxRefs(existing, fieldmap.Box1)
			box1 = appendBoxRefs(box1, added)
			if box1 == nil {
				box1 = []types.BoxRef{}
			}
			box1JSON, err := json.Marshal(box1)
			if err != nil {
				return syncerrors.NewValidationError(fmt.Errorf("serialize box refs: %w", err))
			}

			payload := Payload{
				fieldmap.LastSaved: time.Now().UTC().Format(time.RFC3339),
				fieldmap.CardBank:  string(bankJSON),
				fieldmap.Box1:      string(box1JSON),
			}
			return UpdateRecord(jobCtx, httpClient, baseURL, recordID, payload)
		},
	}

	if err := exec.Submit(ctx, recordID, addJob); err != nil {
		return nil, nil, err
	}
	return &types.EnqueueAck{RecordID: recordID, Status: "enqueued"}, pending, nil
}

// decodeBank standardizes the record's stored bank; a missing or
// unreadable field yields an empty bank.
func decodeBank(rec Record) []types.Item {
	if rec == nil {
		return nil
	}
	serialized, ok := rec.Field(fieldmap.CardBank)
	if !ok {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(serialized), &raw); err != nil {
		log.Warn().Err(err).Msg("api: stored card bank unreadable, treating as empty")
		return nil
	}
	return standardize.Standardize(raw).Items
}

func decodeBoxRefs(rec Record, field string) []types.BoxRef {
	if rec == nil {
		return nil
	}
	serialized, ok := rec.Field(field)
	if !ok {
		return nil
	}
	var refs []types.BoxRef
	if err := json.Unmarshal([]byte(serialized), &refs); err != nil {
		log.Warn().Err(err).Str("field", field).Msg("api: stored box refs unreadable, treating as empty")
		return nil
	}
	return refs
}

// appendToBank merges incoming items into the bank. Incoming cards with
// an ID already present are skipped; incoming shells merge with stored
// shells so accumulated children survive.
func appendToBank(bank, incoming []types.Item) (merged []types.Item, addedCards []types.Card) {
	var (
		existingShells []types.TopicShell
		incomingShells []types.TopicShell
	)
	merged = make([]types.Item, 0, len(bank)+len(incoming))
	seen := make(map[string]bool, len(bank))
	for _, it := range bank {
		if it.Kind == types.KindTopic {
			existingShells = append(existingShells, *it.Topic)
			continue
		}
		seen[it.ID()] = true
		merged = append(merged, it)
	}

	for _, it := range incoming {
		if it.Kind == types.KindTopic {
			incomingShells = append(incomingShells, *it.Topic)
			continue
		}
		if seen[it.ID()] {
			continue // already in the bank
		}
		seen[it.ID()] = true
		merged = append(merged, it)
		addedCards = append(addedCards, *it.Card)
	}

	shells := standardize.MergeTopicShells(existingShells, incomingShells)
	for i := range shells {
		merged = append(merged, types.NewTopicItem(&shells[i]))
	}
	return merged, addedCards
}

// appendBoxRefs adds box-1 references for newly added cards, skipping
// cards a reference already points at.
func appendBoxRefs(refs []types.BoxRef, added []types.Card) []types.BoxRef {
	present := make(map[string]bool, len(refs))
	for _, r := range refs {
		present[r.CardID] = true
	}
	for _, c := range added {
		if present[c.ID] {
			continue
		}
		refs = append(refs, types.BoxRef{
			CardID:         c.ID,
			LastReviewed:   c.LastReviewed,
			NextReviewDate: c.NextReviewDate,
		})
	}
	return refs
}
