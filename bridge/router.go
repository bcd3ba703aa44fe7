// Package bridge routes JSON message envelopes between an embedded
// application and the cardsync client. Each inbound message maps to one
// queued save; the reply mirrors the inbound type with a _RESULT suffix
// once the save reaches its terminal state.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/studykit/cardsync"
)

// Message types accepted by the router.
const (
	MsgSaveData          = "SAVE_DATA"
	MsgAddToBank         = "ADD_TO_BANK"
	MsgTopicListsUpdated = "TOPIC_LISTS_UPDATED"
)

// Saver is the slice of the client the router depends on.
type Saver interface {
	Save(ctx context.Context, req cardsync.SaveRequest) (*cardsync.EnqueueAck, *cardsync.Pending, error)
	AddToBank(ctx context.Context, recordID string, cards []json.RawMessage) (*cardsync.EnqueueAck, *cardsync.Pending, error)
}

// Envelope is the inbound message shape. Payload fields beyond the
// routing keys are type-specific and stay raw until dispatch.
type Envelope struct {
	Type           string `json:"type"`
	RecordID       string `json:"recordId"`
	PreserveFields bool   `json:"preserveFields"`

	Cards            json.RawMessage            `json:"cards,omitempty"`
	ColorMapping     json.RawMessage            `json:"colorMapping,omitempty"`
	TopicLists       json.RawMessage            `json:"topicLists,omitempty"`
	TopicMetadata    json.RawMessage            `json:"topicMetadata,omitempty"`
	SpacedRepetition *cardsync.SpacedRepetition `json:"spacedRepetition,omitempty"`
}

// Result is the outbound reply shape.
type Result struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Router dispatches envelopes to the saver and waits for terminal
// results before replying.
type Router struct {
	saver Saver
}

// NewRouter returns a router over the given saver.
func NewRouter(s Saver) *Router {
	return &Router{saver: s}
}

// Handle decodes one inbound message, performs the mapped save, waits
// for its terminal state, and returns the serialized reply. Every path,
// including malformed input, yields a reply rather than an error: the
// peer on the other side of the bridge only speaks Result.
func (r *Router) Handle(ctx context.Context, raw []byte) []byte {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Msg("bridge: malformed envelope")
		return reply("UNKNOWN", fmt.Errorf("malformed message: %w", err))
	}
	return reply(env.Type, r.dispatch(ctx, env))
}

func (r *Router) dispatch(ctx context.Context, env Envelope) error {
	switch env.Type {
	case MsgSaveData:
		return r.saveData(ctx, env)
	case MsgAddToBank:
		return r.addToBank(ctx, env)
	case MsgTopicListsUpdated:
		return r.topicLists(ctx, env)
	default:
		log.Warn().Str("type", env.Type).Msg("bridge: unknown message type")
		return fmt.Errorf("unknown message type %q", env.Type)
	}
}

func (r *Router) saveData(ctx context.Context, env Envelope) error {
	full := cardsync.FullPayload{
		Cards:            env.Cards,
		ColorMapping:     env.ColorMapping,
		TopicLists:       env.TopicLists,
		TopicMetadata:    env.TopicMetadata,
		SpacedRepetition: env.SpacedRepetition,
	}
	data, err := json.Marshal(full)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return r.submit(ctx, cardsync.SaveRequest{
		Type:           cardsync.SaveFullType,
		RecordID:       env.RecordID,
		PreserveFields: env.PreserveFields,
		Data:           data,
	})
}

func (r *Router) topicLists(ctx context.Context, env Envelope) error {
	return r.submit(ctx, cardsync.SaveRequest{
		Type:           cardsync.SaveTopicsType,
		RecordID:       env.RecordID,
		PreserveFields: env.PreserveFields,
		Data:           env.TopicLists,
	})
}

func (r *Router) addToBank(ctx context.Context, env Envelope) error {
	var cards []json.RawMessage
	if len(env.Cards) > 0 {
		if err := json.Unmarshal(env.Cards, &cards); err != nil {
			return fmt.Errorf("decode cards: %w", err)
		}
	}
	_, pending, err := r.saver.AddToBank(ctx, env.RecordID, cards)
	if err != nil {
		return err
	}
	return pending.Wait(ctx)
}

func (r *Router) submit(ctx context.Context, req cardsync.SaveRequest) error {
	_, pending, err := r.saver.Save(ctx, req)
	if err != nil {
		return err
	}
	return pending.Wait(ctx)
}

func reply(msgType string, err error) []byte {
	res := Result{Type: msgType + "_RESULT", Success: err == nil}
	if err != nil {
		res.Error = err.Error()
	}
	out, _ := json.Marshal(res)
	return out
}
