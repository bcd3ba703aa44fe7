// Package standardize coerces heterogeneous, legacy-shaped card and
// topic records into the canonical shapes in internal/types. One
// malformed item never poisons a batch: offending items are dropped and
// reported alongside the survivors.
package standardize

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/studykit/cardsync/internal/types"
)

// ItemError identifies a dropped input item.
type ItemError struct {
	Index int
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

// Result carries the standardized survivors and the dropped items, so
// callers and tests can assert on drop counts instead of reading logs.
type Result struct {
	Items   []types.Item
	Dropped []ItemError
}

// Standardize normalizes a raw mixed batch. Inputs are never mutated;
// each item is decoded into a fresh value before coercion.
func Standardize(raw []json.RawMessage) Result {
	res := Result{Items: make([]types.Item, 0, len(raw))}
	for i, r := range raw {
		item, err := One(r)
		if err != nil {
			log.Warn().Int("index", i).Err(err).Msg("standardize: dropping malformed item")
			res.Dropped = append(res.Dropped, ItemError{Index: i, Err: err})
			continue
		}
		res.Items = append(res.Items, item)
	}
	return res
}

// One standardizes a single raw record into the card/topic tagged union.
func One(raw json.RawMessage) (types.Item, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return types.Item{}, err
	}
	m, ok := MigrateLegacyTypes(v).(map[string]any)
	if !ok {
		return types.Item{}, fmt.Errorf("expected a JSON object, got %T", v)
	}
	if isTopic(m) {
		return types.NewTopicItem(shellFromMap(m)), nil
	}
	return types.NewCardItem(cardFromMap(m)), nil
}

// isTopic classifies a record as a topic shell: an explicit marker wins;
// otherwise a record with a name and subject but no question content is
// a shell.
func isTopic(m map[string]any) bool {
	if boolVal(m, "isShell") {
		return true
	}
	if t, _ := m["type"].(string); t == string(types.KindTopic) {
		return true
	}
	hasContent := str(m, "question", "front") != "" || str(m, "answer", "back") != ""
	return !hasContent && str(m, "name") != "" && str(m, "subject") != ""
}

func cardFromMap(m map[string]any) *types.Card {
	c := &types.Card{
		Kind:           types.KindCard,
		ID:             identity(m),
		Subject:        str(m, "subject"),
		Topic:          str(m, "topic"),
		ExamBoard:      str(m, "examBoard"),
		ExamType:       str(m, "examType"),
		TopicPriority:  intOr(m, types.DefaultPriority, "topicPriority"),
		Question:       str(m, "question", "front"),
		Answer:         str(m, "answer", "back"),
		KeyPoints:      strSlice(m, "keyPoints"),
		DetailedAnswer: str(m, "detailedAnswer"),
		AdditionalInfo: str(m, "additionalInfo", "notes"),
		CardColor:      str(m, "cardColor", "color"),
		TextColor:      str(m, "textColor"),
		BoxNum:         clampBox(intOr(m, types.DefaultBox, "boxNum")),
		LastReviewed:   str(m, "lastReviewed"),
		NextReviewDate: str(m, "nextReviewDate"),
		Created:        str(m, "created", "timestamp"),
		Updated:        str(m, "updated"),
	}
	reconcileMultipleChoice(c, m)
	return c
}

// shellFromMap builds a topic shell. Question/answer/box fields are
// cleared by construction: shells carry none of them.
func shellFromMap(m map[string]any) *types.TopicShell {
	s := &types.TopicShell{
		Kind:      types.KindTopic,
		ID:        identity(m),
		Name:      str(m, "name", "topic", "subject"),
		Subject:   str(m, "subject"),
		ExamBoard: str(m, "examBoard"),
		ExamType:  str(m, "examType"),
		Color:     str(m, "color", "cardColor"),
		IsShell:   true,
		Created:   str(m, "created", "timestamp"),
	}
	if children, ok := m["cards"].([]any); ok {
		for _, child := range children {
			cm, ok := child.(map[string]any)
			if !ok {
				continue
			}
			s.Cards = append(s.Cards, *cardFromMap(cm))
		}
	}
	NormalizeShell(s)
	return s
}

// NormalizeShell re-establishes the shell invariants after any merge or
// direct construction: structural kind, shell marker, derived isEmpty,
// non-nil children.
func NormalizeShell(s *types.TopicShell) {
	s.Kind = types.KindTopic
	s.IsShell = true
	if s.Cards == nil {
		s.Cards = []types.Card{}
	}
	s.IsEmpty = len(s.Cards) == 0
}

// reconcileMultipleChoice applies the options/savedOptions protocol:
// options is the live copy, savedOptions the backup, and the backup is
// refreshed whenever the live copy changes. Cards that are not multiple
// choice carry no options at all.
func reconcileMultipleChoice(c *types.Card, m map[string]any) {
	options, optionsOK := parseOptions(m, "options")
	saved, savedOK := parseOptions(m, "savedOptions")

	declared := str(m, "questionType")
	isMC := declared == string(types.MultipleChoice) || optionsOK || savedOK

	if !isMC {
		c.QuestionType = types.ShortAnswer
		c.Options = nil
		c.SavedOptions = nil
		return
	}

	c.QuestionType = types.MultipleChoice
	if len(options) == 0 && len(saved) > 0 {
		options = saved // restore from backup
	}
	c.Options = options
	if !optionsEqual(options, saved) {
		saved = append([]types.AnswerOption(nil), options...)
	}
	c.SavedOptions = saved
}

// parseOptions reports (coerced options, wellFormed). wellFormed is true
// only for a non-empty array whose every entry carries a string text and
// boolean isCorrect; that strict form is what triggers multiple-choice
// detection. Coercion itself is tolerant.
func parseOptions(m map[string]any, key string) ([]types.AnswerOption, bool) {
	arr, ok := m[key].([]any)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	wellFormed := true
	out := make([]types.AnswerOption, 0, len(arr))
	for _, e := range arr {
		em, ok := e.(map[string]any)
		if !ok {
			wellFormed = false
			continue
		}
		text, textOK := em["text"].(string)
		correct, correctOK := em["isCorrect"].(bool)
		if !textOK || !correctOK {
			wellFormed = false
		}
		out = append(out, types.AnswerOption{
			Text:      Clean(SafeDecode(text)),
			IsCorrect: correct,
		})
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, wellFormed
}

func optionsEqual(a, b []types.AnswerOption) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ------------------------- map getters -------------------------

// identity returns the record's id, generating one when absent so every
// standardized item is addressable.
func identity(m map[string]any) string {
	if id := str(m, "id"); id != "" {
		return id
	}
	return newID()
}

// str returns the first non-empty string among keys, sanitized.
func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return Clean(SafeDecode(s))
		}
	}
	return ""
}

func intOr(m map[string]any, def int, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}

func boolVal(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func strSlice(m map[string]any, key string) []string {
	arr, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, Clean(SafeDecode(s)))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func clampBox(n int) int {
	if n < types.MinBox {
		return types.MinBox
	}
	if n > types.MaxBox {
		return types.MaxBox
	}
	return n
}
