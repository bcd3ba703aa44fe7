package types

import "encoding/json"

// ------------------------------
// Core Domain Entities
// ------------------------------

// ItemKind discriminates the two record shapes stored in the card bank.
type ItemKind string

const (
	KindCard  ItemKind = "card"
	KindTopic ItemKind = "topic"
)

// QuestionType distinguishes answer formats of a card.
type QuestionType string

const (
	ShortAnswer    QuestionType = "short_answer"
	MultipleChoice QuestionType = "multiple_choice"
)

// Spaced-repetition boxes run 1..5; new cards start in box 1.
const (
	MinBox          = 1
	MaxBox          = 5
	DefaultBox      = 1
	DefaultPriority = 3
)

// AnswerOption is one multiple-choice option. Options is the live copy;
// SavedOptions on the card is the backup refreshed whenever Options changes.
type AnswerOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Card is the canonical flashcard shape. Review timestamps stay RFC 3339
// strings because legacy records carry free-form values that must survive
// a round trip unchanged.
type Card struct {
	Kind           ItemKind       `json:"type"`
	ID             string         `json:"id"`
	Subject        string         `json:"subject,omitempty"`
	Topic          string         `json:"topic,omitempty"`
	ExamBoard      string         `json:"examBoard,omitempty"`
	ExamType       string         `json:"examType,omitempty"`
	TopicPriority  int            `json:"topicPriority"`
	Question       string         `json:"question,omitempty"`
	Answer         string         `json:"answer,omitempty"`
	KeyPoints      []string       `json:"keyPoints,omitempty"`
	DetailedAnswer string         `json:"detailedAnswer,omitempty"`
	AdditionalInfo string         `json:"additionalInfo,omitempty"`
	CardColor      string         `json:"cardColor,omitempty"`
	TextColor      string         `json:"textColor,omitempty"`
	BoxNum         int            `json:"boxNum"`
	LastReviewed   string         `json:"lastReviewed,omitempty"`
	NextReviewDate string         `json:"nextReviewDate,omitempty"`
	QuestionType   QuestionType   `json:"questionType"`
	Options        []AnswerOption `json:"options,omitempty"`
	SavedOptions   []AnswerOption `json:"savedOptions,omitempty"`
	Created        string         `json:"created,omitempty"`
	Updated        string         `json:"updated,omitempty"`
}

// TopicShell is a topic heading that accumulates child cards. A freshly
// regenerated shell must never clobber the children of the shell it
// replaces; MergeTopicShells enforces that.
type TopicShell struct {
	Kind      ItemKind `json:"type"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Subject   string   `json:"subject,omitempty"`
	ExamBoard string   `json:"examBoard,omitempty"`
	ExamType  string   `json:"examType,omitempty"`
	Color     string   `json:"color,omitempty"`
	IsShell   bool     `json:"isShell"`
	IsEmpty   bool     `json:"isEmpty"`
	Cards     []Card   `json:"cards"`
	Created   string   `json:"created,omitempty"`
}

// BoxRef points a spaced-repetition bucket at a card in the bank.
type BoxRef struct {
	CardID         string `json:"cardId"`
	LastReviewed   string `json:"lastReviewed,omitempty"`
	NextReviewDate string `json:"nextReviewDate,omitempty"`
}

// Item is the tagged union stored in the card bank: exactly one of Card
// or Topic is set, matching Kind.
type Item struct {
	Kind  ItemKind
	Card  *Card
	Topic *TopicShell
}

// NewCardItem wraps c as a bank item.
func NewCardItem(c *Card) Item {
	c.Kind = KindCard
	return Item{Kind: KindCard, Card: c}
}

// NewTopicItem wraps s as a bank item.
func NewTopicItem(s *TopicShell) Item {
	s.Kind = KindTopic
	return Item{Kind: KindTopic, Topic: s}
}

// ID returns the identity of the wrapped record.
func (it Item) ID() string {
	switch it.Kind {
	case KindCard:
		return it.Card.ID
	case KindTopic:
		return it.Topic.ID
	}
	return ""
}

// MarshalJSON flattens the union into the wrapped record so the bank
// serializes as a plain mixed array.
func (it Item) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case KindTopic:
		return json.Marshal(it.Topic)
	default:
		return json.Marshal(it.Card)
	}
}
