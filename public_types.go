package cardsync

import "github.com/studykit/cardsync/internal/types"

// Re-exported domain and request types so callers never import internal
// packages.

type (
	// Card is the canonical flashcard shape.
	Card = types.Card
	// TopicShell is a topic container carried inside the card bank.
	TopicShell = types.TopicShell
	// Item is a bank entry: a card or a topic shell.
	Item = types.Item
	// AnswerOption is one multiple-choice answer.
	AnswerOption = types.AnswerOption
	// BoxRef is a spaced-repetition box entry referencing a card.
	BoxRef = types.BoxRef

	// SaveRequest describes one queued write.
	SaveRequest = types.SaveRequest
	// SaveType selects which record fields a save touches.
	SaveType = types.SaveType
	// FullPayload is the composite body for SaveFull.
	FullPayload = types.FullPayload
	// SpacedRepetition carries the five box arrays of a full save.
	SpacedRepetition = types.SpacedRepetition

	// EnqueueAck is the synchronous acceptance receipt for a save.
	EnqueueAck = types.EnqueueAck
	// Pending settles with the save's terminal result.
	Pending = types.Pending

	// ItemKind discriminates Item's union.
	ItemKind = types.ItemKind
	// QuestionType is a card's answer mode.
	QuestionType = types.QuestionType
)

// NewPending returns an unsettled result handle. Mostly useful for test
// doubles standing in for the client.
func NewPending() *Pending { return types.NewPending() }

const (
	SaveCardsType  = types.SaveCards
	SaveColorsType = types.SaveColors
	SaveTopicsType = types.SaveTopics
	SaveFullType   = types.SaveFull

	KindCard  = types.KindCard
	KindTopic = types.KindTopic

	ShortAnswer    = types.ShortAnswer
	MultipleChoice = types.MultipleChoice
)
