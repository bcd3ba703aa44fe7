package standardize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/studykit/cardsync/internal/types"
)

func rawItems(t *testing.T, docs ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d)
	}
	return out
}

func TestStandardize_CardDefaults(t *testing.T) {
	res := Standardize(rawItems(t,
		`{"id":"c1","subject":"Physics","topic":"Waves","front":"What is f?","back":"Frequency","color":"#ff0000"}`,
	))
	if len(res.Dropped) != 0 {
		t.Fatalf("dropped %d items, want 0", len(res.Dropped))
	}
	if len(res.Items) != 1 || res.Items[0].Kind != types.KindCard {
		t.Fatalf("expected one card, got %+v", res.Items)
	}
	c := res.Items[0].Card
	if c.Question != "What is f?" || c.Answer != "Frequency" {
		t.Fatalf("front/back fallback failed: %+v", c)
	}
	if c.CardColor != "#ff0000" {
		t.Fatalf("color fallback failed: %q", c.CardColor)
	}
	if c.BoxNum != types.DefaultBox {
		t.Fatalf("boxNum = %d, want default %d", c.BoxNum, types.DefaultBox)
	}
	if c.TopicPriority != types.DefaultPriority {
		t.Fatalf("topicPriority = %d, want default %d", c.TopicPriority, types.DefaultPriority)
	}
	if c.QuestionType != types.ShortAnswer {
		t.Fatalf("questionType = %q, want short_answer", c.QuestionType)
	}
}

func TestStandardize_GeneratesMissingID(t *testing.T) {
	res := Standardize(rawItems(t, `{"question":"Q?","answer":"A"}`))
	if len(res.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(res.Items))
	}
	if res.Items[0].Card.ID == "" {
		t.Fatal("expected a generated id")
	}
}

func TestStandardize_TopicClassification(t *testing.T) {
	res := Standardize(rawItems(t,
		`{"id":"t1","isShell":true,"name":"Mechanics","subject":"Physics"}`,
		`{"id":"t2","name":"Optics","subject":"Physics"}`,
		`{"id":"c1","name":"Optics","subject":"Physics","question":"Q?"}`,
	))
	if len(res.Items) != 3 {
		t.Fatalf("expected 3 items, got %d (dropped %d)", len(res.Items), len(res.Dropped))
	}
	if res.Items[0].Kind != types.KindTopic || res.Items[1].Kind != types.KindTopic {
		t.Fatalf("shell records not classified as topics: %+v", res.Items[:2])
	}
	if res.Items[2].Kind != types.KindCard {
		t.Fatal("record with question content must stay a card")
	}
	shell := res.Items[0].Topic
	if !shell.IsShell || !shell.IsEmpty || shell.Cards == nil {
		t.Fatalf("shell invariants broken: %+v", shell)
	}
}

func TestStandardize_ShellKeepsChildren(t *testing.T) {
	res := Standardize(rawItems(t,
		`{"id":"t1","isShell":true,"name":"Waves","subject":"Physics","cards":[{"id":"c1","question":"Q?","answer":"A"}]}`,
	))
	shell := res.Items[0].Topic
	if len(shell.Cards) != 1 || shell.Cards[0].ID != "c1" {
		t.Fatalf("nested cards lost: %+v", shell)
	}
	if shell.IsEmpty {
		t.Fatal("isEmpty must derive from the cards array")
	}
}

func TestStandardize_DropsMalformedItemOnly(t *testing.T) {
	res := Standardize(rawItems(t,
		`{"id":"c1","question":"Q?","answer":"A"}`,
		`not json at all`,
		`[1,2,3]`,
		`{"id":"c2","question":"Q2?","answer":"A2"}`,
	))
	if len(res.Items) != 2 {
		t.Fatalf("survivors = %d, want 2", len(res.Items))
	}
	if len(res.Dropped) != 2 {
		t.Fatalf("dropped = %d, want 2", len(res.Dropped))
	}
	if res.Dropped[0].Index != 1 || res.Dropped[1].Index != 2 {
		t.Fatalf("dropped wrong indexes: %+v", res.Dropped)
	}
}

func TestStandardize_MultipleChoiceDetection(t *testing.T) {
	res := Standardize(rawItems(t,
		`{"id":"c1","question":"Pick","answer":"A","options":[{"text":"A","isCorrect":true}]}`,
	))
	c := res.Items[0].Card
	if c.QuestionType != types.MultipleChoice {
		t.Fatalf("questionType = %q, want multiple_choice", c.QuestionType)
	}
	want := []types.AnswerOption{{Text: "A", IsCorrect: true}}
	if !reflect.DeepEqual(c.Options, want) {
		t.Fatalf("options = %+v, want %+v", c.Options, want)
	}
	if !reflect.DeepEqual(c.SavedOptions, want) {
		t.Fatalf("savedOptions must be refreshed from options, got %+v", c.SavedOptions)
	}
}

func TestStandardize_OptionsRestoredFromBackup(t *testing.T) {
	res := Standardize(rawItems(t,
		`{"id":"c1","question":"Pick","questionType":"multiple_choice","savedOptions":[{"text":"B","isCorrect":false},{"text":"C","isCorrect":true}]}`,
	))
	c := res.Items[0].Card
	if len(c.Options) != 2 || c.Options[1].Text != "C" {
		t.Fatalf("options not restored from savedOptions: %+v", c.Options)
	}
}

func TestStandardize_NotMultipleChoiceCleared(t *testing.T) {
	res := Standardize(rawItems(t,
		`{"id":"c1","question":"Q?","answer":"A","questionType":"multiple_choice"}`,
	))
	c := res.Items[0].Card
	// Declared MC with no options keeps the declaration but has nothing
	// to reconcile.
	if c.QuestionType != types.MultipleChoice || c.Options != nil {
		t.Fatalf("unexpected reconciliation: %+v", c)
	}

	res = Standardize(rawItems(t,
		`{"id":"c2","question":"Q?","answer":"A","options":[]}`,
	))
	c = res.Items[0].Card
	if c.QuestionType != types.ShortAnswer || c.Options != nil || c.SavedOptions != nil {
		t.Fatalf("non-MC card must have options cleared: %+v", c)
	}
}

// standardize(standardize(X)) == standardize(X) for well-formed input.
func TestStandardize_Idempotent(t *testing.T) {
	first := Standardize(rawItems(t,
		`{"id":"c1","subject":"Maths","front":"Q?","back":"A","boxNum":2,"options":[{"text":"A","isCorrect":true},{"text":"B","isCorrect":false}]}`,
		`{"id":"t1","isShell":true,"name":"Algebra","subject":"Maths","cards":[{"id":"c2","question":"Q2?","answer":"A2"}]}`,
		`{"id":"c3","subject":"Maths","question":"50%2520 off means?","answer":"50%20 off"}`,
	))
	if len(first.Dropped) != 0 {
		t.Fatalf("unexpected drops: %+v", first.Dropped)
	}

	reserialized := make([]json.RawMessage, len(first.Items))
	for i, it := range first.Items {
		b, err := json.Marshal(it)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reserialized[i] = b
	}

	second := Standardize(reserialized)
	if len(second.Dropped) != 0 {
		t.Fatalf("second pass dropped items: %+v", second.Dropped)
	}
	if !reflect.DeepEqual(first.Items, second.Items) {
		t.Fatalf("standardization not idempotent:\nfirst:  %+v\nsecond: %+v", first.Items, second.Items)
	}
}
