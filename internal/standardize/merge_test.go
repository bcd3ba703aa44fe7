package standardize

import (
	"testing"

	"github.com/studykit/cardsync/internal/types"
)

func shell(id, name string, cards ...types.Card) types.TopicShell {
	s := types.TopicShell{ID: id, Name: name, Cards: cards}
	NormalizeShell(&s)
	return s
}

func TestMergeTopicShells_PreservesChildren(t *testing.T) {
	c1 := types.Card{Kind: types.KindCard, ID: "c1", Question: "Q1"}
	c2 := types.Card{Kind: types.KindCard, ID: "c2", Question: "Q2"}
	existing := []types.TopicShell{shell("t1", "Old Name", c1, c2)}
	incoming := []types.TopicShell{shell("t1", "New Name")}

	merged := MergeTopicShells(existing, incoming)
	if len(merged) != 1 {
		t.Fatalf("merged %d shells, want 1", len(merged))
	}
	got := merged[0]
	if got.Name != "New Name" {
		t.Fatalf("incoming fields must win: name = %q", got.Name)
	}
	if len(got.Cards) != 2 || got.Cards[0].ID != "c1" || got.Cards[1].ID != "c2" {
		t.Fatalf("children lost in merge: %+v", got.Cards)
	}
	if got.IsEmpty {
		t.Fatal("isEmpty must be recomputed from preserved children")
	}
}

func TestMergeTopicShells_PreservesCreated(t *testing.T) {
	existing := []types.TopicShell{{ID: "t1", Name: "A", Created: "2024-02-01T00:00:00Z"}}
	incoming := []types.TopicShell{{ID: "t1", Name: "A"}}

	merged := MergeTopicShells(existing, incoming)
	if merged[0].Created != "2024-02-01T00:00:00Z" {
		t.Fatalf("created timestamp lost: %q", merged[0].Created)
	}

	// An incoming created wins when present.
	incoming[0].Created = "2025-01-01T00:00:00Z"
	merged = MergeTopicShells(existing, incoming)
	if merged[0].Created != "2025-01-01T00:00:00Z" {
		t.Fatalf("incoming created must win: %q", merged[0].Created)
	}
}

func TestMergeTopicShells_CarriesForwardUnmatched(t *testing.T) {
	existing := []types.TopicShell{
		shell("t1", "Kept", types.Card{Kind: types.KindCard, ID: "c1"}),
		shell("t2", "Replaced"),
	}
	incoming := []types.TopicShell{shell("t2", "Replaced v2"), shell("t3", "Brand New")}

	merged := MergeTopicShells(existing, incoming)
	byID := map[string]types.TopicShell{}
	for _, s := range merged {
		byID[s.ID] = s
	}
	if len(merged) != 3 {
		t.Fatalf("merged %d shells, want 3", len(merged))
	}
	if byID["t1"].Name != "Kept" || len(byID["t1"].Cards) != 1 {
		t.Fatalf("unmatched existing shell not carried forward: %+v", byID["t1"])
	}
	if byID["t2"].Name != "Replaced v2" {
		t.Fatalf("matched shell did not take incoming fields: %+v", byID["t2"])
	}
	if byID["t3"].Name != "Brand New" || !byID["t3"].IsEmpty {
		t.Fatalf("new incoming shell mishandled: %+v", byID["t3"])
	}
}

func TestMergeTopicShells_EmptyInputs(t *testing.T) {
	if got := MergeTopicShells(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
	kept := MergeTopicShells([]types.TopicShell{shell("t1", "A")}, nil)
	if len(kept) != 1 || kept[0].ID != "t1" {
		t.Fatalf("existing shells must survive an empty regeneration: %+v", kept)
	}
}
