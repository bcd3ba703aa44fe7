package standardize

import "github.com/studykit/cardsync/internal/types"

// MergeTopicShells reconciles freshly regenerated topic shells with the
// shells already stored in the bank. Invariants:
//
//   - a shell's accumulated child cards always survive regeneration;
//   - an incoming shell's non-cards fields always win over stale data;
//   - no existing shell is ever silently dropped.
func MergeTopicShells(existing, incoming []types.TopicShell) []types.TopicShell {
	byID := make(map[string]*types.TopicShell, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	merged := make([]types.TopicShell, 0, len(existing)+len(incoming))
	matched := make(map[string]bool, len(incoming))

	for i := range incoming {
		in := incoming[i]
		prior, ok := byID[in.ID]
		if !ok {
			NormalizeShell(&in)
			merged = append(merged, in)
			continue
		}
		matched[in.ID] = true

		// Every field comes from the incoming shell except the children,
		// which only the stored shell knows about.
		out := in
		out.Cards = append([]types.Card(nil), prior.Cards...)
		if out.Created == "" {
			out.Created = prior.Created
		}
		NormalizeShell(&out)
		merged = append(merged, out)
	}

	// Carry forward existing shells the regeneration did not mention.
	for i := range existing {
		if matched[existing[i].ID] {
			continue
		}
		keep := existing[i]
		NormalizeShell(&keep)
		merged = append(merged, keep)
	}
	return merged
}
