// Package messages provides the hygiene operations applied to chat
// histories before dispatch. Some backends reject histories with
// consecutive same-role turns or with the transient reasoning field still
// attached; these helpers are pure, composable, and idempotent.
package messages

import (
	"fmt"

	llmerrors "github.com/llmcast/llmcast/pkg/errors"
	"github.com/llmcast/llmcast/pkg/types"
)

// ValidateAndClean drops messages with an unknown role or with empty or
// whitespace-only content. It returns the cleaned slice and the number of
// messages removed.
func ValidateAndClean(msgs []types.Message) ([]types.Message, int) {
	cleaned := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.Role.Valid() || !m.HasContent() {
			continue
		}
		cleaned = append(cleaned, m)
	}
	return cleaned, len(msgs) - len(cleaned)
}

// CollapseConsecutiveSameRole resolves runs of same-role messages by
// replacing the retained message with the newer one (last wins). It returns
// the collapsed slice and the number of messages dropped this way.
func CollapseConsecutiveSameRole(msgs []types.Message) ([]types.Message, int) {
	out := make([]types.Message, 0, len(msgs))
	collapsed := 0
	for _, m := range msgs {
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1] = m
			collapsed++
			continue
		}
		out = append(out, m)
	}
	return out, collapsed
}

// ValidateOrder fails when any adjacent pair of messages shares a role.
// The returned validation error carries the index of the second message of
// the first offending pair.
func ValidateOrder(msgs []types.Message) error {
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Role == msgs[i-1].Role {
			return llmerrors.NewValidationError(i,
				fmt.Sprintf("messages %d and %d both have role %q", i-1, i, msgs[i].Role))
		}
	}
	return nil
}

// StripReasoning removes the transient reasoning field from assistant
// messages. It must run before CollapseConsecutiveSameRole when both apply;
// the reasoning field is irrelevant to the collapse decision.
func StripReasoning(msgs []types.Message) []types.Message {
	out := make([]types.Message, len(msgs))
	copy(out, msgs)
	for i := range out {
		if out[i].Role == types.RoleAssistant {
			out[i].Reasoning = ""
		}
	}
	return out
}

// Report summarizes what Normalize changed.
type Report struct {
	Dropped   int
	Collapsed int
}

// Normalize runs the full hygiene pipeline in the required order: strip
// reasoning, clean, collapse. Running the pipeline on its own output
// changes nothing.
func Normalize(msgs []types.Message) ([]types.Message, Report) {
	stripped := StripReasoning(msgs)
	cleaned, dropped := ValidateAndClean(stripped)
	collapsed, n := CollapseConsecutiveSameRole(cleaned)
	return collapsed, Report{Dropped: dropped, Collapsed: n}
}
