package core

import "context"

// ContextStore persists the ordered turn history of conversations, keyed by
// conversation identity.
//
// Contract:
//   - Append writes all given turns as one atomic batch; either every turn
//     in the batch becomes visible or none does. The user/assistant pair of
//     a committed turn is always appended through a single call.
//   - List returns turns in append order. A limit <= 0 returns the full
//     history; otherwise the most recent limit turns are returned, still in
//     chronological order. The returned slice is the caller's to keep.
//   - Clear removes all turns for the conversation and is idempotent.
//
// A conversation springs into existence on its first Append; clearing an
// unknown conversation is not an error.
type ContextStore interface {
	Append(ctx context.Context, conversationID string, turns ...Turn) error
	List(ctx context.Context, conversationID string, limit int) ([]Turn, error)
	Clear(ctx context.Context, conversationID string) error
}
