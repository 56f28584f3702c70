package common

import (
	"context"

	"github.com/gcstr/cardtrack/internal/logger"
	"github.com/gcstr/cardtrack/internal/tracker"
)

// Source is the read side of the card office API.
type Source interface {
	Status(ctx context.Context, registerNumber string) (tracker.StatusSnapshot, error)
	RejectedCard(ctx context.Context, registerNumber string) (*tracker.RejectedCard, error)
}

// Sync fetches both snapshots for st's identity and reduces them into st.
// A failed status fetch resets st to the baseline, like an unsuccessful
// snapshot; a failed rejected fetch leaves the rejected state untouched.
// Both errors are returned so callers can decide whether to surface them.
func Sync(ctx context.Context, src Source, st *tracker.State) (statusErr, rejectedErr error) {
	if !st.HasIdentity() {
		return nil, nil
	}
	session := st.Session
	snap, statusErr := src.Status(ctx, st.Identity)
	if statusErr != nil {
		st.ApplyStatusError(session)
	} else {
		st.ApplyStatus(session, snap)
	}
	card, rejectedErr := src.RejectedCard(ctx, st.Identity)
	if rejectedErr != nil {
		logger.FromContext(ctx).Warn("rejected_fetch_failed", "register_number", st.Identity, "error", rejectedErr)
	} else {
		st.ApplyRejected(session, card)
	}
	return statusErr, rejectedErr
}
