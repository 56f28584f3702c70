// Package tracker holds the dashboard view-model: the state derived from the
// card office's status and rejected-card snapshots plus the optimistic local
// updates made between them. It performs no I/O. Callers run the network calls
// and feed results back, tagged with the session they were issued under.
package tracker

import "github.com/gcstr/cardtrack/internal/apperr"

const (
	// DefaultButtonText is the submit label shown when no request exists.
	DefaultButtonText = "Submit Request"

	ackReadyFallback    = "Could not confirm pickup. Please try again."
	ackRejectedFallback = "Could not acknowledge the rejection. Please try again."
)

// PopupKind tags the blocking popup currently shown.
type PopupKind int

const (
	PopupNone PopupKind = iota
	PopupRejected
	PopupReady
)

// Popup is the single blocking popup. Card is set only for PopupRejected.
type Popup struct {
	Kind PopupKind
	Card *RejectedCard
}

// Open reports whether a popup is gating the form.
func (p Popup) Open() bool { return p.Kind != PopupNone }

// InFlight holds the per-popup transfer locks.
type InFlight struct {
	Accepted bool
	Rejected bool
}

// State is the view-model for one screen. The zero value has no identity and
// is not usable; build it with New.
type State struct {
	Identity string
	// Session increments on every identity change. Results carrying an older
	// session belong to a superseded student and are ignored.
	Session uint64

	Step           Step
	PrintingActive bool
	ReadyForPickup bool
	FormEnabled    bool
	ButtonText     string

	Popup        Popup
	RejectedCard *RejectedCard
	InFlight     InFlight
	// Notice is the last user-visible failure message; cleared on the next attempt.
	Notice string

	// readyQueued records a ready transition that arrived while the rejected
	// popup was showing; it is shown once that popup is acknowledged.
	readyQueued bool
	// submitToken invalidates pending optimistic advances.
	submitToken uint64
}

// New returns the baseline state for identity. An empty identity is allowed:
// every network-facing operation is then a no-op.
func New(identity string) State {
	s := State{Identity: identity, Session: 1}
	s.resetBaseline()
	return s
}

func (s *State) resetBaseline() {
	s.Step = StepNoRequest
	s.PrintingActive = false
	s.ReadyForPickup = false
	s.FormEnabled = true
	s.ButtonText = DefaultButtonText
}

// HasIdentity reports whether fetches and transfers may run.
func (s State) HasIdentity() bool { return s.Identity != "" }

// Current reports whether a result tagged with session still applies.
func (s State) Current(session uint64) bool { return session == s.Session }

// SetIdentity switches to another student. All derived state, popups, locks
// and pending optimistic advances are discarded. It returns false when the
// identity did not change.
func (s *State) SetIdentity(identity string) bool {
	if identity == s.Identity {
		return false
	}
	s.Identity = identity
	s.Session++
	s.submitToken++
	s.resetBaseline()
	s.Popup = Popup{}
	s.RejectedCard = nil
	s.InFlight = InFlight{}
	s.Notice = ""
	s.readyQueued = false
	return true
}

// ApplyStatus reduces a status snapshot into the state. Any newer snapshot
// supersedes a pending optimistic advance. A ready popup is closed once the
// server no longer reports ready and no pickup confirmation is in flight,
// which happens when pickup was confirmed elsewhere. It returns false for
// stale results.
func (s *State) ApplyStatus(session uint64, snap StatusSnapshot) bool {
	if !s.applyStatus(session, snap) {
		return false
	}
	if !s.ReadyForPickup && s.Popup.Kind == PopupReady && !s.InFlight.Accepted {
		s.Popup = Popup{}
	}
	return true
}

// ApplyStatusError handles a failed status fetch the same way as a
// success=false snapshot, except that an open ready popup stays up: the
// failure says nothing about the card.
func (s *State) ApplyStatusError(session uint64) bool {
	return s.applyStatus(session, StatusSnapshot{Success: false})
}

func (s *State) applyStatus(session uint64, snap StatusSnapshot) bool {
	if !s.Current(session) {
		return false
	}
	s.submitToken++
	if !snap.Success {
		s.resetBaseline()
		s.readyQueued = false
		return true
	}
	wasReady := s.ReadyForPickup
	s.Step = StepFor(snap.Status)
	s.FormEnabled = snap.FormEnabled
	s.ButtonText = snap.ButtonText
	if s.ButtonText == "" {
		s.ButtonText = DefaultButtonText
	}
	s.PrintingActive = snap.Flags.IsPrinting
	s.ReadyForPickup = snap.Flags.IsReadyForPickup || snap.Status == StatusReadyPickup
	switch {
	case s.ReadyForPickup && !wasReady:
		s.openReady()
	case !s.ReadyForPickup:
		s.readyQueued = false
	}
	return true
}

// ApplyRejected stores a rejected card and opens its popup, overriding a
// ready popup (which is queued, not lost). A nil card closes a rejected popup
// that has no transfer in flight, since the card was acknowledged elsewhere;
// otherwise it leaves the state alone. It reports whether the state changed.
func (s *State) ApplyRejected(session uint64, card *RejectedCard) bool {
	if !s.Current(session) {
		return false
	}
	if card == nil {
		if s.Popup.Kind != PopupRejected || s.InFlight.Rejected {
			return false
		}
		s.closeRejected()
		return true
	}
	s.RejectedCard = card
	if s.Popup.Kind == PopupReady {
		s.readyQueued = true
	}
	s.Popup = Popup{Kind: PopupRejected, Card: card}
	return true
}

func (s *State) openReady() {
	if s.Popup.Kind == PopupRejected {
		s.readyQueued = true
		return
	}
	s.Popup = Popup{Kind: PopupReady}
}

// Submit records an optimistic submission: step 1 now, step 2 once the
// returned token is passed to AdvanceSubmitted. ok is false when printing is
// already active or no identity is set.
func (s *State) Submit() (token uint64, ok bool) {
	if s.PrintingActive || !s.HasIdentity() {
		return 0, false
	}
	s.submitToken++
	s.Step = StepSubmitted
	s.Notice = ""
	return s.submitToken, true
}

// AdvanceSubmitted moves the optimistic submission to under-review unless a
// newer snapshot, identity change or later submit superseded it, or printing
// started meanwhile.
func (s *State) AdvanceSubmitted(session, token uint64) bool {
	if !s.Current(session) || token != s.submitToken || s.PrintingActive {
		return false
	}
	if s.Step != StepSubmitted {
		return false
	}
	s.Step = StepUnderReview
	return true
}

// BeginAckReady takes the accepted-transfer lock. It returns false without
// side effects when there is no identity, no ready popup, or a transfer is
// already in flight.
func (s *State) BeginAckReady() bool {
	if !s.HasIdentity() || s.InFlight.Accepted || s.Popup.Kind != PopupReady {
		return false
	}
	s.InFlight.Accepted = true
	s.Notice = ""
	return true
}

// FinishAckReady releases the lock and applies the transfer outcome. It
// returns true when the caller should refresh the status.
func (s *State) FinishAckReady(session uint64, err error) bool {
	if !s.Current(session) {
		return false
	}
	s.InFlight.Accepted = false
	if err != nil {
		s.Notice = apperr.UserMessage(err, ackReadyFallback)
		return false
	}
	if s.Popup.Kind == PopupReady {
		s.Popup = Popup{}
	}
	s.FormEnabled = true
	return true
}

// BeginAckRejected takes the rejected-transfer lock.
func (s *State) BeginAckRejected() bool {
	if !s.HasIdentity() || s.InFlight.Rejected || s.Popup.Kind != PopupRejected {
		return false
	}
	s.InFlight.Rejected = true
	s.Notice = ""
	return true
}

// FinishAckRejected releases the lock and applies the transfer outcome. On
// success the rejected card is cleared and a queued ready popup is shown.
func (s *State) FinishAckRejected(session uint64, err error) bool {
	if !s.Current(session) {
		return false
	}
	s.InFlight.Rejected = false
	if err != nil {
		s.Notice = apperr.UserMessage(err, ackRejectedFallback)
		return false
	}
	s.closeRejected()
	return true
}

// closeRejected drops the rejected card and shows a queued ready popup.
func (s *State) closeRejected() {
	s.RejectedCard = nil
	s.Popup = Popup{}
	if s.readyQueued {
		s.readyQueued = false
		s.Popup = Popup{Kind: PopupReady}
	}
}
