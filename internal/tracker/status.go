package tracker

import "time"

// Status is the request status reported by the card office.
type Status string

const (
	StatusNone             Status = "none"
	StatusUnderReview      Status = "under-review"
	StatusApprovedPrinting Status = "approved-printing"
	StatusReadyPickup      Status = "ready-pickup"
	StatusRejected         Status = "rejected"
)

// Step is the ordinal shown by the progress tracker.
type Step int

const (
	StepNoRequest Step = iota
	StepSubmitted
	StepUnderReview
	StepPrinting
	StepReadyForPickup
)

// Steps lists every tracker step in display order.
var Steps = []Step{StepNoRequest, StepSubmitted, StepUnderReview, StepPrinting, StepReadyForPickup}

// StepFor maps a server status to its tracker step. The switch lists every
// Status by hand; a new status must be added here.
func StepFor(s Status) Step {
	switch s {
	case StatusUnderReview:
		return StepUnderReview
	case StatusApprovedPrinting:
		return StepPrinting
	case StatusReadyPickup:
		return StepReadyForPickup
	case StatusNone, StatusRejected:
		return StepNoRequest
	}
	return StepNoRequest
}

// Label is the short caption rendered under each tracker node.
func (s Step) Label() string {
	switch s {
	case StepNoRequest:
		return "Start"
	case StepSubmitted:
		return "Submitted"
	case StepUnderReview:
		return "Under review"
	case StepPrinting:
		return "Printing"
	case StepReadyForPickup:
		return "Ready for pickup"
	}
	return "Unknown"
}

// Flags mirrors the details block of a status response.
type Flags struct {
	IsPrinting       bool
	IsReadyForPickup bool
	IsRejected       bool
}

// StatusSnapshot is one status response. Success=false means the student has
// no open request.
type StatusSnapshot struct {
	Success     bool
	Status      Status
	FormEnabled bool
	ButtonText  string
	Flags       Flags
	Message     string
}

// RejectedCard describes a rejected reissue request awaiting acknowledgement.
type RejectedCard struct {
	RegisterNumber  string
	Name            string
	RejectionReason string
	CreatedAt       time.Time
}
