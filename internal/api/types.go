package api

import (
	"strings"
	"time"

	"github.com/gcstr/cardtrack/internal/tracker"
)

// TransferResult is the body of both transfer-to-history endpoints.
type TransferResult struct {
	Success          bool
	Message          string
	TransferredCount int
}

type statusResponse struct {
	Success     bool   `json:"success"`
	Status      string `json:"status"`
	FormEnabled bool   `json:"formEnabled"`
	ButtonText  string `json:"buttonText"`
	Message     string `json:"message"`
	Details     struct {
		IsPrinting       bool `json:"isPrinting"`
		IsReadyForPickup bool `json:"isReadyForPickup"`
		IsRejected       bool `json:"isRejected"`
	} `json:"details"`
}

func (r statusResponse) snapshot() tracker.StatusSnapshot {
	return tracker.StatusSnapshot{
		Success:     r.Success,
		Status:      tracker.Status(strings.TrimSpace(r.Status)),
		FormEnabled: r.FormEnabled,
		ButtonText:  r.ButtonText,
		Message:     r.Message,
		Flags: tracker.Flags{
			IsPrinting:       r.Details.IsPrinting,
			IsReadyForPickup: r.Details.IsReadyForPickup,
			IsRejected:       r.Details.IsRejected,
		},
	}
}

type rejectedResponse struct {
	Found        bool          `json:"found"`
	RejectedCard *rejectedCard `json:"rejectedCard"`
}

type rejectedCard struct {
	RegisterNumber  string `json:"registerNumber"`
	Name            string `json:"name"`
	RejectionReason string `json:"rejectionReason"`
	CreatedAt       string `json:"createdAt"`
}

func (r rejectedResponse) card() *tracker.RejectedCard {
	if !r.Found || r.RejectedCard == nil {
		return nil
	}
	c := &tracker.RejectedCard{
		RegisterNumber:  r.RejectedCard.RegisterNumber,
		Name:            r.RejectedCard.Name,
		RejectionReason: r.RejectedCard.RejectionReason,
	}
	// Unparseable timestamps are dropped rather than failing the whole fetch.
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(r.RejectedCard.CreatedAt)); err == nil {
		c.CreatedAt = t
	}
	return c
}

type transferResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	TransferredCount int    `json:"transferredCount"`
}
