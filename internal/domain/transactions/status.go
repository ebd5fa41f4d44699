package transactions

import "strings"

// Status is the primary state of a transaction. It is an open set: the legal
// values are whatever the action catalog mentions, so unknown values are kept
// as-is and simply match no non-wildcard definition.
type Status string

const (
	StatusInProgress        Status = "En cours"
	StatusListed            Status = "Propriété listée"
	StatusOfferSubmitted    Status = "Offre soumise"
	StatusOfferAccepted     Status = "Offre acceptée"
	StatusInspectionDone    Status = "Inspection complétée"
	StatusFinancingApproved Status = "Financement approuvé"
	StatusDeedSigned        Status = "Acte signé"
	StatusClosed            Status = "Conclue"
	StatusCancelled         Status = "Annulée"

	// AnyStatus is the wildcard from_status used by cancellation-style actions.
	AnyStatus Status = "*"
)

// DefaultStatus is the status of a transaction no action has been applied to.
const DefaultStatus = StatusInProgress

func (s Status) String() string { return string(s) }

func (s Status) IsWildcard() bool { return strings.TrimSpace(string(s)) == string(AnyStatus) }

// Allows reports whether an action whose from_status is s applies to a
// transaction currently in current.
func (s Status) Allows(current Status) bool {
	if s.IsWildcard() {
		return true
	}
	return string(s) == string(current)
}
