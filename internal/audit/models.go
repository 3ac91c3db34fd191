package audit

import "time"

// Actions recorded on the audit trail.
const (
	ActionDonorRegistered   = "donor.registered"
	ActionRequestCreated    = "request.created"
	ActionRequestCancelled  = "request.cancelled"
	ActionRequestFulfilled  = "request.fulfilled"
	ActionRequestExpired    = "request.expired"
	ActionDonationConfirmed = "donation.confirmed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	ActorID   string
	ActorType string
	Action    string
	Subject   string
	Detail    string
}
