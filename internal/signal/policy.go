package signal

import "errors"

// ErrManualSignalWrite is returned for every manual write attempt on signals.
var ErrManualSignalWrite = errors.New("signals are generated by the engine and cannot be created, edited, or deleted manually")

// Actor identifies who is attempting an operation.
type Actor struct {
	ID   string
	Role string
}

// Known actor roles.
const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleSystem = "system"
)

// Policy guards signal rows against manual mutation. Signals exist only as
// engine output; no role, including admin, may write them by hand.
type Policy struct{}

// NewPolicy creates a signal write policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// CanCreate denies manual creation for every actor.
func (p *Policy) CanCreate(_ Actor) error {
	return ErrManualSignalWrite
}

// CanUpdate denies manual edits for every actor.
func (p *Policy) CanUpdate(_ Actor) error {
	return ErrManualSignalWrite
}

// CanDelete denies manual deletion for every actor.
func (p *Policy) CanDelete(_ Actor) error {
	return ErrManualSignalWrite
}
