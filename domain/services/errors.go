package services

import "fmt"

// BootstrapError is a failure to prepare the session or the ticket store.
// Nothing is checked or purchased after it.
type BootstrapError struct {
	Stage string
	Err   error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap failed during %s: %v", e.Stage, e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// Check pipeline stages
const (
	StageDecode = "decode"
	StageCheck  = "check"
	StageUpdate = "update"
)

// CheckError is a failure confined to one ticket's check pipeline
type CheckError struct {
	TicketID int64
	Stage    string
	Err      error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("ticket %d failed during %s: %v", e.TicketID, e.Stage, e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// Purchase stages
const (
	StagePurchase = "purchase"
	StageLink     = "link"
	StageEncode   = "encode"
	StageCreate   = "create"
)

// PurchaseError is a failure anywhere between buying and recording a ticket
type PurchaseError struct {
	Stage string
	Err   error
}

func (e *PurchaseError) Error() string {
	return fmt.Sprintf("purchase failed during %s: %v", e.Stage, e.Err)
}

func (e *PurchaseError) Unwrap() error {
	return e.Err
}
