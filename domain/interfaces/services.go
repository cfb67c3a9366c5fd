package interfaces

import (
	"context"
	"time"

	"github.com/rich-automation/lotto-action/domain/entities"
)

// AutomationSession is a single stateful session against the lottery site.
// It is constructed once per run and shared by the checker and the purchaser,
// which must never use it at the same time.
type AutomationSession interface {
	// SignIn authenticates the session
	SignIn(ctx context.Context, id, secret string) error

	// Check returns the rank the combination achieved in the given round
	Check(ctx context.Context, combination entities.Combination, round int) (entities.Rank, error)

	// Purchase buys amount combinations. Returns exactly amount entries or an error.
	Purchase(ctx context.Context, amount int) ([]entities.Combination, error)

	// CheckingLink builds the verification URL for a purchased batch
	CheckingLink(round int, numbers []entities.Combination) (string, error)

	// Release frees the browser and any other held resources. Safe to call more than once.
	Release() error
}

// RoundFunc reports the latest drawn round at the given instant
type RoundFunc func(now time.Time) int

// FailureReporter marks the invoking workflow run as failed without affecting the exit code
type FailureReporter interface {
	SetFailed(message string)
	WriteSummary(markdown string) error
}

// ResultChecker verifies every awaiting ticket
type ResultChecker interface {
	CheckAll(ctx context.Context) (*CheckSummary, error)
}

// PurchaseService buys and records a new ticket
type PurchaseService interface {
	Purchase(ctx context.Context, amount int) (*entities.Ticket, error)
}

// TicketOutcome is the result of one ticket's check pipeline
type TicketOutcome struct {
	TicketID int64
	Round    int
	Ranks    []entities.Rank
	Labels   []string
	Pending  bool
	Skipped  bool
	Err      error
}

// CheckSummary aggregates the outcomes of a CheckAll call
type CheckSummary struct {
	Total    int
	Checked  int
	Pending  int
	Skipped  int
	Failed   int
	Outcomes []TicketOutcome
}
