package entities

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// MinPurchaseAmount and MaxPurchaseAmount bound the combinations bought per ticket
	MinPurchaseAmount = 1
	MaxPurchaseAmount = 5

	// DefaultPurchaseAmount is used when no valid amount is configured
	DefaultPurchaseAmount = 5

	// CombinationSize is the count of numbers in one Lotto 6/45 line
	CombinationSize = 6

	MinNumber = 1
	MaxNumber = 45

	// DateLayout is the civil date format used in ticket titles and bodies
	DateLayout = "2006-01-02"
)

// TicketStatus is the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusAwaiting TicketStatus = "awaiting"
	TicketStatusChecked  TicketStatus = "checked"
)

// Combination is one line of six lotto numbers
type Combination []int

// Validate checks the combination holds six distinct numbers within range
func (c Combination) Validate() error {
	if len(c) != CombinationSize {
		return fmt.Errorf("combination must have %d numbers, got %d", CombinationSize, len(c))
	}
	seen := make(map[int]bool, len(c))
	for _, n := range c {
		if n < MinNumber || n > MaxNumber {
			return fmt.Errorf("number %d out of range %d-%d", n, MinNumber, MaxNumber)
		}
		if seen[n] {
			return fmt.Errorf("duplicate number %d", n)
		}
		seen[n] = true
	}
	return nil
}

// Sorted returns an ascending copy of the combination
func (c Combination) Sorted() Combination {
	out := make(Combination, len(c))
	copy(out, c)
	sort.Ints(out)
	return out
}

// String formats the combination as zero padded numbers, e.g. "01 07 13 22 38 45"
func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, n := range c {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, " ")
}

// Ticket is one purchase batch persisted in the ticket store
type Ticket struct {
	ID          int64
	CreatedDate string
	Round       int
	Numbers     []Combination
	Link        string
	Status      TicketStatus
	RankLabels  []string
}

// IsAwaiting returns true if the ticket has not been checked yet
func (t *Ticket) IsAwaiting() bool {
	return t.Status == TicketStatusAwaiting
}

// MarkChecked moves the ticket to Checked with the given rank labels.
// Returns an error if the ticket was already checked.
func (t *Ticket) MarkChecked(labels []string) error {
	if t.Status == TicketStatusChecked {
		return fmt.Errorf("ticket %d is already checked", t.ID)
	}
	t.Status = TicketStatusChecked
	t.RankLabels = labels
	return nil
}

// ClampAmount parses a configured purchase amount and clamps it to [1, 5].
// Absent or non-numeric input yields the default of 5.
func ClampAmount(raw string) int {
	amount, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPurchaseAmount
	}
	return ClampToRange(amount)
}

// ClampToRange clamps an already parsed amount to [1, 5]
func ClampToRange(amount int) int {
	if amount < MinPurchaseAmount {
		return MinPurchaseAmount
	}
	if amount > MaxPurchaseAmount {
		return MaxPurchaseAmount
	}
	return amount
}
