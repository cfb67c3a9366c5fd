package interfaces

import (
	"context"

	"github.com/rich-automation/lotto-action/domain/entities"
)

// TicketRepository defines the interface for the ticket store
type TicketRepository interface {
	// ListAwaitingTickets returns every ticket still waiting for its result, in no particular order
	ListAwaitingTickets(ctx context.Context) ([]*entities.TicketRecord, error)

	// CreateTicket records a new awaiting ticket purchased on the given date
	CreateTicket(ctx context.Context, date string, body string) error

	// MarkChecked moves a ticket to checked and attaches the rank labels.
	// Replaces the ticket's label set so repeating the call does not duplicate labels.
	MarkChecked(ctx context.Context, ticketID int64, labels []string) error

	// EnsureLabelTaxonomy creates any missing status and rank labels
	EnsureLabelTaxonomy(ctx context.Context) error
}

// TicketBodyCodec converts between ticket bodies and store text
type TicketBodyCodec interface {
	Encode(body *entities.TicketBody) (string, error)
	Decode(text string) (*entities.TicketBody, error)
}
