package entities

import "time"

// TicketRecord is a ticket as held by the ticket store, before its body is decoded
type TicketRecord struct {
	ID        int64
	Title     string
	Body      string
	Labels    []string
	CreatedAt time.Time
}

// HasLabel reports whether the record carries the given label
func (r *TicketRecord) HasLabel(name string) bool {
	for _, label := range r.Labels {
		if label == name {
			return true
		}
	}
	return false
}

// Status derives the lifecycle state from the record's labels
func (r *TicketRecord) Status() TicketStatus {
	if r.HasLabel(LabelChecked) {
		return TicketStatusChecked
	}
	return TicketStatusAwaiting
}

// TicketBody is the content encoded into a ticket record's body
type TicketBody struct {
	Date    string        `json:"date"`
	Round   int           `json:"round"`
	Numbers []Combination `json:"numbers"`
	Link    string        `json:"link"`
}

// ToTicket combines a decoded body with its record into a Ticket
func (b *TicketBody) ToTicket(record *TicketRecord) *Ticket {
	return &Ticket{
		ID:          record.ID,
		CreatedDate: b.Date,
		Round:       b.Round,
		Numbers:     b.Numbers,
		Link:        b.Link,
		Status:      record.Status(),
	}
}
