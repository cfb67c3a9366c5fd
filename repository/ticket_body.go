package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rich-automation/lotto-action/domain/entities"
)

const ticketMarker = "lotto-action:ticket"

// ErrMalformedTicketBody is returned when a body carries no readable ticket marker
var ErrMalformedTicketBody = errors.New("malformed ticket body")

var markerPattern = regexp.MustCompile(`(?s)<!--\s*` + regexp.QuoteMeta(ticketMarker) + `\s+(\{.*?\})\s*-->`)

// slotNames label the lines of a ticket the way a paper slip does
var slotNames = []string{"A", "B", "C", "D", "E"}

// TicketBodyCodec renders ticket bodies as markdown with an embedded JSON marker
type TicketBodyCodec struct{}

// NewTicketBodyCodec creates a new ticket body codec
func NewTicketBodyCodec() *TicketBodyCodec {
	return &TicketBodyCodec{}
}

// Encode renders the body for humans and appends the machine readable marker
func (c *TicketBodyCodec) Encode(body *entities.TicketBody) (string, error) {
	if body == nil {
		return "", errors.New("ticket body is nil")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal ticket body: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Round %d\n\n", body.Round)
	fmt.Fprintf(&b, "- Purchased: %s\n", body.Date)
	fmt.Fprintf(&b, "- Lines: %d\n\n", len(body.Numbers))
	b.WriteString("| Slot | Numbers |\n|---|---|\n")
	for i, combination := range body.Numbers {
		fmt.Fprintf(&b, "| %s | %s |\n", slotName(i), combination)
	}
	if body.Link != "" {
		fmt.Fprintf(&b, "\n[Check the result](%s)\n", body.Link)
	}
	fmt.Fprintf(&b, "\n<!-- %s %s -->\n", ticketMarker, payload)

	return b.String(), nil
}

// Decode reads the marker back. The markdown part is ignored.
func (c *TicketBodyCodec) Decode(text string) (*entities.TicketBody, error) {
	match := markerPattern.FindStringSubmatch(text)
	if match == nil {
		return nil, fmt.Errorf("%w: marker not found", ErrMalformedTicketBody)
	}

	var body entities.TicketBody
	if err := json.Unmarshal([]byte(match[1]), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTicketBody, err)
	}
	if body.Round <= 0 {
		return nil, fmt.Errorf("%w: invalid round %d", ErrMalformedTicketBody, body.Round)
	}
	for _, combination := range body.Numbers {
		if err := combination.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTicketBody, err)
		}
	}

	return &body, nil
}

func slotName(i int) string {
	if i < len(slotNames) {
		return slotNames[i]
	}
	return fmt.Sprintf("%d", i+1)
}
