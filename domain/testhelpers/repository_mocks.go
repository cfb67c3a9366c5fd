package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rich-automation/lotto-action/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) ListAwaitingTickets(ctx context.Context) ([]*entities.TicketRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TicketRecord), args.Error(1)
}

func (m *MockTicketRepository) CreateTicket(ctx context.Context, date string, body string) error {
	args := m.Called(ctx, date, body)
	return args.Error(0)
}

func (m *MockTicketRepository) MarkChecked(ctx context.Context, ticketID int64, labels []string) error {
	args := m.Called(ctx, ticketID, labels)
	return args.Error(0)
}

func (m *MockTicketRepository) EnsureLabelTaxonomy(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTicketBodyCodec is a mock implementation of TicketBodyCodec
type MockTicketBodyCodec struct {
	mock.Mock
}

func (m *MockTicketBodyCodec) Encode(body *entities.TicketBody) (string, error) {
	args := m.Called(body)
	return args.String(0), args.Error(1)
}

func (m *MockTicketBodyCodec) Decode(text string) (*entities.TicketBody, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TicketBody), args.Error(1)
}

// InMemoryTicketRepository is a TicketRepository backed by a map, for tests
// that need state to persist between calls
type InMemoryTicketRepository struct {
	mu          sync.Mutex
	nextID      int64
	records     map[int64]*entities.TicketRecord
	MarkCalls   map[int64]int
	CreateCalls int
	LabelsReady bool
}

// NewInMemoryTicketRepository creates an empty in-memory store
func NewInMemoryTicketRepository() *InMemoryTicketRepository {
	return &InMemoryTicketRepository{
		nextID:    1,
		records:   make(map[int64]*entities.TicketRecord),
		MarkCalls: make(map[int64]int),
	}
}

// Add stores an awaiting record with the given body and returns its id
func (r *InMemoryTicketRepository) Add(body string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.records[id] = &entities.TicketRecord{ID: id, Body: body, Labels: []string{entities.LabelAwaiting}}
	return id
}

// Get returns a copy of the stored record
func (r *InMemoryTicketRepository) Get(id int64) *entities.TicketRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil
	}
	clone := *record
	clone.Labels = append([]string(nil), record.Labels...)
	return &clone
}

func (r *InMemoryTicketRepository) ListAwaitingTickets(ctx context.Context) ([]*entities.TicketRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TicketRecord
	for _, record := range r.records {
		if record.HasLabel(entities.LabelAwaiting) {
			clone := *record
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryTicketRepository) CreateTicket(ctx context.Context, date string, body string) error {
	r.mu.Lock()
	r.CreateCalls++
	r.mu.Unlock()
	r.Add(body)
	return nil
}

func (r *InMemoryTicketRepository) MarkChecked(ctx context.Context, ticketID int64, labels []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[ticketID]
	if !ok {
		return fmt.Errorf("ticket %d not found", ticketID)
	}
	r.MarkCalls[ticketID]++
	record.Labels = append([]string{entities.LabelChecked}, labels...)
	return nil
}

func (r *InMemoryTicketRepository) EnsureLabelTaxonomy(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LabelsReady = true
	return nil
}
