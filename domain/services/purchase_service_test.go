package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rich-automation/lotto-action/domain/entities"
	"github.com/rich-automation/lotto-action/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := NewCalendar("Asia/Seoul")
	require.NoError(t, err)
	cal.Clock = func() time.Time { return time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC) }
	return cal
}

func fixedRound(round int) func(time.Time) int {
	return func(time.Time) int { return round }
}

func TestPurchaseService_Success(t *testing.T) {
	t.Parallel()

	repo := new(testhelpers.MockTicketRepository)
	codec := new(testhelpers.MockTicketBodyCodec)
	session := new(testhelpers.MockAutomationSession)
	numbers := []entities.Combination{comboA, comboB}

	session.On("Purchase", mock.Anything, 2).Return(numbers, nil)
	session.On("CheckingLink", 1085, numbers).Return("https://example.test/qr", nil)
	codec.On("Encode", &entities.TicketBody{
		Date:    "2026-10-17",
		Round:   1085,
		Numbers: numbers,
		Link:    "https://example.test/qr",
	}).Return("encoded", nil)
	repo.On("CreateTicket", mock.Anything, "2026-10-17", "encoded").Return(nil).Once()

	service := NewPurchaseService(repo, codec, session, fixedRound(1084), fixedCalendar(t))
	ticket, err := service.Purchase(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 1085, ticket.Round)
	assert.Equal(t, "2026-10-17", ticket.CreatedDate)
	assert.Equal(t, entities.TicketStatusAwaiting, ticket.Status)
	repo.AssertExpectations(t)
	session.AssertNotCalled(t, "Release")
}

func TestPurchaseService_ClampsAmount(t *testing.T) {
	t.Parallel()

	repo := new(testhelpers.MockTicketRepository)
	codec := new(testhelpers.MockTicketBodyCodec)
	session := new(testhelpers.MockAutomationSession)
	numbers := []entities.Combination{comboA, comboB, comboC, comboA, comboB}

	session.On("Purchase", mock.Anything, 5).Return(numbers, nil)
	session.On("CheckingLink", 1085, numbers).Return("link", nil)
	codec.On("Encode", mock.Anything).Return("encoded", nil)
	repo.On("CreateTicket", mock.Anything, mock.Anything, "encoded").Return(nil)

	service := NewPurchaseService(repo, codec, session, fixedRound(1084), fixedCalendar(t))
	_, err := service.Purchase(context.Background(), 9)

	require.NoError(t, err)
	session.AssertCalled(t, "Purchase", mock.Anything, 5)
}

func TestPurchaseService_FailuresReleaseSessionAndCreateNothing(t *testing.T) {
	t.Parallel()

	numbers := []entities.Combination{comboA}

	tests := []struct {
		name      string
		setup     func(*testhelpers.MockTicketRepository, *testhelpers.MockTicketBodyCodec, *testhelpers.MockAutomationSession)
		wantStage string
		created   bool
	}{
		{
			name: "purchase call fails",
			setup: func(repo *testhelpers.MockTicketRepository, codec *testhelpers.MockTicketBodyCodec, session *testhelpers.MockAutomationSession) {
				session.On("Purchase", mock.Anything, 1).Return(nil, errors.New("insufficient deposit"))
			},
			wantStage: StagePurchase,
		},
		{
			name: "purchase returns wrong count",
			setup: func(repo *testhelpers.MockTicketRepository, codec *testhelpers.MockTicketBodyCodec, session *testhelpers.MockAutomationSession) {
				session.On("Purchase", mock.Anything, 1).Return([]entities.Combination{}, nil)
			},
			wantStage: StagePurchase,
		},
		{
			name: "link computation fails",
			setup: func(repo *testhelpers.MockTicketRepository, codec *testhelpers.MockTicketBodyCodec, session *testhelpers.MockAutomationSession) {
				session.On("Purchase", mock.Anything, 1).Return(numbers, nil)
				session.On("CheckingLink", 1085, numbers).Return("", errors.New("bad round"))
			},
			wantStage: StageLink,
		},
		{
			name: "encode fails",
			setup: func(repo *testhelpers.MockTicketRepository, codec *testhelpers.MockTicketBodyCodec, session *testhelpers.MockAutomationSession) {
				session.On("Purchase", mock.Anything, 1).Return(numbers, nil)
				session.On("CheckingLink", 1085, numbers).Return("link", nil)
				codec.On("Encode", mock.Anything).Return("", errors.New("encode"))
			},
			wantStage: StageEncode,
		},
		{
			name: "store create fails",
			setup: func(repo *testhelpers.MockTicketRepository, codec *testhelpers.MockTicketBodyCodec, session *testhelpers.MockAutomationSession) {
				session.On("Purchase", mock.Anything, 1).Return(numbers, nil)
				session.On("CheckingLink", 1085, numbers).Return("link", nil)
				codec.On("Encode", mock.Anything).Return("encoded", nil)
				repo.On("CreateTicket", mock.Anything, mock.Anything, "encoded").Return(errors.New("rate limited"))
			},
			wantStage: StageCreate,
			created:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(testhelpers.MockTicketRepository)
			codec := new(testhelpers.MockTicketBodyCodec)
			session := new(testhelpers.MockAutomationSession)
			session.On("Release").Return(nil)
			tt.setup(repo, codec, session)

			service := NewPurchaseService(repo, codec, session, fixedRound(1084), fixedCalendar(t))
			ticket, err := service.Purchase(context.Background(), 1)

			assert.Nil(t, ticket)
			var purchaseErr *PurchaseError
			require.ErrorAs(t, err, &purchaseErr)
			assert.Equal(t, tt.wantStage, purchaseErr.Stage)
			session.AssertNumberOfCalls(t, "Release", 1)
			if !tt.created {
				repo.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPurchaseService_ReleaseErrorKeepsPurchaseError(t *testing.T) {
	t.Parallel()

	repo := new(testhelpers.MockTicketRepository)
	session := new(testhelpers.MockAutomationSession)
	session.On("Purchase", mock.Anything, 3).Return(nil, errors.New("site maintenance"))
	session.On("Release").Return(errors.New("browser already gone"))

	service := NewPurchaseService(repo, new(testhelpers.MockTicketBodyCodec), session, fixedRound(1084), fixedCalendar(t))
	_, err := service.Purchase(context.Background(), 3)

	assert.ErrorContains(t, err, "site maintenance")
	session.AssertNumberOfCalls(t, "Release", 1)
}
