package services

import (
	"context"
	"fmt"

	"github.com/rich-automation/lotto-action/domain/entities"
	"github.com/rich-automation/lotto-action/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// purchaseService buys a batch of combinations and records it as an awaiting ticket
type purchaseService struct {
	ticketRepo   interfaces.TicketRepository
	codec        interfaces.TicketBodyCodec
	session      interfaces.AutomationSession
	currentRound interfaces.RoundFunc
	calendar     *Calendar
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	ticketRepo interfaces.TicketRepository,
	codec interfaces.TicketBodyCodec,
	session interfaces.AutomationSession,
	currentRound interfaces.RoundFunc,
	calendar *Calendar,
) interfaces.PurchaseService {
	return &purchaseService{
		ticketRepo:   ticketRepo,
		codec:        codec,
		session:      session,
		currentRound: currentRound,
		calendar:     calendar,
	}
}

// Purchase buys amount combinations and creates a ticket for the next round.
// On any failure the session is released and no ticket is created.
// The session is kept on success.
func (s *purchaseService) Purchase(ctx context.Context, amount int) (ticket *entities.Ticket, err error) {
	amount = entities.ClampToRange(amount)
	today := s.calendar.Today()

	defer func() {
		if err == nil {
			return
		}
		if releaseErr := s.session.Release(); releaseErr != nil {
			log.Warnf("Failed to release automation session after purchase failure: %v", releaseErr)
		}
	}()

	numbers, err := s.session.Purchase(ctx, amount)
	if err != nil {
		return nil, &PurchaseError{Stage: StagePurchase, Err: err}
	}
	if len(numbers) != amount {
		return nil, &PurchaseError{
			Stage: StagePurchase,
			Err:   fmt.Errorf("expected %d combinations, got %d", amount, len(numbers)),
		}
	}

	round := s.currentRound(s.calendar.Now()) + 1

	link, err := s.session.CheckingLink(round, numbers)
	if err != nil {
		return nil, &PurchaseError{Stage: StageLink, Err: err}
	}

	body := &entities.TicketBody{
		Date:    today,
		Round:   round,
		Numbers: numbers,
		Link:    link,
	}
	text, err := s.codec.Encode(body)
	if err != nil {
		return nil, &PurchaseError{Stage: StageEncode, Err: err}
	}

	if err := s.ticketRepo.CreateTicket(ctx, today, text); err != nil {
		return nil, &PurchaseError{Stage: StageCreate, Err: err}
	}

	log.WithFields(log.Fields{
		"date":         today,
		"round":        round,
		"combinations": len(numbers),
	}).Info("Purchased lotto ticket")

	return &entities.Ticket{
		CreatedDate: today,
		Round:       round,
		Numbers:     numbers,
		Link:        link,
		Status:      entities.TicketStatusAwaiting,
	}, nil
}
