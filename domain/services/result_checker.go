package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rich-automation/lotto-action/domain/entities"
	"github.com/rich-automation/lotto-action/domain/interfaces"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// resultChecker moves awaiting tickets to checked once their round is drawn
type resultChecker struct {
	ticketRepo interfaces.TicketRepository
	codec      interfaces.TicketBodyCodec
	session    interfaces.AutomationSession
}

// NewResultChecker creates a new result checker
func NewResultChecker(
	ticketRepo interfaces.TicketRepository,
	codec interfaces.TicketBodyCodec,
	session interfaces.AutomationSession,
) interfaces.ResultChecker {
	return &resultChecker{
		ticketRepo: ticketRepo,
		codec:      codec,
		session:    session,
	}
}

// CheckAll checks every awaiting ticket concurrently. Per-ticket failures are
// counted in the summary and never returned; only a failure to list tickets is.
func (s *resultChecker) CheckAll(ctx context.Context) (*interfaces.CheckSummary, error) {
	records, err := s.ticketRepo.ListAwaitingTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list awaiting tickets: %w", err)
	}

	summary := &interfaces.CheckSummary{Total: len(records)}
	if len(records) == 0 {
		log.Info("No awaiting tickets to check")
		return summary, nil
	}

	log.Infof("Checking %d awaiting tickets", len(records))

	// Every pipeline reports into its own slot and returns nil, so one
	// failing ticket never cancels or hides the others.
	outcomes := make([]interfaces.TicketOutcome, len(records))
	var group errgroup.Group
	for i, record := range records {
		group.Go(func() error {
			outcomes[i] = s.runPipeline(ctx, record)
			return nil
		})
	}
	_ = group.Wait()

	for _, outcome := range outcomes {
		switch {
		case outcome.Err != nil:
			summary.Failed++
			log.WithFields(log.Fields{
				"ticket_id": outcome.TicketID,
				"round":     outcome.Round,
			}).Errorf("Failed to check ticket: %v", outcome.Err)
		case outcome.Pending:
			summary.Pending++
		case outcome.Skipped:
			summary.Skipped++
		default:
			summary.Checked++
		}
	}
	summary.Outcomes = outcomes

	log.WithFields(log.Fields{
		"total_tickets": summary.Total,
		"checked":       summary.Checked,
		"pending":       summary.Pending,
		"skipped":       summary.Skipped,
		"failed":        summary.Failed,
	}).Info("Completed ticket checking")

	return summary, nil
}

// runPipeline guards checkTicket so a panic is reported as this ticket's failure
func (s *resultChecker) runPipeline(ctx context.Context, record *entities.TicketRecord) (outcome interfaces.TicketOutcome) {
	outcome.TicketID = record.ID
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = &CheckError{TicketID: record.ID, Stage: StageCheck, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return s.checkTicket(ctx, record)
}

// checkTicket decodes one ticket, checks all of its combinations and records the labels
func (s *resultChecker) checkTicket(ctx context.Context, record *entities.TicketRecord) interfaces.TicketOutcome {
	outcome := interfaces.TicketOutcome{TicketID: record.ID}

	body, err := s.codec.Decode(record.Body)
	if err != nil {
		outcome.Err = &CheckError{TicketID: record.ID, Stage: StageDecode, Err: err}
		return outcome
	}
	ticket := body.ToTicket(record)
	outcome.Round = ticket.Round

	if !ticket.IsAwaiting() {
		log.WithField("ticket_id", record.ID).Warn("Ticket is already checked, leaving it untouched")
		outcome.Skipped = true
		return outcome
	}
	if len(ticket.Numbers) == 0 {
		log.WithField("ticket_id", record.ID).Warn("Ticket has no numbers, leaving it untouched")
		outcome.Skipped = true
		return outcome
	}

	ranks, err := s.checkCombinations(ctx, ticket.Numbers, ticket.Round)
	if errors.Is(err, entities.ErrRoundNotDrawn) {
		log.WithFields(log.Fields{
			"ticket_id": record.ID,
			"round":     ticket.Round,
		}).Info("Round not drawn yet, ticket stays awaiting")
		outcome.Pending = true
		return outcome
	}
	if err != nil {
		outcome.Err = &CheckError{TicketID: record.ID, Stage: StageCheck, Err: err}
		return outcome
	}

	if err := ticket.MarkChecked(entities.RankLabels(ranks)); err != nil {
		outcome.Err = &CheckError{TicketID: record.ID, Stage: StageUpdate, Err: err}
		return outcome
	}
	if err := s.ticketRepo.MarkChecked(ctx, record.ID, ticket.RankLabels); err != nil {
		outcome.Err = &CheckError{TicketID: record.ID, Stage: StageUpdate, Err: err}
		return outcome
	}

	outcome.Ranks = ranks
	outcome.Labels = ticket.RankLabels
	log.WithFields(log.Fields{
		"ticket_id": record.ID,
		"round":     ticket.Round,
		"labels":    ticket.RankLabels,
	}).Info("Ticket checked")

	return outcome
}

// checkCombinations queries every combination concurrently and waits for all of them.
// The round counts as not drawn only when every failed combination says so.
func (s *resultChecker) checkCombinations(ctx context.Context, numbers []entities.Combination, round int) ([]entities.Rank, error) {
	ranks := make([]entities.Rank, len(numbers))
	errs := make([]error, len(numbers))

	var group errgroup.Group
	for i, combination := range numbers {
		group.Go(func() error {
			rank, err := s.session.Check(ctx, combination, round)
			if err != nil {
				errs[i] = fmt.Errorf("failed to check combination %s: %w", combination, err)
				return nil
			}
			ranks[i] = rank
			return nil
		})
	}
	_ = group.Wait()

	var failed []error
	notDrawn := false
	for _, err := range errs {
		switch {
		case err == nil:
		case errors.Is(err, entities.ErrRoundNotDrawn):
			notDrawn = true
		default:
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return nil, errors.Join(failed...)
	}
	if notDrawn {
		return nil, fmt.Errorf("round %d: %w", round, entities.ErrRoundNotDrawn)
	}
	return ranks, nil
}
