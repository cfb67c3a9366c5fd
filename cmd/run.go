package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rich-automation/lotto-action/config"
	"github.com/rich-automation/lotto-action/domain/entities"
	"github.com/rich-automation/lotto-action/domain/interfaces"
	"github.com/rich-automation/lotto-action/domain/services"
	"github.com/rich-automation/lotto-action/events"
	"github.com/rich-automation/lotto-action/infrastructure/actions"
	"github.com/rich-automation/lotto-action/infrastructure/logging"
	"github.com/rich-automation/lotto-action/infrastructure/lotto"
	"github.com/rich-automation/lotto-action/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Dependencies are the collaborators a run is wired with
type Dependencies struct {
	Store        interfaces.TicketRepository
	Codec        interfaces.TicketBodyCodec
	NewSession   lotto.Factory
	CurrentRound interfaces.RoundFunc
	Calendar     *services.Calendar
	Reporter     interfaces.FailureReporter
	Events       *events.Bus

	// NewChecker and NewPurchaser build the services around the run's session.
	// Nil uses the domain services.
	NewChecker   func(session interfaces.AutomationSession) interfaces.ResultChecker
	NewPurchaser func(session interfaces.AutomationSession) interfaces.PurchaseService
}

func (d *Dependencies) checker(session interfaces.AutomationSession) interfaces.ResultChecker {
	if d.NewChecker != nil {
		return d.NewChecker(session)
	}
	return services.NewResultChecker(d.Store, d.Codec, session)
}

func (d *Dependencies) purchaser(session interfaces.AutomationSession) interfaces.PurchaseService {
	if d.NewPurchaser != nil {
		return d.NewPurchaser(session)
	}
	return services.NewPurchaseService(d.Store, d.Codec, session, d.CurrentRound, d.Calendar)
}

// RunResult describes what one run did
type RunResult struct {
	RunID  string
	Check  *interfaces.CheckSummary
	Ticket *entities.Ticket
	Err    error
}

// Run wires the production dependencies and executes one check-then-purchase cycle.
// Failures are reported to the workflow runner; the returned error is informational only.
func Run(ctx context.Context) error {
	reporter := actions.NewReporter()

	cfg, err := config.Get()
	if err != nil {
		logging.Setup(os.Stderr, "info", "text")
		err = fmt.Errorf("failed to load configuration: %w", err)
		log.Error(err)
		reporter.SetFailed(err.Error())
		return err
	}
	logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	calendar, err := services.NewCalendar(cfg.Timezone)
	if err != nil {
		log.Warnf("Invalid timezone %q, using %s: %v", cfg.Timezone, services.DefaultTimezone, err)
		calendar, err = services.NewCalendar(services.DefaultTimezone)
		if err != nil {
			reporter.SetFailed(err.Error())
			return err
		}
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	store, err := repository.NewGitHubTicketRepository(cfg.GitHubRepository, cfg.GitHubToken, httpClient)
	if err != nil {
		err = &services.BootstrapError{Stage: stageStore, Err: err}
		log.Error(err)
		reporter.SetFailed(err.Error())
		return err
	}

	bus := events.NewBus()
	subscribeNotices(bus, reporter)

	result := Execute(ctx, cfg, &Dependencies{
		Store:        store,
		Codec:        repository.NewTicketBodyCodec(),
		NewSession:   lotto.NewSession,
		CurrentRound: lotto.CurrentRound,
		Calendar:     calendar,
		Reporter:     reporter,
		Events:       bus,
	})
	return result.Err
}

// Execute runs bootstrap, the result check and the purchase in that order.
// It never panics; any failure ends up in RunResult.Err and is passed to the reporter.
func Execute(ctx context.Context, cfg *config.Config, deps *Dependencies) (result *RunResult) {
	result = &RunResult{RunID: uuid.NewString()}
	logger := log.WithField("run_id", result.RunID)
	logger.Info("Starting lotto run")

	bus := deps.Events
	if bus == nil {
		bus = events.NewBus()
	}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("unexpected panic: %v", r)
		}
		if result.Err != nil {
			logger.Errorf("Run failed: %v", result.Err)
			deps.Reporter.SetFailed(result.Err.Error())
			bus.Emit(ctx, events.RunFailedEvent{RunID: result.RunID, Message: result.Err.Error()})
		} else {
			logger.Info("Run completed")
		}
		if err := deps.Reporter.WriteSummary(renderSummary(result)); err != nil {
			logger.Warnf("Failed to write job summary: %v", err)
		}
		bus.Wait()
	}()

	session, err := bootstrap(ctx, cfg, deps)
	if err != nil {
		result.Err = err
		return result
	}
	// A failed purchase has already released the session
	released := false
	defer func() {
		if released {
			return
		}
		if err := session.Release(); err != nil {
			logger.Warnf("Failed to release session: %v", err)
		}
	}()

	summary, err := deps.checker(session).CheckAll(ctx)
	if err != nil {
		result.Err = err
		return result
	}
	result.Check = summary
	emitChecked(ctx, bus, summary)
	if summary.Failed > 0 {
		logger.WithField("failed", summary.Failed).Warn("Some tickets could not be checked, they remain awaiting")
	}

	ticket, err := deps.purchaser(session).Purchase(ctx, cfg.Amount)
	if err != nil {
		var purchaseErr *services.PurchaseError
		released = errors.As(err, &purchaseErr)
		result.Err = err
		return result
	}
	result.Ticket = ticket
	bus.Emit(ctx, events.TicketPurchasedEvent{
		Date:         ticket.CreatedDate,
		Round:        ticket.Round,
		Combinations: len(ticket.Numbers),
		Link:         ticket.Link,
	})

	return result
}

// emitChecked publishes one event per ticket that was labelled in this run
func emitChecked(ctx context.Context, bus *events.Bus, summary *interfaces.CheckSummary) {
	for _, outcome := range summary.Outcomes {
		if outcome.Err != nil || outcome.Pending || outcome.Skipped {
			continue
		}
		won := false
		for _, rank := range outcome.Ranks {
			if rank.IsWin() {
				won = true
			}
		}
		bus.Emit(ctx, events.TicketCheckedEvent{
			TicketID: outcome.TicketID,
			Round:    outcome.Round,
			Labels:   outcome.Labels,
			Won:      won,
		})
	}
}

// notifier surfaces informational messages on the workflow run
type notifier interface {
	Notice(message string)
}

// subscribeNotices turns winning tickets and new purchases into workflow notices
func subscribeNotices(bus *events.Bus, n notifier) {
	bus.Subscribe(events.EventTypeTicketChecked, func(ctx context.Context, event events.Event) {
		checked, ok := event.(events.TicketCheckedEvent)
		if !ok || !checked.Won {
			return
		}
		n.Notice(fmt.Sprintf("Ticket #%d won in round %d: %s", checked.TicketID, checked.Round, strings.Join(checked.Labels, ", ")))
	})
	bus.Subscribe(events.EventTypeTicketPurchased, func(ctx context.Context, event events.Event) {
		purchased, ok := event.(events.TicketPurchasedEvent)
		if !ok {
			return
		}
		n.Notice(fmt.Sprintf("Purchased %d combination(s) for round %d: %s", purchased.Combinations, purchased.Round, purchased.Link))
	})
}

// renderSummary formats the job summary markdown for a run
func renderSummary(result *RunResult) string {
	var b strings.Builder
	b.WriteString("## Lotto run\n\n")

	if c := result.Check; c != nil {
		b.WriteString("| Tickets | Checked | Pending | Skipped | Failed |\n")
		b.WriteString("|---|---|---|---|---|\n")
		fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n\n", c.Total, c.Checked, c.Pending, c.Skipped, c.Failed)
		for _, outcome := range c.Outcomes {
			if len(outcome.Labels) > 0 {
				fmt.Fprintf(&b, "- #%d round %d: %s\n", outcome.TicketID, outcome.Round, strings.Join(outcome.Labels, ", "))
			}
		}
		if len(c.Outcomes) > 0 {
			b.WriteString("\n")
		}
	}

	if t := result.Ticket; t != nil {
		fmt.Fprintf(&b, "Purchased %d combination(s) for round %d on %s.\n", len(t.Numbers), t.Round, t.CreatedDate)
	}

	if result.Err != nil {
		fmt.Fprintf(&b, "**Failed:** %s\n", result.Err)
	}

	return b.String()
}
