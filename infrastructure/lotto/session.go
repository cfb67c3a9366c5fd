package lotto

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/rich-automation/lotto-action/domain/entities"
	"github.com/rich-automation/lotto-action/domain/interfaces"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

const (
	loginURL = "https://dhlottery.co.kr/user.do?method=login"
	gameURL  = "https://ol.dhlottery.co.kr/olotto/game/game645.do"
)

var (
	// ErrNotSignedIn is returned when a purchase is attempted without a signed in session
	ErrNotSignedIn = errors.New("session is not signed in")

	// ErrSignInRejected is returned when the site does not accept the credentials
	ErrSignInRejected = errors.New("sign in was rejected")

	// ErrSessionReleased is returned by every operation after Release
	ErrSessionReleased = errors.New("session has been released")
)

// receiptScript reads the purchased lines from the confirmation report
const receiptScript = `Array.from(document.querySelectorAll('#reportRow li')).map(
	row => Array.from(row.querySelectorAll('.nums span')).map(span => parseInt(span.textContent, 10))
)`

// signedInScript detects the logout link that only signed in pages render
const signedInScript = `!!document.querySelector('a[href*="logout"]')`

// Config controls how the automation session is constructed
type Config struct {
	// Driver selects the browser. Only chromium based browsers are supported.
	Driver     string
	Headless   bool
	LogLevel   string
	LaunchArgs []string
	// ExecPath overrides the browser binary lookup
	ExecPath string

	ResultsURL string
	HTTPClient *http.Client
}

// Factory constructs an automation session
type Factory func(ctx context.Context, cfg Config) (interfaces.AutomationSession, error)

// BrowserSession drives the lottery site through a single browser instance
type BrowserSession struct {
	results *ResultsClient

	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc

	// browserMu serialises page interactions; Check does not need the browser
	browserMu sync.Mutex
	signedIn  bool

	dialogMu      sync.Mutex
	lastDialogMsg string

	releaseOnce sync.Once
	released    bool
}

// NewSession is a Factory producing browser sessions
func NewSession(ctx context.Context, cfg Config) (interfaces.AutomationSession, error) {
	session, err := NewBrowserSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// NewBrowserSession launches the browser and returns a session bound to it
func NewBrowserSession(ctx context.Context, cfg Config) (*BrowserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	driver := strings.ToLower(cfg.Driver)
	if driver != "" && driver != "chromium" && driver != "chrome" {
		return nil, fmt.Errorf("unsupported browser driver %q", cfg.Driver)
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	for _, arg := range cfg.LaunchArgs {
		name, value := parseLaunchArg(arg)
		if name == "" {
			continue
		}
		opts = append(opts, chromedp.Flag(name, value))
	}

	// The browser lives for the whole run, not for the caller's context
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, contextOptions(cfg.LogLevel)...)

	session := &BrowserSession{
		results:       NewResultsClient(cfg.ResultsURL, cfg.HTTPClient),
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}

	chromedp.ListenTarget(browserCtx, session.onTargetEvent)

	// The first Run allocates the browser and must use the browser context
	// itself, otherwise cancelling a derived context would kill the process.
	if err := chromedp.Run(browserCtx); err != nil {
		_ = session.Release()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.WithFields(log.Fields{
		"headless":    cfg.Headless,
		"launch_args": cfg.LaunchArgs,
	}).Info("Browser session started")

	return session, nil
}

// SignIn logs into the lottery site
func (s *BrowserSession) SignIn(ctx context.Context, id, secret string) error {
	s.browserMu.Lock()
	defer s.browserMu.Unlock()

	if s.released {
		return ErrSessionReleased
	}

	var signedIn bool
	err := s.run(ctx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(`#userId`, chromedp.ByID),
		chromedp.SendKeys(`#userId`, id, chromedp.ByID),
		chromedp.SendKeys(`input[name="password"]`, secret, chromedp.ByQuery),
		chromedp.Click(`a.btn_common.lrg.blu`, chromedp.ByQuery),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Evaluate(signedInScript, &signedIn),
	)
	if err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}
	if !signedIn {
		if msg := s.takeDialogMessage(); msg != "" {
			return fmt.Errorf("%w: %s", ErrSignInRejected, msg)
		}
		return ErrSignInRejected
	}

	s.signedIn = true
	log.Info("Signed in to the lottery site")
	return nil
}

// Check returns the rank of combination in round using the published results
func (s *BrowserSession) Check(ctx context.Context, combination entities.Combination, round int) (entities.Rank, error) {
	result, err := s.results.Fetch(ctx, round)
	if err != nil {
		return entities.RankNone, err
	}
	return result.RankOf(combination), nil
}

// Purchase buys amount automatically picked combinations
func (s *BrowserSession) Purchase(ctx context.Context, amount int) ([]entities.Combination, error) {
	s.browserMu.Lock()
	defer s.browserMu.Unlock()

	if s.released {
		return nil, ErrSessionReleased
	}
	if !s.signedIn {
		return nil, ErrNotSignedIn
	}
	if amount < entities.MinPurchaseAmount || amount > entities.MaxPurchaseAmount {
		return nil, fmt.Errorf("purchase amount %d out of range", amount)
	}

	var rows [][]int
	err := s.run(ctx,
		chromedp.Navigate(gameURL),
		chromedp.WaitVisible(`#num2`, chromedp.ByID),
		chromedp.Click(`#num2`, chromedp.ByID),
		chromedp.SetValue(`#amoundApply`, strconv.Itoa(amount), chromedp.ByID),
		chromedp.Click(`#btnSelectNum`, chromedp.ByID),
		chromedp.Click(`#btnBuy`, chromedp.ByID),
		chromedp.WaitVisible(`#popupLayerConfirm`, chromedp.ByID),
		chromedp.Click(`#popupLayerConfirm input[value="확인"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`#report`, chromedp.ByID),
		chromedp.Evaluate(receiptScript, &rows),
	)
	if err != nil {
		if msg := s.takeDialogMessage(); msg != "" {
			return nil, fmt.Errorf("failed to purchase: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("failed to purchase: %w", err)
	}

	return parseReceipt(rows, amount)
}

// CheckingLink builds the verification link for a purchased batch
func (s *BrowserSession) CheckingLink(round int, numbers []entities.Combination) (string, error) {
	return CheckingLink(round, numbers)
}

// Release closes the browser. Calls after the first are no-ops.
func (s *BrowserSession) Release() error {
	var err error
	s.releaseOnce.Do(func() {
		s.browserMu.Lock()
		s.released = true
		s.browserMu.Unlock()

		if s.browserCtx != nil {
			err = chromedp.Cancel(s.browserCtx)
		}
		if s.browserCancel != nil {
			s.browserCancel()
		}
		if s.allocCancel != nil {
			s.allocCancel()
		}
		log.Info("Browser session released")
	})
	return err
}

// run executes actions on the browser, aborting when ctx is cancelled
func (s *BrowserSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// onTargetEvent accepts javascript dialogs so alerts never block the page
func (s *BrowserSession) onTargetEvent(ev interface{}) {
	dialog, ok := ev.(*page.EventJavascriptDialogOpening)
	if !ok {
		return
	}
	s.dialogMu.Lock()
	s.lastDialogMsg = dialog.Message
	s.dialogMu.Unlock()

	log.WithField("message", dialog.Message).Debug("Accepting page dialog")
	go func() {
		if err := chromedp.Run(s.browserCtx, page.HandleJavaScriptDialog(true)); err != nil {
			log.Debugf("Failed to accept page dialog: %v", err)
		}
	}()
}

func (s *BrowserSession) takeDialogMessage() string {
	s.dialogMu.Lock()
	defer s.dialogMu.Unlock()
	msg := s.lastDialogMsg
	s.lastDialogMsg = ""
	return msg
}

// parseReceipt converts scraped rows into exactly amount valid combinations
func parseReceipt(rows [][]int, amount int) ([]entities.Combination, error) {
	if len(rows) != amount {
		return nil, fmt.Errorf("receipt lists %d combinations, expected %d", len(rows), amount)
	}
	numbers := make([]entities.Combination, 0, len(rows))
	for i, row := range rows {
		combination := entities.Combination(row).Sorted()
		if err := combination.Validate(); err != nil {
			return nil, fmt.Errorf("receipt line %d: %w", i+1, err)
		}
		numbers = append(numbers, combination)
	}
	return numbers, nil
}

// parseLaunchArg splits "--name=value" or "--name" into a chromedp flag
func parseLaunchArg(arg string) (string, interface{}) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	if arg == "" {
		return "", nil
	}
	name, value, found := strings.Cut(arg, "=")
	if !found {
		return name, true
	}
	return name, value
}

// contextOptions maps the configured log level onto chromedp's loggers
func contextOptions(level string) []chromedp.ContextOption {
	opts := []chromedp.ContextOption{chromedp.WithErrorf(log.Warnf)}
	switch strings.ToLower(level) {
	case "debug", "trace":
		opts = append(opts, chromedp.WithLogf(log.Debugf), chromedp.WithDebugf(log.Tracef))
	case "info":
		opts = append(opts, chromedp.WithLogf(log.Infof))
	}
	return opts
}
