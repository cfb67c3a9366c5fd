package cmd

import (
	"context"

	"github.com/rich-automation/lotto-action/config"
	"github.com/rich-automation/lotto-action/domain/interfaces"
	"github.com/rich-automation/lotto-action/domain/services"
	"github.com/rich-automation/lotto-action/infrastructure/lotto"

	log "github.com/sirupsen/logrus"
)

// Bootstrap stages
const (
	stageStore   = "ticket store setup"
	stageLabels  = "label setup"
	stageSession = "session setup"
	stageSignIn  = "sign in"
)

// bootstrap prepares the ticket store's labels and opens the one automation
// session used for the rest of the run
func bootstrap(ctx context.Context, cfg *config.Config, deps *Dependencies) (interfaces.AutomationSession, error) {
	if err := deps.Store.EnsureLabelTaxonomy(ctx); err != nil {
		return nil, &services.BootstrapError{Stage: stageLabels, Err: err}
	}

	session, err := deps.NewSession(ctx, lotto.Config{
		Driver:     "chromium",
		Headless:   true,
		LogLevel:   cfg.LogLevel,
		LaunchArgs: cfg.BrowserLaunchArgs,
		ExecPath:   cfg.BrowserPath,
		ResultsURL: cfg.ResultsURL,
	})
	if err != nil {
		return nil, &services.BootstrapError{Stage: stageSession, Err: err}
	}

	if !cfg.HasCredentials() {
		log.Warn("Lottery credentials not configured, continuing without signing in")
		return session, nil
	}

	if err := session.SignIn(ctx, cfg.LottoID, cfg.LottoPassword); err != nil {
		if releaseErr := session.Release(); releaseErr != nil {
			log.Warnf("Failed to release session after sign in failure: %v", releaseErr)
		}
		return nil, &services.BootstrapError{Stage: stageSignIn, Err: err}
	}

	return session, nil
}
