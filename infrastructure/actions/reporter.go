package actions

import (
	"io"
	"os"
	"sync"

	"github.com/sethvargo/go-githubactions"
)

// Reporter talks to the GitHub Actions runner through workflow commands and
// the files the runner exposes. Marking a run as failed never changes the
// process exit code.
type Reporter struct {
	mu     sync.Mutex
	action *githubactions.Action
	getenv githubactions.GetenvFunc
}

// NewReporter creates a reporter wired to the runner's environment
func NewReporter() *Reporter {
	return &Reporter{
		action: githubactions.New(),
		getenv: os.Getenv,
	}
}

// NewReporterWith creates a reporter writing commands to out and reading the
// runner's file locations through getenv
func NewReporterWith(out io.Writer, getenv githubactions.GetenvFunc) *Reporter {
	return &Reporter{
		action: githubactions.New(githubactions.WithWriter(out), githubactions.WithGetenv(getenv)),
		getenv: getenv,
	}
}

// SetFailed emits an error annotation and sets the failed step output
func (r *Reporter) SetFailed(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.action.Errorf("%s", message)
	if r.getenv("GITHUB_OUTPUT") != "" {
		r.action.SetOutput("failed", "true")
	}
}

// Notice emits a notice annotation
func (r *Reporter) Notice(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.action.Noticef("%s", message)
}

// WriteSummary appends markdown to the job summary. Without a summary file it does nothing.
func (r *Reporter) WriteSummary(markdown string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getenv("GITHUB_STEP_SUMMARY") == "" {
		return nil
	}
	r.action.AddStepSummary(markdown)
	return nil
}
