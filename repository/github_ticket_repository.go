package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rich-automation/lotto-action/domain/entities"
	"github.com/rich-automation/lotto-action/domain/interfaces"

	"github.com/google/go-github/v62/github"
	log "github.com/sirupsen/logrus"
)

const listPageSize = 100

// githubTicketRepository stores tickets as issues of one GitHub repository
type githubTicketRepository struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubTicketRepository creates a ticket store for "owner/repo" authenticated with token
func NewGitHubTicketRepository(repository, token string, httpClient *http.Client) (interfaces.TicketRepository, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return NewGitHubTicketRepositoryWithClient(client, owner, repo), nil
}

// NewGitHubTicketRepositoryWithClient creates a ticket store around an existing client
func NewGitHubTicketRepositoryWithClient(client *github.Client, owner, repo string) interfaces.TicketRepository {
	return &githubTicketRepository{
		client: client,
		owner:  owner,
		repo:   repo,
	}
}

// ListAwaitingTickets returns all open issues labelled as awaiting, across every page
func (r *githubTicketRepository) ListAwaitingTickets(ctx context.Context) ([]*entities.TicketRecord, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		Labels:      []string{entities.LabelAwaiting},
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}

	var records []*entities.TicketRecord
	for {
		issues, resp, err := r.client.Issues.ListByRepo(ctx, r.owner, r.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list awaiting issues in %s/%s: %w", r.owner, r.repo, err)
		}

		for _, issue := range issues {
			// The issues endpoint also returns pull requests
			if issue.IsPullRequest() {
				continue
			}
			records = append(records, issueToRecord(issue))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debugf("Found %d awaiting issues in %s/%s", len(records), r.owner, r.repo)
	return records, nil
}

// CreateTicket opens a new issue labelled as awaiting
func (r *githubTicketRepository) CreateTicket(ctx context.Context, date string, body string) error {
	labels := []string{entities.LabelAwaiting}
	request := &github.IssueRequest{
		Title:  github.String(ticketTitle(date)),
		Body:   github.String(body),
		Labels: &labels,
	}

	issue, _, err := r.client.Issues.Create(ctx, r.owner, r.repo, request)
	if err != nil {
		return fmt.Errorf("failed to create ticket issue in %s/%s: %w", r.owner, r.repo, err)
	}

	log.WithFields(log.Fields{
		"issue": issue.GetNumber(),
		"url":   issue.GetHTMLURL(),
	}).Info("Created ticket issue")
	return nil
}

// MarkChecked replaces the issue's labels with the checked label plus the rank labels
func (r *githubTicketRepository) MarkChecked(ctx context.Context, ticketID int64, labels []string) error {
	replacement := append([]string{entities.LabelChecked}, labels...)

	_, _, err := r.client.Issues.ReplaceLabelsForIssue(ctx, r.owner, r.repo, int(ticketID), replacement)
	if err != nil {
		return fmt.Errorf("failed to update labels of %s/%s#%d: %w", r.owner, r.repo, ticketID, err)
	}
	return nil
}

// EnsureLabelTaxonomy creates whichever taxonomy labels the repository is missing
func (r *githubTicketRepository) EnsureLabelTaxonomy(ctx context.Context) error {
	existing := make(map[string]bool)
	opts := &github.ListOptions{PerPage: listPageSize}
	for {
		labels, resp, err := r.client.Issues.ListLabels(ctx, r.owner, r.repo, opts)
		if err != nil {
			return fmt.Errorf("failed to list labels in %s/%s: %w", r.owner, r.repo, err)
		}
		for _, label := range labels {
			existing[strings.ToLower(label.GetName())] = true
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	created := 0
	for _, spec := range entities.LabelTaxonomy() {
		if existing[strings.ToLower(spec.Name)] {
			continue
		}
		label := &github.Label{
			Name:        github.String(spec.Name),
			Color:       github.String(spec.Color),
			Description: github.String(spec.Description),
		}
		if _, _, err := r.client.Issues.CreateLabel(ctx, r.owner, r.repo, label); err != nil {
			return fmt.Errorf("failed to create label %q in %s/%s: %w", spec.Name, r.owner, r.repo, err)
		}
		created++
	}

	if created > 0 {
		log.Infof("Created %d missing labels in %s/%s", created, r.owner, r.repo)
	}
	return nil
}

func issueToRecord(issue *github.Issue) *entities.TicketRecord {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}
	return &entities.TicketRecord{
		ID:        int64(issue.GetNumber()),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		Labels:    labels,
		CreatedAt: issue.GetCreatedAt().Time,
	}
}

func ticketTitle(date string) string {
	return fmt.Sprintf("%s lotto purchase", date)
}

func splitRepository(repository string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(repository), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be in owner/repo form, got %q", repository)
	}
	return parts[0], parts[1], nil
}
