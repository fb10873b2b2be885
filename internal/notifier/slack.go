package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/amishk599/atsfeed/internal/httpclient"
	"github.com/amishk599/atsfeed/internal/model"
)

// Ensure SlackNotifier implements model.RunNotifier.
var _ model.RunNotifier = (*SlackNotifier)(nil)

// SlackNotifier posts a run summary to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	client     *httpclient.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each run summary to Slack.
// Rate limiting (429 with Retry-After) is handled by the client's retry policy.
func NewSlackNotifier(webhookURL string, client *httpclient.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     client,
		logger:     logger,
	}
}

// NotifyRun sends one Block Kit message describing the run.
func (s *SlackNotifier) NotifyRun(ctx context.Context, report model.RunReport) error {
	if err := s.client.PostJSON(ctx, "slack webhook", s.webhookURL, buildPayload(report), nil); err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	s.logger.Info("slack run summary sent", "run_id", report.RunID)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a sample run summary to verify the integration works.
func SendTestMessage(ctx context.Context, n model.RunNotifier) error {
	now := time.Now().UTC()
	return n.NotifyRun(ctx, model.RunReport{
		RunID:      "test-run",
		StartedAt:  now.Add(-42 * time.Second),
		FinishedAt: now,
		Companies:  3,
		Fetched:    120,
		Unique:     118,
		Kept:       17,
		Sent:       17,
		Batches:    1,
	})
}

func field(label string, n int) slackText {
	return slackText{Type: "mrkdwn", Text: "*" + label + ":*\n" + strconv.Itoa(n)}
}

func buildPayload(r model.RunReport) slackPayload {
	header := "✅ atsfeed run finished"
	if r.Failed() {
		header = "⚠️ atsfeed run finished with failed batches"
	}

	return slackPayload{Blocks: []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: header},
		},
		{
			Type: "section",
			Fields: []slackText{
				field("Companies", r.Companies),
				field("Fetched", r.Fetched),
				field("Unique", r.Unique),
				field("Kept", r.Kept),
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				field("Sent", r.Sent),
				field("Batches", r.Batches),
				field("Failed batches", r.FailedBatches),
				{Type: "mrkdwn", Text: "*Duration:*\n" + r.Duration().Round(time.Second).String()},
			},
		},
		{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: "Run `" + r.RunID + "`"}},
		},
		{Type: "divider"},
	}}
}
