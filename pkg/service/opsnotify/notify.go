// Package opsnotify posts operator-facing summaries to a Slack channel.
package opsnotify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

// Notifier posts broadcast run summaries and reconciliation warnings. All
// methods are best-effort; callers log failures and move on.
type Notifier struct {
	api     *slack.Client
	channel string
}

// New creates a notifier posting to the given channel.
func New(token, channel string) (*Notifier, error) {
	if token == "" || channel == "" {
		return nil, goerr.New("slack token and channel are required")
	}
	return &Notifier{
		api:     slack.New(token),
		channel: channel,
	}, nil
}

// BroadcastSummary reports the outcome of one broadcast run.
func (n *Notifier) BroadcastSummary(ctx context.Context, workspaceID types.WorkspaceID, sentTo, skipped, failed int) error {
	text := fmt.Sprintf("Broadcast for workspace *%s*: %d sent, %d skipped, %d failed",
		workspaceID, sentTo, skipped, failed)
	return n.post(ctx, text)
}

// ReconciliationWarning surfaces a store write that failed after the
// corresponding send or booking already happened. The contact is identified
// by its trailing-digit hint, never the full number.
func (n *Notifier) ReconciliationWarning(ctx context.Context, workspaceID types.WorkspaceID, contactHint, detail string) error {
	text := fmt.Sprintf(":warning: Workspace *%s*: store out of sync for contact %s: %s",
		workspaceID, contactHint, detail)
	return n.post(ctx, text)
}

func (n *Notifier) post(ctx context.Context, text string) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post to slack", goerr.V("channel", n.channel))
	}
	return nil
}
