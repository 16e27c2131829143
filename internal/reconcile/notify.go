package reconcile

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mrr-sync/pkg/slack"
)

// SlackNotifier posts mismatch messages to a single Slack channel.
type SlackNotifier struct {
	client   slack.Client
	channel  string
	username string
}

// NewSlackNotifier returns a Notifier that posts to channel as username.
func NewSlackNotifier(client slack.Client, channel, username string) *SlackNotifier {
	return &SlackNotifier{client: client, channel: channel, username: username}
}

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, text string) error {
	ts, err := n.client.PostMessage(ctx, n.channel, text, n.username)
	if err != nil {
		return eris.Wrap(err, "reconcile: notify")
	}
	zap.L().Info("mismatch notification sent",
		zap.String("channel", n.channel),
		zap.String("ts", ts),
	)
	return nil
}
