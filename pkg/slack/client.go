// Package slack wraps the Slack Web API for posting bot messages.
package slack

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	slackapi "github.com/slack-go/slack"
)

// Client defines the Slack operations used by this application.
type Client interface {
	// PostMessage posts text to channel under the given display name and
	// returns the message timestamp.
	PostMessage(ctx context.Context, channel, text, username string) (string, error)
}

// ClientOption configures the Slack client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	apiURL string
}

// WithAPIURL points the client at a different Web API root (for testing).
func WithAPIURL(url string) ClientOption {
	return func(o *clientOptions) {
		if url != "" && !strings.HasSuffix(url, "/") {
			url += "/"
		}
		o.apiURL = url
	}
}

// slackClient implements Client by wrapping a *slackapi.Client.
type slackClient struct {
	inner *slackapi.Client
}

// NewClient creates a Slack client authenticated with a bot OAuth token.
func NewClient(token string, opts ...ClientOption) Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	var apiOpts []slackapi.Option
	if o.apiURL != "" {
		apiOpts = append(apiOpts, slackapi.OptionAPIURL(o.apiURL))
	}

	return &slackClient{inner: slackapi.New(token, apiOpts...)}
}

func (c *slackClient) PostMessage(ctx context.Context, channel, text, username string) (string, error) {
	msgOpts := []slackapi.MsgOption{slackapi.MsgOptionText(text, false)}
	if username != "" {
		msgOpts = append(msgOpts, slackapi.MsgOptionUsername(username))
	}

	_, ts, err := c.inner.PostMessageContext(ctx, channel, msgOpts...)
	if err != nil {
		return "", eris.Wrapf(err, "slack: post message to %s", channel)
	}
	return ts, nil
}
