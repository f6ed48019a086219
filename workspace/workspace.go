// Package workspace wraps the Slack Web API behind the small Messenger
// interface the pipeline and tools consume: post a reply, list channel
// members, resolve member profiles.
package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/deskmesh/logging"
	"github.com/slack-go/slack"
)

// Profile is the resolved identity of a workspace member.
type Profile struct {
	UserID   string `json:"employee_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Position string `json:"position,omitempty"`
}

// Messenger is the messaging platform boundary.
type Messenger interface {
	// Post delivers text to a channel.
	Post(ctx context.Context, channelID, text string) error
	// Members lists all member ids of a channel, following pagination.
	Members(ctx context.Context, channelID string) ([]string, error)
	// Profile resolves a member. Bots resolve to nil without error.
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// Client implements Messenger on the official Slack client.
type Client struct {
	api    *slack.Client
	logger logging.Logger
}

// Options configures a Client.
type Options struct {
	Logger logging.Logger
}

// NewClient constructs a Client from a bot token.
func NewClient(token string, optFns ...func(o *Options)) *Client {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{api: slack.New(token), logger: opts.Logger}
}

// NewClientFromAPI wraps an existing slack.Client (used by tests with a
// stubbed HTTP transport).
func NewClientFromAPI(api *slack.Client, optFns ...func(o *Options)) *Client {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{api: api, logger: opts.Logger}
}

// Post delivers text to a channel via chat.postMessage.
func (c *Client) Post(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post message to %s: %w", channelID, err)
	}
	return nil
}

// Members lists all member ids of a channel, following cursor pagination.
func (c *Client) Members(ctx context.Context, channelID string) ([]string, error) {
	var members []string
	cursor := ""
	for {
		page, next, err := c.api.GetUsersInConversationContext(ctx, &slack.GetUsersInConversationParameters{
			ChannelID: channelID,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("list members of %s: %w", channelID, err)
		}
		members = append(members, page...)
		if next == "" {
			return members, nil
		}
		cursor = next
	}
}

// Profile resolves a member via users.info. Bot users yield nil so fan-out
// callers can filter them without treating bots as failures.
func (c *Client) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve profile %s: %w", userID, err)
	}
	if user.IsBot {
		return nil, nil
	}

	name := strings.TrimSpace(user.Profile.FirstName + " " + user.Profile.LastName)
	if name == "" {
		name = user.RealName
	}

	return &Profile{
		UserID:   userID,
		Name:     name,
		Email:    user.Profile.Email,
		Position: user.Profile.Title,
	}, nil
}
