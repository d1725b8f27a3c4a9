package announce

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-resty/resty/v2"
)

// One platform an announcement can go out to
type Poster interface {
	// the platform key recorded in the announcement history
	Platform() string
	// the platform's hard message length limit
	Limit() int
	Post(ctx context.Context, message string) error
}

type DiscordPoster struct {
	Session   *discordgo.Session
	ChannelID string
}

func (p *DiscordPoster) Platform() string {
	return "discord"
}

func (p *DiscordPoster) Limit() int {
	return 2000
}

func (p *DiscordPoster) Post(_ context.Context, message string) error {
	if _, err := p.Session.ChannelMessageSend(p.ChannelID, message); err != nil {
		return fmt.Errorf("(*DiscordPoster).Post: %w", err)
	}
	return nil
}

type MastodonPoster struct {
	client *resty.Client
	token  string
}

func NewMastodonPoster(baseURL, token string, timeout time.Duration) *MastodonPoster {
	return &MastodonPoster{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		token: token,
	}
}

func (p *MastodonPoster) Platform() string {
	return "mastodon"
}

func (p *MastodonPoster) Limit() int {
	return 500
}

func (p *MastodonPoster) Post(ctx context.Context, message string) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.token).
		SetFormData(map[string]string{"status": message}).
		Post("/api/v1/statuses")
	if err != nil {
		return fmt.Errorf("(*MastodonPoster).Post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("(*MastodonPoster).Post: unexpected status %s", resp.Status())
	}
	return nil
}
