package api

import (
	"context"
	"strings"

	"github.com/goliatone/go-notion/core"
)

const defaultBotName = "Notion Integration"

type User struct {
	ID        string         `mapstructure:"id"`
	Object    string         `mapstructure:"object"`
	Type      string         `mapstructure:"type"`
	Name      string         `mapstructure:"name"`
	AvatarURL string         `mapstructure:"avatar_url"`
	Person    map[string]any `mapstructure:"person"`
	Bot       map[string]any `mapstructure:"bot"`
}

type BotUser struct {
	ID            string
	Object        string
	Type          string
	Name          string
	Owner         map[string]any
	WorkspaceName string
}

func (c *Client) GetUser(ctx context.Context, userID string) (User, error) {
	id := strings.TrimSpace(userID)
	if id == "" {
		return User{}, core.BadInputError("api: user id is required", map[string]any{"field": "user id"})
	}
	raw, err := c.call(ctx, core.MethodGet, "/users/"+id, nil)
	if err != nil {
		return User{}, err
	}
	var user User
	if err := decode(raw, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) ListUsers(ctx context.Context, in ListInput) (List, error) {
	raw, err := c.call(ctx, core.MethodGet, withQuery("/users", listParams(in)), nil)
	if err != nil {
		return List{}, err
	}
	return decodeList(raw)
}

// GetBotUser returns the bot user behind the configured credential.
func (c *Client) GetBotUser(ctx context.Context) (BotUser, error) {
	raw, err := c.call(ctx, core.MethodGet, "/users/me", nil)
	if err != nil {
		return BotUser{}, err
	}
	var user struct {
		ID     string `mapstructure:"id"`
		Object string `mapstructure:"object"`
		Type   string `mapstructure:"type"`
		Name   string `mapstructure:"name"`
		Bot    struct {
			ID            string         `mapstructure:"id"`
			Owner         map[string]any `mapstructure:"owner"`
			WorkspaceName string         `mapstructure:"workspace_name"`
		} `mapstructure:"bot"`
	}
	if err := decode(raw, &user); err != nil {
		return BotUser{}, err
	}
	bot := BotUser{
		ID:            user.ID,
		Object:        user.Object,
		Type:          user.Type,
		Name:          user.Name,
		Owner:         user.Bot.Owner,
		WorkspaceName: user.Bot.WorkspaceName,
	}
	if user.Bot.ID != "" {
		bot.ID = user.Bot.ID
	}
	if bot.Name == "" {
		bot.Name = defaultBotName
	}
	return bot, nil
}
