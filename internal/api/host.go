package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/franbe7/XLBALL/internal/config"
	"github.com/franbe7/XLBALL/internal/constants"
	"github.com/franbe7/XLBALL/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// HostClient drives the headless room runner over its HTTP bridge.
type HostClient struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

type RoomSettings struct {
	RoomName   string `json:"roomName"`
	Password   string `json:"password,omitempty"`
	MaxPlayers int    `json:"maxPlayers"`
	Public     bool   `json:"public"`
	PlayerName string `json:"playerName"`
	Token      string `json:"token"`
	NoPlayer   bool   `json:"noPlayer"`
}

type adminRequest struct {
	PlayerID int  `json:"playerId"`
	Admin    bool `json:"admin"`
}

func NewHostClient(cfg *config.Config, logger zerolog.Logger) *HostClient {
	return &HostClient{
		baseURL: strings.TrimRight(cfg.HostURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.HostActionTimeout,
			WriteTimeout:        constants.HostActionTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger.With().Str("component", "host").Logger(),
	}
}

func RoomSettingsFrom(cfg *config.Config) RoomSettings {
	return RoomSettings{
		RoomName:   cfg.RoomName,
		Password:   cfg.RoomPassword,
		MaxPlayers: cfg.MaxPlayers,
		Public:     cfg.PublicRoom,
		PlayerName: cfg.PlayerName,
		Token:      cfg.Token,
		NoPlayer:   true,
	}
}

func (c *HostClient) OpenRoom(ctx context.Context, settings RoomSettings) error {
	if err := c.postJSON(ctx, "/room", settings); err != nil {
		return fmt.Errorf("failed to open room: %w", err)
	}
	c.logger.Info().Str("room_name", settings.RoomName).Msg("room opened on host")
	return nil
}

func (c *HostClient) Announce(ctx context.Context, a domain.Announcement) error {
	return c.postJSON(ctx, "/announce", a)
}

func (c *HostClient) SetAdmin(ctx context.Context, playerID int, admin bool) error {
	return c.postJSON(ctx, "/admin", adminRequest{PlayerID: playerID, Admin: admin})
}

func (c *HostClient) SetCustomStadium(ctx context.Context, raw string) error {
	_, err := c.do(ctx, fasthttp.MethodPost, "/stadium", "text/plain; charset=utf-8", []byte(raw))
	return err
}

func (c *HostClient) Players(ctx context.Context) ([]domain.Player, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, "/players", "", nil)
	if err != nil {
		return nil, err
	}

	var players []domain.Player
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}
	return players, nil
}

func (c *HostClient) postJSON(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", path, err)
	}
	_, err = c.do(ctx, fasthttp.MethodPost, path, "application/json", body)
	return err
}

func (c *HostClient) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	if body != nil {
		req.SetBody(body)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.HostActionTimeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("host request failed")
		return nil, fmt.Errorf("failed to call host %s %s: %w", method, path, err)
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, fmt.Errorf("host error on %s %s: %d", method, path, code)
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}
