// Package client talks to a running chess session server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/chess-session-server/pkg/chessdto"
)

// APIError is a non-2xx reply. Code carries the server's error kind when the body had one.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("chess api error: status=%d code=%s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("chess api error: status=%d", e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 60 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 60 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) CreateGame(ctx context.Context, playerType, opponentType string) (*chessdto.Session, error) {
	var out chessdto.Session
	in := chessdto.CreateGameRequest{PlayerType: playerType, OpponentType: opponentType}
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/game", in, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) JoinGame(ctx context.Context, gameID, playerType string) (*chessdto.Session, error) {
	var out chessdto.Session
	in := chessdto.JoinGameRequest{PlayerType: playerType}
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "join"), in, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Game(ctx context.Context, gameID string) (*chessdto.Session, error) {
	var out chessdto.Session
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(gameID), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// NeedingOpponentAt pages through games waiting for a second player. A 404 means the index is past the end.
func (c *Client) NeedingOpponentAt(ctx context.Context, idx int) (*chessdto.Session, error) {
	var out chessdto.Session
	path := "/games/needing-opponent/" + strconv.Itoa(idx)
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GameOver(ctx context.Context, gameID string) (bool, error) {
	var out chessdto.GameOverResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(gameID, "game-over"), nil, &out, true); err != nil {
		return false, err
	}
	return out.GameOver, nil
}

func (c *Client) Result(ctx context.Context, gameID string) (*string, error) {
	var out chessdto.ResultResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(gameID, "result"), nil, &out, true); err != nil {
		return nil, err
	}
	return out.Result, nil
}

func (c *Client) PlayerTurn(ctx context.Context, gameID, playerID string) (bool, error) {
	var out chessdto.TurnResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(gameID, "player", playerID, "turn"), nil, &out, true); err != nil {
		return false, err
	}
	return out.Turn, nil
}

// BestMove asks the server's engine for playerID's move. level < 0 uses the server default.
func (c *Client) BestMove(ctx context.Context, gameID, playerID string, level int) (string, error) {
	path := gamePath(gameID, "player", playerID, "bestmove")
	if level >= 0 {
		path += "?level=" + strconv.Itoa(level)
	}
	var out chessdto.BestMoveResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return "", err
	}
	return out.BestMove, nil
}

func (c *Client) Move(ctx context.Context, gameID, playerID, move string) (*chessdto.Move, error) {
	var out chessdto.Move
	in := chessdto.MoveRequest{Move: move}
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "player", playerID, "move"), in, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func gamePath(gameID string, parts ...string) string {
	var sb strings.Builder
	sb.WriteString("/game/")
	sb.WriteString(url.PathEscape(gameID))
	for _, p := range parts {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(p))
	}
	return sb.String()
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 0 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			apiErr := decodeAPIError(status, resp.Body())
			if attempt == attempts || !shouldRetryStatus(status) {
				return apiErr
			}
			lastErr = apiErr
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var payload chessdto.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = truncate(string(body), 512)
	}
	return apiErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
