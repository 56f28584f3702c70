package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/gcstr/cardtrack/internal/logger"
	"github.com/gcstr/cardtrack/internal/tracker"
	"github.com/gcstr/cardtrack/internal/util"
	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
)

const (
	// maxBody caps how much of a response body is read.
	maxBody = 1 << 20
	// maxMessageLen caps server messages surfaced to the user.
	maxMessageLen = 200
)

// Options configures a Client.
type Options struct {
	// BaseURL is the card office origin, e.g. https://cards.example.edu.
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token string
	// Timeout bounds each request. Defaults to 10s.
	Timeout time.Duration
	// HTTPClient overrides the pooled client (tests).
	HTTPClient *http.Client
	// UserAgent is sent on every request.
	UserAgent string
	Logger    logger.Logger
}

// Client talks to the card office API.
type Client struct {
	base      *url.URL
	token     string
	http      *http.Client
	userAgent string
	log       logger.Logger
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, apperr.New("api.New", apperr.InvalidInput, "base URL is required")
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, apperr.New("api.New", apperr.InvalidInput, "invalid base URL %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = cleanhttp.DefaultPooledClient()
		hc.Timeout = opts.Timeout
		if hc.Timeout == 0 {
			hc.Timeout = 10 * time.Second
		}
	}
	l := opts.Logger
	if l == nil {
		l = logger.Nop()
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "cardtrack"
	}
	return &Client{base: base, token: opts.Token, http: hc, userAgent: ua, log: l.With("component", "api")}, nil
}

// Status fetches the request status for registerNumber. A success=false
// answer is returned as a snapshot, not an error: it means "no request".
func (c *Client) Status(ctx context.Context, registerNumber string) (tracker.StatusSnapshot, error) {
	const op = "api.Status"
	st := logger.StartStep(c.log, "status_fetch", registerNumber)
	var body statusResponse
	code, err := c.do(ctx, op, http.MethodGet, "/api/status/"+url.PathEscape(registerNumber), &body)
	if err != nil {
		// Some deployments answer 404 with a success=false body for "no request".
		if code == http.StatusNotFound && !body.Success {
			st.OK("http_status", code, "success", false)
			return tracker.StatusSnapshot{Success: false, Message: body.Message}, nil
		}
		return tracker.StatusSnapshot{}, st.Fail(err, "http_status", code)
	}
	snap := body.snapshot()
	st.OK("http_status", code, "success", snap.Success, "request_status", string(snap.Status))
	return snap, nil
}

// RejectedCard returns the pending rejected card, or nil when none is found.
func (c *Client) RejectedCard(ctx context.Context, registerNumber string) (*tracker.RejectedCard, error) {
	const op = "api.RejectedCard"
	st := logger.StartStep(c.log, "rejected_fetch", registerNumber)
	var body rejectedResponse
	code, err := c.do(ctx, op, http.MethodGet, "/api/rejectedidcards/"+url.PathEscape(registerNumber), &body)
	if err != nil {
		if code == http.StatusNotFound {
			st.OK("http_status", code, "found", false)
			return nil, nil
		}
		return nil, st.Fail(err, "http_status", code)
	}
	card := body.card()
	st.OK("http_status", code, "found", card != nil)
	return card, nil
}

// TransferAccepted moves the student's ready card into history.
func (c *Client) TransferAccepted(ctx context.Context, registerNumber string) (TransferResult, error) {
	return c.transfer(ctx, "api.TransferAccepted", "transfer_accepted", "/api/acceptedidcards/transfer-to-history/", registerNumber)
}

// TransferRejected moves the student's rejected card into history.
func (c *Client) TransferRejected(ctx context.Context, registerNumber string) (TransferResult, error) {
	return c.transfer(ctx, "api.TransferRejected", "transfer_rejected", "/api/rejectedidcards/transfer-to-history/", registerNumber)
}

func (c *Client) transfer(ctx context.Context, op, action, prefix, registerNumber string) (TransferResult, error) {
	st := logger.StartStep(c.log, action, registerNumber)
	var body transferResponse
	code, err := c.do(ctx, op, http.MethodPost, prefix+url.PathEscape(registerNumber), &body)
	if err != nil {
		if msg := util.Truncate(strings.TrimSpace(body.Message), maxMessageLen); msg != "" && code >= 400 && code < 500 && !apperr.IsKind(err, apperr.Unauthorized) {
			err = apperr.Wrap(op, apperr.External, err, "%s", msg)
		}
		return TransferResult{}, st.Fail(err, "http_status", code)
	}
	res := TransferResult{Success: body.Success, Message: body.Message, TransferredCount: body.TransferredCount}
	if !res.Success {
		msg := util.Truncate(strings.TrimSpace(res.Message), maxMessageLen)
		if msg == "" {
			msg = "the card office could not complete the transfer"
		}
		return res, st.Fail(apperr.New(op, apperr.External, "%s", msg), "http_status", code)
	}
	st.OK("http_status", code, "transferred", res.TransferredCount)
	return res, nil
}

// do performs the request and decodes a JSON body into out. The body is
// decoded for non-2xx responses too, so callers can read server messages.
// The returned status code is 0 when no response was received.
func (c *Client) do(ctx context.Context, op, method, path string, out any) (int, error) {
	u := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return 0, apperr.Wrap(op, apperr.Internal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return 0, apperr.Wrap(op, apperr.Timeout, err, "the card office did not answer in time")
		case errors.Is(err, context.Canceled):
			return 0, apperr.Wrap(op, apperr.Precondition, err, "request cancelled")
		default:
			return 0, apperr.Wrap(op, apperr.Unavailable, err, "could not reach the card office")
		}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, apperr.Wrap(op, apperr.Unavailable, err, "read response")
	}
	decodeErr := decodeJSON(b, out)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return resp.StatusCode, apperr.New(op, apperr.Unauthorized, "the card office refused the credentials (HTTP %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, apperr.New(op, apperr.NotFound, "not found (HTTP 404)")
	case resp.StatusCode >= 500:
		return resp.StatusCode, apperr.New(op, apperr.Unavailable, "the card office is unavailable (HTTP %d)", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return resp.StatusCode, apperr.New(op, apperr.External, "unexpected HTTP %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return resp.StatusCode, apperr.Wrap(op, apperr.External, decodeErr, "malformed response")
	}
	return resp.StatusCode, nil
}

func decodeJSON(b []byte, out any) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		return fmt.Errorf("empty body")
	}
	return json.Unmarshal(b, out)
}
