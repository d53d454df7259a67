package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/CrowderSoup/taskboard/board"
)

// HTTPCommitter talks to a taskboard server over its JSON API.
type HTTPCommitter struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPCommitter(baseURL, token string) *HTTPCommitter {
	return &HTTPCommitter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  http.DefaultClient,
	}
}

type response struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Code    board.ErrorCode `json:"code"`
	Message string          `json:"message"`
	Action  *int            `json:"action"`
}

// Commit posts actions to the batch endpoint. A rejection comes back as a
// *board.MutationError carrying the server's code and failing position.
func (c *HTTPCommitter) Commit(ctx context.Context, actions []board.Action) error {
	envs, err := board.EncodeBatch(actions)
	if err != nil {
		return err
	}
	body, err := json.Marshal(struct {
		Actions []board.Envelope `json:"actions"`
	}{envs})
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/api/actions/batch", body)
	return err
}

// Fetch reads the actor's tree.
func (c *HTTPCommitter) Fetch(ctx context.Context) (board.Tree, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/tree", nil)
	if err != nil {
		return board.Tree{}, err
	}
	var tree board.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return board.Tree{}, fmt.Errorf("decode tree: %w", err)
	}
	return tree, nil
}

// WatchURL is the websocket address for invalidation pushes. The token goes
// in the query because websocket handshakes from browsers cannot carry
// headers, and the server accepts both.
func (c *HTTPCommitter) WatchURL() (string, error) {
	u, err := url.Parse(c.BaseURL + "/api/ws")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", c.Token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *HTTPCommitter) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode == http.StatusOK && out.Status == "success" {
		return out.Data, nil
	}

	me := &board.MutationError{Code: out.Code, Message: out.Message, Action: -1}
	if out.Action != nil {
		me.Action = *out.Action
	}
	if me.Code == "" {
		me.Code = codeForStatus(resp.StatusCode)
	}
	if me.Message == "" {
		me.Message = resp.Status
	}
	return nil, me
}

func codeForStatus(status int) board.ErrorCode {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return board.CodeUnauthorized
	case http.StatusBadRequest:
		return board.CodeValidation
	case http.StatusConflict:
		return board.CodeInvariant
	case http.StatusNotFound:
		return board.CodeNotFound
	}
	return board.CodeStore
}
