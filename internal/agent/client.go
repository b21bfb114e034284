// HTTP client for the remote collector
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"robotops-sim/internal/geo"
	"robotops-sim/internal/telemetry"
)

// ErrAuthExpired signals a 401 from the collector. The caller suspends
// transmission until a fresh login succeeds; loops keep running.
var ErrAuthExpired = errors.New("collector session expired")

// Client talks to the collector over its JSON contract. The cookie jar
// carries the session established by Login.
type Client struct {
	baseURL  string
	agentID  string
	username string
	password string
	http     *http.Client
}

// NewClient creates a collector client for one agent identity.
func NewClient(baseURL, agentID, username, password string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		agentID:  agentID,
		username: username,
		password: password,
		http: &http.Client{
			Timeout: 5 * time.Second,
			Jar:     jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Login authenticates against the collector and stores the session cookie.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{"username": {c.username}, "password": {c.password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusFound {
		return fmt.Errorf("login: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// SendTelemetry posts one sample. A 200 means accepted whether or not the
// collector chose to persist a health row.
func (c *Client) SendTelemetry(ctx context.Context, s telemetry.Sample) error {
	return c.postJSON(ctx, "/api/telemetry", s, nil)
}

// ReportVersions posts the agent's component version report.
func (c *Client) ReportVersions(ctx context.Context, components map[string]string) error {
	report := telemetry.VersionReport{
		AgentID:    c.agentID,
		Components: components,
		ReportedAt: time.Now().UTC(),
	}
	return c.postJSON(ctx, "/api/versions", report, nil)
}

// commandEnvelope is the wire shape of one queued command.
type commandEnvelope struct {
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

// FetchCommands drains the agent's mailbox on the collector. The read is
// side-effecting: returned commands are gone from the queue.
func (c *Client) FetchCommands(ctx context.Context) ([]CommandType, error) {
	var envelopes []commandEnvelope
	if err := c.getJSON(ctx, "/api/commands", &envelopes); err != nil {
		return nil, err
	}
	cmds := make([]CommandType, 0, len(envelopes))
	for _, e := range envelopes {
		cmds = append(cmds, ParseCommand(e.Command))
	}
	return cmds, nil
}

// FetchObstacles retrieves the workspace obstacle snapshot.
func (c *Client) FetchObstacles(ctx context.Context) ([]geo.Obstacle, error) {
	var obstacles []geo.Obstacle
	if err := c.getJSON(ctx, "/api/obstacles", &obstacles); err != nil {
		return nil, err
	}
	return obstacles, nil
}

// FetchLastState retrieves the collector's last known state for this agent,
// or nil when none exists yet.
func (c *Client) FetchLastState(ctx context.Context) (*telemetry.LastState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/laststate?agent_id="+url.QueryEscape(c.agentID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	case http.StatusUnauthorized:
		return nil, ErrAuthExpired
	default:
		return nil, fmt.Errorf("laststate: unexpected status %d", resp.StatusCode)
	}
	var last telemetry.LastState
	if err := json.NewDecoder(resp.Body).Decode(&last); err != nil {
		return nil, fmt.Errorf("laststate: %w", err)
	}
	return &last, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?agent_id="+url.QueryEscape(c.agentID), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
