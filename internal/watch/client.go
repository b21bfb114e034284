// Fleet monitoring client for the collector API.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"robotops-sim/internal/store"
	"robotops-sim/internal/telemetry"
)

// AgentRow is one fleet entry combined from the agent list and its last
// known state.
type AgentRow struct {
	Info store.AgentInfo
	Last *telemetry.LastState // nil when the agent never reported
}

// Client polls the collector's operator API.
type Client struct {
	base     string
	username string
	password string
	http     *http.Client
}

func NewClient(baseURL, username, password string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		base:     strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http:     &http.Client{Jar: jar, Timeout: 5 * time.Second},
	}, nil
}

// Login establishes the operator session.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{"username": {c.username}, "password": {c.password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/login",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login rejected: status %d", resp.StatusCode)
	}
	return nil
}

// Fleet returns every known agent with its last recorded state.
func (c *Client) Fleet(ctx context.Context) ([]AgentRow, error) {
	var infos []store.AgentInfo
	if err := c.getJSON(ctx, "/api/agents", &infos); err != nil {
		return nil, err
	}

	rows := make([]AgentRow, 0, len(infos))
	for _, info := range infos {
		row := AgentRow{Info: info}
		var last telemetry.LastState
		err := c.getJSON(ctx, "/api/laststate?agent_id="+url.QueryEscape(info.ID), &last)
		if err == nil {
			row.Last = &last
		} else if err != errNotFound {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Enqueue queues a command for an agent through the mailbox endpoint.
func (c *Client) Enqueue(ctx context.Context, agentID, command string) error {
	body, err := json.Marshal(map[string]string{"agent_id": agentID, "command": command})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/command",
		strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("enqueue rejected: status %d", resp.StatusCode)
	}
	return nil
}

var errNotFound = fmt.Errorf("not found")

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNotFound:
		return errNotFound
	default:
		return fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}
}
