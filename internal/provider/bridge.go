package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// BridgeClient talks to an out-of-process account bridge. Every call
// execs the bridge command with an operation name and a JSON request as
// arguments; the bridge answers with a single JSON envelope on stdout:
//
//	{"ok": true, "data": ...}
//	{"ok": false, "error": "why it failed"}
//
// The bridge owns OAuth, token refresh, and the provider SDKs; skedge
// never sees credentials.
type BridgeClient struct {
	// BridgePath is the bridge command. Account-level overrides win.
	BridgePath string
	// AccountList scopes which accounts this client serves.
	AccountList []Account
	// Timeout bounds a single bridge call.
	Timeout time.Duration
}

// NewBridgeClient creates a client over the given accounts.
func NewBridgeClient(bridgePath string, accounts []Account) *BridgeClient {
	return &BridgeClient{
		BridgePath:  bridgePath,
		AccountList: accounts,
		Timeout:     30 * time.Second,
	}
}

type bridgeEnvelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

type eventsRequest struct {
	AccountID string `json:"account_id,omitempty"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

type eventRequest struct {
	AccountID string `json:"account_id"`
	EventID   string `json:"event_id"`
}

func (c *BridgeClient) Accounts(ctx context.Context) ([]Account, error) {
	if len(c.AccountList) > 0 {
		out := make([]Account, len(c.AccountList))
		copy(out, c.AccountList)
		return out, nil
	}
	var accounts []Account
	if err := c.call(ctx, "", "accounts", struct{}{}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *BridgeClient) Events(ctx context.Context, accountID string, start, end time.Time) ([]Event, error) {
	req := eventsRequest{
		AccountID: accountID,
		Start:     start.Format(time.RFC3339),
		End:       end.Format(time.RFC3339),
	}
	var events []Event
	if err := c.call(ctx, accountID, "events", req, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *BridgeClient) Event(ctx context.Context, accountID, id string) (Event, error) {
	var ev Event
	err := c.call(ctx, accountID, "get", eventRequest{AccountID: accountID, EventID: id}, &ev)
	return ev, err
}

func (c *BridgeClient) Create(ctx context.Context, ev Event) (Event, error) {
	var out Event
	err := c.call(ctx, ev.AccountID, "create", ev, &out)
	return out, err
}

func (c *BridgeClient) Update(ctx context.Context, ev Event) (Event, error) {
	var out Event
	err := c.call(ctx, ev.AccountID, "update", ev, &out)
	return out, err
}

func (c *BridgeClient) Delete(ctx context.Context, accountID, id string) error {
	return c.call(ctx, accountID, "delete", eventRequest{AccountID: accountID, EventID: id}, nil)
}

func (c *BridgeClient) AddMeetingLink(ctx context.Context, accountID, id string) (Event, error) {
	var out Event
	err := c.call(ctx, accountID, "add_meeting", eventRequest{AccountID: accountID, EventID: id}, &out)
	return out, err
}

// call execs one bridge operation and decodes the reply envelope into out.
func (c *BridgeClient) call(ctx context.Context, accountID, op string, req, out any) error {
	path := c.bridgeFor(accountID)
	if path == "" {
		return fmt.Errorf("no bridge command configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, op, string(payload))
	// Without a wait delay a killed bridge whose children keep stdout
	// open would block Output past the deadline.
	cmd.WaitDelay = time.Second
	raw, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("bridge %s failed: %w", op, err)
	}

	var env bridgeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("bridge %s: bad reply: %w", op, err)
	}
	if !env.OK {
		if env.Error == "" {
			env.Error = "unspecified bridge error"
		}
		return fmt.Errorf("bridge %s: %s", op, env.Error)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("bridge %s: decode data: %w", op, err)
		}
	}
	return nil
}

func (c *BridgeClient) bridgeFor(accountID string) string {
	for _, a := range c.AccountList {
		if a.ID == accountID && a.Bridge != "" {
			return a.Bridge
		}
	}
	return c.BridgePath
}

// TestConnection checks the bridge command responds at all.
func (c *BridgeClient) TestConnection() error {
	if c.BridgePath == "" {
		return fmt.Errorf("no bridge command configured")
	}
	cmd := exec.Command(c.BridgePath, "ping", "{}")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("bridge command not found or not working: %w", err)
	}
	return nil
}
