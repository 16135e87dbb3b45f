package provider

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeBridge creates a fake bridge script that answers every operation
// with the given envelope.
func writeBridge(t *testing.T, reply string) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "mock_bridge")
	content := "#!/bin/sh\ncat <<'EOF'\n" + reply + "\nEOF\n"
	if err := os.WriteFile(script, []byte(content), 0755); err != nil {
		t.Fatalf("Failed to create mock bridge: %v", err)
	}
	return script
}

func TestBridgeEvents(t *testing.T) {
	script := writeBridge(t, `{"ok":true,"data":[
{"id":"ev-1","account_id":"work","provider":"microsoft","start":"2024-03-15T09:00:00Z","end":"2024-03-15T09:30:00Z","title":"Standup"},
{"id":"ev-2","account_id":"work","provider":"microsoft","start":"2024-03-15T13:00:00Z","end":"2024-03-15T14:00:00Z","title":"Review","has_online_meeting":true,"meeting_url":"https://example.com/j/1"}
]}`)

	client := NewBridgeClient(script, []Account{{ID: "work", Provider: ProviderMicrosoft, Name: "Work"}})

	events, err := client.Events(context.Background(), "work", date(15, 0, 0), date(16, 0, 0))
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Title != "Standup" || events[0].AccountID != "work" {
		t.Errorf("First event: %+v", events[0])
	}
	if !events[1].HasOnlineMeeting || events[1].MeetingURL == "" {
		t.Errorf("Meeting fields not decoded: %+v", events[1])
	}
}

func TestBridgeCreateRoundTrip(t *testing.T) {
	script := writeBridge(t, `{"ok":true,"data":{"id":"server-42","account_id":"work","provider":"microsoft","start":"2024-03-15T09:00:00Z","end":"2024-03-15T10:00:00Z","title":"Planning"}}`)
	client := NewBridgeClient(script, nil)

	ev, err := NewEvent("work", ProviderMicrosoft, "Planning", date(15, 9, 0), date(15, 10, 0))
	if err != nil {
		t.Fatal(err)
	}
	created, err := client.Create(context.Background(), ev)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// The bridge assigns the canonical ID
	if created.ID != "server-42" {
		t.Errorf("Created ID: %q", created.ID)
	}
}

func TestBridgeErrorEnvelope(t *testing.T) {
	script := writeBridge(t, `{"ok":false,"error":"token expired, run the bridge login flow"}`)
	client := NewBridgeClient(script, nil)

	_, err := client.Events(context.Background(), "work", date(15, 0, 0), date(16, 0, 0))
	if err == nil {
		t.Fatal("Expected an error from the envelope")
	}
	if !strings.Contains(err.Error(), "token expired") {
		t.Errorf("Bridge error text lost: %v", err)
	}
}

func TestBridgeBadReply(t *testing.T) {
	script := writeBridge(t, `this is not json`)
	client := NewBridgeClient(script, nil)

	if _, err := client.Events(context.Background(), "work", date(15, 0, 0), date(16, 0, 0)); err == nil {
		t.Error("Garbage output should surface as an error")
	}
}

func TestBridgeTimeout(t *testing.T) {
	script := filepath.Join(t.TempDir(), "slow_bridge")
	content := "#!/bin/sh\nsleep 5\necho '{\"ok\":true}'\n"
	if err := os.WriteFile(script, []byte(content), 0755); err != nil {
		t.Fatal(err)
	}

	client := NewBridgeClient(script, nil)
	client.Timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := client.Events(context.Background(), "work", date(15, 0, 0), date(16, 0, 0))
	if err == nil {
		t.Fatal("Expected a timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Timeout did not kill the bridge promptly")
	}
}

func TestBridgeAccountOverride(t *testing.T) {
	override := writeBridge(t, `{"ok":true,"data":[{"id":"local-1","account_id":"personal","provider":"google","start":"2024-03-15T09:00:00Z","end":"2024-03-15T10:00:00Z","title":"From override"}]}`)

	client := NewBridgeClient("/nonexistent/bridge", []Account{
		{ID: "personal", Provider: ProviderGoogle, Bridge: override},
	})

	events, err := client.Events(context.Background(), "personal", date(15, 0, 0), date(16, 0, 0))
	if err != nil {
		t.Fatalf("Account bridge override not used: %v", err)
	}
	if len(events) != 1 || events[0].Title != "From override" {
		t.Errorf("Got %+v", events)
	}
}

func TestBridgeAccountsFromList(t *testing.T) {
	// With a configured account list, Accounts never shells out
	client := NewBridgeClient("/nonexistent/bridge", []Account{
		{ID: "work", Provider: ProviderMicrosoft, Name: "Work"},
	})
	accounts, err := client.Accounts(context.Background())
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != "work" {
		t.Errorf("Got %+v", accounts)
	}
}
