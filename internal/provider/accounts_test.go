package provider

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadAccountsFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skedge", "accounts.yaml")

	accounts, err := LoadAccounts(path)
	if err != nil {
		t.Fatalf("First run should succeed: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("First run should return no accounts, got %d", len(accounts))
	}

	// A skeleton was written for the user to edit
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Skeleton not written: %v", err)
	}
	if !strings.Contains(string(raw), "accounts: []") {
		t.Errorf("Skeleton content unexpected: %s", raw)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Accounts file mode: %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	content := `accounts:
  - id: work
    provider: microsoft
    name: Work Calendar
  - id: personal
    provider: google
    name: Personal
    bridge: skedge-gcal-bridge
  - id: holidays
    provider: local
    name: Holidays
    path: ~/calendars/holidays.ics
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	accounts, err := LoadAccounts(path)
	if err != nil {
		t.Fatalf("LoadAccounts: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("Expected 3 accounts, got %d", len(accounts))
	}
	if accounts[0].Provider != ProviderMicrosoft {
		t.Errorf("First provider: %q", accounts[0].Provider)
	}
	if accounts[1].Bridge != "skedge-gcal-bridge" {
		t.Errorf("Bridge override: %q", accounts[1].Bridge)
	}
	if accounts[2].Path == "" {
		t.Errorf("Local account lost its path")
	}
}

func TestLoadAccountsValidation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name:    "missing id",
			content: "accounts:\n  - provider: google\n    name: NoID\n",
		},
		{
			name:    "unknown provider",
			content: "accounts:\n  - id: x\n    provider: caldav\n",
		},
		{
			name:    "local without path",
			content: "accounts:\n  - id: x\n    provider: local\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "accounts.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadAccounts(path); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandHome("~/calendars/x.ics"); got != filepath.Join(home, "calendars/x.ics") {
		t.Errorf("ExpandHome: %q", got)
	}
	if got := ExpandHome("/abs/path.ics"); got != "/abs/path.ics" {
		t.Errorf("Absolute path changed: %q", got)
	}
}
