package provider

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AccountsFile is the YAML document listing connected accounts.
type AccountsFile struct {
	Accounts []Account `yaml:"accounts"`
}

// DefaultAccountsPath returns the standard location of accounts.yaml.
func DefaultAccountsPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "skedge", "accounts.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "skedge", "accounts.yaml")
}

// LoadAccounts reads the accounts file. On first run the file does not
// exist yet; an empty skeleton is written with 0600 permissions so the
// user has something to edit, and an empty list is returned.
func LoadAccounts(path string) ([]Account, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if werr := writeSkeleton(path); werr != nil {
			return nil, werr
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read accounts file %s: %w", path, err)
	}

	var doc AccountsFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse accounts file %s: %w", path, err)
	}

	for i, a := range doc.Accounts {
		if a.ID == "" {
			return nil, fmt.Errorf("accounts file %s: account %d has no id", path, i)
		}
		switch a.Provider {
		case ProviderGoogle, ProviderMicrosoft:
		case ProviderLocal:
			if a.Path == "" {
				return nil, fmt.Errorf("accounts file %s: local account %q needs a path", path, a.ID)
			}
		default:
			return nil, fmt.Errorf("accounts file %s: account %q has unknown provider %q", path, a.ID, a.Provider)
		}
	}

	return doc.Accounts, nil
}

// SaveAccounts writes the accounts list back out, keeping 0600 since the
// file may name bridge commands with embedded profile identifiers.
func SaveAccounts(path string, accounts []Account) error {
	raw, err := yaml.Marshal(AccountsFile{Accounts: accounts})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func writeSkeleton(path string) error {
	skeleton := `# skedge connected accounts.
#
# accounts:
#   - id: work
#     provider: microsoft
#     name: Work Calendar
#   - id: personal
#     provider: google
#     name: Personal
#     bridge: skedge-gcal-bridge
#   - id: holidays
#     provider: local
#     name: Holidays
#     path: ~/calendars/holidays.ics
accounts: []
`
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create accounts dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(skeleton), 0o600); err != nil {
		return fmt.Errorf("write accounts skeleton: %w", err)
	}
	return nil
}

// ExpandHome resolves a leading ~/ in account paths.
func ExpandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
