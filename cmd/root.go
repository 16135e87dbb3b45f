package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"skedge/internal/config"
	"skedge/internal/provider"
	"skedge/internal/ui"

	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	configFile    string
	accountsFile  string
	bridgeCommand string
	icsFiles      []string
	cfg           *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "skedge",
	Short: "A terminal calendar for connected and local accounts",
	Long: `Skedge is a terminal calendar application. Connected accounts
(Google, Microsoft) are reached through an out-of-process bridge binary;
local calendars are plain .ics files edited in place.`,
	RunE: runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the config file")
	rootCmd.PersistentFlags().StringVarP(&accountsFile, "accounts", "A", "", "Path to the accounts file")
	rootCmd.PersistentFlags().StringVar(&bridgeCommand, "bridge", "", "Bridge binary for connected accounts")
	rootCmd.PersistentFlags().StringArrayVar(&icsFiles, "ics", nil, "Extra local .ics calendar (repeatable)")
}

func initConfig() {
	var err error
	if configFile != "" {
		cfg, err = config.LoadConfigFile(configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if accountsFile != "" {
		cfg.AccountsFile = accountsFile
	}
	if bridgeCommand != "" {
		cfg.BridgeCommand = bridgeCommand
	}
}

// buildSource assembles the event source tree from the accounts file:
// one bridge client covering every connected account plus one file
// source per local calendar, behind a composite when there is more than
// one.
func buildSource() (provider.Source, []provider.Account, error) {
	accounts, err := provider.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading accounts: %w", err)
	}

	// --ics files become ad-hoc local accounts named after the file.
	for _, path := range icsFiles {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		accounts = append(accounts, provider.Account{
			ID:       name,
			Name:     name,
			Provider: provider.ProviderLocal,
			Path:     path,
		})
	}

	var bridged []provider.Account
	var sources []provider.Source
	for _, acct := range accounts {
		if acct.Provider == provider.ProviderLocal {
			sources = append(sources, provider.NewICSFileSource(acct))
		} else {
			bridged = append(bridged, acct)
		}
	}

	if len(bridged) > 0 {
		client := provider.NewBridgeClient(cfg.BridgeCommand, bridged)
		if err := client.TestConnection(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			fmt.Fprintf(os.Stderr, "Connected accounts need %q in your PATH\n", cfg.BridgeCommand)
		}
		sources = append([]provider.Source{client}, sources...)
	}

	switch len(sources) {
	case 0:
		return nil, accounts, fmt.Errorf("no accounts configured in %s", cfg.AccountsFile)
	case 1:
		return sources[0], accounts, nil
	default:
		return provider.NewComposite(sources...), accounts, nil
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	source, accounts, err := buildSource()
	if err != nil {
		return err
	}
	defer stopWatching(source)

	model := ui.NewModel(cfg, source, accounts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	model.SetSender(p.Send)
	ui.WatchChanges(p, source)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}

func stopWatching(source provider.Source) {
	if w, ok := source.(provider.Watcher); ok {
		w.StopWatching()
	}
}
