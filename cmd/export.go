package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"skedge/internal/export"

	"github.com/spf13/cobra"
)

var (
	exportFormat  string
	exportFrom    string
	exportTo      string
	exportAccount string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export events to ICS or CSV",
	Long: `Export events in a date range to an interchange format on stdout
or a file. Dates are YYYY-MM-DD; the range defaults to the current month.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "ics", "Output format: ics or csv")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end, exclusive (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportAccount, "account", "", "Only export this account ID")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		initConfig()
	}

	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	start, end, err := exportRange()
	if err != nil {
		return err
	}

	source, _, err := buildSource()
	if err != nil {
		return err
	}
	defer stopWatching(source)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	events, err := source.Events(ctx, exportAccount, start, end)
	if err != nil {
		return fmt.Errorf("error getting events: %w", err)
	}

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := export.Write(out, format, events); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d events to %s\n", len(events), exportOut)
	}
	return nil
}

// exportRange resolves the --from/--to flags, defaulting to the current
// month.
func exportRange() (time.Time, time.Time, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	if exportFrom != "" {
		t, err := time.ParseInLocation("2006-01-02", exportFrom, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		start = t
	}
	if exportTo != "" {
		t, err := time.ParseInLocation("2006-01-02", exportTo, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		end = t
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must be after --from")
	}
	return start, end, nil
}
