package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listAccount string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List today's events and exit",
	Long:  `List all events for today in a simple text format and exit.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listAccount, "account", "", "Only list events from this account ID")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	// Ensure config is loaded
	if cfg == nil {
		initConfig()
	}

	source, _, err := buildSource()
	if err != nil {
		return err
	}
	defer stopWatching(source)

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	events, err := source.Events(ctx, listAccount, today, today.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("error getting events: %w", err)
	}

	fmt.Printf("Events for %s:\n", now.Format(cfg.DateFormat))
	if len(events) == 0 {
		fmt.Println("No events found.")
		return nil
	}

	for _, event := range events {
		timeStr := "All day"
		if !event.AllDay {
			timeStr = fmt.Sprintf("%s-%s",
				event.Start.Format(cfg.TimeFormat), event.End.Format(cfg.TimeFormat))
		}

		fmt.Printf("  %s - %s\n", timeStr, event.Title)
		if event.Location != "" {
			fmt.Printf("    At: %s\n", event.Location)
		}
		if event.HasOnlineMeeting {
			fmt.Printf("    Join: %s\n", event.MeetingURL)
		}
	}

	return nil
}
