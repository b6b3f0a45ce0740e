package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/sw33tLie/biliguard/pkg/storage"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Show recent blacklist changes (default 50)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
		limit, _ := cmd.Flags().GetInt("limit")
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("database not found: %s", dbPath)
		}
		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		changes, err := db.ListRecentChanges(context.Background(), limit)
		if err != nil {
			return err
		}
		printChanges(changes)
		return nil
	},
}

var (
	addedColor   = color.New(color.FgRed)
	renamedColor = color.New(color.FgYellow)
	removedColor = color.New(color.FgGreen)
)

func printChanges(changes []storage.Change) {
	for _, c := range changes {
		ts := c.OccurredAt.Local().Format("2006-01-02 15:04:05")
		kind := fmt.Sprintf("%-7s", c.ChangeType)
		switch c.ChangeType {
		case "added":
			kind = addedColor.Sprint(kind)
		case "renamed":
			kind = renamedColor.Sprint(kind)
		case "removed":
			kind = removedColor.Sprint(kind)
		}
		fmt.Printf("%s  %s  %-10s  %s (UID: %s)\n", ts, kind, c.Account, c.Name, c.UID)
	}
}

func init() {
	rootCmd.AddCommand(changesCmd)
	changesCmd.Flags().String("dbpath", "biliguard.sqlite", "Path to SQLite DB file")
	changesCmd.Flags().Int("limit", 50, "Number of recent changes to show")
}
