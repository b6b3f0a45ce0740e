package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/biliguard/internal/utils"
	"github.com/sw33tLie/biliguard/pkg/bilibili"
	"github.com/sw33tLie/biliguard/pkg/settings"
	"github.com/sw33tLie/biliguard/pkg/storage"
)

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Fetch and print your blacklist",
	Long: `Fetches every page of the logged-in account's blacklist and prints it.
With --db the list is also stored and the differences from the previous fetch are logged.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		account, _ := cmd.Flags().GetString("account")

		client, err := bilibiliClient(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		bl, err := client.FetchBlacklist(ctx)
		fmt.Println(settings.FormatBlacklist(bl, err))
		if err != nil || bl.Code != bilibili.CODE_OK || dbPath == "" {
			return nil
		}

		lock, err := utils.NewSyncLock(dbPath, account)
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		changes, err := db.SyncBlacklist(context.Background(), account, storage.EntriesFromBlacklist(account, bl))
		if err != nil {
			return fmt.Errorf("saving blacklist: %w", err)
		}
		if len(changes) == 0 {
			fmt.Println("No changes since the last fetch.")
			return nil
		}
		printChanges(changes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blacklistCmd)
	blacklistCmd.Flags().String("db", "", "Also store the blacklist in this SQLite DB file and print what changed")
	blacklistCmd.Flags().String("account", "default", "Account name the stored blacklist is filed under")
}
