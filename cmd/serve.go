package cmd

import (
	"github.com/spf13/cobra"
	"github.com/sw33tLie/biliguard/internal/server"
	"github.com/sw33tLie/biliguard/pkg/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bilibili API bridge over HTTP",
	Long: `Starts an HTTP bridge in front of the bilibili API using the stored credentials, so
"biliguard augment --remote" (or any other client) can share one logged-in session.
Basic auth is enabled when server.username or server.password is set.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		dbPath, _ := cmd.Flags().GetString("db")

		client, err := bilibiliClient(cmd)
		if err != nil {
			return err
		}

		var db *storage.DB
		if dbPath != "" {
			db, err = storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
		}

		user, pass := store().ServerCredentials()
		return server.New(client, db, user, pass).Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "127.0.0.1:8080", "HTTP listen address")
	serveCmd.Flags().String("db", "", "SQLite DB file to expose under /api/stats and /api/changes")
}
