package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/biliguard/pkg/augment"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Show the keyword filter list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		printKeywords(store().Keywords())
		return nil
	},
}

var keywordsSetCmd = &cobra.Command{
	Use:   "set <keywords>",
	Short: "Save the keyword filter list (comma separated, 中文逗号 works too)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.Join(args, ",")
		if err := store().SetKeywords(raw); err != nil {
			return err
		}
		fmt.Println("设置已保存！")
		printKeywords(raw)
		return nil
	},
}

var keywordsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the keyword list every time the config file changes it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := store()
		printKeywords(s.Keywords())
		s.Watch(printKeywords)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		<-ctx.Done()
		return nil
	},
}

func printKeywords(raw string) {
	kw := augment.ParseKeywords(raw)
	if kw.Empty() {
		fmt.Println("No keywords set.")
		return
	}
	fmt.Printf("%d keywords: %s\n", len(kw.Words()), strings.Join(kw.Words(), ", "))
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
	keywordsCmd.AddCommand(keywordsSetCmd)
	keywordsCmd.AddCommand(keywordsWatchCmd)
}
