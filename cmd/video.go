package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var videoCmd = &cobra.Command{
	Use:   "video <bvid>",
	Short: "Print a video's author, tags and AI summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := bilibiliClient(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		info, err := client.FetchContentInfo(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("UP主: %s (UID: %s)\n", info.AuthorName, info.AuthorID)
		if len(info.Tags) > 0 {
			fmt.Printf("标签: %s\n", strings.Join(info.Tags, ", "))
		} else {
			fmt.Println("标签: 暂无")
		}
		if info.AISummary != "" {
			fmt.Printf("\nAI 总结:\n%s\n", info.AISummary)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(videoCmd)
}
