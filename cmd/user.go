package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/biliguard/pkg/enrich"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Look up and block or unblock a user",
}

var userInfoCmd = &cobra.Command{
	Use:   "info <uid>",
	Short: "Print follower count, video count, average duration and keyword cloud",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := bilibiliClient(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		info, err := client.FetchUserInfo(ctx, args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "UID:\t%s\n", info.ID)
		fmt.Fprintf(w, "粉丝数:\t%d\n", info.Followers)
		fmt.Fprintf(w, "投稿数:\t%d\n", info.ContentCount)
		fmt.Fprintf(w, "平均时长:\t%s\n", info.AvgDuration)
		w.Flush()

		if len(info.KeywordCloud) > 0 {
			fmt.Println("\n投稿关键词:")
			for _, wc := range info.KeywordCloud {
				fmt.Printf("  %s (%d)\n", wc.Word, wc.Count)
			}
		}
		return nil
	},
}

var userStatusCmd = &cobra.Command{
	Use:   "status <uid>",
	Short: "Check whether a user is blocked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := bilibiliClient(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, err := client.CheckBlockStatus(ctx, args[0])
		if err != nil {
			return err
		}
		switch {
		case st.Note != "":
			fmt.Printf("%s: unknown (%s)\n", args[0], st.Note)
		case st.Blocked:
			fmt.Printf("%s: blocked\n", args[0])
		default:
			fmt.Printf("%s: not blocked\n", args[0])
		}
		return nil
	},
}

func relationCommand(use, short string, action enrich.Action) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <uid>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := bilibiliClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			if _, err := client.ModifyRelation(ctx, args[0], action); err != nil {
				return err
			}
			fmt.Printf("%s: %sed\n", args[0], action)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userInfoCmd)
	userCmd.AddCommand(userStatusCmd)
	userCmd.AddCommand(relationCommand("block", "Add a user to your blacklist", enrich.ActionBlock))
	userCmd.AddCommand(relationCommand("unblock", "Remove a user from your blacklist", enrich.ActionUnblock))
}
