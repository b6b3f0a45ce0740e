package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/biliguard/internal/utils"
	"github.com/sw33tLie/biliguard/pkg/augment"
	"github.com/sw33tLie/biliguard/pkg/dom"
	"github.com/sw33tLie/biliguard/pkg/enrich"
	"github.com/sw33tLie/biliguard/pkg/loop"
	"github.com/sw33tLie/biliguard/pkg/whttp"
)

var augmentCmd = &cobra.Command{
	Use:   "augment <file|url>",
	Short: "Augment a bilibili page and print the resulting HTML",
	Long: `Parses the page, attaches block controls to every username, overlays cards that match
the keyword list and wires the hover popups, then prints the document once every
pending request has been answered.

With --watch the page stays live: keyword changes in the config file are applied as they
happen, and the document is printed on Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetString("remote")
		output, _ := cmd.Flags().GetString("output")
		keywordsFlag, _ := cmd.Flags().GetString("keywords")
		watch, _ := cmd.Flags().GetBool("watch")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		svc, err := service(cmd, remote)
		if err != nil {
			return err
		}
		doc, err := loadDocument(cmd, args[0])
		if err != nil {
			return err
		}

		raw := store().Keywords()
		if cmd.Flags().Changed("keywords") {
			raw = keywordsFlag
		}

		l := loop.New()
		bridge := enrich.NewBridge(svc, l, enrich.WithTimeout(requestTimeout), enrich.WithLogger(utils.Log))
		eng := augment.New(doc, l, bridge, augment.Options{
			Logger: utils.Log,
			Alert:  func(msg string) { utils.Log.Warn(msg) },
		})

		l.Post(func() {
			eng.Start(augment.ParseKeywords(raw))
			eng.OnLoad()
		})

		if watch {
			store().Watch(func(raw string) {
				utils.Log.Infof("Keywords changed: %q", raw)
				l.Post(func() { eng.KeywordsChanged(augment.ParseKeywords(raw)) })
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			utils.Log.Info("Watching for keyword changes. Press Ctrl+C to print the page.")
			if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := l.Settle(ctx); err != nil {
				utils.Log.Warnf("Some requests did not finish: %v", err)
			}
		}

		bridge.Close()
		eng.Stop()
		l.RunPending()

		st := eng.Stats()
		utils.Log.Infof("Controls: %d, overlays: %d, hidden cards: %d", st.Controls, st.Overlays, st.CardsHidden)

		var w io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return doc.Render(w)
	},
}

// service picks the bilibili API directly, or a running bridge when remote is set.
func service(cmd *cobra.Command, remote string) (enrich.Service, error) {
	if remote == "" {
		return bilibiliClient(cmd)
	}
	hc, err := httpClient(cmd)
	if err != nil {
		return nil, err
	}
	user, pass := store().ServerCredentials()
	return enrich.NewRemote(remote, user, pass, hc), nil
}

func loadDocument(cmd *cobra.Command, src string) (*dom.Document, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(src)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return dom.Parse(f)
	}

	hc, err := httpClient(cmd)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{Method: "GET", URL: src}, hc)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("fetching %s: HTTP status %d", src, res.StatusCode)
	}
	utils.Log.Debugf("Fetched %q (%d chars)", res.HTTPTitle, res.ResponseLength)
	return dom.ParseString(res.BodyString)
}

func init() {
	rootCmd.AddCommand(augmentCmd)
	augmentCmd.Flags().String("remote", "", "Use a running bridge (biliguard serve) instead of calling bilibili directly. Example: http://127.0.0.1:8080")
	augmentCmd.Flags().StringP("output", "o", "", "Write the augmented HTML to this file instead of stdout")
	augmentCmd.Flags().StringP("keywords", "k", "", "Comma separated keywords, overriding filter.keywords")
	augmentCmd.Flags().BoolP("watch", "w", false, "Keep the page live and apply keyword changes from the config file")
	augmentCmd.Flags().Duration("timeout", 2*time.Minute, "How long to wait for pending requests")
}
