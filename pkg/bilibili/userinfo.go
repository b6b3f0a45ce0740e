package bilibili

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/sw33tLie/biliguard/pkg/enrich"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// FetchUserInfo aggregates follower count, upload count, average upload
// length and a keyword cloud built from the latest uploads. The three
// underlying requests run concurrently; only the relation stat is required.
func (c *Client) FetchUserInfo(ctx context.Context, uid string) (enrich.UserInfo, error) {
	var stats, navnum, videos string
	var statsErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, statsErr = c.getJSON(gctx, "/x/relation/stat", url.Values{"vmid": {uid}})
		return nil
	})
	g.Go(func() error {
		navnum, _ = c.getJSON(gctx, "/x/space/navnum", url.Values{"mid": {uid}})
		return nil
	})
	g.Go(func() error {
		videos, _ = c.getJSON(gctx, "/x/space/arc/search", url.Values{
			"mid": {uid},
			"ps":  {strconv.Itoa(VIDEO_LIST_SIZE)},
			"pn":  {"1"},
		})
		return nil
	})
	_ = g.Wait()

	if statsErr != nil {
		return enrich.UserInfo{}, fmt.Errorf("Stats API error: %w", statsErr)
	}
	if code := gjson.Get(stats, "code").Int(); code != CODE_OK {
		return enrich.UserInfo{}, fmt.Errorf("Stats API error: %s (code: %d)", gjson.Get(stats, "message").String(), code)
	}

	info := enrich.UserInfo{
		ID:           uid,
		Followers:    gjson.Get(stats, "data.follower").Int(),
		AvgDuration:  "N/A",
		KeywordCloud: []enrich.WordCount{},
	}

	if navnum != "" && gjson.Get(navnum, "code").Int() == CODE_OK {
		info.ContentCount = gjson.Get(navnum, "data.video").Int()
	}

	if videos != "" && gjson.Get(videos, "code").Int() == CODE_OK && gjson.Get(videos, "data.list").Exists() {
		if info.ContentCount == 0 {
			info.ContentCount = gjson.Get(videos, "data.page.count").Int()
		}

		vlist := gjson.Get(videos, "data.list.vlist").Array()
		total := 0
		var text []string
		for _, v := range vlist {
			total += ParseLength(v.Get("length"))
			text = append(text, v.Get("title").String(), v.Get("description").String(), v.Get("tname").String())
		}
		avg := 0
		if len(vlist) > 0 {
			avg = int(math.Round(float64(total) / float64(len(vlist))))
		}
		info.AvgDuration = FormatDuration(avg)

		cloud := WordCloud(strings.Join(text, " "))
		if len(cloud) > WORD_CLOUD_SIZE {
			cloud = cloud[:WORD_CLOUD_SIZE]
		}
		info.KeywordCloud = cloud
	}

	return info, nil
}

// ParseLength reads a video length that the API reports either as seconds
// or as "MM:SS" / "HH:MM:SS".
func ParseLength(v gjson.Result) int {
	if v.Type == gjson.Number {
		return int(v.Int())
	}
	secs := 0
	for _, part := range strings.Split(v.String(), ":") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		secs = secs*60 + n
	}
	return secs
}

// FormatDuration renders seconds as MM:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
