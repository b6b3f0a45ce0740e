package bilibili

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sw33tLie/biliguard/pkg/enrich"
)

var wordPattern = regexp.MustCompile(`[\x{4e00}-\x{9fa5}a-zA-Z0-9]+`)

var stopWords = map[string]bool{
	"的": true, "了": true, "是": true, "在": true, "我": true, "你": true, "他": true, "她": true,
	"们": true, "一个": true, "这个": true, "那个": true, "和": true, "与": true, "或": true,
	"但": true, "也": true, "都": true, "就": true, "【": true, "】": true, "|": true, "-": true,
	"bilibili": true, "哔哩哔哩": true,
}

// WordCloud counts runs of CJK ideographs and ASCII alphanumerics longer than
// one character, skipping stop words. Results are ordered by count; equal
// counts keep the order in which the words first appeared.
func WordCloud(text string) []enrich.WordCount {
	counts := make(map[string]int)
	var order []string

	for _, w := range wordPattern.FindAllString(text, -1) {
		if utf8.RuneCountInString(w) <= 1 || stopWords[strings.ToLower(w)] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	out := make([]enrich.WordCount, 0, len(order))
	for _, w := range order {
		out = append(out, enrich.WordCount{Word: w, Count: counts[w]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
