package metadata

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

const imageBaseURL = "https://ddragon.leagueoflegends.com/cdn/img/champion/loading"

var championKeyRegexp = regexp.MustCompile(`Characters/([^/]+)`)

// championKeyFixes corrects keys whose splash path spelling differs from the image host.
var championKeyFixes = map[string]string{
	"KhaZix": "Khazix",
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// SameName compares champion names case-insensitively.
func SameName(a, b string) bool {
	return fold(a) == fold(b)
}

// SameSkinName compares skin names case-insensitively, ignoring one leading
// colon on either side. Repository file names and feed names disagree on it.
func SameSkinName(a, b string) bool {
	return fold(trimColon(a)) == fold(trimColon(b))
}

func trimColon(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), ":")
}

// ChampionKey extracts the champion key from a splash art path, or "".
func ChampionKey(splashPath string) string {
	m := championKeyRegexp.FindStringSubmatch(splashPath)
	if m == nil {
		return ""
	}
	if fixed, ok := championKeyFixes[m[1]]; ok {
		return fixed
	}
	return m[1]
}

// SkinImage returns the loading screen image of a skin, or "" without a key.
func SkinImage(splashPath string, skinID int) string {
	key := ChampionKey(splashPath)
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s_%d.jpg", imageBaseURL, key, skinID)
}

// ChampionImage returns the default loading screen image of a champion.
func ChampionImage(splashPath string) string {
	return SkinImage(splashPath, 0)
}
