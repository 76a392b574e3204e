package extract

import (
	"regexp"
	"strings"
)

// MaxFilenameRunes bounds the derived file stem.
const MaxFilenameRunes = 200

var (
	invalidChars = strings.NewReplacer(
		"/", "-", `\`, "-", "?", "-", "%", "-", "*", "-",
		":", "-", "|", "-", `"`, "-", "<", "-", ">", "-",
	)
	spaceRun      = regexp.MustCompile(`[\s\p{Z}]+`)
	underscoreRun = regexp.MustCompile(`_{2,}`)
)

// Filename derives a filesystem-safe name from a document title and
// appends ext. It is pure: the same title always yields the same name.
// Truncation comes after trimming, so a cut on a separator keeps its
// trailing underscore.
func Filename(title, ext string) string {
	s := invalidChars.Replace(title)
	s = spaceRun.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if r := []rune(s); len(r) > MaxFilenameRunes {
		s = string(r[:MaxFilenameRunes])
	}
	if s == "" {
		s = "document"
	}
	return s + ext
}
