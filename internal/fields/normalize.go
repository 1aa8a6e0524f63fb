package fields

import "regexp"

var (
	horizontalSpace = regexp.MustCompile(`[ \t\p{Zs}]+`)
	anySpace        = regexp.MustCompile(`[\s\v\p{Z}]+`)
)

// Views are the two normalized forms every extractor reads.
type Views struct {
	// Text has runs of spaces, tabs and other space separators collapsed; line breaks survive.
	Text string
	// OneLine has every whitespace run collapsed to one space.
	OneLine string
}

func NewViews(raw string) Views {
	return Views{
		Text:    horizontalSpace.ReplaceAllString(raw, " "),
		OneLine: anySpace.ReplaceAllString(raw, " "),
	}
}
