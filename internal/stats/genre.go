package stats

import "strings"

// Category strings arrive as hierarchies like "Fiction / Thriller / Noir" or
// "Juvenile Fiction > Animals > Bears", with half a dozen separator
// conventions in the wild.
var genreSeparators = []string{"/", ">", "•", "|", "—", "–", ":"}

// Generic head tokens carry no genre information and are stripped while the
// strip still leaves more than one token.
var genericHeads = map[string]struct{}{
	"fiction":          {},
	"nonfiction":       {},
	"juvenile fiction": {},
	"young adult":      {},
	"general":          {},
}

// Generic leaf tokens are stripped while at least one token remains.
var genericLeaves = map[string]struct{}{
	"general":       {},
	"miscellaneous": {},
	"other":         {},
}

// ParseGenre splits a hierarchical category string and returns the genre and
// subgenre. After trimming generic tokens: zero tokens yield an empty genre,
// one token is the genre with no subgenre, and with two or more the genre is
// the second-to-last token and the subgenre the last.
func ParseGenre(category string) (genre, subgenre string) {
	tokens := splitCategory(category)

	// Head strip: only while more than one token would remain.
	for len(tokens) > 2 {
		if _, ok := genericHeads[strings.ToLower(tokens[0])]; !ok {
			break
		}
		tokens = tokens[1:]
	}

	// Leaf strip: only while at least one token would remain.
	for len(tokens) > 1 {
		if _, ok := genericLeaves[strings.ToLower(tokens[len(tokens)-1])]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}

	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	default:
		return tokens[len(tokens)-2], tokens[len(tokens)-1]
	}
}

func splitCategory(category string) []string {
	normalized := category
	for _, sep := range genreSeparators[1:] {
		normalized = strings.ReplaceAll(normalized, sep, genreSeparators[0])
	}

	var tokens []string
	for _, part := range strings.Split(normalized, genreSeparators[0]) {
		part = strings.TrimSpace(part)
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}
