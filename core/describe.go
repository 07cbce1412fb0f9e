package core

import "strings"

// termSubstitutions aligns icon vocabulary with the words people
// actually type when searching. Applied per word after the name is
// lowercased and de-hyphenated. This table is part of the semantic
// contract: changing it invalidates every cached vector set.
var termSubstitutions = map[string]string{
	"plus":      "add",
	"minus":     "remove",
	"wifi":      "wireless network",
	"trash":     "delete",
	"gear":      "settings",
	"cog":       "settings",
	"magnifier": "search",
	"envelope":  "email",
	"xmark":     "close",
}

// genericCategories are placeholder category values that carry no
// semantic signal and are not appended to descriptions.
var genericCategories = map[string]bool{
	"":              true,
	"uncategorized": true,
	"other":         true,
	"others":        true,
	"general":       true,
	"misc":          true,
	"miscellaneous": true,
}

// DescribeIcon turns an icon's raw name and category into the
// natural-language sentence used as its embedding input.
//
// The function is pure: identical inputs always produce an identical
// output string. Cached vector sets are keyed on that property, so
// the algorithm must not change without regenerating every cache.
//
// Output shape:
//
//	"An icon representing <name>."
//	"An icon representing <name>, related to <category keywords>."
func DescribeIcon(name, category string) string {
	nameWords := normalizeWords(name)
	readable := strings.Join(nameWords, " ")

	keywords := categoryKeywords(category, nameWords)
	if len(keywords) == 0 {
		return "An icon representing " + readable + "."
	}
	return "An icon representing " + readable + ", related to " + strings.Join(keywords, " ") + "."
}

// normalizeWords lowercases, de-hyphenates, and applies the term
// substitution table. A single substitution may expand into several
// words ("wifi" -> "wireless network").
func normalizeWords(text string) []string {
	raw := strings.Fields(strings.ToLower(strings.ReplaceAll(text, "-", " ")))
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if sub, ok := termSubstitutions[w]; ok {
			words = append(words, strings.Fields(sub)...)
			continue
		}
		words = append(words, w)
	}
	return words
}

// categoryKeywords splits the category on "/" and keeps the keywords
// not already present among the name words. Generic placeholder
// categories yield nothing.
func categoryKeywords(category string, nameWords []string) []string {
	if genericCategories[strings.ToLower(strings.TrimSpace(category))] {
		return nil
	}

	seen := make(map[string]bool, len(nameWords))
	for _, w := range nameWords {
		seen[w] = true
	}

	var keywords []string
	for _, segment := range strings.Split(category, "/") {
		for _, w := range normalizeWords(segment) {
			if seen[w] {
				continue
			}
			seen[w] = true
			keywords = append(keywords, w)
		}
	}
	return keywords
}
