package feed

import (
	"fmt"
	"regexp"
	"strings"
)

func NewRelevance(keywords, exclude []string) (*Relevance, error) {
	r := &Relevance{Keywords: keywords, Exclude: exclude}
	if err := r.compile(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Relevance) compile() error {
	if len(r.Keywords) == 0 && len(r.Exclude) == 0 {
		return fmt.Errorf("relevance needs keywords or exclude terms")
	}

	var err error
	if r.keywords, err = termPattern(r.Keywords); err != nil {
		return fmt.Errorf("keywords: %w", err)
	}
	if r.exclude, err = termPattern(r.Exclude); err != nil {
		return fmt.Errorf("exclude: %w", err)
	}

	return nil
}

// termPattern matches any of terms as whole words. Nil when terms is empty.
func termPattern(terms []string) (*regexp.Regexp, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, fmt.Errorf("empty term")
		}
		quoted = append(quoted, regexp.QuoteMeta(term))
	}

	return regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Match reports whether item belongs in the digest, and why not when it doesn't.
// A nil rule accepts everything.
func (r *Relevance) Match(item Item) (bool, string) {
	if r == nil {
		return true, ""
	}
	text := strings.Join([]string{item.Title, strings.Join(item.Categories, " "), item.Content}, "\n")

	if r.exclude != nil {
		if term := r.exclude.FindString(text); term != "" {
			return false, fmt.Sprintf("mentions excluded term %q", term)
		}
	}

	if r.keywords != nil && !r.keywords.MatchString(text) {
		return false, "mentions none of the keywords"
	}

	return true, ""
}
