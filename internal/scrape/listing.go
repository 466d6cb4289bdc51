package scrape

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseListing extracts film topic entries from listing page markup.
// The same topic may be linked several times on one page (title, poster,
// last-post shortcuts); entries are de-duplicated by topic id, keeping the
// first anchor that carries visible text. At most maxEntries entries are
// returned, in page order.
func ParseListing(markup []byte, baseURL string, maxEntries int) ([]ListingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing markup: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	var entries []ListingEntry
	seen := make(map[string]bool)

	doc.Find(`a[href*="/topic/"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}

		topicID, err := ResolveTopicID(href)
		if err != nil {
			// Not a topic link; drop silently.
			return true
		}
		if seen[topicID] {
			return true
		}

		title := strings.TrimSpace(sel.Text())
		if title == "" {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}

		seen[topicID] = true
		entries = append(entries, ListingEntry{
			TopicID:   topicID,
			SourceURL: base.ResolveReference(ref).String(),
			RawTitle:  whitespacePattern.ReplaceAllString(title, " "),
		})

		return len(entries) < maxEntries
	})

	return entries, nil
}
