package scrape

import (
	"errors"
	"regexp"
)

// ErrNoTopicID indicates a URL that does not reference a film topic.
// Callers should treat this as "cannot process", not as a fatal error.
var ErrNoTopicID = errors.New("no topic id in url")

// Forum topic URLs embed a numeric identifier between path segments:
// .../forums/topic/26925-movie-name-2024/
var topicIDPattern = regexp.MustCompile(`/topic/(\d+)-`)

// ResolveTopicID derives the stable topic identifier from a source URL.
// Two URLs encoding the same identifier resolve to the same id, which lets
// the listing parser collapse duplicate links to one entry.
func ResolveTopicID(rawURL string) (string, error) {
	match := topicIDPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", ErrNoTopicID
	}
	return match[1], nil
}
