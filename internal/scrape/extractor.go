package scrape

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// ErrNoContent indicates a detail page without a recognizable post body.
var ErrNoContent = errors.New("no post content found")

// Engine turns raw detail page markup into a structured FilmRecord.
type Engine struct {
	fields *FieldSet
	logger zerolog.Logger
}

// NewEngine creates a new extraction engine.
func NewEngine(fields *FieldSet, logger zerolog.Logger) *Engine {
	return &Engine{
		fields: fields,
		logger: logger.With().Str("component", "extractor").Logger(),
	}
}

// Extract builds a FilmRecord from a topic's detail page. The returned
// record may have an empty download list; discarding such records is the
// pipeline's responsibility, not this component's.
func (e *Engine) Extract(markup []byte, entry ListingEntry) (*FilmRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail markup: %w", err)
	}

	// The first post body holds the release description and links. Link
	// extraction must run over raw markup: direct links are often only
	// present in href attributes, not in the rendered text.
	post := doc.Find(`div[data-role="commentContent"], div.ipsType_richText`).First()
	if post.Length() == 0 {
		return nil, ErrNoContent
	}
	postHTML, err := goquery.OuterHtml(post)
	if err != nil {
		return nil, fmt.Errorf("failed to render post markup: %w", err)
	}
	// Serialized attributes carry entity-escaped URIs (&amp; inside magnet
	// links); unescape so link patterns see the literal URI text.
	postHTML = html.UnescapeString(postHTML)

	rawTitle := strings.TrimSpace(doc.Find("h1.ipsType_pageTitle, h1").First().Text())
	if rawTitle == "" {
		rawTitle = entry.RawTitle
	}
	title, year := ParseTitle(rawTitle)

	// Language and subtitles come from the full text rendering; markers
	// usually sit in the title line but may appear anywhere in the post.
	text := rawTitle + "\n" + doc.Text()

	record := &FilmRecord{
		TopicID:     entry.TopicID,
		Title:       title,
		Year:        year,
		Language:    e.fields.Language(text),
		Subtitles:   e.fields.Subtitles(text),
		PosterURL:   posterURL(post),
		SourceURL:   entry.SourceURL,
		Downloads:   e.fields.AssembleVariants(postHTML),
		ExtractedAt: time.Now().UTC(),
	}

	e.logger.Debug().
		Str("topicId", record.TopicID).
		Str("title", record.Title).
		Int("variants", len(record.Downloads)).
		Msg("extracted film record")

	return record, nil
}

// posterURL returns the first content image, preferring lazy-load sources.
func posterURL(post *goquery.Selection) string {
	img := post.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	if src, ok := img.Attr("data-src"); ok && src != "" {
		return src
	}
	src, _ := img.Attr("src")
	return src
}
