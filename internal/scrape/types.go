package scrape

import "time"

// Resolution is a normalized video resolution label.
type Resolution string

const (
	Resolution4K      Resolution = "4K"
	Resolution1080p   Resolution = "1080p"
	Resolution720p    Resolution = "720p"
	Resolution480p    Resolution = "480p"
	Resolution360p    Resolution = "360p"
	ResolutionUnknown Resolution = "Unknown"
)

// ListingEntry is a film topic discovered on the listing page.
// Entries live for a single sync run.
type ListingEntry struct {
	TopicID   string `json:"topicId"`
	SourceURL string `json:"sourceUrl"`
	RawTitle  string `json:"rawTitle"`
}

// DownloadVariant is one quality/format option for a film, carrying up to
// two link kinds. A variant always has at least one link once it is part of
// a FilmRecord's download list.
type DownloadVariant struct {
	Resolution Resolution `json:"resolution"`
	FileSize   string     `json:"fileSize,omitempty"`
	Codec      string     `json:"codec,omitempty"`
	Audio      string     `json:"audio,omitempty"`
	MagnetLink string     `json:"magnetLink,omitempty"`
	DirectLink string     `json:"directLink,omitempty"`
}

// HasLink reports whether the variant carries at least one usable link.
func (v *DownloadVariant) HasLink() bool {
	return v.MagnetLink != "" || v.DirectLink != ""
}

// FilmRecord is the structured result of extracting one film topic.
// Records are published once and then discarded; only the topic identity
// survives in the seen-set.
type FilmRecord struct {
	TopicID     string            `json:"topicId"`
	Title       string            `json:"title"`
	Year        int               `json:"year,omitempty"`
	Language    string            `json:"language"`
	Subtitles   string            `json:"subtitles,omitempty"`
	PosterURL   string            `json:"posterUrl,omitempty"`
	SourceURL   string            `json:"sourceUrl"`
	Downloads   []DownloadVariant `json:"downloads"`
	ExtractedAt time.Time         `json:"extractedAt"`
}
