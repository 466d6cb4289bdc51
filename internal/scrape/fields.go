package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Standalone patterns shared by every profile.
var (
	yearPattern       = regexp.MustCompile(`\((\d{4})\)`)
	fileSizePattern   = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s?(GB|MB|TB)\b`)
	magnetPattern     = regexp.MustCompile(`magnet:\?xt=urn:btih:[A-Za-z0-9]+(?:&[^\s"'<>]*)?`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	// titleMarkerPattern locates the first bracket or quality token, used to
	// cut the title when no parenthesized year is present.
	titleMarkerPattern = regexp.MustCompile(`(?i)[\[(]|\b(?:4k|2160p|1080p|720p|480p|360p|uhd|hdrip|hdtv|web-?dl|webrip|bluray|brrip|dvdscr|predvd|cam)\b`)
)

// ParseTitle splits a raw topic title into a clean film title and a release
// year. The year is the first parenthesized 4-digit group; zero when absent.
// Without a year the title is cut at the first quality or bracket marker.
func ParseTitle(raw string) (string, int) {
	title := raw
	year := 0

	if loc := yearPattern.FindStringSubmatchIndex(raw); loc != nil {
		if y, err := strconv.Atoi(raw[loc[2]:loc[3]]); err == nil && y >= 1900 && y <= 2100 {
			year = y
			title = raw[:loc[0]]
		}
	}
	if year == 0 {
		if loc := titleMarkerPattern.FindStringIndex(raw); loc != nil {
			title = raw[:loc[0]]
		}
	}

	title = whitespacePattern.ReplaceAllString(title, " ")
	title = strings.Trim(title, " -–.")
	return title, year
}

// ExtractFileSize returns the first file size in the text, normalized to
// "<value><UNIT>" (e.g. "1.2GB"), or "" when none is present.
func ExtractFileSize(text string) string {
	match := fileSizePattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1] + strings.ToUpper(match[2])
}

// ExtractMagnetLink returns the first magnet URI in the text, or "".
func ExtractMagnetLink(text string) string {
	return magnetPattern.FindString(text)
}

// vocabPattern pairs a normalized label with its compiled alias pattern.
type vocabPattern struct {
	label   string
	pattern *regexp.Regexp
}

// FieldSet holds the compiled extraction vocabularies for one profile.
// Each extractor is independent and order-insensitive over its input, so
// the assembler can run them against arbitrary text windows.
type FieldSet struct {
	defaultLanguage string
	languages       []vocabPattern
	subtitles       []vocabPattern
	resolutions     []vocabPattern
	codecs          []vocabPattern
	audio           []vocabPattern
	directLink      *regexp.Regexp
}

// NewFieldSet compiles a profile's vocabularies into a FieldSet.
func NewFieldSet(p *Profile) (*FieldSet, error) {
	f := &FieldSet{defaultLanguage: p.DefaultLanguage}

	for _, lang := range p.Languages {
		re, err := regexp.Compile(`(?i)\[[^\]]*` + wordBound(lang) + `[^\]]*\]`)
		if err != nil {
			return nil, fmt.Errorf("language vocabulary %q: %w", lang, err)
		}
		f.languages = append(f.languages, vocabPattern{label: lang, pattern: re})
	}

	for _, marker := range p.SubtitleMarkers {
		re, err := regexp.Compile(`(?i)` + wordBound(marker))
		if err != nil {
			return nil, fmt.Errorf("subtitle vocabulary %q: %w", marker, err)
		}
		f.subtitles = append(f.subtitles, vocabPattern{label: marker, pattern: re})
	}

	for _, rule := range p.Resolutions {
		re, err := compileAliases(rule.Aliases)
		if err != nil {
			return nil, fmt.Errorf("resolution vocabulary %q: %w", rule.Label, err)
		}
		f.resolutions = append(f.resolutions, vocabPattern{label: rule.Label, pattern: re})
	}

	for _, rule := range p.Codecs {
		re, err := compileAliases(rule.Aliases)
		if err != nil {
			return nil, fmt.Errorf("codec vocabulary %q: %w", rule.Label, err)
		}
		f.codecs = append(f.codecs, vocabPattern{label: rule.Label, pattern: re})
	}

	for _, name := range p.Audio {
		// Channel notation (5.1, 2.0, ...) and bitrate suffix are optional.
		re, err := regexp.Compile(`(?i)` + wordBound(name) + `(?:\s?[1-9]\.[0-9])?(?:\s?\(?\d+\s?kbps\)?)?`)
		if err != nil {
			return nil, fmt.Errorf("audio vocabulary %q: %w", name, err)
		}
		f.audio = append(f.audio, vocabPattern{label: name, pattern: re})
	}

	if len(p.DirectLinkHosts) > 0 {
		hosts := make([]string, len(p.DirectLinkHosts))
		for i, h := range p.DirectLinkHosts {
			hosts[i] = regexp.QuoteMeta(h)
		}
		re, err := regexp.Compile(`https?://(?:www\.)?(?:` + strings.Join(hosts, "|") + `)/[^\s"'<>]+`)
		if err != nil {
			return nil, fmt.Errorf("direct link hosts: %w", err)
		}
		f.directLink = re
	}

	return f, nil
}

// Language returns the first vocabulary language found in bracket notation,
// falling back to the profile's default language. The default is a source
// assumption, not a parsing rule, which is why it lives in the profile.
func (f *FieldSet) Language(text string) string {
	for _, v := range f.languages {
		if v.pattern.MatchString(text) {
			return v.label
		}
	}
	return f.defaultLanguage
}

// Subtitles returns the first matching subtitle marker, or "".
func (f *FieldSet) Subtitles(text string) string {
	for _, v := range f.subtitles {
		if v.pattern.MatchString(text) {
			return v.label
		}
	}
	return ""
}

// Resolution returns the normalized resolution found in the text, or "".
func (f *FieldSet) Resolution(text string) Resolution {
	for _, v := range f.resolutions {
		if v.pattern.MatchString(text) {
			return Resolution(v.label)
		}
	}
	return ""
}

// Codec returns the canonical codec name found in the text, or "".
func (f *FieldSet) Codec(text string) string {
	for _, v := range f.codecs {
		if v.pattern.MatchString(text) {
			return v.label
		}
	}
	return ""
}

// Audio returns the audio notation found in the text, including any channel
// layout and bitrate suffix, or "".
func (f *FieldSet) Audio(text string) string {
	for _, v := range f.audio {
		if match := v.pattern.FindString(text); match != "" {
			return strings.TrimSpace(whitespacePattern.ReplaceAllString(match, " "))
		}
	}
	return ""
}

// DirectLink returns the first whitelisted direct-download URL, or "".
func (f *FieldSet) DirectLink(text string) string {
	if f.directLink == nil {
		return ""
	}
	return f.directLink.FindString(text)
}

// compileAliases builds a case-insensitive alternation over a rule's
// aliases, preserving their order.
func compileAliases(aliases []string) (*regexp.Regexp, error) {
	alts := make([]string, len(aliases))
	for i, alias := range aliases {
		alts[i] = wordBound(alias)
	}
	return regexp.Compile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}

// wordBound quotes a vocabulary term and anchors it with word boundaries
// where the term's edges are word characters ("DD+" must not demand a
// trailing boundary after '+').
func wordBound(term string) string {
	quoted := regexp.QuoteMeta(term)
	if term == "" {
		return quoted
	}
	if isWordChar(term[0]) {
		quoted = `\b` + quoted
	}
	if isWordChar(term[len(term)-1]) {
		quoted += `\b`
	}
	return quoted
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
