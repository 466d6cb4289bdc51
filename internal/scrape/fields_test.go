package scrape

import "testing"

func newTestFieldSet(t *testing.T) *FieldSet {
	t.Helper()
	profile, err := DefaultProfile()
	if err != nil {
		t.Fatalf("DefaultProfile: %v", err)
	}
	fields, err := NewFieldSet(profile)
	if err != nil {
		t.Fatalf("NewFieldSet: %v", err)
	}
	return fields
}

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTitle string
		wantYear  int
	}{
		{
			name:      "year in parentheses",
			raw:       "Movie Name (2024) [Tamil] 1080p",
			wantTitle: "Movie Name",
			wantYear:  2024,
		},
		{
			name:      "no year cuts at bracket",
			raw:       "Movie Name [Tamil] 1080p",
			wantTitle: "Movie Name",
			wantYear:  0,
		},
		{
			name:      "no year cuts at quality token",
			raw:       "Movie Name 1080p HDRip x264",
			wantTitle: "Movie Name",
			wantYear:  0,
		},
		{
			name:      "messy whitespace",
			raw:       "  Movie   Name\t(2019) - 720p",
			wantTitle: "Movie Name",
			wantYear:  2019,
		},
		{
			name:      "no markers at all",
			raw:       "Movie Name",
			wantTitle: "Movie Name",
			wantYear:  0,
		},
		{
			name:      "implausible year ignored",
			raw:       "Movie Name (0001) 1080p",
			wantTitle: "Movie Name",
			wantYear:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, year := ParseTitle(tt.raw)
			if title != tt.wantTitle {
				t.Errorf("expected title %q, got %q", tt.wantTitle, title)
			}
			if year != tt.wantYear {
				t.Errorf("expected year %d, got %d", tt.wantYear, year)
			}
		})
	}
}

func TestLanguage(t *testing.T) {
	fields := newTestFieldSet(t)

	if got := fields.Language("Movie Name (2024) [Telugu] 1080p"); got != "Telugu" {
		t.Errorf("expected Telugu, got %q", got)
	}
	if got := fields.Language("Movie Name (2024) [Tamil + Telugu + Hindi]"); got != "Tamil" {
		t.Errorf("expected Tamil (vocabulary order), got %q", got)
	}
	// No bracket language: source default applies.
	if got := fields.Language("Movie Name (2024) 1080p"); got != "Tamil" {
		t.Errorf("expected default Tamil, got %q", got)
	}
}

func TestLanguage_ConfigurableDefault(t *testing.T) {
	profile, err := DefaultProfile()
	if err != nil {
		t.Fatalf("DefaultProfile: %v", err)
	}
	profile.DefaultLanguage = "Malayalam"
	fields, err := NewFieldSet(profile)
	if err != nil {
		t.Fatalf("NewFieldSet: %v", err)
	}

	if got := fields.Language("Movie Name (2024) 1080p"); got != "Malayalam" {
		t.Errorf("expected configured default Malayalam, got %q", got)
	}
}

func TestSubtitles(t *testing.T) {
	fields := newTestFieldSet(t)

	if got := fields.Subtitles("Movie (2024) 1080p HDRip ESubs"); got != "ESubs" {
		t.Errorf("expected ESubs, got %q", got)
	}
	if got := fields.Subtitles("Movie (2024) 1080p HDRip"); got != "" {
		t.Errorf("expected no subtitles, got %q", got)
	}
}

func TestResolution(t *testing.T) {
	tests := []struct {
		text string
		want Resolution
	}{
		{"Movie 2160p WEB-DL", Resolution4K},
		{"Movie 4K UHD BluRay", Resolution4K},
		{"Movie 1080p HDRip", Resolution1080p},
		{"Movie 720p HDRip", Resolution720p},
		{"Movie 480p", Resolution480p},
		{"Movie 360p", Resolution360p},
		{"Movie HDRip", ""},
	}

	fields := newTestFieldSet(t)
	for _, tt := range tests {
		if got := fields.Resolution(tt.text); got != tt.want {
			t.Errorf("Resolution(%q): expected %q, got %q", tt.text, tt.want, got)
		}
	}
}

func TestExtractFileSize(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"1080p HD AVC - 2.8GB", "2.8GB"},
		{"720p HDRip - 1.4 GB - x264", "1.4GB"},
		{"400MB x264", "400MB"},
		{"size 1.5tb archive", "1.5TB"},
		{"no size here", ""},
	}

	for _, tt := range tests {
		if got := ExtractFileSize(tt.text); got != tt.want {
			t.Errorf("ExtractFileSize(%q): expected %q, got %q", tt.text, tt.want, got)
		}
	}
}

func TestCodec(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"1080p HEVC x265 10bit", "HEVC x265"},
		{"1080p x265 10bit", "x265"},
		{"1080p HEVC 10bit", "x265"},
		{"720p x264 AAC", "x264"},
		{"720p H.264 AAC", "x264"},
		{"720p AAC", ""},
	}

	fields := newTestFieldSet(t)
	for _, tt := range tests {
		if got := fields.Codec(tt.text); got != tt.want {
			t.Errorf("Codec(%q): expected %q, got %q", tt.text, tt.want, got)
		}
	}
}

func TestAudio(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"1080p HDRip DD+5.1 (192Kbps) ESubs", "DD+5.1 (192Kbps)"},
		{"720p AAC 2.0 x264", "AAC 2.0"},
		{"2160p TrueHD Atmos", "TrueHD"},
		{"1080p DTS x264", "DTS"},
		{"1080p AC3 640Kbps", "AC3 640Kbps"},
		{"1080p x264", ""},
	}

	fields := newTestFieldSet(t)
	for _, tt := range tests {
		if got := fields.Audio(tt.text); got != tt.want {
			t.Errorf("Audio(%q): expected %q, got %q", tt.text, tt.want, got)
		}
	}
}

func TestExtractMagnetLink(t *testing.T) {
	text := `click <a href="magnet:?xt=urn:btih:ABCDEF0123456789&dn=Movie.Name.2024&tr=udp%3A%2F%2Ftracker">magnet</a>`
	want := "magnet:?xt=urn:btih:ABCDEF0123456789&dn=Movie.Name.2024&tr=udp%3A%2F%2Ftracker"
	if got := ExtractMagnetLink(text); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if got := ExtractMagnetLink("no links here"); got != "" {
		t.Errorf("expected no magnet, got %q", got)
	}
}

func TestDirectLink(t *testing.T) {
	fields := newTestFieldSet(t)

	text := `mirror: https://gofile.io/d/AbC123 enjoy`
	if got := fields.DirectLink(text); got != "https://gofile.io/d/AbC123" {
		t.Errorf("expected gofile link, got %q", got)
	}

	// Hosts outside the whitelist are not direct links.
	if got := fields.DirectLink("https://example.com/file.mkv"); got != "" {
		t.Errorf("expected no direct link, got %q", got)
	}
}
