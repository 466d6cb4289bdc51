package scrape

import "testing"

const listingPage = `<html><body>
<ol class="ipsDataList">
  <li>
    <a href="/index.php?/forums/topic/26925-movie-one-2024-tamil/"><img src="thumb.jpg"></a>
    <h4><a href="/index.php?/forums/topic/26925-movie-one-2024-tamil/">Movie One (2024) [Tamil] 1080p</a></h4>
    <a href="/index.php?/forums/topic/26925-movie-one-2024-tamil/?do=getLastComment">latest reply</a>
  </li>
  <li>
    <h4><a href="https://www.1tamilmv.fi/index.php?/forums/topic/26930-movie-two-2024-telugu/">Movie Two (2024) [Telugu] 720p</a></h4>
  </li>
  <li>
    <h4><a href="/index.php?/forums/topic/26931-movie-three-2024/">Movie Three (2024)</a></h4>
  </li>
  <li>
    <a href="/index.php?/forums/forum/11-web-hd/">Forum index</a>
  </li>
</ol>
</body></html>`

func TestParseListing(t *testing.T) {
	entries, err := ParseListing([]byte(listingPage), "https://www.1tamilmv.fi", 15)
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.TopicID != "26925" {
		t.Errorf("expected topic id 26925, got %q", first.TopicID)
	}
	if first.SourceURL != "https://www.1tamilmv.fi/index.php?/forums/topic/26925-movie-one-2024-tamil/" {
		t.Errorf("unexpected source url %q", first.SourceURL)
	}
	if first.RawTitle != "Movie One (2024) [Tamil] 1080p" {
		t.Errorf("unexpected raw title %q", first.RawTitle)
	}

	if entries[1].TopicID != "26930" || entries[2].TopicID != "26931" {
		t.Errorf("unexpected entry order: %+v", entries)
	}
}

func TestParseListing_DeduplicatesByTopicID(t *testing.T) {
	entries, err := ParseListing([]byte(listingPage), "https://www.1tamilmv.fi", 15)
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}

	seen := make(map[string]int)
	for _, e := range entries {
		seen[e.TopicID]++
	}
	if seen["26925"] != 1 {
		t.Errorf("expected topic 26925 exactly once, got %d", seen["26925"])
	}
}

func TestParseListing_RespectsCap(t *testing.T) {
	entries, err := ParseListing([]byte(listingPage), "https://www.1tamilmv.fi", 2)
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestParseListing_EmptyPage(t *testing.T) {
	entries, err := ParseListing([]byte("<html><body></body></html>"), "https://www.1tamilmv.fi", 15)
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}
