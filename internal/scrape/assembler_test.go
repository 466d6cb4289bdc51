package scrape

import (
	"strings"
	"testing"
)

func TestAssembleVariants_SingleMagnet(t *testing.T) {
	fields := newTestFieldSet(t)

	content := `Movie Name (2024) 1.2GB 1080p x265 magnet:?xt=urn:btih:ABC`
	variants := fields.AssembleVariants(content)

	if len(variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(variants))
	}
	v := variants[0]
	if v.Resolution != Resolution1080p {
		t.Errorf("expected resolution 1080p, got %q", v.Resolution)
	}
	if v.FileSize != "1.2GB" {
		t.Errorf("expected file size 1.2GB, got %q", v.FileSize)
	}
	if v.Codec != "x265" {
		t.Errorf("expected codec x265, got %q", v.Codec)
	}
	if v.MagnetLink != "magnet:?xt=urn:btih:ABC" {
		t.Errorf("unexpected magnet link %q", v.MagnetLink)
	}
	if v.DirectLink != "" {
		t.Errorf("expected empty direct link, got %q", v.DirectLink)
	}
}

func TestAssembleVariants_MergesDirectIntoMagnetVariant(t *testing.T) {
	fields := newTestFieldSet(t)

	content := `1.2GB 1080p x265 magnet:?xt=urn:btih:ABC` +
		strings.Repeat(" filler", 20) +
		` mirror 1.2GB 1080p https://gofile.io/d/XYZ`
	variants := fields.AssembleVariants(content)

	if len(variants) != 1 {
		t.Fatalf("expected merged single variant, got %d", len(variants))
	}
	if variants[0].MagnetLink != "magnet:?xt=urn:btih:ABC" {
		t.Errorf("unexpected magnet link %q", variants[0].MagnetLink)
	}
	if variants[0].DirectLink != "https://gofile.io/d/XYZ" {
		t.Errorf("unexpected direct link %q", variants[0].DirectLink)
	}
}

func TestAssembleVariants_MergeIsOrderIndependent(t *testing.T) {
	fields := newTestFieldSet(t)

	// Direct link appears before the magnet in the content; the pair must
	// still collapse into one variant.
	content := `mirror 1.2GB 1080p https://gofile.io/d/XYZ` +
		strings.Repeat(" filler", 20) +
		` 1.2GB 1080p x265 magnet:?xt=urn:btih:ABC`
	variants := fields.AssembleVariants(content)

	if len(variants) != 1 {
		t.Fatalf("expected merged single variant, got %d", len(variants))
	}
	if variants[0].MagnetLink == "" || variants[0].DirectLink == "" {
		t.Errorf("expected both links populated, got %+v", variants[0])
	}
}

func TestAssembleVariants_DistinctQualitiesStaySeparate(t *testing.T) {
	fields := newTestFieldSet(t)

	content := `720p 1.4GB x264 magnet:?xt=urn:btih:AAA` +
		strings.Repeat(" pad", 200) +
		` 1080p 2.8GB x265 magnet:?xt=urn:btih:BBB` +
		strings.Repeat(" pad", 200) +
		` 1080p 2.8GB https://gofile.io/d/CCC`
	variants := fields.AssembleVariants(content)

	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
	if variants[0].Resolution != Resolution720p || variants[0].DirectLink != "" {
		t.Errorf("unexpected first variant %+v", variants[0])
	}
	if variants[1].Resolution != Resolution1080p {
		t.Errorf("unexpected second variant %+v", variants[1])
	}
	if variants[1].DirectLink != "https://gofile.io/d/CCC" {
		t.Errorf("expected direct link merged into 1080p variant, got %+v", variants[1])
	}
}

func TestAssembleVariants_UnmatchedDirectCreatesVariant(t *testing.T) {
	fields := newTestFieldSet(t)

	content := `1080p 2.8GB magnet:?xt=urn:btih:AAA` +
		strings.Repeat(" pad", 200) +
		` 720p 1.4GB https://gofile.io/d/BBB`
	variants := fields.AssembleVariants(content)

	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
	if variants[1].DirectLink != "https://gofile.io/d/BBB" || variants[1].MagnetLink != "" {
		t.Errorf("unexpected direct-only variant %+v", variants[1])
	}
}

func TestAssembleVariants_MissingMetadataStillProducesVariant(t *testing.T) {
	fields := newTestFieldSet(t)

	variants := fields.AssembleVariants(`download: magnet:?xt=urn:btih:AAA`)
	if len(variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(variants))
	}
	v := variants[0]
	if v.Resolution != ResolutionUnknown {
		t.Errorf("expected Unknown resolution, got %q", v.Resolution)
	}
	if v.FileSize != "" || v.Codec != "" || v.Audio != "" {
		t.Errorf("expected empty metadata, got %+v", v)
	}
}

func TestAssembleVariants_NoLinks(t *testing.T) {
	fields := newTestFieldSet(t)

	if variants := fields.AssembleVariants("coming soon, no links yet"); len(variants) != 0 {
		t.Errorf("expected no variants, got %d", len(variants))
	}
}

func TestAssembleVariants_WindowDoesNotLeakNextCaption(t *testing.T) {
	fields := newTestFieldSet(t)

	// The 720p caption sits more than a window behind the second magnet;
	// only the 1080p caption within the window may describe it.
	content := `720p 1.4GB magnet:?xt=urn:btih:AAA ` +
		strings.Repeat("x", lookBackWindow) +
		` 1080p 2.8GB magnet:?xt=urn:btih:BBB`
	variants := fields.AssembleVariants(content)

	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
	if variants[1].Resolution != Resolution1080p || variants[1].FileSize != "2.8GB" {
		t.Errorf("second variant picked up wrong caption: %+v", variants[1])
	}
}
