package scrape

// lookBackWindow is the number of characters preceding a link occurrence
// that are scanned for that link's descriptive metadata. The source embeds
// a short caption immediately before each link; the window must cover the
// caption without leaking the previous variant's caption.
const lookBackWindow = 500

// AssembleVariants converts an unstructured block of markup containing zero
// or more links into an ordered list of download variants.
//
// Magnet occurrences always open a new variant. Direct-link occurrences
// attach to the earliest variant with the same (resolution, fileSize) pair
// that has no direct link yet, and open a new variant otherwise. Variants
// are ordered by creation: magnet variants first, then unmatched direct
// links. A link whose window yields no metadata still produces a variant.
func (f *FieldSet) AssembleVariants(content string) []DownloadVariant {
	var variants []DownloadVariant

	for _, loc := range magnetPattern.FindAllStringIndex(content, -1) {
		v := f.variantFromWindow(content, loc[0])
		v.MagnetLink = content[loc[0]:loc[1]]
		variants = append(variants, v)
	}

	if f.directLink == nil {
		return variants
	}

	for _, loc := range f.directLink.FindAllStringIndex(content, -1) {
		v := f.variantFromWindow(content, loc[0])
		uri := content[loc[0]:loc[1]]

		if i := findMergeTarget(variants, v); i >= 0 {
			variants[i].DirectLink = uri
			continue
		}

		v.DirectLink = uri
		variants = append(variants, v)
	}

	return variants
}

// variantFromWindow extracts per-link metadata from the look-back window
// ending at the link's offset.
func (f *FieldSet) variantFromWindow(content string, offset int) DownloadVariant {
	start := offset - lookBackWindow
	if start < 0 {
		start = 0
	}
	window := content[start:offset]

	resolution := f.Resolution(window)
	if resolution == "" {
		resolution = ResolutionUnknown
	}

	return DownloadVariant{
		Resolution: resolution,
		FileSize:   ExtractFileSize(window),
		Codec:      f.Codec(window),
		Audio:      f.Audio(window),
	}
}

// findMergeTarget returns the index of the earliest variant matching the
// candidate's (resolution, fileSize) pair that has no direct link yet, or
// -1 when no such variant exists.
func findMergeTarget(variants []DownloadVariant, candidate DownloadVariant) int {
	for i := range variants {
		if variants[i].DirectLink != "" {
			continue
		}
		if variants[i].Resolution == candidate.Resolution && variants[i].FileSize == candidate.FileSize {
			return i
		}
	}
	return -1
}
