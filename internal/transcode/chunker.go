package transcode

import "unicode"

// Chunk splits text into segments of at most limit runes, cutting at
// whitespace where possible. Concatenating the segments yields text.
//
// From each cut the scan looks at position cut+limit. Whitespace there is a
// cut point. Otherwise the scan walks back to the nearest whitespace and cuts
// right after it. Whitespace at the start of a segment never closes it, so a
// segment is never whitespace alone unless the text is. A run of limit
// non-space runes is cut hard at the limit.
func Chunk(text string, limit int) []string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return []string{text}
	}

	var out []string
	prev := 0
	for len(runes)-prev > limit {
		cut := prev + limit
		if !unicode.IsSpace(runes[cut]) {
			cut = backScan(runes, prev, prev+limit)
		}
		out = append(out, string(runes[prev:cut]))
		prev = cut
	}
	return append(out, string(runes[prev:]))
}

// backScan returns the largest q in (prev+1, p] with runes[q-1] whitespace,
// or p when there is none.
func backScan(runes []rune, prev, p int) int {
	for q := p; q > prev+1; q-- {
		if unicode.IsSpace(runes[q-1]) {
			return q
		}
	}
	return p
}
