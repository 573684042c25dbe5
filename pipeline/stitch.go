package pipeline

import (
	"strings"
)

// Stitcher merges per-segment transcripts into one text, deduplicating the
// words the deliberate segment overlap transcribed twice. Matching is
// word-level: the tail of the accumulated text is compared against the head
// of each incoming segment inside a window sized from the overlap duration.
type Stitcher struct {
	// windowWords bounds how far from the seam the overlap search looks.
	windowWords int
	// minMatchWords is the shortest word run accepted as a real overlap.
	// Single-word matches are too often coincidence ("the", "and").
	minMatchWords int
}

// NewStitcher creates a Stitcher tuned for the given segment overlap.
// The search window assumes conversational speech of roughly 2.5 words per
// second, doubled for slack on both sides of the seam.
func NewStitcher(overlapSeconds float64) *Stitcher {
	window := int(overlapSeconds * 2.5 * 2)
	if window < 4 {
		window = 4
	}
	return &Stitcher{
		windowWords:   window,
		minMatchWords: 2,
	}
}

// Stitch joins the segment texts in order, removing duplicated overlap words
// at each seam. When no confident overlap is found at a seam the texts are
// joined verbatim: duplicated words read better than silently dropped ones.
func (s *Stitcher) Stitch(texts []string) string {
	switch len(texts) {
	case 0:
		return ""
	case 1:
		return strings.TrimSpace(texts[0])
	}

	acc := strings.Fields(texts[0])
	for _, text := range texts[1:] {
		next := strings.Fields(text)
		if len(next) == 0 {
			continue
		}
		if len(acc) == 0 {
			acc = next
			continue
		}

		tailStart := len(acc) - s.windowWords
		if tailStart < 0 {
			tailStart = 0
		}
		tail := acc[tailStart:]

		head := next
		if len(head) > s.windowWords {
			head = head[:s.windowWords]
		}

		offset, run := longestSeamMatch(tail, head)
		if run >= s.minMatchWords {
			// Drop the accumulated words from the match onward; the
			// incoming segment re-speaks them and carries the newer
			// context past the seam.
			acc = acc[:tailStart+offset]
		}
		acc = append(acc, next...)
	}

	return strings.Join(acc, " ")
}

// longestSeamMatch finds the longest run of words that ends the tail and
// starts the head, comparing case-insensitively. It returns the offset into
// tail where the run begins and the run length in words; a zero run means no
// overlap was found.
func longestSeamMatch(tail, head []string) (offset, run int) {
	bestOffset, bestRun := 0, 0

	for start := 0; start < len(tail); start++ {
		n := 0
		for start+n < len(tail) && n < len(head) && wordsEqual(tail[start+n], head[n]) {
			n++
		}
		// Only a run reaching the end of the tail is a seam overlap;
		// an interior match is a repeated phrase, not duplication.
		if start+n == len(tail) && n > bestRun {
			bestOffset, bestRun = start, n
		}
	}
	return bestOffset, bestRun
}

func wordsEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}
