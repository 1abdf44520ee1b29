package word_segmenter

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/akss-tools/namefix/embed_data"
	"github.com/akss-tools/namefix/word_segmenter/contracts"
)

const (
	defaultCacheSize = 4096

	// Runs shorter than this are never split further.
	minSplitLength = 4

	unknownCharCost = 2.0
)

// SegmentationError is returned when an identifier yields no words.
type SegmentationError struct {
	Identifier string
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("segmentation of %q produced no words", e.Identifier)
}

// wordSegmenter splits identifiers on their visible structure (underscores, camel humps,
// acronyms) and then breaks concatenated lowercase runs into dictionary words by choosing
// the minimum-cost split, where frequent words are cheap and unknown text is expensive.
type wordSegmenter struct {
	costs       map[string]float64
	maxWordLen  int
	unknownBase float64
	memo        *lru.Cache[string, []string]
}

// NewWordSegmenter returns a segmenter backed by the embedded dictionary.
func NewWordSegmenter(cacheSize int) (contracts.IWordSegmenter, error) {
	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(embed_data.Dictionary))
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	return NewWordSegmenterFromWords(words, cacheSize)
}

// NewWordSegmenterFromWords builds a segmenter from a frequency-ordered word list
// (most frequent first). Duplicates keep their first rank.
func NewWordSegmenterFromWords(words []string, cacheSize int) (contracts.IWordSegmenter, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	memo, err := lru.New[string, []string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create segmentation cache: %w", err)
	}

	var ranked []string
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		ranked = append(ranked, w)
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("dictionary is empty")
	}

	s := &wordSegmenter{
		costs: make(map[string]float64, len(ranked)),
		memo:  memo,
	}
	logN := math.Log(float64(len(ranked)))
	for i, w := range ranked {
		// Zipf: a word of rank r has probability ~ 1/(r log N).
		s.costs[w] = math.Log(float64(i+1) * math.Max(logN, 1))
		if len(w) > s.maxWordLen {
			s.maxWordLen = len(w)
		}
	}
	s.unknownBase = 2 * math.Log(float64(len(ranked))*math.Max(logN, 1))
	return s, nil
}

// Segment returns the lowercase words of identifier.
func (s *wordSegmenter) Segment(identifier string) ([]string, error) {
	if cached, ok := s.memo.Get(identifier); ok {
		return append([]string(nil), cached...), nil
	}

	var words []string
	for _, chunk := range splitStructure(identifier) {
		words = append(words, s.splitChunk(strings.ToLower(chunk))...)
	}
	if len(words) == 0 {
		return nil, &SegmentationError{Identifier: identifier}
	}

	s.memo.Add(identifier, words)
	return append([]string(nil), words...), nil
}

// splitChunk breaks one structural chunk. Trailing digits stay on the last word.
func (s *wordSegmenter) splitChunk(chunk string) []string {
	letters := strings.TrimRightFunc(chunk, unicode.IsDigit)
	digits := chunk[len(letters):]
	if letters == "" {
		return []string{chunk}
	}

	var words []string
	if _, known := s.costs[letters]; known || len(letters) < minSplitLength || !isLetters(letters) {
		words = []string{letters}
	} else {
		words = s.splitRun(letters)
	}
	words[len(words)-1] += digits
	return words
}

// splitRun finds the cheapest split of a lowercase run. Adjacent unknown pieces are merged.
func (s *wordSegmenter) splitRun(run string) []string {
	n := len(run)
	best := make([]float64, n+1)
	from := make([]int, n+1)
	for i := 1; i <= n; i++ {
		best[i] = math.Inf(1)
		for j := 0; j < i; j++ {
			c := best[j] + s.cost(run[j:i])
			if c < best[i] {
				best[i] = c
				from[i] = j
			}
		}
	}

	var pieces []string
	for i := n; i > 0; i = from[i] {
		pieces = append(pieces, run[from[i]:i])
	}
	for l, r := 0, len(pieces)-1; l < r; l, r = l+1, r-1 {
		pieces[l], pieces[r] = pieces[r], pieces[l]
	}

	var merged []string
	prevUnknown := false
	for _, p := range pieces {
		_, known := s.costs[p]
		if !known && prevUnknown {
			merged[len(merged)-1] += p
			continue
		}
		merged = append(merged, p)
		prevUnknown = !known
	}
	return merged
}

func (s *wordSegmenter) cost(piece string) float64 {
	if c, ok := s.costs[piece]; ok {
		return c
	}
	return s.unknownBase + unknownCharCost*float64(len(piece))
}

// splitStructure splits on non-alphanumerics, lower->Upper humps, acronym ends
// ("HTTPServer" -> "HTTP", "Server") and digit->letter transitions.
func splitStructure(identifier string) []string {
	runes := []rune(identifier)
	var chunks []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			case unicode.IsLetter(r) && unicode.IsDigit(prev):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return chunks
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
