// Package anchor converts between stable, serializable position references
// and transient ranges inside the currently rendered view.
//
// An anchor survives re-pagination: the structural part (block index plus
// in-block offsets) is the exact fast path, and a short text fingerprint
// recovers the position by search when the layout has reflowed underneath
// it. Fingerprint matching can land on the wrong occurrence when the same
// short text repeats in a document; that is a known limitation.
package anchor

import (
	"errors"
	"fmt"
	"strings"

	"ereader-be/pkg/rendition"
)

// ErrNotFound reports that an anchor cannot be resolved against the
// current view. Callers must treat this as "not displayable right now" and
// retry on the next render pass, not as a fatal error.
var ErrNotFound = errors.New("anchor: not resolvable in current view")

// fingerprintLen is how much of the original snippet an anchor keeps for
// fallback search.
const fingerprintLen = 24

// Anchor is an opaque serialized position reference:
//
//	b<block>.<start>-<end>~<fingerprint>
type Anchor string

// Range is a transient span inside a rendered view: rune offsets within
// the text of one block. A collapsed range has Start == End.
type Range struct {
	Block int
	Start int
	End   int
}

// Fingerprint extracts the stored text fingerprint of the anchor.
func (a Anchor) Fingerprint() string {
	if i := strings.IndexByte(string(a), '~'); i >= 0 {
		return string(a)[i+1:]
	}
	return ""
}

// Encode produces an anchor for a live range in the given view.
func Encode(view *rendition.View, rng Range) (Anchor, error) {
	blk := view.BlockByIndex(rng.Block)
	if blk == nil {
		return "", fmt.Errorf("anchor: block %d not in view", rng.Block)
	}
	runes := []rune(blk.Text())
	if rng.Start < 0 || rng.End > len(runes) || rng.Start > rng.End {
		return "", fmt.Errorf("anchor: range %d-%d out of block bounds", rng.Start, rng.End)
	}
	fp := fingerprint(string(runes[rng.Start:rng.End]))
	return Anchor(fmt.Sprintf("b%d.%d-%d~%s", rng.Block, rng.Start, rng.End, fp)), nil
}

// Resolve turns an anchor back into a range inside the view. The
// structural coordinates are tried first and verified against the stored
// fingerprint; when they no longer line up (the document reflowed), the
// visible text is searched for the first fingerprint occurrence.
func Resolve(a Anchor, view *rendition.View) (Range, error) {
	block, start, end, fp, err := parse(a)
	if err != nil {
		return Range{}, err
	}

	if blk := view.BlockByIndex(block); blk != nil {
		runes := []rune(blk.Text())
		if start >= 0 && end <= len(runes) && start <= end {
			if fp == "" || strings.HasPrefix(strings.TrimSpace(string(runes[start:end])), fp) {
				return Range{Block: block, Start: start, End: end}, nil
			}
		}
	}

	if fp == "" {
		return Range{}, ErrNotFound
	}
	width := end - start
	if width < len([]rune(fp)) {
		width = len([]rune(fp))
	}
	for _, blk := range view.Blocks {
		text := blk.Text()
		if idx := strings.Index(text, fp); idx >= 0 {
			off := len([]rune(text[:idx]))
			stop := off + width
			if max := len([]rune(text)); stop > max {
				stop = max
			}
			return Range{Block: blk.Index, Start: off, End: stop}, nil
		}
	}
	return Range{}, ErrNotFound
}

func parse(a Anchor) (block, start, end int, fp string, err error) {
	s := string(a)
	if !strings.HasPrefix(s, "b") {
		return 0, 0, 0, "", fmt.Errorf("anchor: malformed %q", s)
	}
	body := s[1:]
	if i := strings.IndexByte(body, '~'); i >= 0 {
		fp = body[i+1:]
		body = body[:i]
	}
	if _, err = fmt.Sscanf(body, "%d.%d-%d", &block, &start, &end); err != nil {
		return 0, 0, 0, "", fmt.Errorf("anchor: malformed %q", s)
	}
	return block, start, end, fp, nil
}

func fingerprint(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > fingerprintLen {
		runes = runes[:fingerprintLen]
	}
	return string(runes)
}
