package document

import "strings"

// comparePos orders positions in document order.
func comparePos(a, b Position) int {
	if a.Line != b.Line {
		if a.Line < b.Line {
			return -1
		}
		return 1
	}
	if a.Ch != b.Ch {
		if a.Ch < b.Ch {
			return -1
		}
		return 1
	}
	return 0
}

// endOf computes where inserted text ends when placed at from.
func endOf(from Position, text string) Position {
	lines := strings.Count(text, "\n")
	if lines == 0 {
		return Position{Line: from.Line, Ch: from.Ch + len(text)}
	}
	return Position{
		Line: from.Line + lines,
		Ch:   len(text) - (strings.LastIndexByte(text, '\n') + 1),
	}
}

// adjustPos maps a position expressed against the content the applied op
// was applied to, into the content it produced. Positions before the
// replaced span are untouched, positions inside it clamp to the op's new
// end, and positions after it shift by the op's size change. Equal-point
// inserts shift the later position forward, so the already-sequenced op
// keeps priority.
func adjustPos(p Position, applied SequencedOp) Position {
	from, to := applied.Range.From, applied.Range.To
	if comparePos(p, from) < 0 {
		return p
	}
	end := endOf(from, applied.Text)
	if comparePos(p, to) < 0 {
		return end
	}
	out := p
	out.Line += end.Line - to.Line
	if p.Line == to.Line {
		out.Ch = end.Ch + (p.Ch - to.Ch)
	}
	return out
}

// transformRange rewrites a stale range through one applied op.
func transformRange(r Range, applied SequencedOp) Range {
	return Range{
		From: adjustPos(r.From, applied),
		To:   adjustPos(r.To, applied),
	}
}

// offsetOf converts a position into a byte offset in content. Reports
// false when the position does not exist (line past the end, or column
// past the end of its line).
func offsetOf(content string, p Position) (int, bool) {
	if p.Line < 0 || p.Ch < 0 {
		return 0, false
	}
	off := 0
	rest := content
	for l := 0; l < p.Line; l++ {
		i := strings.IndexByte(rest, '\n')
		if i < 0 {
			return 0, false
		}
		off += i + 1
		rest = rest[i+1:]
	}
	lineLen := len(rest)
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		lineLen = i
	}
	if p.Ch > lineLen {
		return 0, false
	}
	return off + p.Ch, true
}

// splice replaces the span r in content with text. Reports false when r
// does not address valid content.
func splice(content string, r Range, text string) (string, bool) {
	if comparePos(r.From, r.To) > 0 {
		return "", false
	}
	from, ok := offsetOf(content, r.From)
	if !ok {
		return "", false
	}
	to, ok := offsetOf(content, r.To)
	if !ok {
		return "", false
	}
	return content[:from] + text + content[to:], true
}
