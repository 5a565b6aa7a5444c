// Package path implements the path/pattern algebra: segment kinds,
// parsing, formatting, prefix checks and wildcard pattern matching.
package path

import (
	"strconv"
	"strings"

	"github.com/killiandvcz/hyperion/internal/herr"
)

// SegmentKind classifies a single path segment.
type SegmentKind int

const (
	// Named is an arbitrary non-empty string segment.
	Named SegmentKind = iota
	// ArrayIndex is a non-negative integer segment written [N].
	ArrayIndex
	// SingleWildcard matches exactly one segment of any kind.
	SingleWildcard
	// MultiWildcard matches zero or more consecutive segments.
	MultiWildcard
)

// Segment is one step of a Path.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Index int
}

// NamedSeg builds a Named segment.
func NamedSeg(name string) Segment { return Segment{Kind: Named, Name: name} }

// IndexSeg builds an ArrayIndex segment.
func IndexSeg(i int) Segment { return Segment{Kind: ArrayIndex, Index: i} }

// Single is the shared SingleWildcard segment value.
var Single = Segment{Kind: SingleWildcard}

// Multi is the shared MultiWildcard segment value.
var Multi = Segment{Kind: MultiWildcard}

// String renders a segment in its textual form.
func (s Segment) String() string {
	switch s.Kind {
	case Named:
		return s.Name
	case ArrayIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case SingleWildcard:
		return "*"
	case MultiWildcard:
		return "**"
	default:
		return "?"
	}
}

// Equal reports pointwise segment equality.
func (s Segment) Equal(o Segment) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case Named:
		return s.Name == o.Name
	case ArrayIndex:
		return s.Index == o.Index
	default:
		return true
	}
}

// Path is an ordered, immutable sequence of segments. The zero value is
// the empty path (the conceptual root).
type Path struct {
	Segments []Segment
}

// Empty reports whether the path has no segments.
func (p Path) Empty() bool { return len(p.Segments) == 0 }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.Segments) }

// String renders a path in its textual form, round-tripping through
// Parse for every path built from legal segments.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p.Segments {
		if seg.Kind != ArrayIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Append returns a new Path with extra segments appended.
func (p Path) Append(segs ...Segment) Path {
	out := make([]Segment, 0, len(p.Segments)+len(segs))
	out = append(out, p.Segments...)
	out = append(out, segs...)
	return Path{Segments: out}
}

// Suffix returns the segments starting at index i (i may equal Len(),
// yielding the empty path).
func (p Path) Suffix(i int) Path {
	if i >= len(p.Segments) {
		return Path{}
	}
	return Path{Segments: append([]Segment(nil), p.Segments[i:]...)}
}

// Equal reports structural, case-sensitive path equality.
func (p Path) Equal(o Path) bool {
	if len(p.Segments) != len(o.Segments) {
		return false
	}
	for i := range p.Segments {
		if !p.Segments[i].Equal(o.Segments[i]) {
			return false
		}
	}
	return true
}

// Parse parses a textual path: segments joined by '.';
// array indices written [N] attached directly to the preceding segment
// with no separator; '*' and '**' are wildcards. Parsing fails on empty
// input, on an empty segment (including a leading or trailing '.'), on
// malformed bracket syntax, and on any character other than '.' or '['
// directly after a closing ']'.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, herr.PathError("empty path")
	}

	sc := &scanner{src: raw}
	var segs []Segment

	for {
		seg, err := sc.scanSegment()
		if err != nil {
			return Path{}, err
		}
		segs = append(segs, seg)

		if sc.atEnd() {
			break
		}
		switch sc.peek() {
		case '.':
			sc.advance()
			if sc.atEnd() {
				return Path{}, herr.PathError("trailing '.' in path %q", raw)
			}
		case '[':
			// next iteration scans the bracket directly, no separator consumed
		default:
			return Path{}, herr.PathError("unexpected character %q in path %q", sc.peek(), raw)
		}
	}

	return Path{Segments: segs}, nil
}

// MustParse parses raw and panics on error. Intended for constants and
// tests, not for untrusted input.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) atEnd() bool   { return s.pos >= len(s.src) }
func (s *scanner) peek() byte    { return s.src[s.pos] }
func (s *scanner) advance() byte { b := s.src[s.pos]; s.pos++; return b }

func (s *scanner) scanSegment() (Segment, error) {
	if !s.atEnd() && s.peek() == '[' {
		return s.scanIndex()
	}
	start := s.pos
	for !s.atEnd() && s.peek() != '.' && s.peek() != '[' {
		s.advance()
	}
	text := s.src[start:s.pos]
	if text == "" {
		return Segment{}, herr.PathError("empty segment in path %q", s.src)
	}
	switch text {
	case "*":
		return Single, nil
	case "**":
		return Multi, nil
	default:
		return NamedSeg(text), nil
	}
}

func (s *scanner) scanIndex() (Segment, error) {
	// s.peek() == '['
	s.advance()
	start := s.pos
	for !s.atEnd() && s.peek() != ']' {
		s.advance()
	}
	if s.atEnd() {
		return Segment{}, herr.PathError("unterminated '[' in path %q", s.src)
	}
	digits := s.src[start:s.pos]
	s.advance() // consume ']'

	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return Segment{}, herr.PathError("invalid array index %q in path %q", digits, s.src)
	}
	return IndexSeg(n), nil
}

// StartsWith reports whether prefix is a segment-wise prefix of p:
// true iff prefix.Len() <= p.Len() and every prefix segment
// matches the corresponding p segment under single-segment matching
// rules (wildcards match any single segment; Named/ArrayIndex require
// exact equality; no cross-kind match succeeds).
func (p Path) StartsWith(prefix Path) bool {
	if prefix.Len() > p.Len() {
		return false
	}
	for i := range prefix.Segments {
		if !segmentMatchesSingle(prefix.Segments[i], p.Segments[i]) {
			return false
		}
	}
	return true
}

func segmentMatchesSingle(pat, seg Segment) bool {
	switch pat.Kind {
	case SingleWildcard, MultiWildcard:
		return true
	case Named:
		return seg.Kind == Named && seg.Name == pat.Name
	case ArrayIndex:
		return seg.Kind == ArrayIndex && seg.Index == pat.Index
	default:
		return false
	}
}

// Matches reports whether p matches pattern, using the recursive
// algorithm: an empty pattern matches only the empty path; whenever the
// next pattern segment is MultiWildcard, it matches any remaining
// suffix if it is the final pattern segment, or otherwise tries the
// pattern tail against every suffix of the remaining path; any other
// segment is consumed one-for-one against the next path segment before
// recursing on the tails.
func (p Path) Matches(pattern Path) bool {
	return matches(p.Segments, pattern.Segments)
}

func matches(path, pattern []Segment) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}

	head := pattern[0]
	if head.Kind == MultiWildcard {
		if len(pattern) == 1 {
			return true
		}
		tail := pattern[1:]
		for start := 0; start <= len(path); start++ {
			if matches(path[start:], tail) {
				return true
			}
		}
		return false
	}

	// head is a concrete segment or a SingleWildcard: consume exactly one
	// path segment and recurse on the tail. This single-step consumption
	// (rather than a one-shot whole-sequence length check) is what lets a
	// MultiWildcard appearing anywhere past the first pattern segment
	// still reach the suffix-enumeration branch above once recursion gets
	// to it.
	if len(path) == 0 || !segmentMatchesSingle(head, path[0]) {
		return false
	}
	return matches(path[1:], pattern[1:])
}

// HasWildcard reports whether the path contains any wildcard segment.
func (p Path) HasWildcard() bool {
	for _, s := range p.Segments {
		if s.Kind == SingleWildcard || s.Kind == MultiWildcard {
			return true
		}
	}
	return false
}

// FirstMultiWildcard returns the index of the first MultiWildcard
// segment, or -1 if none is present.
func (p Path) FirstMultiWildcard() int {
	for i, s := range p.Segments {
		if s.Kind == MultiWildcard {
			return i
		}
	}
	return -1
}
