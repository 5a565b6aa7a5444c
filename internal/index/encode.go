package index

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/killiandvcz/hyperion/internal/path"
)

// sep is the separator byte joining encoded segments. It is not legal
// inside a Named segment's textual form, making it a safe inert
// separator.
const sep = ":"

// encodeSegment renders one segment as its textual index-key form.
func encodeSegment(s path.Segment) string {
	switch s.Kind {
	case path.Named:
		return s.Name
	case path.ArrayIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case path.SingleWildcard:
		return "*"
	case path.MultiWildcard:
		return "**"
	default:
		return "?"
	}
}

// encodePrefixKey builds the prefix-index key for a concrete path:
// segments joined by sep, preserving the byte-prefix <-> path-prefix
// property the prefix index relies on.
func encodePrefixKey(p path.Path) string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = encodeSegment(s)
	}
	return strings.Join(parts, sep)
}

// encodeStructuralKey builds the single-level structural key for
// path p with a wildcard substituted at position wildcardPos:
// "len=N:0=seg0:1=*:2=seg2:...".
func encodeStructuralKey(p path.Path, wildcardPos int) string {
	var b strings.Builder
	b.WriteString("len=")
	b.WriteString(strconv.Itoa(len(p.Segments)))
	for i, s := range p.Segments {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('=')
		if i == wildcardPos {
			b.WriteByte('*')
		} else {
			b.WriteString(encodeSegment(s))
		}
	}
	return b.String()
}

// structuralKeyForPattern builds the lookup key for a single-wildcard
// pattern (exactly one SingleWildcard segment, no MultiWildcard).
func structuralKeyForPattern(pattern path.Path) (string, bool) {
	wildcardPos := -1
	for i, s := range pattern.Segments {
		if s.Kind == path.MultiWildcard {
			return "", false
		}
		if s.Kind == path.SingleWildcard {
			if wildcardPos != -1 {
				// multiple single wildcards: structural key format only
				// models one wildcard position; fall back to full scan.
				return "", false
			}
			wildcardPos = i
		}
	}
	if wildcardPos == -1 {
		return "", false
	}
	var b strings.Builder
	b.WriteString("len=")
	b.WriteString(strconv.Itoa(len(pattern.Segments)))
	for i, s := range pattern.Segments {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('=')
		if i == wildcardPos {
			b.WriteByte('*')
		} else {
			b.WriteString(encodeSegment(s))
		}
	}
	return b.String(), true
}

// encodeSuffixKey builds the multi-level suffix key for the segments
// starting at "start".
func encodeSuffixKey(p path.Path, start int) string {
	return encodePrefixKey(p.Suffix(start))
}

// encodePathSet/decodePathSet serialize a set of paths sharing an index
// key as length-prefixed textual entries.
func encodePathSet(paths []path.Path) []byte {
	var out []byte
	for _, p := range paths {
		s := p.String()
		lenBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(s)))
		out = append(out, lenBuf...)
		out = append(out, s...)
	}
	return out
}

func decodePathSet(data []byte) []path.Path {
	var out []path.Path
	for len(data) >= 4 {
		n := binary.BigEndian.Uint32(data[:4])
		data = data[4:]
		if uint32(len(data)) < n {
			break
		}
		s := string(data[:n])
		data = data[n:]
		if p, err := path.Parse(s); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func containsPath(set []path.Path, p path.Path) bool {
	for _, q := range set {
		if q.Equal(p) {
			return true
		}
	}
	return false
}

func removePath(set []path.Path, p path.Path) []path.Path {
	out := set[:0]
	for _, q := range set {
		if !q.Equal(p) {
			out = append(out, q)
		}
	}
	return out
}
