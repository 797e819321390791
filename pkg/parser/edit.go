package parser

import (
	"sort"
	"strings"
)

// Edit replaces the source bytes in [Start, End) with Text.
type Edit struct {
	Start uint32
	End   uint32
	Text  string
}

// Spliced is a source range with edits applied.
type Spliced struct {
	Text  string
	start uint32
	edits []Edit
}

// Splice applies non-overlapping edits to source[start:end]. Edits outside
// the range, or overlapping an earlier edit, are ignored.
func Splice(source []byte, start, end uint32, edits []Edit) Spliced {
	sorted := make([]Edit, 0, len(edits))
	for _, e := range edits {
		if e.Start >= start && e.End <= end && e.Start <= e.End {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	b.Grow(int(end - start))
	applied := sorted[:0]
	last := start
	for _, e := range sorted {
		if e.Start < last {
			continue
		}
		b.Write(source[last:e.Start])
		b.WriteString(e.Text)
		last = e.End
		applied = append(applied, e)
	}
	b.Write(source[last:end])

	return Spliced{Text: b.String(), start: start, edits: applied}
}

// Offset maps an original source offset that is not inside an edit to its
// position in Text.
func (s Spliced) Offset(orig uint32) int {
	pos := int(orig) - int(s.start)
	for _, e := range s.edits {
		if e.End > orig {
			break
		}
		pos += len(e.Text) - int(e.End-e.Start)
	}
	return pos
}

// ApplyEdits applies edits to the whole source.
func ApplyEdits(source []byte, edits []Edit) []byte {
	if len(edits) == 0 {
		return append([]byte(nil), source...)
	}
	return []byte(Splice(source, 0, uint32(len(source)), edits).Text)
}
