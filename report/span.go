package report

// Span is a half-open byte range within a single source file, expressed as
// 0-indexed line/column pairs for display purposes.
type Span struct {
	File string

	StartLine, StartCol int
	EndLine, EndCol     int
}

// Over returns a new span which spans over and between the two given spans.
func Over(start, end Span) Span {
	return Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// ZeroSpan is the empty span used for synthetic nodes that have no source
// text of their own (eg. desugared compound assignments take the span of
// the whole statement instead, but some synthetic nodes have nothing else
// to point at).
var ZeroSpan = Span{}
