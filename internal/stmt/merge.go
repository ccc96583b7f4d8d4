package stmt

import (
	"fmt"
	"strings"

	"f90norm/internal/scan"
	"f90norm/internal/source"
)

// ContinuationError reports a continuation marker on the final physical line
// of the input, with nothing left to continue to.
type ContinuationError struct {
	Line uint32
}

func (e *ContinuationError) Error() string {
	return fmt.Sprintf("line %d: dangling continuation marker at end of input", e.Line)
}

// MergeContinuations folds continuation lines into logical statements.
//
// A line continues when its code portion, right-trimmed, ends with '&'; the
// marker is stripped, whitespace left of it is kept. A continuation line may
// start with a leading '&' (after optional blanks): the blanks and the
// marker are dropped and the text after it is appended verbatim. No
// separator is ever inserted, so a statement may be broken mid-token.
// Pure-comment and blank lines inside a pending continuation contribute no
// code, but their comments are recorded in position. Every line outside a
// continuation becomes its own statement, blank and comment-only lines
// included.
func MergeContinuations(lines []source.Line) ([]Statement, error) {
	var out []Statement
	for i := 0; i < len(lines); {
		line := lines[i]
		code, comment := scan.SplitCodeComment(line.Text)

		frag, continues := cutTrailingMarker(code)
		st := Statement{Code: frag, Lines: []source.Line{line}}
		if comment != "" {
			st.Comments = append(st.Comments, Comment{Line: line.Num, Text: comment})
		}
		i++
		if !continues {
			out = append(out, st)
			continue
		}

		markerLine := line.Num
		closed := false
		for i < len(lines) {
			next := lines[i]
			nextCode, nextComment := scan.SplitCodeComment(next.Text)

			if strings.TrimSpace(nextCode) == "" {
				// комментарий или пустая строка внутри продолжения
				if nextComment != "" {
					st.Comments = append(st.Comments, Comment{Line: next.Num, Text: nextComment})
				}
				st.Lines = append(st.Lines, next)
				i++
				continue
			}

			frag := cutLeadingMarker(nextCode)
			frag, continues := cutTrailingMarker(frag)
			st.Code += frag
			st.Lines = append(st.Lines, next)
			if nextComment != "" {
				st.Comments = append(st.Comments, Comment{Line: next.Num, Text: nextComment})
			}
			i++
			if continues {
				markerLine = next.Num
				continue
			}
			closed = true
			break
		}
		if !closed {
			return nil, &ContinuationError{Line: markerLine}
		}
		out = append(out, st)
	}
	return out, nil
}

// cutTrailingMarker strips a trailing '&' (ignoring trailing blanks) and
// reports whether the line continues. Whitespace before the marker stays:
// "x = 1 + &" keeps its "x = 1 + " so that fragments concatenate without an
// inserted separator.
func cutTrailingMarker(code string) (string, bool) {
	trimmed := strings.TrimRight(code, " \t")
	if !strings.HasSuffix(trimmed, "&") {
		return code, false
	}
	return trimmed[:len(trimmed)-1], true
}

// cutLeadingMarker strips an optional leading '&' together with the blanks
// before it; the text after the marker is kept verbatim. Without a marker
// the line is returned untouched, leading blanks included.
func cutLeadingMarker(code string) string {
	trimmed := strings.TrimLeft(code, " \t")
	if strings.HasPrefix(trimmed, "&") {
		return trimmed[1:]
	}
	return code
}
