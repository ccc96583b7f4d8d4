package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func removeBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, utf8BOM) {
		return content[len(utf8BOM):], true
	}
	return content, false
}

func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, []byte{'\r'}) {
		return content, false
	}
	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' {
			// \r\n схлопываем в \n, одиночный \r тоже превращаем в \n
			if i+1 < len(content) && content[i+1] == '\n' {
				continue
			}
			out = append(out, '\n')
			continue
		}
		out = append(out, content[i])
	}
	return out, true
}

// decodeLatin1IfNeeded reinterprets content as ISO-8859-1 when it is not
// valid UTF-8. Old Fortran sources routinely carry accented names in
// comments; refusing them would make the tool useless on real archives.
func decodeLatin1IfNeeded(content []byte) ([]byte, bool) {
	if utf8.Valid(content) {
		return content, false
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		// Latin-1 принимает любой байт, но на всякий случай
		return content, false
	}
	return decoded, true
}

// splitLines cuts normalized content into numbered lines. The trailing
// newline, if any, does not produce an extra empty line.
func splitLines(content []byte) []Line {
	if len(content) == 0 {
		return nil
	}
	text := string(content)
	text = strings.TrimSuffix(text, "\n")
	parts := strings.Split(text, "\n")
	lines := make([]Line, len(parts))
	for i, part := range parts {
		num, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("line number overflow: %w", err))
		}
		lines[i] = Line{Num: num, Text: part}
	}
	return lines
}

// JoinLines renders lines back to file content with a trailing newline.
func JoinLines(lines []Line) []byte {
	if len(lines) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line.Text)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
