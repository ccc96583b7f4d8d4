package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a source file.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
	FileNormalizedCRLF
	// FileDecodedLatin1 indicates the raw bytes were not valid UTF-8 and were
	// reinterpreted as ISO-8859-1. Common for Fortran archives from the 90s.
	FileDecodedLatin1
)

// Line is one physical source line: its text without the trailing newline and
// its 1-based number in the file. Lines are immutable once the file is added.
type Line struct {
	Num  uint32
	Text string
}

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte // normalized bytes (LF endings, no BOM)
	Lines   []Line
	Hash    [32]byte
	Flags   FileFlags
}

// Pos is a line-granular position used by diagnostics. The normalizer works
// on whole lines, so there is no column component.
type Pos struct {
	File FileID
	Line uint32 // 1-based; 0 means "no particular line"
}

// IsValid reports whether the position points at an actual line.
func (p Pos) IsValid() bool {
	return p.Line != 0
}
