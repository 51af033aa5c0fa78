package source

import (
	"sort"
	"strings"
)

// File is one registered source file. Line starts are precomputed so that
// span-to-line/column mapping is a binary search.
type File struct {
	ID         FileID
	Path       string
	Text       string
	lineStarts []uint32
}

// FileSet owns every file of one compilation unit.
type FileSet struct {
	files []*File
}

func NewFileSet() *FileSet {
	return &FileSet{}
}

// Add registers a file and returns its ID.
func (fs *FileSet) Add(path, text string) FileID {
	id := FileID(len(fs.files))
	f := &File{ID: id, Path: path, Text: text}
	f.lineStarts = append(f.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			f.lineStarts = append(f.lineStarts, uint32(i+1))
		}
	}
	fs.files = append(fs.files, f)
	return id
}

func (fs *FileSet) File(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return fs.files[int(id)]
}

func (fs *FileSet) Files() []*File {
	return fs.files
}

// Position is a 1-based line/column pair for human-facing output.
type Position struct {
	Line   int
	Column int
}

// Position maps a byte offset to line and column. Offsets past the end of the
// file clamp to the last line.
func (f *File) Position(offset uint32) Position {
	if offset > uint32(len(f.Text)) {
		offset = uint32(len(f.Text))
	}
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	})
	start := f.lineStarts[line-1]
	return Position{Line: line, Column: int(offset-start) + 1}
}

// Line returns the text of the 1-based line without its trailing newline.
func (f *File) Line(line int) string {
	if line < 1 || line > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[line-1]
	end := uint32(len(f.Text))
	if line < len(f.lineStarts) {
		end = f.lineStarts[line]
	}
	return strings.TrimRight(f.Text[start:end], "\r\n")
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return len(f.lineStarts)
}
