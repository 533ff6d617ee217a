// Package allcode implements the concatenated source archive format
// produced by flattening a source tree into a single text file.
//
// An archive is a sequence of file records:
//
//	<<<FILE:path/to/file.go>>>
//	...file content...
//	<<<ENDFILE>>>
//	<<<FILE:next/file.go>>>
//	...
//	<<<ENDFILE>>>
//
// Whitespace surrounding the path and the content is insignificant.
// The end marker may be omitted on the final record.
// There is no escaping: a file whose content contains one of the
// markers cannot be represented.
package allcode

import (
	"errors"
	"iter"
	"os"
	"strings"
	"unicode"
)

const (
	// StartMarker introduces a record and is immediately followed by its path.
	StartMarker = "<<<FILE:"
	// HeaderTerminator separates a record's path from its content.
	HeaderTerminator = ">>>"
	// EndMarker terminates a record's content.
	EndMarker = "<<<ENDFILE>>>"
)

// previewLen is the number of characters of a block shown by Preview.
const previewLen = 50

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

var (
	// ErrEmptyBlock is returned by ParseBlock for a block holding
	// nothing but whitespace. Such blocks are expected around markers
	// and are skipped without a warning.
	ErrEmptyBlock = errors.New("empty block")
	// ErrNoHeader is returned by ParseBlock when a block has no
	// header terminator.
	ErrNoHeader = errors.New("header delimiter " + HeaderTerminator + " not found")
)

// Record is a single file extracted from an archive.
type Record struct {
	Path    string
	Content string
}

// Skip describes a block that did not yield a record.
type Skip struct {
	// Index is the position of the block in the sequence produced by Blocks.
	Index   int
	Preview string
	Err     error
}

// Archive is a parsed archive.
type Archive struct {
	Records []Record
	Skipped []Skip
	// Blocks holds the number of raw blocks the archive split into.
	Blocks int
}

// Blocks returns the raw blocks of text in order, as if text had been
// split on StartMarker. The first block is whatever precedes the first
// marker, which is usually empty. Blocks are produced lazily.
func Blocks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			before, after, found := strings.Cut(text, StartMarker)
			if !yield(before) || !found {
				return
			}
			text = after
		}
	}
}

// CountBlocks returns the number of blocks Blocks yields for text.
func CountBlocks(text string) int {
	return strings.Count(text, StartMarker) + 1
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF,
// so archives flattened on any platform unpack to LF files.
func NormalizeNewlines(text string) string {
	return newlines.Replace(text)
}

// isSpace reports whether r is whitespace. Besides the Unicode white
// space characters it accepts the ASCII file, group, record and unit
// separators, which flattening tools also treat as whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r >= '\x1c' && r <= '\x1f'
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// ParseBlock parses a single raw block into a record.
// It returns ErrEmptyBlock for a whitespace-only block
// and ErrNoHeader when the block has no header terminator.
func ParseBlock(block string) (Record, error) {
	block = trimSpace(block)
	if block == "" {
		return Record{}, ErrEmptyBlock
	}
	header, body, ok := strings.Cut(block, HeaderTerminator)
	if !ok {
		return Record{}, ErrNoHeader
	}
	content := trimSpace(body)
	if trimmed, ok := strings.CutSuffix(content, EndMarker); ok {
		content = strings.TrimRightFunc(trimmed, isSpace)
	}
	return Record{
		Path:    trimSpace(header),
		Content: content,
	}, nil
}

// ParseIndexed parses the block at position index of the sequence
// produced by Blocks. It returns the record and true for a well-formed
// block, a Skip for a malformed one, and neither for an empty block.
func ParseIndexed(index int, block string) (Record, *Skip, bool) {
	r, err := ParseBlock(block)
	switch {
	case err == nil:
		return r, nil, true
	case errors.Is(err, ErrEmptyBlock):
		return Record{}, nil, false
	default:
		return Record{}, &Skip{
			Index:   index,
			Preview: Preview(block),
			Err:     err,
		}, false
	}
}

// Parse parses the archive held in data, normalizing line endings first.
// Malformed blocks are reported in the Skipped field; parsing never fails.
func Parse(data []byte) *Archive {
	text := NormalizeNewlines(string(data))
	a := &Archive{
		Blocks: CountBlocks(text),
	}
	i := 0
	for block := range Blocks(text) {
		r, skip, ok := ParseIndexed(i, block)
		switch {
		case ok:
			a.Records = append(a.Records, r)
		case skip != nil:
			a.Skipped = append(a.Skipped, *skip)
		}
		i++
	}
	return a
}

// ParseFile parses the named archive file.
func ParseFile(file string) (*Archive, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Parse(data), nil
}

// Preview returns the leading characters of the trimmed block,
// suitable for identifying it in diagnostics.
func Preview(block string) string {
	block = trimSpace(block)
	n := 0
	for i := range block {
		if n == previewLen {
			return block[:i]
		}
		n++
	}
	return block
}
