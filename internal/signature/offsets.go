package signature

import (
	"sort"
	"unicode/utf8"
)

// charOffsetTable maps code-point index -> byte offset of that code point,
// decoding invalid byte sequences as single-byte replacement characters (the
// same "decode with replacement" rule used for prototype text).
type charOffsetTable struct {
	offsets []int // offsets[i] = byte offset of char i; offsets[len-1] = len(data)
}

func buildCharOffsetTable(data []byte) *charOffsetTable {
	offsets := make([]int, 0, len(data)+1)
	pos := 0
	for pos < len(data) {
		offsets = append(offsets, pos)
		_, size := utf8.DecodeRune(data[pos:])
		if size <= 0 {
			size = 1
		}
		pos += size
	}
	offsets = append(offsets, len(data))
	return &charOffsetTable{offsets: offsets}
}

// charIndex returns the largest char index whose byte offset is <= bytePos.
func (t *charOffsetTable) charIndex(bytePos int) int {
	// offsets is strictly increasing except for the trailing sentinel which
	// may repeat the previous value when data is empty.
	i := sort.Search(len(t.offsets), func(i int) bool { return t.offsets[i] > bytePos })
	if i == 0 {
		return 0
	}
	return i - 1
}

// decodeReplacement converts raw bytes to a valid UTF-8 string, replacing
// invalid sequences with U+FFFD one byte at a time.
func decodeReplacement(data []byte) string {
	out := make([]rune, 0, len(data))
	pos := 0
	for pos < len(data) {
		r, size := utf8.DecodeRune(data[pos:])
		out = append(out, r)
		if size <= 0 {
			size = 1
		}
		pos += size
	}
	return string(out)
}
