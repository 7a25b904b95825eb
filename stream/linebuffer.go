package stream

import "bytes"

// LineBuffer reassembles newline-delimited lines from incremental byte
// chunks. The trailing fragment of each chunk is carried over and completed
// by a later chunk, so feeding the same bytes in any chunking yields the
// same line sequence.
type LineBuffer struct {
	carry []byte
}

// Feed appends a chunk and returns every line completed by it, without the
// trailing newline. The last incomplete fragment stays buffered.
func (b *LineBuffer) Feed(p []byte) [][]byte {
	if len(p) == 0 {
		return nil
	}
	b.carry = append(b.carry, p...)

	var lines [][]byte
	for {
		i := bytes.IndexByte(b.carry, '\n')
		if i < 0 {
			break
		}
		line := make([]byte, i)
		copy(line, b.carry[:i])
		lines = append(lines, line)
		b.carry = b.carry[i+1:]
	}
	return lines
}

// Tail returns the buffered fragment that never got its newline. Only
// meaningful once the stream has ended.
func (b *LineBuffer) Tail() []byte {
	return b.carry
}
