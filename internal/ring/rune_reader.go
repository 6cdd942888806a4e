package ring

import "io"

type runeWithSize struct {
	rune rune
	size int
	pos  Position
}

// Position is a location in a rune stream. Line and Column start at 1.
type Position struct {
	Line, Column int
}

// RuneReader is an io.RuneScanner which can unread up to size-1 runes and keeps track of the position.
type RuneReader struct {
	base io.RuneReader
	buf  *Buffer[runeWithSize]
	pos  Position
}

// NewRuneReader returns a RuneReader over r.
func NewRuneReader(r io.RuneReader, size int) *RuneReader {
	return &RuneReader{
		base: r,
		buf:  NewBuffer[runeWithSize](size),
		pos:  Position{Line: 1, Column: 1},
	}
}

// ReadRune reads the next rune.
func (r *RuneReader) ReadRune() (rune, int, error) {
	if r.buf.Empty() {
		c, n, err := r.base.ReadRune()
		if err != nil {
			return c, n, err
		}
		r.buf.Put(runeWithSize{rune: c, size: n, pos: r.pos})
	}
	rs := r.buf.Get()
	r.pos = rs.pos
	if rs.rune == '\n' {
		r.pos.Line++
		r.pos.Column = 1
	} else {
		r.pos.Column++
	}
	return rs.rune, rs.size, nil
}

// UnreadRune puts back the last rune read.
func (r *RuneReader) UnreadRune() error {
	r.buf.Backup()
	r.pos = r.buf.Current().pos
	return nil
}

// Position returns the position of the rune which will be read next.
func (r *RuneReader) Position() Position {
	return r.pos
}
