package pac

import (
	"io"
)

// Copies data from a ByteStream to a writer, latching the first error. After
// anything fails, every further call is skipped, so a copy loop only needs to
// check IsPass once it's done (or whenever it wants to bail early).
type StreamPass struct {
	src ByteStream
	dst io.Writer
	err error
}

func NewStreamPass(src ByteStream, dst io.Writer) *StreamPass {
	return &StreamPass{src: src, dst: dst}
}

// Fill b entirely from the source, or latch the error and return 0
func (sp *StreamPass) ReadPass(b []byte) int {
	if sp.err != nil {
		return 0
	}
	if err := sp.src.ReadExact(b); err != nil {
		sp.err = err
		return 0
	}
	return len(b)
}

// Write all of b to the destination (blocking until it's all written),
// or latch the error and return what was written so far
func (sp *StreamPass) WritePass(b []byte) int {
	if sp.err != nil {
		return 0
	}
	written := 0
	for written < len(b) {
		n, err := sp.dst.Write(b[written:])
		written += n
		if err != nil {
			sp.err = err
			return written
		}
		if n == 0 {
			sp.err = io.ErrShortWrite
			return written
		}
	}
	return written
}

func (sp *StreamPass) IsPass() error {
	return sp.err
}
