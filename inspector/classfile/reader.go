package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrMalformed reports class file structure violation
	ErrMalformed = errors.New("malformed class file")
	// ErrTruncated reports class file shorter than its declared structure
	ErrTruncated = fmt.Errorf("%w: truncated", ErrMalformed)
	// ErrUnsupportedVersion reports class file format newer or older than supported
	ErrUnsupportedVersion = errors.New("unsupported class file version")
)

// reader reads big-endian class file structures, the first failure sticks
type reader struct {
	data   []byte
	offset int
	base   int // offset of data within the whole class file
	err    error
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) ensure(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || len(r.data)-r.offset < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d", ErrTruncated, n, r.base+r.offset)
		return false
	}
	return true
}

func (r *reader) failf(format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s at offset %d", ErrMalformed, fmt.Sprintf(format, args...), r.base+r.offset)
	}
}

func (r *reader) u1() uint8 {
	if !r.ensure(1) {
		return 0
	}
	ret := r.data[r.offset]
	r.offset++
	return ret
}

func (r *reader) u2() uint16 {
	if !r.ensure(2) {
		return 0
	}
	ret := binary.BigEndian.Uint16(r.data[r.offset:])
	r.offset += 2
	return ret
}

func (r *reader) u4() uint32 {
	if !r.ensure(4) {
		return 0
	}
	ret := binary.BigEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return ret
}

func (r *reader) bytes(n int) []byte {
	if !r.ensure(n) {
		return nil
	}
	ret := r.data[r.offset : r.offset+n]
	r.offset += n
	return ret
}

func (r *reader) skip(n int) {
	if r.ensure(n) {
		r.offset += n
	}
}

// sub returns reader over the next n bytes and advances past them
func (r *reader) sub(n int) *reader {
	offset := r.offset
	data := r.bytes(n)
	if data == nil && r.err != nil {
		return &reader{err: r.err}
	}
	return &reader{data: data, base: r.base + offset}
}

// merge propagates sub reader failure
func (r *reader) merge(sub *reader) {
	if r.err == nil && sub.err != nil {
		r.err = sub.err
	}
}

func (r *reader) remaining() int {
	return len(r.data) - r.offset
}
