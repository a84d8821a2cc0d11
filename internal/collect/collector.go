package collect

import (
	"errors"
	"fmt"
	"io"
)

// MaxReserve is the largest declared size hint the collector will trust with
// an up-front allocation. Hints above this fall back to fragment mode rather
// than failing, since the declared length may simply be wrong.
const MaxReserve = 1 << 30 // 1 GiB

// readChunkSize is the read granularity used in fragment mode.
const readChunkSize = 32 * 1024

// ErrStream marks failures of the upstream byte source. The underlying
// transport error is wrapped alongside it.
var ErrStream = errors.New("stream error")

// Collector accumulates byte fragments into one contiguous buffer.
//
// A Collector is exclusively owned by a single collection operation and is
// not safe for concurrent use. Append must not be called after Bytes.
type Collector struct {
	// region is the reserved buffer when a trustworthy size hint was given.
	// Its length tracks the bytes written so far and its capacity is the
	// reservation. nil when no hint was trusted or after the reservation
	// was invalidated by overflow.
	region []byte

	// frags holds owned fragments in delivery order when no reservation is
	// active.
	frags [][]byte
}

// New returns a Collector. A sizeHint in (0, MaxReserve] reserves that many
// bytes up front; any other value (absent, zero, negative, or implausibly
// large) starts the collector in fragment mode.
func New(sizeHint int64) *Collector {
	c := &Collector{}
	if sizeHint > 0 && sizeHint <= MaxReserve {
		c.region = make([]byte, 0, sizeHint)
	}
	return c
}

// Append delivers the next fragment. The collector takes ownership of frag;
// callers must not reuse or modify it afterwards.
//
// While a reservation is active the fragment is copied into it. The first
// fragment that would overflow the reservation invalidates it for good: the
// written prefix becomes the first entry of the fragment list and all
// subsequent fragments are appended after it.
func (c *Collector) Append(frag []byte) {
	if len(frag) == 0 {
		return
	}

	if c.region != nil {
		if len(c.region)+len(frag) <= cap(c.region) {
			c.region = append(c.region, frag...)
			return
		}

		// The hint understated the true length. Abandon the reservation,
		// keeping what was already written as the first fragment.
		if len(c.region) > 0 {
			c.frags = append(c.frags, c.region)
		}
		c.region = nil
	}

	c.frags = append(c.frags, frag)
}

// Len reports the number of bytes collected so far.
func (c *Collector) Len() int {
	if c.region != nil {
		return len(c.region)
	}
	n := 0
	for _, f := range c.frags {
		n += len(f)
	}
	return n
}

// Bytes finalizes the collection and returns the contiguous result.
//
// If the reservation survived, the result is its written prefix, which may
// be shorter than the hint when the stream delivered less than declared.
// If exactly one fragment was collected, that fragment is returned as-is
// with no copy. Otherwise the fragments are concatenated once.
func (c *Collector) Bytes() []byte {
	if c.region != nil {
		return c.region
	}

	switch len(c.frags) {
	case 0:
		return []byte{}
	case 1:
		return c.frags[0]
	}

	buf := make([]byte, 0, c.Len())
	for _, f := range c.frags {
		buf = append(buf, f...)
	}
	return buf
}

// Collect drains r to completion and returns the accumulated buffer.
//
// While a reservation is active, reads go directly into its unwritten tail,
// so an accurate hint costs no intermediate allocations at all. Once the
// reservation is exhausted or absent, reads land in a shared chunk: each
// fragment is carved off the chunk's tail and a new chunk is allocated only
// when the previous one is used up, so fine-grained delivery holds memory
// proportional to the bytes received, not to the number of reads.
//
// A read error at any point discards the partial result and returns an
// error wrapping ErrStream. A zero-length stream yields an empty buffer.
func Collect(r io.Reader, sizeHint int64) ([]byte, error) {
	c := New(sizeHint)

	var chunk []byte
	for {
		if c.region != nil && len(c.region) < cap(c.region) {
			n, err := r.Read(c.region[len(c.region):cap(c.region)])
			c.region = c.region[:len(c.region)+n]
			if err == io.EOF {
				return c.Bytes(), nil
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrStream, err)
			}
			continue
		}

		if len(chunk) == 0 {
			chunk = make([]byte, readChunkSize)
		}
		n, err := r.Read(chunk)
		if n > 0 {
			// The capped sub-slice keeps the fragment from aliasing bytes
			// later reads write into the same chunk.
			c.Append(chunk[:n:n])
			chunk = chunk[n:]
		}
		if err == io.EOF {
			return c.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStream, err)
		}
	}
}
