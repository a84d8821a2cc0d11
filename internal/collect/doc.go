// Package collect accumulates a byte stream of unknown length into a single
// contiguous buffer with as little copying as the delivery allows.
//
// # Strategy
//
// HTTP responses usually announce their length up front via Content-Length.
// When a trustworthy hint is available the collector reserves the full
// buffer once and fills it in place, so the common case performs zero
// concatenation work. When no hint exists, or the hint understates the true
// length, the collector falls back to an ordered fragment list and pays for
// exactly one concatenation at the end.
//
// The two modes are exclusive: a collector starts in exactly one of them,
// and a reserved collector that overflows switches to fragment mode
// permanently. The written prefix of the abandoned reservation is carried
// over as the first fragment.
//
// # Usage
//
//	buf, err := collect.Collect(resp.Body, resp.ContentLength)
//	if err != nil {
//	    return err // wraps collect.ErrStream
//	}
//
// A short delivery against an over-declared hint is not an error; the
// collector returns whatever the stream actually produced. A stream error at
// any point discards the partial result entirely.
package collect
