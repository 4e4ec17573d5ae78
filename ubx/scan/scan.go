/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package scan implements the resynchronising UBX frame scanner: a reader
// that tolerates garbage before, between, and inside partial frames on a
// noisy UART feed and still yields every valid frame it contains.
package scan

import (
	"errors"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/coldpine/gpsclock/ubx"
)

// Scanner pulls ubx.Frame values out of a byte stream one at a time. It is
// not safe for concurrent use: a single goroutine owns the read side of the
// underlying io.Reader.
type Scanner struct {
	r   io.Reader
	buf []byte
	one [1]byte
}

// New wraps r in a Scanner. r may block indefinitely on Read when no bytes
// are currently available (as a UART read does); Scanner never assumes a
// cheap end-of-stream and never reads ahead speculatively.
func New(r io.Reader) *Scanner {
	return &Scanner{r: r, buf: make([]byte, 0, 128)}
}

// Next blocks until it can produce a frame or the underlying reader returns
// io.EOF. On any resynchronisable framing error (bad magic, bad checksum,
// unsupported class) it advances the buffer by exactly one byte and retries
// — never by the attacker-controlled speculative frame length. On a short
// buffer it pulls exactly one more byte from the source and retries; it
// never reads until the source is drained, since that would stall forever
// on a live UART with no data currently pending.
func (s *Scanner) Next() (ubx.Frame, error) {
	for {
		if len(s.buf) == 0 {
			if err := s.fill(); err != nil {
				return ubx.Frame{}, err
			}
		}
		f, err := ubx.Deserialize(s.buf)
		switch {
		case err == nil:
			s.buf = s.buf[f.Len():]
			return f, nil
		case errors.Is(err, ubx.ErrIncompleteRead):
			if err := s.fill(); err != nil {
				return ubx.Frame{}, err
			}
		case errors.Is(err, ubx.ErrBadMagic), errors.Is(err, ubx.ErrBadChecksum):
			s.buf = s.buf[1:]
		default:
			var unsupported *ubx.ErrUnsupportedClass
			if errors.As(err, &unsupported) {
				log.WithField("class", unsupported.Byte).Debug("ubx: dropping byte, unsupported class")
				s.buf = s.buf[1:]
				continue
			}
			return ubx.Frame{}, err
		}
	}
}

// fill performs a single underlying Read and appends whatever it returns to
// the buffer. A single read, never a read-until-empty loop: the latter
// would block forever waiting for bytes a blocking UART read will never
// produce once the port has gone quiet.
func (s *Scanner) fill() error {
	n, err := s.r.Read(s.one[:])
	if n > 0 {
		s.buf = append(s.buf, s.one[0])
	}
	if err != nil {
		return err
	}
	return nil
}
