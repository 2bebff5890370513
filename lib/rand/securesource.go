// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package rand

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"
)

// secureSource is a math/rand.Source64 reading from crypto/rand. Reads go
// through a buffer, so access is serialized.
type secureSource struct {
	mut sync.Mutex
	rd  *bufio.Reader
	buf [8]byte
}

func newSecureSource() *secureSource {
	return &secureSource{rd: bufio.NewReader(rand.Reader)}
}

func (*secureSource) Seed(int64) {
	panic("secure source cannot be seeded")
}

func (s *secureSource) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

func (s *secureSource) Uint64() uint64 {
	s.mut.Lock()
	defer s.mut.Unlock()
	if _, err := io.ReadFull(s.rd, s.buf[:]); err != nil {
		panic("reading random bytes: " + err.Error())
	}
	return binary.BigEndian.Uint64(s.buf[:])
}
