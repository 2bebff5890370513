// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import "context"

func (s *Server) Sweep() {
	s.sweep()
}

func (s *Server) Announce() {
	s.announce()
}

func (s *Server) PendingResponses() int {
	return s.pending.Size()
}

func (s *Searcher) SearchAll() {
	s.searchAll(context.Background())
}
