// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"bytes"
	"net/http"
	"strings"
	"time"
)

// Header is an ordered set of SSDP headers. Names are case insensitive and
// stored lower-cased; iteration follows insertion order.
type Header struct {
	names  []string
	values map[string]string
}

func NewHeader() *Header {
	return &Header{values: make(map[string]string)}
}

// Set adds or replaces a header. Replacing keeps the original position.
func (h *Header) Set(name, value string) {
	key := strings.ToLower(name)
	if _, ok := h.values[key]; !ok {
		h.names = append(h.names, key)
	}
	h.values[key] = value
}

// Get returns the value of the named header, or the empty string.
func (h *Header) Get(name string) string {
	return h.values[strings.ToLower(name)]
}

func (h *Header) Lookup(name string) (string, bool) {
	v, ok := h.values[strings.ToLower(name)]
	return v, ok
}

func (h *Header) Del(name string) {
	key := strings.ToLower(name)
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	for i, n := range h.names {
		if n == key {
			h.names = append(h.names[:i], h.names[i+1:]...)
			break
		}
	}
}

func (h *Header) Len() int {
	return len(h.names)
}

// Range calls fn for each header in insertion order until fn returns false.
func (h *Header) Range(fn func(name, value string) bool) {
	for _, n := range h.names {
		if !fn(n, h.values[n]) {
			return
		}
	}
}

// Map returns the headers as a plain map keyed by lower-cased name.
func (h *Header) Map() map[string]string {
	m := make(map[string]string, len(h.values))
	for k, v := range h.values {
		m[k] = v
	}
	return m
}

func (h *Header) Clone() *Header {
	c := &Header{
		names:  append([]string(nil), h.names...),
		values: make(map[string]string, len(h.values)),
	}
	for k, v := range h.values {
		c.values[k] = v
	}
	return c
}

// Message is a decoded SSDP datagram. For requests Method and Argument are
// e.g. "NOTIFY" and "*"; for responses they are the protocol version and
// the status code.
type Message struct {
	StartLine string
	Method    string
	Argument  string
	Header    *Header
}

// IsResponse reports whether the message is an HTTP 200 search response.
func (m *Message) IsResponse() bool {
	return strings.HasPrefix(m.Method, "HTTP/1.") && m.Argument == "200"
}

// Decode parses an SSDP datagram. The header block ends at the first blank
// line, or at the end of the buffer when there is none. Both CRLF and bare
// LF line endings are accepted.
//
// Header names and values are trimmed of surrounding whitespace and then
// of one pair of matching single or double quotes, so that
// MAN: "ssdp:discover" decodes to ssdp:discover. Some senders quote
// values that should not be quoted, and this normalization is applied to
// every header alike.
func Decode(data []byte) (*Message, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if i := strings.Index(text, "\n\n"); i >= 0 {
		text = text[:i]
	}
	lines := strings.Split(text, "\n")

	start := strings.TrimSpace(lines[0])
	fields := strings.Fields(start)
	if len(fields) < 2 {
		return nil, &MalformedMessageError{Reason: "short start line"}
	}

	msg := &Message{
		StartLine: start,
		Method:    fields[0],
		Argument:  fields[1],
		Header:    NewHeader(),
	}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &MalformedMessageError{Reason: "header line without colon"}
		}
		name = unquote(strings.TrimSpace(name))
		if name == "" {
			return nil, &MalformedMessageError{Reason: "empty header name"}
		}
		msg.Header.Set(name, unquote(strings.TrimSpace(value)))
	}
	return msg, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Encode serializes a message: the start line, each header as
// "NAME: value" in insertion order, a DATE header when date is non-zero and
// the headers carry none, and the terminating blank line.
func Encode(startLine string, h *Header, date time.Time) []byte {
	var buf bytes.Buffer
	buf.WriteString(startLine)
	buf.WriteString("\r\n")
	h.Range(func(name, value string) bool {
		buf.WriteString(strings.ToUpper(name))
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
		return true
	})
	if _, ok := h.Lookup("date"); !ok && !date.IsZero() {
		buf.WriteString("DATE: ")
		buf.WriteString(date.UTC().Format(http.TimeFormat))
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}
