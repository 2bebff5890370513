// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ssdp implements the SSDP presence and discovery engine: the
// registry of local and remote services, NOTIFY handling, jittered
// M-SEARCH responses, periodic re-announcement and expiry of remote
// services.
package ssdp

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/time/rate"

	"github.com/opacam/Cohen3-sub000/lib/build"
	"github.com/opacam/Cohen3-sub000/lib/clock"
	"github.com/opacam/Cohen3-sub000/lib/events"
	"github.com/opacam/Cohen3-sub000/lib/rand"
	"github.com/opacam/Cohen3-sub000/lib/svcutil"
)

const (
	DefaultAnnounceInterval = 777 * time.Second
	DefaultSweepInterval    = 30 * time.Second
	// DefaultGrace must stay above DefaultSweepInterval, or a service can
	// be dropped between two sweeps while still within its max-age.
	DefaultGrace         = 60 * time.Second
	DefaultMaxAge        = 1800 * time.Second
	DefaultMaxMX         = 120 * time.Second
	DefaultSearchRate    = 10
	DefaultSearchBurst   = 20
	DefaultSearchSources = 1024
)

// Datagram is the payload of a DatagramReceived event.
type Datagram struct {
	Message *Message
	Source  net.Addr
}

type Option func(*Server)

func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithServerString sets the SERVER header used for local services that do
// not carry their own.
func WithServerString(server string) Option {
	return func(s *Server) { s.serverString = server }
}

func WithAnnounceInterval(d time.Duration) Option {
	return func(s *Server) { s.announceInterval = d }
}

func WithSweepInterval(d time.Duration) Option {
	return func(s *Server) { s.sweepInterval = d }
}

func WithGrace(d time.Duration) Option {
	return func(s *Server) { s.grace = d }
}

// WithDefaultMaxAge sets the max-age assumed for services registered or
// announced without a usable CACHE-CONTROL.
func WithDefaultMaxAge(d time.Duration) Option {
	return func(s *Server) { s.defaultMaxAge = d }
}

// WithMaxMX caps the response delay a searcher may ask for.
func WithMaxMX(d time.Duration) Option {
	return func(s *Server) { s.maxMX = d }
}

// WithSearchRate limits the M-SEARCH requests answered per source host. A
// zero limit disables rate limiting.
func WithSearchRate(limit rate.Limit, burst, sources int) Option {
	return func(s *Server) {
		s.searchLimit, s.searchBurst, s.searchSources = limit, burst, sources
	}
}

// WithOwnAddresses sets the hosts treated as this machine, by default the
// addresses of every local interface. A byebye from one of them never
// removes a local service; it is our own, looped back.
func WithOwnAddresses(hosts ...string) Option {
	return func(s *Server) {
		s.ownHosts = make(map[string]struct{}, len(hosts))
		for _, host := range hosts {
			if ip := net.ParseIP(host); ip != nil {
				host = ip.String()
			}
			s.ownHosts[host] = struct{}{}
		}
	}
}

// WithJitter replaces the function choosing a response delay in [0,max].
func WithJitter(fn func(max time.Duration) time.Duration) Option {
	return func(s *Server) { s.jitter = fn }
}

// Server is the protocol engine. It can be fed datagrams directly with
// HandleDatagram, or run as a suture service reading from its Transport.
type Server struct {
	tr       Transport
	evLogger *events.Logger

	clock            clock.Clock
	serverString     string
	announceInterval time.Duration
	sweepInterval    time.Duration
	grace            time.Duration
	defaultMaxAge    time.Duration
	maxMX            time.Duration
	searchLimit      rate.Limit
	searchBurst      int
	searchSources    int
	jitter           func(max time.Duration) time.Duration
	limiter          *searchLimiter
	ownHosts         map[string]struct{}

	mut      sync.Mutex // protects registry
	registry registry

	pending     *xsync.MapOf[uint64, *pendingResponse]
	nextPending atomic.Uint64
	sendMut     sync.RWMutex // protects closed
	closed      bool
}

type pendingResponse struct {
	data  []byte
	dst   net.Addr
	timer clock.Timer
}

func NewServer(tr Transport, evLogger *events.Logger, opts ...Option) *Server {
	s := &Server{
		tr:               tr,
		evLogger:         evLogger,
		clock:            clock.Real,
		serverString:     build.ServerString(),
		announceInterval: DefaultAnnounceInterval,
		sweepInterval:    DefaultSweepInterval,
		grace:            DefaultGrace,
		defaultMaxAge:    DefaultMaxAge,
		maxMX:            DefaultMaxMX,
		searchLimit:      DefaultSearchRate,
		searchBurst:      DefaultSearchBurst,
		searchSources:    DefaultSearchSources,
		jitter:           rand.DurationUpTo,
		registry:         newRegistry(),
		pending:          xsync.NewMapOf[uint64, *pendingResponse](),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.evLogger == nil {
		s.evLogger = events.NewLogger()
	}
	if s.ownHosts == nil {
		s.ownHosts = interfaceHosts()
	}
	s.limiter = newSearchLimiter(s.searchLimit, s.searchBurst, s.searchSources)
	return s
}

func (s *Server) String() string {
	return "ssdp.Server"
}

// Serve reads datagrams from the transport and drives re-announcement and
// expiry until ctx is cancelled. On return every pending search response
// has been cancelled, a byebye has been sent for every local service and
// the transport is closed. A Server cannot be served twice.
func (s *Server) Serve(ctx context.Context) error {
	readErr := make(chan error, 1)
	go func() {
		readErr <- s.readLoop()
	}()

	announce := s.clock.NewTicker(s.announceInterval)
	defer announce.Stop()
	sweep := s.clock.NewTicker(s.sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-announce.C():
			s.announce()
		case <-sweep.C():
			s.sweep()
		case err := <-readErr:
			s.shutdown()
			l.Warnln("SSDP receive failed:", err)
			return svcutil.NoRestartErr(err)
		case <-ctx.Done():
			s.shutdown()
			<-readErr
			return nil
		}
	}
}

func (s *Server) readLoop() error {
	buf := make([]byte, maxDatagram)
	for {
		n, src, err := s.tr.ReadFrom(buf)
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return err
		}
		s.HandleDatagram(buf[:n], src)
	}
}

func (s *Server) isClosed() bool {
	s.sendMut.RLock()
	defer s.sendMut.RUnlock()
	return s.closed
}

func (s *Server) shutdown() {
	s.sendMut.Lock()
	s.closed = true
	cancelled := 0
	s.pending.Range(func(id uint64, p *pendingResponse) bool {
		p.timer.Stop()
		s.pending.Delete(id)
		cancelled++
		return true
	})
	metricSearchResponsesPending.Sub(float64(cancelled))
	s.sendMut.Unlock()

	s.mut.Lock()
	local := s.registry.filter(func(svc Service) bool { return svc.Manifestation == Local })
	s.mut.Unlock()
	for _, svc := range local {
		s.notifyByebye(svc)
	}

	if err := s.tr.Close(); err != nil {
		l.Debugln("closing SSDP transport:", err)
	}
}

// Register adds or replaces the service with svc.USN. Local services that
// are not silent are announced right away.
func (s *Server) Register(svc Service) error {
	if svc.USN == "" {
		return &MissingRequiredHeaderError{Method: "register", Header: "USN"}
	}
	if svc.Manifestation != Local && svc.Manifestation != Remote {
		return errors.New("invalid manifestation " + svc.Manifestation.String())
	}
	svc = s.withCacheDefaults(svc)
	svc.LastSeen = s.clock.Now()

	s.mut.Lock()
	s.insertLocked(svc)
	s.mut.Unlock()

	if svc.Manifestation == Local && !svc.Silent {
		s.notifyAlive(svc)
	}
	return nil
}

// insertLocked stores svc and logs its events. s.mut must be held.
func (s *Server) insertLocked(svc Service) {
	s.registry.put(svc)
	if svc.IsRootDevice() {
		s.evLogger.Log(events.NewRootDevice, svc)
	}
	s.evLogger.Log(events.ServiceAdded, svc)
	l.Debugln("registered", svc.Manifestation, svc.USN, svc.ST)
}

// withCacheDefaults fills in whichever of CacheControl and MaxAge is
// missing, falling back to the default max-age.
func (s *Server) withCacheDefaults(svc Service) Service {
	if svc.MaxAge <= 0 {
		if d, ok := ParseMaxAge(svc.CacheControl); ok {
			svc.MaxAge = d
		} else {
			svc.MaxAge = s.defaultMaxAge
			svc.CacheControl = ""
		}
	}
	if svc.CacheControl == "" {
		svc.CacheControl = CacheControl(svc.MaxAge)
	}
	return svc
}

// Unregister removes the service. A byebye is sent for local services,
// silent ones included. It returns false for an unknown USN.
func (s *Server) Unregister(usn string) bool {
	s.mut.Lock()
	svc, ok := s.registry.get(usn)
	s.mut.Unlock()
	if !ok {
		return false
	}

	if svc.Manifestation == Local {
		s.notifyByebye(svc)
	}

	s.mut.Lock()
	defer s.mut.Unlock()
	return s.removeLocked(usn)
}

// removeLocked deletes usn, raising RootDeviceRemoved while the record is
// still present. s.mut must be held.
func (s *Server) removeLocked(usn string) bool {
	svc, ok := s.registry.get(usn)
	if !ok {
		return false
	}
	if svc.IsRootDevice() {
		s.evLogger.Log(events.RootDeviceRemoved, svc)
	}
	s.registry.delete(usn)
	s.evLogger.Log(events.ServiceRemoved, svc)
	l.Debugln("removed", svc.Manifestation, usn)
	return true
}

func (s *Server) IsKnown(usn string) bool {
	s.mut.Lock()
	defer s.mut.Unlock()
	_, ok := s.registry.get(usn)
	return ok
}

// Lookup returns a copy of the service with the given USN.
func (s *Server) Lookup(usn string) (Service, bool) {
	s.mut.Lock()
	defer s.mut.Unlock()
	return s.registry.get(usn)
}

// Services returns a copy of every known service, ordered by USN.
func (s *Server) Services() []Service {
	s.mut.Lock()
	defer s.mut.Unlock()
	return s.registry.filter(nil)
}

// RootDevices returns the known upnp:rootdevice services, ordered by USN.
func (s *Server) RootDevices() []Service {
	s.mut.Lock()
	defer s.mut.Unlock()
	return s.registry.filter(Service.IsRootDevice)
}

// Subscribe returns a subscription to the engine's events.
func (s *Server) Subscribe(mask events.EventType) *events.Subscription {
	return s.evLogger.Subscribe(mask)
}

func (s *Server) Unsubscribe(sub *events.Subscription) {
	s.evLogger.Unsubscribe(sub)
}

// HandleDatagram processes one received datagram. Nothing it receives is
// reported back as an error; bad input is logged, counted and dropped.
func (s *Server) HandleDatagram(data []byte, src net.Addr) {
	msg, err := Decode(data)
	if err != nil {
		l.Debugf("dropping datagram from %v: %v", src, err)
		metricDatagramsDropped.WithLabelValues(dropMalformed).Inc()
		return
	}

	switch {
	case msg.Method == "NOTIFY" && msg.Argument == "*":
		metricDatagramsReceived.WithLabelValues(kindNotify).Inc()
		err = s.handleNotify(msg, src)
	case msg.Method == "M-SEARCH" && msg.Argument == "*":
		metricDatagramsReceived.WithLabelValues(kindSearch).Inc()
		err = s.handleSearch(msg, src)
	case msg.IsResponse():
		metricDatagramsReceived.WithLabelValues(kindResponse).Inc()
		err = s.handleSearchResponse(msg, src)
	default:
		metricDatagramsReceived.WithLabelValues(kindOther).Inc()
		metricDatagramsDropped.WithLabelValues(dropUnknown).Inc()
		l.Debugf("unknown SSDP command %q from %v", msg.StartLine, src)
	}

	var mhe *MissingRequiredHeaderError
	if errors.As(err, &mhe) {
		l.Verbosef("dropping datagram from %v: %v", src, err)
		metricDatagramsDropped.WithLabelValues(dropMissingHeader).Inc()
	} else if err != nil {
		l.Debugf("dropping datagram from %v: %v", src, err)
	}

	s.evLogger.Log(events.DatagramReceived, Datagram{Message: msg, Source: src})
}

func (s *Server) handleNotify(msg *Message, src net.Addr) error {
	switch nts := msg.Header.Get("nts"); nts {
	case ntsAlive:
		return s.handleAlive(msg, src)
	case ntsByebye:
		usn := msg.Header.Get("usn")
		if usn == "" {
			return &MissingRequiredHeaderError{Method: "NOTIFY", Header: "USN"}
		}
		s.mut.Lock()
		defer s.mut.Unlock()
		if svc, ok := s.registry.get(usn); ok && svc.Manifestation == Local && s.isOwnHost(src) {
			l.Debugln("ignoring our own byebye for", usn)
			return nil
		}
		s.removeLocked(usn)
		return nil
	default:
		l.Infof("Unknown SSDP notification type %q from %v", nts, src)
		metricDatagramsDropped.WithLabelValues(dropUnknown).Inc()
		return nil
	}
}

func (s *Server) handleAlive(msg *Message, src net.Addr) error {
	return s.learn(msg, "NOTIFY", "nt", src)
}

func (s *Server) handleSearchResponse(msg *Message, src net.Addr) error {
	return s.learn(msg, "search response", "st", src)
}

// learn refreshes a known USN or registers a new remote service from the
// headers of an alive notification or search response. stHeader names the
// header carrying the type, NT or ST.
func (s *Server) learn(msg *Message, what, stHeader string, src net.Addr) error {
	h := msg.Header
	usn := h.Get("usn")
	if usn == "" {
		return &MissingRequiredHeaderError{Method: what, Header: "USN"}
	}

	now := s.clock.Now()

	s.mut.Lock()
	defer s.mut.Unlock()
	if s.registry.touch(usn, now) {
		return nil
	}

	st := h.Get(stHeader)
	if st == "" {
		return &MissingRequiredHeaderError{Method: what, Header: stHeader}
	}
	location := h.Get("location")
	if location == "" {
		return &MissingRequiredHeaderError{Method: what, Header: "LOCATION"}
	}

	svc := s.withCacheDefaults(Service{
		USN:           usn,
		ST:            st,
		Location:      location,
		Server:        h.Get("server"),
		CacheControl:  h.Get("cache-control"),
		Manifestation: Remote,
		Host:          hostOf(src),
	})
	svc.LastSeen = now
	s.insertLocked(svc)
	return nil
}

func (s *Server) isOwnHost(src net.Addr) bool {
	_, ok := s.ownHosts[hostOf(src)]
	return ok
}

// interfaceHosts returns the addresses of the local interfaces.
func interfaceHosts() map[string]struct{} {
	hosts := make(map[string]struct{})
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		l.Debugln("listing interface addresses:", err)
		return hosts
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok {
			hosts[ipnet.IP.String()] = struct{}{}
		}
	}
	return hosts
}

func (s *Server) handleSearch(msg *Message, src net.Addr) error {
	st := msg.Header.Get("st")
	if st == "" {
		return &MissingRequiredHeaderError{Method: "M-SEARCH", Header: "ST"}
	}
	mxs, ok := msg.Header.Lookup("mx")
	if !ok {
		return &MissingRequiredHeaderError{Method: "M-SEARCH", Header: "MX"}
	}
	mx, err := strconv.Atoi(mxs)
	if err != nil || mx < 0 {
		return &MissingRequiredHeaderError{Method: "M-SEARCH", Header: "MX"}
	}

	now := s.clock.Now()
	if !s.limiter.allow(src, now) {
		metricDatagramsDropped.WithLabelValues(dropRateLimited).Inc()
		l.Debugln("rate limiting M-SEARCH from", src)
		return nil
	}

	// Compared in whole seconds; converting a huge MX to a Duration overflows.
	maxDelay := s.maxMX
	if mx < int(s.maxMX/time.Second) {
		maxDelay = time.Duration(mx) * time.Second
	}

	s.mut.Lock()
	matches := s.registry.filter(func(svc Service) bool { return svc.matches(st) })
	s.mut.Unlock()

	l.Debugf("M-SEARCH for %q from %v matched %d services", st, src, len(matches))
	for _, svc := range matches {
		delay := s.jitter(maxDelay)
		s.schedule(s.searchResponse(svc, now.Add(delay)), src, delay)
	}
	return nil
}

// schedule arranges for data to be sent to dst after delay, unless the
// server shuts down first.
func (s *Server) schedule(data []byte, dst net.Addr, delay time.Duration) {
	s.sendMut.RLock()
	defer s.sendMut.RUnlock()
	if s.closed {
		return
	}
	id := s.nextPending.Add(1)
	p := &pendingResponse{data: data, dst: dst}
	s.pending.Store(id, p)
	metricSearchResponsesPending.Inc()
	p.timer = s.clock.AfterFunc(delay, func() { s.fire(id) })
}

func (s *Server) fire(id uint64) {
	s.sendMut.RLock()
	defer s.sendMut.RUnlock()
	if s.closed {
		return
	}
	p, ok := s.pending.LoadAndDelete(id)
	if !ok {
		return
	}
	metricSearchResponsesPending.Dec()
	if s.send(p.data, p.dst) == nil {
		metricSearchResponsesSent.Inc()
	}
}

func (s *Server) searchResponse(svc Service, date time.Time) []byte {
	h := NewHeader()
	h.Set("CACHE-CONTROL", svc.CacheControl)
	h.Set("EXT", "")
	h.Set("LOCATION", svc.Location)
	h.Set("SERVER", s.serverFor(svc))
	h.Set("ST", svc.ST)
	h.Set("USN", svc.USN)
	return Encode("HTTP/1.1 200 OK", h, date)
}

func (s *Server) serverFor(svc Service) string {
	if svc.Server != "" {
		return svc.Server
	}
	return s.serverString
}

func (s *Server) notifyAlive(svc Service) {
	h := NewHeader()
	h.Set("HOST", MulticastAddr)
	h.Set("NT", svc.ST)
	h.Set("NTS", ntsAlive)
	h.Set("USN", svc.USN)
	h.Set("LOCATION", svc.Location)
	h.Set("SERVER", s.serverFor(svc))
	h.Set("CACHE-CONTROL", svc.CacheControl)
	h.Set("EXT", "")
	if s.send(Encode("NOTIFY * HTTP/1.1", h, time.Time{}), multicastGroup) == nil {
		metricNotificationsSent.WithLabelValues(ntsAlive).Inc()
	}
}

func (s *Server) notifyByebye(svc Service) {
	h := NewHeader()
	h.Set("HOST", MulticastAddr)
	h.Set("NT", svc.ST)
	h.Set("NTS", ntsByebye)
	h.Set("USN", svc.USN)
	if s.send(Encode("NOTIFY * HTTP/1.1", h, time.Time{}), multicastGroup) == nil {
		metricNotificationsSent.WithLabelValues(ntsByebye).Inc()
	}
}

// send writes one datagram. Failures are logged and counted, and returned
// only so callers can keep their metrics straight.
func (s *Server) send(data []byte, dst net.Addr) error {
	if _, err := s.tr.WriteTo(data, dst); err != nil {
		werr := &TransportWriteError{Addr: dst, Err: err}
		l.Debugln(werr)
		metricSendErrors.Inc()
		return werr
	}
	return nil
}

// announce sends an alive for every loud local service.
func (s *Server) announce() {
	s.mut.Lock()
	loud := s.registry.filter(func(svc Service) bool {
		return svc.Manifestation == Local && !svc.Silent
	})
	s.mut.Unlock()

	for _, svc := range loud {
		s.notifyAlive(svc)
	}
}

// sweep removes remote services whose max-age plus grace has passed.
func (s *Server) sweep() {
	now := s.clock.Now()
	s.mut.Lock()
	defer s.mut.Unlock()
	for _, svc := range s.registry.filter(func(svc Service) bool { return svc.expired(now, s.grace) }) {
		l.Debugln("expiring", svc.USN, "last seen", svc.LastSeen)
		s.removeLocked(svc.USN)
	}
}
