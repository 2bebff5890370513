// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricDatagramsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cohen",
		Subsystem: "ssdp",
		Name:      "datagrams_received_total",
		Help:      "Total number of decoded SSDP datagrams, by kind (notify, search, response, other)",
	}, []string{"kind"})
	metricDatagramsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cohen",
		Subsystem: "ssdp",
		Name:      "datagrams_dropped_total",
		Help:      "Total number of datagrams dropped, by reason",
	}, []string{"reason"})
	metricNotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cohen",
		Subsystem: "ssdp",
		Name:      "notifications_sent_total",
		Help:      "Total number of NOTIFY messages sent, by NTS",
	}, []string{"nts"})
	metricSearchResponsesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cohen",
		Subsystem: "ssdp",
		Name:      "search_responses_sent_total",
		Help:      "Total number of M-SEARCH responses sent",
	})
	metricSearchResponsesPending = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cohen",
		Subsystem: "ssdp",
		Name:      "search_responses_pending",
		Help:      "Number of M-SEARCH responses waiting for their jitter delay",
	})
	metricServices = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cohen",
		Subsystem: "ssdp",
		Name:      "services",
		Help:      "Number of known services, by manifestation",
	}, []string{"manifestation"})
	metricSendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cohen",
		Subsystem: "ssdp",
		Name:      "send_errors_total",
		Help:      "Total number of failed datagram writes",
	})
)

const (
	kindNotify   = "notify"
	kindSearch   = "search"
	kindResponse = "response"
	kindOther    = "other"

	dropMalformed     = "malformed"
	dropMissingHeader = "missing_header"
	dropUnknown       = "unknown"
	dropRateLimited   = "rate_limited"
)

func init() {
	for _, kind := range []string{kindNotify, kindSearch, kindResponse, kindOther} {
		metricDatagramsReceived.WithLabelValues(kind)
	}
	for _, reason := range []string{dropMalformed, dropMissingHeader, dropUnknown, dropRateLimited} {
		metricDatagramsDropped.WithLabelValues(reason)
	}
	for _, nts := range []string{ntsAlive, ntsByebye} {
		metricNotificationsSent.WithLabelValues(nts)
	}
	for _, m := range []Manifestation{Local, Remote} {
		metricServices.WithLabelValues(m.String())
	}
}
