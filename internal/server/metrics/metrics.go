// Package metrics holds the Prometheus instrumentation for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the externally observable relay events. A nil *Metrics is
// valid and counts nothing, which keeps tests free of registry setup.
type Metrics struct {
	pairingCodesIssued  prometheus.Counter
	pairingsConfirmed   prometheus.Counter
	messagesStored      prometheus.Counter
	deliveriesSucceeded prometheus.Counter
	deliveriesFailed    prometheus.Counter
	inboundDropped      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		pairingCodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "telebridge_pairing_codes_issued_total",
			Help: "Pairing codes issued to chat-side actors.",
		}),
		pairingsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "telebridge_pairings_confirmed_total",
			Help: "Successful account-to-chat-identity bindings.",
		}),
		messagesStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "telebridge_messages_stored_total",
			Help: "Messages durably recorded.",
		}),
		deliveriesSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "telebridge_deliveries_succeeded_total",
			Help: "Messages delivered through the chat transport.",
		}),
		deliveriesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "telebridge_deliveries_failed_total",
			Help: "Delivery attempts that failed; the message stays stored.",
		}),
		inboundDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "telebridge_inbound_dropped_total",
			Help: "Inbound chat messages from unbound identities, dropped.",
		}),
	}
}

func (m *Metrics) PairingCodeIssued() {
	if m != nil {
		m.pairingCodesIssued.Inc()
	}
}

func (m *Metrics) PairingConfirmed() {
	if m != nil {
		m.pairingsConfirmed.Inc()
	}
}

func (m *Metrics) MessageStored() {
	if m != nil {
		m.messagesStored.Inc()
	}
}

func (m *Metrics) DeliverySucceeded() {
	if m != nil {
		m.deliveriesSucceeded.Inc()
	}
}

func (m *Metrics) DeliveryFailed() {
	if m != nil {
		m.deliveriesFailed.Inc()
	}
}

func (m *Metrics) InboundDropped() {
	if m != nil {
		m.inboundDropped.Inc()
	}
}
