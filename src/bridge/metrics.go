package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons, used as label values on droppedTotal.
const (
	dropDuplicate   = "duplicate"
	dropSentinel    = "sentinel"
	dropFirewall    = "firewall"
	dropIgnoredPeer = "ignored_peer"
	dropMalformed   = "malformed"
)

var (
	admittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weaver",
		Subsystem: "bridge",
		Name:      "admitted_total",
		Help:      "Items admitted by the bridge, by type.",
	}, []string{"type"})

	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weaver",
		Subsystem: "bridge",
		Name:      "dropped_total",
		Help:      "Items dropped by the bridge, by reason.",
	}, []string{"reason"})

	wireSendsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "weaver",
		Subsystem: "bridge",
		Name:      "wire_sends_total",
		Help:      "Outbound wire operations attempted against remote peers.",
	})
)
