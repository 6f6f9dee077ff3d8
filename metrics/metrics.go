package metrics

import (
	"net/http"

	"servecart/cart"
	"servecart/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "servecart"

var (
	cartEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_events_total",
		Help:      "Cart changes by kind.",
	}, []string{"kind"})

	ordersHandedOff = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_handed_off_total",
		Help:      "Order summaries handed off to the messaging channel.",
	})

	orderValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_value",
		Help:      "Total of handed-off orders in the store currency.",
		Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000},
	})

	busEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bus_events_total",
		Help:      "Domain events received from the message bus.",
	}, []string{"name"})
)

// Recorder feeds checkout activity into the collectors.
type Recorder struct{}

func (Recorder) OrderHandedOff(total decimal.Decimal) {
	ordersHandedOff.Inc()
	orderValue.Observe(total.InexactFloat64())
}

// CartChanged is a cart.Store change listener.
func CartChanged(_ string, ev cart.Event) {
	cartEvents.WithLabelValues(string(ev.Kind)).Inc()
}

func EventConsumed(ev models.Event) {
	busEvents.WithLabelValues(ev.Name).Inc()
}

// TrackSessions exposes the number of live cart sessions. Call it once.
func TrackSessions(count func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cart_sessions",
		Help:      "Cart sessions currently held in memory.",
	}, func() float64 { return float64(count()) })
}

func Handler() http.Handler {
	return promhttp.Handler()
}
