package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coursehub"

// Subscriptions counts outcomes of the subscribe and validate-promo flows.
type Subscriptions struct {
	subscribe *prometheus.CounterVec
	validate  *prometheus.CounterVec
}

func NewSubscriptions(reg prometheus.Registerer) (*Subscriptions, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Subscriptions{
		subscribe: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscriptions",
			Name:      "subscribe_total",
			Help:      "Subscribe attempts by result.",
		}, []string{"result"}),
		validate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscriptions",
			Name:      "promo_validations_total",
			Help:      "Promo code validations by result.",
		}, []string{"result"}),
	}
	var err error
	if m.subscribe, err = register(reg, m.subscribe); err != nil {
		return nil, err
	}
	if m.validate, err = register(reg, m.validate); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register subscription metric: %w", err)
	}
	return c, nil
}

func (m *Subscriptions) ObserveSubscribe(result string) {
	if m == nil {
		return
	}
	m.subscribe.WithLabelValues(result).Inc()
}

func (m *Subscriptions) ObserveValidate(result string) {
	if m == nil {
		return
	}
	m.validate.WithLabelValues(result).Inc()
}
