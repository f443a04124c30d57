package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/emb-protocol/issuance/pkg/eip712"
)

const (
	failureMalformedSignature    = "malformed_signature"
	failureUnauthorizedSigner    = "unauthorized_signer"
	failureNotController         = "not_controller"
	failureAuthorizationConsumed = "authorization_consumed"
	failureInvalidRequest        = "invalid_request"
	failureInternal              = "internal"
)

// Metrics contains the Prometheus metrics of the issuance gateway
type Metrics struct {
	MintAttempts           prometheus.Counter
	MintSuccess            prometheus.Counter
	MintFailures           *prometheus.CounterVec
	UnauthorizedSignatures prometheus.Counter
}

// MetricsConfig configures where metrics of a CLI run are pushed.
type MetricsConfig struct {
	PushgatewayURL string `env:"EMB_METRICS_PUSHGATEWAY_URL" env-default:""`
	Job            string `env:"EMB_METRICS_JOB" env-default:"emb_issuance"`
}

// NewMetricsWithRegistry initializes and registers metrics with a custom registry
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		MintAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "emb_mint_attempts_total",
			Help: "The total number of signature mint attempts",
		}),
		MintSuccess: factory.NewCounter(prometheus.CounterOpts{
			Name: "emb_mint_success_total",
			Help: "The total number of successful signature mints",
		}),
		MintFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emb_mint_failures_total",
				Help: "The total number of rejected signature mints",
			},
			[]string{"reason"},
		),
		UnauthorizedSignatures: factory.NewCounter(prometheus.CounterOpts{
			Name: "emb_unauthorized_signatures_total",
			Help: "The total number of authorizations recovered to an unregistered signer",
		}),
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, eip712.ErrMalformedSignature):
		return failureMalformedSignature
	case errors.Is(err, eip712.ErrUnauthorizedSigner):
		return failureUnauthorizedSigner
	case errors.Is(err, ErrNotController):
		return failureNotController
	case errors.Is(err, ErrAuthorizationConsumed):
		return failureAuthorizationConsumed
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidRecipient), errors.Is(err, ErrSupplyOverflow):
		return failureInvalidRequest
	default:
		return failureInternal
	}
}

func (m *Metrics) recordFailure(err error) {
	m.MintFailures.WithLabelValues(failureReason(err)).Inc()
}

// PushMetrics adds the gathered metrics to the configured Pushgateway.
// It does nothing when no Pushgateway is configured.
func PushMetrics(ctx context.Context, conf MetricsConfig, gatherer prometheus.Gatherer) error {
	if conf.PushgatewayURL == "" {
		return nil
	}

	if err := push.New(conf.PushgatewayURL, conf.Job).Gatherer(gatherer).AddContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", conf.PushgatewayURL, err)
	}
	return nil
}
