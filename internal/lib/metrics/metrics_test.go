package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Mutations.WithLabelValues("create_post", OutcomeOK).Inc()
	m.AIRequests.WithLabelValues("chat", OutcomeFallback).Add(2)
	m.LiveSubscriptions.WithLabelValues("posts").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("create_post", OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AIRequests.WithLabelValues("chat", OutcomeFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveSubscriptions.WithLabelValues("posts")))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
