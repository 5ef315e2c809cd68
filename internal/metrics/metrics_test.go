package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()

	require.NotPanics(t, func() {
		MustRegister(reg)
		MustRegister(reg)
	})
}

func TestObserveCompletion(t *testing.T) {
	before := testutil.ToFloat64(CompletionAttempts.WithLabelValues("test-provider", "success"))

	ObserveCompletion("test-provider", "success", time.Now())

	after := testutil.ToFloat64(CompletionAttempts.WithLabelValues("test-provider", "success"))
	assert.Equal(t, before+1, after)
}
