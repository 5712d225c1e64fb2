package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Signup(ResultSuccess)
	m.Signup(ResultSuccess)
	m.Login("google", ResultFailure)
	m.Refresh(ResultSuccess)
	m.OTPRequest(ResultError)
	m.Reset(ResultSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Signups.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("google", ResultFailure)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Logins.WithLabelValues("local", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenRefresh.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OTPRequests.WithLabelValues(ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PasswordReset.WithLabelValues(ResultSuccess)))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
