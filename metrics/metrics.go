package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 計數器的result標籤
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// 提供給/metrics的計數器
type Metrics struct {
	Signups       *prometheus.CounterVec
	Logins        *prometheus.CounterVec
	TokenRefresh  *prometheus.CounterVec
	OTPRequests   *prometheus.CounterVec
	PasswordReset *prometheus.CounterVec
}

// 在reg上註冊所有計數器
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Signups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_signups_total",
			Help: "Local account signups by result",
		}, []string{"result"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_logins_total",
			Help: "Logins by method (local, google) and result",
		}, []string{"method", "result"}),
		TokenRefresh: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_token_refresh_total",
			Help: "Access token refreshes by result",
		}, []string{"result"}),
		OTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_otp_requests_total",
			Help: "Password reset one-time code requests by result",
		}, []string{"result"}),
		PasswordReset: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_password_resets_total",
			Help: "Completed password resets by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) Signup(result string) {
	m.Signups.WithLabelValues(result).Inc()
}

// method為local或google
func (m *Metrics) Login(method, result string) {
	m.Logins.WithLabelValues(method, result).Inc()
}

func (m *Metrics) Refresh(result string) {
	m.TokenRefresh.WithLabelValues(result).Inc()
}

func (m *Metrics) OTPRequest(result string) {
	m.OTPRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) Reset(result string) {
	m.PasswordReset.WithLabelValues(result).Inc()
}
