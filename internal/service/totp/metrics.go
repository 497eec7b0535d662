package totp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	codesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_codes_generated_total",
			Help: "Total one-time codes generated",
		},
		[]string{"type"}, // totp, hotp, stateless
	)

	parseFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_parse_failures_total",
			Help: "Total rejected secrets and provisioning URIs",
		},
		[]string{"reason"},
	)

	codeCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_code_cache_total",
			Help: "Code cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	verifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_verify_total",
			Help: "Code verifications by result",
		},
		[]string{"result"}, // valid, invalid, replay
	)

	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "otp_rate_limited_total",
			Help: "Code requests rejected by the per-user rate limit",
		},
	)

	accountsImportedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "otp_accounts_imported_total",
			Help: "Accounts created from authenticator exports",
		},
	)
)
