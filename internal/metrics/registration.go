// File: internal/metrics/registration.go
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		registrationStepsTotal,
		documentUploadsTotal,
		registrationSubmissionsTotal,
		marketplaceRequestDuration,
		documentsSweptTotal,
	)
}

var (
	registrationStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_steps_total",
			Help: "Wizard step submissions by role, step and outcome.",
		},
		[]string{"role", "step", "outcome"}, // outcome: saved|invalid|redirected|failed
	)

	documentUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_document_uploads_total",
			Help: "Verification document uploads by document type, mode and outcome.",
		},
		[]string{"document_type", "mode", "outcome"}, // mode: eager|bulk
	)

	registrationSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_submissions_total",
			Help: "Final registration submissions by role and outcome.",
		},
		[]string{"role", "outcome"}, // outcome: verified|pending|failed_<stage>
	)

	marketplaceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_api_request_duration_seconds",
			Help:    "Latency of calls to the marketplace API.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"operation", "status"},
	)

	documentsSweptTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_documents_swept_total",
			Help: "Orphaned staged documents removed by the sweeper.",
		},
		[]string{"outcome"}, // deleted|failed
	)
)

func IncStep(role, step, outcome string) {
	registrationStepsTotal.WithLabelValues(norm(role), norm(step), norm(outcome)).Inc()
}

func IncDocumentUpload(docType, mode, outcome string) {
	documentUploadsTotal.WithLabelValues(norm(docType), norm(mode), norm(outcome)).Inc()
}

func IncSubmission(role, outcome string) {
	registrationSubmissionsTotal.WithLabelValues(norm(role), norm(outcome)).Inc()
}

// ObserveMarketplaceCall records one upstream call. status is 0 for transport errors.
func ObserveMarketplaceCall(operation string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	marketplaceRequestDuration.WithLabelValues(norm(operation), label).Observe(elapsed.Seconds())
}

func AddDocumentsSwept(outcome string, n int) {
	if n <= 0 {
		return
	}
	documentsSweptTotal.WithLabelValues(norm(outcome)).Add(float64(n))
}
