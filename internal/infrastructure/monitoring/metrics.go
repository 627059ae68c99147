package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type BusinessMetrics struct {
	LoansSubmittedTotal     *prometheus.CounterVec
	SubmissionFailuresTotal *prometheus.CounterVec
	StatusChangesTotal      *prometheus.CounterVec
	PendingQueueSize        prometheus.Gauge
	CustomerLookupFallbacks prometheus.Counter
}

var Business = BusinessMetrics{
	LoansSubmittedTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loans_submitted_total",
			Help: "Total number of loan applications stored.",
		},
		[]string{"loan_type"},
	),
	SubmissionFailuresTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_submission_failures_total",
			Help: "Total number of loan applications aborted, by failing stage.",
		},
		[]string{"stage"},
	),
	StatusChangesTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_status_changes_total",
			Help: "Total number of review actions applied to loan accounts.",
		},
		[]string{"action"},
	),
	PendingQueueSize: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_pending_queue_size",
			Help: "Number of loan accounts awaiting review at the last batch run.",
		},
	),
	CustomerLookupFallbacks: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_review_customer_fallbacks_total",
			Help: "Total number of review rows rendered with the placeholder customer.",
		},
	),
}

func RecordLoanSubmitted(loanType string) {
	Business.LoansSubmittedTotal.WithLabelValues(loanType).Inc()
}

func RecordSubmissionFailure(stage string) {
	Business.SubmissionFailuresTotal.WithLabelValues(stage).Inc()
}

func RecordStatusChange(action string) {
	Business.StatusChangesTotal.WithLabelValues(action).Inc()
}

func SetPendingQueueSize(n int) {
	Business.PendingQueueSize.Set(float64(n))
}

func RecordCustomerFallback() {
	Business.CustomerLookupFallbacks.Inc()
}
