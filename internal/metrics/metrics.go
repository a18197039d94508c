package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/streamrail/ua-classifier/uaparser"
)

var (
	// Classification metrics
	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uap_classifications_total",
		Help: "The total number of category classifications",
	}, []string{"category", "outcome"}) // outcome: matched, unmatched

	RuleGroups = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "uap_rule_groups",
		Help: "Number of rule groups loaded per category",
	}, []string{"category"})

	// Cache metrics
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uap_cache_requests_total",
		Help: "The total number of result cache lookups",
	}, []string{"result"}) // result: hit, miss, error

	// HTTP request metrics
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uap_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// Observe counts one category match; it satisfies uaparser.Observer.
func Observe(c uaparser.Category, group int) {
	outcome := "matched"
	if group < 0 {
		outcome = "unmatched"
	}
	Classifications.WithLabelValues(string(c), outcome).Inc()
}

// RecordRuleSet publishes the table sizes of rs.
func RecordRuleSet(rs *uaparser.RuleSet) {
	for _, c := range uaparser.Categories() {
		RuleGroups.WithLabelValues(string(c)).Set(float64(rs.Table(c).Len()))
	}
}

func CacheHit()   { CacheRequests.WithLabelValues("hit").Inc() }
func CacheMiss()  { CacheRequests.WithLabelValues("miss").Inc() }
func CacheError() { CacheRequests.WithLabelValues("error").Inc() }
