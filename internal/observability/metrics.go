package observability

const (
	MUsecaseRequests         MetricKey = "usecase_requests_total"
	MUsecaseDuration         MetricKey = "usecase_duration_seconds"
	MHTTPRequests            MetricKey = "http_requests_total"
	MHTTPRequestDuration     MetricKey = "http_request_duration_seconds"
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"
	MEventPublishFailures    MetricKey = "event_publish_failed_total"
)

// MetricSpec describes how a metric is registered with the backend.
type MetricSpec struct {
	Key    MetricKey
	Help   string
	Labels []string
}

var (
	CounterSpecs = []MetricSpec{
		{MUsecaseRequests, "Total number of use case invocations.", []string{"use_case", "outcome"}},
		{MHTTPRequests, "Total number of HTTP requests.", []string{"method", "route", "status"}},
		{MExternalRequests, "Calls to payment and notification providers.", []string{"peer", "endpoint", "outcome"}},
		{MEventPublishFailures, "Count of event publish failures.", []string{"event"}},
	}
	HistogramSpecs = []MetricSpec{
		{MUsecaseDuration, "Duration of use case execution in seconds.", []string{"use_case"}},
		{MHTTPRequestDuration, "Duration of HTTP requests in seconds.", []string{"method", "route", "status"}},
		{MExternalRequestDuration, "Duration of provider calls in seconds.", []string{"peer", "endpoint"}},
	}
)
