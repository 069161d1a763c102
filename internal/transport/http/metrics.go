package httptransport

import (
	"expvar"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"
)

var (
	metricHTTPRequests         = expvar.NewInt("http_requests_total")
	metricHTTPResponsesByClass = expvar.NewMap("http_responses_by_class")

	metricHTTPPurchaseRejected = expvar.NewInt("http_purchase_rejected_total")
)

// StatusMetricsMiddleware counts requests and their responses by status
// class ("2xx", "4xx", ...).
func StatusMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		metricHTTPRequests.Add(1)
		metricHTTPResponsesByClass.Add(statusClass(ww.Status()), 1)
	})
}

func statusClass(status int) string {
	if status == 0 {
		status = http.StatusOK
	}
	return strconv.Itoa(status/100) + "xx"
}
