package ticketing

import "expvar"

var (
	metricPurchaseTotal  = expvar.NewInt("purchase_total")
	metricPurchaseErrors = expvar.NewInt("purchase_errors_total")

	metricAutoPurchaseTotal  = expvar.NewInt("auto_purchase_total")
	metricAutoPurchaseErrors = expvar.NewInt("auto_purchase_errors_total")

	metricCommitConflicts = expvar.NewInt("commit_conflicts_total")
	metricCommitExhausted = expvar.NewInt("commit_retries_exhausted_total")
)
