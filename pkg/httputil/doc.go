// Package httputil provides the retry and JSON request helpers used by the
// HTTP workflow source.
//
// [Retry] re-runs an operation with exponential backoff, but only while it
// fails with a [RetryableError]. [GetJSON] issues a GET, classifies the
// response (network errors, 5xx and 429 are retryable; other non-2xx codes
// become a [StatusError]) and decodes the body:
//
//	var out struct{ Workflow workflow.Workflow }
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return httputil.GetJSON(ctx, client, url, &out)
//	})
package httputil
