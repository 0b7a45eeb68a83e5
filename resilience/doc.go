// Package resilience provides bounded retry with exponential backoff.
//
// Singleton providers use it to retry a failing constructor a few times
// within a single Get call; a construction that still fails after the
// last attempt is reported to the caller and nothing is cached.
//
//	cfg := resilience.DefaultRetryConfig()
//	conn, err := resilience.Retry(ctx, cfg, func(ctx context.Context, attempt int) (*Conn, error) {
//	    return dial(ctx)
//	})
package resilience
