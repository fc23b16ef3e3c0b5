// Package retry wraps VK and Disk calls with opt-in retries.
//
// The default configuration makes exactly one attempt. Raising
// retry.max_attempts enables exponential backoff with jitter for
// network failures, throttling and 5xx responses; rate limited calls
// back off longer than the rest.
//
//	cfg := retry.FromConfig(appConfig.Retry, log)
//	href, err := retry.DoWithResult(ctx, cfg, func(ctx context.Context) (string, error) {
//		return disk.UploadURL(ctx, remotePath)
//	})
package retry
