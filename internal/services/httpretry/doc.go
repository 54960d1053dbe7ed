// Package httpretry sends HTTP requests to remote APIs and retries rate
// limits (429), server errors (5xx), and transport timeouts with capped
// exponential backoff, honouring Retry-After. Every other failure is
// returned on the first attempt.
package httpretry
