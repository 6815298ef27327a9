// Package ratelimit interprets Notion throttling responses: Retry-After hints
// and the rate-limited error envelope returned once the retry budget is spent.
package ratelimit
