// Package gateway wraps the single external generation capability behind a
// resilient, concurrency-safe front.
//
// The remote capability is modeled by the Generator interface: given a
// prompt, optional image bytes and a safety configuration, it returns text
// or a classified *Error. Provider adapters (gateway/openai,
// gateway/anthropic) implement Generator and own the mapping from raw
// provider failures to error kinds; the Gateway owns retry policy.
//
// Retry semantics: transient failures (rate limits, network and server
// errors) are retried with bounded exponential backoff up to a hard attempt
// ceiling, after which KindTransientExhausted is surfaced. Safety blocks and
// invalid requests are never retried. The caller's SafetyConfig is passed
// through to the remote unmodified on every attempt.
package gateway
