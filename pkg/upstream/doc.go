// Package upstream forwards validated chat payloads to the upstream
// chat-completion API and normalizes its reply.
//
// A Forwarder makes exactly one HTTP request per call. It never retries;
// the caller owns retry policy. Failures are reported as typed errors:
//
//   - *NotConfiguredError: no upstream credential, no request was made
//   - *UnreachableError: transport failure, timeout or oversized response
//   - *StatusError: the upstream answered with a non-2xx status
//
// On success the first choice's message content is extracted and any
// reasoning segment before the configured delimiter is discarded:
//
//	ExtractReply("<think>plan</think>  answer ", "</think>") // "answer"
package upstream
