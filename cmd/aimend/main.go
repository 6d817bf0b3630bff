// AImend is a signed-envelope relay gateway for chat completions.
//
// Trusted callers sign each JSON request with a shared secret. The gateway
// verifies the signature, rejects stale or replayed envelopes, and relays
// the chat payload to an upstream chat-completion API with its own
// credential, returning {"reply", "raw"}.
//
// Usage:
//
//	# Start the gateway with defaults and environment overrides
//	aimend run
//
//	# Start with a configuration file
//	aimend run --config /etc/aimend/aimend.yaml
//
//	# Sign a request and send it to a local gateway
//	WORKER_SHARED_SECRET=... aimend sign --secret-env WORKER_SHARED_SECRET -m "hello" --send
//
//	# Check a configuration file
//	aimend validate --config aimend.yaml
//
//	# Show version information
//	aimend version
package main

func main() {
	Execute()
}
