package health

import (
	"context"
	"fmt"
	"strings"

	"github.com/mnbossa/AImend/pkg/replay"
)

// CredentialSource reports which gateway credentials are absent.
type CredentialSource interface {
	Missing() []string
}

// CredentialsCheck fails while the shared secret or the upstream key is
// missing. Requests would fail with a 500 in that state.
func CredentialsCheck(src CredentialSource) CheckFunc {
	return func(ctx context.Context) error {
		if missing := src.Missing(); len(missing) > 0 {
			return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
		}
		return nil
	}
}

// ReplayStoreCheck pings the replay store when it is backed by an external
// service. In-process stores always pass.
func ReplayStoreCheck(store replay.Store) CheckFunc {
	return func(ctx context.Context) error {
		pinger, ok := store.(replay.Pinger)
		if !ok {
			return nil
		}
		if err := pinger.Ping(ctx); err != nil {
			return fmt.Errorf("replay store unreachable: %w", err)
		}
		return nil
	}
}
