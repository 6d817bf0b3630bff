package replay

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mnbossa/AImend/pkg/config"
	"github.com/mnbossa/AImend/pkg/envelope"
)

var (
	_ envelope.NonceGuard = (*MemoryStore)(nil)
	_ envelope.NonceGuard = (*RedisStore)(nil)
	_ envelope.NonceGuard = (*SQLiteStore)(nil)
	_ Pruner              = (*MemoryStore)(nil)
	_ Pruner              = (*SQLiteStore)(nil)
	_ Pinger              = (*RedisStore)(nil)
	_ Pinger              = (*SQLiteStore)(nil)
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ReplayConfig
		want    string
		wantErr bool
	}{
		{
			name: "memory",
			cfg:  config.ReplayConfig{Backend: "memory", MaxEntries: 10},
			want: "*replay.MemoryStore",
		},
		{
			name: "empty backend defaults to memory",
			cfg:  config.ReplayConfig{},
			want: "*replay.MemoryStore",
		},
		{
			name: "sqlite",
			cfg: config.ReplayConfig{
				Backend: "sqlite",
				SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "n.db")},
			},
			want: "*replay.SQLiteStore",
		},
		{
			name:    "unknown",
			cfg:     config.ReplayConfig{Backend: "etcd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer store.Close()

			if got := fmt.Sprintf("%T", store); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
