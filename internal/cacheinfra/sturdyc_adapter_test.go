package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 512 {
		t.Errorf("expected Capacity to be 512, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 64 {
		t.Errorf("expected NumShards to be 64, got %d", cfg.NumShards)
	}

	if cfg.TTL != time.Minute {
		t.Errorf("expected TTL to be 1 minute, got %v", cfg.TTL)
	}

	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid default config",
			cfg:       DefaultConfig(),
			wantError: false,
		},
		{
			name: "invalid capacity - zero",
			cfg: Config{
				Capacity:           0,
				NumShards:          64,
				TTL:                time.Minute,
				EvictionPercentage: 10,
			},
			wantError: true,
			errorMsg:  "must be greater than 0",
		},
		{
			name: "invalid num shards - zero",
			cfg: Config{
				Capacity:           512,
				NumShards:          0,
				TTL:                time.Minute,
				EvictionPercentage: 10,
			},
			wantError: true,
			errorMsg:  "must be greater than 0",
		},
		{
			name: "invalid TTL - zero",
			cfg: Config{
				Capacity:           512,
				NumShards:          64,
				TTL:                0,
				EvictionPercentage: 10,
			},
			wantError: true,
			errorMsg:  "must be greater than 0",
		},
		{
			name: "invalid eviction percentage - too low",
			cfg: Config{
				Capacity:           512,
				NumShards:          64,
				TTL:                time.Minute,
				EvictionPercentage: 0,
			},
			wantError: true,
			errorMsg:  "must be between 1 and 100",
		},
		{
			name: "invalid eviction percentage - too high",
			cfg: Config{
				Capacity:           512,
				NumShards:          64,
				TTL:                time.Minute,
				EvictionPercentage: 101,
			},
			wantError: true,
			errorMsg:  "must be between 1 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantError {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("error %q does not contain %q", err, tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestSturdycService_GetOrFetch(t *testing.T) {
	svc, err := NewSturdycService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycService returned error: %v", err)
	}
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := svc.GetOrFetch(ctx, "key", fetch)
		if err != nil {
			t.Fatalf("GetOrFetch returned error: %v", err)
		}
		if got != "value" {
			t.Errorf("GetOrFetch = %v, want %q", got, "value")
		}
	}

	if calls != 1 {
		t.Errorf("fetch called %d times, want 1 (read-through)", calls)
	}
}

func TestSturdycService_GetOrFetch_Error(t *testing.T) {
	svc, err := NewSturdycService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycService returned error: %v", err)
	}

	wantErr := errors.New("source of truth unavailable")
	_, err = svc.GetOrFetch(context.Background(), "key", func(ctx context.Context) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrFetch error = %v, want %v", err, wantErr)
	}
}

func TestSturdycService_GetOrFetch_NilFetch(t *testing.T) {
	svc, err := NewSturdycService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycService returned error: %v", err)
	}

	if _, err := svc.GetOrFetch(context.Background(), "key", nil); err == nil {
		t.Fatal("expected error for nil fetchFn")
	}
}

func TestSturdycService_Delete(t *testing.T) {
	svc, err := NewSturdycService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycService returned error: %v", err)
	}
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	if _, err := svc.GetOrFetch(ctx, "key", fetch); err != nil {
		t.Fatalf("GetOrFetch returned error: %v", err)
	}
	if err := svc.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.GetOrFetch(ctx, "key", fetch); err != nil {
		t.Fatalf("GetOrFetch returned error: %v", err)
	}

	if calls != 2 {
		t.Errorf("fetch called %d times, want 2 after invalidation", calls)
	}
}

func TestSturdycService_DeleteByPrefix(t *testing.T) {
	svc, err := NewSturdycService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSturdycService returned error: %v", err)
	}
	ctx := context.Background()

	calls := map[string]int{}
	fetchFor := func(key string) func(ctx context.Context) (any, error) {
		return func(ctx context.Context) (any, error) {
			calls[key]++
			return key, nil
		}
	}

	keys := []string{"summaries::CME::2024-W10", "summaries::GST::2024-W10", "other::key"}
	for _, key := range keys {
		if _, err := svc.GetOrFetch(ctx, key, fetchFor(key)); err != nil {
			t.Fatalf("GetOrFetch(%s) returned error: %v", key, err)
		}
	}

	if err := svc.DeleteByPrefix(ctx, "summaries::"); err != nil {
		t.Fatalf("DeleteByPrefix returned error: %v", err)
	}

	for _, key := range keys {
		if _, err := svc.GetOrFetch(ctx, key, fetchFor(key)); err != nil {
			t.Fatalf("GetOrFetch(%s) returned error: %v", key, err)
		}
	}

	for _, key := range keys[:2] {
		if calls[key] != 2 {
			t.Errorf("fetch for %s called %d times, want 2 (invalidated)", key, calls[key])
		}
	}
	if calls["other::key"] != 1 {
		t.Errorf("fetch for other::key called %d times, want 1 (untouched)", calls["other::key"])
	}
}

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	want := "config error in field Capacity: must be greater than 0"
	if got := fmt.Sprint(err); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
