package backend

import (
	"context"
	"path/filepath"
	"testing"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

func TestBackendType_IsValid(t *testing.T) {
	tests := []struct {
		bt   BackendType
		want bool
	}{
		{SQLiteBackend, true},
		{MemoryBackend, true},
		{"sheets", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.bt.IsValid(); got != tt.want {
			t.Errorf("%q.IsValid() = %v, want %v", tt.bt, got, tt.want)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}

	_, err := FromAppConfig(&config.Config{DataBackend: "postgres"})
	if err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:      "sqlite",
		SQLiteDBPath:     "/tmp/x.db",
		StorageNamespace: "ns",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" || cfg.Namespace != "ns" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend, Namespace: "ns"}).Validate(); err == nil {
		t.Error("expected error for missing sqlite path")
	}
	if err := (Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}).Validate(); err == nil {
		t.Error("expected error for missing namespace")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory backend should need nothing else: %v", err)
	}
}

func TestFactory_CreateMemory(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(applog.Discard()).Create(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Cleanup()

	if err := res.Store.Put(ctx, map[string]string{"budget": `"10"`}); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, ok, err := res.Store.Get(ctx, "budget")
	if err != nil || !ok || v != `"10"` {
		t.Errorf("get = %q, %v, %v", v, ok, err)
	}
}

func TestFactory_CreateSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "expenses.db"),
		Namespace:    "expense-tracker",
	}
	res, err := NewFactory(nil).Create(ctx, cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Cleanup()

	if err := res.Store.Put(ctx, map[string]string{"expenses": "[]"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, ok, err := res.Store.Get(ctx, "expenses")
	if err != nil || !ok || v != "[]" {
		t.Errorf("get = %q, %v, %v", v, ok, err)
	}
}

func TestFactory_CreateRejectsInvalid(t *testing.T) {
	if _, err := NewFactory(nil).Create(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Error("expected error")
	}
}
