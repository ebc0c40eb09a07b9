package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"earnings/internal/models"
)

func TestAuditStoreLog(t *testing.T) {
	ctx := context.Background()
	actor := "user-1"
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO audit_logs") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 6 || args[1] != "create_earning" || args[5] != "127.0.0.1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewAuditStore(stubDB{})
	if err := store.Log(ctx, execer, &actor, "create_earning", "earning", "earning-1", "{}", "127.0.0.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuditStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewAuditStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "ORDER BY created_at DESC") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != 50 || args[1] != 0 {
				t.Fatalf("unexpected args: %#v", args)
			}
			logs := dest.(*[]models.AuditLog)
			*logs = []models.AuditLog{{ID: "log-1"}}
			return nil
		},
	})
	logs, err := store.List(ctx, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != "log-1" {
		t.Fatalf("unexpected logs: %#v", logs)
	}
}
