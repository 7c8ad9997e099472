package services

import (
	"strings"
	"testing"

	"fundledger/internal/models"
	"fundledger/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("records_entry_with_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		client := testutil.CreateTestClient(t, db)

		NewAuditService(db).Log("WITHDRAW_FUNDS", "profile", client.ID, "10.0.0.1", map[string]any{"amount": "250.00"})

		var entries []models.AuditLog
		if err := db.Find(&entries).Error; err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(entries))
		}
		e := entries[0]
		if e.Action != "WITHDRAW_FUNDS" || e.ResourceID != client.ID || e.IPAddress != "10.0.0.1" {
			t.Errorf("unexpected entry: %+v", e)
		}
		if !strings.Contains(e.Changes, `"amount":"250.00"`) {
			t.Errorf("expected changes JSON, got %q", e.Changes)
		}
	})

	t.Run("failure_does_not_panic", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewAuditService(db)
		testutil.TeardownTestDB(t, db)

		svc.Log("CREATE_CLIENT", "profile", "x", "", nil)
	})
}
