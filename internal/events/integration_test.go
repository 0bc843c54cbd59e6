package events

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/medboxlab/medbox-core/internal/journal"
	"github.com/medboxlab/medbox-core/internal/notify"
	"github.com/medboxlab/medbox-core/internal/presence"
)

// Wires the real presence store, a SQLite-backed journal, and the
// orchestrator together with short timeouts and real clocks. The journal
// reports every append back to the presence store, so this is the loop
// where bookkeeping writes could masquerade as device activity.

const (
	integOnlineTimeout = 50 * time.Millisecond
	integWarningAfter  = 100 * time.Millisecond
)

func newIntegrationStack(t *testing.T) (*Orchestrator, *presence.Store, *journal.Service, *notify.Service) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // test cleanup
	})

	schema := `
		CREATE TABLE offline_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT NOT NULL,
			event_time TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_data TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			processed INTEGER NOT NULL DEFAULT 0
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	store := presence.NewStore(integOnlineTimeout)
	journalSvc := journal.NewService(journal.NewSQLiteRepository(db), store)
	notifySvc := notify.NewService(nil)
	orch := NewOrchestrator(journalSvc, notifySvc, store, integWarningAfter)

	return orch, store, journalSvc, notifySvc
}

func eventTypes(t *testing.T, journalSvc *journal.Service, deviceID string) []journal.EventType {
	t.Helper()

	events, err := journalSvc.ListByDevice(context.Background(), deviceID)
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	types := make([]journal.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	return types
}

func TestSilentDeviceStaysOfflineThroughJournaling(t *testing.T) {
	orch, store, journalSvc, notifySvc := newIntegrationStack(t)
	ctx := context.Background()
	const deviceID = "box-001"

	// A status message: presence only, nothing in the journal.
	store.Touch(deviceID)
	orch.EvaluatePresence(ctx)

	if got := eventTypes(t, journalSvc, deviceID); len(got) != 0 {
		t.Fatalf("journal after status message = %v, want empty", got)
	}

	// Device goes silent past the heartbeat window.
	time.Sleep(integOnlineTimeout + 20*time.Millisecond)
	orch.EvaluatePresence(ctx)

	if got := eventTypes(t, journalSvc, deviceID); len(got) != 1 || got[0] != journal.EventDeviceOffline {
		t.Fatalf("journal after silence = %v, want [DEVICE_OFFLINE]", got)
	}

	// The offline append reported back into the presence store; that
	// must not count as activity.
	if store.IsOnline(deviceID) {
		t.Fatal("device reported online after its own offline event was journaled")
	}

	// Repeated sweeps find no fresh edges and journal nothing new.
	orch.EvaluatePresence(ctx)
	orch.EvaluatePresence(ctx)

	if got := eventTypes(t, journalSvc, deviceID); len(got) != 1 {
		t.Fatalf("journal after re-sweeps = %v, want a single DEVICE_OFFLINE", got)
	}

	// Long-offline escalation still fires, exactly once.
	time.Sleep(integWarningAfter + 20*time.Millisecond)
	orch.EvaluatePresence(ctx)
	orch.EvaluatePresence(ctx)

	warnings := 0
	for _, n := range notifySvc.History(deviceID) {
		if n.EventType == "DEVICE_OFFLINE_WARNING" {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("offline warnings = %d, want exactly 1", warnings)
	}
	if store.IsOnline(deviceID) {
		t.Error("device resurrected by the escalation event")
	}
}
