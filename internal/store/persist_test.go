package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chiya-order-service/internal/models"

	"go.uber.org/zap"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	item := s.AddMenuItem(menuItem("a", "Tea", 40))
	s.AddToCart("sess", item)
	order, _ := s.PlaceOrder("sess", 1, "less sugar")
	s.UpdateOrderStatus(order.ID, models.StatusCompleted)
	s.ResetDailyStats()
	name := "Chiya Pasal"
	tables := 4
	s.UpdateSettings(SettingsPatch{Name: &name, NumberOfTables: &tables})
	s.AddToCart("sess", item) // left in the cart on purpose

	reopened, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	if got := reopened.MenuItems(); len(got) != 1 || got[0].Name != "Tea" {
		t.Fatalf("menu not restored: %+v", got)
	}
	orders := reopened.Orders()
	if len(orders) != 1 || orders[0].Status != models.StatusCompleted || orders[0].Notes != "less sugar" {
		t.Fatalf("orders not restored: %+v", orders)
	}
	settings := reopened.Settings()
	if settings.Name != "Chiya Pasal" || settings.NumberOfTables != 4 {
		t.Fatalf("settings not restored: %+v", settings)
	}
	if history := reopened.AnalyticsHistory(); len(history) != 1 {
		t.Fatalf("analytics history not restored: %+v", history)
	}
	if cart := reopened.Cart("sess"); len(cart) != 0 {
		t.Fatalf("carts must not survive a restart, got %+v", cart)
	}
}

func TestOrderNumberSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, _ := Open(path, zap.NewNop())
	item := s.AddMenuItem(menuItem("a", "Tea", 40))
	s.AddToCart("sess", item)
	first, _ := s.PlaceOrder("sess", 1, "")

	reopened, _ := Open(path, zap.NewNop())
	reopened.AddToCart("sess", item)
	second, err := reopened.PlaceOrder("sess", 1, "")
	if err != nil {
		t.Fatalf("place order after restart: %v", err)
	}
	if second.OrderNumber != first.OrderNumber+1 {
		t.Fatalf("expected counter to continue at %d, got %d", first.OrderNumber+1, second.OrderNumber)
	}
}

func TestOpenRejectsUnknownSnapshotVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	_, err := Open(path, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestOpenRejectsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	if _, err := Open(path, zap.NewNop()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestOpenFreshStartUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "missing", "state.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	settings := s.Settings()
	if settings.Name != "Dai Ko Chiya" || settings.NumberOfTables != 10 || !settings.IsOpen || !settings.SoundAlerts {
		t.Fatalf("unexpected defaults: %+v", settings)
	}
}
