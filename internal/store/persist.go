package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"chiya-order-service/internal/models"

	"go.uber.org/zap"
)

// snapshotVersion tags the on-disk layout so a future migration can detect
// old files instead of silently misreading them.
const snapshotVersion = 1

// snapshot is the whole persisted state. Carts and customer sessions are
// ephemeral and deliberately absent.
type snapshot struct {
	Version          int                     `json:"version"`
	MenuItems        []models.MenuItem       `json:"menuItems"`
	Orders           []models.Order          `json:"orders"`
	Settings         models.ShopSettings     `json:"settings"`
	AnalyticsHistory []models.DailyAnalytics `json:"analyticsHistory"`
	LastOrderCount   int64                   `json:"lastOrderCount"`
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode state file: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("state file version %d, want %d", snap.Version, snapshotVersion)
	}

	s.menuItems = snap.MenuItems
	s.orders = snap.Orders
	s.settings = snap.Settings
	s.history = snap.AnalyticsHistory
	s.lastOrderCount = snap.LastOrderCount
	return nil
}

// persistLocked writes the current snapshot. Callers hold s.mu. Failures are
// logged and swallowed: the in-memory state stays authoritative, there is no
// rollback.
func (s *Store) persistLocked() {
	snap := snapshot{
		Version:          snapshotVersion,
		MenuItems:        s.menuItems,
		Orders:           s.orders,
		Settings:         s.settings,
		AnalyticsHistory: s.history,
		LastOrderCount:   s.lastOrderCount,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.logger.Error("state snapshot encode failed", zap.Error(err))
		return
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.Error("state dir create failed", zap.Error(err))
			return
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Error("state snapshot write failed", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error("state snapshot rename failed", zap.Error(err))
	}
}

// Flush forces a snapshot write, used on shutdown.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked()
}
