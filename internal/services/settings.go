package services

import (
	"context"
	"errors"
	"fmt"

	"flashdeck/internal/models"
	"flashdeck/internal/store"
)

// ErrUnknownMode indicates an unrecognized default revision mode.
var ErrUnknownMode = errors.New("unknown revision mode")

// SettingsService reads and writes the singleton settings record.
type SettingsService struct {
	store store.Store
}

func NewSettingsService(st store.Store) *SettingsService {
	return &SettingsService{store: st}
}

func (s *SettingsService) Get(ctx context.Context) (models.AppSettings, error) {
	return s.store.Settings(ctx)
}

// Save validates the revision mode and persists the settings. The autoplay
// delay is stored as configured; only the input surface restricts its range.
func (s *SettingsService) Save(ctx context.Context, settings models.AppSettings) error {
	if !settings.DefaultRevisionMode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, settings.DefaultRevisionMode)
	}
	return s.store.SaveSettings(ctx, settings)
}
