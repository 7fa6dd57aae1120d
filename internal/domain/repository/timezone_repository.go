package repository

import (
	"context"

	"charter-concierge/internal/domain/entity"
)

// TimezoneRepository defines the interface for airport timezone master data
type TimezoneRepository interface {
	GetByAirportCode(ctx context.Context, code string) (*entity.AirportTimezone, error)
	ListByAirportCodes(ctx context.Context, codes []string) (map[string]*entity.AirportTimezone, error)
}
