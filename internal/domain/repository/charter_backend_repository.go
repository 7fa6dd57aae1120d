package repository

import (
	"context"

	"charter-concierge/internal/domain/entity"
)

// CharterBackendRepository is the proprietary charter backend
type CharterBackendRepository interface {
	SuggestMetropolitanAreas(ctx context.Context, location entity.Location) ([]entity.MetropolitanArea, error)
	GetAvailablePlanes(ctx context.Context, fromMa, toMa int64) (*entity.AvailablePlanes, error)
	GetCharterInfo(ctx context.Context, planeID, fromMa, toMa int64, date string) (*entity.Charter, error)
	GetAirportData(ctx context.Context, codes []string) ([]entity.AirportData, error)
}
