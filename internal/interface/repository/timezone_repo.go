package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/domain/repository"

	"gorm.io/gorm"
)

// GormTimezoneRepository implements the TimezoneRepository interface
type GormTimezoneRepository struct {
	db *gorm.DB
}

// NewGormTimezoneRepository creates a new GORM timezone repository
func NewGormTimezoneRepository(db *gorm.DB) repository.TimezoneRepository {
	return &GormTimezoneRepository{
		db: db,
	}
}

// Timezonelist GORM model for database mapping
type Timezonelist struct {
	ID          uint           `gorm:"primaryKey"`
	AirportCode string         `gorm:"column:airportcode;unique"`
	AirportName string         `gorm:"column:airport_name"`
	CityCode    string         `gorm:"column:citycode"`
	CityName    string         `gorm:"column:cityname"`
	GmtTz       string         `gorm:"column:gmttz"`
	TzName      string         `gorm:"column:tzname"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Timezonelist) TableName() string {
	return "m_timezone_list"
}

func (t Timezonelist) toEntity() *entity.AirportTimezone {
	return &entity.AirportTimezone{
		ID:          t.ID,
		AirportCode: t.AirportCode,
		AirportName: t.AirportName,
		CityCode:    t.CityCode,
		CityName:    t.CityName,
		GmtTz:       t.GmtTz,
		TzName:      t.TzName,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// GetByAirportCode finds a timezone by airport code
func (r *GormTimezoneRepository) GetByAirportCode(ctx context.Context, code string) (*entity.AirportTimezone, error) {
	var timezone Timezonelist
	result := r.db.WithContext(ctx).Unscoped().Where("airportcode = ?", strings.ToUpper(code)).First(&timezone)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, result.Error
	}

	return timezone.toEntity(), nil
}

// ListByAirportCodes returns the known timezones keyed by airport code.
// Unknown codes are absent from the map.
func (r *GormTimezoneRepository) ListByAirportCodes(ctx context.Context, codes []string) (map[string]*entity.AirportTimezone, error) {
	result := make(map[string]*entity.AirportTimezone, len(codes))
	if len(codes) == 0 {
		return result, nil
	}

	upper := make([]string, 0, len(codes))
	for _, code := range codes {
		upper = append(upper, strings.ToUpper(code))
	}

	var rows []Timezonelist
	if err := r.db.WithContext(ctx).Unscoped().Where("airportcode IN ?", upper).Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.AirportCode] = row.toEntity()
	}
	return result, nil
}
