package counterrepo

import (
	"context"
	"strings"

	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

type SerialCounterDTO struct {
	Scope      string `gorm:"type:varchar(64);primaryKey"`
	LastSerial int64  `gorm:"not null;default:0"`
}

func (SerialCounterDTO) TableName() string {
	return "serial_counters"
}

// nextSerialSQL creates the scope on first use and increments it otherwise, returning the
// new value from the same statement. Concurrent callers serialize on the row lock.
const nextSerialSQL = `
INSERT INTO serial_counters (scope, last_serial) VALUES (?, 1)
ON CONFLICT (scope) DO UPDATE SET last_serial = serial_counters.last_serial + 1
RETURNING last_serial`

type GormSerialCounter struct {
	db *gorm.DB
}

func NewGormSerialCounter(db *gorm.DB) *GormSerialCounter {
	return &GormSerialCounter{db: db}
}

func (c *GormSerialCounter) Next(ctx context.Context, scope string) (int64, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return 0, errs.NewValueIsRequiredError("scope")
	}

	var serial int64
	if err := c.db.WithContext(ctx).Raw(nextSerialSQL, scope).Scan(&serial).Error; err != nil {
		return 0, err
	}
	return serial, nil
}

// Current returns the last handed out serial, 0 for an unused scope.
func (c *GormSerialCounter) Current(ctx context.Context, scope string) (int64, error) {
	var dto SerialCounterDTO
	result := c.db.WithContext(ctx).Limit(1).Find(&dto, "scope = ?", scope)
	if result.Error != nil {
		return 0, result.Error
	}
	return dto.LastSerial, nil
}
