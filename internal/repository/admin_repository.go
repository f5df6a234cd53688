package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"traffic-monitor/internal/db"
	"traffic-monitor/internal/domain/admin"
)

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("duplicate record")

type AdminRepository struct {
	conn *db.Conn
}

func NewAdminRepository(conn *db.Conn) *AdminRepository {
	return &AdminRepository{conn: conn}
}

type AdminRow struct {
	ID           int64 `gorm:"primaryKey"`
	CenterID     string
	PasswordHash string
	Latitude     float64
	Longitude    float64
	CenterName   string
	CreatedAt    time.Time
}

func (AdminRow) TableName() string { return "admins" }

func (r *AdminRepository) Create(ctx context.Context, row *AdminRow) error {
	tx, err := r.conn.Get(ctx)
	if err != nil {
		return err
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	err = tx.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// FindByCenterID returns nil, nil when no admin is registered for the center.
func (r *AdminRepository) FindByCenterID(ctx context.Context, centerID string) (*AdminRow, error) {
	tx, err := r.conn.Get(ctx)
	if err != nil {
		return nil, err
	}

	var row AdminRow
	err = tx.WithContext(ctx).Where("center_id = ?", centerID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *AdminRepository) List(ctx context.Context) ([]AdminRow, error) {
	tx, err := r.conn.Get(ctx)
	if err != nil {
		return nil, err
	}

	var rows []AdminRow
	err = tx.WithContext(ctx).Order("center_id ASC").Find(&rows).Error
	return rows, err
}

func (row AdminRow) ToDomain() admin.Admin {
	return admin.Admin{
		ID:         row.ID,
		CenterID:   row.CenterID,
		CenterName: row.CenterName,
		Lat:        row.Latitude,
		Lng:        row.Longitude,
		CreatedAt:  row.CreatedAt,
	}
}
