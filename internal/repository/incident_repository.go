package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"traffic-monitor/internal/db"
	"traffic-monitor/internal/domain/traffic"
	"traffic-monitor/internal/metrics"
)

type IncidentRepository struct {
	conn *db.Conn
}

func NewIncidentRepository(conn *db.Conn) *IncidentRepository {
	return &IncidentRepository{conn: conn}
}

// IncidentRow stores the upstream document as-is next to the promoted lookup columns.
type IncidentRow struct {
	ID         int64 `gorm:"primaryKey"`
	CenterID   string
	RecordedOn *time.Time
	Zone       string
	District   int
	Latitude   float64
	Longitude  float64
	Document   datatypes.JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (IncidentRow) TableName() string { return "incident_records" }

// FindByCoordinate returns the first record, by id, whose stored position lies
// within the match tolerance of c. It returns nil, nil when none does.
func (r *IncidentRepository) FindByCoordinate(ctx context.Context, c traffic.Coordinate) (rec *traffic.IncidentRecord, err error) {
	defer func(start time.Time) { metrics.ObserveStoreQuery("find_by_coordinate", start, err) }(time.Now())

	tx, err := r.conn.Get(ctx)
	if err != nil {
		return nil, err
	}

	var row IncidentRow
	err = coordinateQuery(tx.WithContext(ctx), c).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	decoded, err := decodeRow(row)
	if err != nil {
		return nil, err
	}
	return &decoded, nil
}

// ListAll fetches every current record in insertion order.
func (r *IncidentRepository) ListAll(ctx context.Context) (recs []traffic.IncidentRecord, err error) {
	defer func(start time.Time) { metrics.ObserveStoreQuery("list_all", start, err) }(time.Now())

	tx, err := r.conn.Get(ctx)
	if err != nil {
		return nil, err
	}

	var rows []IncidentRow
	if err = tx.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return decodeRows(rows)
}

func (r *IncidentRepository) FindByCenterID(ctx context.Context, centerID string) (recs []traffic.IncidentRecord, err error) {
	defer func(start time.Time) { metrics.ObserveStoreQuery("find_by_center_id", start, err) }(time.Now())

	tx, err := r.conn.Get(ctx)
	if err != nil {
		return nil, err
	}

	var rows []IncidentRow
	err = tx.WithContext(ctx).
		Where("center_id = ?", centerID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return decodeRows(rows)
}

func coordinateQuery(tx *gorm.DB, c traffic.Coordinate) *gorm.DB {
	b := c.Bounds()
	return tx.Model(&IncidentRow{}).
		Where("latitude BETWEEN ? AND ?", b.MinLat, b.MaxLat).
		Where("longitude BETWEEN ? AND ?", b.MinLng, b.MaxLng).
		Order("id ASC")
}

func decodeRows(rows []IncidentRow) ([]traffic.IncidentRecord, error) {
	recs := make([]traffic.IncidentRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// decodeRow parses the document and lets the promoted columns win where they
// are populated, since those are what the lookup matched on.
func decodeRow(row IncidentRow) (traffic.IncidentRecord, error) {
	var rec traffic.IncidentRecord
	if len(row.Document) > 0 {
		if err := json.Unmarshal(row.Document, &rec); err != nil {
			return traffic.IncidentRecord{}, fmt.Errorf("decode incident document %d (center %s): %w", row.ID, row.CenterID, err)
		}
	}

	rec.CenterID = row.CenterID
	rec.Location.Latitude = row.Latitude
	rec.Location.Longitude = row.Longitude
	if row.Zone != "" {
		rec.Location.Zone = row.Zone
	}
	if row.District != 0 {
		rec.Location.District = row.District
	}
	if rec.Date == nil && row.RecordedOn != nil {
		d := *row.RecordedOn
		rec.Date = &d
	}
	return rec, nil
}
