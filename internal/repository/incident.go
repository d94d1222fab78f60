package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

const incidentColumns = `
	id,
	type,
	description,
	latitude,
	longitude,
	address,
	severity,
	status,
	device_fingerprint,
	ip_hash,
	created_at,
	updated_at`

type IncidentRepository struct {
	db *pgxpool.Pool
}

func NewIncidentRepository(db *pgxpool.Pool) service.IncidentRepository {
	return &IncidentRepository{db: db}
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (type, description, latitude, longitude, address, severity, status, device_fingerprint, ip_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.Type,
		incident.Description,
		incident.Latitude,
		incident.Longitude,
		incident.Address,
		incident.Severity,
		incident.Status,
		incident.DeviceFingerprint,
		incident.IPHash,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// ListRecent возвращает последние инциденты, новые первыми
func (r *IncidentRepository) ListRecent(ctx context.Context, limit int) ([]*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		ORDER BY created_at DESC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent incidents: %w", err)
	}
	defer rows.Close()

	return collectIncidents(rows)
}

// ListFiltered возвращает инциденты под фильтром диспетчерской консоли,
// последними обновленные первыми
func (r *IncidentRepository) ListFiltered(ctx context.Context, q service.IncidentQuery, limit int) ([]*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents`

	conditions := make([]string, 0, 4)
	args := make([]any, 0, 6)

	appendArg := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	if q.Status != nil {
		conditions = append(conditions, "status = "+appendArg(*q.Status))
	}
	if q.Since != nil {
		conditions = append(conditions, "updated_at >= "+appendArg(*q.Since))
	}
	if q.MinLat != nil && q.MaxLat != nil {
		conditions = append(conditions, "latitude BETWEEN "+appendArg(*q.MinLat)+" AND "+appendArg(*q.MaxLat))
	}
	if q.MinLon != nil && q.MaxLon != nil {
		conditions = append(conditions, "longitude BETWEEN "+appendArg(*q.MinLon)+" AND "+appendArg(*q.MaxLon))
	}

	for i, condition := range conditions {
		if i == 0 {
			query += "\n\t\tWHERE " + condition
		} else {
			query += "\n\t\t\tAND " + condition
		}
	}
	query += "\n\t\tORDER BY updated_at DESC\n\t\tLIMIT " + appendArg(limit) + ";"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	return collectIncidents(rows)
}

func collectIncidents(rows pgx.Rows) ([]*models.Incident, error) {
	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during incident list iteration: %w", err)
	}
	return incidents, nil
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	var latitude, longitude pgtype.Numeric
	err := row.Scan(
		&incident.ID,
		&incident.Type,
		&incident.Description,
		&latitude,
		&longitude,
		&incident.Address,
		&incident.Severity,
		&incident.Status,
		&incident.DeviceFingerprint,
		&incident.IPHash,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	incident.Latitude = numericToFloat(latitude)
	incident.Longitude = numericToFloat(longitude)
	return incident, nil
}

// numericToFloat приводит decimal из бд к числу. Неразборчивое значение
// трактуется как отсутствующее, а не как ошибка запроса.
func numericToFloat(value pgtype.Numeric) *float64 {
	if !value.Valid {
		return nil
	}
	converted, err := value.Float64Value()
	if err != nil || !converted.Valid {
		return nil
	}
	result := converted.Float64
	return &result
}
