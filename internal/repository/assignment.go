package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

type AssignmentRepository struct {
	db *pgxpool.Pool
}

func NewAssignmentRepository(db *pgxpool.Pool) service.AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// CreateWithStatusTransition создает назначение и переводит инцидент в
// "assigned" одной транзакцией: либо обе записи, либо ни одной.
// Конкурирующий читатель никогда не увидит назначение без смены статуса.
func (r *AssignmentRepository) CreateWithStatusTransition(ctx context.Context, assignment *models.Assignment) (*models.Incident, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin assignment transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Блокируем строку инцидента: конкурирующие назначения на один
	// инцидент выполняются по очереди
	var incidentID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM incidents WHERE id = $1 FOR UPDATE;`,
		assignment.IncidentID,
	).Scan(&incidentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to lock incident row: %w", err)
	}

	insertQuery := `
		INSERT INTO assignments (incident_id, responder_id, assigned_by, assigned_at, message, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id;
	`
	err = tx.QueryRow(ctx, insertQuery,
		assignment.IncidentID,
		assignment.ResponderID,
		assignment.AssignedBy,
		assignment.AssignedAt,
		assignment.Message,
		assignment.Priority,
		assignment.Status,
	).Scan(&assignment.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, service.ErrDuplicateAssignment
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	updateQuery := `
		UPDATE incidents
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + incidentColumns + `;
	`
	incident, err := scanIncident(tx.QueryRow(ctx, updateQuery, assignment.IncidentID, models.IncidentStatusAssigned))
	if err != nil {
		return nil, fmt.Errorf("failed to update incident status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit assignment transaction: %w", err)
	}
	return incident, nil
}
