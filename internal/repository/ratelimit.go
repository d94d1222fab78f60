package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
)

const rateLimitColumns = `
	id,
	device_fingerprint,
	ip_hash,
	window_start,
	request_count,
	captcha_required,
	last_attempt_at`

type RateLimitRepository struct {
	db *pgxpool.Pool
}

func NewRateLimitRepository(db *pgxpool.Pool) service.RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// GetByFingerprint возвращает запись по отпечатку устройства или (nil, nil)
func (r *RateLimitRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*models.RateLimitRecord, error) {
	query := `
		SELECT ` + rateLimitColumns + `
		FROM rate_limit_records
		WHERE device_fingerprint = $1;
	`
	return r.getOne(ctx, query, fingerprint)
}

// GetByIPHash возвращает запись по хэшу IP или (nil, nil)
func (r *RateLimitRepository) GetByIPHash(ctx context.Context, ipHash string) (*models.RateLimitRecord, error) {
	query := `
		SELECT ` + rateLimitColumns + `
		FROM rate_limit_records
		WHERE ip_hash = $1
		ORDER BY id
		LIMIT 1;
	`
	return r.getOne(ctx, query, ipHash)
}

func (r *RateLimitRepository) getOne(ctx context.Context, query string, arg any) (*models.RateLimitRecord, error) {
	record := &models.RateLimitRecord{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&record.ID,
		&record.DeviceFingerprint,
		&record.IPHash,
		&record.WindowStart,
		&record.RequestCount,
		&record.CaptchaRequired,
		&record.LastAttemptAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rate limit record: %w", err)
	}
	return record, nil
}

// Create создает новую антиабуз-запись
func (r *RateLimitRepository) Create(ctx context.Context, record *models.RateLimitRecord) error {
	query := `
		INSERT INTO rate_limit_records (device_fingerprint, ip_hash, window_start, request_count, captcha_required, last_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;
	`
	err := r.db.QueryRow(ctx, query,
		record.DeviceFingerprint,
		record.IPHash,
		record.WindowStart,
		record.RequestCount,
		record.CaptchaRequired,
		record.LastAttemptAt,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to create rate limit record: %w", err)
	}
	return nil
}

// Update перезаписывает состояние существующей записи, включая поля
// идентичности: запрос с новым отпечатком может забрать IP-запись на себя
func (r *RateLimitRepository) Update(ctx context.Context, record *models.RateLimitRecord) error {
	query := `
		UPDATE rate_limit_records
		SET device_fingerprint = $2,
			ip_hash = $3,
			window_start = $4,
			request_count = $5,
			captcha_required = $6,
			last_attempt_at = $7
		WHERE id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		record.ID,
		record.DeviceFingerprint,
		record.IPHash,
		record.WindowStart,
		record.RequestCount,
		record.CaptchaRequired,
		record.LastAttemptAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update rate limit record: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("rate limit record %d not found for update", record.ID)
	}
	return nil
}
