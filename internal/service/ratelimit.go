package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

// RateLimitRepository определяет контракт хранилища антиабуз-записей.
// Методы Get* возвращают (nil, nil), когда запись отсутствует.
type RateLimitRepository interface {
	GetByFingerprint(ctx context.Context, fingerprint string) (*models.RateLimitRecord, error)
	GetByIPHash(ctx context.Context, ipHash string) (*models.RateLimitRecord, error)
	Create(ctx context.Context, record *models.RateLimitRecord) error
	Update(ctx context.Context, record *models.RateLimitRecord) error
}

// RateLimitGate решает, допускать ли анонимную подачу
type RateLimitGate interface {
	Admit(ctx context.Context, identity Identity) error
}

type rateLimitGate struct {
	repo        RateLimitRepository
	logger      *logrus.Logger
	window      time.Duration
	maxAttempts int

	// Чтение-изменение-запись одной записи сериализуется мьютексом на
	// идентичность: два одновременных запроса одного отправителя не
	// могут посчитать один и тот же пред-инкрементный счетчик.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRateLimitGate(repo RateLimitRepository, logger *logrus.Logger, cfg *config.Config) RateLimitGate {
	return &rateLimitGate{
		repo:        repo,
		logger:      logger,
		window:      cfg.RateLimitWindow,
		maxAttempts: cfg.RateLimitMaxAttempts,
		locks:       make(map[string]*sync.Mutex),
	}
}

// identityLock возвращает мьютекс данной идентичности. Мьютексы не
// удаляются - как и сами записи, их набор только накапливается.
func (g *rateLimitGate) identityLock(key string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[key] = lock
	}
	return lock
}

// Admit применяет фиксированное окно подсчета попыток для идентичности.
// Возвращает ErrRateLimited при превышении лимита.
func (g *rateLimitGate) Admit(ctx context.Context, identity Identity) error {
	lock := g.identityLock(identity.Key())
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()
	ipHash := identity.IPHash()

	var record *models.RateLimitRecord
	var err error

	// Запись по отпечатку всегда в приоритете; по хэшу IP ищем только
	// когда отпечаточной записи нет
	if identity.Fingerprint != "" {
		record, err = g.repo.GetByFingerprint(ctx, identity.Fingerprint)
		if err != nil {
			return fmt.Errorf("gate: failed to look up record by fingerprint: %w", err)
		}
	}
	if record == nil {
		record, err = g.repo.GetByIPHash(ctx, ipHash)
		if err != nil {
			return fmt.Errorf("gate: failed to look up record by ip hash: %w", err)
		}
	}

	if record == nil {
		record = &models.RateLimitRecord{
			IPHash:          &ipHash,
			WindowStart:     now,
			RequestCount:    1,
			CaptchaRequired: false,
			LastAttemptAt:   now,
		}
		if identity.Fingerprint != "" {
			fingerprint := identity.Fingerprint
			record.DeviceFingerprint = &fingerprint
		}
		if err := g.repo.Create(ctx, record); err != nil {
			return fmt.Errorf("gate: failed to create record: %w", err)
		}
		return nil
	}

	// Новый отпечаток забирает найденную по IP запись на себя
	if identity.Fingerprint != "" {
		fingerprint := identity.Fingerprint
		record.DeviceFingerprint = &fingerprint
	}
	record.IPHash = &ipHash

	if now.Sub(record.WindowStart) > g.window {
		// Окно истекло - начинаем новое
		record.WindowStart = now
		record.RequestCount = 1
	} else {
		record.RequestCount++
	}
	record.CaptchaRequired = record.RequestCount > g.maxAttempts
	// Метка последней попытки обновляется безусловно, даже при сбросе окна
	record.LastAttemptAt = now

	if err := g.repo.Update(ctx, record); err != nil {
		return fmt.Errorf("gate: failed to update record: %w", err)
	}

	if record.CaptchaRequired {
		g.logger.WithFields(logrus.Fields{
			"service":       "ratelimit",
			"identity":      identity.Key(),
			"request_count": record.RequestCount,
		}).Warn("Submission denied: rate limit exceeded")
		return ErrRateLimited
	}
	return nil
}
