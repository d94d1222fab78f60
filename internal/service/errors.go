package service

import (
	"errors"
	"fmt"
)

// Сентинельные ошибки бизнес-слоя. Хендлеры сопоставляют их со
// стабильными HTTP-статусами, внутренние идентификаторы хранилища
// наружу не протекают.
var (
	// ErrRateLimited - идентичность превысила лимит публичных подач
	ErrRateLimited = errors.New("too many submissions")
	// ErrIncidentNotFound - инцидент с указанным id отсутствует
	ErrIncidentNotFound = errors.New("incident not found")
	// ErrDuplicateAssignment - ответчик уже назначен на этот инцидент
	ErrDuplicateAssignment = errors.New("responder is already assigned to this incident")
)

// ValidationError - некорректные входные данные, отклоненные до любых
// побочных эффектов
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError создает ValidationError с форматированным сообщением
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError сообщает, является ли ошибка ошибкой валидации
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
