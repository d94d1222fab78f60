package models

import "time"

// RateLimitRecord хранит состояние антиабуз-счетчика одной анонимной
// идентичности. На каждый отпечаток существует не более одной живой записи;
// без отпечатка запись ищется и создается по хэшу IP. Записи никогда не
// удаляются.
type RateLimitRecord struct {
	ID                int64     `json:"id"`
	DeviceFingerprint *string   `json:"device_fingerprint,omitempty"`
	IPHash            *string   `json:"ip_hash,omitempty"`
	WindowStart       time.Time `json:"window_start"`
	RequestCount      int       `json:"request_count"`
	CaptchaRequired   bool      `json:"captcha_required"`
	LastAttemptAt     time.Time `json:"last_attempt_at"`
}
