package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// anonymousSentinel - общий бакет для клиентов без отпечатка и без IP.
// Сознательно консервативный худший случай: все такие клиенты делят
// один счетчик.
const anonymousSentinel = "anonymous"

// Identity - комбинация необязательного отпечатка устройства и сырого
// сетевого адреса, по которой бакетируются анонимные податели
type Identity struct {
	Fingerprint string
	IP          string
}

// HashIP возвращает одностороннюю детерминированную свертку значения
func HashIP(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// IPHash возвращает хэш IP или хэш сентинела, когда IP отсутствует
func (id Identity) IPHash() string {
	if id.IP == "" {
		return HashIP(anonymousSentinel)
	}
	return HashIP(id.IP)
}

// Key - ключ сериализации запросов одной идентичности.
// Отпечаток всегда имеет приоритет над IP.
func (id Identity) Key() string {
	if id.Fingerprint != "" {
		return "fp:" + id.Fingerprint
	}
	return "ip:" + id.IPHash()
}
