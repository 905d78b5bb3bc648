// Package admin реализует админ-панель с парольной аутентификацией.
// models.go описывает структуры сессий, попыток входа и состояний диалога.
package admin

import "time"

// AdminSession — активная сессия администратора.
type AdminSession struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	SessionToken    string    `db:"session_token"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
	LastActivity    time.Time `db:"last_activity"`
	IsActive        bool      `db:"is_active"`
}

// LoginAttempt — попытка входа (для защиты от brute-force).
type LoginAttempt struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	AttemptTime time.Time `db:"attempt_time"`
	Success     bool      `db:"success"`
}

// DialogState — состояние пошагового диалога с админом.
// Панель работает по шагам: пароль → действие → ввод данных.
type DialogState struct {
	State     string // Текущий шаг
	Data      string // Контекст шага (например, имя бренда)
	ExpiresAt time.Time
}

// Возможные состояния админ-диалога
const (
	StateAwaitingPassword   = "awaiting_password"     // Ждём пароль
	StateAddGiftCardBrand   = "add_gift_card_brand"   // Ждём название бренда карт
	StateAddGiftCardOffers  = "add_gift_card_offers"  // Ждём строки офферов карт
	StateAddStreamingBrand  = "add_streaming_brand"   // Ждём название сервиса
	StateAddStreamingOffers = "add_streaming_offers"  // Ждём строки офферов сервиса
)
