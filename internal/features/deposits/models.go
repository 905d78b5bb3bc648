// Package deposits реализует очередь криптодепозитов и workflow их аппрува.
// Пользователь присылает txid → заявка попадает в очередь → админ жмёт
// Approve и вводит сумму → баланс пополняется, заявка удаляется.
// models.go описывает структуры таблиц pending_deposits и approval_sessions.
package deposits

import (
	"errors"
	"time"

	"giftvault.app/telegram-shop/internal/common"
)

// PendingDeposit — заявка на пополнение, ожидающая решения админа.
// Txid нигде не проверяется против блокчейна: проверка — ручная работа
// админа, бот только хранит заявку и маршрутизирует решение.
type PendingDeposit struct {
	ID          int64     `db:"id"`           // ID записи
	Alias       string    `db:"alias"`        // Короткий идентификатор для callback-кнопок
	Txid        string    `db:"txid"`         // Заявленный txid (уникальность НЕ требуется)
	UserID      int64     `db:"user_id"`      // Кто прислал
	Username    string    `db:"username"`     // @username на момент отправки
	SubmittedAt time.Time `db:"submitted_at"` // Когда прислана
}

// ApprovalSession — состояние "Approve нажат, ждём сумму" для одного админа.
// Хранится в БД (а не в памяти процесса), поэтому рестарт бота между
// нажатием Approve и вводом суммы не теряет намерение админа.
type ApprovalSession struct {
	AdminID   int64     `db:"admin_id"`   // Кто аппрувит (один активный аппрув на админа)
	Alias     string    `db:"alias"`      // Какая заявка
	Txid      string    `db:"txid"`       // Txid заявки (для текста подтверждения)
	UserID    int64     `db:"user_id"`    // Чей баланс пополнять
	CreatedAt time.Time `db:"created_at"` // Когда нажат Approve
	ExpiresAt time.Time `db:"expires_at"` // Когда сессия протухает
}

// Expired сообщает, истекла ли сессия к моменту now.
func (s *ApprovalSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// ApprovalResult — итог успешного аппрува для уведомлений.
type ApprovalResult struct {
	UserID int64
	Amount common.Cents
	Txid   string
	Alias  string
}

// Ошибки очереди депозитов
var (
	// ErrAliasTaken — коллизия alias при вставке (перегенерируем и повторим)
	ErrAliasTaken = errors.New("alias already in use")
	// ErrNoSession — у админа нет открытой сессии аппрува
	ErrNoSession = errors.New("no approval session open")
)
