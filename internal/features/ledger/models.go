// Package ledger управляет балансами покупателей и историей транзакций.
// models.go описывает структуры для таблиц balances и ledger_transactions.
package ledger

import (
	"time"

	"giftvault.app/telegram-shop/internal/common"
)

// Balance представляет баланс пользователя.
// Каждый покупатель имеет ровно одну запись в таблице balances.
// Баланс никогда не уходит в минус: дебет проверяет остаток под блокировкой.
type Balance struct {
	ID                  int64        `db:"id"`                    // ID записи
	UserID              int64        `db:"user_id"`               // Telegram user ID
	BalanceCents        common.Cents `db:"balance_cents"`         // Текущий баланс (начинается с 0)
	TotalDepositedCents common.Cents `db:"total_deposited_cents"` // Сколько всего заведено депозитами
	TotalSpentCents     common.Cents `db:"total_spent_cents"`     // Сколько всего потрачено на покупки
	CreatedAt           time.Time    `db:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at"`
}

// Transaction представляет одну операцию с балансом.
// Записи append-only: после вставки никогда не меняются и не удаляются.
// Кредиты хранятся с положительной суммой, дебеты — с отрицательной.
type Transaction struct {
	ID          int64        `db:"id"`           // ID транзакции
	UserID      int64        `db:"user_id"`      // Чей баланс затронут
	Txid        string       `db:"txid"`         // Заявленный on-chain txid (пустой для покупок)
	AmountCents common.Cents `db:"amount_cents"` // Сумма со знаком
	Service     string       `db:"service"`      // Категория: top_up, gift_card, streaming
	Status      string       `db:"status"`       // approved | completed | rejected
	Description string       `db:"description"`  // Детали покупки для отображения
	CreatedAt   time.Time    `db:"created_at"`   // Время транзакции
}

// Категории операций
const (
	ServiceTopUp     = "top_up"    // Пополнение через одобренный депозит
	ServiceGiftCard  = "gift_card" // Покупка подарочной карты
	ServiceStreaming = "streaming" // Покупка подписки на стриминг
)

// Статусы транзакций
const (
	StatusApproved  = "approved"  // Депозит одобрен админом, баланс пополнен
	StatusCompleted = "completed" // Покупка завершена, баланс списан
	StatusRejected  = "rejected"  // Зарезервировано для совместимости со старыми выгрузками
)
