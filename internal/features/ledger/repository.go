// Package ledger — repository.go выполняет все операции с таблицами
// balances и ledger_transactions. Все денежные операции выполняются
// в транзакциях БД для целостности данных: обновление баланса и запись
// в историю либо происходят вместе, либо не происходят вовсе.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"giftvault.app/telegram-shop/internal/common"
)

// Repository предоставляет методы для работы с балансами и транзакциями.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий леджера.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureBalance гарантирует, что у пользователя есть запись баланса.
// Если нет — создаёт с нулевым балансом. Спека: запись появляется
// при первом обращении, старта с депозита не требуется.
func (r *Repository) EnsureBalance(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO balances (user_id, balance_cents, total_deposited_cents, total_spent_cents)
		VALUES ($1, 0, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("ошибка создания баланса: %w", err)
	}
	return nil
}

// Balance возвращает текущий баланс пользователя.
// Отсутствие записи трактуется как нулевой баланс.
func (r *Repository) Balance(ctx context.Context, userID int64) (common.Cents, error) {
	query := `SELECT balance_cents FROM balances WHERE user_id = $1`
	var balance common.Cents
	err := r.db.QueryRow(ctx, query, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}

// Credit зачисляет сумму на баланс и пишет транзакцию со статусом approved.
// Собственная транзакция БД; для зачисления внутри чужой транзакции
// (аппрув депозита) используйте CreditTx.
func (r *Repository) Credit(ctx context.Context, userID int64, amount common.Cents, txid, service string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.CreditTx(ctx, tx, userID, amount, txid, service); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreditTx выполняет зачисление внутри уже открытой транзакции БД.
// Нужен очереди депозитов: кредит и удаление pending-записи должны быть
// одной единицей работы, иначе дубль коллбэка приведёт к двойному зачислению.
func (r *Repository) CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount common.Cents, txid, service string) error {
	// Запись баланса могла ещё не существовать (депозит до первого /start)
	_, err := tx.Exec(ctx, `
		INSERT INTO balances (user_id, balance_cents, total_deposited_cents, total_spent_cents)
		VALUES ($1, 0, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return fmt.Errorf("ошибка создания баланса: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE balances
		SET balance_cents = balance_cents + $2,
		    total_deposited_cents = total_deposited_cents + $2,
		    updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ошибка зачисления: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_transactions (user_id, txid, amount_cents, service, status, description)
		VALUES ($1, $2, $3, $4, $5, '')
	`, userID, txid, amount, service, StatusApproved)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return nil
}

// Debit списывает сумму с баланса и пишет отрицательную транзакцию
// со статусом completed. Остаток проверяется под блокировкой строки
// (FOR UPDATE), чтобы два одновременных списания не увели баланс в минус.
// Возвращает common.ErrInsufficientBalance без каких-либо изменений,
// если средств не хватает.
func (r *Repository) Debit(ctx context.Context, userID int64, amount common.Cents, service, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentBalance common.Cents
	err = tx.QueryRow(ctx, `
		SELECT balance_cents FROM balances WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&currentBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrInsufficientBalance
	}
	if err != nil {
		return fmt.Errorf("ошибка получения баланса: %w", err)
	}

	if currentBalance < amount {
		return common.ErrInsufficientBalance
	}

	_, err = tx.Exec(ctx, `
		UPDATE balances
		SET balance_cents = balance_cents - $2,
		    total_spent_cents = total_spent_cents + $2,
		    updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ошибка списания: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ledger_transactions (user_id, txid, amount_cents, service, status, description)
		VALUES ($1, '', $2, $3, $4, $5)
	`, userID, -amount, service, StatusCompleted, description)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	return tx.Commit(ctx)
}

// History возвращает последние N транзакций пользователя, новые сверху.
func (r *Repository) History(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, user_id, txid, amount_cents, service, status, description, created_at
		FROM ledger_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		var t Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Txid, &t.AmountCents,
			&t.Service, &t.Status, &t.Description, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}
