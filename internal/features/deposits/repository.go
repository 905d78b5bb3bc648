// Package deposits — repository.go выполняет операции с таблицами
// pending_deposits и approval_sessions. Аппрув — одна транзакция БД:
// удаление заявки, зачисление баланса и потребление сессии либо происходят
// вместе, либо не происходят вовсе (дубль коллбэка не даст двойного кредита).
package deposits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"giftvault.app/telegram-shop/internal/common"
	"giftvault.app/telegram-shop/internal/features/ledger"
)

// uniqueViolation — код PostgreSQL для нарушения UNIQUE-ограничения.
const uniqueViolation = "23505"

// Repository предоставляет методы для работы с очередью депозитов.
type Repository struct {
	db     *pgxpool.Pool
	ledger *ledger.Repository
}

// NewRepository создаёт репозиторий очереди депозитов.
// Леджер нужен для зачисления внутри транзакции аппрува.
func NewRepository(db *pgxpool.Pool, ledgerRepo *ledger.Repository) *Repository {
	return &Repository{db: db, ledger: ledgerRepo}
}

// InsertPending добавляет заявку в очередь.
// Возвращает ErrAliasTaken при коллизии alias — вызывающий перегенерирует.
func (r *Repository) InsertPending(ctx context.Context, p *PendingDeposit) error {
	query := `
		INSERT INTO pending_deposits (alias, txid, user_id, username)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, p.Alias, p.Txid, p.UserID, p.Username)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAliasTaken
	}
	if err != nil {
		return fmt.Errorf("ошибка добавления заявки: %w", err)
	}
	return nil
}

// ListPending возвращает все заявки, старые сверху.
func (r *Repository) ListPending(ctx context.Context) ([]*PendingDeposit, error) {
	query := `
		SELECT id, alias, txid, user_id, username, submitted_at
		FROM pending_deposits
		ORDER BY submitted_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения очереди: %w", err)
	}
	defer rows.Close()

	var pending []*PendingDeposit
	for rows.Next() {
		var p PendingDeposit
		if err := rows.Scan(&p.ID, &p.Alias, &p.Txid, &p.UserID, &p.Username, &p.SubmittedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		pending = append(pending, &p)
	}
	return pending, rows.Err()
}

// GetPending возвращает заявку по alias.
func (r *Repository) GetPending(ctx context.Context, alias string) (*PendingDeposit, error) {
	query := `
		SELECT id, alias, txid, user_id, username, submitted_at
		FROM pending_deposits
		WHERE alias = $1
	`
	var p PendingDeposit
	err := r.db.QueryRow(ctx, query, alias).Scan(
		&p.ID, &p.Alias, &p.Txid, &p.UserID, &p.Username, &p.SubmittedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения заявки: %w", err)
	}
	return &p, nil
}

// DeletePending удаляет заявку (реджект).
// common.ErrNotFound, если заявки уже нет — дубль коллбэка безвреден.
func (r *Repository) DeletePending(ctx context.Context, alias string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pending_deposits WHERE alias = $1`, alias)
	if err != nil {
		return fmt.Errorf("ошибка удаления заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SaveSession открывает (или перезаписывает) сессию аппрува админа.
// Один админ ведёт не больше одного аппрува: повторный Approve по другой
// заявке просто заменяет сессию.
func (r *Repository) SaveSession(ctx context.Context, s *ApprovalSession) error {
	query := `
		INSERT INTO approval_sessions (admin_id, alias, txid, user_id, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (admin_id) DO UPDATE
		SET alias = $2, txid = $3, user_id = $4, created_at = NOW(), expires_at = $5
	`
	_, err := r.db.Exec(ctx, query, s.AdminID, s.Alias, s.Txid, s.UserID, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения сессии аппрува: %w", err)
	}
	return nil
}

// Session возвращает сессию аппрува админа (включая протухшую —
// истечение проверяет сервис, чтобы поведение совпадало с фейком в тестах).
func (r *Repository) Session(ctx context.Context, adminID int64) (*ApprovalSession, error) {
	query := `
		SELECT admin_id, alias, txid, user_id, created_at, expires_at
		FROM approval_sessions
		WHERE admin_id = $1
	`
	var s ApprovalSession
	err := r.db.QueryRow(ctx, query, adminID).Scan(
		&s.AdminID, &s.Alias, &s.Txid, &s.UserID, &s.CreatedAt, &s.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сессии: %w", err)
	}
	return &s, nil
}

// DeleteSession закрывает сессию аппрува.
func (r *Repository) DeleteSession(ctx context.Context, adminID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM approval_sessions WHERE admin_id = $1`, adminID)
	return err
}

// ResolveApproval — единица работы аппрува: в одной транзакции БД
// удаляет заявку, зачисляет баланс и потребляет сессию админа.
// Если заявки уже нет (второй админ успел раньше, дубль коллбэка) —
// сессия всё равно потребляется, баланс не трогается, common.ErrNotFound.
func (r *Repository) ResolveApproval(ctx context.Context, adminID int64, alias string, userID int64, amount common.Cents, txid string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM pending_deposits WHERE alias = $1`, alias)
	if err != nil {
		return fmt.Errorf("ошибка удаления заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Заявка исчезла — гасим сессию и выходим без зачисления
		if _, err := tx.Exec(ctx, `DELETE FROM approval_sessions WHERE admin_id = $1`, adminID); err != nil {
			return fmt.Errorf("ошибка закрытия сессии: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		return common.ErrNotFound
	}

	if err := r.ledger.CreditTx(ctx, tx, userID, amount, txid, ledger.ServiceTopUp); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM approval_sessions WHERE admin_id = $1`, adminID); err != nil {
		return fmt.Errorf("ошибка закрытия сессии: %w", err)
	}

	return tx.Commit(ctx)
}

// DeleteExpiredSessions удаляет протухшие сессии аппрува.
// Вызывается cron-задачей; заявки при этом остаются в очереди.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM approval_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("ошибка чистки сессий: %w", err)
	}
	return tag.RowsAffected(), nil
}
