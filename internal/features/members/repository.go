// Package members — repository.go выполняет все операции с таблицей members.
package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"giftvault.app/telegram-shop/internal/common"
)

// Repository предоставляет методы для работы с таблицей members.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий участников.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create создаёт нового участника.
func (r *Repository) Create(ctx context.Context, member *Member) error {
	query := `
		INSERT INTO members (user_id, username, first_name, last_name, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		member.UserID, member.Username, member.FirstName, member.LastName, member.IsAdmin,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания участника: %w", err)
	}
	return nil
}

// GetByUserID возвращает участника по его Telegram user ID.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	query := `
		SELECT id, user_id, username, first_name, last_name, is_admin, created_at, updated_at
		FROM members
		WHERE user_id = $1
	`
	var m Member
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&m.ID, &m.UserID, &m.Username, &m.FirstName, &m.LastName,
		&m.IsAdmin, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения участника: %w", err)
	}
	return &m, nil
}

// Exists проверяет, есть ли участник в базе.
func (r *Repository) Exists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE user_id = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID).Scan(&exists)
	return exists, err
}

// UpdateInfo обновляет имя/username вернувшегося пользователя.
func (r *Repository) UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error {
	query := `
		UPDATE members
		SET username = $2, first_name = $3, last_name = $4, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, info.Username, info.FirstName, info.LastName)
	if err != nil {
		return fmt.Errorf("ошибка обновления участника: %w", err)
	}
	return nil
}

// SetAdmin выставляет флаг администратора.
// Вызывается при старте для всех ID из ADMIN_IDS.
func (r *Repository) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	query := `UPDATE members SET is_admin = $2, updated_at = NOW() WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID, isAdmin)
	return err
}
