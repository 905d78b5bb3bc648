// Package catalog — repository.go выполняет все операции с таблицей catalog_offers.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"giftvault.app/telegram-shop/internal/common"
)

// Repository предоставляет методы для работы с таблицей catalog_offers.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий витрины.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Brands возвращает все бренды категории по алфавиту.
func (r *Repository) Brands(ctx context.Context, category string) ([]string, error) {
	query := `
		SELECT DISTINCT brand
		FROM catalog_offers
		WHERE category = $1
		ORDER BY brand
	`
	rows, err := r.db.Query(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения брендов: %w", err)
	}
	defer rows.Close()

	var brands []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// AvailableOffers возвращает доступные офферы бренда в порядке добавления.
func (r *Repository) AvailableOffers(ctx context.Context, category, brand string) ([]*Offer, error) {
	return r.offers(ctx, category, brand, true)
}

// AllOffers возвращает офферы бренда вместе со скрытыми. Нужен админ-панели.
func (r *Repository) AllOffers(ctx context.Context, category, brand string) ([]*Offer, error) {
	return r.offers(ctx, category, brand, false)
}

func (r *Repository) offers(ctx context.Context, category, brand string, onlyAvailable bool) ([]*Offer, error) {
	query := `
		SELECT id, category, brand, label, available, created_at
		FROM catalog_offers
		WHERE category = $1 AND brand = $2
	`
	if onlyAvailable {
		query += ` AND available`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, category, brand)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения офферов: %w", err)
	}
	defer rows.Close()

	var offers []*Offer
	for rows.Next() {
		var o Offer
		if err := rows.Scan(&o.ID, &o.Category, &o.Brand, &o.Label, &o.Available, &o.CreatedAt); err != nil {
			return nil, err
		}
		offers = append(offers, &o)
	}
	return offers, rows.Err()
}

// GetOffer возвращает оффер по полному ключу витрины.
func (r *Repository) GetOffer(ctx context.Context, category, brand, label string) (*Offer, error) {
	query := `
		SELECT id, category, brand, label, available, created_at
		FROM catalog_offers
		WHERE category = $1 AND brand = $2 AND label = $3
	`
	var o Offer
	err := r.db.QueryRow(ctx, query, category, brand, label).Scan(
		&o.ID, &o.Category, &o.Brand, &o.Label, &o.Available, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения оффера: %w", err)
	}
	return &o, nil
}

// UpsertOffer добавляет оффер или обновляет его доступность.
// Ключ уникальности — (category, brand, label).
func (r *Repository) UpsertOffer(ctx context.Context, category, brand, label string, available bool) error {
	query := `
		INSERT INTO catalog_offers (category, brand, label, available)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (category, brand, label) DO UPDATE SET available = EXCLUDED.available
	`
	_, err := r.db.Exec(ctx, query, category, brand, label, available)
	if err != nil {
		return fmt.Errorf("ошибка сохранения оффера: %w", err)
	}
	return nil
}

// ToggleOffer инвертирует доступность оффера и возвращает новое значение.
func (r *Repository) ToggleOffer(ctx context.Context, category, brand, label string) (bool, error) {
	query := `
		UPDATE catalog_offers
		SET available = NOT available
		WHERE category = $1 AND brand = $2 AND label = $3
		RETURNING available
	`
	var available bool
	err := r.db.QueryRow(ctx, query, category, brand, label).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, common.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("ошибка переключения оффера: %w", err)
	}
	return available, nil
}

// ToggleOfferByID инвертирует доступность по первичному ключу.
// Нужен инлайн-кнопкам админки: id влезает в callback data, полный ключ — нет.
func (r *Repository) ToggleOfferByID(ctx context.Context, id int64) (*Offer, error) {
	query := `
		UPDATE catalog_offers
		SET available = NOT available
		WHERE id = $1
		RETURNING id, category, brand, label, available, created_at
	`
	var o Offer
	err := r.db.QueryRow(ctx, query, id).Scan(&o.ID, &o.Category, &o.Brand, &o.Label, &o.Available, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка переключения оффера: %w", err)
	}
	return &o, nil
}

// BrandExists проверяет, есть ли у категории такой бренд.
func (r *Repository) BrandExists(ctx context.Context, category, brand string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM catalog_offers WHERE category = $1 AND brand = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, category, brand).Scan(&exists)
	return exists, err
}
