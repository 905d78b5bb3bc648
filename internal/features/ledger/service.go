// Package ledger — service.go содержит бизнес-логику работы с балансом:
// валидацию сумм, зачисления, списания и форматирование истории.
package ledger

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/common"
)

// Store — хранилище балансов и транзакций.
// Продакшен-реализация — *Repository (PostgreSQL), тесты используют фейк.
type Store interface {
	EnsureBalance(ctx context.Context, userID int64) error
	Balance(ctx context.Context, userID int64) (common.Cents, error)
	Credit(ctx context.Context, userID int64, amount common.Cents, txid, service string) error
	Debit(ctx context.Context, userID int64, amount common.Cents, service, description string) error
	History(ctx context.Context, userID int64, limit int) ([]*Transaction, error)
}

// Service управляет балансами покупателей.
type Service struct {
	store Store
}

// NewService создаёт новый сервис леджера.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetBalance возвращает текущий баланс пользователя.
// Запись создаётся при первом обращении, с нулевым балансом.
func (s *Service) GetBalance(ctx context.Context, userID int64) (common.Cents, error) {
	if err := s.store.EnsureBalance(ctx, userID); err != nil {
		return 0, err
	}
	return s.store.Balance(ctx, userID)
}

// Credit зачисляет одобренный депозит.
// Неположительная сумма — common.ErrInvalidAmount, никаких изменений.
func (s *Service) Credit(ctx context.Context, userID int64, amount common.Cents, txid, service string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	if err := s.store.Credit(ctx, userID, amount, txid, service); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  common.FormatMoney(amount),
		"txid":    txid,
	}).Info("Баланс пополнен")
	return nil
}

// Debit списывает стоимость покупки.
// Возвращает common.ErrInsufficientBalance без изменений состояния,
// если средств не хватает.
func (s *Service) Debit(ctx context.Context, userID int64, amount common.Cents, service, description string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	if err := s.store.Debit(ctx, userID, amount, service, description); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  common.FormatMoney(amount),
		"service": service,
	}).Info("Покупка списана с баланса")
	return nil
}

// FormatHistory возвращает готовый текст с последними 10 транзакциями.
func (s *Service) FormatHistory(ctx context.Context, userID int64) (string, error) {
	transactions, err := s.store.History(ctx, userID, 10)
	if err != nil {
		return "", err
	}

	if len(transactions) == 0 {
		return "📋 No transactions yet.", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Last %d transactions:\n\n", len(transactions)))
	for i, tx := range transactions {
		detail := tx.Service
		if tx.Description != "" {
			detail = tx.Description
		}
		sb.WriteString(fmt.Sprintf("%d. %s | %s | %s\n",
			i+1,
			common.FormatDateTime(tx.CreatedAt),
			common.FormatSignedMoney(tx.AmountCents),
			detail,
		))
	}
	return sb.String(), nil
}
