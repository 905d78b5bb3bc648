// Package deposits — service.go содержит бизнес-логику очереди депозитов
// и конечный автомат аппрува:
//
//	IDLE → AWAITING_AMOUNT (Approve нажат, сессия записана в БД)
//	AWAITING_AMOUNT → IDLE (введена валидная сумма ЛИБО заявка исчезла)
//
// Невалидная сумма оставляет сессию открытой — админ может повторить ввод.
package deposits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/common"
)

// Сколько раз перегенерируем alias при коллизии, прежде чем сдаться.
const maxAliasAttempts = 5

// Store — хранилище заявок и сессий аппрува.
// Продакшен-реализация — *Repository (PostgreSQL), тесты используют фейк.
type Store interface {
	InsertPending(ctx context.Context, p *PendingDeposit) error
	ListPending(ctx context.Context) ([]*PendingDeposit, error)
	GetPending(ctx context.Context, alias string) (*PendingDeposit, error)
	DeletePending(ctx context.Context, alias string) error
	SaveSession(ctx context.Context, s *ApprovalSession) error
	Session(ctx context.Context, adminID int64) (*ApprovalSession, error)
	DeleteSession(ctx context.Context, adminID int64) error
	ResolveApproval(ctx context.Context, adminID int64, alias string, userID int64, amount common.Cents, txid string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Service управляет очередью депозитов и workflow аппрува.
type Service struct {
	store      Store
	sessionTTL time.Duration
	now        func() time.Time // подменяется в тестах
}

// NewService создаёт сервис очереди депозитов.
func NewService(store Store, sessionTTL time.Duration) *Service {
	return &Service{
		store:      store,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Submit принимает txid от пользователя и ставит заявку в очередь.
// Проверяется только ФОРМА txid (слабый спам-фильтр) — существование
// транзакции в блокчейне проверяет админ руками. Дубликаты txid
// принимаются сознательно: различить повторную отправку и честную
// вторую транзакцию бот не может.
func (s *Service) Submit(ctx context.Context, userID int64, username, txid string) (*PendingDeposit, error) {
	if !common.ValidTxidShape(txid) {
		return nil, common.ErrInvalidTxid
	}

	for attempt := 0; attempt < maxAliasAttempts; attempt++ {
		p := &PendingDeposit{
			Alias:       uuid.NewString()[:8],
			Txid:        txid,
			UserID:      userID,
			Username:    username,
			SubmittedAt: s.now(),
		}
		err := s.store.InsertPending(ctx, p)
		if errors.Is(err, ErrAliasTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		log.WithFields(log.Fields{
			"user_id": userID,
			"alias":   p.Alias,
			"txid":    txid,
		}).Info("Заявка на депозит поставлена в очередь")
		return p, nil
	}
	return nil, fmt.Errorf("не удалось подобрать alias за %d попыток", maxAliasAttempts)
}

// List возвращает очередь заявок, старые сверху.
func (s *Service) List(ctx context.Context) ([]*PendingDeposit, error) {
	return s.store.ListPending(ctx)
}

// BeginApproval — переход IDLE → AWAITING_AMOUNT.
// Записывает сессию аппрува в БД и возвращает заявку для текста запроса суммы.
// common.ErrNotFound, если заявки уже нет.
func (s *Service) BeginApproval(ctx context.Context, adminID int64, alias string) (*PendingDeposit, error) {
	p, err := s.store.GetPending(ctx, alias)
	if err != nil {
		return nil, err
	}

	session := &ApprovalSession{
		AdminID:   adminID,
		Alias:     p.Alias,
		Txid:      p.Txid,
		UserID:    p.UserID,
		CreatedAt: s.now(),
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"admin_id": adminID,
		"alias":    alias,
	}).Info("Открыта сессия аппрува, ждём сумму")
	return p, nil
}

// HasOpenSession сообщает, ждёт ли бот сумму от этого админа.
// Роутер по этому признаку решает, куда отдать свободный текст админа.
func (s *Service) HasOpenSession(ctx context.Context, adminID int64) bool {
	session, err := s.store.Session(ctx, adminID)
	return err == nil && !session.Expired(s.now())
}

// SubmitAmount — переход AWAITING_AMOUNT → IDLE.
// Разбирает текст админа как сумму и закрывает аппрув одной транзакцией:
// кредит + удаление заявки + потребление сессии.
//
// Ошибки:
//   - ErrNoSession — сессии нет или протухла (текст админа не про аппрув);
//   - common.ErrInvalidAmount — сумма не разобралась, СЕССИЯ ОСТАЁТСЯ ОТКРЫТОЙ;
//   - common.ErrNotFound — заявку уже закрыли (дубль коллбэка, второй админ);
//     сессия потреблена, баланс не тронут.
func (s *Service) SubmitAmount(ctx context.Context, adminID int64, text string) (*ApprovalResult, error) {
	session, err := s.store.Session(ctx, adminID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		// Протухшую сессию чистим лениво; cron подчищает остальное
		if err := s.store.DeleteSession(ctx, adminID); err != nil {
			log.WithError(err).WithField("admin_id", adminID).Warn("не удалось удалить протухшую сессию")
		}
		return nil, ErrNoSession
	}

	amount, err := common.ParseAmount(text)
	if err != nil {
		return nil, err // сессия остаётся открытой, админ может повторить
	}

	err = s.store.ResolveApproval(ctx, adminID, session.Alias, session.UserID, amount, session.Txid)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"admin_id": adminID,
		"user_id":  session.UserID,
		"amount":   common.FormatMoney(amount),
		"txid":     session.Txid,
	}).Info("Депозит одобрен и зачислен")

	return &ApprovalResult{
		UserID: session.UserID,
		Amount: amount,
		Txid:   session.Txid,
		Alias:  session.Alias,
	}, nil
}

// Reject удаляет заявку без каких-либо следов в леджере.
// Возвращает удалённую заявку для уведомления пользователя.
// Порядок фиксирован: сначала удаление, потом уведомление.
func (s *Service) Reject(ctx context.Context, alias string) (*PendingDeposit, error) {
	p, err := s.store.GetPending(ctx, alias)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeletePending(ctx, alias); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"alias":   alias,
		"user_id": p.UserID,
	}).Info("Заявка на депозит отклонена")
	return p, nil
}

// ExpireSessions удаляет протухшие сессии аппрува (cron).
// Заявки остаются в очереди — потерян только «замах» админа.
func (s *Service) ExpireSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}
