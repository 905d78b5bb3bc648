// Package admin — service.go содержит логику аутентификации, управления сессиями
// и state-машину пошаговых действий со стоком.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"giftvault.app/telegram-shop/internal/common"
	"giftvault.app/telegram-shop/internal/config"
	"giftvault.app/telegram-shop/internal/features/catalog"
)

const (
	maxLoginFailures = 3
	lockoutWindow    = 1 * time.Hour
	sessionLifetime  = 24 * time.Hour
	dialogTTL        = 5 * time.Minute
)

// Service управляет админ-панелью.
type Service struct {
	repo     *Repository
	catalog  *catalog.Service
	cfg      *config.Config
	states   map[int64]*DialogState // Состояния диалогов (in-memory)
	statesMu sync.RWMutex
}

// NewService создаёт сервис админ-панели.
func NewService(repo *Repository, cat *catalog.Service, cfg *config.Config) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		cfg:     cfg,
		states:  make(map[int64]*DialogState),
	}
}

// VerifyPassword проверяет пароль администратора через Argon2id.
// Три неудачные попытки за час — блокировка до истечения окна.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	failures, err := s.repo.GetRecentFailures(ctx, userID, lockoutWindow)
	if err != nil {
		return err
	}
	if failures >= maxLoginFailures {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.cfg.AdminPasswordHash)

	if err := s.repo.LogAttempt(ctx, userID, match); err != nil {
		log.WithError(err).Warn("Не удалось записать попытку входа")
	}
	if !match {
		return common.ErrWrongPassword
	}

	session := &AdminSession{
		UserID:       userID,
		SessionToken: generateSecureToken(),
		ExpiresAt:    time.Now().Add(sessionLifetime),
	}
	return s.repo.CreateSession(ctx, session)
}

// Authorize проверяет, входит ли пользователь в список админов из конфига.
func (s *Service) Authorize(userID int64) error {
	if !s.cfg.IsAdmin(userID) {
		return common.ErrNotAdmin
	}
	return nil
}

// RequireSession возвращает ErrSessionExpired, если живой сессии панели нет.
func (s *Service) RequireSession(ctx context.Context, userID int64) error {
	session, err := s.repo.GetActiveSession(ctx, userID)
	if err != nil || session == nil {
		return common.ErrSessionExpired
	}
	return nil
}

// TouchSession обновляет время последней активности.
func (s *Service) TouchSession(ctx context.Context, userID int64) {
	if err := s.repo.UpdateActivity(ctx, userID); err != nil {
		log.WithError(err).Warn("Не удалось обновить активность сессии")
	}
}

// Logout деактивирует сессии и сбрасывает диалог.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	s.ClearState(userID)
	return s.repo.DeactivateSession(ctx, userID)
}

// GetState возвращает текущее состояние диалога или nil.
func (s *Service) GetState(userID int64) *DialogState {
	s.statesMu.RLock()
	defer s.statesMu.RUnlock()

	state, ok := s.states[userID]
	if !ok || time.Now().After(state.ExpiresAt) {
		return nil
	}
	return state
}

// SetState устанавливает состояние диалога с пятиминутным таймаутом.
func (s *Service) SetState(userID int64, stateName, data string) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()

	s.states[userID] = &DialogState{
		State:     stateName,
		Data:      data,
		ExpiresAt: time.Now().Add(dialogTTL),
	}
}

// ClearState сбрасывает состояние диалога.
func (s *Service) ClearState(userID int64) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	delete(s.states, userID)
}

// AddBrandOffers сохраняет бренд с офферами, разобранными из текста диалога.
func (s *Service) AddBrandOffers(ctx context.Context, category, brand, lines string) (int, error) {
	offers, err := parseOfferLines(lines)
	if err != nil {
		return 0, err
	}
	if err := s.catalog.AddOffers(ctx, category, brand, offers); err != nil {
		return 0, err
	}
	return len(offers), nil
}

// parseOfferLines разбирает строки вида "<label>,<true|false>", по одной на оффер.
// Флаг доступности можно опустить — тогда оффер сразу в продаже.
func parseOfferLines(text string) ([]*catalog.Offer, error) {
	var offers []*catalog.Offer
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		label := line
		available := true
		if idx := strings.LastIndex(line, ","); idx >= 0 {
			switch strings.TrimSpace(strings.ToLower(line[idx+1:])) {
			case "true":
				label = strings.TrimSpace(line[:idx])
			case "false":
				label = strings.TrimSpace(line[:idx])
				available = false
			default:
				return nil, fmt.Errorf("строка %q: после запятой ожидается true или false", line)
			}
		}
		if label == "" {
			return nil, fmt.Errorf("строка %q: пустой label", line)
		}
		offers = append(offers, &catalog.Offer{Label: label, Available: available})
	}
	if len(offers) == 0 {
		return nil, fmt.Errorf("не найдено ни одного оффера")
	}
	return offers, nil
}

// --- Криптографические утилиты ---

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравнение в постоянном времени (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken генерирует криптографически безопасный токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
