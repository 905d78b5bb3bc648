// Package members — service.go содержит бизнес-логику регистрации покупателей.
package members

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/config"
)

// Service управляет пользователями бота.
type Service struct {
	repo *Repository
	cfg  *config.Config
}

// NewService создаёт новый сервис участников.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// EnsureMember гарантирует, что пользователь есть в базе.
// Если нет — создаёт запись (флаг админа берём из конфига).
// Если есть — обновляет имя/username, они могли измениться.
// Вызывается на каждое первое сообщение в обработчике апдейтов.
func (s *Service) EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	exists, err := s.repo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if exists {
		return s.repo.UpdateInfo(ctx, userID, UpdateInfo{
			Username:  username,
			FirstName: firstName,
			LastName:  lastName,
		})
	}

	member := &Member{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		IsAdmin:   s.cfg.IsAdmin(userID),
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return fmt.Errorf("ошибка регистрации нового пользователя: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"username": username,
		"is_admin": member.IsAdmin,
	}).Info("Новый пользователь зарегистрирован")

	return nil
}

// GetByUserID возвращает участника по его Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// IsAdmin проверяет флаг администратора в базе.
// Конфиг — источник истины при регистрации, база — при проверках в рантайме.
func (s *Service) IsAdmin(ctx context.Context, userID int64) bool {
	member, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return false
	}
	return member.IsAdmin
}

// SyncAdmins помечает в базе всех админов из конфига.
// Запускается при старте, чтобы ADMIN_IDS имел эффект и для старых записей.
func (s *Service) SyncAdmins(ctx context.Context) {
	for _, id := range s.cfg.AdminIDs {
		if err := s.repo.SetAdmin(ctx, id, true); err != nil {
			log.WithError(err).WithField("user_id", id).Warn("SetAdmin failed")
		}
	}
}
