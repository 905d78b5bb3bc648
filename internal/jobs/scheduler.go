// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасную чистку протухших сессий
// аппрува и ежедневную сводку по очереди депозитов.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"giftvault.app/telegram-shop/internal/features/deposits"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron            *cron.Cron
	depositsService *deposits.Service
	adminIDs        []int64
	sendFunc        func(userID int64, text string)
}

// NewScheduler создаёт планировщик задач. Расписание считается в UTC:
// магазин международный, привязки к одному часовому поясу нет.
func NewScheduler(depositsService *deposits.Service, adminIDs []int64, sendFunc func(userID int64, text string)) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		depositsService: depositsService,
		adminIDs:        adminIDs,
		sendFunc:        sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Чистка протухших сессий аппрува каждый час
	s.cron.AddFunc("0 * * * *", func() {
		n, err := s.depositsService.ExpireSessions(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка чистки сессий аппрува")
			return
		}
		if n > 0 {
			log.WithField("removed", n).Info("[CRON] Удалены протухшие сессии аппрува")
		}
	})

	// Ежедневная сводка по очереди депозитов в 09:00 UTC
	s.cron.AddFunc("0 9 * * *", func() {
		pending, err := s.depositsService.List(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка получения очереди депозитов")
			return
		}
		if len(pending) == 0 {
			return
		}

		text := fmt.Sprintf("📋 Daily digest: %d deposit(s) awaiting review. Send /pending to process them.", len(pending))
		for _, adminID := range s.adminIDs {
			s.sendFunc(adminID, text)
		}
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен (UTC)")
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
