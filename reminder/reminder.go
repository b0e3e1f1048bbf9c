// Package reminder pushes each bound user a note about tomorrow.
package reminder

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"roster-bot/binding"
	"roster-bot/roster"
)

type Users interface {
	All(ctx context.Context) ([]binding.Record, error)
}

type Schedules interface {
	Schedule(ctx context.Context) (*roster.Schedule, error)
}

type Status interface {
	TomorrowFrom(s *roster.Schedule, rec binding.Record) string
}

type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}

type Reminder struct {
	users     Users
	schedules Schedules
	status    Status
	notifier  Notifier
	logger    *zap.Logger
}

func New(users Users, schedules Schedules, status Status, notifier Notifier, logger *zap.Logger) *Reminder {
	return &Reminder{
		users:     users,
		schedules: schedules,
		status:    status,
		notifier:  notifier,
		logger:    logger.Named("reminder"),
	}
}

// Schedule registers the daily sweep on c.
func (r *Reminder) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if _, err := r.Run(context.Background()); err != nil {
			r.logger.Error("reminder sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule reminder %q: %w", spec, err)
	}
	return id, nil
}

// Run sends one reminder per bound user. The schedule is loaded once per
// sweep; when that fails every full-mode user is skipped while simplified
// users are still reminded. Failures for a single user are logged and
// skipped; only a failure to read the users aborts the sweep.
func (r *Reminder) Run(ctx context.Context) (sent int, err error) {
	users, err := r.users.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	var schedule *roster.Schedule
	if lo.SomeBy(users, func(u binding.Record) bool { return u.Name != "" && u.Mode == binding.ModeFull }) {
		if schedule, err = r.schedules.Schedule(ctx); err != nil {
			r.logger.Error("load schedule failed, skipping full-mode users", zap.Error(err))
		}
	}

	for _, u := range users {
		if u.Name == "" {
			continue
		}
		log := r.logger.With(zap.String("user_id", u.UserID), zap.String("name", u.Name))

		if u.Mode == binding.ModeFull && schedule == nil {
			log.Warn("reminder skipped, no schedule")
			continue
		}
		status := r.status.TomorrowFrom(schedule, u)
		if err := r.notifier.Notify(ctx, u.UserID, "🔔 每日提醒\n\n"+status); err != nil {
			log.Error("send reminder failed", zap.Error(err))
			continue
		}
		sent++
	}

	r.logger.Info("reminder sweep done", zap.Int("users", len(users)), zap.Int("sent", sent))
	return sent, nil
}
