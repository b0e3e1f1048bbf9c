// Package assistant answers the text commands users send to the bot.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"roster-bot/binding"
	"roster-bot/roster"
)

type Binder interface {
	Handle(ctx context.Context, userID, message string) string
}

type Users interface {
	Lookup(ctx context.Context, userID string) (binding.Record, error)
	SetRestDays(ctx context.Context, userID string, days []string) error
}

type Schedules interface {
	Schedule(ctx context.Context) (*roster.Schedule, error)
}

type Router struct {
	binder    Binder
	users     Users
	schedules Schedules
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

func NewRouter(binder Binder, users Users, schedules Schedules, loc *time.Location, now func() time.Time, logger *zap.Logger) *Router {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Router{
		binder:    binder,
		users:     users,
		schedules: schedules,
		loc:       loc,
		now:       now,
		logger:    logger.Named("assistant"),
	}
}

const (
	cmdBind      = "綁定"
	cmdRestDays  = "休息日"
	cmdTomorrow  = "明天上班嗎"
	cmdWeek      = "本週班表"
	cmdCoworkers = "同班人員"

	maxListed = 50
)

// Simplified-script spellings are accepted alongside the traditional ones.
var (
	helpWords     = []string{"幫助", "帮助", "help", "說明", "说明", "?", "？"}
	listWords     = []string{"員工列表", "员工列表", "所有員工", "所有员工", "list"}
	queryPrefixes = []string{"查詢", "查询"}
)

// cutPrefix reports the first of prefixes that s starts with and the rest of s.
func cutPrefix(s string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return rest, true
		}
	}
	return "", false
}

func oneOf(s string, words []string) bool {
	for _, w := range words {
		if strings.EqualFold(s, w) {
			return true
		}
	}
	return false
}

// Reply returns the answer to one incoming text message.
func (r *Router) Reply(ctx context.Context, userID, text string) string {
	cmd := strings.TrimSpace(text)
	log := r.logger.With(zap.String("user_id", userID))
	log.Debug("message received", zap.String("text", cmd))

	if rest, ok := cutPrefix(cmd, queryPrefixes); ok {
		return r.query(ctx, log, strings.TrimSpace(rest))
	}

	switch {
	case strings.HasPrefix(cmd, cmdBind):
		// The bind handler does its own prefix handling on the raw text.
		return r.binder.Handle(ctx, userID, text)
	case strings.HasPrefix(cmd, cmdRestDays):
		return r.setRestDays(ctx, log, userID, strings.TrimPrefix(cmd, cmdRestDays))
	case cmd == cmdTomorrow:
		return r.tomorrow(ctx, log, userID)
	case cmd == cmdWeek:
		return r.week(ctx, log, userID)
	case cmd == cmdCoworkers:
		return r.coworkers(ctx, log, userID)
	case oneOf(cmd, listWords):
		return r.list(ctx, log)
	case oneOf(cmd, helpWords):
		return helpMessage
	}
	return greeting
}

func (r *Router) today() time.Time {
	return r.now().In(r.loc)
}

// lookup resolves the caller's binding; reply is set when the caller cannot go on.
func (r *Router) lookup(ctx context.Context, log *zap.Logger, userID string) (rec binding.Record, reply string) {
	rec, err := r.users.Lookup(ctx, userID)
	switch {
	case errors.Is(err, binding.ErrNotBound):
		return rec, notBoundReply
	case err != nil:
		log.Error("lookup binding failed", zap.Error(err))
		return rec, busyReply
	}
	return rec, ""
}

func (r *Router) schedule(ctx context.Context, log *zap.Logger) (*roster.Schedule, string) {
	s, err := r.schedules.Schedule(ctx)
	if err != nil {
		log.Error("load schedule failed", zap.Error(err))
		return nil, scheduleFailedReply
	}
	return s, ""
}

func (r *Router) setRestDays(ctx context.Context, log *zap.Logger, userID, args string) string {
	days, err := binding.ParseRestDays(args)
	if err != nil {
		return fmt.Sprintf("❌ 日期格式錯誤：%s\n例如：休息日 11/3,11/10,11/17", strings.TrimSpace(args))
	}

	err = r.users.SetRestDays(ctx, userID, days)
	switch {
	case errors.Is(err, binding.ErrNotBound):
		return notBoundReply
	case err != nil:
		log.Error("set rest days failed", zap.Error(err))
		return busyReply
	}

	log.Info("rest days updated", zap.Strings("days", days))
	return fmt.Sprintf("✅ 休息日已設置：\n%s\n\n系統會在前一天晚上提醒你！", strings.Join(days, "、"))
}

func (r *Router) tomorrow(ctx context.Context, log *zap.Logger, userID string) string {
	rec, reply := r.lookup(ctx, log, userID)
	if reply != "" {
		return reply
	}
	msg, err := r.tomorrowStatus(ctx, rec)
	if err != nil {
		log.Error("tomorrow status failed", zap.Error(err))
		return scheduleFailedReply
	}
	return msg
}

func (r *Router) tomorrowStatus(ctx context.Context, rec binding.Record) (string, error) {
	var s *roster.Schedule
	if rec.Mode == binding.ModeFull {
		var err error
		if s, err = r.schedules.Schedule(ctx); err != nil {
			return "", err
		}
	}
	return r.TomorrowFrom(s, rec), nil
}

// TomorrowFrom describes rec's next day: the shift in s in full mode, the
// declared rest days otherwise. s is not consulted for simplified users.
func (r *Router) TomorrowFrom(s *roster.Schedule, rec binding.Record) string {
	day := r.today().AddDate(0, 0, 1)
	label := dayLabel(day)

	if rec.Mode != binding.ModeFull {
		switch {
		case rec.IsRestDay(day):
			return fmt.Sprintf("😴 明天（%s）休息，好好放鬆！", label)
		case rec.RestDays == "":
			return fmt.Sprintf("📅 明天（%s）\n你還沒有設置休息日，請輸入：\n休息日 11/3,11/10,11/17", label)
		}
		return fmt.Sprintf("💼 明天（%s）要上班！", label)
	}

	code, ok := s.ShiftOn(rec.Name, day)
	switch {
	case !ok:
		return fmt.Sprintf("📅 班表中找不到明天（%s）的資料。", label)
	case code == "":
		return fmt.Sprintf("📅 明天（%s）班表上沒有排班。", label)
	}

	cat := roster.Classify(code)
	if cat.Working() {
		return fmt.Sprintf("💼 明天（%s）要上班！\n%s %s（%s）", label, cat.Emoji(), cat, code)
	}
	return fmt.Sprintf("😴 明天（%s）不用上班：%s %s（%s）", label, cat.Emoji(), cat, code)
}

// fullOnly returns the caller's record when they are in full mode.
func (r *Router) fullOnly(ctx context.Context, log *zap.Logger, userID string) (binding.Record, string) {
	rec, reply := r.lookup(ctx, log, userID)
	if reply != "" {
		return rec, reply
	}
	if rec.Mode != binding.ModeFull {
		return rec, simplifiedOnlyReply
	}
	return rec, ""
}

func (r *Router) week(ctx context.Context, log *zap.Logger, userID string) string {
	rec, reply := r.fullOnly(ctx, log, userID)
	if reply != "" {
		return reply
	}
	s, reply := r.schedule(ctx, log)
	if reply != "" {
		return reply
	}

	today := r.today()
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))

	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s 本週班表\n\n", rec.Name)
	for _, d := range s.Span(rec.Name, monday, 7) {
		fmt.Fprintf(&b, "%s（%s） ", dayLabel(d.Date), weekdayNames[d.Date.Weekday()])
		if !d.Known || d.Code == "" {
			b.WriteString("－\n")
			continue
		}
		fmt.Fprintf(&b, "%s %s %s\n", d.Category.Emoji(), d.Code, d.Category)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) coworkers(ctx context.Context, log *zap.Logger, userID string) string {
	rec, reply := r.fullOnly(ctx, log, userID)
	if reply != "" {
		return reply
	}
	s, reply := r.schedule(ctx, log)
	if reply != "" {
		return reply
	}

	today := r.today()
	label := dayLabel(today)
	code, ok := s.ShiftOn(rec.Name, today)
	if !ok {
		return fmt.Sprintf("📅 班表中找不到今天（%s）的資料。", label)
	}
	cat := roster.Classify(code)
	if !cat.Working() {
		return fmt.Sprintf("😴 你今天（%s）沒有上班。", label)
	}

	names := s.Coworkers(rec.Name, today)
	if len(names) == 0 {
		return fmt.Sprintf("👥 今天（%s）%s只有你一個人。", label, cat)
	}
	return fmt.Sprintf("👥 今天（%s）同為 %s %s 的同事：\n• %s", label, cat.Emoji(), cat, strings.Join(names, "\n• "))
}

func (r *Router) query(ctx context.Context, log *zap.Logger, name string) string {
	if name == "" {
		return "請輸入要查詢的姓名，例如：\n查詢 王小明"
	}
	s, reply := r.schedule(ctx, log)
	if reply != "" {
		return reply
	}

	sum, ok := s.Summary(name)
	if !ok {
		return "找不到員工: " + name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 %s 的班表\n", sum.Name)
	b.WriteString(strings.Repeat("=", 30) + "\n")
	fmt.Fprintf(&b, "📅 總天數: %d 天\n\n", sum.TotalDays)
	b.WriteString("📊 班別統計:\n")
	for _, cat := range roster.Categories {
		if n := sum.Stats[cat]; n > 0 {
			fmt.Fprintf(&b, "  %s %s: %d 天\n", cat.Emoji(), cat, n)
		}
	}
	return b.String()
}

func (r *Router) list(ctx context.Context, log *zap.Logger) string {
	s, reply := r.schedule(ctx, log)
	if reply != "" {
		return reply
	}

	names := s.Names()
	shown := names
	if len(shown) > maxListed {
		shown = shown[:maxListed]
	}

	msg := "👥 員工列表：\n\n• " + strings.Join(shown, "\n• ")
	if len(names) > maxListed {
		msg += fmt.Sprintf("\n\n... 及其他 %d 位員工", len(names)-maxListed)
	}
	return msg
}

var weekdayNames = [...]string{"日", "一", "二", "三", "四", "五", "六"}

func dayLabel(t time.Time) string {
	return fmt.Sprintf("%d/%d", t.Month(), t.Day())
}
