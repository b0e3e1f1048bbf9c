// Package binding links a chat user to a person on the team and decides
// which mode the bot runs in for them.
package binding

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"roster-bot/roster"
	"roster-bot/sheet"
)

const Prefix = "綁定 "

// Recorder receives the step-by-step trace of a bind.
type Recorder interface {
	Record(message string)
}

type Handler struct {
	roster    roster.Source
	store     sheet.Store
	sheetName string
	rec       Recorder
}

func NewHandler(src roster.Source, store sheet.Store, sheetName string, rec Recorder) *Handler {
	return &Handler{roster: src, store: store, sheetName: sheetName, rec: rec}
}

// Handle binds userID to the name carried in message and returns the reply
// text. Failures are turned into an error reply; Handle never panics.
func (h *Handler) Handle(ctx context.Context, userID, message string) (reply string) {
	trace := uuid.NewString()[:8]
	logf := func(format string, args ...any) {
		h.rec.Record("[" + trace + "] " + fmt.Sprintf(format, args...))
	}

	defer func() {
		if r := recover(); r != nil {
			reply = h.fail(logf, fmt.Errorf("panic: %v", r))
		}
	}()

	logf("=== 開始綁定流程 ===")
	reply, err := h.bind(ctx, userID, message, logf)
	if err != nil {
		return h.fail(logf, err)
	}

	logf("準備回覆: %s", reply)
	logf("=== 綁定流程結束 ===")
	return reply
}

func (h *Handler) bind(ctx context.Context, userID, message string, logf func(string, ...any)) (string, error) {
	logf("原始訊息: %s", message)

	// Only the first occurrence is removed, wherever it is.
	name := strings.TrimSpace(strings.Replace(message, Prefix, "", 1))
	logf("解析出的姓名: %s", name)

	logf("正在獲取所有員工...")
	employees, err := h.roster.AllEmployees(ctx)
	if err != nil {
		return "", fmt.Errorf("get employees: %w", err)
	}
	logf("所有員工: %s", strings.Join(employees, ","))
	logf("員工數量: %d", len(employees))

	inSchedule := lo.Contains(employees, name)
	logf("是否在班表中: %t", inSchedule)

	mode := ModeSimplified
	if inSchedule {
		mode = ModeFull
	}
	logf("判斷模式: %s", mode)

	sh, err := h.store.Open(ctx, h.sheetName)
	if err != nil {
		logf("獲取用戶配置 Sheet: 失敗")
		return "", err
	}
	logf("獲取用戶配置 Sheet: 成功")

	rows, err := sh.Rows(ctx)
	if err != nil {
		return "", err
	}
	logf("用戶配置資料行數: %d", len(rows))

	// Rebinding always clears rest days.
	if i := findRow(rows, userID); i >= 0 {
		if err := sh.WriteRange(ctx, i, ColName, [][]string{{name, string(mode), ""}}); err != nil {
			return "", err
		}
		logf("更新現有綁定")
	} else {
		if err := sh.AppendRow(ctx, []string{userID, name, string(mode), ""}); err != nil {
			return "", err
		}
		logf("新增綁定記錄")
	}

	return successReply(name, mode), nil
}

func (h *Handler) fail(logf func(string, ...any), err error) string {
	logf("!!! 錯誤發生 !!!")
	logf("錯誤訊息: %v", err)
	logf("錯誤堆疊: %s", debug.Stack())
	return "❌ 系統錯誤：" + err.Error() + "\n請檢查 Apps Script 執行日誌。"
}

func successReply(name string, mode Mode) string {
	var b strings.Builder
	b.WriteString("✅ 綁定成功！\n\n")
	fmt.Fprintf(&b, "👤 姓名：%s\n", name)
	fmt.Fprintf(&b, "📊 模式：%s模式\n", mode)

	if mode == ModeFull {
		b.WriteString("\n你可以使用以下命令：\n")
		b.WriteString("• 明天上班嗎\n")
		b.WriteString("• 本週班表\n")
		b.WriteString("• 同班人員\n")
	} else {
		b.WriteString("\n")
		b.WriteString("請設置你的休息日：\n")
		b.WriteString("例如：休息日 11/3,11/10,11/17\n\n")
		b.WriteString("設置後系統會每天自動提醒你！")
	}
	return b.String()
}
