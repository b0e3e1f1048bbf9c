package assistant

const (
	notBoundReply       = "⚠️ 你還沒有綁定身分。\n請輸入：綁定 你的姓名"
	busyReply           = "❌ 系統忙碌中，請稍後再試。"
	scheduleFailedReply = "❌ 班表檔案載入失敗，請聯絡管理員"
	simplifiedOnlyReply = "ℹ️ 你目前是簡化模式，沒有完整班表資料。\n可以輸入「明天上班嗎」查詢，或用「休息日 11/3,11/10」更新休息日。"
)

const greeting = "👋 你好！\n\n" +
	"我可以幫你查詢班表資訊。\n" +
	"輸入「幫助」查看使用說明。\n" +
	"輸入「綁定 你的姓名」開始使用。"

const helpMessage = `🤖 班表小幫手使用說明

📝 可用命令：
• 綁定 [姓名] - 綁定你的身分
• 明天上班嗎 - 查詢明天是否上班
• 本週班表 - 查詢本週班表（完整模式）
• 同班人員 - 查詢今天同班的同事（完整模式）
• 休息日 11/3,11/10 - 設置休息日（簡化模式）
• 查詢 [姓名] - 查詢指定員工的班別統計
• 員工列表 - 列出班表上的所有員工
• 幫助 - 顯示此說明

📊 班別說明：
• N/N1/N2/N3 = 夜班 🌙
• M/M1/M2/M3 = 早班 🌅
• A/A1/A2 = 中班 🌤️
• O = 休息 😴
• P = 休假 🏖️`
