package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
)

// Replier turns an incoming text into the reply text.
type Replier interface {
	Reply(ctx context.Context, userID, text string) string
}

type Bot struct {
	B      *telebot.Bot
	Router Replier

	logger *zap.Logger
}

// Keyboards
var (
	menuBtnTomorrow  = telebot.Btn{Text: "明天上班嗎"}
	menuBtnWeek      = telebot.Btn{Text: "本週班表"}
	menuBtnCoworkers = telebot.Btn{Text: "同班人員"}
	menuBtnHelp      = telebot.Btn{Text: "幫助"}
	menuKeyboard     = &telebot.ReplyMarkup{ResizeKeyboard: true}
)

const replyTimeout = 30 * time.Second

func NewSettings(token string, pollTimeout time.Duration) telebot.Settings {
	return telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: pollTimeout},
	}
}

func NewBot(pref telebot.Settings, router Replier, logger *zap.Logger) (*Bot, error) {
	logger = logger.Named("bot")
	pref.OnError = func(err error, c telebot.Context) {
		fields := []zap.Field{zap.Error(err)}
		if c != nil && c.Sender() != nil {
			fields = append(fields, zap.Int64("user_id", c.Sender().ID))
		}
		logger.Error("telegram handler error", fields...)
	}

	b, err := telebot.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	bot := &Bot{
		B:      b,
		Router: router,
		logger: logger,
	}

	// Init keyboards
	menuKeyboard.Reply(
		menuKeyboard.Row(menuBtnTomorrow, menuBtnWeek),
		menuKeyboard.Row(menuBtnCoworkers, menuBtnHelp),
	)

	bot.registerHandlers()
	return bot, nil
}

func (bot *Bot) Start() {
	bot.B.Start()
}

func (bot *Bot) Stop() {
	bot.B.Stop()
}

func (bot *Bot) registerHandlers() {
	bot.B.Handle("/start", bot.handleStart)

	// Menu buttons arrive as plain text and go through the router too.
	bot.B.Handle(telebot.OnText, bot.handleText)
}

// --- Handlers ---

func (bot *Bot) handleStart(c telebot.Context) error {
	return c.Send("歡迎使用班表小幫手！\n請先輸入「綁定 你的姓名」完成綁定。", menuKeyboard)
}

func (bot *Bot) handleText(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	userID := strconv.FormatInt(c.Sender().ID, 10)
	reply := bot.Router.Reply(ctx, userID, c.Text())
	return c.Send(reply, menuKeyboard)
}

// Notify pushes a message to a user outside of a conversation.
func (bot *Bot) Notify(ctx context.Context, userID, text string) error {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram user id %q: %w", userID, err)
	}
	if _, err := bot.B.Send(&telebot.User{ID: id}, text); err != nil {
		return fmt.Errorf("send to %d: %w", id, err)
	}
	return nil
}
