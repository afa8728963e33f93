package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"widget-planner/internal/model"
	"widget-planner/internal/service"
)

const (
	cbTogglePrefix = "toggle:"
	cbDeletePrefix = "delete:"
	cbUndoPrefix   = "undo:"
)

// Engine is the part of the planner engine the bot drives.
type Engine interface {
	ProjectWidget(ctx context.Context, widgetID int64) (*service.WidgetRenderModel, error)
	ToggleTask(ctx context.Context, taskID int64, now time.Time) (bool, error)
	DeleteTask(ctx context.Context, taskID int64, now time.Time) (*int64, error)
	RestoreFromTrash(ctx context.Context, trashID int64, now time.Time) (bool, error)
	ListTrash(ctx context.Context) ([]model.TrashEntry, error)
}

// MessageStore remembers which Telegram message renders which widget.
type MessageStore interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, value int64) error
}

// Sender is the subset of tgbotapi.BotAPI used for outgoing messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot renders widgets and reminders into one Telegram chat. It implements
// service.RefreshSink and service.Notifier.
type Bot struct {
	api      Sender
	chatID   int64
	engine   Engine
	messages MessageStore
	loc      *time.Location
	now      func() time.Time
	log      zerolog.Logger
}

// NewBot connects to the Telegram API with token.
func NewBot(token string, chatID int64, engine Engine, messages MessageStore, loc *time.Location, log zerolog.Logger) (*Bot, *tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info().Str("account", api.Self.UserName).Msg("bot authorized")
	return New(api, chatID, engine, messages, loc, log), api, nil
}

// New builds a bot over an existing sender.
func New(api Sender, chatID int64, engine Engine, messages MessageStore, loc *time.Location, log zerolog.Logger) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:      api,
		chatID:   chatID,
		engine:   engine,
		messages: messages,
		loc:      loc,
		now:      time.Now,
		log:      log.With().Str("component", "bot").Logger(),
	}
}

// Start begins polling updates until ctx is cancelled.
func Start(ctx context.Context, api *tgbotapi.BotAPI, b *Bot) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	b.log.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.HandleUpdate(ctx, update)
	}

	return nil
}

// HandleUpdate routes one update. Updates from other chats are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message == nil || cb.Message.Chat == nil || cb.Message.Chat.ID != b.chatID {
			return
		}
		if err := b.handleCallback(ctx, cb); err != nil {
			b.log.Error().Err(err).Str("data", cb.Data).Msg("handle callback")
		}
	case update.Message != nil:
		msg := update.Message
		if msg.Chat == nil || msg.Chat.ID != b.chatID {
			return
		}
		if err := b.handleMessage(ctx, msg); err != nil {
			b.log.Error().Err(err).Str("text", msg.Text).Msg("handle message")
		}
	}
}

// Refresh redraws each widget, editing its previous message when there is one.
func (b *Bot) Refresh(ctx context.Context, widgetIDs []int64) error {
	var firstErr error
	for _, id := range widgetIDs {
		if err := b.refreshWidget(ctx, id); err != nil {
			b.log.Warn().Ctx(ctx).Err(err).Int64("widget_id", id).Msg("widget refresh failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Notify sends one message per reminder.
func (b *Bot) Notify(ctx context.Context, reminders []service.Reminder) error {
	for _, r := range reminders {
		if err := b.sendText(formatReminder(r, b.loc)); err != nil {
			return fmt.Errorf("send reminder for task %d: %w", r.Task.ID, err)
		}
		b.log.Debug().Ctx(ctx).Int64("task_id", r.Task.ID).Msg("reminder sent")
	}
	return nil
}

func (b *Bot) refreshWidget(ctx context.Context, widgetID int64) error {
	view, err := b.engine.ProjectWidget(ctx, widgetID)
	if err != nil {
		return err
	}
	if view == nil {
		return nil
	}

	text := renderWidget(view, b.loc)
	markup := widgetKeyboard(view)
	key := widgetMessageKey(widgetID)

	messageID, ok, err := b.messages.Get(ctx, key)
	if err != nil {
		return err
	}
	if ok && messageID > 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(b.chatID, int(messageID), text, markup)
		edit.ParseMode = tgbotapi.ModeHTML
		_, err := b.api.Send(edit)
		if err == nil || isNotModified(err) {
			return nil
		}
		b.log.Debug().Err(err).Int64("widget_id", widgetID).Msg("edit failed, sending new message")
	}

	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(markup.InlineKeyboard) > 0 {
		msg.ReplyMarkup = markup
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return err
	}
	return b.messages.Set(ctx, key, int64(sent.MessageID))
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		return b.sendText(helpText)
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		return b.sendText(helpText)
	case "widget":
		id, err := strconv.ParseInt(args, 10, 64)
		if err != nil {
			return b.sendText("Укажи ID виджета: /widget 1")
		}
		// Force a fresh message at the bottom of the chat.
		if err := b.messages.Set(ctx, widgetMessageKey(id), 0); err != nil {
			return err
		}
		return b.refreshWidget(ctx, id)
	case "trash":
		return b.sendTrash(ctx)
	case "restore":
		id, err := strconv.ParseInt(args, 10, 64)
		if err != nil {
			return b.sendText("Укажи ID записи корзины: /restore 3")
		}
		return b.restore(ctx, id)
	default:
		return b.sendText("Неизвестная команда. " + helpText)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Debug().Err(err).Msg("callback ack")
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		id, err := parseID(data, cbTogglePrefix)
		if err != nil {
			return nil
		}
		ok, err := b.engine.ToggleTask(ctx, id, b.now())
		if err != nil {
			return err
		}
		if !ok {
			return b.sendText("Задача не найдена или уже удалена.")
		}
		return nil
	case strings.HasPrefix(data, cbDeletePrefix):
		id, err := parseID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		trashID, err := b.engine.DeleteTask(ctx, id, b.now())
		if err != nil {
			return err
		}
		if trashID == nil {
			return b.sendText("Задача не найдена или уже удалена.")
		}
		msg := tgbotapi.NewMessage(b.chatID, "🗑 Задача перемещена в корзину.")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Вернуть", fmt.Sprintf("%s%d", cbUndoPrefix, *trashID)),
		))
		_, err = b.api.Send(msg)
		return err
	case strings.HasPrefix(data, cbUndoPrefix):
		id, err := parseID(data, cbUndoPrefix)
		if err != nil {
			return nil
		}
		return b.restore(ctx, id)
	default:
		return nil
	}
}

func (b *Bot) restore(ctx context.Context, trashID int64) error {
	ok, err := b.engine.RestoreFromTrash(ctx, trashID, b.now())
	if err != nil {
		return err
	}
	if !ok {
		return b.sendText("Запись в корзине не найдена.")
	}
	return b.sendText("↩️ Задача восстановлена.")
}

func (b *Bot) sendTrash(ctx context.Context) error {
	entries, err := b.engine.ListTrash(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return b.sendText("Корзина пуста.")
	}

	text, markup := renderTrash(entries, b.loc)
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) sendText(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func widgetMessageKey(widgetID int64) string {
	return fmt.Sprintf("telegram.widget.%d.message", widgetID)
}

func parseID(data, prefix string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
