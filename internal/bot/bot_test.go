package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"widget-planner/internal/model"
	"widget-planner/internal/service"
)

const testChat int64 = 42

type fakeSender struct {
	sent      []tgbotapi.Chattable
	requests  int
	nextID    int
	failEdits bool
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && s.failEdits {
		return tgbotapi.Message{}, errors.New("Bad Request: message to edit not found")
	}
	s.sent = append(s.sent, c)
	s.nextID++
	return tgbotapi.Message{MessageID: s.nextID}, nil
}

func (s *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type memStore map[string]int64

func (m memStore) Get(_ context.Context, key string) (int64, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memStore) Set(_ context.Context, key string, value int64) error {
	m[key] = value
	return nil
}

type fakeEngine struct {
	views    map[int64]*service.WidgetRenderModel
	toggled  []int64
	deleted  []int64
	restored []int64
	trash    []model.TrashEntry
}

func (e *fakeEngine) ProjectWidget(_ context.Context, id int64) (*service.WidgetRenderModel, error) {
	return e.views[id], nil
}

func (e *fakeEngine) ToggleTask(_ context.Context, id int64, _ time.Time) (bool, error) {
	e.toggled = append(e.toggled, id)
	return true, nil
}

func (e *fakeEngine) DeleteTask(_ context.Context, id int64, _ time.Time) (*int64, error) {
	e.deleted = append(e.deleted, id)
	trashID := id * 10
	return &trashID, nil
}

func (e *fakeEngine) RestoreFromTrash(_ context.Context, id int64, _ time.Time) (bool, error) {
	e.restored = append(e.restored, id)
	return id != 404, nil
}

func (e *fakeEngine) ListTrash(context.Context) ([]model.TrashEntry, error) {
	return e.trash, nil
}

func sampleView() *service.WidgetRenderModel {
	return &service.WidgetRenderModel{
		Config: model.WidgetConfig{WidgetID: 1, Name: "Home"},
		Categories: []service.CategoryBlock{{
			CategoryID: 3,
			Name:       "Today",
			Items: []service.RenderItem{
				{ID: 7, Content: "Buy milk"},
				{ID: 8, Content: "Done thing", Completed: true},
			},
		}},
	}
}

func newTestBot(engine *fakeEngine) (*Bot, *fakeSender, memStore) {
	sender := &fakeSender{}
	store := memStore{}
	b := New(sender, testChat, engine, store, time.UTC, zerolog.Nop())
	b.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return b, sender, store
}

func TestRefreshSendsThenEdits(t *testing.T) {
	engine := &fakeEngine{views: map[int64]*service.WidgetRenderModel{1: sampleView()}}
	b, sender, store := newTestBot(engine)
	ctx := context.Background()

	require.NoError(t, b.Refresh(ctx, []int64{1, 2}))
	require.Len(t, sender.sent, 1, "unconfigured widgets are skipped")
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, testChat, msg.ChatID)
	assert.Contains(t, msg.Text, "Buy milk")
	assert.Equal(t, int64(1), store[widgetMessageKey(1)])

	require.NoError(t, b.Refresh(ctx, []int64{1}))
	require.Len(t, sender.sent, 2)
	edit, ok := sender.sent[1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 1, edit.MessageID)
}

func TestRefreshFallsBackWhenEditFails(t *testing.T) {
	engine := &fakeEngine{views: map[int64]*service.WidgetRenderModel{1: sampleView()}}
	b, sender, store := newTestBot(engine)
	store[widgetMessageKey(1)] = 99
	sender.failEdits = true

	require.NoError(t, b.Refresh(context.Background(), []int64{1}))
	require.Len(t, sender.sent, 1)
	_, ok := sender.sent[0].(tgbotapi.MessageConfig)
	assert.True(t, ok)
	assert.Equal(t, int64(1), store[widgetMessageKey(1)])
}

func TestNotify(t *testing.T) {
	b, sender, _ := newTestBot(&fakeEngine{})
	scheduled := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC).UnixMilli()

	err := b.Notify(context.Background(), []service.Reminder{
		{Task: model.Task{ID: 1, Content: "Dentist", ScheduledTime: &scheduled}, Category: model.Category{Name: "Health"}},
		{Task: model.Task{ID: 2, Content: "Call <mom>"}},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)

	first := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Contains(t, first.Text, "Dentist")
	assert.Contains(t, first.Text, "Health")
	assert.Contains(t, first.Text, "09:30")

	second := sender.sent[1].(tgbotapi.MessageConfig)
	assert.Contains(t, second.Text, "Call &lt;mom&gt;")
}

func callback(data string, chatID int64) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func command(text string, chatID int64) tgbotapi.Update {
	end := len(text)
	for i, r := range text {
		if r == ' ' {
			end = i
			break
		}
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}},
	}}
}

func TestCallbacks(t *testing.T) {
	engine := &fakeEngine{}
	b, sender, _ := newTestBot(engine)
	ctx := context.Background()

	b.HandleUpdate(ctx, callback("toggle:7", testChat))
	assert.Equal(t, []int64{7}, engine.toggled)

	b.HandleUpdate(ctx, callback("delete:8", testChat))
	assert.Equal(t, []int64{8}, engine.deleted)
	require.Len(t, sender.sent, 1)
	undo := sender.sent[0].(tgbotapi.MessageConfig)
	markup, ok := undo.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "undo:80", *markup.InlineKeyboard[0][0].CallbackData)

	b.HandleUpdate(ctx, callback("undo:80", testChat))
	assert.Equal(t, []int64{80}, engine.restored)
	assert.Equal(t, 3, sender.requests)
}

func TestIgnoresOtherChats(t *testing.T) {
	engine := &fakeEngine{}
	b, sender, _ := newTestBot(engine)

	b.HandleUpdate(context.Background(), callback("toggle:7", 1))
	b.HandleUpdate(context.Background(), command("/trash", 1))

	assert.Empty(t, engine.toggled)
	assert.Empty(t, sender.sent)
}

func TestCommands(t *testing.T) {
	engine := &fakeEngine{
		views: map[int64]*service.WidgetRenderModel{1: sampleView()},
		trash: []model.TrashEntry{{ID: 5, Content: "old", CategoryName: "Inbox", DeletedAt: 1}},
	}
	b, sender, store := newTestBot(engine)
	ctx := context.Background()
	store[widgetMessageKey(1)] = 17

	b.HandleUpdate(ctx, command("/widget 1", testChat))
	require.Len(t, sender.sent, 1)
	_, isNew := sender.sent[0].(tgbotapi.MessageConfig)
	assert.True(t, isNew, "/widget posts a fresh message")

	b.HandleUpdate(ctx, command("/trash", testChat))
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1].(tgbotapi.MessageConfig).Text, "#5 old")

	b.HandleUpdate(ctx, command("/restore 404", testChat))
	assert.Equal(t, []int64{404}, engine.restored)
	assert.Contains(t, sender.sent[2].(tgbotapi.MessageConfig).Text, "не найдена")
}
