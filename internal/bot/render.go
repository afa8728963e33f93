package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"widget-planner/internal/model"
	"widget-planner/internal/service"
)

const helpText = `📋 <b>Планировщик</b>
/widget &lt;id&gt; — показать виджет
/trash — корзина
/restore &lt;id&gt; — восстановить задачу из корзины`

const (
	iconCheckbox     = "☐"
	iconCheckboxDone = "☑"
	iconBullet       = "•"
	iconCalendar     = "📅"
	maxButtonTitle   = 24
)

// renderWidget formats a widget projection as Telegram HTML.
func renderWidget(view *service.WidgetRenderModel, loc *time.Location) string {
	var b strings.Builder

	name := strings.TrimSpace(view.Config.Name)
	if name == "" {
		name = fmt.Sprintf("Виджет %d", view.Config.WidgetID)
	}
	b.WriteString(fmt.Sprintf("📋 <b>%s</b>\n", escape(name)))

	if len(view.Categories) == 0 {
		b.WriteString("\n— нет категорий\n")
		return strings.TrimSpace(b.String())
	}

	for _, block := range view.Categories {
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", escape(block.Name)))
		if len(block.Items) == 0 {
			b.WriteString("— пусто\n")
			continue
		}
		for _, item := range block.Items {
			b.WriteString(formatItem(item, block.DisplayMode, loc))
		}
	}
	return strings.TrimSpace(b.String())
}

func formatItem(item service.RenderItem, mode model.DisplayMode, loc *time.Location) string {
	var sb strings.Builder

	icon := iconBullet
	if mode != model.DisplayBullet {
		icon = iconCheckbox
		if item.Completed {
			icon = iconCheckboxDone
		}
	}
	sb.WriteString(icon)
	sb.WriteByte(' ')

	if item.ScheduledTime != nil {
		at := time.UnixMilli(*item.ScheduledTime).In(loc)
		sb.WriteString(fmt.Sprintf("<code>%s</code> ", at.Format("15:04")))
	}

	title := escape(normalizeTitle(item.Content))
	if item.Completed {
		title = "<s>" + title + "</s>"
	}
	sb.WriteString(title)

	if item.FromCalendarSync {
		sb.WriteString(" " + iconCalendar)
	}

	sb.WriteByte('\n')
	return sb.String()
}

// widgetKeyboard has one row per task: toggle and delete.
func widgetKeyboard(view *service.WidgetRenderModel) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, block := range view.Categories {
		for _, item := range block.Items {
			label := "✅ " + shortTitle(item.Content, maxButtonTitle)
			if item.Completed {
				label = "↩️ " + shortTitle(item.Content, maxButtonTitle)
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbTogglePrefix, item.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, item.ID)),
			))
		}
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func renderTrash(entries []model.TrashEntry, loc *time.Location) (string, tgbotapi.InlineKeyboardMarkup) {
	var b strings.Builder
	b.WriteString("🗑 <b>Корзина</b>\n\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, e := range entries {
		deleted := time.UnixMilli(e.DeletedAt).In(loc).Format("02.01 15:04")
		b.WriteString(fmt.Sprintf("#%d %s", e.ID, escape(normalizeTitle(e.Content))))
		if name := strings.TrimSpace(e.CategoryName); name != "" {
			b.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(name)))
		}
		b.WriteString(fmt.Sprintf("\n   удалено %s\n", deleted))

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"↩️ "+shortTitle(e.Content, maxButtonTitle),
				fmt.Sprintf("%s%d", cbUndoPrefix, e.ID),
			),
		))
	}
	return strings.TrimSpace(b.String()), tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func formatReminder(r service.Reminder, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⏰ %s", escape(normalizeTitle(r.Task.Content))))
	if name := strings.TrimSpace(r.Category.Name); name != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(name)))
	}
	if r.Task.ScheduledTime != nil {
		at := time.UnixMilli(*r.Task.ScheduledTime).In(loc)
		sb.WriteString(fmt.Sprintf("\n   в %s", at.Format("15:04")))
	}
	return sb.String()
}

func escape(s string) string {
	return html.EscapeString(s)
}

// normalizeTitle collapses whitespace so multi-line content fits one line.
func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(title)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
