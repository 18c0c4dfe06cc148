// Package telegram is the chat front-end of the diet planner.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-diet-planner/internal/app"
	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/logging"
	"ai-diet-planner/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `🥗 *Diet Planner*

Send a request such as _vegetarian, 1800 kcal, no peanuts_ to get a 7-day plan.
Send a link to import a published plan.

/day N - meals of day N
/week - weekly overview
/shopping - shopping list
/bmi X - classify a BMI value
/sync - fetch your plan from the health app
/revise text - rewrite your plan`

// Bot wraps the Telegram API and the application.
type Bot struct {
	api *tgbotapi.BotAPI
	app *app.App
	cfg *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	logging.Info("Telegram bot authorized", "account", bot.Self.UserName)

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook for %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := bot.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		logging.Info("Webhook set", "description", resp.Description)
	}

	return &Bot{api: bot, app: a, cfg: cfg}, nil
}

// HandleWebhook receives one update from Telegram.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		logging.Warn("Error parsing update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		logging.Warn("Unauthorized access attempt", "user_id", update.Message.From.ID, "username", update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) isAllowed(id int64) bool {
	for _, allowed := range b.cfg.TelegramAllowedUserIDs {
		if id == allowed {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if !isSlow(msg.Text) {
		b.send(msg.Chat.ID, b.reply(ctx, msg.From.ID, msg.Text))
		return
	}

	status := tgbotapi.NewMessage(msg.Chat.ID, "🧑‍⚕️ *Working on it...*")
	status.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(status)
	if err != nil {
		logging.Error("Failed to send initial reply", "error", err)
		return
	}

	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sent.MessageID, b.reply(ctx, msg.From.ID, msg.Text))
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		logging.Error("Failed to edit reply", "error", err)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		logging.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

// isSlow reports whether the message triggers an LLM call or a fetch.
func isSlow(text string) bool {
	cmd, _ := splitCommand(text)
	switch cmd {
	case "":
		return true
	case "/sync", "/revise":
		return true
	}
	return false
}

// splitCommand returns the command ("" for free text) and its argument.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, arg, _ := strings.Cut(text, " ")
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

// reply computes the answer to one message.
func (b *Bot) reply(ctx context.Context, fromID int64, text string) string {
	userID := strconv.FormatInt(fromID, 10)
	cmd, arg := splitCommand(text)

	switch cmd {
	case "/start", "/help":
		return helpText
	case "/bmi":
		bmi, err := strconv.ParseFloat(strings.ReplaceAll(arg, ",", "."), 64)
		if err != nil || bmi <= 0 {
			return "Usage: /bmi 23.4"
		}
		return formatBMI(bmi)
	case "/day":
		day, err := strconv.Atoi(arg)
		if err != nil || day < 1 {
			return "Usage: /day 1"
		}
		return b.replyWithLatest(ctx, userID, func(planID string) (string, error) {
			rec, err := b.app.Day(ctx, planID, day)
			return formatDay(rec), err
		})
	case "/week":
		return b.replyWithLatest(ctx, userID, func(planID string) (string, error) {
			week, err := b.app.Week(ctx, planID)
			return formatWeek(week), err
		})
	case "/shopping":
		return b.replyWithLatest(ctx, userID, func(planID string) (string, error) {
			list, err := b.app.ShoppingList(ctx, planID)
			if err != nil {
				return "", err
			}
			return formatShoppingList(list), nil
		})
	case "/revise":
		if arg == "" {
			return "Usage: /revise more protein at breakfast"
		}
		return b.replyWithLatest(ctx, userID, func(planID string) (string, error) {
			plan, err := b.app.RevisePlan(ctx, planID, arg)
			if err != nil {
				return "", err
			}
			week, err := b.app.Week(ctx, plan.ID)
			return "✏️ *Plan revised*\n\n" + formatWeek(week), err
		})
	case "/sync":
		plan, err := b.app.SyncFromBackend(ctx, userID)
		if err != nil {
			return errorText("syncing your plan", err)
		}
		return fmt.Sprintf("✅ *Plan synced*: %d days. Try /week.", plan.DayCount())
	case "/metrics":
		if fromID != b.cfg.AdminTelegramID {
			return "⛔ *Access Denied*: Admin only."
		}
		usage, agents, err := b.app.Usage(7)
		if err != nil {
			return errorText("fetching metrics", err)
		}
		return formatMetrics(usage, agents, metrics.GetSysHealth(b.cfg.DatabasePath))
	case "":
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			plan, err := b.app.ImportURL(ctx, userID, arg)
			if err != nil {
				return errorText("importing the plan", err)
			}
			return fmt.Sprintf("✅ *Plan imported*: %d days. Try /week.", plan.DayCount())
		}
		plan, err := b.app.GeneratePlan(ctx, userID, arg, dietplan.DefaultProfile())
		if err != nil {
			return errorText("generating your plan", err)
		}
		return formatWeek(b.app.Extractor().Week(plan.RawText))
	}
	return "Unknown command. Send /help."
}

func (b *Bot) replyWithLatest(ctx context.Context, userID string, fn func(planID string) (string, error)) string {
	plan, err := b.app.LatestPlan(ctx, userID)
	if errors.Is(err, app.ErrPlanNotFound) {
		return "You have no plan yet. Send a request or /sync."
	}
	if err != nil {
		return errorText("loading your plan", err)
	}

	text, err := fn(plan.ID)
	if err != nil {
		return errorText("reading your plan", err)
	}
	return text
}

func errorText(action string, err error) string {
	logging.Error("Bot request failed", "action", action, "error", err)
	switch {
	case errors.Is(err, app.ErrGenerationDisabled):
		return "⚠️ Plan generation is not configured."
	case errors.Is(err, app.ErrBackendDisabled):
		return "⚠️ The health app backend is not configured."
	}
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *Error %s:*\n```\n%v\n```", action, safeErr)
}
