package telegram

import (
	"fmt"
	"strings"

	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/metrics"
	"ai-diet-planner/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var mealIcons = map[dietplan.MealType]string{
	dietplan.Breakfast: "🍳",
	dietplan.Lunch:     "🍛",
	dietplan.Dinner:    "🍲",
	dietplan.Snacks:    "🍎",
}

// esc escapes plan text for legacy Markdown messages.
func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatDay(rec dietplan.DayRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Day %d · %s*\n", rec.DayNumber, rec.DayName))
	if !rec.Found {
		sb.WriteString("_This day is not in your plan._\n")
		return sb.String()
	}
	if rec.Theme != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n", esc(rec.Theme)))
	}

	for _, m := range rec.Meals {
		sb.WriteString("\n")
		sb.WriteString(formatMeal(m))
	}
	return sb.String()
}

func formatMeal(m dietplan.MealRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s *%s*: %s\n", mealIcons[m.Type], m.Type, esc(m.Description)))
	if !m.Available {
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("   %d kcal · P %dg · C %dg · F %dg · Fiber %dg\n",
		m.Calories, m.ProteinGrams, m.CarbsGrams, m.FatGrams, m.FiberGrams))
	sb.WriteString(fmt.Sprintf("   💰 %s\n", esc(m.CostEstimate)))

	names := make([]string, 0, len(m.Ingredients))
	for _, ing := range m.Ingredients {
		names = append(names, fmt.Sprintf("%s (%s)", ing.Name, ing.Amount))
	}
	sb.WriteString(fmt.Sprintf("   🧺 %s\n", esc(strings.Join(names, ", "))))
	if m.MedicalNote != dietplan.DefaultMedicalNote {
		sb.WriteString(fmt.Sprintf("   🩺 _%s_\n", esc(m.MedicalNote)))
	}
	return sb.String()
}

func formatWeek(week []dietplan.DaySummary) string {
	var sb strings.Builder
	sb.WriteString("🗓 *Weekly Diet Plan*\n")
	for _, d := range week {
		sb.WriteString(fmt.Sprintf("\n*Day %d · %s*", d.DayNumber, d.DayName))
		if d.Theme != "" {
			sb.WriteString(fmt.Sprintf(" _%s_", esc(d.Theme)))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s %s\n", mealIcons[dietplan.Breakfast], esc(d.Breakfast)))
		sb.WriteString(fmt.Sprintf("%s %s\n", mealIcons[dietplan.Lunch], esc(d.Lunch)))
		sb.WriteString(fmt.Sprintf("%s %s\n", mealIcons[dietplan.Dinner], esc(d.Dinner)))
		sb.WriteString(fmt.Sprintf("🔥 Total: %s kcal\n", d.TotalCalories))
	}
	return sb.String()
}

func formatShoppingList(list *shopping.List) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	if len(list.Items) == 0 {
		sb.WriteString("_Nothing to buy_\n")
	}
	for _, item := range list.Items {
		sb.WriteString(fmt.Sprintf("• %s: %s\n", esc(item.Name), esc(item.Amount)))
	}
	return sb.String()
}

func formatBMI(bmi float64) string {
	band := dietplan.ClassifyBMI(bmi)
	return fmt.Sprintf("⚖️ *BMI %.1f*: %s (%s)\nGauge: %.0f°", bmi, band.Label, band.Color, dietplan.GaugeAngle(bmi))
}

func formatMetrics(usage []metrics.DailyUsage, agents []metrics.AgentUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	if len(agents) > 0 {
		sb.WriteString("\n🤖 *By Agent*\n")
		for _, a := range agents {
			sb.WriteString(fmt.Sprintf("• %s: %d tokens, avg %dms\n", a.AgentName, a.TotalPrompt+a.TotalCompletion, a.AvgLatencyMS))
		}
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataSize))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	return sb.String()
}
