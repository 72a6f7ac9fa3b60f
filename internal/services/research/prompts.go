// -----------------------------------------------------------------------
// Research Prompts - templates for per-unit research and shared sections
// -----------------------------------------------------------------------

package research

import (
	"fmt"
	"strings"
	"time"

	"github.com/stockbrief/stockbrief/internal/models"
)

const promptDateFormat = "January 2, 2006"

// UnitPrompt builds the research prompt for one asset or industry.
// Assets get a five-section position-oriented template; industries get
// a six-section capital-flow template with a cycle-stage call.
func UnitPrompt(unit models.ResearchUnit, today time.Time) string {
	date := today.Format(promptDateFormat)

	if unit.Kind == models.UnitKindIndustry {
		return fmt.Sprintf(
			"Today is %s. Use Google Search to research the latest information on the '%s' industry "+
				"and write exactly the 6 sections below.\n"+
				"Forbidden: listing individual company results, prices, or detailed statistics / repeated sentences\n\n"+
				"## 📌 One-line summary\n"+
				"(call whether the industry cycle is accelerating or slowing, 1 line, max 15 words)\n\n"+
				"## 💰 Capital flow\n"+
				"(whether money is flowing in and how strong investor interest is, 1 line)\n\n"+
				"## 🧭 Industry cycle stage\n"+
				"(pick one of early / mid / peak / declining, plus a 1-line reason)\n\n"+
				"## ⭐ Key beneficiaries\n"+
				"(the structural growth driver or investment theme, 1 line)\n\n"+
				"## 📊 Attractiveness: n/10\n"+
				"Reasoning:\n"+
				"(focus on why the score, max 2 lines, max 15 words each)\n\n"+
				"## ⚠️ Risk\n"+
				"(the key risk, 1 line, max 12 words)",
			date, unit.Name)
	}

	return fmt.Sprintf(
		"Today is %s. Use Google Search to research the latest information on the '%s' stock "+
			"and write exactly the 5 sections below.\n"+
			"Forbidden: listing news items / quoting prices, price targets, or volumes / repeated sentences\n\n"+
			"## 📌 One-line summary\n"+
			"(today's key issue and what it means for the share price, 1 line, max 15 words)\n\n"+
			"## 🧠 Today's interpretation\n"+
			"(event -> earnings impact -> share price read, max 2 lines, max 15 words each)\n\n"+
			"## 📍 Price position\n"+
			"(describe the position: near highs / pullback after a run / range-bound / rebounding off lows, no numbers, 1 line)\n\n"+
			"## 📊 Attractiveness: n/10\n"+
			"Reasoning:\n"+
			"(focus on why the score, max 2 lines, max 15 words each)\n\n"+
			"## ⚠️ Risk\n"+
			"(the key risk, 1 line, max 12 words)",
		date, unit.Name)
}

// NewsPrompt builds the market direction and sentiment prompt covering
// yesterday through today.
func NewsPrompt(today time.Time) string {
	yesterday := today.AddDate(0, 0, -1).Format(promptDateFormat)
	date := today.Format(promptDateFormat)

	return fmt.Sprintf(
		"Use Google Search to review global equity markets from yesterday (%s) through today (%s) "+
			"and write exactly 3 key factors.\n\n"+
			"Rules:\n"+
			"- Output only bullets (- ), no preamble or framing text\n"+
			"- Form: '- factor → market impact' (1 line, max 12 words)\n"+
			"- No duplicates, each factor distinct\n"+
			"- No markdown (#, ** etc.)\n\n"+
			"Example:\n"+
			"- Tariff uncertainty → exporter volatility widening\n"+
			"- AI chip upcycle → tech stocks rallying",
		yesterday, date)
}

// OverviewPrompt builds the per-subscriber portfolio summary prompt:
// one line per followed unit with a fixed action vocabulary.
func OverviewPrompt(units []models.ResearchUnit, today time.Time) string {
	date := today.Format(promptDateFormat)
	names := unitNames(units)
	count := len(units)

	return fmt.Sprintf(
		"Today is %s. Use Google Search to check the latest market information and write exactly %d lines, "+
			"one for each of the %d stocks/industries below.\n"+
			"Stocks/industries: %s\n\n"+
			"Format (1 line per stock/industry):\n"+
			"- name → key read / action: (one of watch · buy · trim · hedge)\n\n"+
			"Rules:\n"+
			"- Max 10 words after the name\n"+
			"- Output only bullets (- ), no preamble\n"+
			"- No markdown (#, ** etc.)\n\n"+
			"Example:\n"+
			"- Hanwha Aerospace → target raised, momentum intact / action: watch for dips\n"+
			"- Power → data center demand rising / action: buy in tranches",
		date, count, count, names)
}

// RiskPrompt builds the portfolio-wide common risk prompt.
func RiskPrompt(units []models.ResearchUnit, today time.Time) string {
	date := today.Format(promptDateFormat)

	return fmt.Sprintf(
		"Today is %s. Use Google Search to check the latest information and write the common risks "+
			"affecting this portfolio as a whole.\n"+
			"Portfolio: %s\n\n"+
			"Rules:\n"+
			"- Only portfolio-wide common risks, not single-name risks\n"+
			"- 1-2 bullets (- ), max 12 words each\n"+
			"- Output only bullets, no preamble\n"+
			"- No markdown\n\n"+
			"Example:\n"+
			"- Prolonged Fed tightening → valuation pressure across growth names\n"+
			"- Dollar spike → import costs up, domestic names strained",
		date, unitNames(units))
}

// TimeframePrompt builds the short/mid/long-term view prompt, one
// heading block per followed unit.
func TimeframePrompt(units []models.ResearchUnit, today time.Time) string {
	date := today.Format(promptDateFormat)

	return fmt.Sprintf(
		"Today is %s. Use Google Search to check the latest information and write the timeframe view "+
			"for each of the stocks/industries below.\n"+
			"Stocks/industries: %s\n\n"+
			"Write each one in this format. No framing or repeated filler text.\n"+
			"### name\n"+
			"- Short term (7d): events and flows, 1 line (max 10 words)\n"+
			"- Mid term (1-3mo): momentum and earnings cycle, 1 line (max 10 words)\n"+
			"- Long term (1y): structural growth story, 1 line (max 10 words)",
		date, unitNames(units))
}

func unitNames(units []models.ResearchUnit) string {
	if len(units) == 0 {
		return "none"
	}
	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name
	}
	return strings.Join(names, ", ")
}
