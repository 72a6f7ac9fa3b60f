// -----------------------------------------------------------------------
// Digest Composer - assembles one subscriber's email from shared results
// -----------------------------------------------------------------------

package digest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/models"
	"github.com/stockbrief/stockbrief/internal/services/render"
	"github.com/stockbrief/stockbrief/internal/services/research"
)

// ErrNoCards is returned when none of the subscriber's followed units
// has generated content. The caller skips delivery; an empty digest is
// never sent.
var ErrNoCards = errors.New("no research cards for subscriber")

// Composer builds per-subscriber digests from a shared result set.
type Composer struct {
	config *common.DigestConfig
	now    func() time.Time
}

// NewComposer creates a digest composer
func NewComposer(config *common.DigestConfig) *Composer {
	return &Composer{
		config: config,
		now:    time.Now,
	}
}

// card is one rendered research block in a digest
type card struct {
	unit models.ResearchUnit
	html string
}

// Compose assembles the digest for one subscriber: research cards in
// watchlist order (assets first, then industries), framed by the
// shared context sections. Units missing from the result set are
// silently omitted.
func (c *Composer) Compose(sub *models.Subscriber, results *research.ResultSet, shared models.SharedContext) (*models.Digest, error) {
	var cards []card
	for _, unit := range models.UnitsFor(sub) {
		content, ok := results.Get(unit)
		if !ok {
			continue
		}
		cards = append(cards, card{unit: unit, html: render.ToHTML(content)})
	}

	if len(cards) == 0 {
		return nil, ErrNoCards
	}

	now := c.now()
	dateStr := now.Format("January 2, 2006")

	subject := fmt.Sprintf("%s %s's research digest [%s] (%d items)",
		c.config.SubjectPrefix, sub.Name, dateStr, len(cards))
	subject = strings.TrimSpace(subject)

	htmlBody := c.buildHTML(cards, shared, now)

	return &models.Digest{
		SubscriberID: sub.ID,
		To:           sub.Email,
		Subject:      subject,
		HTMLBody:     htmlBody,
		TextBody:     render.StripTags(htmlBody),
		CardCount:    len(cards),
		ComposedAt:   now,
	}, nil
}

func (c *Composer) buildHTML(cards []card, shared models.SharedContext, now time.Time) string {
	todayStr := now.Format("January 2, 2006 15:04")
	yesterdayShort := now.AddDate(0, 0, -1).Format("01/02")
	todayShort := now.Format("01/02")

	var b strings.Builder

	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
</head>
<body style="font-family:Helvetica,Arial,sans-serif;background:#f0f4f8;margin:0;padding:20px;color:#222">
<div style="max-width:680px;margin:0 auto">
`)

	// Header
	fmt.Fprintf(&b, `  <div style="background:linear-gradient(135deg,#1a73e8,#0b3d91);color:#fff;padding:24px 28px;border-radius:12px;margin-bottom:4px">
    <h1 style="margin:0;font-size:22px">📈 Research Digest</h1>
    <p style="margin:6px 0 0;opacity:.85;font-size:14px">%s &nbsp;•&nbsp; %d stocks/industries</p>
  </div>
`, todayStr, len(cards))

	// Portfolio overview
	fmt.Fprintf(&b, `
<div style="background:#fff;border-radius:10px;margin:16px 0;padding:20px;box-shadow:0 2px 8px rgba(0,0,0,.1);border-left:4px solid #1a73e8">
  <div style="font-weight:700;font-size:15px;color:#1a73e8;margin-bottom:12px">📌 Today's Portfolio Summary</div>
  %s
</div>
`, render.ToHTML(strings.TrimSpace(shared.Overview)))

	// Portfolio risk
	fmt.Fprintf(&b, `
<div style="background:#fff8e1;border-radius:10px;margin:16px 0;padding:20px;box-shadow:0 2px 8px rgba(0,0,0,.1);border-left:4px solid #f4b400">
  <div style="font-weight:700;font-size:15px;color:#b06000;margin-bottom:12px">⚠️ Today's Portfolio Risk</div>
  %s
</div>
`, render.ToHTML(strings.TrimSpace(shared.Risk)))

	// Market news: raw lines as paragraphs, the prompt forbids markup here
	var newsLines strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(shared.News), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			fmt.Fprintf(&newsLines, `<p style="margin:0 0 10px;line-height:1.7;color:#333;font-size:13px">%s</p>`, trimmed)
		}
	}
	fmt.Fprintf(&b, `
<div style="background:#fff;border-radius:10px;margin:16px 0;padding:20px;box-shadow:0 2px 8px rgba(0,0,0,.1)">
  <div style="display:flex;align-items:center;gap:8px;margin-bottom:14px">
    <span style="font-weight:700;font-size:15px;color:#0b3d91">📰 Market Direction &amp; Sentiment</span>
    <span style="font-size:12px;color:#fff;background:#0b3d91;padding:2px 8px;border-radius:10px">%s ~ %s</span>
  </div>
  %s
</div>
`, yesterdayShort, todayShort, newsLines.String())

	// Research cards
	for _, cd := range cards {
		icon, label, labelColor, labelBg := "📌", "Stock", "#1a73e8", "#e8f0fe"
		if cd.unit.Kind == models.UnitKindIndustry {
			icon, label, labelColor, labelBg = "🏭", "Industry", "#34a853", "#e6f4ea"
		}
		fmt.Fprintf(&b, `
<div style="background:#fff;border-radius:10px;margin:12px 0;box-shadow:0 2px 8px rgba(0,0,0,.1);overflow:hidden">
  <div style="padding:14px 20px;border-bottom:1px solid #f0f0f0;display:flex;align-items:center;gap:8px">
    <span style="background:%s;color:%s;font-size:11px;padding:2px 8px;border-radius:10px;font-weight:700">%s</span>
    <span style="font-weight:700;font-size:16px;color:#222">%s %s</span>
  </div>
  <div style="padding:14px 20px 18px">%s</div>
</div>
`, labelBg, labelColor, label, icon, cd.unit.Name, cd.html)
	}

	// Timeframe view
	fmt.Fprintf(&b, `
<div style="background:#fff;border-radius:10px;margin:16px 0;padding:20px;box-shadow:0 2px 8px rgba(0,0,0,.1);border-left:4px solid #34a853">
  <div style="font-weight:700;font-size:15px;color:#2d8e47;margin-bottom:12px">⏱ Timeframe View</div>
  %s
</div>
`, render.ToHTML(strings.TrimSpace(shared.Timeframe)))

	// Disclaimer footer
	fmt.Fprintf(&b, `
  <div style="background:#fff8e1;padding:14px 20px;border-radius:10px;font-size:12px;color:#888;margin-top:8px;line-height:1.7">
    ⚠️ %s
  </div>
</div>
</body>
</html>`, c.config.Disclaimer)

	return b.String()
}
