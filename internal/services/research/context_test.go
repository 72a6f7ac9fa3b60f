package research

import (
	"context"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/models"
)

func TestNewsDigestFallback(t *testing.T) {
	provider := &fakeProvider{failOn: []string{"global equity markets"}}
	synth := NewSynthesizer(provider, arbor.NewLogger())

	got := synth.NewsDigest(context.Background())
	if got != newsFallback {
		t.Errorf("NewsDigest on failure = %q, want fallback", got)
	}
}

func TestNewsDigestSuccess(t *testing.T) {
	provider := &fakeProvider{response: "- Fed pause → risk appetite back"}
	synth := NewSynthesizer(provider, arbor.NewLogger())

	got := synth.NewsDigest(context.Background())
	if got != "- Fed pause → risk appetite back" {
		t.Errorf("NewsDigest = %q, want provider content", got)
	}
}

func TestSubscriberContextCarriesNews(t *testing.T) {
	provider := &fakeProvider{response: "section text"}
	synth := NewSynthesizer(provider, arbor.NewLogger())

	units := []models.ResearchUnit{models.AssetUnit("Tesla")}
	shared := synth.SubscriberContext(context.Background(), units, "precomputed news")

	if shared.News != "precomputed news" {
		t.Errorf("News = %q, want the precomputed value passed through", shared.News)
	}
	if shared.Overview != "section text" || shared.Risk != "section text" || shared.Timeframe != "section text" {
		t.Error("subscriber sections should come from the provider")
	}
	// News is never regenerated per subscriber
	if n := provider.callsContaining("global equity markets"); n != 0 {
		t.Errorf("SubscriberContext issued %d news calls, want 0", n)
	}
	if provider.callCount() != 3 {
		t.Errorf("provider called %d times, want 3 (overview, risk, timeframe)", provider.callCount())
	}
}

func TestSubscriberContextIndependentFallbacks(t *testing.T) {
	// Risk synthesis fails; overview and timeframe still succeed
	provider := &fakeProvider{failOn: []string{"common risks"}, response: "ok"}
	synth := NewSynthesizer(provider, arbor.NewLogger())

	units := []models.ResearchUnit{models.AssetUnit("Tesla")}
	shared := synth.SubscriberContext(context.Background(), units, "news")

	if shared.Risk != riskFallback {
		t.Errorf("Risk = %q, want fallback", shared.Risk)
	}
	if shared.Overview != "ok" {
		t.Errorf("Overview = %q, want provider content despite risk failure", shared.Overview)
	}
	if shared.Timeframe != "ok" {
		t.Errorf("Timeframe = %q, want provider content despite risk failure", shared.Timeframe)
	}
}

func TestSubscriberContextEmptyContentFallsBack(t *testing.T) {
	provider := &fakeProvider{emptyOn: []string{"timeframe view"}, response: "ok"}
	synth := NewSynthesizer(provider, arbor.NewLogger())

	units := []models.ResearchUnit{models.AssetUnit("Tesla")}
	shared := synth.SubscriberContext(context.Background(), units, "news")

	if shared.Timeframe != timeframeFallback {
		t.Errorf("Timeframe = %q, want fallback for empty content", shared.Timeframe)
	}
}
