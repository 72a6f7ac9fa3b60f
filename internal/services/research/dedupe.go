package research

import "github.com/stockbrief/stockbrief/internal/models"

// CollectUnits merges the watchlists of all given subscribers into a
// deduplicated, deterministically ordered unit list: assets first,
// then industries, each in first-seen order across subscribers. A unit
// followed by many subscribers appears exactly once, so it is
// researched exactly once per run.
func CollectUnits(subscribers []*models.Subscriber) []models.ResearchUnit {
	seen := make(map[models.ResearchUnit]bool)
	var assets, industries []models.ResearchUnit

	for _, sub := range subscribers {
		for _, name := range sub.Assets {
			unit := models.AssetUnit(name)
			if !seen[unit] {
				seen[unit] = true
				assets = append(assets, unit)
			}
		}
		for _, name := range sub.Industries {
			unit := models.IndustryUnit(name)
			if !seen[unit] {
				seen[unit] = true
				industries = append(industries, unit)
			}
		}
	}

	return append(assets, industries...)
}
