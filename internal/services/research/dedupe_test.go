package research

import (
	"testing"

	"github.com/stockbrief/stockbrief/internal/models"
)

func TestCollectUnitsDeduplicates(t *testing.T) {
	subscribers := []*models.Subscriber{
		{Name: "alice", Assets: []string{"Tesla", "Nvidia"}, Industries: []string{"Defense"}},
		{Name: "bob", Assets: []string{"Nvidia", "Palantir"}, Industries: []string{"Defense", "Nuclear"}},
		{Name: "carol", Assets: []string{"Tesla"}},
	}

	units := CollectUnits(subscribers)

	seen := make(map[models.ResearchUnit]int)
	for _, u := range units {
		seen[u]++
	}
	for unit, count := range seen {
		if count != 1 {
			t.Errorf("unit %s appears %d times, want exactly once", unit, count)
		}
	}
	if len(units) != 5 {
		t.Errorf("got %d units, want 5", len(units))
	}
}

func TestCollectUnitsOrder(t *testing.T) {
	subscribers := []*models.Subscriber{
		{Name: "alice", Assets: []string{"Tesla"}, Industries: []string{"Defense"}},
		{Name: "bob", Assets: []string{"Nvidia"}, Industries: []string{"Nuclear"}},
	}

	units := CollectUnits(subscribers)

	want := []models.ResearchUnit{
		models.AssetUnit("Tesla"),
		models.AssetUnit("Nvidia"),
		models.IndustryUnit("Defense"),
		models.IndustryUnit("Nuclear"),
	}
	if len(units) != len(want) {
		t.Fatalf("got %d units, want %d", len(units), len(want))
	}
	for i := range want {
		if units[i] != want[i] {
			t.Errorf("units[%d] = %s, want %s", i, units[i], want[i])
		}
	}
}

func TestCollectUnitsSameNameDifferentKind(t *testing.T) {
	subscribers := []*models.Subscriber{
		{Name: "alice", Assets: []string{"Energy"}, Industries: []string{"Energy"}},
	}

	units := CollectUnits(subscribers)

	// An asset and an industry sharing a name are distinct units
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	if units[0].Kind != models.UnitKindAsset || units[1].Kind != models.UnitKindIndustry {
		t.Errorf("unexpected kinds: %s, %s", units[0].Kind, units[1].Kind)
	}
}

func TestCollectUnitsEmpty(t *testing.T) {
	if units := CollectUnits(nil); len(units) != 0 {
		t.Errorf("got %d units for no subscribers, want 0", len(units))
	}
	if units := CollectUnits([]*models.Subscriber{{Name: "empty"}}); len(units) != 0 {
		t.Errorf("got %d units for empty watchlist, want 0", len(units))
	}
}
