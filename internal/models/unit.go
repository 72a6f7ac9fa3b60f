package models

import "fmt"

// UnitKind distinguishes the two research target categories. Kind is
// part of a unit's identity: an asset named "Energy" and an industry
// named "Energy" are different units.
type UnitKind string

const (
	UnitKindAsset    UnitKind = "asset"
	UnitKindIndustry UnitKind = "industry"
)

// Label returns the human-readable form used in report headings and
// artifact filenames.
func (k UnitKind) Label() string {
	switch k {
	case UnitKindIndustry:
		return "Industry"
	default:
		return "Asset"
	}
}

// ResearchUnit identifies one research target. It is a value type so
// it can key maps directly, which is what makes run-level
// deduplication a set insert.
type ResearchUnit struct {
	Kind UnitKind `json:"kind"`
	Name string   `json:"name"`
}

func (u ResearchUnit) String() string {
	return fmt.Sprintf("%s:%s", u.Kind, u.Name)
}

// AssetUnit builds an asset-kind research unit.
func AssetUnit(name string) ResearchUnit {
	return ResearchUnit{Kind: UnitKindAsset, Name: name}
}

// IndustryUnit builds an industry-kind research unit.
func IndustryUnit(name string) ResearchUnit {
	return ResearchUnit{Kind: UnitKindIndustry, Name: name}
}

// UnitsFor expands a subscriber's watchlist into ordered research
// units: assets first, then industries, both in stored order.
func UnitsFor(sub *Subscriber) []ResearchUnit {
	units := make([]ResearchUnit, 0, len(sub.Assets)+len(sub.Industries))
	for _, name := range sub.Assets {
		units = append(units, AssetUnit(name))
	}
	for _, name := range sub.Industries {
		units = append(units, IndustryUnit(name))
	}
	return units
}
