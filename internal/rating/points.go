package rating

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Level string

const (
	LevelClub          Level = "club"
	LevelRegional      Level = "regional"
	LevelNational      Level = "national"
	LevelInternational Level = "international"
)

func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelClub, LevelRegional, LevelNational, LevelInternational:
		return l, nil
	}
	return "", fmt.Errorf("unknown competition level %q", s)
}

// TierPoints is what one medal of each colour is worth at a given level.
type TierPoints struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}

type PointTable struct {
	Club          TierPoints `json:"club"`
	Regional      TierPoints `json:"regional"`
	National      TierPoints `json:"national"`
	International TierPoints `json:"international"`
}

func DefaultPointTable() PointTable {
	return PointTable{
		Club:          TierPoints{Gold: 10, Silver: 7, Bronze: 5},
		Regional:      TierPoints{Gold: 25, Silver: 18, Bronze: 12},
		National:      TierPoints{Gold: 50, Silver: 35, Bronze: 25},
		International: TierPoints{Gold: 100, Silver: 70, Bronze: 50},
	}
}

func (t PointTable) Tier(level Level) TierPoints {
	switch level {
	case LevelClub:
		return t.Club
	case LevelRegional:
		return t.Regional
	case LevelInternational:
		return t.International
	default:
		return t.National
	}
}

// Federation settings store partial tables, missing values keep the default.
type tierOverride struct {
	Gold   *int `json:"gold"`
	Silver *int `json:"silver"`
	Bronze *int `json:"bronze"`
}

type tableOverride struct {
	Club          *tierOverride `json:"club"`
	Regional      *tierOverride `json:"regional"`
	National      *tierOverride `json:"national"`
	International *tierOverride `json:"international"`
}

// ParsePointTable reads the rating_points settings blob of a federation. An empty
// blob yields the defaults.
func ParsePointTable(blob []byte) (PointTable, error) {
	table := DefaultPointTable()
	if len(strings.TrimSpace(string(blob))) == 0 {
		return table, nil
	}

	var o tableOverride
	if err := json.Unmarshal(blob, &o); err != nil {
		return table, fmt.Errorf("invalid rating points settings: %w", err)
	}

	o.Club.apply(&table.Club)
	o.Regional.apply(&table.Regional)
	o.National.apply(&table.National)
	o.International.apply(&table.International)

	return table, nil
}

func (o *tierOverride) apply(t *TierPoints) {
	if o == nil {
		return
	}
	if o.Gold != nil {
		t.Gold = *o.Gold
	}
	if o.Silver != nil {
		t.Silver = *o.Silver
	}
	if o.Bronze != nil {
		t.Bronze = *o.Bronze
	}
}

func Score(m Medals, tier TierPoints) int {
	return m.Gold*tier.Gold + m.Silver*tier.Silver + m.Bronze*tier.Bronze
}
