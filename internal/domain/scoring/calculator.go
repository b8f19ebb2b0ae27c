package scoring

import (
	"fmt"
	"math"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
)

// LineItem is one contributing category of a score. It explains a total;
// CalculatePoints is the authoritative number.
type LineItem struct {
	Category string
	Label    string
	Value    int
	Points   float64
}

const (
	CategoryPassingYards     = "passing_yards"
	CategoryPassingTDs       = "passing_tds"
	CategoryInterceptions    = "interceptions"
	CategoryRushingYards     = "rushing_yards"
	CategoryRushingTDs       = "rushing_tds"
	CategoryReceptions       = "receptions"
	CategoryReceivingYards   = "receiving_yards"
	CategoryReceivingTDs     = "receiving_tds"
	CategoryFG0To39          = "fg_0_39"
	CategoryFG40To49         = "fg_40_49"
	CategoryFG50Plus         = "fg_50_plus"
	CategoryFGMissed         = "fg_missed"
	CategoryXPMade           = "xp_made"
	CategoryXPMissed         = "xp_missed"
	CategoryPointsAllowed    = "points_allowed"
	CategorySacks            = "sacks"
	CategoryDefInterceptions = "def_interceptions"
	CategoryFumbleRecoveries = "fumble_recoveries"
	CategoryDefTDs           = "def_tds"
)

// CalculatePoints returns the fantasy total for a stat line rounded half-up
// to two decimals.
func CalculatePoints(line stats.StatLine, rules Rules, position player.Position) float64 {
	var total float64
	for _, item := range contributions(line, rules, position) {
		total += item.Points
	}
	return Round2(total)
}

// Breakdown lists the non-zero contributing categories in scoring order.
func Breakdown(line stats.StatLine, rules Rules, position player.Position) []LineItem {
	items := contributions(line, rules, position)
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Points == 0 {
			continue
		}
		item.Points = Round2(item.Points)
		out = append(out, item)
	}
	return out
}

// Round2 rounds half away from zero to two decimals, so -2.005 and 2.005
// mirror each other. The epsilon absorbs binary representation error so
// values like 1.005 land on the outer cent.
func Round2(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	rounded := math.Floor(math.Abs(value)*100+0.5+1e-7) / 100
	if rounded == 0 {
		return 0
	}
	return math.Copysign(rounded, value)
}

func contributions(line stats.StatLine, rules Rules, position player.Position) []LineItem {
	items := make([]LineItem, 0, 19)
	for _, payload := range scoredPayloads(line, position) {
		switch p := payload.(type) {
		case stats.Offense:
			items = append(items, offenseItems(p, rules)...)
		case stats.Kicking:
			items = append(items, kickingItems(p, rules)...)
		case stats.Defense:
			items = append(items, defenseItems(p, rules)...)
		default:
			panic(fmt.Sprintf("scoring: unhandled stat payload %T", payload))
		}
	}
	return items
}

// scoredPayloads decides which categories count for a position. Kickers never
// score offense. Defense counts for DST, and for an unspecified position only
// when the line shows defensive activity.
func scoredPayloads(line stats.StatLine, position player.Position) []stats.Payload {
	out := make([]stats.Payload, 0, 3)
	if line.Offense != nil && position != player.PositionKicker {
		out = append(out, *line.Offense)
	}
	if line.Kicking != nil {
		out = append(out, *line.Kicking)
	}
	switch position {
	case player.PositionDefense:
		defense := stats.Defense{}
		if line.Defense != nil {
			defense = *line.Defense
		}
		out = append(out, defense)
	case "":
		if line.Defense != nil {
			out = append(out, *line.Defense)
		}
	}
	return out
}

func offenseItems(o stats.Offense, rules Rules) []LineItem {
	return []LineItem{
		{Category: CategoryPassingYards, Label: countLabel(o.PassingYards, "passing yard", "passing yards"), Value: o.PassingYards, Points: perYards(o.PassingYards, rules.PassingYardsPerPoint)},
		{Category: CategoryPassingTDs, Label: countLabel(o.PassingTDs, "passing TD", "passing TDs"), Value: o.PassingTDs, Points: float64(o.PassingTDs) * rules.PassingTD},
		{Category: CategoryInterceptions, Label: countLabel(o.Interceptions, "interception", "interceptions"), Value: o.Interceptions, Points: float64(o.Interceptions) * rules.Interception},
		{Category: CategoryRushingYards, Label: countLabel(o.RushingYards, "rushing yard", "rushing yards"), Value: o.RushingYards, Points: perYards(o.RushingYards, rules.RushingYardsPerPoint)},
		{Category: CategoryRushingTDs, Label: countLabel(o.RushingTDs, "rushing TD", "rushing TDs"), Value: o.RushingTDs, Points: float64(o.RushingTDs) * rules.RushingTD},
		{Category: CategoryReceptions, Label: countLabel(o.Receptions, "reception", "receptions"), Value: o.Receptions, Points: float64(o.Receptions) * rules.Reception},
		{Category: CategoryReceivingYards, Label: countLabel(o.ReceivingYards, "receiving yard", "receiving yards"), Value: o.ReceivingYards, Points: perYards(o.ReceivingYards, rules.ReceivingYardsPerPoint)},
		{Category: CategoryReceivingTDs, Label: countLabel(o.ReceivingTDs, "receiving TD", "receiving TDs"), Value: o.ReceivingTDs, Points: float64(o.ReceivingTDs) * rules.ReceivingTD},
	}
}

func kickingItems(k stats.Kicking, rules Rules) []LineItem {
	return []LineItem{
		{Category: CategoryFG0To39, Label: countLabel(k.FG0To39, "FG 0-39", "FGs 0-39"), Value: k.FG0To39, Points: float64(k.FG0To39) * rules.FG0To39},
		{Category: CategoryFG40To49, Label: countLabel(k.FG40To49, "FG 40-49", "FGs 40-49"), Value: k.FG40To49, Points: float64(k.FG40To49) * rules.FG40To49},
		{Category: CategoryFG50Plus, Label: countLabel(k.FG50Plus, "FG 50+", "FGs 50+"), Value: k.FG50Plus, Points: float64(k.FG50Plus) * rules.FG50Plus},
		{Category: CategoryFGMissed, Label: countLabel(k.FGMissed, "missed FG", "missed FGs"), Value: k.FGMissed, Points: float64(k.FGMissed) * rules.FGMissed},
		{Category: CategoryXPMade, Label: countLabel(k.XPMade, "extra point", "extra points"), Value: k.XPMade, Points: float64(k.XPMade) * rules.ExtraPoint},
		{Category: CategoryXPMissed, Label: countLabel(k.XPMissed, "missed extra point", "missed extra points"), Value: k.XPMissed, Points: float64(k.XPMissed) * rules.XPMissed},
	}
}

func defenseItems(d stats.Defense, rules Rules) []LineItem {
	tier := rules.pointsAllowedTier(d.PointsAllowed)
	return []LineItem{
		{Category: CategoryPointsAllowed, Label: fmt.Sprintf("%d points allowed (tier %s)", d.PointsAllowed, tier.label), Value: d.PointsAllowed, Points: tier.points},
		{Category: CategorySacks, Label: countLabel(d.Sacks, "sack", "sacks"), Value: d.Sacks, Points: float64(d.Sacks) * rules.Sack},
		{Category: CategoryDefInterceptions, Label: countLabel(d.DefInterceptions, "interception caught", "interceptions caught"), Value: d.DefInterceptions, Points: float64(d.DefInterceptions) * rules.DefInterception},
		{Category: CategoryFumbleRecoveries, Label: countLabel(d.FumbleRecoveries, "fumble recovery", "fumble recoveries"), Value: d.FumbleRecoveries, Points: float64(d.FumbleRecoveries) * rules.FumbleRecovery},
		{Category: CategoryDefTDs, Label: countLabel(d.DefTDs, "defensive TD", "defensive TDs"), Value: d.DefTDs, Points: float64(d.DefTDs) * rules.DefTD},
	}
}

func perYards(yards int, yardsPerPoint float64) float64 {
	if yardsPerPoint == 0 {
		return 0
	}
	return float64(yards) / yardsPerPoint
}

func countLabel(value int, singular, plural string) string {
	if value == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", value, plural)
}
