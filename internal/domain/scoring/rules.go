package scoring

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidRules = errors.New("invalid scoring rules")

// Rules stores the coefficients every scoring calculation reads.
type Rules struct {
	Name string

	PassingYardsPerPoint float64
	PassingTD            float64
	Interception         float64

	RushingYardsPerPoint float64
	RushingTD            float64

	ReceivingYardsPerPoint float64
	ReceivingTD            float64
	Reception              float64

	FG0To39    float64
	FG40To49   float64
	FG50Plus   float64
	FGMissed   float64
	ExtraPoint float64
	XPMissed   float64

	PointsAllowed0      float64
	PointsAllowed1To6   float64
	PointsAllowed7To13  float64
	PointsAllowed14To20 float64
	PointsAllowed21To27 float64
	PointsAllowed28To34 float64
	PointsAllowed35Plus float64
	Sack                float64
	DefInterception     float64
	FumbleRecovery      float64
	DefTD               float64
}

// DefaultRules returns the standard PPR table.
func DefaultRules() Rules {
	return Rules{
		Name: "standard-ppr",

		PassingYardsPerPoint: 25,
		PassingTD:            4,
		Interception:         -2,

		RushingYardsPerPoint: 10,
		RushingTD:            6,

		ReceivingYardsPerPoint: 10,
		ReceivingTD:            6,
		Reception:              1,

		FG0To39:    3,
		FG40To49:   4,
		FG50Plus:   5,
		FGMissed:   -1,
		ExtraPoint: 1,
		XPMissed:   -1,

		PointsAllowed0:      10,
		PointsAllowed1To6:   7,
		PointsAllowed7To13:  4,
		PointsAllowed14To20: 1,
		PointsAllowed21To27: 0,
		PointsAllowed28To34: -1,
		PointsAllowed35Plus: -4,
		Sack:                1,
		DefInterception:     2,
		FumbleRecovery:      2,
		DefTD:               6,
	}
}

func (r Rules) coefficients() map[string]float64 {
	return map[string]float64{
		"passing_yards_per_point":   r.PassingYardsPerPoint,
		"passing_td":                r.PassingTD,
		"interception":              r.Interception,
		"rushing_yards_per_point":   r.RushingYardsPerPoint,
		"rushing_td":                r.RushingTD,
		"receiving_yards_per_point": r.ReceivingYardsPerPoint,
		"receiving_td":              r.ReceivingTD,
		"reception":                 r.Reception,
		"fg_0_39":                   r.FG0To39,
		"fg_40_49":                  r.FG40To49,
		"fg_50_plus":                r.FG50Plus,
		"fg_missed":                 r.FGMissed,
		"extra_point":               r.ExtraPoint,
		"xp_missed":                 r.XPMissed,
		"points_allowed_0":          r.PointsAllowed0,
		"points_allowed_1_6":        r.PointsAllowed1To6,
		"points_allowed_7_13":       r.PointsAllowed7To13,
		"points_allowed_14_20":      r.PointsAllowed14To20,
		"points_allowed_21_27":      r.PointsAllowed21To27,
		"points_allowed_28_34":      r.PointsAllowed28To34,
		"points_allowed_35_plus":    r.PointsAllowed35Plus,
		"sack":                      r.Sack,
		"def_interception":          r.DefInterception,
		"fumble_recovery":           r.FumbleRecovery,
		"def_td":                    r.DefTD,
	}
}

func (r Rules) Validate() error {
	for name, value := range r.coefficients() {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidRules, name)
		}
	}
	if r.PassingYardsPerPoint < 0 || r.RushingYardsPerPoint < 0 || r.ReceivingYardsPerPoint < 0 {
		return fmt.Errorf("%w: yards per point must not be negative", ErrInvalidRules)
	}

	tiers := r.pointsAllowedTiers()
	for i := 1; i < len(tiers); i++ {
		if tiers[i].points > tiers[i-1].points {
			return fmt.Errorf("%w: points allowed tier %s exceeds tier %s", ErrInvalidRules, tiers[i].label, tiers[i-1].label)
		}
	}

	return nil
}

type pointsAllowedTier struct {
	label  string
	max    int
	points float64
}

// pointsAllowedTiers is ordered by ascending points allowed; the last tier is open-ended.
func (r Rules) pointsAllowedTiers() []pointsAllowedTier {
	return []pointsAllowedTier{
		{label: "0", max: 0, points: r.PointsAllowed0},
		{label: "1-6", max: 6, points: r.PointsAllowed1To6},
		{label: "7-13", max: 13, points: r.PointsAllowed7To13},
		{label: "14-20", max: 20, points: r.PointsAllowed14To20},
		{label: "21-27", max: 27, points: r.PointsAllowed21To27},
		{label: "28-34", max: 34, points: r.PointsAllowed28To34},
		{label: "35+", max: math.MaxInt, points: r.PointsAllowed35Plus},
	}
}

func (r Rules) pointsAllowedTier(pointsAllowed int) pointsAllowedTier {
	tiers := r.pointsAllowedTiers()
	for _, tier := range tiers {
		if pointsAllowed <= tier.max {
			return tier
		}
	}
	return tiers[len(tiers)-1]
}
