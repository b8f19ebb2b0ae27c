package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
)

func TestCalculatePoints_Scenarios(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name     string
		line     stats.WeekLine
		position player.Position
		want     float64
	}{
		{
			name:     "quarterback passing line",
			line:     stats.WeekLine{PassingYards: 300, PassingTDs: 3, Interceptions: 1},
			position: player.PositionQuarterback,
			want:     22,
		},
		{
			name:     "defense shutout with sacks and interception",
			line:     stats.WeekLine{PointsAllowed: 0, Sacks: 3, DefInterceptions: 1},
			position: player.PositionDefense,
			want:     15,
		},
		{
			name:     "kicker long field goal and missed extra point",
			line:     stats.WeekLine{FG40To49: 1, XPMissed: 1},
			position: player.PositionKicker,
			want:     3,
		},
		{
			name:     "receiver ppr line",
			line:     stats.WeekLine{Receptions: 7, ReceivingYards: 93, ReceivingTDs: 1, RushingYards: 4},
			position: player.PositionWideReceiver,
			want:     22.7,
		},
		{
			name:     "defense gives up 24",
			line:     stats.WeekLine{PointsAllowed: 24, Sacks: 2, FumbleRecoveries: 1, DefTDs: 1},
			position: player.PositionDefense,
			want:     10,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculatePoints(tc.line.StatLine(), rules, tc.position)
			if got != tc.want {
				t.Fatalf("unexpected points: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestCalculatePoints_PassingYardsPerPointIsLinear(t *testing.T) {
	rules := DefaultRules()
	for k := 0; k <= 24; k++ {
		line := stats.WeekLine{PassingYards: 25 * k}.StatLine()
		for _, position := range []player.Position{player.PositionQuarterback, ""} {
			got := CalculatePoints(line, rules, position)
			if got != float64(k) {
				t.Fatalf("expected %d points for %d yards at position %q, got %v", k, 25*k, position, got)
			}
		}
	}
}

func TestCalculatePoints_KickerIgnoresOffense(t *testing.T) {
	rules := DefaultRules()
	kickingOnly := stats.WeekLine{FG0To39: 2, FG50Plus: 1, XPMade: 3}
	withOffense := kickingOnly
	withOffense.PassingYards = 40
	withOffense.RushingYards = 12
	withOffense.ReceivingYards = 30
	withOffense.Receptions = 2
	withOffense.RushingTDs = 1

	want := CalculatePoints(kickingOnly.StatLine(), rules, player.PositionKicker)
	got := CalculatePoints(withOffense.StatLine(), rules, player.PositionKicker)
	if got != want {
		t.Fatalf("kicker total changed with offense stats: got=%v want=%v", got, want)
	}
	if want != 14 {
		t.Fatalf("unexpected kicker total: %v", want)
	}
}

func TestCalculatePoints_DefenseInclusionByPosition(t *testing.T) {
	rules := DefaultRules()
	line := stats.WeekLine{RushingYards: 50, Sacks: 1}.StatLine()

	if got := CalculatePoints(line, rules, player.PositionRunningBack); got != 5 {
		t.Fatalf("running back should ignore defense, got %v", got)
	}
	if got := CalculatePoints(line, rules, "LB"); got != 5 {
		t.Fatalf("unknown position should ignore defense, got %v", got)
	}
	// unspecified position with defensive activity: 5 + shutout 10 + 1 sack
	if got := CalculatePoints(line, rules, ""); got != 16 {
		t.Fatalf("unspecified position should include defense, got %v", got)
	}

	offenseOnly := stats.WeekLine{RushingYards: 50}.StatLine()
	if got := CalculatePoints(offenseOnly, rules, ""); got != 5 {
		t.Fatalf("unspecified position without defensive activity should skip defense, got %v", got)
	}
}

func TestCalculatePoints_PointsAllowedTiers(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		allowed int
		want    float64
	}{
		{0, 10}, {1, 7}, {6, 7}, {7, 4}, {13, 4}, {14, 1}, {20, 1},
		{21, 0}, {27, 0}, {28, -1}, {34, -1}, {35, -4}, {70, -4},
	}
	for _, tc := range tests {
		line := stats.WeekLine{PointsAllowed: tc.allowed}.StatLine()
		if got := CalculatePoints(line, rules, player.PositionDefense); got != tc.want {
			t.Fatalf("points allowed %d: got=%v want=%v", tc.allowed, got, tc.want)
		}
	}
}

func TestCalculatePoints_IsDeterministic(t *testing.T) {
	rules := DefaultRules()
	line := stats.WeekLine{PassingYards: 333, RushingYards: 17, Receptions: 1, ReceivingYards: 3, Interceptions: 2}.StatLine()

	first := CalculatePoints(line, rules, player.PositionQuarterback)
	for i := 0; i < 10; i++ {
		if got := CalculatePoints(line, rules, player.PositionQuarterback); got != first {
			t.Fatalf("non-deterministic result: %v vs %v", got, first)
		}
	}
}

func TestCalculatePoints_ZeroYardsPerPointContributesNothing(t *testing.T) {
	rules := DefaultRules()
	rules.RushingYardsPerPoint = 0

	got := CalculatePoints(stats.WeekLine{RushingYards: 120, RushingTDs: 1}.StatLine(), rules, player.PositionRunningBack)
	if got != 6 {
		t.Fatalf("unexpected points: %v", got)
	}
}

func TestRound2_HalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{2.675, 2.68},
		{0.125, 0.13},
		{0.124, 0.12},
		{33.3, 33.3},
		{-2, -2},
		{-2.005, -2.01},
		{-1.125, -1.13},
		{-0.004, 0},
		{12.0 / 25.0 * 25, 12},
	}
	for _, tc := range tests {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v): got=%v want=%v", tc.in, got, tc.want)
		}
	}
	if got := Round2(-0.001); math.Signbit(got) {
		t.Fatalf("expected tiny negative to round to positive zero, got %v", got)
	}
	if got := Round2(math.NaN()); got != 0 {
		t.Fatalf("expected NaN to round to zero, got %v", got)
	}
}

func TestBreakdown_ListsNonZeroItemsInOrder(t *testing.T) {
	rules := DefaultRules()
	line := stats.WeekLine{PassingYards: 300, PassingTDs: 3, Interceptions: 1, Receptions: 0}.StatLine()

	items := Breakdown(line, rules, player.PositionQuarterback)
	wantCategories := []string{CategoryPassingYards, CategoryPassingTDs, CategoryInterceptions}
	if len(items) != len(wantCategories) {
		t.Fatalf("unexpected item count: %+v", items)
	}
	for i, category := range wantCategories {
		if items[i].Category != category {
			t.Fatalf("item %d: got category %s want %s", i, items[i].Category, category)
		}
	}
	if items[0].Value != 300 || items[0].Points != 12 || items[0].Label != "300 passing yards" {
		t.Fatalf("unexpected passing yards item: %+v", items[0])
	}
	if items[2].Points != -2 || items[2].Label != "1 interception" {
		t.Fatalf("unexpected interception item: %+v", items[2])
	}
}

func TestBreakdown_DefenseShowsTier(t *testing.T) {
	items := Breakdown(stats.WeekLine{PointsAllowed: 10, Sacks: 2}.StatLine(), DefaultRules(), player.PositionDefense)
	if len(items) != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].Category != CategoryPointsAllowed || items[0].Label != "10 points allowed (tier 7-13)" || items[0].Points != 4 {
		t.Fatalf("unexpected points allowed item: %+v", items[0])
	}
	if items[1].Label != "2 sacks" {
		t.Fatalf("unexpected sack label: %s", items[1].Label)
	}
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("default rules should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{name: "increasing tier", mutate: func(r *Rules) { r.PointsAllowed7To13 = 8 }},
		{name: "negative ratio", mutate: func(r *Rules) { r.PassingYardsPerPoint = -25 }},
		{name: "nan coefficient", mutate: func(r *Rules) { r.Sack = math.NaN() }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rules := DefaultRules()
			tc.mutate(&rules)
			if err := rules.Validate(); !errors.Is(err, ErrInvalidRules) {
				t.Fatalf("expected ErrInvalidRules, got %v", err)
			}
		})
	}
}
