package boxscore

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/domain/matching"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
)

// TierAlias marks candidates resolved through an admin-saved alias.
const TierAlias matching.Tier = "alias"

var tierStrength = map[string]int{
	string(TierAlias):              4,
	string(matching.TierExact):     3,
	string(matching.TierFirstLast): 2,
	string(matching.TierLastName):  1,
}

// StrongerMatch reports whether a was resolved through a more trustworthy
// tier than b. Equal tiers are not stronger.
func StrongerMatch(a, b stats.Candidate) bool {
	return tierStrength[a.Tier] > tierStrength[b.Tier]
}

const (
	categoryPassing   = "passing"
	categoryRushing   = "rushing"
	categoryReceiving = "receiving"
	categoryKicking   = "kicking"

	keyPassingYards      = "passingYards"
	keyPassingTDs        = "passingTouchdowns"
	keyInterceptions     = "interceptions"
	keyRushingYards      = "rushingYards"
	keyRushingTDs        = "rushingTouchdowns"
	keyReceptions        = "receptions"
	keyReceivingYards    = "receivingYards"
	keyReceivingTDs      = "receivingTouchdowns"
	keyFieldGoals        = "fieldGoalsMade/fieldGoalAttempts"
	keyExtraPoints       = "extraPointsMade/extraPointAttempts"
	teamStatSacks        = "sacks"
	teamStatSacksLost    = "sacksYardsLost"
	teamStatDefensiveTDs = "defensiveTouchdowns"
	teamStatIntsThrown   = "interceptions"
	teamStatFumblesLost  = "fumblesLost"
)

var fieldGoalPlay = regexp.MustCompile(`(?i)^(.+?)\s+(\d+)\s+yd\s+field\s+goal`)

// Normalizer turns box scores into stat-line candidates.
type Normalizer struct {
	Matcher matching.Matcher
	// Aliases maps external keys to player ids and wins over name matching.
	Aliases map[string]string
}

// Normalize produces one candidate per athlete with offensive or kicking
// stats plus one DST candidate per team. Games that have not started yield
// nothing. Malformed values count as zero.
func (n Normalizer) Normalize(box BoxScore, weekName string, candidates []player.Player) []stats.Candidate {
	if !box.Status.Started() {
		return nil
	}

	individuals := make([]player.Player, 0, len(candidates))
	defenses := make([]player.Player, 0)
	for _, p := range candidates {
		if p.Position == player.PositionDefense {
			defenses = append(defenses, p)
			continue
		}
		individuals = append(individuals, p)
	}

	out := make([]stats.Candidate, 0)
	for _, team := range box.Teams {
		for _, line := range n.athleteLines(team, box.ScoringPlays) {
			out = append(out, n.resolve(line, weekName, individuals))
		}
	}
	for i, team := range box.Teams {
		opponent, ok := opponentOf(box.Teams, i)
		if !ok {
			continue
		}
		out = append(out, n.resolveDefense(teamDefense(team, opponent), weekName, defenses))
	}
	return out
}

type athleteAccumulator struct {
	externalKey string
	name        string
	team        string
	position    player.Position
	line        stats.WeekLine

	fgMade     int
	fgAttempts int
	xpMade     int
	xpAttempts int
}

func (n Normalizer) athleteLines(team TeamBox, plays []ScoringPlay) []stats.Candidate {
	teamCode := player.NormalizeTeam(team.Team)
	order := make([]string, 0)
	byKey := make(map[string]*athleteAccumulator)

	for _, category := range team.Categories {
		name := strings.ToLower(strings.TrimSpace(category.Name))
		for _, athlete := range category.Athletes {
			key := athleteKey(athlete, teamCode)
			acc, ok := byKey[key]
			if !ok {
				acc = &athleteAccumulator{
					externalKey: key,
					name:        strings.TrimSpace(athlete.Name),
					team:        teamCode,
					position:    player.ParsePosition(athlete.Position),
				}
				byKey[key] = acc
				order = append(order, key)
			}
			if acc.position == "" {
				acc.position = player.ParsePosition(athlete.Position)
			}

			switch name {
			case categoryPassing:
				acc.line.PassingYards += parseCount(athlete.value(category.Keys, keyPassingYards))
				acc.line.PassingTDs += parseCount(athlete.value(category.Keys, keyPassingTDs))
				acc.line.Interceptions += parseCount(athlete.value(category.Keys, keyInterceptions))
			case categoryRushing:
				acc.line.RushingYards += parseCount(athlete.value(category.Keys, keyRushingYards))
				acc.line.RushingTDs += parseCount(athlete.value(category.Keys, keyRushingTDs))
			case categoryReceiving:
				acc.line.Receptions += parseCount(athlete.value(category.Keys, keyReceptions))
				acc.line.ReceivingYards += parseCount(athlete.value(category.Keys, keyReceivingYards))
				acc.line.ReceivingTDs += parseCount(athlete.value(category.Keys, keyReceivingTDs))
			case categoryKicking:
				made, attempts := parseRatio(athlete.value(category.Keys, keyFieldGoals))
				acc.fgMade += made
				acc.fgAttempts += attempts
				made, attempts = parseRatio(athlete.value(category.Keys, keyExtraPoints))
				acc.xpMade += made
				acc.xpAttempts += attempts
				if acc.position == "" {
					acc.position = player.PositionKicker
				}
			}
		}
	}

	out := make([]stats.Candidate, 0, len(order))
	for _, key := range order {
		acc := byKey[key]
		if acc.fgAttempts > 0 || acc.xpAttempts > 0 || acc.fgMade > 0 || acc.xpMade > 0 {
			applyKicking(acc, kickDistances(acc.name, teamCode, plays))
		}
		clampCounters(&acc.line)
		if len(acc.line.StatLine().Payloads()) == 0 {
			continue
		}
		out = append(out, stats.Candidate{
			ExternalKey: acc.externalKey,
			Name:        acc.name,
			Team:        acc.team,
			Position:    acc.position,
			Line:        acc.line,
		})
	}
	return out
}

// applyKicking buckets made field goals by the distances recovered from
// scoring plays. Makes without a distance fall into 0-39.
func applyKicking(acc *athleteAccumulator, distances []int) {
	if len(distances) > acc.fgMade {
		distances = distances[:acc.fgMade]
	}
	for _, d := range distances {
		switch {
		case d >= 50:
			acc.line.FG50Plus++
		case d >= 40:
			acc.line.FG40To49++
		default:
			acc.line.FG0To39++
		}
	}
	acc.line.FG0To39 += acc.fgMade - len(distances)
	acc.line.FGMissed = max(acc.fgAttempts-acc.fgMade, 0)
	acc.line.XPMade = acc.xpMade
	acc.line.XPMissed = max(acc.xpAttempts-acc.xpMade, 0)
}

func kickDistances(kicker, team string, plays []ScoringPlay) []int {
	kickerKey := matching.Normalize(kicker)
	kickerLast := lastToken(kickerKey)
	if kickerKey == "" {
		return nil
	}

	out := make([]int, 0)
	for _, play := range plays {
		if play.Team != "" && player.NormalizeTeam(play.Team) != team {
			continue
		}
		m := fieldGoalPlay.FindStringSubmatch(strings.TrimSpace(play.Text))
		if m == nil {
			continue
		}
		named := matching.Normalize(m[1])
		if named != kickerKey && (play.Team == "" || lastToken(named) != kickerLast) {
			continue
		}
		distance, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		out = append(out, distance)
	}
	return out
}

func teamDefense(team, opponent TeamBox) stats.Candidate {
	code := player.NormalizeTeam(team.Team)

	line := stats.WeekLine{
		PointsAllowed:    opponent.Score,
		DefTDs:           teamCount(team, teamStatDefensiveTDs),
		DefInterceptions: teamCount(opponent, teamStatIntsThrown),
		FumbleRecoveries: teamCount(opponent, teamStatFumblesLost),
	}
	if raw, ok := team.stat(teamStatSacks); ok {
		line.Sacks = parseCount(raw)
	} else if raw, ok := opponent.stat(teamStatSacksLost); ok {
		sacks, _ := parseRatioSep(raw, "-")
		line.Sacks = sacks
	}
	clampCounters(&line)

	return stats.Candidate{
		ExternalKey: DefenseKey(code),
		Name:        code,
		Team:        code,
		Position:    player.PositionDefense,
		Line:        line,
	}
}

// DefenseKey is the external key of a team's DST line.
func DefenseKey(team string) string {
	return "dst:" + player.NormalizeTeam(team)
}

func (n Normalizer) resolve(c stats.Candidate, weekName string, candidates []player.Player) stats.Candidate {
	c.Line.WeekName = weekName
	c.Line.Source = stats.SourceSync
	if id, ok := n.Aliases[c.ExternalKey]; ok && id != "" {
		return matched(c, id, TierAlias)
	}
	if result, ok := n.Matcher.Match(c.Name, c.Team, candidates); ok {
		return matched(c, result.PlayerID, result.Tier)
	}
	return c
}

func (n Normalizer) resolveDefense(c stats.Candidate, weekName string, defenses []player.Player) stats.Candidate {
	c.Line.WeekName = weekName
	c.Line.Source = stats.SourceSync
	if id, ok := n.Aliases[c.ExternalKey]; ok && id != "" {
		return matched(c, id, TierAlias)
	}
	for _, d := range defenses {
		if player.NormalizeTeam(d.Team) == c.Team {
			return matched(c, d.ID, matching.TierExact)
		}
	}
	return c
}

func matched(c stats.Candidate, playerID string, tier matching.Tier) stats.Candidate {
	c.PlayerID = playerID
	c.Matched = true
	c.Tier = string(tier)
	c.Line.PlayerID = playerID
	return c
}

func opponentOf(teams []TeamBox, index int) (TeamBox, bool) {
	if len(teams) != 2 {
		return TeamBox{}, false
	}
	return teams[1-index], true
}

func athleteKey(a AthleteLine, team string) string {
	if id := strings.TrimSpace(a.ID); id != "" {
		return "espn:" + id
	}
	return "name:" + team + ":" + matching.Normalize(a.Name)
}

func teamCount(team TeamBox, name string) int {
	raw, _ := team.stat(name)
	return parseCount(raw)
}

// parseCount reads an integer counter. Anything unparseable is zero.
func parseCount(raw string) int {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}

func parseRatio(raw string) (int, int) {
	return parseRatioSep(raw, "/")
}

func parseRatioSep(raw, sep string) (int, int) {
	left, right, ok := strings.Cut(strings.TrimSpace(raw), sep)
	if !ok {
		return 0, 0
	}
	return parseCount(left), parseCount(right)
}

// clampCounters zeroes negative totals such as net-negative rushing yards,
// since stored counters are non-negative.
func clampCounters(l *stats.WeekLine) {
	for _, field := range []*int{
		&l.PassingYards, &l.PassingTDs, &l.Interceptions,
		&l.RushingYards, &l.RushingTDs,
		&l.Receptions, &l.ReceivingYards, &l.ReceivingTDs,
		&l.FG0To39, &l.FG40To49, &l.FG50Plus, &l.FGMissed, &l.XPMade, &l.XPMissed,
		&l.PointsAllowed, &l.Sacks, &l.DefInterceptions, &l.FumbleRecoveries, &l.DefTDs,
	} {
		if *field < 0 {
			*field = 0
		}
	}
}

func lastToken(normalized string) string {
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}
