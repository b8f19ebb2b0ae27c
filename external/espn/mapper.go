package espn

import (
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/boxscore"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

func mapScoreboard(payload scoreboardEnvelope) []usecase.ExternalGame {
	out := make([]usecase.ExternalGame, 0, len(payload.Events))
	for _, event := range payload.Events {
		id := strings.TrimSpace(string(event.ID))
		if id == "" {
			continue
		}
		game := usecase.ExternalGame{
			ID:       id,
			Status:   boxscore.ParseStatus(event.Status.Type.State),
			StartsAt: parseProviderTime(event.Date),
		}
		if len(event.Competitions) > 0 {
			comp := event.Competitions[0]
			if state := comp.Status.Type.State; state != "" {
				game.Status = boxscore.ParseStatus(state)
			}
			game.HomeTeam, game.AwayTeam = homeAway(comp.Competitors)
		}
		out = append(out, game)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

func mapSummary(gameID string, payload summaryEnvelope) boxscore.BoxScore {
	box := boxscore.BoxScore{GameID: gameID, Status: boxscore.StatusPre}

	scores := make(map[string]int, 2)
	if len(payload.Header.Competitions) > 0 {
		comp := payload.Header.Competitions[0]
		box.Status = boxscore.ParseStatus(comp.Status.Type.State)
		for _, item := range comp.Competitors {
			scores[normalizeTeam(item.Team.Abbreviation)] = item.Score.int()
		}
	}

	byTeam := make(map[string]int, 2)
	teamIndex := func(team string) int {
		if idx, ok := byTeam[team]; ok {
			return idx
		}
		box.Teams = append(box.Teams, boxscore.TeamBox{Team: team, Score: scores[team]})
		byTeam[team] = len(box.Teams) - 1
		return byTeam[team]
	}

	for _, item := range payload.Boxscore.Teams {
		team := normalizeTeam(item.Team.Abbreviation)
		if team == "" {
			continue
		}
		idx := teamIndex(team)
		for _, stat := range item.Statistics {
			box.Teams[idx].Stats = append(box.Teams[idx].Stats, boxscore.TeamStat{
				Name:  stat.Name,
				Value: string(stat.DisplayValue),
			})
		}
	}

	for _, item := range payload.Boxscore.Players {
		team := normalizeTeam(item.Team.Abbreviation)
		if team == "" {
			continue
		}
		idx := teamIndex(team)
		for _, stat := range item.Statistics {
			category := boxscore.Category{
				Name: stat.Name,
				Keys: stat.Keys,
			}
			for _, athlete := range stat.Athletes {
				values := make([]string, 0, len(athlete.Stats))
				for _, value := range athlete.Stats {
					values = append(values, string(value))
				}
				category.Athletes = append(category.Athletes, boxscore.AthleteLine{
					ID:       strings.TrimSpace(string(athlete.Athlete.ID)),
					Name:     strings.TrimSpace(athlete.Athlete.DisplayName),
					Position: strings.ToUpper(strings.TrimSpace(athlete.Athlete.Position.Abbreviation)),
					Values:   values,
				})
			}
			box.Teams[idx].Categories = append(box.Teams[idx].Categories, category)
		}
	}

	// Teams with no box score rows yet still carry their score.
	for team := range scores {
		if team != "" {
			teamIndex(team)
		}
	}

	for _, play := range payload.ScoringPlays {
		box.ScoringPlays = append(box.ScoringPlays, boxscore.ScoringPlay{
			Team: normalizeTeam(play.Team.Abbreviation),
			Type: firstNonEmpty(play.Type.Text, play.Type.Abbreviation),
			Text: play.Text,
		})
	}
	return box
}

func mapRoster(team string, payload rosterEnvelope) usecase.ExternalTeamRoster {
	out := usecase.ExternalTeamRoster{
		Team:        firstNonEmpty(normalizeTeam(payload.Team.Abbreviation), team),
		DisplayName: strings.TrimSpace(payload.Team.DisplayName),
	}
	for _, group := range payload.Athletes {
		for _, athlete := range group.Items {
			id := strings.TrimSpace(string(athlete.ID))
			if id == "" {
				continue
			}
			item := usecase.ExternalPlayer{
				ExternalID: id,
				Name:       firstNonEmpty(athlete.DisplayName, athlete.FullName),
				Position:   strings.ToUpper(strings.TrimSpace(athlete.Position.Abbreviation)),
				ImageURL:   strings.TrimSpace(athlete.Headshot.Href),
			}
			if len(athlete.Injuries) > 0 {
				item.InjuryStatus = strings.TrimSpace(athlete.Injuries[0].Status)
			}
			out.Players = append(out.Players, item)
		}
	}
	return out
}

func homeAway(items []competitor) (home, away string) {
	for _, item := range items {
		switch strings.ToLower(item.HomeAway) {
		case "home":
			home = normalizeTeam(item.Team.Abbreviation)
		case "away":
			away = normalizeTeam(item.Team.Abbreviation)
		}
	}
	return home, away
}

func normalizeTeam(abbr string) string {
	return player.NormalizeTeam(abbr)
}

func parseProviderTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00", "2006-01-02T15:04Z"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
	}
	return ""
}
