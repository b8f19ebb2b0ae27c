package httpapi

import (
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/jobscheduler"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/domain/standings"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
	"github.com/riskibarqy/playoff-pool/internal/domain/user"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

type weekDTO struct {
	Number         int      `json:"number"`
	Name           string   `json:"name"`
	Teams          []string `json:"teams"`
	Deadline       *string  `json:"deadline,omitempty"`
	DeadlinePassed bool     `json:"deadline_passed"`
	Current        bool     `json:"current"`
}

type playerDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Team         string `json:"team"`
	Position     string `json:"position"`
	ImageURL     string `json:"image_url,omitempty"`
	Rank         int    `json:"rank,omitempty"`
	InjuryStatus string `json:"injury_status,omitempty"`
}

type rosterSlotDTO struct {
	Slot     string     `json:"slot"`
	Position string     `json:"position"`
	PlayerID string     `json:"player_id,omitempty"`
	Player   *playerDTO `json:"player,omitempty"`
}

type rosterDTO struct {
	UserID          string          `json:"user_id"`
	Week            int             `json:"week"`
	State           string          `json:"state"`
	Locked          bool            `json:"locked"`
	EffectiveLocked bool            `json:"effective_locked"`
	LockedAt        *string         `json:"locked_at,omitempty"`
	Deadline        *string         `json:"deadline,omitempty"`
	TotalPoints     float64         `json:"total_points"`
	Slots           []rosterSlotDTO `json:"slots"`
}

type standingsPlayerDTO struct {
	Week     int     `json:"week"`
	Slot     string  `json:"slot"`
	PlayerID string  `json:"player_id"`
	Points   float64 `json:"points"`
	HasStats bool    `json:"has_stats"`
}

type standingsEntryDTO struct {
	Rank        int                  `json:"rank"`
	UserID      string               `json:"user_id"`
	DisplayName string               `json:"display_name"`
	TotalPoints float64              `json:"total_points"`
	WeekTotals  map[int]float64      `json:"week_totals,omitempty"`
	Players     []standingsPlayerDTO `json:"players,omitempty"`
}

type lineItemDTO struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Value    int     `json:"value"`
	Points   float64 `json:"points"`
}

type playerBreakdownDTO struct {
	Player   playerDTO     `json:"player"`
	Week     int           `json:"week"`
	HasStats bool          `json:"has_stats"`
	Points   float64       `json:"points"`
	Items    []lineItemDTO `json:"items"`
}

type scoringRulesDTO struct {
	Name string `json:"name"`

	PassingYardsPerPoint float64 `json:"passing_yards_per_point" validate:"gte=0"`
	PassingTD            float64 `json:"passing_td"`
	Interception         float64 `json:"interception"`

	RushingYardsPerPoint float64 `json:"rushing_yards_per_point" validate:"gte=0"`
	RushingTD            float64 `json:"rushing_td"`

	ReceivingYardsPerPoint float64 `json:"receiving_yards_per_point" validate:"gte=0"`
	ReceivingTD            float64 `json:"receiving_td"`
	Reception              float64 `json:"reception"`

	FG0To39    float64 `json:"fg_0_39"`
	FG40To49   float64 `json:"fg_40_49"`
	FG50Plus   float64 `json:"fg_50_plus"`
	FGMissed   float64 `json:"fg_missed"`
	ExtraPoint float64 `json:"extra_point"`
	XPMissed   float64 `json:"xp_missed"`

	PointsAllowed0      float64 `json:"points_allowed_0"`
	PointsAllowed1To6   float64 `json:"points_allowed_1_6"`
	PointsAllowed7To13  float64 `json:"points_allowed_7_13"`
	PointsAllowed14To20 float64 `json:"points_allowed_14_20"`
	PointsAllowed21To27 float64 `json:"points_allowed_21_27"`
	PointsAllowed28To34 float64 `json:"points_allowed_28_34"`
	PointsAllowed35Plus float64 `json:"points_allowed_35_plus"`
	Sack                float64 `json:"sack"`
	DefInterception     float64 `json:"def_interception"`
	FumbleRecovery      float64 `json:"fumble_recovery"`
	DefTD               float64 `json:"def_td"`
}

// statLineDTO is both the manual stat request body and the stat line view.
type statLineDTO struct {
	PassingYards  int `json:"passing_yards"`
	PassingTDs    int `json:"passing_tds"`
	Interceptions int `json:"interceptions"`

	RushingYards int `json:"rushing_yards"`
	RushingTDs   int `json:"rushing_tds"`

	Receptions     int `json:"receptions"`
	ReceivingYards int `json:"receiving_yards"`
	ReceivingTDs   int `json:"receiving_tds"`

	FG0To39  int `json:"fg_0_39"`
	FG40To49 int `json:"fg_40_49"`
	FG50Plus int `json:"fg_50_plus"`
	FGMissed int `json:"fg_missed"`
	XPMade   int `json:"xp_made"`
	XPMissed int `json:"xp_missed"`

	PointsAllowed    int `json:"points_allowed"`
	Sacks            int `json:"sacks"`
	DefInterceptions int `json:"def_interceptions"`
	FumbleRecoveries int `json:"fumble_recoveries"`
	DefTDs           int `json:"def_tds"`

	WeekName  string `json:"week_name,omitempty"`
	PlayerID  string `json:"player_id,omitempty"`
	Source    string `json:"source,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type unmatchedDTO struct {
	ExternalKey string      `json:"external_key"`
	Name        string      `json:"name"`
	Team        string      `json:"team"`
	Position    string      `json:"position"`
	Line        statLineDTO `json:"line"`
	UpdatedAt   string      `json:"updated_at"`
}

type statSyncReportDTO struct {
	RunID        string                `json:"run_id"`
	Week         int                   `json:"week"`
	WeekName     string                `json:"week_name"`
	Games        int                   `json:"games"`
	GamesSkipped int                   `json:"games_skipped"`
	GamesFailed  int                   `json:"games_failed"`
	Lines        int                   `json:"lines"`
	Unmatched    []unmatchedDTO        `json:"unmatched"`
	Failures     []usecase.GameFailure `json:"failures,omitempty"`
	StartedAt    string                `json:"started_at"`
	FinishedAt   string                `json:"finished_at"`
}

type dispatchDTO struct {
	DispatchID  string  `json:"dispatch_id"`
	JobName     string  `json:"job_name"`
	JobPath     string  `json:"job_path"`
	Week        int     `json:"week"`
	Status      string  `json:"status"`
	LastError   string  `json:"last_error,omitempty"`
	SentAt      *string `json:"sent_at,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
	FailedAt    *string `json:"failed_at,omitempty"`
	TraceID     string  `json:"trace_id,omitempty"`
	UpdatedAt   string  `json:"updated_at"`
}

type userDTO struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := formatTime(*t)
	return &v
}

func weekToDTO(v usecase.WeekView) weekDTO {
	teams := v.Teams
	if teams == nil {
		teams = []string{}
	}
	return weekDTO{
		Number:         v.Number,
		Name:           v.Name,
		Teams:          teams,
		Deadline:       formatTimePtr(v.Deadline),
		DeadlinePassed: v.DeadlinePassed,
		Current:        v.Current,
	}
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{
		ID:           v.ID,
		Name:         v.Name,
		Team:         v.Team,
		Position:     string(v.Position),
		ImageURL:     v.ImageURL,
		Rank:         v.Rank,
		InjuryStatus: string(v.InjuryStatus),
	}
}

func playersToDTO(items []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, playerToDTO(item))
	}
	return out
}

// rosterToDTO lists every slot in display order. Players are attached when
// present in the lookup.
func rosterToDTO(view usecase.RosterView, players map[string]player.Player) rosterDTO {
	r := view.Roster
	slots := make([]rosterSlotDTO, 0, len(roster.Slots))
	for _, slot := range roster.Slots {
		item := rosterSlotDTO{
			Slot:     string(slot),
			Position: string(slot.Position()),
			PlayerID: r.Get(slot),
		}
		if p, ok := players[item.PlayerID]; ok && item.PlayerID != "" {
			dto := playerToDTO(p)
			item.Player = &dto
		}
		slots = append(slots, item)
	}

	return rosterDTO{
		UserID:          r.UserID,
		Week:            r.Week,
		State:           string(view.State),
		Locked:          r.Locked,
		EffectiveLocked: view.EffectiveLocked,
		LockedAt:        formatTimePtr(r.LockedAt),
		Deadline:        formatTimePtr(view.Deadline),
		TotalPoints:     r.TotalPoints,
		Slots:           slots,
	}
}

func standingsToDTO(entries []standings.Entry, withPlayers bool) []standingsEntryDTO {
	out := make([]standingsEntryDTO, 0, len(entries))
	for _, e := range entries {
		item := standingsEntryDTO{
			Rank:        e.Rank,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			TotalPoints: e.TotalPoints,
			WeekTotals:  e.WeekTotals,
		}
		if withPlayers {
			item.Players = make([]standingsPlayerDTO, 0, len(e.Players))
			for _, p := range e.Players {
				item.Players = append(item.Players, standingsPlayerDTO{
					Week:     p.Week,
					Slot:     string(p.Slot),
					PlayerID: p.PlayerID,
					Points:   p.Points,
					HasStats: p.HasStats,
				})
			}
		}
		out = append(out, item)
	}
	return out
}

func breakdownToDTO(v usecase.PlayerBreakdown) playerBreakdownDTO {
	items := make([]lineItemDTO, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, lineItemDTO(item))
	}
	return playerBreakdownDTO{
		Player:   playerToDTO(v.Player),
		Week:     v.Week,
		HasStats: v.HasStats,
		Points:   v.Points,
		Items:    items,
	}
}

func rulesToDTO(v scoring.Rules) scoringRulesDTO {
	return scoringRulesDTO{
		Name:                   v.Name,
		PassingYardsPerPoint:   v.PassingYardsPerPoint,
		PassingTD:              v.PassingTD,
		Interception:           v.Interception,
		RushingYardsPerPoint:   v.RushingYardsPerPoint,
		RushingTD:              v.RushingTD,
		ReceivingYardsPerPoint: v.ReceivingYardsPerPoint,
		ReceivingTD:            v.ReceivingTD,
		Reception:              v.Reception,
		FG0To39:                v.FG0To39,
		FG40To49:               v.FG40To49,
		FG50Plus:               v.FG50Plus,
		FGMissed:               v.FGMissed,
		ExtraPoint:             v.ExtraPoint,
		XPMissed:               v.XPMissed,
		PointsAllowed0:         v.PointsAllowed0,
		PointsAllowed1To6:      v.PointsAllowed1To6,
		PointsAllowed7To13:     v.PointsAllowed7To13,
		PointsAllowed14To20:    v.PointsAllowed14To20,
		PointsAllowed21To27:    v.PointsAllowed21To27,
		PointsAllowed28To34:    v.PointsAllowed28To34,
		PointsAllowed35Plus:    v.PointsAllowed35Plus,
		Sack:                   v.Sack,
		DefInterception:        v.DefInterception,
		FumbleRecovery:         v.FumbleRecovery,
		DefTD:                  v.DefTD,
	}
}

func (d scoringRulesDTO) toDomain() scoring.Rules {
	return scoring.Rules{
		Name:                   d.Name,
		PassingYardsPerPoint:   d.PassingYardsPerPoint,
		PassingTD:              d.PassingTD,
		Interception:           d.Interception,
		RushingYardsPerPoint:   d.RushingYardsPerPoint,
		RushingTD:              d.RushingTD,
		ReceivingYardsPerPoint: d.ReceivingYardsPerPoint,
		ReceivingTD:            d.ReceivingTD,
		Reception:              d.Reception,
		FG0To39:                d.FG0To39,
		FG40To49:               d.FG40To49,
		FG50Plus:               d.FG50Plus,
		FGMissed:               d.FGMissed,
		ExtraPoint:             d.ExtraPoint,
		XPMissed:               d.XPMissed,
		PointsAllowed0:         d.PointsAllowed0,
		PointsAllowed1To6:      d.PointsAllowed1To6,
		PointsAllowed7To13:     d.PointsAllowed7To13,
		PointsAllowed14To20:    d.PointsAllowed14To20,
		PointsAllowed21To27:    d.PointsAllowed21To27,
		PointsAllowed28To34:    d.PointsAllowed28To34,
		PointsAllowed35Plus:    d.PointsAllowed35Plus,
		Sack:                   d.Sack,
		DefInterception:        d.DefInterception,
		FumbleRecovery:         d.FumbleRecovery,
		DefTD:                  d.DefTD,
	}
}

func statLineToDTO(v stats.WeekLine) statLineDTO {
	out := statLineDTO{
		PassingYards:     v.PassingYards,
		PassingTDs:       v.PassingTDs,
		Interceptions:    v.Interceptions,
		RushingYards:     v.RushingYards,
		RushingTDs:       v.RushingTDs,
		Receptions:       v.Receptions,
		ReceivingYards:   v.ReceivingYards,
		ReceivingTDs:     v.ReceivingTDs,
		FG0To39:          v.FG0To39,
		FG40To49:         v.FG40To49,
		FG50Plus:         v.FG50Plus,
		FGMissed:         v.FGMissed,
		XPMade:           v.XPMade,
		XPMissed:         v.XPMissed,
		PointsAllowed:    v.PointsAllowed,
		Sacks:            v.Sacks,
		DefInterceptions: v.DefInterceptions,
		FumbleRecoveries: v.FumbleRecoveries,
		DefTDs:           v.DefTDs,
		WeekName:         v.WeekName,
		PlayerID:         v.PlayerID,
		Source:           v.Source,
	}
	if !v.UpdatedAt.IsZero() {
		out.UpdatedAt = formatTime(v.UpdatedAt)
	}
	return out
}

func (d statLineDTO) toDomain() stats.WeekLine {
	return stats.WeekLine{
		PassingYards:     d.PassingYards,
		PassingTDs:       d.PassingTDs,
		Interceptions:    d.Interceptions,
		RushingYards:     d.RushingYards,
		RushingTDs:       d.RushingTDs,
		Receptions:       d.Receptions,
		ReceivingYards:   d.ReceivingYards,
		ReceivingTDs:     d.ReceivingTDs,
		FG0To39:          d.FG0To39,
		FG40To49:         d.FG40To49,
		FG50Plus:         d.FG50Plus,
		FGMissed:         d.FGMissed,
		XPMade:           d.XPMade,
		XPMissed:         d.XPMissed,
		PointsAllowed:    d.PointsAllowed,
		Sacks:            d.Sacks,
		DefInterceptions: d.DefInterceptions,
		FumbleRecoveries: d.FumbleRecoveries,
		DefTDs:           d.DefTDs,
	}
}

func unmatchedToDTO(items []stats.Unmatched) []unmatchedDTO {
	out := make([]unmatchedDTO, 0, len(items))
	for _, item := range items {
		out = append(out, unmatchedDTO{
			ExternalKey: item.ExternalKey,
			Name:        item.Name,
			Team:        item.Team,
			Position:    string(item.Position),
			Line:        statLineToDTO(item.Line),
			UpdatedAt:   formatTime(item.UpdatedAt),
		})
	}
	return out
}

func statSyncReportToDTO(v usecase.StatSyncReport) statSyncReportDTO {
	return statSyncReportDTO{
		RunID:        v.RunID,
		Week:         v.Week,
		WeekName:     v.WeekName,
		Games:        v.Games,
		GamesSkipped: v.GamesSkipped,
		GamesFailed:  v.GamesFailed,
		Lines:        v.Lines,
		Unmatched:    unmatchedToDTO(v.Unmatched),
		Failures:     v.Failures,
		StartedAt:    formatTime(v.StartedAt),
		FinishedAt:   formatTime(v.FinishedAt),
	}
}

func dispatchesToDTO(items []jobscheduler.Dispatch) []dispatchDTO {
	out := make([]dispatchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dispatchDTO{
			DispatchID:  item.DispatchID,
			JobName:     item.JobName,
			JobPath:     item.JobPath,
			Week:        item.Week,
			Status:      string(item.Status),
			LastError:   item.LastError,
			SentAt:      formatTimePtr(item.SentAt),
			CompletedAt: formatTimePtr(item.CompletedAt),
			FailedAt:    formatTimePtr(item.FailedAt),
			TraceID:     item.TraceID,
			UpdatedAt:   formatTime(item.UpdatedAt),
		})
	}
	return out
}

func usersToDTO(items []user.User) []userDTO {
	out := make([]userDTO, 0, len(items))
	for _, item := range items {
		out = append(out, userDTO{
			UserID:      item.UID,
			DisplayName: item.DisplayName,
			Email:       item.Email,
			PhotoURL:    item.PhotoURL,
			CreatedAt:   formatTime(item.CreatedAt),
		})
	}
	return out
}
