package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/domain/matching"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// RosterProvider supplies team rosters with injury designations.
type RosterProvider interface {
	FetchTeamRoster(ctx context.Context, team string) (ExternalTeamRoster, error)
}

type ExternalTeamRoster struct {
	Team        string
	DisplayName string
	Players     []ExternalPlayer
}

type ExternalPlayer struct {
	ExternalID   string
	Name         string
	Position     string
	ImageURL     string
	InjuryStatus string
}

type playoffTeamRecorder interface {
	AddTeams(ctx context.Context, week int, teams []string) error
}

type ListPlayersFilter struct {
	Position string
	Team     string
}

type UpdatePlayerInput struct {
	Name         *string
	Team         *string
	ImageURL     *string
	Rank         *int
	InjuryStatus *string
}

type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ImportReport struct {
	Week    int              `json:"week"`
	Rows    int              `json:"rows"`
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Teams   []string         `json:"teams"`
	Errors  []ImportRowError `json:"errors"`
}

type RosterSyncReport struct {
	Teams    int           `json:"teams"`
	Players  int           `json:"players"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Failures []TeamFailure `json:"failures,omitempty"`
}

type TeamFailure struct {
	Team  string `json:"team"`
	Error string `json:"error"`
}

type PlayerServiceConfig struct {
	SyncConcurrency int
}

type PlayerService struct {
	playerRepo player.Repository
	provider   RosterProvider
	teams      playoffTeamRecorder
	cfg        PlayerServiceConfig
	logger     *logging.Logger
}

func NewPlayerService(playerRepo player.Repository, provider RosterProvider, teams playoffTeamRecorder, cfg PlayerServiceConfig, logger *logging.Logger) *PlayerService {
	if cfg.SyncConcurrency <= 0 {
		cfg.SyncConcurrency = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerService{
		playerRepo: playerRepo,
		provider:   provider,
		teams:      teams,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *PlayerService) List(ctx context.Context, filter ListPlayersFilter) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.List")
	defer span.End()

	var position player.Position
	if raw := strings.TrimSpace(filter.Position); raw != "" {
		position = player.ParsePosition(raw)
		if position == "" {
			return nil, fmt.Errorf("%w: unknown position %q", ErrInvalidInput, raw)
		}
	}
	team := player.NormalizeTeam(filter.Team)

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	out := make([]player.Player, 0, len(players))
	for _, p := range players {
		if position != "" && p.Position != position {
			continue
		}
		if team != "" && p.Team != team {
			continue
		}
		out = append(out, p)
	}
	sortPlayersByRank(out)
	return out, nil
}

// Lookup resolves player ids into a map. Unknown ids are left out.
func (s *PlayerService) Lookup(ctx context.Context, playerIDs []string) (map[string]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Lookup")
	defer span.End()

	ids := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	out := make(map[string]player.Player, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get players by ids: %w", err)
	}
	for _, p := range players {
		out[p.ID] = p
	}
	return out, nil
}

// ImportCSV reads name,position,team,rank rows. The header row is skipped;
// bad rows are reported by line number and skipped. Every team seen is
// recorded as alive for the week.
func (s *PlayerService) ImportCSV(ctx context.Context, r io.Reader, week int) (ImportReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ImportCSV")
	defer span.End()

	if _, err := playoff.WeekName(week); err != nil {
		return ImportReport{}, fmt.Errorf("%w: week=%d", ErrInvalidInput, week)
	}

	existing, err := s.playerRepo.List(ctx)
	if err != nil {
		return ImportReport{}, fmt.Errorf("list players: %w", err)
	}
	byID := make(map[string]player.Player, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	report := ImportReport{Week: week, Errors: []ImportRowError{}}
	teams := make(map[string]struct{})
	upserts := make(map[string]player.Player)
	order := make([]string, 0)

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return ImportReport{}, fmt.Errorf("%w: read csv: %v", ErrInvalidInput, err)
		}
		if row == 1 {
			continue
		}
		if parseErr != nil {
			report.Errors = append(report.Errors, ImportRowError{Line: parseErr.Line, Message: parseErr.Err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		if isBlankRecord(record) {
			continue
		}
		report.Rows++

		parsed, err := parseImportRow(record)
		if err != nil {
			report.Errors = append(report.Errors, ImportRowError{Line: line, Message: err.Error()})
			continue
		}

		if id, ok := matching.Strict.MatchID(parsed.Name, parsed.Team, existing); ok {
			current := byID[id]
			current.Rank = parsed.Rank
			parsed = current
			report.Updated++
		} else {
			parsed.ID = player.SyntheticID(parsed.Name, parsed.Position)
			if _, seen := byID[parsed.ID]; seen {
				report.Updated++
			} else {
				report.Created++
			}
		}
		if _, seen := upserts[parsed.ID]; !seen {
			order = append(order, parsed.ID)
		}
		upserts[parsed.ID] = parsed
		byID[parsed.ID] = parsed
		teams[parsed.Team] = struct{}{}
	}

	batch := make([]player.Player, 0, len(order))
	for _, id := range order {
		batch = append(batch, upserts[id])
	}
	if err := s.playerRepo.UpsertMany(ctx, batch); err != nil {
		return ImportReport{}, fmt.Errorf("upsert imported players: %w", err)
	}

	report.Teams = sortedKeys(teams)
	if s.teams != nil && len(report.Teams) > 0 {
		if err := s.teams.AddTeams(ctx, week, report.Teams); err != nil {
			return report, fmt.Errorf("record playoff teams: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "player csv imported",
		"week", week,
		"rows", report.Rows,
		"created", report.Created,
		"updated", report.Updated,
		"errors", len(report.Errors),
	)
	return report, nil
}

func parseImportRow(record []string) (player.Player, error) {
	if len(record) < 4 {
		return player.Player{}, fmt.Errorf("expected 4 fields, got %d", len(record))
	}
	name := strings.TrimSpace(record[0])
	if name == "" {
		return player.Player{}, fmt.Errorf("name is required")
	}
	position := player.ParsePosition(record[1])
	if position == "" {
		return player.Player{}, fmt.Errorf("unknown position %q", strings.TrimSpace(record[1]))
	}
	team := player.NormalizeTeam(record[2])
	if !player.IsTeam(team) {
		return player.Player{}, fmt.Errorf("unknown team %q", strings.TrimSpace(record[2]))
	}
	rank, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil || rank < 0 {
		return player.Player{}, fmt.Errorf("invalid rank %q", strings.TrimSpace(record[3]))
	}
	return player.Player{Name: name, Position: position, Team: team, Rank: rank}, nil
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

type teamSyncResult struct {
	team   string
	roster ExternalTeamRoster
	err    error
}

// SyncRoster merges provider rosters into the player table. Existing players
// keep their ids when the strict matcher finds them; new ones get synthetic
// ids. An empty team list syncs all teams.
func (s *PlayerService) SyncRoster(ctx context.Context, teams []string) (RosterSyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.SyncRoster")
	defer span.End()

	if s.provider == nil {
		return RosterSyncReport{}, fmt.Errorf("%w: roster provider is not configured", ErrDependencyUnavailable)
	}
	codes, err := normalizeTeams(teams)
	if err != nil {
		return RosterSyncReport{}, err
	}
	if len(codes) == 0 {
		codes = append(codes, player.Teams...)
	}

	fetches := pool.NewWithResults[teamSyncResult]().WithMaxGoroutines(s.cfg.SyncConcurrency)
	for _, code := range codes {
		code := code
		fetches.Go(func() teamSyncResult {
			roster, err := s.provider.FetchTeamRoster(ctx, code)
			return teamSyncResult{team: code, roster: roster, err: err}
		})
	}
	results := fetches.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].team < results[j].team })

	existing, err := s.playerRepo.List(ctx)
	if err != nil {
		return RosterSyncReport{}, fmt.Errorf("list players: %w", err)
	}
	byID := make(map[string]player.Player, len(existing))
	for _, p := range existing {
		byID[p.ID] = p
	}

	report := RosterSyncReport{Teams: len(codes)}
	batch := make([]player.Player, 0)
	for _, result := range results {
		if result.err != nil {
			report.Failures = append(report.Failures, TeamFailure{Team: result.team, Error: result.err.Error()})
			s.logger.WarnContext(ctx, "team roster fetch failed", "team", result.team, "error", result.err)
			continue
		}
		for _, merged := range mergeTeamRoster(result.team, result.roster, existing, byID) {
			if _, ok := byID[merged.ID]; ok {
				report.Updated++
			} else {
				report.Created++
			}
			byID[merged.ID] = merged
			batch = append(batch, merged)
		}
	}
	if len(report.Failures) == len(codes) {
		return report, fmt.Errorf("%w: all %d roster fetches failed", ErrDependencyUnavailable, len(codes))
	}

	if err := s.playerRepo.UpsertMany(ctx, batch); err != nil {
		return report, fmt.Errorf("upsert synced players: %w", err)
	}
	report.Players = len(batch)

	s.logger.InfoContext(ctx, "player roster synced",
		"teams", report.Teams,
		"players", report.Players,
		"created", report.Created,
		"updated", report.Updated,
		"failed_teams", len(report.Failures),
	)
	return report, nil
}

func mergeTeamRoster(team string, roster ExternalTeamRoster, existing []player.Player, byID map[string]player.Player) []player.Player {
	out := make([]player.Player, 0, len(roster.Players)+1)
	seen := make(map[string]struct{})

	for _, ext := range roster.Players {
		position := player.ParsePosition(ext.Position)
		if position == "" || position == player.PositionDefense {
			continue
		}
		name := strings.TrimSpace(ext.Name)
		if name == "" {
			continue
		}

		item := player.Player{Name: name, Team: team, Position: position}
		if id, ok := matching.Strict.MatchID(name, team, existing); ok {
			item = byID[id]
		} else {
			item.ID = player.SyntheticID(name, position)
			if current, ok := byID[item.ID]; ok {
				item = current
				item.Team = team
			}
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}

		if ext.ImageURL != "" {
			item.ImageURL = ext.ImageURL
		}
		item.InjuryStatus = player.ParseInjuryStatus(ext.InjuryStatus)
		out = append(out, item)
	}

	out = append(out, teamDefense(team, roster.DisplayName, existing))
	return out
}

func teamDefense(team, displayName string, existing []player.Player) player.Player {
	for _, p := range existing {
		if p.Position == player.PositionDefense && p.Team == team {
			return p
		}
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = team + " Defense"
	}
	return player.Player{
		ID:       strings.ToLower(team) + "-dst",
		Name:     name,
		Team:     team,
		Position: player.PositionDefense,
	}
}

// Update applies admin corrections such as renames and image fixes.
func (s *PlayerService) Update(ctx context.Context, playerID string, input UpdatePlayerInput) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Update")
	defer span.End()

	current, err := s.get(ctx, playerID)
	if err != nil {
		return player.Player{}, err
	}

	if input.Name != nil {
		current.Name = strings.TrimSpace(*input.Name)
	}
	if input.Team != nil {
		current.Team = player.NormalizeTeam(*input.Team)
	}
	if input.ImageURL != nil {
		current.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.Rank != nil {
		current.Rank = *input.Rank
	}
	if input.InjuryStatus != nil {
		current.InjuryStatus = player.ParseInjuryStatus(*input.InjuryStatus)
	}
	if err := current.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.playerRepo.UpsertMany(ctx, []player.Player{current}); err != nil {
		return player.Player{}, fmt.Errorf("update player: %w", err)
	}
	s.logger.InfoContext(ctx, "player updated", "player_id", current.ID)
	return current, nil
}

// Delete removes a player record. Intended for duplicate cleanup only.
func (s *PlayerService) Delete(ctx context.Context, playerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Delete")
	defer span.End()

	current, err := s.get(ctx, playerID)
	if err != nil {
		return err
	}
	if err := s.playerRepo.Delete(ctx, current.ID); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	s.logger.InfoContext(ctx, "player deleted", "player_id", current.ID)
	return nil
}

func (s *PlayerService) get(ctx context.Context, playerID string) (player.Player, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	item, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	return item, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
