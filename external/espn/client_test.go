package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/boxscore"
	"github.com/riskibarqy/playoff-pool/internal/platform/resilience"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardFixture = `{
  "events": [
    {
      "id": "401772988",
      "date": "2026-02-08T23:30Z",
      "status": {"type": {"state": "pre"}},
      "competitions": [{
        "status": {"type": {"state": "in"}},
        "competitors": [
          {"homeAway": "home", "score": "14", "team": {"abbreviation": "SEA"}},
          {"homeAway": "away", "score": 10, "team": {"abbreviation": "WAS"}}
        ]
      }]
    },
    {"id": "", "date": "2026-02-08T20:00Z"}
  ]
}`

const summaryFixture = `{
  "header": {
    "id": "401772988",
    "competitions": [{
      "status": {"type": {"state": "post"}},
      "competitors": [
        {"homeAway": "home", "score": "27", "team": {"abbreviation": "SEA"}},
        {"homeAway": "away", "score": "3", "team": {"abbreviation": "NE"}}
      ]
    }]
  },
  "boxscore": {
    "teams": [
      {"team": {"abbreviation": "SEA"}, "statistics": [{"name": "fumblesLost", "displayValue": "1"}]}
    ],
    "players": [
      {
        "team": {"abbreviation": "SEA"},
        "statistics": [{
          "name": "passing",
          "keys": ["completions/passingAttempts", "passingYards", "passingTouchdowns", "interceptions"],
          "athletes": [{
            "athlete": {"id": 4430737, "displayName": "Sam Darnold", "position": {"abbreviation": "qb"}},
            "stats": ["21/30", "250", "2", 0]
          }]
        }]
      }
    ]
  },
  "scoringPlays": [
    {"text": "Kenneth Walker 5 Yd Run", "team": {"abbreviation": "SEA"}, "type": {"text": "Rushing Touchdown"}}
  ]
}`

const rosterFixture = `{
  "team": {"abbreviation": "KC", "displayName": "Kansas City Chiefs"},
  "athletes": [
    {"position": "offense", "items": [
      {"id": "3139477", "displayName": "Patrick Mahomes", "position": {"abbreviation": "QB"},
       "headshot": {"href": "https://a.espncdn.com/i/headshots/nfl/players/full/3139477.png"},
       "injuries": [{"status": "Questionable"}]},
      {"id": "", "displayName": "Missing Id"}
    ]}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:        server.URL,
		Timeout:        2 * time.Second,
		Season:         2025,
		CircuitBreaker: breaker,
		Retry:          resilience.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	})
}

func TestClient_ListGamesMapsPostseasonWeek(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scoreboard", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(scoreboardFixture))
	}, resilience.CircuitBreakerConfig{})

	games, err := client.ListGames(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, "seasontype=3&week=5&dates=2025", gotQuery)
	require.Len(t, games, 1)
	assert.Equal(t, "401772988", games[0].ID)
	assert.Equal(t, boxscore.StatusIn, games[0].Status)
	assert.Equal(t, "SEA", games[0].HomeTeam)
	assert.Equal(t, "WSH", games[0].AwayTeam)
	assert.Equal(t, time.Date(2026, 2, 8, 23, 30, 0, 0, time.UTC), games[0].StartsAt)
}

func TestClient_ListGamesRejectsUnknownWeek(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL)
	}, resilience.CircuitBreakerConfig{})

	_, err := client.ListGames(context.Background(), 7)
	assert.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestClient_FetchBoxScore(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summary", r.URL.Path)
		assert.Equal(t, "401772988", r.URL.Query().Get("event"))
		_, _ = w.Write([]byte(summaryFixture))
	}, resilience.CircuitBreakerConfig{})

	box, err := client.FetchBoxScore(context.Background(), "401772988")
	require.NoError(t, err)

	assert.Equal(t, boxscore.StatusPost, box.Status)
	require.Len(t, box.Teams, 2)

	sea := box.Teams[0]
	assert.Equal(t, "SEA", sea.Team)
	assert.Equal(t, 27, sea.Score)
	assert.Equal(t, []boxscore.TeamStat{{Name: "fumblesLost", Value: "1"}}, sea.Stats)
	require.Len(t, sea.Categories, 1)
	passing := sea.Categories[0]
	assert.Equal(t, "passing", passing.Name)
	require.Len(t, passing.Athletes, 1)
	assert.Equal(t, boxscore.AthleteLine{
		ID:       "4430737",
		Name:     "Sam Darnold",
		Position: "QB",
		Values:   []string{"21/30", "250", "2", "0"},
	}, passing.Athletes[0])

	assert.Equal(t, "NE", box.Teams[1].Team)
	assert.Equal(t, 3, box.Teams[1].Score)

	require.Len(t, box.ScoringPlays, 1)
	assert.Equal(t, boxscore.ScoringPlay{Team: "SEA", Type: "Rushing Touchdown", Text: "Kenneth Walker 5 Yd Run"}, box.ScoringPlays[0])
}

func TestClient_FetchTeamRoster(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams/kc/roster", r.URL.Path)
		_, _ = w.Write([]byte(rosterFixture))
	}, resilience.CircuitBreakerConfig{})

	roster, err := client.FetchTeamRoster(context.Background(), "kc")
	require.NoError(t, err)

	assert.Equal(t, "KC", roster.Team)
	assert.Equal(t, "Kansas City Chiefs", roster.DisplayName)
	require.Len(t, roster.Players, 1)
	assert.Equal(t, usecase.ExternalPlayer{
		ExternalID:   "3139477",
		Name:         "Patrick Mahomes",
		Position:     "QB",
		ImageURL:     "https://a.espncdn.com/i/headshots/nfl/players/full/3139477.png",
		InjuryStatus: "Questionable",
	}, roster.Players[0])
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(rosterFixture))
	}, resilience.CircuitBreakerConfig{})

	roster, err := client.FetchTeamRoster(context.Background(), "KC")
	require.NoError(t, err)
	assert.Len(t, roster.Players, 1)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, resilience.CircuitBreakerConfig{})

	_, err := client.FetchBoxScore(context.Background(), "missing")
	assert.ErrorIs(t, err, usecase.ErrNotFound)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_BreakerOpensAfterTransientFailures(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute})

	_, err := client.FetchBoxScore(context.Background(), "401772988")
	assert.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, resilience.CircuitStateOpen, client.breaker.State())

	_, err = client.FetchBoxScore(context.Background(), "401772988")
	assert.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	assert.Equal(t, int32(3), hits.Load())
}
