package playoff

import (
	"errors"
	"slices"
	"strings"
	"time"
)

var ErrUnknownWeek = errors.New("unknown playoff week")

const (
	WeekWildcard     = "wildcard"
	WeekDivisional   = "divisional"
	WeekChampionship = "championship"
	WeekSuperBowl    = "superbowl"
)

type Week struct {
	Number int
	Name   string
}

// Weeks is the fixed round table, in play order.
var Weeks = []Week{
	{Number: 1, Name: WeekWildcard},
	{Number: 2, Name: WeekDivisional},
	{Number: 3, Name: WeekChampionship},
	{Number: 4, Name: WeekSuperBowl},
}

func WeekName(number int) (string, error) {
	for _, week := range Weeks {
		if week.Number == number {
			return week.Name, nil
		}
	}
	return "", ErrUnknownWeek
}

func WeekNumber(name string) (int, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, week := range Weeks {
		if week.Name == name {
			return week.Number, nil
		}
	}
	return 0, ErrUnknownWeek
}

// Config holds the teams still alive entering a week and its lock deadline.
type Config struct {
	WeekName  string
	Teams     []string
	Deadline  *time.Time
	UpdatedAt time.Time
}

func (c Config) HasTeam(code string) bool {
	return slices.Contains(c.Teams, code)
}

// DeadlinePassed reports whether rosters for the week are display-locked.
func (c Config) DeadlinePassed(now time.Time) bool {
	return c.Deadline != nil && !now.Before(*c.Deadline)
}

// Settings are pool-wide switches edited by admins.
type Settings struct {
	CurrentWeekOverride int
	UpdatedAt           time.Time
}

// ResolveCurrentWeek returns the override when set, otherwise the first week
// whose deadline has not passed, otherwise the last week.
func ResolveCurrentWeek(settings Settings, configs []Config, now time.Time) int {
	if _, err := WeekName(settings.CurrentWeekOverride); err == nil {
		return settings.CurrentWeekOverride
	}

	byName := make(map[string]Config, len(configs))
	for _, cfg := range configs {
		byName[cfg.WeekName] = cfg
	}
	for _, week := range Weeks {
		cfg, ok := byName[week.Name]
		if !ok || !cfg.DeadlinePassed(now) {
			return week.Number
		}
	}
	return Weeks[len(Weeks)-1].Number
}
