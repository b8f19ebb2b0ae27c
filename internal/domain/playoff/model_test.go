package playoff

import (
	"errors"
	"testing"
	"time"
)

func TestWeekTable(t *testing.T) {
	want := map[int]string{1: "wildcard", 2: "divisional", 3: "championship", 4: "superbowl"}
	for number, name := range want {
		got, err := WeekName(number)
		if err != nil || got != name {
			t.Fatalf("WeekName(%d): got=%q err=%v", number, got, err)
		}
		back, err := WeekNumber(name)
		if err != nil || back != number {
			t.Fatalf("WeekNumber(%q): got=%d err=%v", name, back, err)
		}
	}
	if _, err := WeekName(5); !errors.Is(err, ErrUnknownWeek) {
		t.Fatalf("expected ErrUnknownWeek, got %v", err)
	}
	if _, err := WeekNumber("preseason"); !errors.Is(err, ErrUnknownWeek) {
		t.Fatalf("expected ErrUnknownWeek, got %v", err)
	}
}

func TestResolveCurrentWeek(t *testing.T) {
	now := time.Date(2027, 1, 20, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	configs := []Config{
		{WeekName: WeekWildcard, Deadline: &past},
		{WeekName: WeekDivisional, Deadline: &future},
	}

	if got := ResolveCurrentWeek(Settings{}, configs, now); got != 2 {
		t.Fatalf("expected divisional, got %d", got)
	}
	if got := ResolveCurrentWeek(Settings{CurrentWeekOverride: 3}, configs, now); got != 3 {
		t.Fatalf("expected override, got %d", got)
	}
	if got := ResolveCurrentWeek(Settings{CurrentWeekOverride: 9}, configs, now); got != 2 {
		t.Fatalf("invalid override should be ignored, got %d", got)
	}

	allPast := []Config{
		{WeekName: WeekWildcard, Deadline: &past},
		{WeekName: WeekDivisional, Deadline: &past},
		{WeekName: WeekChampionship, Deadline: &past},
		{WeekName: WeekSuperBowl, Deadline: &past},
	}
	if got := ResolveCurrentWeek(Settings{}, allPast, now); got != 4 {
		t.Fatalf("expected last week, got %d", got)
	}
}

func TestConfigDeadlinePassed(t *testing.T) {
	now := time.Date(2027, 1, 20, 12, 0, 0, 0, time.UTC)
	if (Config{}).DeadlinePassed(now) {
		t.Fatalf("config without deadline should never pass")
	}
	if !(Config{Deadline: &now}).DeadlinePassed(now) {
		t.Fatalf("deadline equal to now should count as passed")
	}
}
