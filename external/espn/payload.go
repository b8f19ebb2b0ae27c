package espn

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// flexString accepts a JSON string, number or null. The provider flips
// between them for scores and stat values.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	switch {
	case text == "null" || text == "":
		*f = ""
	case text[0] == '"':
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(text)
	}
	return nil
}

func (f flexString) int() int {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil {
		return 0
	}
	return int(v)
}

type teamRef struct {
	ID           flexString `json:"id"`
	Abbreviation string     `json:"abbreviation"`
	DisplayName  string     `json:"displayName"`
}

type statusType struct {
	State     string `json:"state"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type competitor struct {
	HomeAway string     `json:"homeAway"`
	Score    flexString `json:"score"`
	Team     teamRef    `json:"team"`
}

type competition struct {
	ID     flexString `json:"id"`
	Date   string     `json:"date"`
	Status struct {
		Type statusType `json:"type"`
	} `json:"status"`
	Competitors []competitor `json:"competitors"`
}

type scoreboardEnvelope struct {
	Events []struct {
		ID     flexString `json:"id"`
		Date   string     `json:"date"`
		Status struct {
			Type statusType `json:"type"`
		} `json:"status"`
		Competitions []competition `json:"competitions"`
	} `json:"events"`
}

type summaryEnvelope struct {
	Header struct {
		ID           flexString    `json:"id"`
		Competitions []competition `json:"competitions"`
	} `json:"header"`
	Boxscore struct {
		Teams []struct {
			Team       teamRef `json:"team"`
			Statistics []struct {
				Name         string     `json:"name"`
				DisplayValue flexString `json:"displayValue"`
			} `json:"statistics"`
		} `json:"teams"`
		Players []struct {
			Team       teamRef `json:"team"`
			Statistics []struct {
				Name     string   `json:"name"`
				Keys     []string `json:"keys"`
				Athletes []struct {
					Athlete struct {
						ID          flexString `json:"id"`
						DisplayName string     `json:"displayName"`
						Position    struct {
							Abbreviation string `json:"abbreviation"`
						} `json:"position"`
					} `json:"athlete"`
					Stats []flexString `json:"stats"`
				} `json:"athletes"`
			} `json:"statistics"`
		} `json:"players"`
	} `json:"boxscore"`
	ScoringPlays []struct {
		Text string  `json:"text"`
		Team teamRef `json:"team"`
		Type struct {
			Abbreviation string `json:"abbreviation"`
			Text         string `json:"text"`
		} `json:"type"`
	} `json:"scoringPlays"`
}

type rosterAthlete struct {
	ID          flexString `json:"id"`
	DisplayName string     `json:"displayName"`
	FullName    string     `json:"fullName"`
	Position    struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
	Headshot struct {
		Href string `json:"href"`
	} `json:"headshot"`
	Injuries []struct {
		Status string `json:"status"`
	} `json:"injuries"`
}

type rosterEnvelope struct {
	Team     teamRef `json:"team"`
	Athletes []struct {
		Position string          `json:"position"`
		Items    []rosterAthlete `json:"items"`
	} `json:"athletes"`
}
