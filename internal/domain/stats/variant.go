package stats

// Payload is one of Offense, Kicking or Defense.
type Payload interface {
	isPayload()
}

type Offense struct {
	PassingYards   int
	PassingTDs     int
	Interceptions  int
	RushingYards   int
	RushingTDs     int
	Receptions     int
	ReceivingYards int
	ReceivingTDs   int
}

type Kicking struct {
	FG0To39  int
	FG40To49 int
	FG50Plus int
	FGMissed int
	XPMade   int
	XPMissed int
}

type Defense struct {
	PointsAllowed    int
	Sacks            int
	DefInterceptions int
	FumbleRecoveries int
	DefTDs           int
}

func (Offense) isPayload() {}
func (Kicking) isPayload() {}
func (Defense) isPayload() {}

// StatLine is the scoring view of a WeekLine. A nil payload means the line
// carries no activity for that category.
type StatLine struct {
	Offense *Offense
	Kicking *Kicking
	Defense *Defense
}

// Payloads returns the present payloads in scoring order.
func (s StatLine) Payloads() []Payload {
	out := make([]Payload, 0, 3)
	if s.Offense != nil {
		out = append(out, *s.Offense)
	}
	if s.Kicking != nil {
		out = append(out, *s.Kicking)
	}
	if s.Defense != nil {
		out = append(out, *s.Defense)
	}
	return out
}

func (l WeekLine) StatLine() StatLine {
	var out StatLine

	offense := Offense{
		PassingYards:   l.PassingYards,
		PassingTDs:     l.PassingTDs,
		Interceptions:  l.Interceptions,
		RushingYards:   l.RushingYards,
		RushingTDs:     l.RushingTDs,
		Receptions:     l.Receptions,
		ReceivingYards: l.ReceivingYards,
		ReceivingTDs:   l.ReceivingTDs,
	}
	if offense != (Offense{}) {
		out.Offense = &offense
	}

	kicking := Kicking{
		FG0To39:  l.FG0To39,
		FG40To49: l.FG40To49,
		FG50Plus: l.FG50Plus,
		FGMissed: l.FGMissed,
		XPMade:   l.XPMade,
		XPMissed: l.XPMissed,
	}
	if kicking != (Kicking{}) {
		out.Kicking = &kicking
	}

	defense := Defense{
		PointsAllowed:    l.PointsAllowed,
		Sacks:            l.Sacks,
		DefInterceptions: l.DefInterceptions,
		FumbleRecoveries: l.FumbleRecoveries,
		DefTDs:           l.DefTDs,
	}
	if defense != (Defense{}) {
		out.Defense = &defense
	}

	return out
}

// WeekLine flattens the variant back into stored counters.
func (s StatLine) WeekLine(weekName, playerID string) WeekLine {
	out := WeekLine{WeekName: weekName, PlayerID: playerID}
	if o := s.Offense; o != nil {
		out.PassingYards = o.PassingYards
		out.PassingTDs = o.PassingTDs
		out.Interceptions = o.Interceptions
		out.RushingYards = o.RushingYards
		out.RushingTDs = o.RushingTDs
		out.Receptions = o.Receptions
		out.ReceivingYards = o.ReceivingYards
		out.ReceivingTDs = o.ReceivingTDs
	}
	if k := s.Kicking; k != nil {
		out.FG0To39 = k.FG0To39
		out.FG40To49 = k.FG40To49
		out.FG50Plus = k.FG50Plus
		out.FGMissed = k.FGMissed
		out.XPMade = k.XPMade
		out.XPMissed = k.XPMissed
	}
	if d := s.Defense; d != nil {
		out.PointsAllowed = d.PointsAllowed
		out.Sacks = d.Sacks
		out.DefInterceptions = d.DefInterceptions
		out.FumbleRecoveries = d.FumbleRecoveries
		out.DefTDs = d.DefTDs
	}
	return out
}
