package usecase

import (
	"sort"
	"strings"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/leakage"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/team"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
)

// Tables are the materialized source tables of one season.
type Tables struct {
	Players     []player.Player
	Teams       []team.Team
	Fixtures    []fixture.Fixture
	Appearances []playerstats.Appearance
	TeamRecords []teamstats.GameweekRecord
}

// ScheduledMatch is one fixture seen from a single team's side.
type ScheduledMatch struct {
	MatchID     string
	Gameweek    int
	TeamID      string
	OpponentID  string
	Home        bool
	TeamElo     float64
	OpponentElo float64
	Finished    bool
}

// Keyspace is the resolved, read-only view shared by every worker of a run.
type Keyspace struct {
	maxFinishedGW int

	playerRows    map[string][]player.Player
	teamIDByCode  map[string]string
	teamRows      map[string][]team.Team
	schedule      map[string][]ScheduledMatch
	playerRecords map[string][]playerstats.GameweekRecord
	teamRecords   map[string][]teamstats.GameweekRecord

	playerIDs []string
	teamIDs   []string
}

type EntityResolver struct {
	rules playerstats.SubstitutionRules
}

func NewEntityResolver(rules playerstats.SubstitutionRules) *EntityResolver {
	return &EntityResolver{rules: rules}
}

// Resolve builds the keyspace. Realized records beyond maxFinishedGW are
// dropped here so no downstream component can see them.
func (r *EntityResolver) Resolve(tables Tables, maxFinishedGW int) (*Keyspace, error) {
	ks := &Keyspace{
		maxFinishedGW: maxFinishedGW,
		playerRows:    make(map[string][]player.Player),
		teamIDByCode:  make(map[string]string),
		teamRows:      make(map[string][]team.Team),
		schedule:      make(map[string][]ScheduledMatch),
		playerRecords: make(map[string][]playerstats.GameweekRecord),
		teamRecords:   make(map[string][]teamstats.GameweekRecord),
	}

	if err := ks.resolveTeams(tables.Teams); err != nil {
		return nil, err
	}
	if err := ks.resolvePlayers(tables.Players); err != nil {
		return nil, err
	}
	if err := ks.resolveFixtures(tables.Fixtures); err != nil {
		return nil, err
	}
	if err := ks.resolvePlayerRecords(tables.Appearances, r.rules); err != nil {
		return nil, err
	}
	if err := ks.resolveTeamRecords(tables.TeamRecords); err != nil {
		return nil, err
	}

	return ks, nil
}

func (k *Keyspace) resolveTeams(items []team.Team) error {
	for _, item := range items {
		code := strings.TrimSpace(item.Code)
		id := strings.TrimSpace(item.ID)
		if code == "" {
			return newSchemaError("teams", "code", item.ID, "missing team code")
		}
		if id == "" {
			return newSchemaError("teams", "id", code, "missing team id")
		}
		if existing, ok := k.teamIDByCode[code]; ok && existing != id {
			return newSchemaError("teams", "id", code, "team code maps to more than one id")
		}
		k.teamIDByCode[code] = id
		item.ID = id
		k.teamRows[id] = append(k.teamRows[id], item)
	}

	for id, rows := range k.teamRows {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Gameweek < rows[j].Gameweek })
		k.teamIDs = append(k.teamIDs, id)
	}
	sort.Strings(k.teamIDs)
	return nil
}

func (k *Keyspace) resolvePlayers(items []player.Player) error {
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return newSchemaError("players", "player_id", item.Name, "missing player id")
		}
		if strings.TrimSpace(item.TeamCode) == "" {
			return newSchemaError("players", "team_code", item.ID, "missing team code")
		}
		if _, ok := k.teamIDByCode[strings.TrimSpace(item.TeamCode)]; !ok {
			return newSchemaError("players", "team_code", item.ID, "no team row for team code "+item.TeamCode)
		}
		k.playerRows[item.ID] = append(k.playerRows[item.ID], item)
	}

	for id, rows := range k.playerRows {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Gameweek < rows[j].Gameweek })
		k.playerIDs = append(k.playerIDs, id)
	}
	sort.Strings(k.playerIDs)
	return nil
}

func (k *Keyspace) resolveFixtures(items []fixture.Fixture) error {
	for _, item := range items {
		if strings.TrimSpace(item.MatchID) == "" {
			return newSchemaError("fixtures", "match_id", "", "missing match id")
		}
		if _, ok := k.teamRows[item.HomeTeamID]; !ok {
			return newSchemaError("fixtures", "home_team_id", item.MatchID, "unknown team id "+item.HomeTeamID)
		}
		if _, ok := k.teamRows[item.AwayTeamID]; !ok {
			return newSchemaError("fixtures", "away_team_id", item.MatchID, "unknown team id "+item.AwayTeamID)
		}

		k.schedule[item.HomeTeamID] = append(k.schedule[item.HomeTeamID], ScheduledMatch{
			MatchID:     item.MatchID,
			Gameweek:    item.Gameweek,
			TeamID:      item.HomeTeamID,
			OpponentID:  item.AwayTeamID,
			Home:        true,
			TeamElo:     item.HomeElo,
			OpponentElo: item.AwayElo,
			Finished:    item.Finished,
		})
		k.schedule[item.AwayTeamID] = append(k.schedule[item.AwayTeamID], ScheduledMatch{
			MatchID:     item.MatchID,
			Gameweek:    item.Gameweek,
			TeamID:      item.AwayTeamID,
			OpponentID:  item.HomeTeamID,
			Home:        false,
			TeamElo:     item.AwayElo,
			OpponentElo: item.HomeElo,
			Finished:    item.Finished,
		})
	}

	for _, matches := range k.schedule {
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].Gameweek != matches[j].Gameweek {
				return matches[i].Gameweek < matches[j].Gameweek
			}
			return matches[i].MatchID < matches[j].MatchID
		})
	}
	return nil
}

func (k *Keyspace) resolvePlayerRecords(items []playerstats.Appearance, rules playerstats.SubstitutionRules) error {
	kept := make([]playerstats.Appearance, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.PlayerID) == "" {
			return newSchemaError("player_gameweeks", "player_id", item.MatchID, "missing player id")
		}
		if _, ok := k.playerRows[item.PlayerID]; !ok {
			return newSchemaError("player_gameweeks", "player_id", item.PlayerID, "player missing from player mapping")
		}
		if item.Gameweek > k.maxFinishedGW {
			continue
		}
		kept = append(kept, item)
	}

	for _, rec := range playerstats.Collapse(kept, rules) {
		k.playerRecords[rec.PlayerID] = append(k.playerRecords[rec.PlayerID], rec)
	}
	return nil
}

func (k *Keyspace) resolveTeamRecords(items []teamstats.GameweekRecord) error {
	seen := make(map[string]map[int]struct{})
	kept := make([]teamstats.GameweekRecord, 0, len(items))
	for _, item := range items {
		if _, ok := k.teamRows[item.TeamID]; !ok {
			return newSchemaError("team_gameweeks", "team_id", item.TeamID, "unknown team id")
		}
		if item.Gameweek > k.maxFinishedGW {
			continue
		}
		if seen[item.TeamID] == nil {
			seen[item.TeamID] = make(map[int]struct{})
		}
		if _, dup := seen[item.TeamID][item.Gameweek]; dup {
			return newSchemaError("team_gameweeks", "gameweek", item.TeamID, "duplicate team gameweek row")
		}
		seen[item.TeamID][item.Gameweek] = struct{}{}
		kept = append(kept, item)
	}

	teamstats.SortByTeamAndGameweek(kept)
	for _, rec := range kept {
		k.teamRecords[rec.TeamID] = append(k.teamRecords[rec.TeamID], rec)
	}
	return nil
}

func (k *Keyspace) MaxFinishedGW() int {
	return k.maxFinishedGW
}

// PlayerIDs are every player in the mapping, sorted.
func (k *Keyspace) PlayerIDs() []string {
	return k.playerIDs
}

func (k *Keyspace) TeamIDs() []string {
	return k.teamIDs
}

// PlayerAt returns the mapping row valid at gw: the latest row starting at
// or before gw, else the earliest row.
func (k *Keyspace) PlayerAt(playerID string, gw int) (player.Player, bool) {
	rows := k.playerRows[playerID]
	if len(rows) == 0 {
		return player.Player{}, false
	}
	idx := sort.Search(len(rows), func(i int) bool { return rows[i].Gameweek > gw }) - 1
	if idx < 0 {
		idx = 0
	}
	return rows[idx], true
}

// TeamAt resolves the team a player belongs to at gw.
func (k *Keyspace) TeamAt(playerID string, gw int) (string, bool) {
	row, ok := k.PlayerAt(playerID, gw)
	if !ok {
		return "", false
	}
	id, ok := k.teamIDByCode[strings.TrimSpace(row.TeamCode)]
	return id, ok
}

// RatingBefore returns strength and elo as known before cutoff: the latest
// team row dated before it, else the season-start row. A row dated at the
// cutoff is realized data of that gameweek and is never read.
func (k *Keyspace) RatingBefore(teamID string, cutoff int) (team.Rating, bool, error) {
	rows := k.teamRows[teamID]
	if len(rows) == 0 {
		return team.Rating{}, false, nil
	}
	idx := sort.Search(len(rows), func(i int) bool { return rows[i].Gameweek >= cutoff }) - 1
	if idx < 0 {
		idx = 0
	} else if err := leakage.CheckHistory("team:"+teamID, cutoff, rows[idx].Gameweek); err != nil {
		return team.Rating{}, false, err
	}
	return team.Rating{TeamID: teamID, Strength: rows[idx].Strength, Elo: rows[idx].Elo, Gameweek: rows[idx].Gameweek}, true, nil
}

// Opponents lists the team's fixtures in gw; a double gameweek yields two.
func (k *Keyspace) Opponents(teamID string, gw int) []ScheduledMatch {
	out := make([]ScheduledMatch, 0, 2)
	for _, m := range k.schedule[teamID] {
		if m.Gameweek == gw {
			out = append(out, m)
		}
	}
	return out
}

// Schedule is every fixture of the team ordered by gameweek then match id.
func (k *Keyspace) Schedule(teamID string) []ScheduledMatch {
	return k.schedule[teamID]
}

// PlayerRecords are the player's collapsed gameweek records, ascending.
func (k *Keyspace) PlayerRecords(playerID string) []playerstats.GameweekRecord {
	return k.playerRecords[playerID]
}

func (k *Keyspace) TeamRecords(teamID string) []teamstats.GameweekRecord {
	return k.teamRecords[teamID]
}
