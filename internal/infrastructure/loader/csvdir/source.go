package csvdir

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/team"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/cache"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/logging"
	"github.com/riskibarqy/fantasy-forecast/internal/usecase"
)

const (
	teamsFile          = "teams.csv"
	playersFile        = "players.csv"
	fixturesFile       = "fixtures.csv"
	matchesFile        = "matches.csv"
	gameweekStatsFile  = "player_gameweek_stats.csv"
	legacyStatsFile    = "playerstats.csv"
	matchStatsFile     = "playermatchstats.csv"
	teamGameweekFile   = "team_gameweek_stats.csv"
	defaultMaxParallel = 4
)

var (
	teamColumns          = []string{"code", "id", "name", "strength", "elo"}
	playerColumns        = []string{"player_id", "team_code", "position"}
	fixtureColumns       = []string{"gameweek", "home_team", "away_team", "home_team_elo", "away_team_elo", "finished", "match_id"}
	gameweekStatRequired = []string{"id", "gw", "minutes", "event_points", "expected_goals", "expected_assists", "defensive_contribution"}
	matchStatColumns     = []string{"player_id", "match_id", "minutes_played"}
	teamStatRequired     = []string{"team_id", "goals", "expected_goals", "expected_goals_against", "clean_sheets", "shots"}
)

// Season holds every raw table of one season as read from disk.
type Season struct {
	Players     []player.Player
	Teams       []team.Team
	Fixtures    []fixture.Fixture
	Appearances []playerstats.Appearance
	TeamRecords []teamstats.GameweekRecord
}

// gameweekTables is what one GW<n> directory contributed.
type gameweekTables struct {
	gameweek      int
	teams         []team.Team
	players       []player.Player
	fixtures      []scheduledMatch
	matches       []scheduledMatch
	gameweekStats []playerstats.Appearance
	matchStats    []matchStatRow
	teamStats     []teamstats.GameweekRecord
	hasTeamStats  bool
}

// Source reads seasons laid out as <root>/<season>/By Gameweek/GW<n>/*.csv.
type Source struct {
	root        string
	logger      *logging.Logger
	seasons     *cache.Store[Season]
	maxParallel int
}

type Option func(*Source)

func WithMaxParallel(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.maxParallel = n
		}
	}
}

// WithCacheTTL bounds how long a parsed season is reused. Zero keeps it for
// the life of the source.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Source) {
		s.seasons = cache.NewStore[Season](ttl)
	}
}

func NewSource(root string, logger *logging.Logger, opts ...Option) *Source {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Source{
		root:        root,
		logger:      logger,
		seasons:     cache.NewStore[Season](0),
		maxParallel: defaultMaxParallel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadSeason parses the season once and serves later calls from memory.
func (s *Source) LoadSeason(ctx context.Context, season string) (Season, error) {
	return s.seasons.GetOrLoad(ctx, season, func(ctx context.Context) (Season, error) {
		return s.readSeason(ctx, season)
	})
}

func (s *Source) readSeason(ctx context.Context, season string) (Season, error) {
	started := time.Now()
	dirs, err := listGameweekDirs(filepath.Join(s.root, season))
	if err != nil {
		return Season{}, fmt.Errorf("list gameweeks of season %s: %w", season, err)
	}

	results := make([]gameweekTables, len(dirs))
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(min(s.maxParallel, max(len(dirs), 1)))
	for i, dir := range dirs {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tables, err := readGameweekDir(dir)
			if err != nil {
				return err
			}
			results[i] = tables
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return Season{}, err
	}

	out, err := mergeGameweeks(results)
	if err != nil {
		return Season{}, err
	}
	s.logger.InfoContext(ctx, "csv season loaded",
		"season", season,
		"gameweek_dirs", len(dirs),
		"players", len(out.Players),
		"fixtures", len(out.Fixtures),
		"appearances", len(out.Appearances),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return out, nil
}

func readGameweekDir(dir gameweekDir) (gameweekTables, error) {
	out := gameweekTables{gameweek: dir.gameweek}
	path := func(name string) string { return filepath.Join(dir.path, name) }

	t, err := readTable(path(teamsFile), "teams", dir.gameweek, teamColumns)
	if err != nil {
		return out, err
	}
	if t != nil {
		if out.teams, err = parseTeams(t); err != nil {
			return out, err
		}
	}

	if t, err = readTable(path(playersFile), "players", dir.gameweek, playerColumns); err != nil {
		return out, err
	}
	if t != nil {
		if out.players, err = parsePlayers(t); err != nil {
			return out, err
		}
	}

	if t, err = readTable(path(fixturesFile), "fixtures", dir.gameweek, fixtureColumns); err != nil {
		return out, err
	}
	if t != nil {
		if out.fixtures, err = parseFixtures(t); err != nil {
			return out, err
		}
	}
	if t, err = readTable(path(matchesFile), "matches", dir.gameweek, fixtureColumns); err != nil {
		return out, err
	}
	if t != nil {
		if out.matches, err = parseFixtures(t); err != nil {
			return out, err
		}
	}

	t, err = readTable(path(gameweekStatsFile), "player_gameweek_stats", dir.gameweek, gameweekStatRequired)
	if err != nil {
		return out, err
	}
	if t == nil {
		if t, err = readTable(path(legacyStatsFile), "playerstats", dir.gameweek, gameweekStatRequired); err != nil {
			return out, err
		}
	}
	if t != nil {
		if out.gameweekStats, err = parseGameweekStats(t); err != nil {
			return out, err
		}
	}

	if t, err = readTable(path(matchStatsFile), "playermatchstats", dir.gameweek, matchStatColumns); err != nil {
		return out, err
	}
	if t != nil {
		if out.matchStats, err = parseMatchStats(t); err != nil {
			return out, err
		}
	}

	if t, err = readTable(path(teamGameweekFile), "team_gameweek_stats", dir.gameweek, teamStatRequired); err != nil {
		return out, err
	}
	if t != nil {
		out.hasTeamStats = true
		if out.teamStats, err = parseTeamStats(t); err != nil {
			return out, err
		}
	}
	return out, nil
}

type appearanceKey struct {
	playerID string
	gameweek int
}

// mergeGameweeks folds per-directory tables in gameweek order. Later
// directories win on duplicate keys, and matches.csv wins over fixtures.csv
// within one directory.
func mergeGameweeks(dirs []gameweekTables) (Season, error) {
	var out Season

	fixtures := make(map[string]scheduledMatch)
	stats := make(map[appearanceKey]playerstats.Appearance)
	teamRecords := make(map[appearanceKey]teamstats.GameweekRecord)
	var matchRows []matchStatRow
	hasTeamStats := false

	for _, dir := range dirs {
		out.Teams = append(out.Teams, dir.teams...)
		out.Players = append(out.Players, dir.players...)
		for _, f := range dir.fixtures {
			fixtures[f.MatchID] = f
		}
		for _, f := range dir.matches {
			fixtures[f.MatchID] = f
		}
		for _, a := range dir.gameweekStats {
			stats[appearanceKey{playerID: a.PlayerID, gameweek: a.Gameweek}] = a
		}
		matchRows = append(matchRows, dir.matchStats...)
		if dir.hasTeamStats {
			hasTeamStats = true
		}
		for _, r := range dir.teamStats {
			teamRecords[appearanceKey{playerID: r.TeamID, gameweek: r.Gameweek}] = r
		}
	}

	out.Fixtures = make([]fixture.Fixture, 0, len(fixtures))
	for _, f := range fixtures {
		out.Fixtures = append(out.Fixtures, f.Fixture)
	}
	sort.Slice(out.Fixtures, func(i, j int) bool {
		if out.Fixtures[i].Gameweek != out.Fixtures[j].Gameweek {
			return out.Fixtures[i].Gameweek < out.Fixtures[j].Gameweek
		}
		return out.Fixtures[i].MatchID < out.Fixtures[j].MatchID
	})

	appearances, err := mergeAppearances(stats, matchRows, fixtures)
	if err != nil {
		return Season{}, err
	}
	out.Appearances = appearances

	if hasTeamStats {
		out.TeamRecords = make([]teamstats.GameweekRecord, 0, len(teamRecords))
		for _, r := range teamRecords {
			out.TeamRecords = append(out.TeamRecords, r)
		}
	} else {
		out.TeamRecords = deriveTeamRecords(fixtures)
	}
	fillTeamRatings(out.TeamRecords, out.Teams)
	teamstats.SortByTeamAndGameweek(out.TeamRecords)

	return out, nil
}

// mergeAppearances emits one appearance per match-level row where the
// player's gameweek has them, keeping the gameweek row for the remaining
// stats with its minutes zeroed so they are not counted twice.
func mergeAppearances(stats map[appearanceKey]playerstats.Appearance, matchRows []matchStatRow, fixtures map[string]scheduledMatch) ([]playerstats.Appearance, error) {
	out := make([]playerstats.Appearance, 0, len(stats)+len(matchRows))
	withMatches := make(map[appearanceKey]bool)

	for _, row := range matchRows {
		f, ok := fixtures[row.MatchID]
		if !ok {
			return nil, &usecase.SchemaError{Table: "playermatchstats", Field: "match_id", Key: row.PlayerID, Reason: "unknown match " + row.MatchID}
		}
		key := appearanceKey{playerID: row.PlayerID, gameweek: f.Gameweek}
		withMatches[key] = true
		out = append(out, playerstats.Appearance{
			PlayerID:     row.PlayerID,
			MatchID:      row.MatchID,
			Gameweek:     f.Gameweek,
			Minutes:      row.Minutes,
			StartMinute:  row.StartMinute,
			FinishMinute: row.FinishMinute,
		})
	}

	for key, a := range stats {
		if withMatches[key] {
			a.Minutes = 0
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		if out[i].Gameweek != out[j].Gameweek {
			return out[i].Gameweek < out[j].Gameweek
		}
		return out[i].MatchID < out[j].MatchID
	})
	return out, nil
}

// deriveTeamRecords builds goals and clean sheets from finished fixture
// scores when no team stats file exists.
func deriveTeamRecords(fixtures map[string]scheduledMatch) []teamstats.GameweekRecord {
	byKey := make(map[appearanceKey]*teamstats.GameweekRecord)
	add := func(teamID string, gw int, scored, conceded int) {
		key := appearanceKey{playerID: teamID, gameweek: gw}
		rec, ok := byKey[key]
		if !ok {
			rec = &teamstats.GameweekRecord{TeamID: teamID, Gameweek: gw}
			byKey[key] = rec
		}
		rec.Goals += float64(scored)
		if conceded == 0 {
			rec.CleanSheets++
		}
	}

	for _, f := range fixtures {
		if !f.Finished || f.HomeScore == nil || f.AwayScore == nil {
			continue
		}
		add(f.HomeTeamID, f.Gameweek, *f.HomeScore, *f.AwayScore)
		add(f.AwayTeamID, f.Gameweek, *f.AwayScore, *f.HomeScore)
	}

	out := make([]teamstats.GameweekRecord, 0, len(byKey))
	for _, rec := range byKey {
		out = append(out, *rec)
	}
	return out
}

// fillTeamRatings copies the strength and elo known at each record's
// gameweek from the versioned team rows.
func fillTeamRatings(records []teamstats.GameweekRecord, teams []team.Team) {
	byID := make(map[string][]team.Team)
	for _, t := range teams {
		byID[t.ID] = append(byID[t.ID], t)
	}
	for id := range byID {
		rows := byID[id]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Gameweek < rows[j].Gameweek })
	}

	for i := range records {
		rows := byID[records[i].TeamID]
		for _, row := range rows {
			if row.Gameweek > records[i].Gameweek {
				break
			}
			records[i].Strength = row.Strength
			records[i].Elo = row.Elo
		}
	}
}
