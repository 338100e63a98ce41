package teams

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

type fakeTeamRepo struct {
	teams     map[uuid.UUID]models.Team
	needs     map[uuid.UUID][]models.TeamNeed
	standings map[int][]models.TeamStanding
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:     make(map[uuid.UUID]models.Team),
		needs:     make(map[uuid.UUID][]models.TeamNeed),
		standings: make(map[int][]models.TeamStanding),
	}
}

func (f *fakeTeamRepo) CreateTeam(_ context.Context, team models.Team) error {
	for _, existing := range f.teams {
		if existing.Code == team.Code {
			return apperrors.Duplicate("team with code %s already exists", team.Code)
		}
	}
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) GetTeam(_ context.Context, id uuid.UUID) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, apperrors.NotFound("team %s not found", id)
	}
	return &team, nil
}

func (f *fakeTeamRepo) ListTeams(_ context.Context) ([]models.Team, error) {
	var out []models.Team
	for _, t := range f.teams {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTeamRepo) DeleteTeam(_ context.Context, id uuid.UUID) error {
	if _, ok := f.teams[id]; !ok {
		return apperrors.NotFound("team %s not found", id)
	}
	delete(f.teams, id)
	return nil
}

func (f *fakeTeamRepo) ReplaceTeamNeeds(_ context.Context, teamID uuid.UUID, needs []models.TeamNeed) error {
	f.needs[teamID] = needs
	return nil
}

func (f *fakeTeamRepo) GetTeamNeeds(_ context.Context, teamID uuid.UUID) ([]models.TeamNeed, error) {
	return f.needs[teamID], nil
}

func (f *fakeTeamRepo) UpsertStanding(_ context.Context, standing models.TeamStanding) error {
	year := standing.SeasonYear
	for i, s := range f.standings[year] {
		if s.TeamID == standing.TeamID {
			f.standings[year][i] = standing
			return nil
		}
	}
	f.standings[year] = append(f.standings[year], standing)
	return nil
}

func (f *fakeTeamRepo) TeamsByReverseStandings(_ context.Context, year int) ([]uuid.UUID, error) {
	standings := append([]models.TeamStanding(nil), f.standings[year]...)
	pct := func(s models.TeamStanding) float64 {
		games := s.Wins + s.Losses + s.Ties
		if games == 0 {
			return 0
		}
		return (float64(s.Wins) + 0.5*float64(s.Ties)) / float64(games)
	}
	sort.Slice(standings, func(i, j int) bool {
		if pct(standings[i]) != pct(standings[j]) {
			return pct(standings[i]) < pct(standings[j])
		}
		return standings[i].TeamID.String() < standings[j].TeamID.String()
	})
	out := make([]uuid.UUID, len(standings))
	for i, s := range standings {
		out[i] = s.TeamID
	}
	return out, nil
}

func TestCreateTeam(t *testing.T) {
	app := NewApp(newFakeTeamRepo())

	team, err := app.CreateTeam(context.Background(), models.Team{Name: "Columbus Stags", Code: "CLB"})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if team.ID == uuid.Nil {
		t.Fatal("CreateTeam did not assign an ID")
	}

	if _, err := app.CreateTeam(context.Background(), models.Team{Name: "Dup", Code: "CLB"}); !errors.Is(err, apperrors.ErrDuplicate) {
		t.Fatalf("duplicate code error = %v, want Duplicate", err)
	}
	if _, err := app.CreateTeam(context.Background(), models.Team{Code: "X"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("missing name error = %v, want Validation", err)
	}
	if _, err := app.CreateTeam(context.Background(), models.Team{Name: "No Code"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("missing code error = %v, want Validation", err)
	}
}

func TestSetTeamNeeds_Validation(t *testing.T) {
	app := NewApp(newFakeTeamRepo())
	teamID := uuid.New()

	tests := []struct {
		name  string
		needs []models.TeamNeed
	}{
		{"empty position", []models.TeamNeed{{Position: "", Priority: 1}}},
		{"priority too low", []models.TeamNeed{{Position: "QB", Priority: 0}}},
		{"priority too high", []models.TeamNeed{{Position: "QB", Priority: 11}}},
		{"duplicate position", []models.TeamNeed{
			{Position: "QB", Priority: 1},
			{Position: "QB", Priority: 2},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := app.SetTeamNeeds(context.Background(), teamID, tt.needs); !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("SetTeamNeeds error = %v, want Validation", err)
			}
		})
	}

	needs := []models.TeamNeed{
		{Position: "QB", Priority: 1},
		{Position: "OT", Priority: 3},
	}
	if err := app.SetTeamNeeds(context.Background(), teamID, needs); err != nil {
		t.Fatalf("SetTeamNeeds: %v", err)
	}
	got, err := app.GetTeamNeeds(context.Background(), teamID)
	if err != nil {
		t.Fatalf("GetTeamNeeds: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("stored %d needs, want 2", len(got))
	}
}

func TestRecordStanding_Validation(t *testing.T) {
	app := NewApp(newFakeTeamRepo())

	tests := []struct {
		name     string
		standing models.TeamStanding
	}{
		{"missing team", models.TeamStanding{SeasonYear: 2025, Wins: 8, Losses: 9}},
		{"year too early", models.TeamStanding{TeamID: uuid.New(), SeasonYear: 1900, Wins: 8, Losses: 9}},
		{"negative wins", models.TeamStanding{TeamID: uuid.New(), SeasonYear: 2025, Wins: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := app.RecordStanding(context.Background(), tt.standing); !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("RecordStanding error = %v, want Validation", err)
			}
		})
	}
}

func TestTeamsByReverseStandings_WorstFirst(t *testing.T) {
	app := NewApp(newFakeTeamRepo())

	worst, mid, best := uuid.New(), uuid.New(), uuid.New()
	records := []models.TeamStanding{
		{TeamID: best, SeasonYear: 2025, Wins: 14, Losses: 3},
		{TeamID: worst, SeasonYear: 2025, Wins: 2, Losses: 15},
		{TeamID: mid, SeasonYear: 2025, Wins: 8, Losses: 8, Ties: 1},
	}
	for _, r := range records {
		if err := app.RecordStanding(context.Background(), r); err != nil {
			t.Fatalf("RecordStanding: %v", err)
		}
	}

	got, err := app.TeamsByReverseStandings(context.Background(), 2025)
	if err != nil {
		t.Fatalf("TeamsByReverseStandings: %v", err)
	}
	want := []uuid.UUID{worst, mid, best}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d = %s, want %s", i, got[i], want[i])
		}
	}
}
