package pick

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/draft/order"
	"github.com/gridironlabs/draftsim/internal/models"
)

// fakeStore backs the pick App in tests with the repository's guard
// semantics: MakePick wins only while the slot is unfilled and the player
// undrafted in the same draft.
type fakeStore struct {
	mu      sync.Mutex
	picks   map[uuid.UUID]*models.DraftPick
	drafts  map[uuid.UUID]*models.Draft
	players map[uuid.UUID]*models.Player
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		picks:   make(map[uuid.UUID]*models.DraftPick),
		drafts:  make(map[uuid.UUID]*models.Draft),
		players: make(map[uuid.UUID]*models.Player),
	}
}

func (f *fakeStore) CreateDraftPicksBatch(_ context.Context, picks []models.DraftPick) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range picks {
		out := p
		f.picks[p.ID] = &out
	}
	return nil
}

func (f *fakeStore) GetDraftPick(_ context.Context, id uuid.UUID) (*models.DraftPick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.picks[id]
	if !ok {
		return nil, apperrors.NotFound("draft pick %s not found", id)
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) GetDraftPicksByDraft(_ context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DraftPick
	for _, p := range f.picks {
		if p.DraftID == draftID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OverallPick < out[j].OverallPick })
	return out, nil
}

func (f *fakeStore) GetDraftPicksByRound(_ context.Context, draftID uuid.UUID, round int) ([]models.DraftPick, error) {
	all, _ := f.GetDraftPicksByDraft(context.Background(), draftID)
	var out []models.DraftPick
	for _, p := range all {
		if p.Round == round {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) FindNextPick(_ context.Context, draftID uuid.UUID) (*models.DraftPick, error) {
	avail, _ := f.FindAvailablePicks(context.Background(), draftID)
	if len(avail) == 0 {
		return nil, nil
	}
	return &avail[0], nil
}

func (f *fakeStore) FindAvailablePicks(_ context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	all, _ := f.GetDraftPicksByDraft(context.Background(), draftID)
	var out []models.DraftPick
	for _, p := range all {
		if p.Available() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) MakePick(_ context.Context, pickID, playerID uuid.UUID, pickedAt time.Time) (*models.DraftPick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.picks[pickID]
	if !ok {
		return nil, apperrors.NotFound("draft pick %s not found", pickID)
	}
	if p.PlayerID != nil {
		return nil, apperrors.InvalidState("pick %d is already made", p.OverallPick)
	}
	for _, other := range f.picks {
		if other.DraftID == p.DraftID && other.PlayerID != nil && *other.PlayerID == playerID {
			return nil, apperrors.InvalidState("player %s already drafted", playerID)
		}
	}
	p.PlayerID = &playerID
	p.PickedAt = &pickedAt
	out := *p
	return &out, nil
}

func (f *fakeStore) CountRemainingPicks(_ context.Context, draftID uuid.UUID) (int, error) {
	avail, _ := f.FindAvailablePicks(context.Background(), draftID)
	return len(avail), nil
}

func (f *fakeStore) GetDraft(_ context.Context, id uuid.UUID) (*models.Draft, error) {
	d, ok := f.drafts[id]
	if !ok {
		return nil, apperrors.NotFound("draft %s not found", id)
	}
	out := *d
	return &out, nil
}

func (f *fakeStore) GetPlayer(_ context.Context, id uuid.UUID) (*models.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, apperrors.NotFound("player %s not found", id)
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) addDraft(rounds, picksPerRound int, policy models.OrderPolicy, thirdRoundReversal bool) uuid.UUID {
	id := uuid.New()
	f.drafts[id] = &models.Draft{
		ID:     id,
		Year:   2026,
		Status: models.DraftStatusInProgress,
		Settings: models.DraftSettings{
			Rounds:             rounds,
			PicksPerRound:      picksPerRound,
			TimePerPickSec:     60,
			OrderPolicy:        policy,
			ThirdRoundReversal: thirdRoundReversal,
		},
		TotalPicks: rounds * picksPerRound,
	}
	return id
}

func (f *fakeStore) addPlayer(year int) uuid.UUID {
	id := uuid.New()
	f.players[id] = &models.Player{
		ID:            id,
		FullName:      "Test Player",
		Position:      "QB",
		EligibleYear:  year,
		ConsensusRank: len(f.players) + 1,
		ScoutingGrade: 80,
	}
	return id
}

func teamIDs(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestInitializeDraftPicks_Shape(t *testing.T) {
	f := newFakeStore()
	teams := teamIDs(2)
	draftID := f.addDraft(1, 2, models.OrderPolicyStraight, false)
	app := NewApp(f, f, f, order.NewStaticProvider(teams), nil)

	if err := app.InitializeDraftPicks(context.Background(), draftID); err != nil {
		t.Fatalf("InitializeDraftPicks: %v", err)
	}

	picks, err := app.GetDraftPicksByDraft(context.Background(), draftID)
	if err != nil {
		t.Fatalf("GetDraftPicksByDraft: %v", err)
	}
	if len(picks) != 2 {
		t.Fatalf("created %d picks, want 2", len(picks))
	}
	for i, p := range picks {
		if p.OverallPick != i+1 {
			t.Errorf("pick %d has overall_pick %d, want %d", i, p.OverallPick, i+1)
		}
		if p.Round != 1 {
			t.Errorf("pick %d has round %d, want 1", i, p.Round)
		}
		if p.TeamID != teams[i] {
			t.Errorf("pick %d owned by %s, want %s", i, p.TeamID, teams[i])
		}
	}
}

func TestInitializeDraftPicks_SecondCallRejected(t *testing.T) {
	f := newFakeStore()
	teams := teamIDs(3)
	draftID := f.addDraft(2, 3, models.OrderPolicyStraight, false)
	app := NewApp(f, f, f, order.NewStaticProvider(teams), nil)

	if err := app.InitializeDraftPicks(context.Background(), draftID); err != nil {
		t.Fatalf("first InitializeDraftPicks: %v", err)
	}
	err := app.InitializeDraftPicks(context.Background(), draftID)
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("second call error = %v, want InvalidState", err)
	}

	picks, _ := app.GetDraftPicksByDraft(context.Background(), draftID)
	if len(picks) != 6 {
		t.Fatalf("pick count after rejected re-init = %d, want 6", len(picks))
	}
}

func TestInitializeDraftPicks_OrderPolicies(t *testing.T) {
	teams := teamIDs(3)
	a, b, c := teams[0], teams[1], teams[2]

	tests := []struct {
		name     string
		policy   models.OrderPolicy
		reversal bool
		want     []uuid.UUID // owner per overall pick, 3 rounds x 3 teams
	}{
		{
			name:   "straight repeats every round",
			policy: models.OrderPolicyStraight,
			want:   []uuid.UUID{a, b, c, a, b, c, a, b, c},
		},
		{
			name:   "snake reverses even rounds",
			policy: models.OrderPolicySnake,
			want:   []uuid.UUID{a, b, c, c, b, a, a, b, c},
		},
		{
			name:     "third round reversal",
			policy:   models.OrderPolicySnake,
			reversal: true,
			want:     []uuid.UUID{a, b, c, c, b, a, c, b, a},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeStore()
			draftID := f.addDraft(3, 3, tt.policy, tt.reversal)
			app := NewApp(f, f, f, order.NewStaticProvider(teams), nil)

			if err := app.InitializeDraftPicks(context.Background(), draftID); err != nil {
				t.Fatalf("InitializeDraftPicks: %v", err)
			}
			picks, _ := app.GetDraftPicksByDraft(context.Background(), draftID)
			if len(picks) != len(tt.want) {
				t.Fatalf("created %d picks, want %d", len(picks), len(tt.want))
			}
			for i, p := range picks {
				if p.TeamID != tt.want[i] {
					t.Errorf("overall pick %d owned by wrong team", p.OverallPick)
				}
			}
		})
	}
}

func TestMakePick(t *testing.T) {
	f := newFakeStore()
	teams := teamIDs(2)
	draftID := f.addDraft(1, 2, models.OrderPolicyStraight, false)
	app := NewApp(f, f, f, order.NewStaticProvider(teams), nil)
	if err := app.InitializeDraftPicks(context.Background(), draftID); err != nil {
		t.Fatalf("InitializeDraftPicks: %v", err)
	}

	playerA := f.addPlayer(2026)
	playerB := f.addPlayer(2026)
	ineligible := f.addPlayer(2027)

	next, err := app.FindNextPick(context.Background(), draftID)
	if err != nil || next == nil {
		t.Fatalf("FindNextPick: %v, %v", next, err)
	}
	if next.OverallPick != 1 {
		t.Fatalf("next pick overall = %d, want 1", next.OverallPick)
	}

	made, err := app.MakePick(context.Background(), MakePickRequest{PickID: next.ID, PlayerID: playerA})
	if err != nil {
		t.Fatalf("MakePick: %v", err)
	}
	if made.PlayerID == nil || *made.PlayerID != playerA {
		t.Error("player not assigned")
	}
	if made.PickedAt == nil {
		t.Error("picked_at not stamped")
	}

	// Already-made pick rejected; recorded player unchanged.
	_, err = app.MakePick(context.Background(), MakePickRequest{PickID: next.ID, PlayerID: playerB})
	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("re-pick error = %v, want InvalidState", err)
	}
	got, _ := app.GetDraftPick(context.Background(), next.ID)
	if *got.PlayerID != playerA {
		t.Error("rejected re-pick changed player_id")
	}

	second, _ := app.FindNextPick(context.Background(), draftID)
	if second.OverallPick != 2 {
		t.Fatalf("next pick overall = %d, want 2", second.OverallPick)
	}

	// Duplicate player in the same draft rejected.
	if _, err := app.MakePick(context.Background(), MakePickRequest{PickID: second.ID, PlayerID: playerA}); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("duplicate player error = %v, want InvalidState", err)
	}
	// Wrong eligibility year rejected.
	if _, err := app.MakePick(context.Background(), MakePickRequest{PickID: second.ID, PlayerID: ineligible}); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("ineligible player error = %v, want InvalidState", err)
	}
	// Unknown pick and player.
	if _, err := app.MakePick(context.Background(), MakePickRequest{PickID: uuid.New(), PlayerID: playerB}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown pick error = %v, want NotFound", err)
	}
	if _, err := app.MakePick(context.Background(), MakePickRequest{PickID: second.ID, PlayerID: uuid.New()}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown player error = %v, want NotFound", err)
	}

	if _, err := app.MakePick(context.Background(), MakePickRequest{PickID: second.ID, PlayerID: playerB}); err != nil {
		t.Fatalf("final MakePick: %v", err)
	}
	done, _ := app.FindNextPick(context.Background(), draftID)
	if done != nil {
		t.Fatalf("FindNextPick after all picks made = %v, want nil", done)
	}
	remaining, _ := app.CountRemainingPicks(context.Background(), draftID)
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
}

func TestMakePick_ConcurrentSingleWinner(t *testing.T) {
	f := newFakeStore()
	teams := teamIDs(2)
	draftID := f.addDraft(1, 2, models.OrderPolicyStraight, false)
	app := NewApp(f, f, f, order.NewStaticProvider(teams), nil)
	if err := app.InitializeDraftPicks(context.Background(), draftID); err != nil {
		t.Fatalf("InitializeDraftPicks: %v", err)
	}

	next, _ := app.FindNextPick(context.Background(), draftID)

	const attempts = 8
	playerIDs := make([]uuid.UUID, attempts)
	for i := range playerIDs {
		playerIDs[i] = f.addPlayer(2026)
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = app.MakePick(context.Background(), MakePickRequest{PickID: next.ID, PlayerID: playerIDs[i]})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, apperrors.ErrInvalidState) {
			t.Errorf("loser error = %v, want InvalidState", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d concurrent MakePick calls succeeded, want exactly 1", wins)
	}
}

func TestFindAvailablePicks_Ordered(t *testing.T) {
	f := newFakeStore()
	teams := teamIDs(2)
	draftID := f.addDraft(2, 2, models.OrderPolicyStraight, false)
	app := NewApp(f, f, f, order.NewStaticProvider(teams), nil)
	if err := app.InitializeDraftPicks(context.Background(), draftID); err != nil {
		t.Fatalf("InitializeDraftPicks: %v", err)
	}

	// Make the second pick; 1, 3, 4 stay available and ordered.
	picks, _ := app.GetDraftPicksByDraft(context.Background(), draftID)
	playerID := f.addPlayer(2026)
	if _, err := app.MakePick(context.Background(), MakePickRequest{PickID: picks[1].ID, PlayerID: playerID}); err != nil {
		t.Fatalf("MakePick: %v", err)
	}

	avail, err := app.FindAvailablePicks(context.Background(), draftID)
	if err != nil {
		t.Fatalf("FindAvailablePicks: %v", err)
	}
	want := []int{1, 3, 4}
	if len(avail) != len(want) {
		t.Fatalf("got %d available picks, want %d", len(avail), len(want))
	}
	for i, p := range avail {
		if p.OverallPick != want[i] {
			t.Errorf("available[%d].OverallPick = %d, want %d", i, p.OverallPick, want[i])
		}
	}
}
