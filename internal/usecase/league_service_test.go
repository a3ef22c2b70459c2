package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/platform/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeagueService_DeletedLeagueDisappears(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	env.seedLeague(t, "lg-1", "alice", "bob")
	env.seedLeague(t, "lg-2", "bob")
	svc := NewLeagueService(env.leagues, env.teams, env.drafts, id.NewUUIDGenerator(), env.logger)
	ctx := t.Context()

	require.NoError(t, svc.DeleteLeague(ctx, "lg-1", "alice"))

	_, err := svc.GetLeague(ctx, "lg-1")
	assert.True(t, errors.Is(err, ErrLeagueNotFound), "got %v", err)
	_, err = svc.ListTeams(ctx, "lg-1")
	assert.True(t, errors.Is(err, ErrLeagueNotFound), "got %v", err)

	mine, err := svc.ListLeaguesForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "lg-2", mine[0].ID)

	scorable, err := env.leagues.ListByStatus(ctx, league.StatusDraft, league.StatusActive)
	require.NoError(t, err)
	require.Len(t, scorable, 1)
	assert.Equal(t, "lg-2", scorable[0].ID)

	err = svc.DeleteLeague(ctx, "lg-1", "alice")
	assert.True(t, errors.Is(err, ErrLeagueNotFound), "got %v", err)
}

func TestLeagueService_UpdateSeasonBeforeFirstDraft(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	env.seedLeague(t, "lg-1", "alice", "bob")
	svc := NewLeagueService(env.leagues, env.teams, env.drafts, id.NewUUIDGenerator(), env.logger)
	ctx := t.Context()

	got, err := svc.UpdateSeason(ctx, UpdateSeasonInput{LeagueID: "lg-1", ActorID: "alice", Season: "2027"})
	require.NoError(t, err)
	assert.Equal(t, "2027", got.Season)

	stored, err := svc.GetLeague(ctx, "lg-1")
	require.NoError(t, err)
	assert.Equal(t, "2027", stored.Season)

	drafts := NewDraftService(env.leagues, env.drafts, env.catalog, nil, nil, env.logger)
	_, err = drafts.CreateDraft(ctx, CreateDraftInput{LeagueID: "lg-1", ActorID: "alice", Phase: "winter", Order: []string{"alice", "bob"}})
	require.NoError(t, err)

	_, err = svc.UpdateSeason(ctx, UpdateSeasonInput{LeagueID: "lg-1", ActorID: "alice", Season: "2028"})
	assert.True(t, errors.Is(err, ErrConflict), "got %v", err)
}
