package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/release-league/internal/domain/draft"
	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/league"
	"github.com/riskibarqy/release-league/internal/domain/team"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type phaseAdvancer interface {
	AdvancePhase(ctx context.Context, leagueID string, completed league.Phase, season string) (league.League, error)
}

// DraftService serializes picks per draft. Every state change goes through a
// single repository transaction; there are no in-process locks.
type DraftService struct {
	leagueRepo league.Repository
	draftRepo  draft.Repository
	catalog    game.Catalog
	phases     phaseAdvancer
	events     DraftEventPublisher
	logger     *logging.Logger
	now        func() time.Time
	shuffle    func(order []string)
}

func NewDraftService(
	leagueRepo league.Repository,
	draftRepo draft.Repository,
	catalog game.Catalog,
	phases phaseAdvancer,
	events DraftEventPublisher,
	logger *logging.Logger,
) *DraftService {
	if events == nil {
		events = NewNoopDraftEventPublisher()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &DraftService{
		leagueRepo: leagueRepo,
		draftRepo:  draftRepo,
		catalog:    catalog,
		phases:     phases,
		events:     events,
		logger:     logger,
		now:        time.Now,
		shuffle: func(order []string) {
			rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		},
	}
}

type CreateDraftInput struct {
	LeagueID string
	ActorID  string
	Phase    string
	Season   string
	Order    []string
}

func (s *DraftService) CreateDraft(ctx context.Context, input CreateDraftInput) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.CreateDraft")
	defer span.End()

	l, err := s.requireCommissioner(ctx, input.LeagueID, input.ActorID)
	if err != nil {
		return draft.Draft{}, err
	}

	phase := l.CurrentPhase
	if input.Phase != "" {
		if phase, err = league.ParsePhase(input.Phase); err != nil {
			return draft.Draft{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	seasonID := l.Season
	if input.Season != "" && input.Season != l.Season {
		return draft.Draft{}, fmt.Errorf("%w: league plays season %s, not %s", ErrInvalidInput, l.Season, input.Season)
	}
	if phase.Before(l.CurrentPhase) {
		return draft.Draft{}, fmt.Errorf("%w: league is already past the %s phase", ErrInvalidInput, phase)
	}

	order := slices.Clone(input.Order)
	if len(order) == 0 {
		order = slices.Clone(l.Members)
		s.shuffle(order)
	}
	if err := validateOrder(order, l.Members); err != nil {
		return draft.Draft{}, err
	}

	now := s.now().UTC()
	item := draft.Draft{
		LeagueID:       l.ID,
		Phase:          phase,
		Season:         seasonID,
		Status:         draft.StatusPending,
		Order:          order,
		Picks:          []draft.Pick{},
		Skips:          []draft.Skip{},
		PresentUserIDs: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := item.Validate(); err != nil {
		return draft.Draft{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.draftRepo.Create(ctx, item); err != nil {
		if errors.Is(err, draft.ErrAlreadyExists) {
			return draft.Draft{}, fmt.Errorf("%w: draft %s already exists", ErrConflict, item.ID())
		}
		return draft.Draft{}, fmt.Errorf("create draft: %w", err)
	}

	s.logger.InfoContext(ctx, "draft created", "league_id", l.ID, "draft_id", item.ID(), "players", len(order))
	return item, nil
}

// SetDraftOrder replaces the order while the draft is still pending.
func (s *DraftService) SetDraftOrder(ctx context.Context, leagueID, draftID, actorID string, order []string) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.SetDraftOrder")
	defer span.End()

	l, err := s.requireCommissioner(ctx, leagueID, actorID)
	if err != nil {
		return draft.Draft{}, err
	}
	if err := validateOrder(order, l.Members); err != nil {
		return draft.Draft{}, err
	}

	now := s.now().UTC()
	updated, found, err := s.draftRepo.Mutate(ctx, leagueID, draftID, func(d *draft.Draft) error {
		if d.Status != draft.StatusPending {
			return fmt.Errorf("%w: draft order is locked once started", ErrConflict)
		}
		d.Order = slices.Clone(order)
		d.UpdatedAt = now
		return nil
	})
	if err != nil {
		return draft.Draft{}, err
	}
	if !found {
		return draft.Draft{}, fmt.Errorf("%w: draft=%s", ErrDraftNotFound, draftID)
	}
	return updated, nil
}

func (s *DraftService) StartDraft(ctx context.Context, leagueID, draftID, actorID string) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.StartDraft")
	defer span.End()

	if _, err := s.requireCommissioner(ctx, leagueID, actorID); err != nil {
		return draft.Draft{}, err
	}

	now := s.now().UTC()
	updated, found, err := s.draftRepo.Mutate(ctx, leagueID, draftID, func(d *draft.Draft) error {
		if d.Status != draft.StatusPending {
			return fmt.Errorf("%w: draft is %s", ErrConflict, d.Status)
		}
		d.Start()
		d.UpdatedAt = now
		return nil
	})
	if err != nil {
		return draft.Draft{}, err
	}
	if !found {
		return draft.Draft{}, fmt.Errorf("%w: draft=%s", ErrDraftNotFound, draftID)
	}

	s.publish(ctx, DraftEvent{Type: DraftEventStarted, SlotIndex: 0}, updated, now)
	return updated, nil
}

type SubmitPickInput struct {
	LeagueID string
	DraftID  string
	UserID   string
	GameID   string
	PickType string
}

// SubmitPick records a pick, mirrors it into the team roster and advances the
// clock in one transaction. Precondition failures leave both rows untouched.
func (s *DraftService) SubmitPick(ctx context.Context, input SubmitPickInput) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.SubmitPick",
		attribute.String("release_league.draft_id", input.DraftID),
		attribute.String("release_league.pick_type", input.PickType),
	)
	defer span.End()

	if strings.TrimSpace(input.LeagueID) == "" || strings.TrimSpace(input.DraftID) == "" ||
		strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.GameID) == "" {
		return draft.Draft{}, fmt.Errorf("%w: league, draft, user and game are required", ErrInvalidInput)
	}
	pickType, err := team.ParsePickType(input.PickType)
	if err != nil {
		return draft.Draft{}, fmt.Errorf("%w: %v", ErrInvalidPickType, err)
	}
	if _, _, err := draft.ParseID(input.DraftID); err != nil {
		return draft.Draft{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Catalog reads stay outside the transaction; the verdict is applied after
	// the turn check so error precedence does not depend on it.
	g, gameExists, err := s.catalog.GetByID(ctx, input.GameID)
	if err != nil {
		return draft.Draft{}, fmt.Errorf("get game: %w", err)
	}

	now := s.now().UTC()
	var slotIndex int
	updated, found, err := s.draftRepo.MutateWithTeam(ctx, input.LeagueID, input.DraftID, input.UserID, func(d *draft.Draft, t *team.Team) error {
		onClock, ok := d.Turn()
		if !ok {
			return fmt.Errorf("%w: draft is %s", ErrNotYourTurn, d.Status)
		}
		if onClock != input.UserID {
			return fmt.Errorf("%w: waiting on %s", ErrNotYourTurn, onClock)
		}
		if !gameExists {
			return fmt.Errorf("%w: game=%s", ErrNotFound, input.GameID)
		}
		if g.IsHidden {
			return fmt.Errorf("%w: game %s is not available for draft", ErrInvalidInput, input.GameID)
		}
		if d.HasGame(input.GameID) {
			return fmt.Errorf("%w: game=%s", ErrGameAlreadyDrafted, input.GameID)
		}

		eligible := draft.EligiblePickTypes(d.Phase, d.SeasonalPicks(), d.PickTypesOf(input.UserID))
		if !slices.Contains(eligible, pickType) {
			return fmt.Errorf("%w: %s not in %v", ErrInvalidPickType, pickType, eligible)
		}
		if t == nil {
			return fmt.Errorf("%w: team for user %s", ErrNotFound, input.UserID)
		}
		if err := t.Picks.Apply(d.Phase, pickType, input.GameID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPickType, err)
		}

		slotIndex = d.NextSlotIndex()
		d.Picks = append(d.Picks, draft.Pick{
			UserID:    input.UserID,
			GameID:    input.GameID,
			PickType:  pickType,
			SlotIndex: slotIndex,
			CreatedAt: now,
		})
		d.Advance()
		d.UpdatedAt = now
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return draft.Draft{}, mapDraftRepoError(err)
	}
	if !found {
		return draft.Draft{}, fmt.Errorf("%w: draft=%s", ErrDraftNotFound, input.DraftID)
	}

	s.logger.InfoContext(ctx, "draft pick submitted",
		"league_id", input.LeagueID,
		"draft_id", input.DraftID,
		"user_id", input.UserID,
		"game_id", input.GameID,
		"pick_type", pickType,
		"slot_index", slotIndex,
	)
	s.publish(ctx, DraftEvent{
		Type:      DraftEventPick,
		UserID:    input.UserID,
		GameID:    input.GameID,
		PickType:  string(pickType),
		SlotIndex: slotIndex,
	}, updated, now)
	s.afterCommit(ctx, updated, now)

	return updated, nil
}

// SkipCurrentPick passes over the user on the clock. The slot is consumed as
// if a pick had been made, through the same Advance as SubmitPick.
func (s *DraftService) SkipCurrentPick(ctx context.Context, leagueID, draftID, actorID string) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.SkipCurrentPick")
	defer span.End()

	if _, err := s.requireCommissioner(ctx, leagueID, actorID); err != nil {
		return draft.Draft{}, err
	}

	now := s.now().UTC()
	var skipped draft.Skip
	updated, found, err := s.draftRepo.Mutate(ctx, leagueID, draftID, func(d *draft.Draft) error {
		onClock, ok := d.Turn()
		if !ok {
			return fmt.Errorf("%w: draft is %s", ErrConflict, d.Status)
		}
		skipped = draft.Skip{UserID: onClock, SlotIndex: d.NextSlotIndex(), CreatedAt: now}
		d.Skips = append(d.Skips, skipped)
		d.Advance()
		d.UpdatedAt = now
		return nil
	})
	if err != nil {
		return draft.Draft{}, mapDraftRepoError(err)
	}
	if !found {
		return draft.Draft{}, fmt.Errorf("%w: draft=%s", ErrDraftNotFound, draftID)
	}

	s.logger.WarnContext(ctx, "draft pick skipped",
		"league_id", leagueID,
		"draft_id", draftID,
		"user_id", skipped.UserID,
		"slot_index", skipped.SlotIndex,
	)
	s.publish(ctx, DraftEvent{Type: DraftEventSkip, UserID: skipped.UserID, SlotIndex: skipped.SlotIndex}, updated, now)
	s.afterCommit(ctx, updated, now)

	return updated, nil
}

func (s *DraftService) GetDraft(ctx context.Context, leagueID, draftID string) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.GetDraft")
	defer span.End()

	item, found, err := s.draftRepo.Get(ctx, leagueID, draftID)
	if err != nil {
		return draft.Draft{}, fmt.Errorf("get draft: %w", err)
	}
	if !found {
		return draft.Draft{}, fmt.Errorf("%w: draft=%s", ErrDraftNotFound, draftID)
	}
	return item, nil
}

func (s *DraftService) SetPresence(ctx context.Context, leagueID, draftID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.SetPresence")
	defer span.End()

	if err := s.requirePresenceTarget(ctx, leagueID, draftID, userID); err != nil {
		return err
	}
	if err := s.draftRepo.AddPresence(ctx, leagueID, draftID, userID); err != nil {
		return fmt.Errorf("add presence: %w", err)
	}
	return nil
}

func (s *DraftService) RemovePresence(ctx context.Context, leagueID, draftID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.RemovePresence")
	defer span.End()

	if err := s.requirePresenceTarget(ctx, leagueID, draftID, userID); err != nil {
		return err
	}
	if err := s.draftRepo.RemovePresence(ctx, leagueID, draftID, userID); err != nil {
		return fmt.Errorf("remove presence: %w", err)
	}
	return nil
}

func (s *DraftService) requirePresenceTarget(ctx context.Context, leagueID, draftID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	_, found, err := s.draftRepo.Get(ctx, leagueID, draftID)
	if err != nil {
		return fmt.Errorf("get draft: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: draft=%s", ErrDraftNotFound, draftID)
	}
	return nil
}

// afterCommit runs the eventual, non-atomic follow-ups of a completed draft.
func (s *DraftService) afterCommit(ctx context.Context, d draft.Draft, now time.Time) {
	if d.Status != draft.StatusCompleted {
		return
	}

	s.publish(ctx, DraftEvent{Type: DraftEventCompleted, SlotIndex: d.NextSlotIndex()}, d, now)
	if s.phases == nil {
		return
	}
	if _, err := s.phases.AdvancePhase(ctx, d.LeagueID, d.Phase, d.Season); err != nil {
		s.logger.ErrorContext(ctx, "advance phase after draft completion failed",
			"league_id", d.LeagueID,
			"draft_id", d.ID(),
			"error", err,
		)
	}
}

func (s *DraftService) publish(ctx context.Context, event DraftEvent, d draft.Draft, now time.Time) {
	event.LeagueID = d.LeagueID
	event.DraftID = d.ID()
	event.Status = string(d.Status)
	event.OccurredAt = now
	if d.CurrentPick != nil {
		event.NextUserID = d.CurrentPick.UserID
	}
	if err := s.events.PublishDraftEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish draft event failed",
			"league_id", event.LeagueID,
			"draft_id", event.DraftID,
			"event_type", event.Type,
			"error", err,
		)
	}
}

func (s *DraftService) requireCommissioner(ctx context.Context, leagueID, actorID string) (league.League, error) {
	if strings.TrimSpace(leagueID) == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	l, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrLeagueNotFound, leagueID)
	}
	if l.CommissionerID != actorID {
		return league.League{}, fmt.Errorf("%w: commissioner only", ErrForbidden)
	}
	return l, nil
}

func validateOrder(order, members []string) error {
	if len(order) != len(members) {
		return fmt.Errorf("%w: draft order must list every member once", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(order))
	for _, userID := range order {
		if !slices.Contains(members, userID) {
			return fmt.Errorf("%w: %s is not a league member", ErrInvalidInput, userID)
		}
		if _, dup := seen[userID]; dup {
			return fmt.Errorf("%w: duplicate user %s in draft order", ErrInvalidInput, userID)
		}
		seen[userID] = struct{}{}
	}
	return nil
}

// mapDraftRepoError turns storage-level uniqueness violations into the
// caller-facing draft errors. A lost race on the slot means another pick
// landed first.
func mapDraftRepoError(err error) error {
	switch {
	case errors.Is(err, draft.ErrSlotConflict):
		return fmt.Errorf("%w: %v", ErrNotYourTurn, err)
	case errors.Is(err, draft.ErrGameConflict):
		return fmt.Errorf("%w: %v", ErrGameAlreadyDrafted, err)
	}
	return err
}
