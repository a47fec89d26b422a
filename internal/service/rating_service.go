package service

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/exchange-service/internal/domain"
	"github.com/spec-kit/exchange-service/internal/events"
	"github.com/spec-kit/exchange-service/internal/persistence"
	"github.com/spec-kit/exchange-service/internal/repository"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

const reputationKeyPrefix = "reputation:"

// RatingService records post-completion feedback and serves derived
// reputation. The Redis projection is a rebuildable cache; the rating
// rows stay authoritative.
type RatingService struct {
	ratings    repository.RatingRepository
	exchanges  repository.ExchangeRepository
	cache      *persistence.Redis
	cacheTTL   time.Duration
	dispatcher events.Dispatcher
}

// RatingDependencies bundles requirements for the rating service.
type RatingDependencies struct {
	RatingRepo   repository.RatingRepository
	ExchangeRepo repository.ExchangeRepository
	Cache        *persistence.Redis
	CacheTTL     time.Duration
	Dispatcher   events.Dispatcher
}

// RatingInput describes a rating submission.
type RatingInput struct {
	ExchangeID string
	Score      int
	Comment    string
}

// NewRatingService constructs the service.
func NewRatingService(deps RatingDependencies) *RatingService {
	return &RatingService{
		ratings:    deps.RatingRepo,
		exchanges:  deps.ExchangeRepo,
		cache:      deps.Cache,
		cacheTTL:   deps.CacheTTL,
		dispatcher: deps.Dispatcher,
	}
}

// SubmitRating records one participant's review of the other side of a
// completed exchange. At most one rating per (exchange, author).
func (s *RatingService) SubmitRating(ctx context.Context, authorID string, input RatingInput) (*domain.Rating, error) {
	if input.Score < domain.MinRatingScore || input.Score > domain.MaxRatingScore {
		return nil, apperrors.NewValidationError("score must be between 1 and 5", map[string]any{"score": input.Score})
	}

	exchange, err := s.exchanges.GetByID(ctx, input.ExchangeID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("exchange", map[string]any{"exchange_id": input.ExchangeID})
		}
		return nil, err
	}
	if !exchange.Participant(authorID) {
		return nil, apperrors.NewForbidden("only participants may rate the exchange")
	}
	if exchange.Status != domain.ExchangeStatusCompleted {
		return nil, apperrors.NewInvalidState("exchange is not completed", map[string]any{
			"current": string(exchange.Status),
		})
	}

	// Core-boundary re-check; the unique constraint stays authoritative.
	exists, err := s.ratings.ExistsForAuthor(ctx, exchange.ID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("rating already submitted for this exchange", map[string]any{
			"exchange_id": exchange.ID,
			"author_id":   authorID,
		})
	}

	// The cap counts characters, not bytes, matching the schema CHECK.
	comment := input.Comment
	if utf8.RuneCountInString(comment) > domain.MaxRatingCommentLen {
		comment = string([]rune(comment)[:domain.MaxRatingCommentLen])
	}

	rating := &domain.Rating{
		ExchangeID:  exchange.ID,
		AuthorID:    authorID,
		RecipientID: exchange.Counterparty(authorID),
		Score:       input.Score,
		Comment:     comment,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, rating.RecipientID)
	s.publish(ctx, exchange.ID, authorID, events.RatingSubmittedPayload{
		RatingID:    rating.ID,
		RecipientID: rating.RecipientID,
		Score:       rating.Score,
	})
	return rating, nil
}

// AggregateFor computes the recipient's reputation, serving the cached
// projection when fresh and rebuilding it from rows otherwise.
func (s *RatingService) AggregateFor(ctx context.Context, userID string) (*domain.Reputation, error) {
	if cached := s.cachedReputation(ctx, userID); cached != nil {
		return cached, nil
	}

	rep, err := s.ratings.AggregateForRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.storeReputation(ctx, rep)
	return rep, nil
}

// ListForRecipient returns ratings received by a user.
func (s *RatingService) ListForRecipient(ctx context.Context, userID string, limit, offset int) ([]domain.Rating, error) {
	return s.ratings.ListByRecipient(ctx, userID, limit, offset)
}

func (s *RatingService) cachedReputation(ctx context.Context, userID string) *domain.Reputation {
	if s.cache == nil || s.cache.Client == nil {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, reputationKeyPrefix+userID).Bytes()
	if err != nil {
		return nil
	}
	var rep domain.Reputation
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil
	}
	return &rep
}

func (s *RatingService) storeReputation(ctx context.Context, rep *domain.Reputation) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(rep)
	if err != nil {
		return
	}
	_ = s.cache.Client.Set(ctx, reputationKeyPrefix+rep.UserID, raw, s.cacheTTL).Err()
}

func (s *RatingService) invalidateCache(ctx context.Context, userID string) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	_ = s.cache.Client.Del(ctx, reputationKeyPrefix+userID).Err()
}

func (s *RatingService) publish(ctx context.Context, exchangeID, actorID string, payload events.RatingSubmittedPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventRatingSubmitted,
		ExchangeID: exchangeID,
		ActorID:    actorID,
		Timestamp:  time.Now(),
		Payload:    payload,
	})
}
