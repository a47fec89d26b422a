package service_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/exchange-service/internal/domain"
	"github.com/spec-kit/exchange-service/internal/service"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

type ratingEnv struct {
	*exchangeEnv
	ratings *service.RatingService
}

func newRatingEnv(t *testing.T) *ratingEnv {
	t.Helper()
	base := newExchangeEnv(t)
	ratings := service.NewRatingService(service.RatingDependencies{
		RatingRepo:   &memRatings{s: base.store},
		ExchangeRepo: &memExchanges{s: base.store},
	})
	return &ratingEnv{exchangeEnv: base, ratings: ratings}
}

func (e *ratingEnv) completedExchange(t *testing.T) *domain.Exchange {
	t.Helper()
	exchange := e.reachInProgress(t, 1)
	completed, err := e.svc.Complete(context.Background(), exchange.ID, e.admin.ID)
	require.NoError(t, err)
	return completed
}

func TestSubmitRating(t *testing.T) {
	env := newRatingEnv(t)
	exchange := env.completedExchange(t)

	rating, err := env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{
		ExchangeID: exchange.ID,
		Score:      5,
		Comment:    "muy paciente",
	})
	require.NoError(t, err)
	assert.Equal(t, env.rosa.ID, rating.RecipientID)
	assert.Equal(t, 5, rating.Score)
}

func TestSubmitRatingScoreBounds(t *testing.T) {
	env := newRatingEnv(t)
	exchange := env.completedExchange(t)

	for _, score := range []int{0, -1, 6} {
		_, err := env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{
			ExchangeID: exchange.ID,
			Score:      score,
		})
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "score %d", score)
	}
}

func TestSubmitRatingRequiresCompletion(t *testing.T) {
	env := newRatingEnv(t)
	exchange := env.reachInProgress(t, 1)

	_, err := env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{
		ExchangeID: exchange.ID,
		Score:      4,
	})
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))
}

func TestSubmitRatingOnlyParticipants(t *testing.T) {
	env := newRatingEnv(t)
	stranger := env.store.addUser("carla", 10)
	exchange := env.completedExchange(t)

	_, err := env.ratings.SubmitRating(context.Background(), stranger.ID, service.RatingInput{
		ExchangeID: exchange.ID,
		Score:      4,
	})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestSubmitRatingUnknownExchange(t *testing.T) {
	env := newRatingEnv(t)

	_, err := env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{
		ExchangeID: "ex-missing",
		Score:      4,
	})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestSubmitRatingDuplicateConflict(t *testing.T) {
	env := newRatingEnv(t)
	exchange := env.completedExchange(t)

	_, err := env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{ExchangeID: exchange.ID, Score: 5})
	require.NoError(t, err)

	_, err = env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{ExchangeID: exchange.ID, Score: 3})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestSubmitRatingBothSides(t *testing.T) {
	env := newRatingEnv(t)
	exchange := env.completedExchange(t)

	fromRequester, err := env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{ExchangeID: exchange.ID, Score: 5})
	require.NoError(t, err)
	fromProvider, err := env.ratings.SubmitRating(context.Background(), env.rosa.ID, service.RatingInput{ExchangeID: exchange.ID, Score: 4})
	require.NoError(t, err)

	assert.Equal(t, env.rosa.ID, fromRequester.RecipientID)
	assert.Equal(t, env.admin.ID, fromProvider.RecipientID)
}

func TestSubmitRatingTruncatesComment(t *testing.T) {
	env := newRatingEnv(t)
	exchange := env.completedExchange(t)

	rating, err := env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{
		ExchangeID: exchange.ID,
		Score:      5,
		Comment:    strings.Repeat("a", domain.MaxRatingCommentLen+50),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxRatingCommentLen, utf8.RuneCountInString(rating.Comment))
}

func TestSubmitRatingTruncatesCommentByCharacters(t *testing.T) {
	env := newRatingEnv(t)
	exchange := env.completedExchange(t)

	// every rune is two bytes; a byte cut at the limit would land mid-rune
	rating, err := env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{
		ExchangeID: exchange.ID,
		Score:      5,
		Comment:    strings.Repeat("ñ", domain.MaxRatingCommentLen+50),
	})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(rating.Comment))
	assert.Equal(t, domain.MaxRatingCommentLen, utf8.RuneCountInString(rating.Comment))
}

func TestSubmitRatingKeepsShortAccentedComment(t *testing.T) {
	env := newRatingEnv(t)
	exchange := env.completedExchange(t)

	// 200 accented characters exceed 300 bytes but fit the 300-char cap
	comment := strings.Repeat("é", 200)
	rating, err := env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{
		ExchangeID: exchange.ID,
		Score:      5,
		Comment:    comment,
	})
	require.NoError(t, err)
	assert.Equal(t, comment, rating.Comment)
}

func TestAggregateFor(t *testing.T) {
	env := newRatingEnv(t)

	empty, err := env.ratings.AggregateFor(context.Background(), env.rosa.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0.0, empty.Average)

	first := env.completedExchange(t)
	_, err = env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{ExchangeID: first.ID, Score: 5})
	require.NoError(t, err)

	second := env.completedExchange(t)
	_, err = env.ratings.SubmitRating(context.Background(), env.admin.ID, service.RatingInput{ExchangeID: second.ID, Score: 2})
	require.NoError(t, err)

	rep, err := env.ratings.AggregateFor(context.Background(), env.rosa.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Count)
	assert.InDelta(t, 3.5, rep.Average, 0.001)
}
