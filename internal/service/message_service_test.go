package service_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/exchange-service/internal/events"
	"github.com/spec-kit/exchange-service/internal/service"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

type messageEnv struct {
	*exchangeEnv
	messages *service.MessageService
}

func newMessageEnv(t *testing.T) *messageEnv {
	t.Helper()
	base := newExchangeEnv(t)
	messages := service.NewMessageService(&memMessages{s: base.store}, &memExchanges{s: base.store}, nil)
	return &messageEnv{exchangeEnv: base, messages: messages}
}

func TestAddMessage(t *testing.T) {
	env := newMessageEnv(t)
	exchange := env.propose(t, 1)

	message, err := env.messages.AddMessage(context.Background(), env.admin.ID, exchange.ID, "  ¿Le viene bien el martes?  ")
	require.NoError(t, err)
	assert.Equal(t, "¿Le viene bien el martes?", message.Body)
	assert.Equal(t, exchange.ID, message.ExchangeID)
}

func TestAddMessageEmptyBody(t *testing.T) {
	env := newMessageEnv(t)
	exchange := env.propose(t, 1)

	_, err := env.messages.AddMessage(context.Background(), env.admin.ID, exchange.ID, "   ")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestAddMessageOnlyParticipants(t *testing.T) {
	env := newMessageEnv(t)
	stranger := env.store.addUser("carla", 10)
	exchange := env.propose(t, 1)

	_, err := env.messages.AddMessage(context.Background(), stranger.ID, exchange.ID, "hola")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAddMessageUnknownExchange(t *testing.T) {
	env := newMessageEnv(t)

	_, err := env.messages.AddMessage(context.Background(), env.admin.ID, "ex-missing", "hola")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestAddMessagePreviewKeepsRunesWhole(t *testing.T) {
	base := newExchangeEnv(t)
	dispatcher := events.NewInMemoryDispatcher()
	messages := service.NewMessageService(&memMessages{s: base.store}, &memExchanges{s: base.store}, dispatcher)

	var preview string
	dispatcher.Subscribe(events.EventMessageAdded, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.MessageAddedPayload)
		require.True(t, ok)
		preview = payload.BodyPreview
		return nil
	})

	exchange, err := base.svc.Propose(context.Background(), base.admin.ID, service.ProposeInput{
		ServiceID: base.offering.ID,
		Hours:     1,
	})
	require.NoError(t, err)

	_, err = messages.AddMessage(context.Background(), base.admin.ID, exchange.ID, strings.Repeat("ñ", 120))
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, 80, utf8.RuneCountInString(preview))
}

func TestListMessages(t *testing.T) {
	env := newMessageEnv(t)
	exchange := env.propose(t, 1)

	_, err := env.messages.AddMessage(context.Background(), env.admin.ID, exchange.ID, "¿Le viene bien el martes?")
	require.NoError(t, err)
	_, err = env.messages.AddMessage(context.Background(), env.rosa.ID, exchange.ID, "El martes perfecto")
	require.NoError(t, err)

	thread, err := env.messages.ListMessages(context.Background(), env.rosa.ID, exchange.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "¿Le viene bien el martes?", thread[0].Body)
	assert.Equal(t, "El martes perfecto", thread[1].Body)

	stranger := env.store.addUser("carla", 10)
	_, err = env.messages.ListMessages(context.Background(), stranger.ID, exchange.ID, 50, 0)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}
