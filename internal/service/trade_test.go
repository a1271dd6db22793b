package service

import (
	"context"
	"testing"

	"guildgems/internal/model"
	"guildgems/internal/repository"
	"guildgems/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateTrade_RequiresFriendship(t *testing.T) {
	mockRepo := new(mocks.MockTradeRepository)
	s := NewTradeService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("AreFriends", ctx, "u1", "u2").Return(false, nil)

	_, err := s.Create(ctx, "u1", "u2", model.ResourceGems, 10, model.ResourceRespect, 5)

	assert.ErrorIs(t, err, ErrNotFriends)
	mockRepo.AssertNotCalled(t, "CreateTrade", mock.Anything, mock.Anything)
}

func TestCreateTrade_RejectsSelfTrade(t *testing.T) {
	s := NewTradeService(new(mocks.MockTradeRepository), nil)

	_, err := s.Create(context.Background(), "u1", "u1", model.ResourceGems, 10, model.ResourceRespect, 5)

	assert.ErrorIs(t, err, ErrSelfReference)
}

func TestCreateTrade_RejectsInvalidResource(t *testing.T) {
	s := NewTradeService(new(mocks.MockTradeRepository), nil)

	_, err := s.Create(context.Background(), "u1", "u2", "karma", 10, model.ResourceGems, 5)
	assert.ErrorIs(t, err, ErrInvalidResource)

	_, err = s.Create(context.Background(), "u1", "u2", model.ResourceGems, 0, model.ResourceRespect, 5)
	assert.ErrorIs(t, err, ErrInvalidResource)
}

func TestCreateTrade_SenderBalanceChecked(t *testing.T) {
	mockRepo := new(mocks.MockTradeRepository)
	s := NewTradeService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("AreFriends", ctx, "u1", "u2").Return(true, nil)
	mockRepo.On("GetUser", ctx, "u1").Return(&model.User{UserID: "u1", Gems: 100, Respect: 2}, nil)

	_, err := s.Create(ctx, "u1", "u2", model.ResourceRespect, 5, model.ResourceGems, 20)

	assert.ErrorIs(t, err, ErrInsufficientRespect)
	mockRepo.AssertNotCalled(t, "CreateTrade", mock.Anything, mock.Anything)
}

func TestCreateTrade_PendingTradeStored(t *testing.T) {
	mockRepo := new(mocks.MockTradeRepository)
	s := NewTradeService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("AreFriends", ctx, "u1", "u2").Return(true, nil)
	mockRepo.On("GetUser", ctx, "u1").Return(&model.User{UserID: "u1", Gems: 100}, nil)
	mockRepo.On("CreateTrade", ctx, mock.MatchedBy(func(tr *model.Trade) bool {
		return tr.SenderID == "u1" &&
			tr.ReceiverID == "u2" &&
			tr.OfferValue == 10 &&
			tr.Status == model.TradeStatusPending
	})).Return(nil)

	trade, err := s.Create(ctx, "u1", "u2", model.ResourceGems, 10, model.ResourceRespect, 5)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, trade.TradeID)
	mockRepo.AssertExpectations(t)
}

func TestAcceptTrade_ReceiverCannotAfford(t *testing.T) {
	mockRepo := new(mocks.MockTradeRepository)
	s := NewTradeService(mockRepo, nil)
	ctx := context.Background()

	tradeID := uuid.New()
	mockRepo.On("SettleTrade", ctx, tradeID, "u2").Return(repository.ErrInsufficientRespect)

	_, err := s.Accept(ctx, tradeID, "u2")

	assert.ErrorIs(t, err, ErrInsufficientRespect)
}

func TestAcceptTrade_NotPending(t *testing.T) {
	mockRepo := new(mocks.MockTradeRepository)
	s := NewTradeService(mockRepo, nil)
	ctx := context.Background()

	tradeID := uuid.New()
	mockRepo.On("SettleTrade", ctx, tradeID, "u2").Return(repository.ErrTradeNotPending)

	_, err := s.Accept(ctx, tradeID, "u2")

	assert.ErrorIs(t, err, ErrTradeNotPending)
}

func TestAcceptTrade_SettlesAndNotifiesSender(t *testing.T) {
	mockRepo := new(mocks.MockTradeRepository)
	notifier := NewNotifier()
	s := NewTradeService(mockRepo, notifier)
	ctx := context.Background()

	events, cancel := notifier.Subscribe("u1")
	defer cancel()

	tradeID := uuid.New()
	settled := &model.Trade{
		TradeID:    tradeID,
		SenderID:   "u1",
		ReceiverID: "u2",
		Status:     model.TradeStatusAccepted,
	}

	mockRepo.On("SettleTrade", ctx, tradeID, "u2").Return(nil)
	mockRepo.On("GetTrade", ctx, tradeID).Return(settled, nil)

	trade, err := s.Accept(ctx, tradeID, "u2")

	assert.NoError(t, err)
	assert.Equal(t, model.TradeStatusAccepted, trade.Status)

	event := <-events
	assert.Equal(t, EventTradeResolved, event.Type)
	assert.Equal(t, "u1", event.UserID)
	mockRepo.AssertExpectations(t)
}

func TestRejectTrade_NotPending(t *testing.T) {
	mockRepo := new(mocks.MockTradeRepository)
	s := NewTradeService(mockRepo, nil)
	ctx := context.Background()

	tradeID := uuid.New()
	mockRepo.On("RejectTrade", ctx, tradeID, "u2").Return(repository.ErrTradeNotPending)

	err := s.Reject(ctx, tradeID, "u2")

	assert.ErrorIs(t, err, ErrTradeNotPending)
}
