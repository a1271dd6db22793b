package service

import (
	"context"
	"fmt"

	"guildgems/internal/model"
	"guildgems/internal/repository"
	"guildgems/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TradeService brokers resource exchanges between friends. Validation at
// creation time is advisory; the binding check happens inside the settlement
// transaction when the receiver accepts.
type TradeService struct {
	repo     TradeRepository
	notifier *Notifier
}

func NewTradeService(repo TradeRepository, notifier *Notifier) *TradeService {
	return &TradeService{repo: repo, notifier: notifier}
}

func (s *TradeService) Create(ctx context.Context, senderID, receiverID, offerType string, offerValue int, requestType string, requestValue int) (*model.Trade, error) {
	if !model.ValidResource(offerType) || !model.ValidResource(requestType) {
		return nil, ErrInvalidResource
	}
	if offerValue <= 0 || requestValue <= 0 {
		return nil, ErrInvalidResource
	}
	if senderID == receiverID {
		return nil, ErrSelfReference
	}

	friends, err := s.repo.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if !friends {
		return nil, ErrNotFriends
	}

	sender, err := s.repo.GetUser(ctx, senderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sender: %w", err)
	}

	if offerType == model.ResourceRespect {
		if sender.Respect < offerValue {
			return nil, ErrInsufficientRespect
		}
	} else if sender.Gems < offerValue {
		return nil, ErrInsufficientGems
	}

	t := &model.Trade{
		TradeID:      uuid.New(),
		SenderID:     senderID,
		ReceiverID:   receiverID,
		OfferType:    offerType,
		OfferValue:   offerValue,
		RequestType:  requestType,
		RequestValue: requestValue,
		Status:       model.TradeStatusPending,
	}
	if err := s.repo.CreateTrade(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	logger.Logger().Info("trade created",
		zap.String("trade_id", t.TradeID.String()),
		zap.String("sender_id", senderID),
		zap.String("receiver_id", receiverID),
	)

	s.notifier.Publish(Event{
		Type:   EventTradeReceived,
		UserID: receiverID,
		Payload: map[string]any{
			"trade_id":      t.TradeID.String(),
			"sender_id":     senderID,
			"offer_type":    offerType,
			"offer_value":   offerValue,
			"request_type":  requestType,
			"request_value": requestValue,
		},
	})

	return t, nil
}

// Accept settles the trade atomically; both sides are re-validated inside the
// transaction, so a balance spent since creation fails the accept cleanly.
func (s *TradeService) Accept(ctx context.Context, tradeID uuid.UUID, receiverID string) (*model.Trade, error) {
	err := s.repo.SettleTrade(ctx, tradeID, receiverID)
	switch {
	case errors.Is(err, repository.ErrTradeNotPending):
		return nil, ErrTradeNotPending
	case errors.Is(err, repository.ErrInsufficientGems):
		return nil, ErrInsufficientGems
	case errors.Is(err, repository.ErrInsufficientRespect):
		return nil, ErrInsufficientRespect
	case err != nil:
		return nil, fmt.Errorf("failed to settle trade: %w", err)
	}

	t, err := s.repo.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settled trade: %w", err)
	}

	logger.Logger().Info("trade accepted",
		zap.String("trade_id", tradeID.String()),
		zap.String("receiver_id", receiverID),
	)

	s.notifier.Publish(Event{
		Type:   EventTradeResolved,
		UserID: t.SenderID,
		Payload: map[string]any{
			"trade_id": tradeID.String(),
			"status":   model.TradeStatusAccepted,
		},
	})

	return t, nil
}

func (s *TradeService) Reject(ctx context.Context, tradeID uuid.UUID, receiverID string) error {
	err := s.repo.RejectTrade(ctx, tradeID, receiverID)
	if errors.Is(err, repository.ErrTradeNotPending) {
		return ErrTradeNotPending
	}
	if err != nil {
		return fmt.Errorf("failed to reject trade: %w", err)
	}

	t, err := s.repo.GetTrade(ctx, tradeID)
	if err == nil {
		s.notifier.Publish(Event{
			Type:   EventTradeResolved,
			UserID: t.SenderID,
			Payload: map[string]any{
				"trade_id": tradeID.String(),
				"status":   model.TradeStatusRejected,
			},
		})
	}

	return nil
}

func (s *TradeService) ListTrades(ctx context.Context, userID string, limit int) ([]*model.Trade, error) {
	trades, err := s.repo.TradesForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}
