package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ResourceGems    = "gems"
	ResourceRespect = "respect"
)

const (
	TradeStatusPending  = "pending"
	TradeStatusAccepted = "accepted"
	TradeStatusRejected = "rejected"
)

// Trade is immutable once it leaves the pending state.
type Trade struct {
	TradeID      uuid.UUID
	SenderID     string
	ReceiverID   string
	OfferType    string
	OfferValue   int
	RequestType  string
	RequestValue int
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func ValidResource(t string) bool {
	return t == ResourceGems || t == ResourceRespect
}
