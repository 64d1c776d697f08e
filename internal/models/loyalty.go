package models

import (
	"time"

	"github.com/google/uuid"
)

// Loyalty tier, derived from balance
type Tier string

const (
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// Transaction types
type TnxType string

const (
	TnxEarned     TnxType = "EARNED"
	TnxRedeemed   TnxType = "REDEEMED"
	TnxBonus      TnxType = "BONUS"
	TnxExpired    TnxType = "EXPIRED"
	TnxAdjustment TnxType = "ADJUSTMENT"
)

// Loyalty account, one per client
type LoyaltyAccount struct {
	UUID     uuid.UUID
	ClientID string
	Balance  int64 // points
	Tier     Tier
	Birthday time.Time // zero value when client never provided one
}

// Ledger transaction. Rows are immutable except nulling ExpiresAt
// once the expiry job has processed them.
type LoyaltyTransaction struct {
	UUID        uuid.UUID
	Account     uuid.UUID
	Points      int64 // signed: positive credit, negative debit
	Type        TnxType
	Description string
	SaleID      string     // set for EARNED/REDEEMED/BONUS created by a sale
	ExpiresAt   *time.Time // EARNED/BONUS only, nil once processed or when expiry disabled
	CreatedAt   time.Time
}

// Invoice persisted on sale completion
type Invoice struct {
	UUID          uuid.UUID
	SaleID        string
	ClientID      string
	SubtotalCents int64
	DiscountCents int64 // value of redeemed points
	TaxCents      int64
	TotalCents    int64
	CreatedAt     time.Time
}

// Payment line on an invoice
type Payment struct {
	UUID        uuid.UUID
	Invoice     uuid.UUID
	Method      string
	AmountCents int64
}
