package interfaces

import (
	"context"
	"time"

	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"github.com/google/uuid"
)

// AccountTx is the scope of one account-level transaction. The account
// row is locked for the lifetime of the closure; every mutation commits
// or rolls back together.
type AccountTx interface {
	Account() model.LoyaltyAccount
	UpdateBalance(ctx context.Context, balance int64, tier model.Tier) error
	AppendTransaction(ctx context.Context, tnx model.LoyaltyTransaction) error
	BonusGrantedInYear(ctx context.Context, year int) (bool, error)
	EarnedForSale(ctx context.Context, saleId string) (int64, error)
	InvoiceBySale(ctx context.Context, saleId string) (model.Invoice, error)
	ExpiredEarnings(ctx context.Context, now time.Time) (points int64, sources []uuid.UUID, err error)
	ClearExpiry(ctx context.Context, sources []uuid.UUID) error
	CreateInvoice(ctx context.Context, inv model.Invoice) error
	CreatePayment(ctx context.Context, pay model.Payment) error
}

type LoyaltyStorage interface {
	WithAccountTx(ctx context.Context, clientId string, fn func(tx AccountTx) error) error
	WithAccountTxByUUID(ctx context.Context, account uuid.UUID, fn func(tx AccountTx) error) error
	AccountsWithExpiredPoints(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	GetAccount(ctx context.Context, clientId string) (model.LoyaltyAccount, error)
	GetBalance(ctx context.Context, clientId string) (int64, error)
	GetTnx(ctx context.Context, clientId string, from time.Time, to time.Time) ([]model.LoyaltyTransaction, error)
}

type CacheStorage interface {
	GetBalance(ctx context.Context, clientId string) (points int64, err error)
	SetBalance(ctx context.Context, clientId string, points int64) (err error)
	InvalidateBalance(ctx context.Context, clientId string) error
}

type SettingsStorage interface {
	Get(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, settings model.Settings) error
}

// Locker guards the expiry job. Implementations may be a Postgres
// advisory lock or an in-process mutex; the job does not care.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

type Clock interface {
	Now() time.Time
}
