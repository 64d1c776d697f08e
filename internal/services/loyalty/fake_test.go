package loyalty

import (
	"context"
	"fmt"
	"sync"
	"time"

	interf "github.com/UmarEjaz/AestheTech-sub001/internal/interfaces"
	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"github.com/google/uuid"
)

// In-memory storage with transactional semantics: mutations stage on a
// fakeTx and only land on commit, so a failing settlement leaves no
// partial ledger - same contract as the Postgres layer.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[string]*model.LoyaltyAccount
	tnxs     []*model.LoyaltyTransaction
	invoices []model.Invoice
	payments []model.Payment
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*model.LoyaltyAccount)}
}

func (f *fakeStore) addAccount(clientId string, balance int64, tier model.Tier, birthday time.Time) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct := &model.LoyaltyAccount{UUID: uuid.New(), ClientID: clientId, Balance: balance, Tier: tier, Birthday: birthday}
	f.accounts[clientId] = acct
	return acct.UUID
}

func (f *fakeStore) addTnx(account uuid.UUID, points int64, typ model.TnxType, saleId string, expiresAt *time.Time, createdAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tnxs = append(f.tnxs, &model.LoyaltyTransaction{
		UUID: uuid.New(), Account: account, Points: points, Type: typ,
		SaleID: saleId, ExpiresAt: expiresAt, CreatedAt: createdAt,
	})
}

func (f *fakeStore) sumPoints(account uuid.UUID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, t := range f.tnxs {
		if t.Account == account {
			sum += t.Points
		}
	}
	return sum
}

func (f *fakeStore) tnxByType(account uuid.UUID, typ model.TnxType) []*model.LoyaltyTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.LoyaltyTransaction
	for _, t := range f.tnxs {
		if t.Account == account && t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeStore) WithAccountTx(ctx context.Context, clientId string, fn func(tx interf.AccountTx) error) error {
	f.mu.Lock()
	acct, ok := f.accounts[clientId]
	if !ok {
		acct = &model.LoyaltyAccount{UUID: uuid.New(), ClientID: clientId, Tier: model.TierSilver}
		f.accounts[clientId] = acct
	}
	f.mu.Unlock()
	return f.runTx(acct, fn)
}

func (f *fakeStore) WithAccountTxByUUID(ctx context.Context, account uuid.UUID, fn func(tx interf.AccountTx) error) error {
	f.mu.Lock()
	var acct *model.LoyaltyAccount
	for _, a := range f.accounts {
		if a.UUID == account {
			acct = a
			break
		}
	}
	f.mu.Unlock()
	if acct == nil {
		return fmt.Errorf("account %w", model.ErrNotFound)
	}
	return f.runTx(acct, fn)
}

func (f *fakeStore) runTx(acct *model.LoyaltyAccount, fn func(tx interf.AccountTx) error) error {
	tx := &fakeTx{store: f, acct: *acct}
	if err := fn(tx); err != nil {
		return err
	}
	// commit
	f.mu.Lock()
	defer f.mu.Unlock()
	if tx.balanceSet {
		acct.Balance = tx.balance
		acct.Tier = tx.tier
	}
	for i := range tx.tnxs {
		t := tx.tnxs[i]
		f.tnxs = append(f.tnxs, &t)
	}
	f.invoices = append(f.invoices, tx.invoices...)
	f.payments = append(f.payments, tx.payments...)
	for _, id := range tx.cleared {
		for _, t := range f.tnxs {
			if t.UUID == id {
				t.ExpiresAt = nil
			}
		}
	}
	return nil
}

func (f *fakeStore) AccountsWithExpiredPoints(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, t := range f.tnxs {
		if (t.Type == model.TnxEarned || t.Type == model.TnxBonus) && t.ExpiresAt != nil && !t.ExpiresAt.After(now) && !seen[t.Account] {
			seen[t.Account] = true
			out = append(out, t.Account)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAccount(ctx context.Context, clientId string) (model.LoyaltyAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[clientId]
	if !ok {
		return model.LoyaltyAccount{}, fmt.Errorf("account %w", model.ErrNotFound)
	}
	return *acct, nil
}

func (f *fakeStore) GetBalance(ctx context.Context, clientId string) (int64, error) {
	acct, err := f.GetAccount(ctx, clientId)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

func (f *fakeStore) GetTnx(ctx context.Context, clientId string, from time.Time, to time.Time) ([]model.LoyaltyTransaction, error) {
	acct, err := f.GetAccount(ctx, clientId)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LoyaltyTransaction
	for _, t := range f.tnxs {
		if t.Account == acct.UUID && !t.CreatedAt.Before(from) && !t.CreatedAt.After(to) {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeTx struct {
	store      *fakeStore
	acct       model.LoyaltyAccount
	balance    int64
	tier       model.Tier
	balanceSet bool
	tnxs       []model.LoyaltyTransaction
	invoices   []model.Invoice
	payments   []model.Payment
	cleared    []uuid.UUID
}

func (t *fakeTx) Account() model.LoyaltyAccount { return t.acct }

func (t *fakeTx) UpdateBalance(ctx context.Context, balance int64, tier model.Tier) error {
	t.balance, t.tier, t.balanceSet = balance, tier, true
	return nil
}

func (t *fakeTx) AppendTransaction(ctx context.Context, tnx model.LoyaltyTransaction) error {
	t.tnxs = append(t.tnxs, tnx)
	return nil
}

func (t *fakeTx) BonusGrantedInYear(ctx context.Context, year int) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, tnx := range t.store.tnxs {
		if tnx.Account == t.acct.UUID && tnx.Type == model.TnxBonus && tnx.CreatedAt.Year() == year {
			return true, nil
		}
	}
	for _, tnx := range t.tnxs {
		if tnx.Type == model.TnxBonus && tnx.CreatedAt.Year() == year {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) EarnedForSale(ctx context.Context, saleId string) (int64, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var sum int64
	for _, tnx := range t.store.tnxs {
		if tnx.Account == t.acct.UUID && tnx.Type == model.TnxEarned && tnx.SaleID == saleId {
			sum += tnx.Points
		}
	}
	return sum, nil
}

func (t *fakeTx) InvoiceBySale(ctx context.Context, saleId string) (model.Invoice, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, inv := range t.store.invoices {
		if inv.SaleID == saleId {
			return inv, nil
		}
	}
	return model.Invoice{}, fmt.Errorf("invoice %w", model.ErrNotFound)
}

func (t *fakeTx) ExpiredEarnings(ctx context.Context, now time.Time) (int64, []uuid.UUID, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var sum int64
	var sources []uuid.UUID
	for _, tnx := range t.store.tnxs {
		if tnx.Account == t.acct.UUID && (tnx.Type == model.TnxEarned || tnx.Type == model.TnxBonus) &&
			tnx.ExpiresAt != nil && !tnx.ExpiresAt.After(now) {
			sum += tnx.Points
			sources = append(sources, tnx.UUID)
		}
	}
	return sum, sources, nil
}

func (t *fakeTx) ClearExpiry(ctx context.Context, sources []uuid.UUID) error {
	t.cleared = append(t.cleared, sources...)
	return nil
}

func (t *fakeTx) CreateInvoice(ctx context.Context, inv model.Invoice) error {
	t.invoices = append(t.invoices, inv)
	return nil
}

func (t *fakeTx) CreatePayment(ctx context.Context, pay model.Payment) error {
	t.payments = append(t.payments, pay)
	return nil
}

type fakeSettings struct {
	s model.Settings
}

func (f *fakeSettings) Get(ctx context.Context) (model.Settings, error) { return f.s, nil }
func (f *fakeSettings) Save(ctx context.Context, s model.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	f.s = s
	return nil
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

type fakeLocker struct {
	held    bool
	locks   int
	unlocks int
}

func (f *fakeLocker) TryLock(ctx context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	f.locks++
	return true, nil
}

func (f *fakeLocker) Unlock(ctx context.Context) error {
	f.held = false
	f.unlocks++
	return nil
}

func testSettings() model.Settings {
	return model.Settings{
		GoldThreshold:         500,
		PlatinumThreshold:     1000,
		SilverMultiplier:      1.0,
		GoldMultiplier:        1.5,
		PlatinumMultiplier:    2.0,
		PointsPerCurrencyUnit: 1.0,
		RedemptionRateCents:   5,
		TaxRateBps:            0,
		PointsExpiryEnabled:   true,
		PointsExpiryMonths:    12,
		BirthdayBonusEnabled:  true,
		BirthdayBonusPoints:   50,
		Timezone:              "UTC",
		NeverEndHorizonMonths: 3,
	}
}
