package loyalty

import (
	"context"
	"testing"
	"time"

	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"github.com/stretchr/testify/require"
)

func TestRunExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.June, 1, 3, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 6, 0)

	store := newFakeStore()
	acct := store.addAccount("client-1", 200, model.TierSilver, time.Time{})
	store.addTnx(acct, 100, model.TnxEarned, "sale-1", &past, now.AddDate(-1, 0, 0))
	store.addTnx(acct, 50, model.TnxBonus, "sale-1", &past, now.AddDate(-1, 0, 0))
	store.addTnx(acct, 50, model.TnxEarned, "sale-2", &future, now.AddDate(0, -6, 0))

	serv, locker := newTestService(store, testSettings(), now)

	report, err := serv.RunExpiry(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), report.ClientsAffected)
	require.Equal(t, int64(150), report.TotalPointsExpired)

	balance, err := store.GetBalance(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, int64(50), balance)

	// one consolidated row, not one per source
	rows := store.tnxByType(acct, model.TnxExpired)
	require.Len(t, rows, 1)
	require.Equal(t, int64(-150), rows[0].Points)

	// lock released
	require.False(t, locker.held)
	require.Equal(t, 1, locker.unlocks)

	// expired sources are marked processed, the future one is not
	for _, tnx := range store.tnxByType(acct, model.TnxEarned) {
		if tnx.SaleID == "sale-1" {
			require.Nil(t, tnx.ExpiresAt)
		} else {
			require.NotNil(t, tnx.ExpiresAt)
		}
	}
}

func TestRunExpiryIdempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.June, 1, 3, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)

	store := newFakeStore()
	acct := store.addAccount("client-1", 100, model.TierSilver, time.Time{})
	store.addTnx(acct, 100, model.TnxEarned, "sale-1", &past, now.AddDate(-1, 0, 0))

	serv, _ := newTestService(store, testSettings(), now)

	report, err := serv.RunExpiry(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(100), report.TotalPointsExpired)

	report, err = serv.RunExpiry(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), report.TotalPointsExpired)
	require.Len(t, store.tnxByType(acct, model.TnxExpired), 1)

	balance, err := store.GetBalance(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}

func TestRunExpiryClampsToBalance(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.June, 1, 3, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)

	// the client already redeemed most of the balance; only what is left
	// can expire, but every source row still gets marked processed
	store := newFakeStore()
	acct := store.addAccount("client-1", 60, model.TierSilver, time.Time{})
	store.addTnx(acct, 100, model.TnxEarned, "sale-1", &past, now.AddDate(-1, 0, 0))
	store.addTnx(acct, 50, model.TnxEarned, "sale-2", &past, now.AddDate(-1, 0, 0))

	serv, _ := newTestService(store, testSettings(), now)

	report, err := serv.RunExpiry(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(60), report.TotalPointsExpired)

	balance, err := store.GetBalance(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)

	for _, tnx := range store.tnxByType(acct, model.TnxEarned) {
		require.Nil(t, tnx.ExpiresAt)
	}
}

func TestRunExpiryLockHeld(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.June, 1, 3, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)

	store := newFakeStore()
	acct := store.addAccount("client-1", 100, model.TierSilver, time.Time{})
	store.addTnx(acct, 100, model.TnxEarned, "sale-1", &past, now.AddDate(-1, 0, 0))

	serv, locker := newTestService(store, testSettings(), now)
	locker.held = true

	report, err := serv.RunExpiry(ctx)
	require.ErrorIs(t, err, model.ErrLockHeld)
	require.Equal(t, ExpiryReport{}, report)
	require.Empty(t, store.tnxByType(acct, model.TnxExpired))
	require.Equal(t, 0, locker.unlocks)
}

func TestRunExpiryDisabled(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.June, 1, 3, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)

	store := newFakeStore()
	acct := store.addAccount("client-1", 100, model.TierSilver, time.Time{})
	store.addTnx(acct, 100, model.TnxEarned, "sale-1", &past, now.AddDate(-1, 0, 0))

	s := testSettings()
	s.PointsExpiryEnabled = false
	serv, locker := newTestService(store, s, now)

	report, err := serv.RunExpiry(ctx)
	require.NoError(t, err)
	require.Equal(t, ExpiryReport{}, report)
	require.Equal(t, 0, locker.locks)
	require.Empty(t, store.tnxByType(acct, model.TnxExpired))
}

func TestRunExpiryMultipleAccounts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.June, 1, 3, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)

	store := newFakeStore()
	a := store.addAccount("client-a", 100, model.TierSilver, time.Time{})
	b := store.addAccount("client-b", 30, model.TierSilver, time.Time{})
	store.addTnx(a, 100, model.TnxEarned, "sale-a", &past, now.AddDate(-1, 0, 0))
	store.addTnx(b, 30, model.TnxEarned, "sale-b", &past, now.AddDate(-1, 0, 0))

	serv, _ := newTestService(store, testSettings(), now)

	report, err := serv.RunExpiry(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), report.ClientsAffected)
	require.Equal(t, int64(130), report.TotalPointsExpired)
}
