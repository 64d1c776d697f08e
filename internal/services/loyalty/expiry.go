package loyalty

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	interf "github.com/UmarEjaz/AestheTech-sub001/internal/interfaces"
	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const expiryWorkers = 4

type ExpiryReport struct {
	ClientsAffected    int64 `json:"clientsAffected"`
	TotalPointsExpired int64 `json:"totalPointsExpired"`
}

// RunExpiry expires EARNED/BONUS points past their horizon. The whole
// job runs under the injected lock; an overlapping invocation gets
// ErrLockHeld and must not touch anything, first writer wins. Source
// rows get ExpiresAt nulled exactly once whether or not points were
// left to expire, so a second run right after the first finds nothing
// to do.
func (l *LoyaltyService) RunExpiry(ctx context.Context) (ExpiryReport, error) {
	settings, err := l.settings.Get(ctx)
	if err != nil {
		return ExpiryReport{}, err
	}
	if !settings.PointsExpiryEnabled {
		return ExpiryReport{}, nil
	}

	ok, err := l.locker.TryLock(ctx)
	if err != nil {
		return ExpiryReport{}, err
	}
	if !ok {
		return ExpiryReport{}, model.ErrLockHeld
	}
	defer func() {
		if err := l.locker.Unlock(ctx); err != nil {
			l.logger.Error("release expiry lock", zap.Error(err))
		}
	}()

	now := l.clock.Now().In(settings.Location())
	accounts, err := l.db.AccountsWithExpiredPoints(ctx, now)
	if err != nil {
		return ExpiryReport{}, err
	}

	var clients, expired int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(expiryWorkers)
	for _, account := range accounts {
		account := account
		g.Go(func() error {
			return l.expireAccount(gctx, account, settings, now, &clients, &expired)
		})
	}
	if err := g.Wait(); err != nil {
		return ExpiryReport{}, err
	}
	return ExpiryReport{ClientsAffected: clients, TotalPointsExpired: expired}, nil
}

func (l *LoyaltyService) expireAccount(ctx context.Context, account uuid.UUID, settings model.Settings, now time.Time, clients, expired *int64) error {
	var clientId string
	err := l.db.WithAccountTxByUUID(ctx, account, func(tx interf.AccountTx) error {
		acct := tx.Account()
		clientId = acct.ClientID

		points, sources, err := tx.ExpiredEarnings(ctx, now)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			return nil
		}

		// never expire more than the client still holds
		toExpire := points
		if toExpire > acct.Balance {
			toExpire = acct.Balance
		}
		if toExpire > 0 {
			balance := acct.Balance - toExpire
			tnx := model.LoyaltyTransaction{
				UUID:        uuid.New(),
				Account:     acct.UUID,
				Points:      -toExpire,
				Type:        model.TnxExpired,
				Description: fmt.Sprintf("expired %d points past %d month horizon", toExpire, settings.PointsExpiryMonths),
				CreatedAt:   now,
			}
			if err := tx.AppendTransaction(ctx, tnx); err != nil {
				return err
			}
			if err := tx.UpdateBalance(ctx, balance, CalculateTier(balance, settings)); err != nil {
				return err
			}
			atomic.AddInt64(clients, 1)
			atomic.AddInt64(expired, toExpire)
		}

		// mark sources processed even when nothing was expired
		return tx.ClearExpiry(ctx, sources)
	})
	if err != nil {
		l.logger.Error("expire account",
			zap.String("account", account.String()),
			zap.Error(err),
		)
		return err
	}
	if clientId != "" {
		l.invalidate(ctx, clientId)
	}
	return nil
}
