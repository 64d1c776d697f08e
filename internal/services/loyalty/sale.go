package loyalty

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	interf "github.com/UmarEjaz/AestheTech-sub001/internal/interfaces"
	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LoyaltyService struct {
	logger   *zap.Logger
	db       interf.LoyaltyStorage
	cache    interf.CacheStorage
	settings interf.SettingsStorage
	clock    interf.Clock
	locker   interf.Locker
}

func NewLoyaltyService(logger *zap.Logger, db interf.LoyaltyStorage, cache interf.CacheStorage, settings interf.SettingsStorage, clock interf.Clock, locker interf.Locker) *LoyaltyService {
	return &LoyaltyService{logger, db, cache, settings, clock, locker}
}

type PaymentInput struct {
	Method      string `json:"method"`
	AmountCents int64  `json:"amountCents"`
}

type SaleInput struct {
	SaleID        string         `json:"saleId"`
	ClientID      string         `json:"clientId"`
	SubtotalCents int64          `json:"subtotalCents"`
	BasePoints    int64          `json:"basePoints"` // per-service and per-product point values, summed
	RedeemPoints  int64          `json:"redeemPoints"`
	Payments      []PaymentInput `json:"payments"`
}

type SaleSettlement struct {
	EarnedPoints   int64      `json:"earnedPoints"`
	BonusPoints    int64      `json:"bonusPoints"`
	RedeemedPoints int64      `json:"redeemedPoints"`
	NewBalance     int64      `json:"newBalance"`
	Tier           model.Tier `json:"tier"`
	DiscountCents  int64      `json:"discountCents"`
	TaxCents       int64      `json:"taxCents"`
	TotalCents     int64      `json:"totalCents"`
}

// Completion of a sale: validate redemption and payments, then debit
// redeemed points, credit earned points and birthday bonus, and recompute
// the tier once on the final balance. Everything runs inside a single
// account transaction; a failed step leaves no partial ledger.
func (l *LoyaltyService) SettleSale(ctx context.Context, in SaleInput) (SaleSettlement, error) {
	settings, err := l.settings.Get(ctx)
	if err != nil {
		return SaleSettlement{}, err
	}
	if in.SaleID == "" || in.ClientID == "" {
		return SaleSettlement{}, &model.ValidationError{Reason: "saleId and clientId are required"}
	}
	if in.RedeemPoints < 0 || in.SubtotalCents < 0 || in.BasePoints < 0 {
		return SaleSettlement{}, &model.ValidationError{Reason: "negative amounts are not allowed"}
	}

	now := l.clock.Now().In(settings.Location())

	var out SaleSettlement
	err = l.db.WithAccountTx(ctx, in.ClientID, func(tx interf.AccountTx) error {
		acct := tx.Account()

		// a redelivered sale event must not settle twice
		if _, err := tx.InvoiceBySale(ctx, in.SaleID); err == nil {
			return &model.ConsistencyError{Reason: fmt.Sprintf("sale %s is already settled", in.SaleID)}
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}

		// redemption
		if in.RedeemPoints > acct.Balance {
			return fmt.Errorf("redeem %d with balance %d: %w", in.RedeemPoints, acct.Balance, model.ErrInsufficientPoints)
		}
		discount := in.RedeemPoints * settings.RedemptionRateCents
		if discount > in.SubtotalCents {
			return &model.ValidationError{Reason: "redeemed value exceeds sale amount"}
		}

		// tax on the post-redemption amount, payments compared in whole cents
		taxable := in.SubtotalCents - discount
		tax := taxable * settings.TaxRateBps / 10000
		total := taxable + tax
		var paid int64
		for _, p := range in.Payments {
			paid += p.AmountCents
		}
		if paid != total {
			return &model.ValidationError{Reason: fmt.Sprintf("payments total %d does not match sale total %d", paid, total)}
		}

		inv := model.Invoice{
			UUID:          uuid.New(),
			SaleID:        in.SaleID,
			ClientID:      in.ClientID,
			SubtotalCents: in.SubtotalCents,
			DiscountCents: discount,
			TaxCents:      tax,
			TotalCents:    total,
			CreatedAt:     now,
		}
		if err := tx.CreateInvoice(ctx, inv); err != nil {
			return err
		}
		for _, p := range in.Payments {
			pay := model.Payment{UUID: uuid.New(), Invoice: inv.UUID, Method: p.Method, AmountCents: p.AmountCents}
			if err := tx.CreatePayment(ctx, pay); err != nil {
				return err
			}
		}

		balance := acct.Balance
		if in.RedeemPoints > 0 {
			balance -= in.RedeemPoints
			tnx := model.LoyaltyTransaction{
				UUID:        uuid.New(),
				Account:     acct.UUID,
				Points:      -in.RedeemPoints,
				Type:        model.TnxRedeemed,
				Description: fmt.Sprintf("redeemed on sale %s", in.SaleID),
				SaleID:      in.SaleID,
				CreatedAt:   now,
			}
			if err := tx.AppendTransaction(ctx, tnx); err != nil {
				return err
			}
		}

		// earn at the multiplier of the tier the client held entering the sale
		var expiresAt *time.Time
		if settings.PointsExpiryEnabled {
			exp := AddMonthsClamped(now, settings.PointsExpiryMonths)
			expiresAt = &exp
		}
		earned := EarnPoints(in.BasePoints, taxable, acct.Tier, settings)
		if earned > 0 {
			balance += earned
			tnx := model.LoyaltyTransaction{
				UUID:        uuid.New(),
				Account:     acct.UUID,
				Points:      earned,
				Type:        model.TnxEarned,
				Description: fmt.Sprintf("earned on sale %s", in.SaleID),
				SaleID:      in.SaleID,
				ExpiresAt:   expiresAt,
				CreatedAt:   now,
			}
			if err := tx.AppendTransaction(ctx, tnx); err != nil {
				return err
			}
		}

		// birthday bonus, at most once per calendar year; the duplicate
		// check runs inside the locked transaction to close the race
		// between two concurrent sales for the same client
		var bonus int64
		if settings.BirthdayBonusEnabled && !acct.Birthday.IsZero() && birthdayMatches(acct.Birthday, now) {
			granted, err := tx.BonusGrantedInYear(ctx, now.Year())
			if err != nil {
				return err
			}
			if !granted {
				bonus = settings.BirthdayBonusPoints
				balance += bonus
				tnx := model.LoyaltyTransaction{
					UUID:        uuid.New(),
					Account:     acct.UUID,
					Points:      bonus,
					Type:        model.TnxBonus,
					Description: fmt.Sprintf("birthday bonus %d", now.Year()),
					SaleID:      in.SaleID,
					ExpiresAt:   expiresAt,
					CreatedAt:   now,
				}
				if err := tx.AppendTransaction(ctx, tnx); err != nil {
					return err
				}
			}
		}

		tier := CalculateTier(balance, settings)
		if err := tx.UpdateBalance(ctx, balance, tier); err != nil {
			return err
		}

		out = SaleSettlement{
			EarnedPoints:   earned,
			BonusPoints:    bonus,
			RedeemedPoints: in.RedeemPoints,
			NewBalance:     balance,
			Tier:           tier,
			DiscountCents:  discount,
			TaxCents:       tax,
			TotalCents:     total,
		}
		return nil
	})
	if err != nil {
		return SaleSettlement{}, err
	}

	l.invalidate(ctx, in.ClientID)
	return out, nil
}

type RefundReversal struct {
	PointsReversed int64      `json:"pointsReversed"`
	NewBalance     int64      `json:"newBalance"`
	Tier           model.Tier `json:"tier"`
}

// Refund of amount R against an invoice with total T reverses
// round(earned * R/T) points, clamped so the balance never goes
// negative; the ledger records the amount actually reversed.
func (l *LoyaltyService) ReverseRefundPoints(ctx context.Context, clientId string, saleId string, refundCents int64) (RefundReversal, error) {
	settings, err := l.settings.Get(ctx)
	if err != nil {
		return RefundReversal{}, err
	}
	if refundCents <= 0 {
		return RefundReversal{}, &model.ValidationError{Reason: "refund amount must be positive"}
	}
	now := l.clock.Now().In(settings.Location())

	var out RefundReversal
	err = l.db.WithAccountTx(ctx, clientId, func(tx interf.AccountTx) error {
		acct := tx.Account()
		inv, err := tx.InvoiceBySale(ctx, saleId)
		if err != nil {
			return err
		}
		if refundCents > inv.TotalCents {
			return &model.ValidationError{Reason: "refund exceeds invoice total"}
		}
		earned, err := tx.EarnedForSale(ctx, saleId)
		if err != nil {
			return err
		}
		if earned <= 0 || inv.TotalCents == 0 {
			out = RefundReversal{PointsReversed: 0, NewBalance: acct.Balance, Tier: acct.Tier}
			return nil
		}

		reversed := int64(math.Round(float64(earned) * float64(refundCents) / float64(inv.TotalCents)))
		if reversed > acct.Balance {
			reversed = acct.Balance // clamp, record what was actually reversed
		}
		balance := acct.Balance - reversed
		tier := CalculateTier(balance, settings)

		if reversed > 0 {
			tnx := model.LoyaltyTransaction{
				UUID:        uuid.New(),
				Account:     acct.UUID,
				Points:      -reversed,
				Type:        model.TnxAdjustment,
				Description: fmt.Sprintf("refund reversal on sale %s", saleId),
				SaleID:      saleId,
				CreatedAt:   now,
			}
			if err := tx.AppendTransaction(ctx, tnx); err != nil {
				return err
			}
			if err := tx.UpdateBalance(ctx, balance, tier); err != nil {
				return err
			}
		}
		out = RefundReversal{PointsReversed: reversed, NewBalance: balance, Tier: tier}
		return nil
	})
	if err != nil {
		return RefundReversal{}, err
	}

	l.invalidate(ctx, clientId)
	return out, nil
}

// balance, cache first
func (l *LoyaltyService) GetBalance(ctx context.Context, clientId string) (points int64, err error) {
	if l.cache != nil {
		points, err = l.cache.GetBalance(ctx, clientId)
		if err == nil {
			return points, nil
		}
	}
	points, err = l.db.GetBalance(ctx, clientId)
	if err != nil {
		return 0, err
	}
	if l.cache != nil {
		_ = l.cache.SetBalance(ctx, clientId, points)
	}
	return points, nil
}

func (l *LoyaltyService) GetAccount(ctx context.Context, clientId string) (model.LoyaltyAccount, error) {
	return l.db.GetAccount(ctx, clientId)
}

func (l *LoyaltyService) GetTnx(ctx context.Context, clientId string, from time.Time, to time.Time) ([]model.LoyaltyTransaction, error) {
	return l.db.GetTnx(ctx, clientId, from, to)
}

func (l *LoyaltyService) Settings(ctx context.Context) (model.Settings, error) {
	return l.settings.Get(ctx)
}

func (l *LoyaltyService) invalidate(ctx context.Context, clientId string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.InvalidateBalance(ctx, clientId); err != nil {
		l.logger.Error("invalidate balance cache",
			zap.String("client", clientId),
			zap.Error(err),
		)
	}
}

func birthdayMatches(birthday, now time.Time) bool {
	bm, bd := birthday.Month(), birthday.Day()
	nm, nd := now.Month(), now.Day()
	if bm == nm && bd == nd {
		return true
	}
	// Feb 29 birthdays celebrate on Feb 28 in non-leap years
	if bm == time.February && bd == 29 && nm == time.February && nd == 28 {
		return DaysInMonth(now.Year(), time.February) == 28
	}
	return false
}

func (l *LoyaltyService) Log(err error) {
	l.logger.Error(err.Error())
}
