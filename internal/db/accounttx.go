package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// accountTx wraps one pgx transaction with the account row locked.
type accountTx struct {
	tx     pgx.Tx
	acct   model.LoyaltyAccount
	logger *zap.Logger
}

func (a *accountTx) Account() model.LoyaltyAccount {
	return a.acct
}

func (a *accountTx) UpdateBalance(ctx context.Context, balance int64, tier model.Tier) error {
	sql, args, err := sq.Update("accounts").
		Set("balance", balance).
		Set("tier", tier).
		Where(sq.Eq{"uuid": a.acct.UUID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := a.tx.Exec(ctx, sql, args...); err != nil {
		a.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return err
	}
	return nil
}

func (a *accountTx) AppendTransaction(ctx context.Context, tnx model.LoyaltyTransaction) error {
	if tnx.UUID == uuid.Nil {
		tnx.UUID = uuid.New()
	}
	sql, args, err := sq.Insert("tnx").
		Columns("id", "account", "points", "typetnx", "description", "saleid", "expiresat", "createdat").
		Values(tnx.UUID, a.acct.UUID, tnx.Points, tnx.Type, tnx.Description, nullable(tnx.SaleID), tnx.ExpiresAt, tnx.CreatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := a.tx.Exec(ctx, sql, args...); err != nil {
		a.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return err
	}
	return nil
}

func (a *accountTx) BonusGrantedInYear(ctx context.Context, year int) (bool, error) {
	var count int64
	err := a.tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM tnx WHERE account = $1 AND typetnx = $2 AND date_part('year', createdat) = $3",
		a.acct.UUID, model.TnxBonus, year).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *accountTx) EarnedForSale(ctx context.Context, saleId string) (int64, error) {
	var points pgtype.Int8
	err := a.tx.QueryRow(ctx,
		"SELECT SUM(points) FROM tnx WHERE account = $1 AND typetnx = $2 AND saleid = $3",
		a.acct.UUID, model.TnxEarned, saleId).Scan(&points)
	if err != nil {
		return 0, err
	}
	if points.Status != pgtype.Present {
		return 0, nil
	}
	return points.Int, nil
}

func (a *accountTx) InvoiceBySale(ctx context.Context, saleId string) (model.Invoice, error) {
	var inv model.Invoice
	var id pgtype.UUID
	row := a.tx.QueryRow(ctx,
		"SELECT uuid, saleid, clientid, subtotal, discount, tax, total, createdat FROM invoices WHERE saleid = $1",
		saleId)
	err := row.Scan(&id, &inv.SaleID, &inv.ClientID, &inv.SubtotalCents, &inv.DiscountCents, &inv.TaxCents, &inv.TotalCents, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inv, fmt.Errorf("invoice %w", model.ErrNotFound)
		}
		return inv, err
	}
	inv.UUID, _ = uuid.FromBytes(id.Bytes[:])
	return inv, nil
}

// ExpiredEarnings sums the EARNED/BONUS rows of this account whose
// expiry has passed and returns their ids for ClearExpiry.
func (a *accountTx) ExpiredEarnings(ctx context.Context, now time.Time) (int64, []uuid.UUID, error) {
	sql, args, err := sq.Select("id", "points").
		From("tnx").
		Where(sq.Eq{"account": a.acct.UUID}).
		Where(sq.Eq{"typetnx": []model.TnxType{model.TnxEarned, model.TnxBonus}}).
		Where(sq.NotEq{"expiresat": nil}).
		Where(sq.LtOrEq{"expiresat": now}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, nil, err
	}
	rows, err := a.tx.Query(ctx, sql, args...)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	var total int64
	var sources []uuid.UUID
	for rows.Next() {
		var id pgtype.UUID
		var points int64
		if err := rows.Scan(&id, &points); err != nil {
			return 0, nil, err
		}
		source, _ := uuid.FromBytes(id.Bytes[:])
		sources = append(sources, source)
		total += points
	}
	return total, sources, rows.Err()
}

// ClearExpiry nulls ExpiresAt so each source row is processed exactly
// once; the rows themselves stay in the ledger untouched.
func (a *accountTx) ClearExpiry(ctx context.Context, sources []uuid.UUID) error {
	if len(sources) == 0 {
		return nil
	}
	sql, args, err := sq.Update("tnx").
		Set("expiresat", nil).
		Where(sq.Eq{"id": sources}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := a.tx.Exec(ctx, sql, args...); err != nil {
		a.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return err
	}
	return nil
}

func (a *accountTx) CreateInvoice(ctx context.Context, inv model.Invoice) error {
	sql, args, err := sq.Insert("invoices").
		Columns("uuid", "saleid", "clientid", "subtotal", "discount", "tax", "total", "createdat").
		Values(inv.UUID, inv.SaleID, inv.ClientID, inv.SubtotalCents, inv.DiscountCents, inv.TaxCents, inv.TotalCents, inv.CreatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := a.tx.Exec(ctx, sql, args...); err != nil {
		a.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return err
	}
	return nil
}

func (a *accountTx) CreatePayment(ctx context.Context, pay model.Payment) error {
	sql, args, err := sq.Insert("payments").
		Columns("uuid", "invoice", "method", "amount").
		Values(pay.UUID, pay.Invoice, pay.Method, pay.AmountCents).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := a.tx.Exec(ctx, sql, args...); err != nil {
		a.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return err
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
