package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	sq "github.com/Masterminds/squirrel"
	interf "github.com/UmarEjaz/AestheTech-sub001/internal/interfaces"
	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type LoyaltyDB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPool() (*pgxpool.Pool, error) {
	// config
	purl := os.Getenv("SALON_DB")
	if purl == "" {
		return nil, fmt.Errorf("env SALON_DB is not set")
	}
	port := os.Getenv("SALON_DB_PORT")
	if port == "" {
		return nil, fmt.Errorf("env SALON_DB_PORT is not set")
	}
	user := os.Getenv("SALON_DB_USER")
	if user == "" {
		return nil, fmt.Errorf("env SALON_DB_USER is not set")
	}
	password := os.Getenv("SALON_DB_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("env SALON_DB_PASSWORD is not set")
	}
	database := os.Getenv("SALON_DB_BASE")
	if database == "" {
		return nil, fmt.Errorf("env SALON_DB_BASE is not set")
	}
	dsn := "postgres://" + user + ":" + password + "@" + purl + ":" + port + "/" + database

	return pgxpool.New(context.Background(), dsn)
}

func NewLoyaltyDB(logger *zap.Logger, pool *pgxpool.Pool) *LoyaltyDB {
	return &LoyaltyDB{pool, logger}
}

// WithAccountTx runs fn inside a transaction holding the account row
// FOR UPDATE, so conflicting writers on the same client serialize. The
// account is created lazily on first use.
func (l *LoyaltyDB) WithAccountTx(ctx context.Context, clientId string, fn func(tx interf.AccountTx) error) error {
	account, err := l.accountUUID(ctx, clientId)
	if err != nil {
		return err
	}
	return l.WithAccountTxByUUID(ctx, account, fn)
}

func (l *LoyaltyDB) WithAccountTxByUUID(ctx context.Context, account uuid.UUID, fn func(tx interf.AccountTx) error) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback(ctx)
		}
	}()

	// lock the balance row
	var acct model.LoyaltyAccount
	var pguuid pgtype.UUID
	var birthday pgtype.Date
	row := tx.QueryRow(ctx,
		"SELECT uuid, clientid, balance, tier, birthday FROM accounts WHERE uuid = $1 FOR UPDATE", account)
	if err := row.Scan(&pguuid, &acct.ClientID, &acct.Balance, &acct.Tier, &birthday); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("account %w", model.ErrNotFound)
		}
		return err
	}
	acct.UUID, _ = uuid.FromBytes(pguuid.Bytes[:])
	if birthday.Status == pgtype.Present {
		acct.Birthday = birthday.Time
	}

	atx := &accountTx{tx: tx, acct: acct, logger: l.logger}
	if err := fn(atx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

// accountUUID resolves (or lazily creates) the account of a client.
func (l *LoyaltyDB) accountUUID(ctx context.Context, clientId string) (uuid.UUID, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer conn.Release()

	var pguuid pgtype.UUID
	row := conn.QueryRow(ctx, "SELECT uuid FROM accounts WHERE clientid = $1", clientId)
	err = row.Scan(&pguuid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return l.accountCreate(ctx, clientId)
		}
		return uuid.Nil, err
	}
	account, _ := uuid.FromBytes(pguuid.Bytes[:])
	return account, nil
}

func (l *LoyaltyDB) accountCreate(ctx context.Context, clientId string) (uuid.UUID, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer conn.Release()

	account := uuid.New()
	sql, args, err := sq.Insert("accounts").
		Columns("uuid", "clientid", "balance", "tier").
		Values(account, clientId, 0, model.TierSilver).
		Suffix("ON CONFLICT (clientid) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return uuid.Nil, err
	}
	if _, err = conn.Exec(ctx, sql, args...); err != nil {
		l.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return uuid.Nil, err
	}
	// a concurrent creation may have won the upsert
	var pguuid pgtype.UUID
	row := conn.QueryRow(ctx, "SELECT uuid FROM accounts WHERE clientid = $1", clientId)
	if err := row.Scan(&pguuid); err != nil {
		return uuid.Nil, err
	}
	account, _ = uuid.FromBytes(pguuid.Bytes[:])
	return account, nil
}

// AccountsWithExpiredPoints lists accounts holding EARNED/BONUS rows
// whose expiry date has passed.
func (l *LoyaltyDB) AccountsWithExpiredPoints(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	sql, args, err := sq.Select("DISTINCT account").
		From("tnx").
		Where(sq.Eq{"typetnx": []model.TnxType{model.TnxEarned, model.TnxBonus}}).
		Where(sq.NotEq{"expiresat": nil}).
		Where(sq.LtOrEq{"expiresat": now}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		l.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return nil, err
	}
	defer rows.Close()

	var accounts []uuid.UUID
	for rows.Next() {
		var pguuid pgtype.UUID
		if err := rows.Scan(&pguuid); err != nil {
			return nil, err
		}
		account, _ := uuid.FromBytes(pguuid.Bytes[:])
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (l *LoyaltyDB) GetAccount(ctx context.Context, clientId string) (model.LoyaltyAccount, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return model.LoyaltyAccount{}, err
	}
	defer conn.Release()

	var acct model.LoyaltyAccount
	var pguuid pgtype.UUID
	var birthday pgtype.Date
	row := conn.QueryRow(ctx,
		"SELECT uuid, clientid, balance, tier, birthday FROM accounts WHERE clientid = $1", clientId)
	if err := row.Scan(&pguuid, &acct.ClientID, &acct.Balance, &acct.Tier, &birthday); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LoyaltyAccount{}, fmt.Errorf("account %w", model.ErrNotFound)
		}
		return model.LoyaltyAccount{}, err
	}
	acct.UUID, _ = uuid.FromBytes(pguuid.Bytes[:])
	if birthday.Status == pgtype.Present {
		acct.Birthday = birthday.Time
	}
	return acct, nil
}

func (l *LoyaltyDB) GetBalance(ctx context.Context, clientId string) (int64, error) {
	acct, err := l.GetAccount(ctx, clientId)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

func (l *LoyaltyDB) GetTnx(ctx context.Context, clientId string, from time.Time, to time.Time) ([]model.LoyaltyTransaction, error) {
	account, err := l.accountUUID(ctx, clientId)
	if err != nil {
		return nil, err
	}
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	sql, args, err := sq.Select("id", "account", "points", "typetnx", "description", "saleid", "expiresat", "createdat").
		From("tnx").
		Where(sq.Eq{"account": account}).
		Where(sq.GtOrEq{"createdat": from}).
		Where(sq.LtOrEq{"createdat": to}).
		OrderBy("createdat").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tnxs []model.LoyaltyTransaction
	for rows.Next() {
		tnx, err := scanTnx(rows)
		if err != nil {
			return nil, err
		}
		tnxs = append(tnxs, tnx)
	}
	return tnxs, rows.Err()
}

func scanTnx(row pgx.Row) (model.LoyaltyTransaction, error) {
	var tnx model.LoyaltyTransaction
	var id, account pgtype.UUID
	var saleId pgtype.Text
	var expiresAt pgtype.Timestamptz
	err := row.Scan(&id, &account, &tnx.Points, &tnx.Type, &tnx.Description, &saleId, &expiresAt, &tnx.CreatedAt)
	if err != nil {
		return tnx, err
	}
	tnx.UUID, _ = uuid.FromBytes(id.Bytes[:])
	tnx.Account, _ = uuid.FromBytes(account.Bytes[:])
	tnx.SaleID = saleId.String
	if expiresAt.Status == pgtype.Present {
		t := expiresAt.Time
		tnx.ExpiresAt = &t
	}
	return tnx, nil
}
