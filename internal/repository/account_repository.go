package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/domain"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
)

// ErrAccountNotFound is returned when no account matches the id and owner
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines authenticator account storage
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateBatch(ctx context.Context, accounts []*domain.Account) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Account, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Account, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	// NextCounter returns the current HOTP counter and stores counter+1
	NextCounter(ctx context.Context, userID string, id uuid.UUID) (uint64, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, user_id, type, issuer, account_name, algorithm, digits, period, counter,
	secret_encrypted, created_at, updated_at`

const insertAccountSQL = `INSERT INTO otp_accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
	RETURNING created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	row := r.pool.QueryRow(ctx, insertAccountSQL, insertArgs(account)...)
	if err := row.Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// CreateBatch inserts all accounts in one transaction
func (r *accountRepository) CreateBatch(ctx context.Context, accounts []*domain.Account) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, a := range accounts {
			account := a
			batch.Queue(insertAccountSQL, insertArgs(account)...).QueryRow(func(row pgx.Row) error {
				return row.Scan(&account.CreatedAt, &account.UpdatedAt)
			})
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to import accounts: %w", err)
		}
		return nil
	})
}

func (r *accountRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM otp_accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	account, err := pgx.CollectExactlyOneRow(rows, scanAccount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *accountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM otp_accounts WHERE user_id = $1 ORDER BY issuer, account_name, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	accounts, err := pgx.CollectRows(rows, scanAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM otp_accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) NextCounter(ctx context.Context, userID string, id uuid.UUID) (uint64, error) {
	var counter int64
	err := r.pool.QueryRow(ctx,
		`UPDATE otp_accounts SET counter = counter + 1, updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND type = 'HOTP'
		 RETURNING counter - 1`, id, userID).Scan(&counter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to advance counter: %w", err)
	}
	return uint64(counter), nil
}

func insertArgs(a *domain.Account) []any {
	return []any{
		a.ID, a.UserID, string(a.Type), a.Issuer, a.AccountName, a.Algorithm.String(),
		a.Digits, a.Period, int64(a.Counter), a.SecretEncrypted,
	}
}

func scanAccount(row pgx.CollectableRow) (*domain.Account, error) {
	var (
		a         domain.Account
		accType   string
		algorithm string
		counter   int64
	)
	err := row.Scan(&a.ID, &a.UserID, &accType, &a.Issuer, &a.AccountName, &algorithm,
		&a.Digits, &a.Period, &counter, &a.SecretEncrypted, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	alg, err := otp.ParseAlgorithm(algorithm)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", a.ID, err)
	}
	a.Type = domain.AccountType(accType)
	a.Algorithm = alg
	a.Counter = uint64(counter)
	return &a, nil
}
