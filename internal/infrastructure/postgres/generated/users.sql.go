package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const accountExists = `-- name: AccountExists :one
SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)
`

func (q *Queries) AccountExists(ctx context.Context, id string) (bool, error) {
	row := q.db.QueryRow(ctx, accountExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createUser = `-- name: CreateUser :exec
INSERT INTO users (id, email, first_name, last_name, profile_image, password_hash, balance, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
`

type CreateUserParams struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	FirstName    string             `json:"first_name"`
	LastName     string             `json:"last_name"`
	ProfileImage string             `json:"profile_image"`
	PasswordHash string             `json:"password_hash"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.Exec(ctx, createUser,
		arg.ID,
		arg.Email,
		arg.FirstName,
		arg.LastName,
		arg.ProfileImage,
		arg.PasswordHash,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const creditBalance = `-- name: CreditBalance :one
UPDATE users SET balance = balance + $2, updated_at = $3 WHERE id = $1
RETURNING balance
`

type CreditBalanceParams struct {
	ID        string             `json:"id"`
	Amount    int64              `json:"amount"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreditBalance(ctx context.Context, arg CreditBalanceParams) (int64, error) {
	row := q.db.QueryRow(ctx, creditBalance, arg.ID, arg.Amount, arg.UpdatedAt)
	var balance int64
	err := row.Scan(&balance)
	return balance, err
}

const debitBalance = `-- name: DebitBalance :one
UPDATE users SET balance = balance - $2, updated_at = $3 WHERE id = $1 AND balance >= $2
RETURNING balance
`

type DebitBalanceParams struct {
	ID        string             `json:"id"`
	Amount    int64              `json:"amount"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) DebitBalance(ctx context.Context, arg DebitBalanceParams) (int64, error) {
	row := q.db.QueryRow(ctx, debitBalance, arg.ID, arg.Amount, arg.UpdatedAt)
	var balance int64
	err := row.Scan(&balance)
	return balance, err
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT id, balance, updated_at FROM users WHERE id = $1
`

type GetAccountByIDRow struct {
	ID        string             `json:"id"`
	Balance   int64              `json:"balance"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) GetAccountByID(ctx context.Context, id string) (GetAccountByIDRow, error) {
	row := q.db.QueryRow(ctx, getAccountByID, id)
	var i GetAccountByIDRow
	err := row.Scan(&i.ID, &i.Balance, &i.UpdatedAt)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, email, first_name, last_name, profile_image, password_hash, balance, created_at, updated_at FROM users WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.FirstName,
		&i.LastName,
		&i.ProfileImage,
		&i.PasswordHash,
		&i.Balance,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, email, first_name, last_name, profile_image, password_hash, balance, created_at, updated_at FROM users WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.FirstName,
		&i.LastName,
		&i.ProfileImage,
		&i.PasswordHash,
		&i.Balance,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateUserProfile = `-- name: UpdateUserProfile :one
UPDATE users SET first_name = $2, last_name = $3, updated_at = $4 WHERE id = $1
RETURNING id, email, first_name, last_name, profile_image, password_hash, balance, created_at, updated_at
`

type UpdateUserProfileParams struct {
	ID        string             `json:"id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUserProfile,
		arg.ID,
		arg.FirstName,
		arg.LastName,
		arg.UpdatedAt,
	)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.FirstName,
		&i.LastName,
		&i.ProfileImage,
		&i.PasswordHash,
		&i.Balance,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
