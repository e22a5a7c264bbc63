package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/usecase"
)

var testNow = time.Date(2023, 8, 17, 9, 30, 0, 0, time.UTC)

func beginMockTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBegin()
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx
}

func sql(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

func TestAccountRepository_GetByID(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(sql("SELECT id, balance, updated_at FROM users WHERE id = $1")).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "balance", "updated_at"}).
			AddRow("user-1", int64(250000), pgtype.Timestamptz{Time: testNow, Valid: true}))

	account, err := newAccountRepository(pool).GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Balance != 250000 || !account.UpdatedAt.Equal(testNow) {
		t.Fatalf("unexpected account %+v", account)
	}
	assertExpectations(t, pool)
}

func TestAccountRepository_GetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(sql("FROM users WHERE id = $1")).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := newAccountRepository(pool).GetByID(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountRepository_Credit(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectQuery(sql("UPDATE users SET balance = balance + $2")).
		WithArgs("user-1", int64(100000), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(350000)))

	balance, err := newAccountRepository(pool).Credit(context.Background(), tx, "user-1", 100000, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 350000 {
		t.Fatalf("expected balance 350000, got %d", balance)
	}
	assertExpectations(t, pool)
}

func TestAccountRepository_Debit(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(pool pgxmock.PgxPoolIface)
		wantBalance int64
		wantErr     error
	}{
		{
			name: "sufficient balance",
			setup: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectQuery(sql("UPDATE users SET balance = balance - $2, updated_at = $3 WHERE id = $1 AND balance >= $2")).
					WithArgs("user-1", int64(40000), pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(60000)))
			},
			wantBalance: 60000,
		},
		{
			name: "insufficient balance",
			setup: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectQuery(sql("AND balance >= $2")).
					WithArgs("user-1", int64(40000), pgxmock.AnyArg()).
					WillReturnError(pgx.ErrNoRows)
				pool.ExpectQuery(sql("SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)")).
					WithArgs("user-1").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: domain.ErrInsufficientBalance,
		},
		{
			name: "unknown account",
			setup: func(pool pgxmock.PgxPoolIface) {
				pool.ExpectQuery(sql("AND balance >= $2")).
					WithArgs("user-1", int64(40000), pgxmock.AnyArg()).
					WillReturnError(pgx.ErrNoRows)
				pool.ExpectQuery(sql("SELECT EXISTS")).
					WithArgs("user-1").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			tx := beginMockTx(t, pool)
			tt.setup(pool)

			balance, err := newAccountRepository(pool).Debit(context.Background(), tx, "user-1", 40000, testNow)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if balance != tt.wantBalance {
				t.Fatalf("expected balance %d, got %d", tt.wantBalance, balance)
			}
			assertExpectations(t, pool)
		})
	}
}

func TestHistoryRepository_LockInvoiceDay(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectExec(sql("SELECT pg_advisory_xact_lock($1::int4, $2::int4)")).
		WithArgs(invoiceLockNamespace, int32(20230817)).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	day := time.Date(2023, 8, 17, 0, 0, 0, 0, time.UTC)
	if err := newHistoryRepository(pool).LockInvoiceDay(context.Background(), tx, day); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertExpectations(t, pool)
}

func TestHistoryRepository_LastInvoiceNumber(t *testing.T) {
	day := time.Date(2023, 8, 17, 0, 0, 0, 0, time.UTC)
	end := day.AddDate(0, 0, 1).Add(-time.Nanosecond)

	t.Run("existing invoice", func(t *testing.T) {
		pool := newMockPool(t)
		tx := beginMockTx(t, pool)
		pool.ExpectQuery(sql("ORDER BY length(invoice_number) DESC, invoice_number DESC")).
			WithArgs(pgtype.Timestamptz{Time: day, Valid: true}, pgtype.Timestamptz{Time: end, Valid: true}).
			WillReturnRows(pgxmock.NewRows([]string{"invoice_number"}).AddRow("INV20230817-1000"))

		got, err := newHistoryRepository(pool).LastInvoiceNumber(context.Background(), tx, day, end)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "INV20230817-1000" {
			t.Fatalf("expected INV20230817-1000, got %q", got)
		}
	})

	t.Run("first of day", func(t *testing.T) {
		pool := newMockPool(t)
		tx := beginMockTx(t, pool)
		pool.ExpectQuery(sql("FROM history")).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(pgx.ErrNoRows)

		got, err := newHistoryRepository(pool).LastInvoiceNumber(context.Background(), tx, day, end)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "" {
			t.Fatalf("expected empty invoice, got %q", got)
		}
	})
}

func TestHistoryRepository_Create(t *testing.T) {
	entry := &domain.HistoryEntry{
		InvoiceNumber:   "INV20230817-001",
		UserID:          "user-1",
		TransactionType: domain.TransactionTypeTopUp,
		Description:     domain.TopUpDescription,
		TotalAmount:     100000,
		CreatedAt:       testNow,
	}

	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "inserted"},
		{name: "duplicate invoice", dbErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, wantErr: domain.ErrInvoiceConflict},
		{name: "unknown user", dbErr: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, wantErr: domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			tx := beginMockTx(t, pool)

			exec := pool.ExpectExec(sql("INSERT INTO history")).
				WithArgs("INV20230817-001", "user-1", "TOPUP", "Top Up Balance", int64(100000), pgxmock.AnyArg())
			if tt.dbErr != nil {
				exec.WillReturnError(tt.dbErr)
			} else {
				exec.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := newHistoryRepository(pool).Create(context.Background(), tx, entry)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHistoryRepository_ListByUser(t *testing.T) {
	limit := 3

	tests := []struct {
		name      string
		limit     *int
		wantLimit pgtype.Int8
	}{
		{name: "bounded", limit: &limit, wantLimit: pgtype.Int8{Int64: 3, Valid: true}},
		{name: "unbounded", limit: nil, wantLimit: pgtype.Int8{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			pool.ExpectQuery(sql("ORDER BY created_at DESC, id DESC")).
				WithArgs("user-1", int64(1), tt.wantLimit).
				WillReturnRows(pgxmock.NewRows([]string{"id", "invoice_number", "user_id", "transaction_type", "description", "total_amount", "created_at"}).
					AddRow(int64(2), "INV20230817-002", "user-1", "PAYMENT", "Pulsa", int64(40000), pgtype.Timestamptz{Time: testNow, Valid: true}).
					AddRow(int64(1), "INV20230817-001", "user-1", "TOPUP", "Top Up Balance", int64(100000), pgtype.Timestamptz{Time: testNow, Valid: true}))

			entries, err := newHistoryRepository(pool).ListByUser(context.Background(), "user-1", 1, tt.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(entries))
			}
			if entries[0].TransactionType != domain.TransactionTypePayment || entries[0].InvoiceNumber != "INV20230817-002" {
				t.Fatalf("unexpected first entry %+v", entries[0])
			}
			assertExpectations(t, pool)
		})
	}
}

func TestServiceRepository_GetByCode(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(sql("FROM services WHERE service_code = $1")).
		WithArgs("PULSA").
		WillReturnRows(pgxmock.NewRows([]string{"service_code", "service_name", "service_icon", "service_tariff", "created_at"}).
			AddRow("PULSA", "Pulsa", "icon.png", int64(40000), pgtype.Timestamptz{Time: testNow, Valid: true}))
	pool.ExpectQuery(sql("FROM services WHERE service_code = $1")).
		WithArgs("NOPE").
		WillReturnError(pgx.ErrNoRows)

	repo := newServiceRepository(pool)

	service, err := repo.GetByCode(context.Background(), "PULSA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.Tariff != 40000 || service.Name != "Pulsa" {
		t.Fatalf("unexpected service %+v", service)
	}

	if _, err := repo.GetByCode(context.Background(), "NOPE"); !errors.Is(err, domain.ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
	assertExpectations(t, pool)
}

func TestBannerRepository_List(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(sql("FROM banners ORDER BY created_at ASC")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "banner_name", "banner_image", "description", "created_at"}).
			AddRow(int64(1), "Banner 1", "b1.png", "first", pgtype.Timestamptz{Time: testNow, Valid: true}))

	banners, err := newBannerRepository(pool).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(banners) != 1 || banners[0].Name != "Banner 1" {
		t.Fatalf("unexpected banners %+v", banners)
	}
	assertExpectations(t, pool)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec(sql("INSERT INTO users")).
		WithArgs("user-1", "a@b.com", "A", "B", "", "hash", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	err := newUserRepository(pool).Create(context.Background(), &domain.User{
		ID: "user-1", Email: "a@b.com", FirstName: "A", LastName: "B", PasswordHash: "hash",
		CreatedAt: testNow, UpdatedAt: testNow,
	})
	if !errors.Is(err, domain.ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(sql("FROM users WHERE email = $1")).
		WithArgs("nobody@b.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := newUserRepository(pool).GetByEmail(context.Background(), "nobody@b.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLedgerRepository_FindBalanceMismatches(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	pool.ExpectQuery(sql("SELECT COUNT(*) FROM users")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
	pool.ExpectQuery(sql("LEFT JOIN history h ON h.user_id = u.id")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "balance", "history_balance"}).AddRow("user-2", int64(500), int64(400)))
	pool.ExpectCommit()

	checked, mismatched, err := newLedgerRepository(pool).FindBalanceMismatches(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checked != 3 {
		t.Fatalf("expected 3 accounts checked, got %d", checked)
	}
	if len(mismatched) != 1 || mismatched[0] != "user-2" {
		t.Fatalf("unexpected mismatches %v", mismatched)
	}
	assertExpectations(t, pool)
}

func TestOutboxRepository_GetUnpublished(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(sql("FROM outbox_events")).
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}).
			AddRow("evt-1", "user-1", domain.AggregateTypeAccount, domain.EventTypeTopUp, []byte(`{"amount":1000}`),
				pgtype.Timestamptz{Time: testNow, Valid: true}, pgtype.Timestamptz{}, false))

	events, err := newOutboxRepository(pool).GetUnpublished(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Payload["amount"] != float64(1000) || events[0].PublishedAt != nil {
		t.Fatalf("unexpected event %+v", events[0])
	}
	assertExpectations(t, pool)
}

func TestULIDGenerator_Unique(t *testing.T) {
	gen := NewULIDGenerator()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		if len(id) != 26 {
			t.Fatalf("expected 26-char ULID, got %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}
