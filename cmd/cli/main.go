package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/goppob/internal/adapter/http/dto"
	"github.com/iho/goppob/internal/infrastructure/postgres"
)

// bcryptGenerate is swapped in tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

// runMigrations and runMigrationsDown are swapped in tests.
var (
	runMigrations     = postgres.RunMigrations
	runMigrationsDown = postgres.RunMigrationsDown
)

func init() {
	// The API documents top_up_amount as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "goppob-cli",
		Short:         "GoPPOB CLI tool",
		Long:          `A command line interface for operating and calling the GoPPOB API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the GoPPOB API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("GOPPOB_TOKEN"), "Bearer token (defaults to $GOPPOB_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd(opts))

	rootCmd.AddCommand(
		ledgerCmd,
		migrateCmd(),
		loginCmd(opts),
		balanceCmd(opts),
		topUpCmd(opts),
		payCmd(opts),
		historyCmd(opts),
		servicesCmd(opts),
		hashPasswordCmd(),
	)
	return rootCmd
}

func migrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL (defaults to $DATABASE_URL)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				if databaseURL == "" {
					return errors.New("--database-url is required")
				}
				if err := runMigrations(databaseURL); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				if databaseURL == "" {
					return errors.New("--database-url is required")
				}
				if err := runMigrationsDown(databaseURL); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migration rolled back")
				return nil
			},
		},
	)
	return cmd
}

func consistencyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check that every balance matches its history",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report dto.ConsistencyResponse
			status, err := opts.call(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, &report)
			if err != nil && status != http.StatusConflict {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accounts checked: %d\n", report.AccountsChecked)
			if !report.Consistent {
				fmt.Fprintf(out, "Consistency check FAILED\nMismatched accounts: %v\n", report.MismatchedAccounts)
				return errors.New("ledger is inconsistent")
			}
			fmt.Fprintln(out, "Consistency check PASSED")
			return nil
		},
	}
}

func loginCmd(opts *options) *cobra.Command {
	var req dto.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.TokenResponse
			if _, err := opts.call(cmd.Context(), http.MethodPost, "/login", req, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Member email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Member password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func balanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BalanceResponse
			if _, err := opts.call(cmd.Context(), http.MethodGet, "/balance", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Balance)
			return nil
		},
	}
}

func topUpCmd(opts *options) *cobra.Command {
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "topup <amount>",
		Short: "Credit the balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			var resp dto.BalanceResponse
			req := dto.TopUpRequest{TopUpAmount: &amount}
			if _, err := opts.callWithKey(cmd.Context(), http.MethodPost, "/topup", req, &resp, idempotencyKey); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %d\n", resp.Balance)
			return nil
		},
	}
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	return cmd
}

func payCmd(opts *options) *cobra.Command {
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "pay <service_code>",
		Short: "Pay for a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.PaymentResponse
			req := dto.PaymentRequest{ServiceCode: args[0]}
			if _, err := opts.callWithKey(cmd.Context(), http.MethodPost, "/transaction", req, &resp, idempotencyKey); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	return cmd
}

func historyCmd(opts *options) *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List transaction history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("offset", strconv.Itoa(offset))
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}

			var resp dto.HistoryResponse
			if _, err := opts.call(cmd.Context(), http.MethodGet, "/transaction/history?"+query.Encode(), nil, &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "INVOICE\tTYPE\tAMOUNT\tDESCRIPTION\tCREATED")
			for _, r := range resp.Records {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					r.InvoiceNumber, r.TransactionType, r.TotalAmount,
					truncate(r.Description, 24), r.CreatedOn.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (0 for all)")
	return cmd
}

func servicesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List payable services",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp []dto.ServiceResponse
			if _, err := opts.call(cmd.Context(), http.MethodGet, "/services", nil, &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tTARIFF")
			for _, s := range resp {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", s.ServiceCode, s.ServiceName, s.ServiceTariff)
			}
			return tw.Flush()
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for seeding members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

// apiEnvelope mirrors dto.Envelope with the payload left undecoded.
type apiEnvelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// apiError is a non-zero envelope status.
type apiError struct {
	HTTPStatus int
	Status     int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %d (status %d): %s", e.HTTPStatus, e.Status, e.Message)
}

func (o *options) call(ctx context.Context, method, path string, body, out any) (int, error) {
	return o.callWithKey(ctx, method, path, body, out, "")
}

// callWithKey sends a request and decodes the envelope data into out. Data is
// decoded even for error envelopes so callers can report it.
func (o *options) callWithKey(ctx context.Context, method, path string, body, out any, idempotencyKey string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode data: %w", err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || env.Status != 0 {
		return resp.StatusCode, &apiError{HTTPStatus: resp.StatusCode, Status: env.Status, Message: env.Message}
	}
	return resp.StatusCode, nil
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
