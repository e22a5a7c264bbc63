package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iho/goppob/internal/adapter/http/dto"
	"github.com/iho/goppob/internal/usecase"
)

type consistencyCheckerStub struct {
	report *usecase.ConsistencyReport
	err    error
}

func (s *consistencyCheckerStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.report, s.err
}

func TestConsistencyHandler(t *testing.T) {
	tests := []struct {
		name     string
		stub     *consistencyCheckerStub
		wantHTTP int
		wantOK   bool
	}{
		{
			name:     "consistent",
			stub:     &consistencyCheckerStub{report: &usecase.ConsistencyReport{AccountsChecked: 3}},
			wantHTTP: http.StatusOK,
			wantOK:   true,
		},
		{
			name: "inconsistent",
			stub: &consistencyCheckerStub{
				report: &usecase.ConsistencyReport{AccountsChecked: 3, MismatchedAccounts: []string{"user-2"}},
				err:    fmt.Errorf("%w: 1 of 3 accounts", usecase.ErrInconsistentLedger),
			},
			wantHTTP: http.StatusConflict,
		},
		{
			name:     "store failure",
			stub:     &consistencyCheckerStub{err: errors.New("db down")},
			wantHTTP: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewConsistencyHandler(tt.stub).CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/consistency", nil))

			assert.Equal(t, tt.wantHTTP, rec.Code)
			if tt.stub.report == nil {
				return
			}
			var data dto.ConsistencyResponse
			decodeData(t, rec, &data)
			assert.Equal(t, tt.wantOK, data.Consistent)
			assert.Equal(t, tt.stub.report.AccountsChecked, data.AccountsChecked)
		})
	}
}
