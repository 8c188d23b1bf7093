package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

const testMemberHeader = "X-Test-Member"

// testAuth trusts the member named in a header instead of a bearer token.
func testAuth() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id := req.Header().Get(testMemberHeader); id != "" {
				ctx = middleware.WithMember(ctx, id, "Member "+id)
			}
			return next(ctx, req)
		}
	}
}

type testClients struct {
	ledger *apiconnect.LedgerServiceClient
	groups *apiconnect.GroupServiceClient
}

// setupTestServer serves both services over a temp SQLite store.
func setupTestServer(t *testing.T) testClients {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	l := ledger.New(store)
	interceptors := connect.WithInterceptors(testAuth())

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(l), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(l), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return testClients{
		ledger: apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
		groups: apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
	}
}

// as builds a request sent on behalf of memberID.
func as[T any](memberID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if memberID != "" {
		req.Header().Set(testMemberHeader, memberID)
	}
	return req
}

func createGroup(t *testing.T, c testClients, creator string, members ...string) *api.Group {
	t.Helper()
	req := &api.CreateGroupRequest{Name: "Lisbon 2026", Category: "trip", Currency: "EUR"}
	for _, id := range members {
		req.Members = append(req.Members, api.MemberInput{MemberID: id, DisplayName: "Member " + id})
	}
	resp, err := c.groups.CreateGroup(context.Background(), as(creator, req))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func equalExpense(groupID, payer string, amount int64, members ...string) *api.PostExpenseRequest {
	participants := make([]api.Participant, len(members))
	for i, id := range members {
		participants[i] = api.Participant{MemberID: id}
	}
	return &api.PostExpenseRequest{
		GroupID: groupID,
		ExpenseFields: api.ExpenseFields{
			Description:  "Dinner",
			AmountCents:  amount,
			SplitType:    "equal",
			PaidBy:       payer,
			Participants: participants,
		},
	}
}

func percent(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// assertFailure checks an RPC error's code and structured detail.
func assertFailure(t *testing.T, err error, code connect.Code, kind, reason string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("expected code %s, got %s (%v)", code, got, err)
	}
	gotKind, gotReason, _, ok := ErrorDetail(err)
	if !ok {
		t.Fatalf("expected structured error detail on %v", err)
	}
	if gotKind != kind {
		t.Errorf("expected kind %q, got %q", kind, gotKind)
	}
	if reason != "" && gotReason != reason {
		t.Errorf("expected reason %q, got %q", reason, gotReason)
	}
}
