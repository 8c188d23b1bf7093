// Package apiconnect mounts the ledger.v1 services on Connect and provides
// typed clients for them.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

const (
	// LedgerServiceName is the fully-qualified name of the LedgerService service.
	LedgerServiceName = "ledger.v1.LedgerService"
)

// Procedure paths of LedgerService.
const (
	LedgerServicePostExpenseProcedure           = "/ledger.v1.LedgerService/PostExpense"
	LedgerServiceEditExpenseProcedure           = "/ledger.v1.LedgerService/EditExpense"
	LedgerServiceVoidExpenseProcedure           = "/ledger.v1.LedgerService/VoidExpense"
	LedgerServiceGetExpenseProcedure            = "/ledger.v1.LedgerService/GetExpense"
	LedgerServiceListExpensesProcedure          = "/ledger.v1.LedgerService/ListExpenses"
	LedgerServiceRecordSettlementProcedure      = "/ledger.v1.LedgerService/RecordSettlement"
	LedgerServiceGetGroupBalancesProcedure      = "/ledger.v1.LedgerService/GetGroupBalances"
	LedgerServiceGetCrossGroupBalancesProcedure = "/ledger.v1.LedgerService/GetCrossGroupBalances"
)

// LedgerServiceHandler is implemented by the server side of LedgerService.
type LedgerServiceHandler interface {
	PostExpense(context.Context, *connect.Request[api.PostExpenseRequest]) (*connect.Response[api.EntryResponse], error)
	EditExpense(context.Context, *connect.Request[api.EditExpenseRequest]) (*connect.Response[api.EntryResponse], error)
	VoidExpense(context.Context, *connect.Request[api.VoidExpenseRequest]) (*connect.Response[api.VoidExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.EntryResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.EntryResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetCrossGroupBalances(context.Context, *connect.Request[api.GetCrossGroupBalancesRequest]) (*connect.Response[api.GetCrossGroupBalancesResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	reads := append([]connect.HandlerOption{connect.WithIdempotency(connect.IdempotencyNoSideEffects)}, opts...)

	handlers := map[string]http.Handler{
		LedgerServicePostExpenseProcedure:           connect.NewUnaryHandler(LedgerServicePostExpenseProcedure, svc.PostExpense, opts...),
		LedgerServiceEditExpenseProcedure:           connect.NewUnaryHandler(LedgerServiceEditExpenseProcedure, svc.EditExpense, opts...),
		LedgerServiceVoidExpenseProcedure:           connect.NewUnaryHandler(LedgerServiceVoidExpenseProcedure, svc.VoidExpense, opts...),
		LedgerServiceGetExpenseProcedure:            connect.NewUnaryHandler(LedgerServiceGetExpenseProcedure, svc.GetExpense, reads...),
		LedgerServiceListExpensesProcedure:          connect.NewUnaryHandler(LedgerServiceListExpensesProcedure, svc.ListExpenses, reads...),
		LedgerServiceRecordSettlementProcedure:      connect.NewUnaryHandler(LedgerServiceRecordSettlementProcedure, svc.RecordSettlement, opts...),
		LedgerServiceGetGroupBalancesProcedure:      connect.NewUnaryHandler(LedgerServiceGetGroupBalancesProcedure, svc.GetGroupBalances, reads...),
		LedgerServiceGetCrossGroupBalancesProcedure: connect.NewUnaryHandler(LedgerServiceGetCrossGroupBalancesProcedure, svc.GetCrossGroupBalances, reads...),
	}
	return "/" + LedgerServiceName + "/", routeProcedures(handlers)
}

// LedgerServiceClient is a client for LedgerService.
type LedgerServiceClient struct {
	postExpense           *connect.Client[api.PostExpenseRequest, api.EntryResponse]
	editExpense           *connect.Client[api.EditExpenseRequest, api.EntryResponse]
	voidExpense           *connect.Client[api.VoidExpenseRequest, api.VoidExpenseResponse]
	getExpense            *connect.Client[api.GetExpenseRequest, api.EntryResponse]
	listExpenses          *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	recordSettlement      *connect.Client[api.RecordSettlementRequest, api.EntryResponse]
	getGroupBalances      *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	getCrossGroupBalances *connect.Client[api.GetCrossGroupBalancesRequest, api.GetCrossGroupBalancesResponse]
}

// NewLedgerServiceClient constructs a client for the LedgerService served at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &LedgerServiceClient{
		postExpense:           connect.NewClient[api.PostExpenseRequest, api.EntryResponse](httpClient, baseURL+LedgerServicePostExpenseProcedure, opts...),
		editExpense:           connect.NewClient[api.EditExpenseRequest, api.EntryResponse](httpClient, baseURL+LedgerServiceEditExpenseProcedure, opts...),
		voidExpense:           connect.NewClient[api.VoidExpenseRequest, api.VoidExpenseResponse](httpClient, baseURL+LedgerServiceVoidExpenseProcedure, opts...),
		getExpense:            connect.NewClient[api.GetExpenseRequest, api.EntryResponse](httpClient, baseURL+LedgerServiceGetExpenseProcedure, opts...),
		listExpenses:          connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+LedgerServiceListExpensesProcedure, opts...),
		recordSettlement:      connect.NewClient[api.RecordSettlementRequest, api.EntryResponse](httpClient, baseURL+LedgerServiceRecordSettlementProcedure, opts...),
		getGroupBalances:      connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+LedgerServiceGetGroupBalancesProcedure, opts...),
		getCrossGroupBalances: connect.NewClient[api.GetCrossGroupBalancesRequest, api.GetCrossGroupBalancesResponse](httpClient, baseURL+LedgerServiceGetCrossGroupBalancesProcedure, opts...),
	}
}

func (c *LedgerServiceClient) PostExpense(ctx context.Context, req *connect.Request[api.PostExpenseRequest]) (*connect.Response[api.EntryResponse], error) {
	return c.postExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) EditExpense(ctx context.Context, req *connect.Request[api.EditExpenseRequest]) (*connect.Response[api.EntryResponse], error) {
	return c.editExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) VoidExpense(ctx context.Context, req *connect.Request[api.VoidExpenseRequest]) (*connect.Response[api.VoidExpenseResponse], error) {
	return c.voidExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.EntryResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.EntryResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetCrossGroupBalances(ctx context.Context, req *connect.Request[api.GetCrossGroupBalancesRequest]) (*connect.Response[api.GetCrossGroupBalancesResponse], error) {
	return c.getCrossGroupBalances.CallUnary(ctx, req)
}

// routeProcedures dispatches on the exact procedure path.
func routeProcedures(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
