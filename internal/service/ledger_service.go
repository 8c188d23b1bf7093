package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a new LedgerService backed by l.
func NewLedgerService(l *ledger.Ledger) *LedgerService {
	return &LedgerService{ledger: l}
}

// actor returns the authenticated member ID from ctx.
func actor(ctx context.Context) (string, error) {
	id := middleware.GetMemberID(ctx)
	if id == "" {
		return "", errUnauthenticated
	}
	return id, nil
}

// PostExpense splits and records a new expense.
func (s *LedgerService) PostExpense(ctx context.Context, req *connect.Request[api.PostExpenseRequest]) (*connect.Response[api.EntryResponse], error) {
	const op = "PostExpense"
	slog.Info("PostExpense request received",
		"group_id", req.Msg.GroupID,
		"amount_cents", req.Msg.AmountCents,
		"split_type", req.Msg.SplitType,
		"participants", len(req.Msg.Participants),
	)

	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}
	draft, err := expenseDraft(req.Msg.GroupID, req.Msg.ExpenseFields)
	if err != nil {
		return nil, toConnectError(op, err)
	}

	entry, err := s.ledger.Post(ctx, actorID, draft)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return s.entryResponse(ctx, op, entry)
}

// EditExpense replaces an expense if the caller holds its current version.
func (s *LedgerService) EditExpense(ctx context.Context, req *connect.Request[api.EditExpenseRequest]) (*connect.Response[api.EntryResponse], error) {
	const op = "EditExpense"
	slog.Info("EditExpense request received",
		"entry_id", req.Msg.EntryID,
		"version", req.Msg.Version,
	)

	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}
	draft, err := expenseDraft("", req.Msg.ExpenseFields)
	if err != nil {
		return nil, toConnectError(op, err)
	}

	entry, err := s.ledger.Edit(ctx, actorID, req.Msg.EntryID, req.Msg.Version, draft)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return s.entryResponse(ctx, op, entry)
}

// VoidExpense removes an expense or settlement from all balances.
func (s *LedgerService) VoidExpense(ctx context.Context, req *connect.Request[api.VoidExpenseRequest]) (*connect.Response[api.VoidExpenseResponse], error) {
	const op = "VoidExpense"
	slog.Info("VoidExpense request received", "entry_id", req.Msg.EntryID, "version", req.Msg.Version)

	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}
	if err := s.ledger.Void(ctx, actorID, req.Msg.EntryID, req.Msg.Version); err != nil {
		return nil, toConnectError(op, err)
	}
	return connect.NewResponse(&api.VoidExpenseResponse{}), nil
}

// GetExpense returns one active entry.
func (s *LedgerService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.EntryResponse], error) {
	const op = "GetExpense"
	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}

	entry, err := s.ledger.Entry(ctx, actorID, req.Msg.EntryID)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return s.entryResponse(ctx, op, entry)
}

// ListExpenses returns every active entry of a group, oldest first.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	const op = "ListExpenses"
	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}

	entries, err := s.ledger.Entries(ctx, actorID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	refs, err := s.ledger.MembersOf(ctx, entries...)
	if err != nil {
		return nil, toConnectError(op, err)
	}

	out := make([]*api.Entry, len(entries))
	for i, e := range entries {
		out[i] = toAPIEntry(e, refs)
	}
	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Entries: out}), nil
}

// RecordSettlement records a payment that reduces a debt between two members.
func (s *LedgerService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.EntryResponse], error) {
	const op = "RecordSettlement"
	slog.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromMember,
		"to", req.Msg.ToMember,
		"amount_cents", req.Msg.AmountCents,
	)

	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}
	date, err := parseDate(req.Msg.Date)
	if err != nil {
		return nil, toConnectError(op, err)
	}

	entry, err := s.ledger.RecordSettlement(ctx, actorID, ledger.SettlementDraft{
		GroupID:     req.Msg.GroupID,
		From:        req.Msg.FromMember,
		To:          req.Msg.ToMember,
		AmountCents: req.Msg.AmountCents,
		Date:        date,
		Note:        req.Msg.Note,
	})
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return s.entryResponse(ctx, op, entry)
}

// GetGroupBalances returns every member's net position in a group.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	const op = "GetGroupBalances"
	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}

	view, err := s.ledger.BalancesFor(ctx, actorID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return connect.NewResponse(toAPIGroupBalances(view)), nil
}

// GetCrossGroupBalances nets the caller's position against each counterparty
// over all of the caller's groups.
func (s *LedgerService) GetCrossGroupBalances(ctx context.Context, req *connect.Request[api.GetCrossGroupBalancesRequest]) (*connect.Response[api.GetCrossGroupBalancesResponse], error) {
	const op = "GetCrossGroupBalances"
	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}

	view, err := s.ledger.NetBalances(ctx, actorID)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	slog.Info("GetCrossGroupBalances successful", "member_id", actorID, "friends", len(view.Friends))
	return connect.NewResponse(toAPINetView(view)), nil
}

func (s *LedgerService) entryResponse(ctx context.Context, op string, entry *models.LedgerEntry) (*connect.Response[api.EntryResponse], error) {
	refs, err := s.ledger.MembersOf(ctx, entry)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return connect.NewResponse(&api.EntryResponse{Entry: toAPIEntry(entry, refs)}), nil
}
