package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestPostExpense(t *testing.T) {
	c := setupTestServer(t)
	group := createGroup(t, c, "alice", "bob", "carol")

	tests := []struct {
		name         string
		caller       string
		req          func() *api.PostExpenseRequest
		wantCode     connect.Code
		wantKind     string
		wantReason   string
		validateFunc func(t *testing.T, e *api.Entry)
	}{
		{
			name:   "equal split hands the remainder to the first participants",
			caller: "alice",
			req: func() *api.PostExpenseRequest {
				return equalExpense(group.ID, "alice", 100, "alice", "bob", "carol")
			},
			validateFunc: func(t *testing.T, e *api.Entry) {
				want := []int64{34, 33, 33}
				for i, s := range e.Shares {
					if s.ShareCents != want[i] {
						t.Errorf("share %d: expected %d, got %d", i, want[i], s.ShareCents)
					}
				}
				if e.Version != 1 {
					t.Errorf("expected version 1, got %d", e.Version)
				}
				if e.Currency != "EUR" {
					t.Errorf("expected group currency EUR, got %s", e.Currency)
				}
				if e.EntryType != api.EntryTypeExpense {
					t.Errorf("expected expense entry, got %s", e.EntryType)
				}
				if e.Shares[1].DisplayName != "Member bob" {
					t.Errorf("expected display name for bob, got %q", e.Shares[1].DisplayName)
				}
			},
		},
		{
			name:   "percent split",
			caller: "bob",
			req: func() *api.PostExpenseRequest {
				return &api.PostExpenseRequest{
					GroupID: group.ID,
					ExpenseFields: api.ExpenseFields{
						AmountCents: 100,
						Date:        "2026-03-14",
						SplitType:   "percent",
						PaidBy:      "bob",
						Participants: []api.Participant{
							{MemberID: "alice", Percent: percent("40")},
							{MemberID: "bob", Percent: percent("30")},
							{MemberID: "carol", Percent: percent("30")},
						},
					},
				}
			},
			validateFunc: func(t *testing.T, e *api.Entry) {
				want := []int64{40, 30, 30}
				for i, s := range e.Shares {
					if s.ShareCents != want[i] {
						t.Errorf("share %d: expected %d, got %d", i, want[i], s.ShareCents)
					}
				}
				if e.Date != "2026-03-14" {
					t.Errorf("expected date 2026-03-14, got %s", e.Date)
				}
				if !e.Shares[0].Percent.Valid || e.Shares[0].Percent.Decimal.String() != "40" {
					t.Errorf("expected percent 40 on first share, got %+v", e.Shares[0].Percent)
				}
			},
		},
		{
			name:   "exact split that does not add up",
			caller: "alice",
			req: func() *api.PostExpenseRequest {
				return &api.PostExpenseRequest{
					GroupID: group.ID,
					ExpenseFields: api.ExpenseFields{
						AmountCents: 1000,
						SplitType:   "exact",
						PaidBy:      "alice",
						Participants: []api.Participant{
							{MemberID: "alice", ShareCents: 500},
							{MemberID: "bob", ShareCents: 400},
						},
					},
				}
			},
			wantCode:   connect.CodeInvalidArgument,
			wantKind:   KindInvalidSplit,
			wantReason: "SumMismatch",
		},
		{
			name:   "percent participant without a percent",
			caller: "alice",
			req: func() *api.PostExpenseRequest {
				r := equalExpense(group.ID, "alice", 100, "alice", "bob")
				r.SplitType = "percent"
				return r
			},
			wantCode:   connect.CodeInvalidArgument,
			wantKind:   KindInvalidSplit,
			wantReason: "InvalidPercent",
		},
		{
			name:   "zero amount",
			caller: "alice",
			req: func() *api.PostExpenseRequest {
				return equalExpense(group.ID, "alice", 0, "alice", "bob")
			},
			wantCode:   connect.CodeInvalidArgument,
			wantKind:   KindInvalidSplit,
			wantReason: "NonPositiveAmount",
		},
		{
			name:   "unknown split type",
			caller: "alice",
			req: func() *api.PostExpenseRequest {
				r := equalExpense(group.ID, "alice", 100, "alice", "bob")
				r.SplitType = "shares"
				return r
			},
			wantCode:   connect.CodeInvalidArgument,
			wantKind:   KindInvalidEntry,
			wantReason: "InvalidRequest",
		},
		{
			name:   "currency differs from the group",
			caller: "alice",
			req: func() *api.PostExpenseRequest {
				r := equalExpense(group.ID, "alice", 100, "alice", "bob")
				r.Currency = "USD"
				return r
			},
			wantCode:   connect.CodeInvalidArgument,
			wantKind:   KindInvalidEntry,
			wantReason: "CurrencyMismatch",
		},
		{
			name:   "participant outside the group",
			caller: "alice",
			req: func() *api.PostExpenseRequest {
				return equalExpense(group.ID, "alice", 100, "alice", "mallory")
			},
			wantCode: connect.CodeNotFound,
			wantKind: KindNotFound,
		},
		{
			name:   "caller outside the group",
			caller: "mallory",
			req: func() *api.PostExpenseRequest {
				return equalExpense(group.ID, "alice", 100, "alice", "bob")
			},
			wantCode: connect.CodePermissionDenied,
			wantKind: KindPermissionDenied,
		},
		{
			name:   "unknown group",
			caller: "alice",
			req: func() *api.PostExpenseRequest {
				return equalExpense("no-such-group", "alice", 100, "alice", "bob")
			},
			wantCode: connect.CodeNotFound,
			wantKind: KindNotFound,
		},
		{
			name:   "anonymous caller",
			caller: "",
			req: func() *api.PostExpenseRequest {
				return equalExpense(group.ID, "alice", 100, "alice", "bob")
			},
			wantCode: connect.CodeUnauthenticated,
			wantKind: KindUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.ledger.PostExpense(context.Background(), as(tt.caller, tt.req()))
			if tt.wantKind != "" {
				assertFailure(t, err, tt.wantCode, tt.wantKind, tt.wantReason)
				return
			}
			if err != nil {
				t.Fatalf("PostExpense failed: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, resp.Msg.Entry)
			}
		})
	}

	// Only the two successful posts were stored.
	list, err := c.ledger.ListExpenses(context.Background(), as("carol", &api.ListExpensesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Entries) != 2 {
		t.Errorf("expected 2 stored entries, got %d", len(list.Msg.Entries))
	}
}

func TestEditAndVoidExpense(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	group := createGroup(t, c, "alice", "bob")

	posted, err := c.ledger.PostExpense(ctx, as("alice", equalExpense(group.ID, "alice", 1000, "alice", "bob")))
	if err != nil {
		t.Fatalf("PostExpense failed: %v", err)
	}
	entry := posted.Msg.Entry

	edit := &api.EditExpenseRequest{
		EntryID:       entry.ID,
		Version:       entry.Version,
		ExpenseFields: equalExpense(group.ID, "bob", 3000, "alice", "bob").ExpenseFields,
	}
	edited, err := c.ledger.EditExpense(ctx, as("bob", edit))
	if err != nil {
		t.Fatalf("EditExpense failed: %v", err)
	}
	if edited.Msg.Entry.Version != 2 {
		t.Errorf("expected version 2, got %d", edited.Msg.Entry.Version)
	}
	if edited.Msg.Entry.PaidBy != "bob" || edited.Msg.Entry.AmountCents != 3000 {
		t.Errorf("edit not applied: %+v", edited.Msg.Entry)
	}

	// The same stale version now conflicts.
	_, err = c.ledger.EditExpense(ctx, as("alice", edit))
	assertFailure(t, err, connect.CodeAborted, KindConflict, "")

	_, err = c.ledger.VoidExpense(ctx, as("alice", &api.VoidExpenseRequest{EntryID: entry.ID, Version: 1}))
	assertFailure(t, err, connect.CodeAborted, KindConflict, "")

	if _, err := c.ledger.VoidExpense(ctx, as("alice", &api.VoidExpenseRequest{EntryID: entry.ID, Version: 2})); err != nil {
		t.Fatalf("VoidExpense failed: %v", err)
	}

	_, err = c.ledger.GetExpense(ctx, as("alice", &api.GetExpenseRequest{EntryID: entry.ID}))
	assertFailure(t, err, connect.CodeNotFound, KindNotFound, "")

	balances, err := c.ledger.GetGroupBalances(ctx, as("alice", &api.GetGroupBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	for _, b := range balances.Msg.Balances {
		if b.NetCents != 0 || b.Direction != "settled" {
			t.Errorf("expected %s settled after void, got %d (%s)", b.MemberID, b.NetCents, b.Direction)
		}
	}
}

func TestRecordSettlement(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	group := createGroup(t, c, "alice", "bob", "carol")

	if _, err := c.ledger.PostExpense(ctx, as("alice", equalExpense(group.ID, "alice", 9000, "alice", "bob", "carol"))); err != nil {
		t.Fatalf("PostExpense failed: %v", err)
	}

	settled, err := c.ledger.RecordSettlement(ctx, as("bob", &api.RecordSettlementRequest{
		GroupID:     group.ID,
		FromMember:  "bob",
		ToMember:    "alice",
		AmountCents: 3000,
		Note:        "bank transfer",
	}))
	if err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	if settled.Msg.Entry.EntryType != api.EntryTypeSettlement {
		t.Errorf("expected settlement entry, got %s", settled.Msg.Entry.EntryType)
	}

	resp, err := c.ledger.GetGroupBalances(ctx, as("carol", &api.GetGroupBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	want := map[string]struct {
		net       int64
		direction string
	}{
		"alice": {3000, "you_are_owed"},
		"bob":   {0, "settled"},
		"carol": {-3000, "you_owe"},
	}
	var sum int64
	for _, b := range resp.Msg.Balances {
		sum += b.NetCents
		w := want[b.MemberID]
		if b.NetCents != w.net || b.Direction != w.direction {
			t.Errorf("%s: expected %d (%s), got %d (%s)", b.MemberID, w.net, w.direction, b.NetCents, b.Direction)
		}
	}
	if sum != 0 {
		t.Errorf("expected balances to sum to 0, got %d", sum)
	}
	if len(resp.Msg.Debts) != 1 || resp.Msg.Debts[0] != (api.Debt{FromMember: "carol", ToMember: "alice", AmountCents: 3000}) {
		t.Errorf("expected carol to owe alice 3000, got %+v", resp.Msg.Debts)
	}

	// Settlements cannot be edited.
	_, err = c.ledger.EditExpense(ctx, as("bob", &api.EditExpenseRequest{
		EntryID:       settled.Msg.Entry.ID,
		Version:       1,
		ExpenseFields: equalExpense(group.ID, "bob", 100, "alice").ExpenseFields,
	}))
	assertFailure(t, err, connect.CodeInvalidArgument, KindInvalidSettlement, "SettlementImmutable")

	tests := []struct {
		name       string
		req        *api.RecordSettlementRequest
		wantReason string
	}{
		{
			name:       "zero amount",
			req:        &api.RecordSettlementRequest{GroupID: group.ID, FromMember: "carol", ToMember: "alice"},
			wantReason: "NonPositiveAmount",
		},
		{
			name:       "same member",
			req:        &api.RecordSettlementRequest{GroupID: group.ID, FromMember: "carol", ToMember: "carol", AmountCents: 100},
			wantReason: "SameMember",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ledger.RecordSettlement(ctx, as("carol", tt.req))
			assertFailure(t, err, connect.CodeInvalidArgument, KindInvalidSettlement, tt.wantReason)
		})
	}
}

func TestGetCrossGroupBalances(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	flat := createGroup(t, c, "alice", "bob")
	trip := createGroup(t, c, "bob", "alice", "carol")

	// alice is owed 500 by bob in the flat.
	if _, err := c.ledger.PostExpense(ctx, as("alice", equalExpense(flat.ID, "alice", 1000, "alice", "bob"))); err != nil {
		t.Fatalf("PostExpense failed: %v", err)
	}
	// alice owes bob 300 and carol owes bob 300 on the trip.
	if _, err := c.ledger.PostExpense(ctx, as("bob", equalExpense(trip.ID, "bob", 900, "alice", "bob", "carol"))); err != nil {
		t.Fatalf("PostExpense failed: %v", err)
	}

	resp, err := c.ledger.GetCrossGroupBalances(ctx, as("alice", &api.GetCrossGroupBalancesRequest{}))
	if err != nil {
		t.Fatalf("GetCrossGroupBalances failed: %v", err)
	}
	if len(resp.Msg.Friends) != 1 {
		t.Fatalf("expected one counterparty, got %+v", resp.Msg.Friends)
	}
	bob := resp.Msg.Friends[0]
	if bob.MemberID != "bob" || bob.NetCents != 200 || bob.Direction != "you_are_owed" {
		t.Errorf("expected bob to owe alice 200, got %+v", bob)
	}
	if bob.Currency != "EUR" || len(bob.Groups) != 2 {
		t.Errorf("expected two EUR group positions, got %+v", bob)
	}
	if len(resp.Msg.Totals) != 1 || resp.Msg.Totals[0].OwedToYouCents != 200 || resp.Msg.Totals[0].YouOweCents != 0 {
		t.Errorf("unexpected totals: %+v", resp.Msg.Totals)
	}
}
