package apiconnect

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestJSONCodec(t *testing.T) {
	codec := JSONCodec{}
	if codec.Name() != "json" {
		t.Errorf("expected codec name json, got %s", codec.Name())
	}

	req := &api.PostExpenseRequest{
		GroupID: "g-1",
		ExpenseFields: api.ExpenseFields{
			AmountCents: 10000,
			SplitType:   "percent",
			PaidBy:      "alice",
			Participants: []api.Participant{
				{MemberID: "alice", Percent: decimal.NewNullDecimal(decimal.RequireFromString("33.34"))},
				{MemberID: "bob"},
			},
		},
	}
	data, err := codec.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	// Embedded fields flatten into the request object.
	if !strings.Contains(string(data), `"split_type":"percent"`) || strings.Contains(string(data), "ExpenseFields") {
		t.Errorf("unexpected wire form: %s", data)
	}

	var got api.PostExpenseRequest
	if err := codec.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !got.Participants[0].Percent.Valid || got.Participants[0].Percent.Decimal.String() != "33.34" {
		t.Errorf("percent lost on the wire: %+v", got.Participants[0].Percent)
	}
	if got.Participants[1].Percent.Valid {
		t.Error("absent percent should stay null")
	}

	var empty api.ListGroupsRequest
	if err := codec.Unmarshal(nil, &empty); err != nil {
		t.Errorf("empty body should decode to the zero message: %v", err)
	}
	if err := codec.Unmarshal([]byte("{"), &got); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}
