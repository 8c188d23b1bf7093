package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage"
)

// Error kinds carried in the "kind" field of every error detail.
const (
	KindInvalidSplit      = "InvalidSplit"
	KindInvalidSettlement = "InvalidSettlement"
	KindInvalidEntry      = "InvalidEntry"
	KindNotFound          = "NotFound"
	KindConflict          = "Conflict"
	KindUnsettled         = "Unsettled"
	KindPermissionDenied  = "PermissionDenied"
	KindUnauthenticated   = "Unauthenticated"
	KindStorage           = "Storage"
)

// errUnauthenticated is returned when a handler runs without a member in context.
var errUnauthenticated = errors.New("no authenticated member")

// failure is the classification of an error for the wire.
type failure struct {
	code      connect.Code
	kind      string
	reason    string
	retryable bool
}

func classify(err error) failure {
	var settlementErr *ledger.SettlementError
	var entryErr *ledger.EntryError

	switch {
	case errors.As(err, &settlementErr):
		return failure{connect.CodeInvalidArgument, KindInvalidSettlement, string(settlementErr.Reason), false}
	case errors.As(err, &entryErr):
		return failure{connect.CodeInvalidArgument, KindInvalidEntry, string(entryErr.Reason), false}
	case errors.Is(err, storage.ErrNotFound):
		return failure{connect.CodeNotFound, KindNotFound, "NotFound", false}
	case errors.Is(err, storage.ErrConflict):
		return failure{connect.CodeAborted, KindConflict, "StaleVersion", false}
	case errors.Is(err, ledger.ErrUnsettled):
		return failure{connect.CodeFailedPrecondition, KindUnsettled, "UnsettledBalance", false}
	case errors.Is(err, ledger.ErrPermissionDenied):
		return failure{connect.CodePermissionDenied, KindPermissionDenied, "PermissionDenied", false}
	case errors.Is(err, errUnauthenticated):
		return failure{connect.CodeUnauthenticated, KindUnauthenticated, "Unauthenticated", false}
	case errors.Is(err, context.DeadlineExceeded):
		return failure{connect.CodeDeadlineExceeded, KindStorage, "DeadlineExceeded", true}
	case errors.Is(err, context.Canceled):
		return failure{connect.CodeCanceled, KindStorage, "Canceled", true}
	}
	if reason, ok := calculator.SplitReasonOf(err); ok {
		return failure{connect.CodeInvalidArgument, KindInvalidSplit, string(reason), false}
	}
	return failure{connect.CodeUnavailable, KindStorage, "StorageFailure", true}
}

// toConnectError converts a domain error into a connect.Error carrying a
// structured {kind, reason, retryable} detail. op names the failed RPC in
// logs.
func toConnectError(op string, err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	f := classify(err)
	if f.kind == KindStorage {
		slog.Error(op+" failed", "error", err)
	} else {
		slog.Warn(op+" rejected", "kind", f.kind, "reason", f.reason, "error", err)
	}

	out := connect.NewError(f.code, err)
	detail, derr := structpb.NewStruct(map[string]any{
		"kind":      f.kind,
		"reason":    f.reason,
		"retryable": f.retryable,
	})
	if derr != nil {
		return out
	}
	if d, derr := connect.NewErrorDetail(detail); derr == nil {
		out.AddDetail(d)
	}
	return out
}

// ErrorDetail extracts the {kind, reason, retryable} detail from an error
// returned by a ledger RPC.
func ErrorDetail(err error) (kind, reason string, retryable bool, ok bool) {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return "", "", false, false
	}
	for _, d := range connectErr.Details() {
		msg, derr := d.Value()
		if derr != nil {
			continue
		}
		s, isStruct := msg.(*structpb.Struct)
		if !isStruct {
			continue
		}
		fields := s.GetFields()
		return fields["kind"].GetStringValue(),
			fields["reason"].GetStringValue(),
			fields["retryable"].GetBoolValue(),
			true
	}
	return "", "", false, false
}
