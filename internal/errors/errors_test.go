package errors

import (
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrValidation:     http.StatusBadRequest,
		ErrUnauthorized:   http.StatusUnauthorized,
		ErrNotFound:       http.StatusNotFound,
		ErrTimeout:        http.StatusGatewayTimeout,
		ErrAIService:      http.StatusBadGateway,
		ErrStorageService: http.StatusServiceUnavailable,
		ErrInternal:       http.StatusInternalServerError,
	}

	for code, want := range cases {
		if got := New(code, "x").HTTPStatus(); got != want {
			t.Errorf("%s: expected status %d, got %d", code, want, got)
		}
	}
}

func TestGRPCStatus(t *testing.T) {
	if got := Validation("bad").GRPCStatus().Code(); got != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", got)
	}
	if got := Storage("down", nil).GRPCStatus().Code(); got != codes.Unavailable {
		t.Errorf("expected Unavailable, got %v", got)
	}
}

func TestAs_WrappedChain(t *testing.T) {
	base := NotFound("session")
	wrapped := fmt.Errorf("lookup: %w", base)

	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("expected AppError in chain")
	}
	if appErr.Code != ErrNotFound {
		t.Errorf("expected code %s, got %s", ErrNotFound, appErr.Code)
	}
	if !HasCode(wrapped, ErrNotFound) {
		t.Error("expected HasCode to find NOT_FOUND")
	}
	if HasCode(fmt.Errorf("plain"), ErrNotFound) {
		t.Error("expected HasCode false for plain error")
	}
}

func TestError_IncludesCause(t *testing.T) {
	err := Wrap(ErrDatabase, "query failed", fmt.Errorf("conn reset"))
	want := "DATABASE_ERROR: query failed: conn reset"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
