package errors

import (
	"encoding/json"
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeStatusAndName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   ErrorCode
		status int
		name   string
	}{
		{ErrorCodeValidation, http.StatusBadRequest, "validation"},
		{ErrorCodeJSON, http.StatusBadRequest, "json"},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity, "invalid_argument"},
		{ErrorCodeDuplicateKey, http.StatusConflict, "duplicate_key"},
		{ErrorCodeUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{ErrorCodeDB, http.StatusInternalServerError, "db"},
		{ErrorCode(999), http.StatusInternalServerError, "code(999)"},
	}
	for _, c := range cases {
		if got := c.code.Status(); got != c.status {
			t.Errorf("%v.Status() = %d, want %d", c.code, got, c.status)
		}
		if got := c.code.String(); got != c.name {
			t.Errorf("String() = %q, want %q", got, c.name)
		}
	}
}

func TestWrapChain(t *testing.T) {
	t.Parallel()

	cause := stderrs.New("connection reset")
	err := fmt.Errorf("report: %w", Wrap(cause, ErrorCodeDB, "load punches"))

	if err.Error() != "report: load punches: connection reset" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !stderrs.Is(err, cause) || Root(err) != cause {
		t.Fatalf("cause lost")
	}
	if CodeOf(err) != ErrorCodeDB || HTTPStatus(err) != 500 {
		t.Fatalf("code = %v", CodeOf(err))
	}
	if CodeOf(cause) != ErrorCodeUnknown || HTTPStatus(nil) != 500 {
		t.Fatalf("foreign errors are unknown")
	}
}

func TestWithField_CopyOnWrite(t *testing.T) {
	t.Parallel()

	base := New(ErrorCodeValidation, "endDate must not be before startDate")
	named := WithField(base, "endDate")

	if e, _ := As(base); e.Field() != "" {
		t.Fatalf("base mutated: %q", e.Field())
	}
	if e, _ := As(named); e.Field() != "endDate" || e.Code() != ErrorCodeValidation {
		t.Fatalf("named = %+v", e)
	}

	plain := stderrs.New("x")
	if WithField(plain, "f") != plain {
		t.Fatalf("foreign error should pass through")
	}
}

func TestWireFrom(t *testing.T) {
	t.Parallel()

	if WireFrom(nil) != (Wire{}) {
		t.Fatalf("nil should be zero wire")
	}
	w := WireFrom(WithField(Newf(ErrorCodeValidation, "userid must be positive, got %d", -1), "userid"))
	b, _ := json.Marshal(w)
	if string(b) != `{"code":8,"message":"userid must be positive, got -1","field":"userid"}` {
		t.Fatalf("wire = %s", b)
	}

	w = WireFrom(Wrap(stderrs.New("pq: boom"), ErrorCodeDB, "insert punch"))
	if w.Message != "insert punch" || w.Code != ErrorCodeDB {
		t.Fatalf("wrapped wire leaks cause: %+v", w)
	}
	if w := WireFrom(stderrs.New("raw")); w.Code != ErrorCodeUnknown || w.Message != "raw" {
		t.Fatalf("foreign wire = %+v", w)
	}
}

func TestSugar(t *testing.T) {
	t.Parallel()

	if CodeOf(JSONErrf("invalid JSON: %s", "eof")) != ErrorCodeJSON ||
		CodeOf(PanicErrf("boom")) != ErrorCodePanic ||
		CodeOf(Unauthorizedf("unknown token")) != ErrorCodeUnauthorized {
		t.Fatalf("sugar constructors use the wrong codes")
	}
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil receiver")
	}
}
