package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestCause(t *testing.T) {
	std := stdlib.New("this is a stdlib error")

	cases := map[string]struct {
		err  error
		root error
	}{
		"Errors are self-causing": {
			err:  ErrNotFound,
			root: ErrNotFound,
		},
		"Wrap reveals root cause": {
			err:  Wrap(ErrNotFound, "foo"),
			root: ErrNotFound,
		},
		"Cause works for stderr as root": {
			err:  Wrap(std, "Some helpful text"),
			root: std,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := errors.Cause(tc.err); got != tc.root {
				t.Fatal("unexpected result")
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrAddressMismatch,
			b:      ErrAlreadyInitialized,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrInsufficientFunds,
			b:      Wrap(Wrap(ErrInsufficientFunds, "vault"), "take"),
			wantIs: true,
		},
		"successful comparison to a pkg/errors wrapped error": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrNotFound, "gone"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrOverflow, "too big"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrNotFound,
			b:      fmt.Errorf("stdlib error"),
			wantIs: false,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil is not a coded error": {
			a:      nil,
			b:      ErrMalformedPayload,
			wantIs: false,
		},
		"nil coded error is nil": {
			a:      nil,
			b:      (*Error)(nil),
			wantIs: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result - got:%v want: %v", got, tc.wantIs)
			}
		})
	}
}

func TestRegisterTwice(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("registering a used code must panic")
		}
	}()
	Register(ErrAccountShape.code, "shape again")
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	err := fn()
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %+v", err)
	}
}

func TestStackTraceIsAttachedOnce(t *testing.T) {
	err := Wrap(Wrap(ErrDeserialization, "record"), "take")
	if stackTrace(err) == nil {
		t.Fatal("stack trace expected")
	}
	full := fmt.Sprintf("%+v", err)
	if !strings.HasPrefix(full, "take: record: deserialization failed") {
		t.Fatalf("unexpected message %q", full)
	}
	if !strings.Contains(full, "errors_test.go") {
		t.Fatalf("stack should point at this file: %s", full)
	}
	if got := fmt.Sprintf("%v", err); got != "take: record: deserialization failed" {
		t.Fatalf("unexpected short form %q", got)
	}
}
