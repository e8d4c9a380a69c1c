package assert

import (
	"testing"

	"github.com/iov-one/swapvault/errors"
)

func TestIsErr(t *testing.T) {
	cases := map[string]struct {
		ErrWant  error
		ErrGot   error
		WantFail bool
	}{
		"same error": {
			ErrWant: errors.ErrNotFound,
			ErrGot:  errors.ErrNotFound,
		},
		"compared to nil": {
			ErrWant:  nil,
			ErrGot:   errors.ErrNotFound,
			WantFail: true,
		},
		"both nil": {},
		"wrapped": {
			ErrWant: errors.ErrAccountShape,
			ErrGot:  errors.Wrap(errors.ErrAccountShape, "three accounts"),
		},
		"different kind": {
			ErrWant:  errors.ErrAccountShape,
			ErrGot:   errors.Wrap(errors.ErrUnauthorized, "signer"),
			WantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			IsErr(mock, tc.ErrWant, tc.ErrGot)
			if failed := mock.failcalls > 0; tc.WantFail != failed {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestPanics(t *testing.T) {
	mock := &tmock{TB: t}
	Panics(mock, func() { panic("boom") })
	Panics(mock, func() {})
	if mock.failcalls != 1 {
		t.Fatalf("want one failure, got %d", mock.failcalls)
	}
}

type tmock struct {
	testing.TB
	failcalls int
}

func (t *tmock) Fatal(args ...interface{}) {
	t.TB.Log(args...)
	t.failcalls++
}

func (t *tmock) Fatalf(s string, args ...interface{}) {
	t.TB.Logf(s, args...)
	t.failcalls++
}
