package errors

import (
	"io"
	"strings"
	"testing"
)

func TestABCInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"plain coded error": {
			err:      ErrNotFound,
			debug:    false,
			wantLog:  "not found",
			wantCode: ErrNotFound.code,
		},
		"wrapped coded error": {
			err:      Wrap(Wrap(ErrNotFound, "foo"), "bar"),
			debug:    false,
			wantLog:  "bar: foo: not found",
			wantCode: ErrNotFound.code,
		},
		"nil is empty message": {
			err:      nil,
			debug:    false,
			wantLog:  "",
			wantCode: 0,
		},
		"nil coded error is not an error": {
			err:      (*Error)(nil),
			debug:    false,
			wantLog:  "",
			wantCode: 0,
		},
		"stdlib is generic message": {
			err:      io.EOF,
			debug:    false,
			wantLog:  "internal error",
			wantCode: 1,
		},
		"stdlib returns error message in debug mode": {
			err:      io.EOF,
			debug:    true,
			wantLog:  "EOF",
			wantCode: 1,
		},
		"wrapped stdlib is only a generic message": {
			err:      Wrap(io.EOF, "cannot read file"),
			debug:    false,
			wantLog:  "internal error",
			wantCode: 1,
		},
		"wrapped stdlib is a full message in debug mode": {
			err:      Wrap(io.EOF, "cannot read file"),
			debug:    true,
			wantLog:  "cannot read file: EOF",
			wantCode: 1,
		},
		"panic is a generic message": {
			err:      Wrap(ErrPanic, "runtime error: index out of range"),
			debug:    false,
			wantLog:  "internal error",
			wantCode: ErrPanic.code,
		},
		"panic is a full message in debug mode": {
			err:      Wrap(ErrPanic, "runtime error: index out of range"),
			debug:    true,
			wantLog:  "runtime error: index out of range: panic",
			wantCode: ErrPanic.code,
		},
		"coded error carries its stack in debug mode": {
			err:      Wrap(ErrNotFound, "escrow"),
			debug:    true,
			wantLog:  "escrow: not found\n",
			wantCode: ErrNotFound.code,
		},
		"custom error": {
			err:      customErr{},
			debug:    false,
			wantLog:  "custom",
			wantCode: 999,
		},
		"custom error in debug mode": {
			err:      customErr{},
			debug:    true,
			wantLog:  "custom",
			wantCode: 999,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			// In debug mode the log may be followed by a stack trace.
			if tc.debug && !strings.HasPrefix(log, tc.wantLog) {
				t.Errorf("want log starting with %q, got %q", tc.wantLog, log)
			}
			if !tc.debug && log != tc.wantLog {
				t.Errorf("want %q log, got %q", tc.wantLog, log)
			}
		})
	}
}

// customErr is a custom implementation of an error that provides an ABCICode
// method.
type customErr struct{}

func (customErr) ABCICode() uint32 { return 999 }

func (customErr) Error() string { return "custom" }

func TestRedact(t *testing.T) {
	cases := map[string]struct {
		err       error
		debug     bool
		wantRedac bool
	}{
		"coded error is kept": {
			err:       Wrap(ErrAddressMismatch, "escrow"),
			wantRedac: false,
		},
		"panic is redacted": {
			err:       Wrap(ErrPanic, "index out of range"),
			wantRedac: true,
		},
		"stdlib error is redacted": {
			err:       io.ErrUnexpectedEOF,
			wantRedac: true,
		},
		"nil is kept": {
			err:       nil,
			wantRedac: false,
		},
		"wrapped panic is redacted": {
			err:       Wrap(Wrap(ErrPanic, "nil map"), "deliver"),
			wantRedac: true,
		},
		"debug mode keeps everything": {
			err:       io.ErrUnexpectedEOF,
			debug:     true,
			wantRedac: false,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got := Redact(tc.err, tc.debug)
			if got == nil {
				if tc.err != nil {
					t.Fatalf("want %v, got nil", tc.err)
				}
				return
			}
			if redacted := got.Error() == internalABCILog; redacted != tc.wantRedac {
				t.Fatalf("want redacted=%v, got %q", tc.wantRedac, got)
			}
		})
	}
}
