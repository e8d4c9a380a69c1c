/*
Package errors implements coded errors used by every program and by the host.

Reuse the root errors declared in this package and define a new one with
Register only when it is somewhat package-agnostic. Every failure should wrap
one of them so that a client can tell the class of the problem from the ABCI
code alone.

Create errors with ErrXyz.New("...") or errors.Wrap(err, "...") at the point of
failure so that a stacktrace is attached. Only the most inner wrap records the
stack.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context
	%s is just the error message
	%+v is the message followed by the stack trace
*/
package errors
