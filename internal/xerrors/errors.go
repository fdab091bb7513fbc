// Package xerrors provides context-carrying errors in the style used
// throughout the simulator: every error can be tagged with key/value pairs
// that show up both in Error() and in structured log output, and every
// error chain supports errors.Is/errors.As.
package xerrors

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap/zapcore"
)

// Kind identifies one of the error taxonomy entries.
type Kind string

const (
	// IoUnavailable means a file was missing, unreadable, or a write failed.
	// Fatal to the run.
	IoUnavailable Kind = "io_unavailable"
	// MalformedRecord means a relationship/seed/ROV line could not be parsed.
	// Recovered locally by the caller; counted.
	MalformedRecord Kind = "malformed_record"
	// CycleDetected means the provider/customer DAG contains a cycle. Fatal;
	// no propagation is attempted.
	CycleDetected Kind = "cycle_detected"
	// UnknownSeedAsn means a seed referenced an ASN absent from the graph.
	// Recovered locally; the seed is dropped.
	UnknownSeedAsn Kind = "unknown_seed_asn"
	// InternalInvariantViolation means a structural invariant the core
	// relies on was broken (an AS left unranked, a node with no policy at
	// propagation time, ...). Fatal.
	InternalInvariantViolation Kind = "internal_invariant_violation"
)

// ctxPair is one item of attached context.
type ctxPair struct {
	Key   string
	Value interface{}
}

// kindError is the concrete error type returned by New/Wrap.
type kindError struct {
	kind  Kind
	msg   string
	cause error
	ctx   []ctxPair
}

// New creates an error of the given kind with a message and optional
// key/value context (e.g. New(MalformedRecord, "bad relation field", "line", 12)).
func New(kind Kind, msg string, ctxPairs ...interface{}) error {
	return &kindError{kind: kind, msg: msg, ctx: pairsOf(ctxPairs)}
}

// Wrap wraps cause with a message, kind, and optional key/value context.
// A nil cause makes Wrap return nil, mirroring the teacher's WrapStr semantics for
// defer-style error decoration.
func Wrap(kind Kind, msg string, cause error, ctxPairs ...interface{}) error {
	if cause == nil {
		return nil
	}
	return &kindError{kind: kind, msg: msg, cause: cause, ctx: pairsOf(ctxPairs)}
}

func pairsOf(kv []interface{}) []ctxPair {
	n := len(kv) / 2
	ctx := make([]ctxPair, n)
	for i := 0; i < n; i++ {
		ctx[i] = ctxPair{Key: fmt.Sprint(kv[2*i]), Value: kv[2*i+1]}
	}
	sort.Slice(ctx, func(a, b int) bool { return ctx[a].Key < ctx[b].Key })
	return ctx
}

func (e *kindError) Error() string {
	var buf bytes.Buffer
	buf.WriteString(e.msg)
	for _, p := range e.ctx {
		fmt.Fprintf(&buf, " %s=%v", p.Key, p.Value)
	}
	if e.cause != nil {
		fmt.Fprintf(&buf, ": %s", e.cause)
	}
	return buf.String()
}

func (e *kindError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a Kind sentinel matching e's kind. It does
// not look at the cause itself; errors.Is reaches the cause through Unwrap.
func (e *kindError) Is(target error) bool {
	k, ok := target.(kindSentinel)
	return ok && k.Kind() == e.kind
}

// MarshalLogObject implements zapcore.ObjectMarshaler so errors log with
// their context as structured fields instead of a flattened string.
func (e *kindError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	enc.AddString("kind", string(e.kind))
	for _, p := range e.ctx {
		if err := enc.AddReflected(p.Key, p.Value); err != nil {
			return err
		}
	}
	if e.cause != nil {
		enc.AddString("cause", e.cause.Error())
	}
	return nil
}

// kindSentinel lets a bare Kind value be used as an errors.Is target:
// errors.Is(err, xerrors.CycleDetected) works because Kind implements this.
type kindSentinel interface {
	Kind() Kind
}

func (k Kind) Kind() Kind { return k }

func (k Kind) Error() string { return string(k) }

// KindOf extracts the Kind of err, if err (or something it wraps) is a
// *kindError. The zero Kind is returned otherwise.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return ""
}
