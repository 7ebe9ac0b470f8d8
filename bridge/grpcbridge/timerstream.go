package grpcbridge

import (
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/rivenhollow/corestream"
	"github.com/rivenhollow/corestream/internal/execctx"
)

// ClockSource supplies the periodic sample a TimerStream pushes — the
// generalization of the teacher's clockProvider (TimeSyncSnapshot +
// LogTimeDrift) to an arbitrary per-tick value of type T.
type ClockSource[T any] interface {
	Sample(tick uint64) T
}

// ClockSourceFunc adapts a plain function to ClockSource.
type ClockSourceFunc[T any] func(tick uint64) T

// Sample calls f.
func (f ClockSourceFunc[T]) Sample(tick uint64) T { return f(tick) }

// TimerStream builds a corestream.Interval over source's samples and
// streams it to a gRPC client as anypb.Any — the direct descendant of the
// teacher's Service.StreamTimeSync, generalized from a fixed
// TimeSyncUpdate payload to a caller-supplied marshal function.
type TimerStream[T any] struct {
	source   ClockSource[T]
	interval time.Duration
	marshal  Marshal[T]
}

// NewTimerStream builds a TimerStream sampling source every interval
// (defaulting to one second, matching the teacher's NewService default).
func NewTimerStream[T any](source ClockSource[T], interval time.Duration, marshal Marshal[T]) *TimerStream[T] {
	if interval <= 0 {
		interval = time.Second
	}
	return &TimerStream[T]{source: source, interval: interval, marshal: marshal}
}

// Stream pushes periodic samples to stream, sending an initial sample
// immediately on activation and then one per interval thereafter, exactly
// as StreamTimeSync does, until the stream's context is cancelled.
func (ts *TimerStream[T]) Stream(stream grpc.ServerStreamingServer[anypb.Any]) error {
	if ts == nil || ts.source == nil {
		return status.Error(codes.Unavailable, "grpcbridge: time stream unavailable")
	}
	signal := corestream.Interval[T](execctx.NewInline(), ts.interval, ts.source.Sample)
	return StreamSignal[T](signal, stream, ts.marshal)
}
