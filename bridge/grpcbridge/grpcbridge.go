// Package grpcbridge relays a corestream Signal as a gRPC server-streaming
// push, the transport-boundary role spec.md carves out for UI/observer
// adapters: driven entirely from outside the core engine's public Subscribe
// API, never from inside it.
package grpcbridge

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/rivenhollow/corestream"
)

// Marshal converts one value of T into the proto.Message that gets wrapped
// in an anypb.Any for the wire. Since this spec defines no message of its
// own, every payload travels as Any around a caller-supplied proto.Message.
type Marshal[T any] func(v T) (proto.Message, error)

// StreamSignal subscribes to source and pushes every value it delivers to
// stream as an anypb.Any, returning once the source completes, the stream's
// context is cancelled, or a Send fails — in the exact shape of the
// teacher's StreamTimeSync: an immediate first sample (via the activation
// burst, if source produces one) followed by whatever cadence source's own
// producer uses.
func StreamSignal[T any](source corestream.Signal[T], stream grpc.ServerStreamingServer[anypb.Any], marshal Marshal[T]) error {
	errCh := make(chan error, 1)
	reportErr := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	lifetime := corestream.Subscribe(source, func(result corestream.Result[T]) {
		if end := result.End(); end != nil {
			if end.Reason == corestream.Other && end.Err != nil {
				reportErr(status.Error(codes.Aborted, end.Err.Error()))
			} else {
				reportErr(nil)
			}
			return
		}
		v, ok := result.Value()
		if !ok {
			return
		}
		msg, err := marshal(v)
		if err != nil {
			reportErr(status.Error(codes.Internal, err.Error()))
			return
		}
		any, err := anypb.New(msg)
		if err != nil {
			reportErr(status.Error(codes.Internal, err.Error()))
			return
		}
		if err := stream.Send(any); err != nil {
			reportErr(err)
		}
	})
	defer lifetime.Dispose()

	select {
	case err := <-errCh:
		return err
	case <-stream.Context().Done():
		return stream.Context().Err()
	}
}
