// Command democtl wires a small corestream graph end to end and serves it
// over both transports the bridge packages support: a WebSocket relay for
// browser-style observers and a gRPC server-streaming relay for service
// clients. It exists to exercise the library the way the teacher's main.go
// exercises the broker — a runnable demonstration, not a test.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rivenhollow/corestream"
	"github.com/rivenhollow/corestream/bridge/grpcbridge"
	"github.com/rivenhollow/corestream/bridge/wsbridge"
	"github.com/rivenhollow/corestream/internal/coreconfig"
	"github.com/rivenhollow/corestream/internal/corelog"
	"github.com/rivenhollow/corestream/internal/execctx"
)

// Reading carries one synthetic telemetry sample through the demo graph.
type Reading struct {
	Sensor string  `json:"sensor"`
	Value  float64 `json:"value"`
	Tick   uint64  `json:"tick"`
}

func main() {
	httpAddr := flag.String("http-addr", ":8081", "address the WebSocket relay listens on")
	grpcAddr := flag.String("grpc-addr", ":8082", "address the gRPC telemetry stream listens on")
	wsAuthSecret := flag.String("ws-auth-secret", "", "if set, require an HMAC token (auth_token query param or X-Auth-Token header) signed with this secret")
	heartbeat := flag.Duration("heartbeat", 2*time.Second, "base cadence: altitude ticks every heartbeat, velocity every heartbeat/2, the synthetic sensor generator every 3*heartbeat")
	flag.Parse()

	cfg, err := coreconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := corelog.New(os.Stdout, cfg.LogLevel)
	corelog.ReplaceGlobals(logger)

	pool := execctx.NewPool(cfg.PoolWidth, cfg.SerialQueueCapacity)

	telemetry, synthetic := buildTelemetryGraph(pool, *heartbeat, logger)
	defer synthetic.stop()

	relay, err := wsbridge.NewRelay[Reading](telemetry, func(r Reading) ([]byte, error) {
		return json.Marshal(r)
	})
	if err != nil {
		logger.Error("failed to build websocket relay", corelog.Error(err))
		os.Exit(1)
	}
	relay.Logger = logger.With(corelog.String("component", "wsbridge"))
	if *wsAuthSecret != "" {
		authenticator, err := wsbridge.NewHMACAuthenticator(*wsAuthSecret, 30*time.Second)
		if err != nil {
			logger.Error("failed to configure websocket authenticator", corelog.Error(err))
			os.Exit(1)
		}
		relay.Authenticator = authenticator
		logger.Info("websocket HMAC authentication enabled")
	} else {
		logger.Info("websocket authentication disabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/telemetry", relay)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	httpServer := &http.Server{Addr: *httpAddr, Handler: mux}

	go func() {
		logger.Info("websocket relay listening", corelog.String("address", *httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("websocket relay terminated", corelog.Error(err))
		}
	}()

	grpcServer := grpc.NewServer()
	grpcServer.RegisterService(&telemetryServiceDesc, &telemetryServer{source: telemetry})

	go func() {
		listener, err := net.Listen("tcp", *grpcAddr)
		if err != nil {
			logger.Error("failed to start gRPC listener", corelog.Error(err), corelog.String("address", *grpcAddr))
			os.Exit(1)
		}
		logger.Info("gRPC telemetry stream listening", corelog.String("address", *grpcAddr))
		if err := grpcServer.Serve(listener); err != nil {
			logger.Error("gRPC server terminated", corelog.Error(err))
		}
	}()

	waitForShutdownSignal()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
}

func waitForShutdownSignal() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
}

// syntheticFeed owns the goroutines driving the demo's two Input producers
// and can be stopped on shutdown.
type syntheticFeed struct {
	cancel context.CancelFunc
}

func (f *syntheticFeed) stop() { f.cancel() }

// buildTelemetryGraph wires two manually-driven sensors (Input) and one
// self-producing generator into a single MergedInput, exactly the fan-in
// shape a telemetry bridge needs: independent producers of the same type,
// combined into one Signal observers subscribe to once.
func buildTelemetryGraph(exec execctx.Context, heartbeat time.Duration, logger *corelog.Logger) (corestream.Signal[Reading], *syntheticFeed) {
	merged := corestream.CreateMergedInput[Reading](exec, nil)

	altitude, altitudeSig := corestream.Create[Reading]()
	velocity, velocitySig := corestream.Create[Reading]()

	if _, err := merged.Add(altitudeSig, corestream.PropagateErrors, false); err != nil {
		logger.Error("failed to attach altitude sensor", corelog.Error(err))
	}
	if _, err := merged.Add(velocitySig, corestream.PropagateErrors, false); err != nil {
		logger.Error("failed to attach velocity sensor", corelog.Error(err))
	}

	generated := corestream.Generator[Reading](exec, func(ctx context.Context, emit corestream.Emitter[Reading]) {
		var tick uint64
		ticker := time.NewTicker(heartbeat * 3)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick++
				if !emit.Value(Reading{Sensor: "drift", Value: rand.NormFloat64(), Tick: tick}) {
					return
				}
			}
		}
	})
	if _, err := merged.Add(generated, corestream.PropagateNone, true); err != nil {
		logger.Error("failed to attach synthetic drift sensor", corelog.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	feed := &syntheticFeed{cancel: cancel}

	drive(ctx, altitude, "altitude", heartbeat, logger)
	drive(ctx, velocity, "velocity", heartbeat/2, logger)

	return merged.Output(), feed
}

// drive runs a goroutine calling in.Send on the given cadence until ctx is
// cancelled, logging (rather than failing) any rejected send. Once
// buildTelemetryGraph has attached in to the MergedInput with
// removeOnDeactivate=false, its subscription — and so its Active state —
// stays open regardless of whether the merged output currently has any
// observers, but Send can still race a cancellation in flight.
func drive(ctx context.Context, in *corestream.Input[Reading], sensor string, period time.Duration, logger *corelog.Logger) {
	go func() {
		var tick uint64
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick++
				reading := Reading{Sensor: sensor, Value: rand.Float64() * 100, Tick: tick}
				if err := in.Send(reading); err != nil {
					logger.Debug("sensor send dropped", corelog.String("sensor", sensor), corelog.Error(err))
				}
			}
		}
	}()
}

// telemetryMarshal adapts a Reading to the anypb.Any wire shape StreamSignal
// requires, wrapping it in the ready-made wrapperspb.StringValue rather
// than inventing a message type of this demo's own.
func telemetryMarshal(r Reading) (proto.Message, error) {
	return wrapperspb.String(fmt.Sprintf("%s=%g@%d", r.Sensor, r.Value, r.Tick)), nil
}

// telemetryServer is the hand-registered gRPC service exposing the demo's
// merged telemetry Signal as a server-streaming RPC. There is no .proto
// file behind it: the ServiceDesc below is built the way protoc-gen-go-grpc
// would generate one, wired by hand since this library defines no wire
// message of its own (see bridge/grpcbridge).
type telemetryServer struct {
	source corestream.Signal[Reading]
}

func (s *telemetryServer) StreamTelemetry(_ *emptypb.Empty, stream grpc.ServerStreamingServer[anypb.Any]) error {
	return grpcbridge.StreamSignal[Reading](s.source, stream, telemetryMarshal)
}

type telemetryStreamServer struct {
	grpc.ServerStream
}

func (x *telemetryStreamServer) Send(m *anypb.Any) error {
	return x.ServerStream.SendMsg(m)
}

func telemetryStreamHandler(srv interface{}, stream grpc.ServerStream) error {
	req := new(emptypb.Empty)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(*telemetryServer).StreamTelemetry(req, &telemetryStreamServer{stream})
}

var telemetryServiceDesc = grpc.ServiceDesc{
	ServiceName: "corestream.democtl.Telemetry",
	HandlerType: (*telemetryServer)(nil),
	Methods:     nil,
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamTelemetry",
			Handler:       telemetryStreamHandler,
			ServerStreams: true,
		},
	},
	Metadata: "democtl/telemetry",
}
