package wsbridge

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rivenhollow/corestream"
	"github.com/rivenhollow/corestream/internal/corelog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{}

// Marshal converts one value of T into its wire representation, before
// FrameCodec compression is applied.
type Marshal[T any] func(v T) ([]byte, error)

// Relay serves a corestream.Signal[T] as a stream of compressed WebSocket
// frames: one Subscribe per accepted connection, torn down (and the
// signal's own refcount released) on disconnect — adapted from the
// teacher's per-Client reader/writer goroutine pair in its websocket
// handler, generalized from a fixed broadcast channel to an arbitrary
// Signal.
type Relay[T any] struct {
	Source        corestream.Signal[T]
	Authenticator Authenticator
	Marshal       Marshal[T]
	Codec         *FrameCodec
	Logger        *corelog.Logger

	// Limiter, if set, caps how often ServeHTTP accepts a new upgrade. A
	// nil Limiter (the NewRelay default) imposes no limit.
	Limiter *ConnectionLimiter
}

// NewRelay builds a Relay with AllowAll auth and a fresh FrameCodec; both
// can be overridden on the returned value before ServeHTTP is used.
func NewRelay[T any](source corestream.Signal[T], marshal Marshal[T]) (*Relay[T], error) {
	codec, err := NewFrameCodec()
	if err != nil {
		return nil, err
	}
	return &Relay[T]{
		Source:        source,
		Authenticator: AllowAll{},
		Marshal:       marshal,
		Codec:         codec,
		Logger:        corelog.L(),
	}, nil
}

// ServeHTTP upgrades the request to a WebSocket connection and relays every
// Value the underlying Signal delivers, from the moment of connection
// onward, until the peer disconnects or the signal ends; the signal's End is
// not sent as a frame but closes the connection once the queued frames are
// written.
func (rl *Relay[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if rl.Limiter != nil && !rl.Limiter.Allow() {
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		return
	}

	clientID, err := rl.Authenticator.Authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		rl.Logger.Error("wsbridge: upgrade failed", corelog.Error(err))
		return
	}
	logger := rl.Logger.With(corelog.String("client_id", clientID))

	send := make(chan []byte, sendBufferSize)
	done := make(chan struct{})
	var closeOnce closer
	var endOnce sync.Once

	lifetime := corestream.Subscribe(rl.Source, func(result corestream.Result[T]) {
		if end := result.End(); end != nil {
			// The source has nothing further to say; closing send lets
			// writeLoop flush the frames already queued and then tear down
			// the connection, which unblocks readLoop's ReadMessage and
			// drives the rest of ServeHTTP's cleanup.
			endOnce.Do(func() { close(send) })
			return
		}
		frame, ok := rl.encode(result, logger)
		if !ok {
			return
		}
		select {
		case send <- frame:
		case <-done:
		}
	})

	go func() {
		rl.writeLoop(conn, send, done, logger)
		conn.Close()
	}()
	rl.readLoop(conn, done, &closeOnce)

	lifetime.Dispose()
	closeOnce.do(func() { close(done) })
	conn.Close()
}

func (rl *Relay[T]) encode(result corestream.Result[T], logger *corelog.Logger) ([]byte, bool) {
	v, ok := result.Value()
	if !ok {
		return nil, false
	}
	payload, err := rl.Marshal(v)
	if err != nil {
		logger.Warn("wsbridge: marshal failed", corelog.Error(err))
		return nil, false
	}
	return rl.Codec.Encode(payload), true
}

type closer struct {
	once bool
}

func (c *closer) do(fn func()) {
	if c.once {
		return
	}
	c.once = true
	fn()
}

func (rl *Relay[T]) writeLoop(conn *websocket.Conn, send <-chan []byte, done chan struct{}, logger *corelog.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case frame, ok := <-send:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				logger.Warn("wsbridge: write failed", corelog.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (rl *Relay[T]) readLoop(conn *websocket.Conn, done chan struct{}, closeOnce *closer) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			closeOnce.do(func() { close(done) })
			return
		}
	}
}
