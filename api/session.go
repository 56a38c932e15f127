package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/pipeline"
	"github.com/kbukum/linguacast/resilience"
)

// ControlMessage is a JSON text frame sent by clients.
type ControlMessage struct {
	Type       string `json:"type"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
}

const controlTypeConfig = "config"

var errFrameRateExceeded = errors.New("too many audio frames, please slow down")

// frame is a received audio buffer with the languages in effect when it
// arrived.
type frame struct {
	data     []byte
	src, tgt string
}

// Session is one websocket connection. Three goroutines serve it: the
// reader (the handler goroutine), a processor running frames in arrival
// order, and a writer that owns all data writes and keepalive pings.
type Session struct {
	id     string
	userID string
	conn   *websocket.Conn
	cfg    WebSocketConfig
	log    *logger.Logger

	limiter *resilience.RateLimiter
	frames  chan frame
	out     chan pipeline.Result
	done    chan struct{}
	once    sync.Once

	mu       sync.Mutex
	src, tgt string
}

func newSession(id, userID string, conn *websocket.Conn, src, tgt string, cfg WebSocketConfig, log *logger.Logger) *Session {
	return &Session{
		id:     id,
		userID: userID,
		conn:   conn,
		cfg:    cfg,
		log:    log,
		limiter: resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name:  "ws-" + id,
			Rate:  cfg.FramesPerSecond,
			Burst: cfg.FrameBurst,
		}),
		frames: make(chan frame, cfg.QueueSize),
		out:    make(chan pipeline.Result, cfg.QueueSize),
		done:   make(chan struct{}),
		src:    src,
		tgt:    tgt,
	}
}

func (s *Session) ID() string { return s.id }

// Languages returns the session's current source and target language.
func (s *Session) Languages() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src, s.tgt
}

func (s *Session) setLanguages(src, tgt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src != "" {
		s.src = src
	}
	if tgt != "" {
		s.tgt = tgt
	}
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close sends a close frame and tears the connection down. It is safe to
// call more than once and from any goroutine.
func (s *Session) Close(code int, reason string) {
	s.once.Do(func() {
		msg := websocket.FormatCloseMessage(code, reason)
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.cfg.WriteWait))
		close(s.done)
		_ = s.conn.Close()
	})
}

// serve runs the session until the peer disconnects, the session is
// replaced or ctx ends.
func (s *Session) serve(ctx context.Context, proc Processor) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.writeLoop()
	}()
	go func() {
		defer wg.Done()
		s.processLoop(ctx, proc)
	}()
	go func() {
		select {
		case <-ctx.Done():
			s.Close(websocket.CloseGoingAway, "")
		case <-s.done:
		}
	}()

	s.readLoop()
	cancel()
	s.Close(websocket.CloseNormalClosure, "")
	wg.Wait()
}

func (s *Session) readLoop() {
	s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				select {
				case <-s.done:
				default:
					s.log.Warn("websocket read failed", logger.ErrorFields("ws_read", err))
				}
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))

		switch mt {
		case websocket.BinaryMessage:
			if !s.limiter.Allow() {
				s.send(pipeline.ErrorResult(errFrameRateExceeded))
				continue
			}
			src, tgt := s.Languages()
			select {
			case s.frames <- frame{data: data, src: src, tgt: tgt}:
			case <-s.done:
				return
			}
		case websocket.TextMessage:
			s.handleControl(data)
		}
	}
}

func (s *Session) handleControl(data []byte) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.send(pipeline.ErrorResult(fmt.Errorf("invalid control message: %w", err)))
		return
	}
	switch msg.Type {
	case controlTypeConfig:
		s.setLanguages(msg.SourceLang, msg.TargetLang)
		src, tgt := s.Languages()
		s.log.Debug("session languages changed", logger.Fields("source_lang", src, "target_lang", tgt))
	default:
		s.send(pipeline.ErrorResult(fmt.Errorf("unknown message type %q", msg.Type)))
	}
}

func (s *Session) processLoop(ctx context.Context, proc Processor) {
	for {
		select {
		case <-s.done:
			return
		case f := <-s.frames:
			resp := proc.ProcessBytes(ctx, f.data, f.src, f.tgt, s.userID)
			if ctx.Err() != nil {
				return
			}
			s.send(resp.Result)
		}
	}
}

// send queues r for the writer. It blocks while the queue is full and gives
// up when the session ends.
func (s *Session) send(r pipeline.Result) {
	select {
	case s.out <- r:
	case <-s.done:
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case r := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := s.conn.WriteJSON(r); err != nil {
				s.log.Warn("websocket write failed", logger.ErrorFields("ws_write", err))
				s.Close(websocket.CloseInternalServerErr, "")
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteWait)); err != nil {
				s.Close(websocket.CloseGoingAway, "")
				return
			}
		}
	}
}
