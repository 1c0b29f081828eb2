package leanhttp

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kaito2/lean-http/log"
)

// readChunkSize is the unit of socket reads in the connection loop.
const readChunkSize = 4096

// Drain polling for graceful shutdown: 300 ticks of 100ms, ~30 seconds.
const (
	drainInterval   = 100 * time.Millisecond
	drainIterations = 300
)

// Errors internal to the connection read loop. None of them reach the
// application; they only select between a 408 and a silent close.
var (
	errIdleTimeout    = errors.New("read timed out before any bytes")
	errHeaderTooLarge = errors.New("request head exceeds MaxHeaderSize")
	errBodyTooLarge   = errors.New("declared body exceeds MaxBodySize")
)

// Server accepts TCP connections and serves HTTP/1.1 requests on them,
// one goroutine per connection. Create it with New, register routes, and
// call Listen.
type Server struct {
	cfg    Config
	router *Router
	logger *log.Logger

	mu       sync.Mutex
	listener net.Listener

	closed atomic.Bool
	active atomic.Int64
	pool   *ants.Pool
}

func (s *Server) setListener(l net.Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

func (s *Server) getListener() net.Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener
}

// New creates a server with the given configuration, or DefaultConfig()
// when none is provided. Zero-valued limit and timeout fields fall back
// to their defaults.
func New(config ...Config) *Server {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = normalizeConfig(config[0])
	}
	return &Server{
		cfg:    cfg,
		router: NewRouter(),
		logger: log.Default(),
	}
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = def.MaxConnections
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.KeepAliveTimeout <= 0 {
		cfg.KeepAliveTimeout = def.KeepAliveTimeout
	}
	if cfg.MaxHeaderSize <= 0 {
		cfg.MaxHeaderSize = def.MaxHeaderSize
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = def.MaxBodySize
	}
	return cfg
}

// Router returns the server's router.
func (s *Server) Router() *Router {
	return s.router
}

// Use adds middleware to the router.
func (s *Server) Use(middleware ...Middleware) {
	s.router.Use(middleware...)
}

// GET registers a new route with the GET method.
func (s *Server) GET(pattern string, handler Handler) { s.router.GET(pattern, handler) }

// POST registers a new route with the POST method.
func (s *Server) POST(pattern string, handler Handler) { s.router.POST(pattern, handler) }

// PUT registers a new route with the PUT method.
func (s *Server) PUT(pattern string, handler Handler) { s.router.PUT(pattern, handler) }

// DELETE registers a new route with the DELETE method.
func (s *Server) DELETE(pattern string, handler Handler) { s.router.DELETE(pattern, handler) }

// PATCH registers a new route with the PATCH method.
func (s *Server) PATCH(pattern string, handler Handler) { s.router.PATCH(pattern, handler) }

// HEAD registers a new route with the HEAD method.
func (s *Server) HEAD(pattern string, handler Handler) { s.router.HEAD(pattern, handler) }

// OPTIONS registers a new route with the OPTIONS method.
func (s *Server) OPTIONS(pattern string, handler Handler) { s.router.OPTIONS(pattern, handler) }

// Route derives a prefixed sub-router and invokes fn on it.
func (s *Server) Route(prefix string, fn func(sub *Router)) { s.router.Route(prefix, fn) }

// Group creates a new route group with the given prefix.
func (s *Server) Group(prefix string) *Router { return s.router.Group(prefix) }

// Addr returns the bound listener address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	l := s.getListener()
	if l == nil {
		return nil
	}
	return l.Addr()
}

// ActiveConnections reports the number of connections currently being
// served.
func (s *Server) ActiveConnections() int {
	return int(s.active.Load())
}

// Listen binds 0.0.0.0 on the configured port and serves until Shutdown.
// It blocks for the lifetime of the server.
func (s *Server) Listen() error {
	l, err := net.Listen("tcp4", fmt.Sprintf("0.0.0.0:%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("bind port %d: %w", s.cfg.Port, err)
	}
	s.setListener(l)

	pool, err := ants.NewPool(s.cfg.MaxConnections)
	if err != nil {
		_ = l.Close()
		return fmt.Errorf("connection pool: %w", err)
	}
	s.pool = pool

	if !s.cfg.DisableStartupMessage {
		s.logger.Info().Msgf("listening on %s", l.Addr())
	}

	return s.acceptLoop()
}

func (s *Server) acceptLoop() error {
	for {
		if s.closed.Load() {
			return nil
		}

		conn, err := s.getListener().Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn().Err(err).Msg("accept failed")
			continue
		}

		if int(s.active.Load()) >= s.cfg.MaxConnections {
			_ = Unavailable().Set(HeaderConnection, "close").WriteTo(conn)
			_ = conn.Close()
			continue
		}

		s.active.Add(1)
		c := conn
		if err := s.pool.Submit(func() { s.handleConn(c) }); err != nil {
			// The counter gate keeps us under capacity; a full pool here
			// means a submit/release race, so fall back to a plain goroutine.
			go s.handleConn(c)
		}
	}
}

// handleConn runs the per-connection request loop: read one request,
// dispatch, write the response, repeat while keep-alive holds.
func (s *Server) handleConn(conn net.Conn) {
	defer func() {
		_ = conn.Close()
		s.active.Add(-1)
	}()

	cr := &connReader{conn: conn}
	first := true

	for {
		timeout := s.cfg.KeepAliveTimeout
		if first {
			timeout = s.cfg.ReadTimeout
		}

		raw, err := s.readRequest(cr, timeout)
		if err != nil {
			if errors.Is(err, errIdleTimeout) && first {
				_ = requestTimeout().Set(HeaderConnection, "close").WriteTo(conn)
			}
			// Keep-alive idle timeouts, size overflows and truncated
			// requests all end the connection without a response.
			return
		}

		req, perr := parseRequest(raw, parserConfig{
			maxHeaderSize: s.cfg.MaxHeaderSize,
			maxBodySize:   s.cfg.MaxBodySize,
		})
		if perr != nil {
			_ = BadRequest("").Set(HeaderConnection, "close").WriteTo(conn)
			return
		}
		req.RemoteAddr = conn.RemoteAddr().String()

		keepAlive := !req.wantsClose()

		resp := s.dispatch(req)
		if resp == nil {
			// Handler failure with no recoverer installed: the connection
			// task is the failure boundary. Logged in dispatch; close.
			return
		}

		if !keepAlive {
			resp.Set(HeaderConnection, "close")
		}

		// HEAD responses keep the Content-Length header but carry no body.
		if err := resp.writeWire(conn, req.Method != MethodHead); err != nil {
			return
		}

		if !keepAlive {
			return
		}
		first = false
	}
}

// dispatch routes the request, converting a panicking handler into a
// closed connection rather than a dead server.
func (s *Server) dispatch(req *Request) (resp *Response) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().Msgf("handler panic: %v (%s %s)", rec, req.Method, req.Path)
			resp = nil
		}
	}()
	return s.router.Dispatch(req)
}

// connReader accumulates bytes from a connection across reads. Leftover
// bytes after one request stay buffered for the next, which is what makes
// pipelined requests work.
type connReader struct {
	conn  net.Conn
	buf   []byte
	chunk [readChunkSize]byte
}

// fill performs one bounded read. When any bytes arrive the read error is
// deferred to the next call so the caller can consume what it has.
func (cr *connReader) fill() error {
	n, err := cr.conn.Read(cr.chunk[:])
	if n > 0 {
		cr.buf = append(cr.buf, cr.chunk[:n]...)
		return nil
	}
	return err
}

// readRequest reads until one complete request (head plus Content-Length
// bytes of body) is buffered and returns a copy of it, leaving any
// pipelined remainder buffered. The whole read runs against a single
// deadline.
func (s *Server) readRequest(cr *connReader, timeout time.Duration) ([]byte, error) {
	_ = cr.conn.SetReadDeadline(time.Now().Add(timeout))

	for {
		if headerEnd := bytes.Index(cr.buf, crlfcrlf); headerEnd != -1 {
			if headerEnd > s.cfg.MaxHeaderSize {
				return nil, errHeaderTooLarge
			}
			contentLength := scanContentLength(cr.buf[:headerEnd])
			if contentLength > s.cfg.MaxBodySize {
				return nil, errBodyTooLarge
			}

			want := headerEnd + len(crlfcrlf) + contentLength
			for len(cr.buf) < want {
				if err := cr.fill(); err != nil {
					return nil, err
				}
			}

			raw := make([]byte, want)
			copy(raw, cr.buf[:want])
			cr.buf = append(cr.buf[:0], cr.buf[want:]...)
			return raw, nil
		}

		if len(cr.buf) > s.cfg.MaxHeaderSize {
			return nil, errHeaderTooLarge
		}

		if err := cr.fill(); err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() && len(cr.buf) == 0 {
				return nil, errIdleTimeout
			}
			return nil, err
		}
	}
}

// Shutdown stops accepting connections and waits for in-flight ones to
// drain, polling the active-connection counter for up to ~30 seconds.
// Connections still open after that are left to finish on their own.
func (s *Server) Shutdown() error {
	if s.closed.Swap(true) {
		return nil
	}
	if l := s.getListener(); l != nil {
		_ = l.Close()
	}

	for i := 0; i < drainIterations; i++ {
		if s.active.Load() == 0 {
			if s.pool != nil {
				s.pool.Release()
			}
			return nil
		}
		time.Sleep(drainInterval)
	}

	s.logger.Warn().Msgf("shutdown timed out with %d connections still active", s.active.Load())
	return nil
}
