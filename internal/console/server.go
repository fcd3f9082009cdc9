package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet protocol bytes.
const (
	telnetIAC  = 255
	telnetDONT = 254
	telnetWILL = 251
	telnetSB   = 250
	telnetSE   = 240
)

const (
	// maxLineLength bounds one command line; extra bytes are dropped.
	maxLineLength = 1024

	// idleTimeout closes sessions that send nothing.
	idleTimeout = 15 * time.Minute

	prompt = "> "
)

// Logger defines the logging interface used by the Server.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Server accepts console sessions and runs their lines through a Table.
type Server struct {
	addr   string
	banner string
	table  *Table
	logger Logger

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewServer creates a console server for table listening on addr.
func NewServer(addr string, table *Table, banner string) *Server {
	return &Server{
		addr:   addr,
		banner: banner,
		table:  table,
		logger: noopLogger{},
		conns:  make(map[net.Conn]struct{}),
	}
}

// SetLogger sets the logger for the server.
func (s *Server) SetLogger(logger Logger) {
	s.logger = logger
}

// Start binds the listener and accepts sessions in the background until
// Close is called or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return ErrAlreadyStarted
	}
	if s.closed {
		return ErrServerClosed
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("console listen on %s: %w", s.addr, err)
	}
	s.ln = ln

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	go func() {
		<-ctx.Done()
		s.Close() //nolint:errcheck // shutdown path, listener errors are not actionable
	}()

	s.logger.Info("console listening", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops accepting, disconnects every session and waits for them to end.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("closing console listener: %w", err)
	}
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.isClosed() {
				return
			}
			s.logger.Warn("console accept failed", "error", err)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.session(ctx, conn)
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// session serves one connection. The remote IP is the request source.
func (s *Server) session(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	source := remoteIP(conn.RemoteAddr())
	s.logger.Info("console session opened", "source", source)
	defer s.logger.Info("console session closed", "source", source)

	w := bufio.NewWriter(conn)
	r := bufio.NewReader(conn)

	if s.banner != "" {
		writeLines(w, []string{s.banner})
	}
	w.WriteString(prompt) //nolint:errcheck // flush reports the error
	if err := w.Flush(); err != nil {
		return
	}

	for {
		//nolint:errcheck // best-effort deadline, read error ends the session
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		line, err := readLine(r)
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.isClosed() {
				s.logger.Debug("console read ended", "source", source, "error", err)
			}
			return
		}

		words := Tokenize(line)
		if len(words) == 1 && (strings.EqualFold(words[0], "quit") || strings.EqualFold(words[0], "exit")) {
			writeLines(w, []string{"bye"})
			w.Flush() //nolint:errcheck // session is ending
			return
		}

		if len(words) > 0 {
			matched, ok, lines := s.table.Exec(ctx, source, words)
			s.logger.Debug("console command", "source", source, "line", line, "matched", matched, "ok", ok)
			writeLines(w, lines)
		}

		w.WriteString(prompt) //nolint:errcheck // flush reports the error
		if err := w.Flush(); err != nil {
			return
		}
	}
}

// readLine reads up to '\n', dropping telnet command sequences, CR and NUL.
func readLine(r *bufio.Reader) (string, error) {
	buf := make([]byte, 0, 64)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}

		switch b {
		case telnetIAC:
			if err := skipTelnetCommand(r); err != nil {
				return "", err
			}
		case '\n':
			return string(buf), nil
		case '\r', 0:
		default:
			if len(buf) < maxLineLength {
				buf = append(buf, b)
			}
		}
	}
}

// skipTelnetCommand consumes the bytes following an IAC.
func skipTelnetCommand(r *bufio.Reader) error {
	cmd, err := r.ReadByte()
	if err != nil {
		return err
	}

	switch {
	case cmd >= telnetWILL && cmd <= telnetDONT:
		_, err = r.ReadByte()
		return err
	case cmd == telnetSB:
		// Subnegotiation runs until IAC SE.
		var prev byte
		for {
			b, err := r.ReadByte()
			if err != nil {
				return err
			}
			if prev == telnetIAC && b == telnetSE {
				return nil
			}
			prev = b
		}
	default:
		return nil
	}
}

func writeLines(w *bufio.Writer, lines []string) {
	for _, l := range lines {
		w.WriteString(l)      //nolint:errcheck // flush reports the error
		w.WriteString("\r\n") //nolint:errcheck // flush reports the error
	}
}

func remoteIP(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
