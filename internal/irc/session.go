package irc

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/proxy"

	"github.com/adsbwatch/planespotter/internal/log"
)

const (
	dialTimeout      = 15 * time.Second
	handshakeTimeout = 60 * time.Second
	writeTimeout     = 10 * time.Second
	ctcpDelimiter    = "\x01"
	versionReply     = "planespotter 0.1"
)

// Config holds the IRC connection parameters.
type Config struct {
	Server   string
	Port     int
	Nick     string
	Realname string
	Channel  string
	// Proxy is an optional SOCKS5 address ("host:port").
	Proxy string
}

// Session is a minimal IRC client session: register, join one channel, send
// PRIVMSGs and answer keepalive PINGs. All writes share one mutex so
// concurrent senders never interleave partial lines.
type Session struct {
	cfg    Config
	conn   net.Conn
	reader *bufio.Reader
	wmu    sync.Mutex
	logger *log.Logger
}

// Dial connects, registers and joins the configured channel. Registration
// follows the server's lead: the session answers the first PING and treats
// either that or the 001 welcome as ready to JOIN.
func Dial(ctx context.Context, cfg Config, logger *log.Logger) (*Session, error) {
	addr := net.JoinHostPort(cfg.Server, strconv.Itoa(cfg.Port))

	conn, err := dial(ctx, cfg.Proxy, addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	s := &Session{
		cfg:    cfg,
		conn:   conn,
		reader: bufio.NewReader(conn),
		logger: logger,
	}

	if err := s.register(); err != nil {
		conn.Close()
		return nil, err
	}

	if err := s.writeLine("JOIN %s", cfg.Channel); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join %s: %w", cfg.Channel, err)
	}
	logger.Info("joined channel", map[string]interface{}{
		"server":  cfg.Server,
		"channel": cfg.Channel,
	})

	return s, nil
}

func dial(ctx context.Context, proxyAddr, addr string) (net.Conn, error) {
	if proxyAddr == "" {
		d := &net.Dialer{Timeout: dialTimeout}
		return d.DialContext(ctx, "tcp", addr)
	}

	d, err := proxy.SOCKS5("tcp", proxyAddr, nil, &net.Dialer{Timeout: dialTimeout})
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy %s: %w", proxyAddr, err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", addr)
	}
	return d.Dial("tcp", addr)
}

// register sends NICK/USER and waits until the server acknowledges with a
// PING or the 001 welcome numeric.
func (s *Session) register() error {
	if err := s.writeLine("NICK %s", s.cfg.Nick); err != nil {
		return fmt.Errorf("send NICK: %w", err)
	}
	if err := s.writeLine("USER %s 0 * :%s", s.cfg.Nick, s.cfg.Realname); err != nil {
		return fmt.Errorf("send USER: %w", err)
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		return err
	}
	defer s.conn.SetReadDeadline(time.Time{})

	for {
		line, err := s.readLine()
		if err != nil {
			return fmt.Errorf("registration read: %w", err)
		}

		if strings.HasPrefix(line, "PING") {
			if err := s.pong(line); err != nil {
				return err
			}
			return nil
		}
		if isWelcome(line) {
			return nil
		}
	}
}

// Name identifies the sink in logs.
func (s *Session) Name() string {
	return "irc"
}

// Send delivers one message to the joined channel.
func (s *Session) Send(text string) error {
	return s.writeLine("PRIVMSG %s :%s", s.cfg.Channel, text)
}

// Listen answers server PINGs and CTCP VERSION requests until the context
// is cancelled or the connection drops. Run it in its own goroutine.
func (s *Session) Listen(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	for {
		line, err := s.readLine()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("irc read: %w", err)
		}

		switch {
		case strings.HasPrefix(line, "PING"):
			if err := s.pong(line); err != nil {
				s.logger.LogError("irc", err, nil)
			}
		case strings.Contains(line, "PRIVMSG") && strings.Contains(line, ctcpDelimiter+"VERSION"+ctcpDelimiter):
			s.answerVersion(line)
		}
	}
}

// Close shuts the connection down.
func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) pong(ping string) error {
	token := ""
	if idx := strings.Index(ping, ":"); idx >= 0 {
		token = strings.TrimSpace(ping[idx+1:])
	}
	return s.writeLine("PONG :%s", token)
}

func (s *Session) answerVersion(line string) {
	if !strings.HasPrefix(line, ":") {
		return
	}
	bang := strings.Index(line, "!")
	if bang <= 1 {
		return
	}
	sender := line[1:bang]
	if err := s.writeLine("NOTICE %s :%sVERSION %s%s", sender, ctcpDelimiter, versionReply, ctcpDelimiter); err != nil {
		s.logger.LogError("irc", err, nil)
		return
	}
	s.logger.Debug("answered CTCP VERSION", map[string]interface{}{"from": sender})
}

func (s *Session) readLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *Session) writeLine(format string, args ...interface{}) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(s.conn, format+"\r\n", args...)
	return err
}

// isWelcome detects the RPL_WELCOME numeric (001).
func isWelcome(line string) bool {
	fields := strings.Fields(line)
	return len(fields) >= 2 && fields[1] == "001"
}
