// Package remote runs scans against a host reachable over SSH, using the
// SFTP subsystem as the filesystem.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/scanner"
)

// DefaultConnectTimeout bounds the TCP dial and SSH handshake.
const DefaultConnectTimeout = 15 * time.Second

// Config configures a remote SFTP scan.
type Config struct {
	Target      string
	Port        int
	BatchMode   bool
	Timeout     time.Duration
	ScanTimeout time.Duration
	Logger      *slog.Logger
}

// SFTPScanner implements scanner.Scanner for a remote host. Each scan opens
// its own session.
type SFTPScanner struct {
	cfg  Config
	dial func(context.Context, Config) (sftpClient, io.Closer, error)
}

var _ scanner.Scanner = (*SFTPScanner)(nil)

var dialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

var sshNewClientConn = ssh.NewClientConn

// NewSFTPScanner creates a new remote scanner.
func NewSFTPScanner(cfg Config) *SFTPScanner {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &SFTPScanner{cfg: cfg, dial: dialSFTP}
}

// Scan connects, scans root on the remote host and disconnects. Paths in the
// report are remote POSIX paths.
func (s *SFTPScanner) Scan(ctx context.Context, root string, threshold uint64, opts scanner.Options, progress chan<- scanner.Progress) (*model.ScanReport, error) {
	if s.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ScanTimeout)
		defer cancel()
	}

	client, closer, err := s.dial(ctx, s.cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &scanner.ScanError{Kind: scanner.ErrCancelled, Path: root, Err: err}
		}
		return nil, &scanner.ScanError{Kind: scanner.ErrIO, Path: root, Err: err}
	}
	defer func() {
		if err := closer.Close(); err != nil {
			s.logger().Debug("closing sftp session", "target", s.cfg.Target, "err", err)
		}
	}()

	s.logger().Debug("remote scan started", "target", s.cfg.Target, "root", root)
	report, err := scanner.ScanFS(ctx, sftpFS{client: client}, root, threshold, opts, progress)
	if err != nil {
		return nil, err
	}
	s.logger().Debug("remote scan finished", "target", s.cfg.Target, "root", report.Root,
		"entries", len(report.Entries), "issues", len(report.Errors))
	return report, nil
}

func (s *SFTPScanner) logger() *slog.Logger {
	if s.cfg.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.cfg.Logger
}

func dialSFTP(ctx context.Context, cfg Config) (sftpClient, io.Closer, error) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, nil, fmt.Errorf("ssh port must be between 1 and 65535, got %d", cfg.Port)
	}

	target, err := ParseTarget(cfg.Target)
	if err != nil {
		return nil, nil, err
	}
	target.Port = cfg.Port

	term := ttyPrompter{}
	hostKeys, err := newHostKeyStore(target, cfg.BatchMode, term)
	if err != nil {
		return nil, nil, err
	}
	auth, err := authMethods(target, cfg.BatchMode, term)
	if err != nil {
		return nil, nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sshClient, err := connectSSH(dialCtx, target.Address(), &ssh.ClientConfig{
		User:            target.User,
		Auth:            auth,
		HostKeyCallback: hostKeys.callback(),
		Timeout:         timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("ssh connection to %s failed: %w", target, err)
	}

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, fmt.Errorf("cannot start sftp subsystem on %s: %w", target, err)
	}
	return client, &session{ssh: sshClient, sftp: client}, nil
}

// connectSSH dials addr and runs the handshake. Cancelling ctx closes the
// connection, which aborts a handshake or auth prompt in progress.
func connectSSH(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	conn, err := dialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	c, chans, reqs, err := sshNewClientConn(conn, addr, config)
	if !stop() || err != nil {
		_ = conn.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

// session owns both layers of a remote connection.
type session struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

func (s *session) Close() error {
	var errs []error
	if s.sftp != nil {
		errs = append(errs, s.sftp.Close())
	}
	if s.ssh != nil {
		errs = append(errs, s.ssh.Close())
	}
	return errors.Join(errs...)
}

// Target is a parsed user@host destination.
type Target struct {
	User string
	Host string
	Port int
}

// ParseTarget splits "user@host". The port defaults to 22.
func ParseTarget(s string) (Target, error) {
	if s == "" {
		return Target{}, errors.New("remote target is required")
	}
	i := strings.LastIndex(s, "@")
	if i <= 0 || i == len(s)-1 {
		return Target{}, fmt.Errorf("invalid remote target %q: expected user@host", s)
	}
	return Target{User: s[:i], Host: s[i+1:], Port: 22}, nil
}

// Address is the host:port to dial.
func (t Target) Address() string {
	port := t.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(port))
}

func (t Target) String() string { return t.User + "@" + t.Address() }
