package backend

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"spyglass/internal/adapter"
	"spyglass/internal/config"
	"spyglass/internal/result"
)

// sshProbeAdapter describes an SSH endpoint without authenticating:
// protocol banner, host key, and the auth methods the server offers.
// Both the dial and the handshake carry the configured timeout.
type sshProbeAdapter struct {
	host    string
	port    int
	timeout time.Duration
}

func sshFactory(cfg *config.Config) adapter.Factory {
	return func(_ context.Context, in adapter.ConstructInput) (adapter.Adapter, error) {
		if in.URI.Host == "" {
			return nil, adapter.Validationf("ssh requires a host, e.g. ssh://example.com:22")
		}
		port := in.URI.Port
		if port == 0 {
			port = 22
		}
		return &sshProbeAdapter{host: in.URI.Host, port: port, timeout: cfg.Timeouts.SSH}, nil
	}
}

// SSHProbe is what an unauthenticated probe can see.
type SSHProbe struct {
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	Banner      string   `json:"banner"`
	HostKeyType string   `json:"host_key_type,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	AuthMethods []string `json:"auth_methods,omitempty"`
}

func (p SSHProbe) FormatText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "endpoint:     %s:%d\nbanner:       %s\nhost key:     %s\nfingerprint:  %s\nauth methods: %s\n",
		p.Host, p.Port, p.Banner, p.HostKeyType, p.Fingerprint, strings.Join(p.AuthMethods, ", "))
	return err
}

func (a *sshProbeAdapter) Structure(ctx context.Context) (*result.Record, error) {
	probe := SSHProbe{Host: a.host, Port: a.port}

	banner, err := a.readBanner(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe %s:%d: %w", a.host, a.port, err)
	}
	probe.Banner = banner

	// Second connection for the handshake; the server hung up after the
	// banner read above.
	a.handshake(ctx, &probe)

	return result.New("ssh_probe", net.JoinHostPort(a.host, strconv.Itoa(a.port)), probe), nil
}

// readBanner grabs the version line the server sends first.
func (a *sshProbeAdapter) readBanner(ctx context.Context) (string, error) {
	dialer := &net.Dialer{Timeout: a.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(a.host, strconv.Itoa(a.port)))
	if err != nil {
		return "", fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(a.timeout)); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read banner: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// handshake attempts an unauthenticated SSH handshake to capture the
// host key and the advertised auth methods. Failure to authenticate is
// the expected outcome; whatever was learned before it stays in probe.
func (a *sshProbeAdapter) handshake(ctx context.Context, probe *SSHProbe) {
	addr := net.JoinHostPort(a.host, strconv.Itoa(a.port))

	dialer := &net.Dialer{Timeout: a.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return
	}
	defer conn.Close()

	cfg := &ssh.ClientConfig{
		User:    "spyglass-probe",
		Timeout: a.timeout,
		HostKeyCallback: func(_ string, _ net.Addr, key ssh.PublicKey) error {
			probe.HostKeyType = key.Type()
			probe.Fingerprint = ssh.FingerprintSHA256(key)
			return nil
		},
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		probe.AuthMethods = parseAuthMethods(err.Error())
		return
	}
	// A server accepting "none" auth; close the session politely.
	ssh.NewClient(sshConn, chans, reqs).Close()
}

// parseAuthMethods pulls the method list out of the standard
// "attempted methods [none], no supported methods remain" error text.
func parseAuthMethods(msg string) []string {
	start := strings.Index(msg, "[")
	end := strings.Index(msg, "]")
	if start < 0 || end <= start {
		return nil
	}
	raw := strings.Split(msg[start+1:end], " ")
	methods := make([]string, 0, len(raw))
	for _, m := range raw {
		m = strings.Trim(m, ",")
		if m != "" && m != "none" {
			methods = append(methods, m)
		}
	}
	if len(methods) == 0 {
		return nil
	}
	return methods
}
