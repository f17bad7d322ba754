package remote

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"

	"github.com/sadopc/heft/internal/ops"
)

// Key files tried in order when no agent holds a usable key.
var defaultKeyFiles = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// prompter asks the operator questions during connection setup.
type prompter interface {
	Confirm(question string) (bool, error)
	Secret(question string) (string, error)
}

// ttyPrompter talks to the controlling terminal over stdin and stderr.
type ttyPrompter struct{}

func (ttyPrompter) Confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("cannot ask for confirmation: stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (ttyPrompter) Secret(question string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("cannot ask for a password: stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, question)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// hostKeyStore verifies server keys against a known_hosts file. Unknown
// hosts are trusted on first use after confirmation; changed keys replace
// the stored entry only when the operator agrees. Batch mode never asks.
type hostKeyStore struct {
	path   string
	target Target
	batch  bool
	ask    prompter
}

func newHostKeyStore(target Target, batch bool, ask prompter) (*hostKeyStore, error) {
	path, err := knownHostsFile()
	if err != nil {
		return nil, err
	}
	return &hostKeyStore{path: path, target: target, batch: batch, ask: ask}, nil
}

// knownHostsFile returns ~/.ssh/known_hosts, creating it empty if needed.
func knownHostsFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating known_hosts: %w", err)
	}
	dir := filepath.Join(home, ".ssh")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, "known_hosts")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("opening known_hosts: %w", err)
	}
	return path, f.Close()
}

// hostPattern is how the target is written in known_hosts.
func (h *hostKeyStore) hostPattern() string {
	return knownhosts.Normalize(h.target.Address())
}

func (h *hostKeyStore) callback() ssh.HostKeyCallback {
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		verify, err := knownhosts.New(h.path)
		if err != nil {
			return fmt.Errorf("loading known_hosts: %w", err)
		}
		err = verify(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if err == nil || !errors.As(err, &keyErr) {
			return err
		}
		if len(keyErr.Want) == 0 {
			return h.trust(key)
		}
		return h.replace(key, keyErr.Want)
	}
}

func (h *hostKeyStore) trust(key ssh.PublicKey) error {
	host := h.hostPattern()
	fingerprint := ssh.FingerprintSHA256(key)
	if h.batch {
		return fmt.Errorf("unknown host key for %s (%s); connect once interactively to trust it", host, fingerprint)
	}
	ok, err := h.ask.Confirm(fmt.Sprintf(
		"The authenticity of host '%s' can't be established.\n%s key fingerprint is %s.\nTrust it and continue (yes/no)? ",
		host, key.Type(), fingerprint))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("host key for %s was not trusted", host)
	}
	return h.rewrite(key)
}

func (h *hostKeyStore) replace(key ssh.PublicKey, stored []knownhosts.KnownKey) error {
	host := h.hostPattern()
	want := make([]string, len(stored))
	for i, k := range stored {
		want[i] = ssh.FingerprintSHA256(k.Key)
	}
	mismatch := fmt.Sprintf("host key for %s changed: stored %s, presented %s",
		host, strings.Join(want, ", "), ssh.FingerprintSHA256(key))
	if h.batch {
		return errors.New(mismatch)
	}
	ok, err := h.ask.Confirm("WARNING: " + mismatch + "\nReplace the stored key and continue (yes/no)? ")
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(mismatch)
	}
	return h.rewrite(key)
}

// rewrite drops every entry for the target and appends key.
func (h *hostKeyStore) rewrite(key ssh.PublicKey) error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return fmt.Errorf("reading known_hosts: %w", err)
	}
	kept := withoutHost(data, h.target)
	line := knownhosts.Line([]string{h.hostPattern()}, key)
	err = ops.WriteFileAtomic(h.path, func(w io.Writer) error {
		for _, l := range kept {
			if _, err := io.WriteString(w, l+"\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, line+"\n")
		return err
	})
	if err != nil {
		return fmt.Errorf("updating known_hosts: %w", err)
	}
	return nil
}

// withoutHost returns the known_hosts lines that do not name target.
// Comments and hashed entries are kept as they are.
func withoutHost(data []byte, target Target) []string {
	want := knownhosts.Normalize(target.Address())
	var kept []string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && strings.HasPrefix(fields[0], "@") {
			fields = fields[1:]
		}
		if len(fields) > 0 && !strings.HasPrefix(fields[0], "#") && namesHost(fields[0], want) {
			continue
		}
		if line != "" || len(kept) > 0 {
			kept = append(kept, line)
		}
	}
	return kept
}

func namesHost(patterns, want string) bool {
	for _, p := range strings.Split(patterns, ",") {
		if knownhosts.Normalize(p) == want {
			return true
		}
	}
	return false
}

// authMethods offers the agent, then default key files, then (unless batch
// mode is set) an interactive password.
func authMethods(target Target, batch bool, ask prompter) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if sock := os.Getenv("SSH_AUTH_SOCK"); strings.TrimSpace(sock) != "" {
		methods = append(methods, ssh.PublicKeysCallback(agentSigners(sock)))
	}
	if home, err := os.UserHomeDir(); err == nil {
		if signers := keyFileSigners(filepath.Join(home, ".ssh"), defaultKeyFiles); len(signers) > 0 {
			methods = append(methods, ssh.PublicKeys(signers...))
		}
	}
	if !batch {
		pw := &cachedPassword{ask: ask, question: fmt.Sprintf("%s@%s's password: ", target.User, target.Host)}
		methods = append(methods,
			ssh.PasswordCallback(pw.get),
			ssh.KeyboardInteractive(pw.challenge))
	}
	if len(methods) == 0 {
		return nil, errors.New("no ssh credentials available: start ssh-agent or add a key under ~/.ssh")
	}
	return methods, nil
}

func agentSigners(sock string) func() ([]ssh.Signer, error) {
	return func() ([]ssh.Signer, error) {
		conn, err := net.Dial("unix", sock)
		if err != nil {
			return nil, fmt.Errorf("ssh-agent: %w", err)
		}
		defer conn.Close()
		return agent.NewClient(conn).Signers()
	}
}

// keyFileSigners loads the unencrypted keys among names in dir. Missing,
// unreadable and passphrase-protected keys are skipped.
func keyFileSigners(dir string, names []string) []ssh.Signer {
	var signers []ssh.Signer
	for _, name := range names {
		pem, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			continue
		}
		signers = append(signers, signer)
	}
	return signers
}

// cachedPassword asks once per connection and answers both password and
// keyboard-interactive challenges with the same secret.
type cachedPassword struct {
	ask      prompter
	question string

	once sync.Once
	pass string
	err  error
}

func (c *cachedPassword) get() (string, error) {
	c.once.Do(func() { c.pass, c.err = c.ask.Secret(c.question) })
	return c.pass, c.err
}

func (c *cachedPassword) challenge(_, _ string, questions []string, echos []bool) ([]string, error) {
	answers := make([]string, len(questions))
	for i := range questions {
		if i < len(echos) && echos[i] {
			continue
		}
		pass, err := c.get()
		if err != nil {
			return nil, err
		}
		answers[i] = pass
	}
	return answers, nil
}
