// Package credentials provides secure storage and retrieval of the
// time-tracking API token using the OS-native keyring with fallback to an
// environment variable.
package credentials

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	// ServiceName is the keyring service under which tokens are stored
	ServiceName = "timeat"

	// TokenAccount is the keyring account name for the API token
	TokenAccount = "api-token"

	// TokenEnvVar overrides the keyring when set
	TokenEnvVar = "TIMEAT_API_TOKEN"
)

// Source indicates where a token was retrieved from
type Source string

const (
	SourceKeyring     Source = "keyring"
	SourceEnvironment Source = "environment"
	SourceNone        Source = "none"
)

// TokenInfo contains token information returned by Manager.Token
type TokenInfo struct {
	Source Source
	Token  string
	Found  bool
}

// Manager resolves the API token from the environment and the keyring
type Manager struct {
	keyring Keyring
}

// NewManager creates a manager backed by the given keyring.
// Pass nil to use the system keyring.
func NewManager(kr Keyring) *Manager {
	if kr == nil {
		kr = NewSystemKeyring()
	}
	return &Manager{keyring: kr}
}

// Token returns the API token, preferring the environment variable over
// the keyring. A missing token is not an error; check Found.
func (m *Manager) Token() (TokenInfo, error) {
	if token := os.Getenv(TokenEnvVar); token != "" {
		return TokenInfo{Source: SourceEnvironment, Token: token, Found: true}, nil
	}

	token, err := m.keyring.Get(ServiceName, TokenAccount)
	if err != nil {
		if IsNotFound(err) {
			return TokenInfo{Source: SourceNone}, nil
		}
		return TokenInfo{}, fmt.Errorf("keyring lookup failed: %w", err)
	}
	return TokenInfo{Source: SourceKeyring, Token: token, Found: true}, nil
}

// Store saves the API token in the keyring
func (m *Manager) Store(token string) error {
	if token == "" {
		return fmt.Errorf("refusing to store an empty token")
	}
	return m.keyring.Set(ServiceName, TokenAccount, token)
}

// Remove deletes the API token from the keyring. Removing a token that
// was never stored is not an error.
func (m *Manager) Remove() error {
	err := m.keyring.Delete(ServiceName, TokenAccount)
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

// PromptToken asks for the API token. When reader is a terminal the input
// is hidden; otherwise (tests, pipes) a line is read in the clear.
func PromptToken(reader io.Reader, writer io.Writer) (string, error) {
	_, _ = fmt.Fprint(writer, "Enter API token: ")

	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(writer)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}

	scanner := bufio.NewScanner(reader)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("no input received")
}
