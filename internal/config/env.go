package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

const (
	// PasswordEnvVar holds the controller password (plain text or md5 hex).
	PasswordEnvVar = "OPENSPRINKLER_PASSWORD"
	// EndpointEnvVar holds the controller base URL.
	EndpointEnvVar = "OPENSPRINKLER_ENDPOINT"
	// ListenEnvVar holds the exporter listen address.
	ListenEnvVar = "OPENSPRINKLER_LISTEN"
)

// LoadEnv loads variables from .env style files into the process
// environment. Missing files are ignored; variables already set win.
// With no arguments, ./.env is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// EnvPassword returns the password from the environment, if any.
func EnvPassword() (string, bool) {
	return lookupNonEmpty(PasswordEnvVar)
}

// EnvEndpoint returns the controller endpoint from the environment, if any.
func EnvEndpoint() (string, bool) {
	return lookupNonEmpty(EndpointEnvVar)
}

func lookupNonEmpty(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// ResolvePassword returns the password from the environment, or prompts on
// the terminal without echo. Fails when stdin is not a terminal.
func ResolvePassword(prompt string) (string, error) {
	if pw, ok := EnvPassword(); ok {
		return pw, nil
	}
	return PromptPassword(prompt)
}

// PromptPassword reads a password from the terminal without echo.
func PromptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password: set %s or run interactively", PasswordEnvVar)
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
