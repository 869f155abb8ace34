package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	ferrors "github.com/andresmejia3/facecrypt/internal/errors"
)

// promptFunc reads one line from the user without echo.
type promptFunc func(label string) (string, error)

// resolvePassword returns the configured password (flag, then
// FACECRYPT_PASSWORD) or asks for one when a terminal is attached. With
// confirm set the password must be typed twice. Surrounding whitespace is
// trimmed, so a blank password counts as missing.
func resolvePassword(configured string, interactive bool, prompt promptFunc, confirm bool) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured, nil
	}
	if !interactive || prompt == nil {
		return "", fmt.Errorf("no password: use --password, FACECRYPT_PASSWORD or a terminal: %w", ferrors.ErrEmptyInput)
	}

	pw, err := prompt("Password: ")
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	pw = strings.TrimSpace(pw)
	if pw == "" {
		return "", fmt.Errorf("password: %w", ferrors.ErrEmptyInput)
	}
	if confirm {
		again, err := prompt("Confirm password: ")
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		if strings.TrimSpace(again) != pw {
			return "", errors.New("passwords do not match")
		}
	}
	return pw, nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func terminalPrompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func password(confirm bool) (string, error) {
	pw, err := resolvePassword(cfg.Password, stdinIsTerminal(), terminalPrompt, confirm)
	if err != nil {
		return "", fail("Password required", err)
	}
	return pw, nil
}
