package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RunHashPassword reads a password from the first line of in and writes its bcrypt hash to out.
func RunHashPassword(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	password, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read password from stdin: %w", err)
	}

	// Trim newline
	password = strings.TrimSuffix(password, "\n")
	password = strings.TrimSuffix(password, "\r")

	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to generate password hash: %w", err)
	}

	// Output just the hash
	_, err = fmt.Fprintln(out, string(hash))
	return err
}
