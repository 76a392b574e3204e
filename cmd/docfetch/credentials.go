package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"github.com/hazyhaar/docfetch/acquire/model"
)

const (
	keyringService = "docfetch"
	envEmail       = "BUDSTANDART_EMAIL"
	envPassword    = "BUDSTANDART_PASSWORD"
)

// resolveCredentials takes each value from the flag, then the environment;
// the password finally falls back to the keyring entry of the email.
func resolveCredentials(email, password string, getenv func(string) string) (model.Credentials, error) {
	if email == "" {
		email = strings.TrimSpace(getenv(envEmail))
	}
	if email == "" {
		return model.Credentials{}, fmt.Errorf("no portal email: use --email or %s", envEmail)
	}
	if password == "" {
		password = getenv(envPassword)
	}
	if password == "" {
		pw, err := keyring.Get(keyringService, email)
		switch {
		case errors.Is(err, keyring.ErrNotFound):
			return model.Credentials{}, fmt.Errorf("no password for %s: use --password, %s or 'docfetch credentials set'", email, envPassword)
		case err != nil:
			return model.Credentials{}, fmt.Errorf("keyring: %w", err)
		}
		password = pw
	}
	return model.Credentials{Identifier: email, Secret: password}, nil
}

func (a *app) credentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the portal password stored in the OS keyring.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store the password for --email (read from --password or stdin).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email := a.email()
			if email == "" {
				return fmt.Errorf("no portal email: use --email or %s", envEmail)
			}
			password := a.opts.password
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password is empty")
			}
			if err := keyring.Set(keyringService, email, password); err != nil {
				return fmt.Errorf("keyring: %w", err)
			}
			a.logger.Info("docfetch: credentials stored", "email", email)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored password for --email.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			email := a.email()
			if email == "" {
				return fmt.Errorf("no portal email: use --email or %s", envEmail)
			}
			if err := keyring.Delete(keyringService, email); err != nil {
				return fmt.Errorf("keyring: %w", err)
			}
			a.logger.Info("docfetch: credentials deleted", "email", email)
			return nil
		},
	})
	return cmd
}

func (a *app) email() string {
	if a.opts.email != "" {
		return a.opts.email
	}
	return strings.TrimSpace(a.getenv(envEmail))
}
