package main

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd() *cobra.Command {
	var email string
	var password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the API and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = prompt("Email")
			}
			if password == "" {
				password = promptSecret("Password")
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}
			cli := apiClient(cmd)
			tok, err := cli.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func prompt(label string) string {
	fmt.Printf("%s: ", label)
	var s string
	if _, err := fmt.Scanln(&s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func promptSecret(label string) string {
	fmt.Printf("%s: ", label)
	b, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return strings.TrimSpace(string(b))
}
