package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grokfaves/pkg/auth"
)

var (
	authSessionToken string
	authCSRFToken    string
	authUserAgent    string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage host session credentials",
}

var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store session credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if authSessionToken == "" {
			return fmt.Errorf("--session-token is required")
		}
		manager, err := auth.NewManager()
		if err != nil {
			return err
		}
		creds := &auth.Credentials{
			SessionToken: authSessionToken,
			CSRFToken:    authCSRFToken,
			UserAgent:    authUserAgent,
		}
		if err := manager.Save(creds); err != nil {
			return err
		}
		fmt.Println("Credentials stored.")
		return nil
	},
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show whether credentials are available",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := auth.NewManager()
		if err != nil {
			return err
		}
		creds, err := manager.Retrieve()
		if err != nil {
			fmt.Println("No credentials stored.")
			return nil
		}
		fmt.Printf("Session token: %s\n", maskToken(creds.SessionToken))
		if creds.CSRFToken != "" {
			fmt.Printf("CSRF token:    %s\n", maskToken(creds.CSRFToken))
		}
		if !creds.LastModified.IsZero() {
			fmt.Printf("Last modified: %s\n", creds.LastModified.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := auth.NewManager()
		if err != nil {
			return err
		}
		if err := manager.Clear(); err != nil {
			return err
		}
		fmt.Println("Credentials cleared.")
		return nil
	},
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func init() {
	authSetCmd.Flags().StringVar(&authSessionToken, "session-token", "", "host session token")
	authSetCmd.Flags().StringVar(&authCSRFToken, "csrf-token", "", "host CSRF token")
	authSetCmd.Flags().StringVar(&authUserAgent, "user-agent", "", "user agent to present")

	authCmd.AddCommand(authSetCmd, authShowCmd, authClearCmd)
	rootCmd.AddCommand(authCmd)
}
