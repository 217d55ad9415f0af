package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medrecords/patient-portal/internal/client"
)

func clientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Talk to a running portal",
	}
	cmd.PersistentFlags().String("base-url", "http://localhost:3001", "portal base URL")
	cmd.PersistentFlags().String("email", "", "account email")
	cmd.PersistentFlags().String("password", "", "account password")
	cmd.PersistentFlags().String("bot-token", "", "Turnstile response token")

	cmd.AddCommand(&cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, email, pw, bot, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			msg, err := c.Register(cmd.Context(), email, pw, bot)
			if err != nil {
				return friendly(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Log in and print the patient record",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, email, pw, bot, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := c.Login(cmd.Context(), email, pw, bot); err != nil {
				return friendly(err)
			}
			defer c.Logout(cmd.Context())

			p, err := client.NewRecordEditor(c).Load(cmd.Context(), email)
			if err != nil {
				return friendly(err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	})

	return cmd
}

func clientFromFlags(cmd *cobra.Command) (*client.Client, string, string, string, error) {
	base, _ := cmd.Flags().GetString("base-url")
	email, _ := cmd.Flags().GetString("email")
	pw, _ := cmd.Flags().GetString("password")
	bot, _ := cmd.Flags().GetString("bot-token")
	c, err := client.New(base)
	return c, email, pw, bot, err
}

func friendly(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.FriendlyMessage())
	}
	return err
}
