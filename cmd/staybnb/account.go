package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"staybnb/internal/entities"
)

func (a *app) loginCmd() *cobra.Command {
	var req entities.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session on disk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.client.Login(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var req entities.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", u.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone in E.164 format, e.g. +14155550100")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and forget the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := a.client.Session().User()
			if u == nil {
				return errors.New("not logged in")
			}
			role := "guest"
			if u.IsHost {
				role = "host"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", u.Name, u.Email, role)
			return nil
		},
	}
}

func (a *app) becomeHostCmd() *cobra.Command {
	var (
		req       entities.BecomeHostRequest
		languages string
	)
	cmd := &cobra.Command{
		Use:   "become-host",
		Short: "Turn the account into a host account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if languages != "" {
				req.Languages = strings.Split(languages, ",")
			}
			if _, err := a.client.BecomeHost(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "You are now a host")
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Bio, "bio", "", "short bio")
	cmd.Flags().StringVar(&req.Experience, "experience", "", "hosting experience")
	cmd.Flags().StringVar(&languages, "languages", "", "comma-separated languages")
	return cmd
}
