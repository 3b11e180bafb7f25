// Command staybnb is a terminal front end for the staybnb API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"staybnb/internal/client"
	apperrors "staybnb/internal/errors"
)

type app struct {
	client *client.Client
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "staybnb",
		Short:         "Search stays, book them and manage your listings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if viper.GetBool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			store := &client.FileStore{Path: viper.GetString("session")}
			a.client = client.New(viper.GetString("api"), client.NewSession(store))
			return a.client.Restore(cmd.Context())
		},
	}

	home, _ := os.UserHomeDir()
	root.PersistentFlags().String("api", "http://localhost:8080/api", "API base URL")
	root.PersistentFlags().String("session", filepath.Join(home, ".staybnb", "session.json"), "session file")
	root.PersistentFlags().Bool("debug", false, "verbose logging")
	for _, name := range []string{"api", "session", "debug"} {
		_ = viper.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}
	viper.SetEnvPrefix("STAYBNB")
	viper.AutomaticEnv()

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.becomeHostCmd(),
		a.searchCmd(),
		a.favoriteCmd(),
		calendarCmd(),
		a.quoteCmd(),
		a.bookCmd(),
		a.tripsCmd(),
		a.cancelCmd(),
		a.hostCmd(),
		a.listingCmd(),
	)
	root.SetContext(context.Background())
	return root
}

// describe spells out field errors one per line.
func describe(err error) string {
	var (
		header = err.Error()
		fields apperrors.FieldErrors
		apiErr *client.APIError
		verr   *apperrors.ValidationError
	)
	switch {
	case errors.As(err, &apiErr):
		fields = apiErr.Fields
	case errors.As(err, &verr):
		header, fields = "validation failed", verr.Fields
	}
	if len(fields) == 0 {
		return err.Error()
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(header)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, fields[k])
	}
	return b.String()
}

func (a *app) requireLogin() error {
	if a.client.Session().Status() != client.StatusAuthenticated {
		return errors.New("not logged in, run `staybnb login` first")
	}
	return nil
}
