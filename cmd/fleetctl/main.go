// Command fleetctl administers a fleet database: it loads seed fixtures,
// creates accounts and prints reference tables.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"fleet-records-backend/config"
	"fleet-records-backend/internal/db"
	"fleet-records-backend/internal/seed"
	"fleet-records-backend/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore reads the config and opens the database. The caller must call
// the returned close function.
func openStore(configPath string) (store.Store, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	gdb, err := db.Init(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return store.NewGormStore(gdb), func() { closeDB(gdb) }, nil
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}

type opener func(configPath string) (store.Store, func(), error)

func newRootCmd() *cobra.Command {
	return newRootCmdWith(openStore)
}

func newRootCmdWith(open opener) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "fleetctl",
		Short:        "Administer the fleet records database",
		SilenceUsage: true,
	}
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config/config.yaml"
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultPath, "path to the config file")

	withStore := func(cmd *cobra.Command, fn func(ctx context.Context, s store.Store) error) error {
		s, closeFn, err := open(configPath)
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(cmd.Context(), s)
	}

	seedCmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load a YAML fixture; safe to run repeatedly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, func(ctx context.Context, s store.Store) error {
				r, err := seed.NewLoader(s).Apply(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "lookups %d, users %d, machines %d, maintenance %d, claims %d\n",
					r.Lookups, r.Users, r.Machines, r.Maintenance, r.Claims)
				return nil
			})
		},
	}

	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}

	var email, password, role string
	usersAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Create or update an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Accounts are checked against the fixture schema.
			raw, err := json.Marshal(seed.Fixture{Users: []seed.User{{Email: email, Password: password, Role: role}}})
			if err != nil {
				return err
			}
			f, err := seed.Parse(cmd.Context(), raw)
			if err != nil {
				return err
			}
			return withStore(cmd, func(ctx context.Context, s store.Store) error {
				if _, err := seed.NewLoader(s).Apply(ctx, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s saved with role %s\n", f.Users[0].Email, role)
				return nil
			})
		},
	}
	usersAddCmd.Flags().StringVar(&email, "email", "", "account email (required)")
	usersAddCmd.Flags().StringVar(&password, "password", "", "account password (required)")
	usersAddCmd.Flags().StringVar(&role, "role", "manager", "manager, client or service_company")
	_ = usersAddCmd.MarkFlagRequired("email")
	_ = usersAddCmd.MarkFlagRequired("password")

	var usersRole string
	usersListCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, s store.Store) error {
				users, err := s.ListUsers(ctx, usersRole)
				if err != nil {
					return err
				}
				tw := table(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tEMAIL\tROLE")
				for _, u := range users {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Email, u.Role)
				}
				return tw.Flush()
			})
		},
	}
	usersListCmd.Flags().StringVar(&usersRole, "role", "", "only accounts with this role")
	usersCmd.AddCommand(usersAddCmd, usersListCmd)

	lookupsCmd := &cobra.Command{
		Use:   "lookups",
		Short: "Inspect reference tables",
	}
	lookupsListCmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "Print one reference table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := store.KindOf(args[0])
			if !ok {
				return fmt.Errorf("unknown lookup table %q", args[0])
			}
			return withStore(cmd, func(ctx context.Context, s store.Store) error {
				rows, err := s.ListLookups(ctx, kind)
				if err != nil {
					return err
				}
				tw := table(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
				for _, d := range rows {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, d.Name, d.Description)
				}
				return tw.Flush()
			})
		},
	}
	lookupsCmd.AddCommand(lookupsListCmd)

	root.AddCommand(seedCmd, usersCmd, lookupsCmd)
	return root
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
