package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/app"
	"github.com/immxrtalbeast/roomrent/internal/auth"
	"github.com/immxrtalbeast/roomrent/internal/config"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/spf13/cobra"
)

var configPath string

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/local.yaml"
	}
	return config.LoadPath(path)
}

func withApp(fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a, err := app.New(cfg, app.SetupLogger(cfg.Env))
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			if err := a.Migrate(); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		}),
	}
}

func expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Expire contracts whose end date has passed",
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			n, err := a.Contracts.ExpireDue(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d contracts\n", n)
			return err
		}),
	}
}

func billCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bill",
		Short: "Issue this month's rent invoices",
		RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			n, err := a.Invoices.GenerateMonthly(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "issued %d invoices\n", n)
			return err
		}),
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [room-id]",
		Short: "Re-evaluate post visibility for one room or all rooms",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			var roomIDs []uuid.UUID
			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid room id: %w", err)
				}
				roomIDs = append(roomIDs, id)
			} else {
				rooms, err := a.Store.Rooms.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, room := range rooms {
					roomIDs = append(roomIDs, room.ID)
				}
			}

			out := cmd.OutOrStdout()
			for _, id := range roomIDs {
				verdicts, err := a.Visibility.ReconcileRoom(cmd.Context(), id)
				if err != nil {
					return err
				}
				for _, v := range verdicts {
					fmt.Fprintf(out, "%s\t%s\t%s\t%t\t%s\n", id, v.Post.ID, v.Post.Type, v.Visibility.ShouldShow, v.Visibility.Reason)
				}
			}
			return nil
		}),
	}
}

func tokenCmd() *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <actor-id>",
		Short: "Sign a bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorRole := domain.Role(strings.ToLower(strings.TrimSpace(role)))
			if !actorRole.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid actor id: %w", err)
			}
			raw, err := auth.Sign(cfg.Auth.JWTSecret, domain.Actor{ID: id, Role: actorRole}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(domain.RoleTenant), "tenant, landlord or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
