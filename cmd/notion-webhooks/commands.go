package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-notion/adapters/gocommand"
	"github.com/goliatone/go-notion/api"
	notioncommand "github.com/goliatone/go-notion/command"
	"github.com/goliatone/go-notion/core"
	notionquery "github.com/goliatone/go-notion/query"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Notion webhook endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *runtime) error {
				cfg := rt.service.Config()
				srv := &http.Server{
					Addr:              addr,
					Handler:           rt.service.HTTPHandler(),
					ReadHeaderTimeout: 10 * time.Second,
				}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				rt.logger.Info("notion webhook endpoint listening", "addr", addr, "path", cfg.Webhooks.Path)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger()
			client, err := openPersistence(ctx, logger)
			if err != nil {
				return err
			}
			defer client.Close()
			if err := client.Migrate(ctx); err != nil {
				return err
			}
			logger.Info("notion migrations applied")
			return nil
		},
	}
}

func subscribersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "subscribers", Short: "Manage webhook subscriber registrations"}
	cmd.AddCommand(subscribersRegisterCmd())
	cmd.AddCommand(subscribersUnregisterCmd())
	cmd.AddCommand(subscribersListCmd())
	return cmd
}

func subscribersRegisterCmd() *cobra.Command {
	var id, category, entityID string
	var eventTypes []string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create or replace a registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(cmd.Context(), func(ctx context.Context, _ *runtime) error {
				return gocommand.Dispatch(ctx, notioncommand.RegisterSubscriberMessage{
					Registration: core.SubscriberRegistration{
						ID:         id,
						Category:   core.Category(category),
						EventTypes: eventTypes,
						EntityID:   entityID,
					},
				})
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "registration id")
	cmd.Flags().StringVar(&category, "category", "", "category (page, database, data_source, comment)")
	cmd.Flags().StringSliceVar(&eventTypes, "event-type", nil, "allowed event type (repeatable)")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "only events about this entity")
	return cmd
}

func subscribersUnregisterCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "unregister",
		Short: "Remove a registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(cmd.Context(), func(ctx context.Context, _ *runtime) error {
				return gocommand.Dispatch(ctx, notioncommand.UnregisterSubscriberMessage{RegistrationID: id})
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "registration id")
	return cmd
}

func subscribersListCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registrations of one category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(cmd.Context(), func(ctx context.Context, _ *runtime) error {
				registrations, err := gocommand.Query[notionquery.ListSubscribersMessage, []core.SubscriberRegistration](ctx, notionquery.ListSubscribersMessage{
					Category: core.Category(category),
				})
				if err != nil {
					return err
				}
				return printJSON(registrations)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", string(core.CategoryPage), "category (page, database, data_source, comment)")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Inspect the webhook verification token"}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether a verification token is provisioned",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(cmd.Context(), func(ctx context.Context, _ *runtime) error {
				status, err := gocommand.Query[notionquery.WebhookTokenStatusMessage, notionquery.WebhookTokenStatus](ctx, notionquery.WebhookTokenStatusMessage{})
				if err != nil {
					return err
				}
				return printJSON(status)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "resync",
		Short: "Republish the stored token to the operator signal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(cmd.Context(), func(ctx context.Context, _ *runtime) error {
				result := gocmd.NewResult[bool]()
				ctx = gocmd.ContextWithResult(ctx, result)
				if err := gocommand.Dispatch(ctx, notioncommand.ResyncTokenMessage{}); err != nil {
					return err
				}
				published, _ := result.Load()
				return printJSON(map[string]any{"published": published})
			})
		},
	})
	return cmd
}

func deliveriesCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "deliveries",
		Short: "Show the most recent webhook dispatches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), func(ctx context.Context, rt *runtime) error {
				entries, err := rt.stores.DeliveryStore().ListRecent(ctx, limit)
				if err != nil {
					return err
				}
				return printJSON(entries)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Show the integration bot user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(cmd.Context(), func(ctx context.Context, _ *runtime) error {
				bot, err := gocommand.Query[notionquery.GetBotUserMessage, api.BotUser](ctx, notionquery.GetBotUserMessage{})
				if err != nil {
					return err
				}
				return printJSON(bot)
			})
		},
	}
}

// withDispatcher registers the facade with the command dispatcher for the
// duration of fn.
func withDispatcher(ctx context.Context, fn func(ctx context.Context, rt *runtime) error) error {
	return withRuntime(ctx, func(ctx context.Context, rt *runtime) error {
		adapter := gocommand.NewRegistryAdapter(nil)
		subs, err := gocommand.RegisterFacade(adapter, rt.facade)
		if err != nil {
			return err
		}
		defer subs.Unsubscribe()
		if err := adapter.Initialize(); err != nil {
			return err
		}
		return fn(ctx, rt)
	})
}

func printJSON(value any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
