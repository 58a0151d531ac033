// Command admin runs moderation operations against the configured store.
//
// Every command logs in as an admin first. The store holds a single
// session, so running a command replaces whatever session was active and
// leaves the store logged out.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"psocial/internal/bootstrap"
	"psocial/internal/config"
	"psocial/internal/service"
	"psocial/internal/store"

	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminPassword string
	outputJSON    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "psocial moderation tool",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&adminUsername, "username", store.AdminUsername, "admin identity")
	root.PersistentFlags().StringVar(&adminPassword, "password", store.AdminPassword, "admin password")
	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "print JSON")

	root.AddCommand(
		&cobra.Command{
			Use:   "report",
			Short: "Print site totals",
			Args:  cobra.NoArgs,
			RunE: withAdmin(func(ctx context.Context, svc *service.Services, _ []string) error {
				report, err := svc.Admin.Report(ctx)
				if err != nil {
					return err
				}
				if outputJSON {
					return printJSON(report)
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintf(w, "users\t%d\n", report.Users)
				fmt.Fprintf(w, "posts\t%d\n", report.Posts)
				fmt.Fprintf(w, "likes\t%d\n", report.Likes)
				fmt.Fprintf(w, "dislikes\t%d\n", report.Dislikes)
				fmt.Fprintf(w, "comments\t%d\n", report.Comments)
				fmt.Fprintf(w, "logins\t%d\n", report.Logins)
				fmt.Fprintf(w, "flagged posts\t%d\n", report.FlaggedPosts)
				return w.Flush()
			}),
		},
		newUsersCmd(),
		newDeactivateCmd(),
		&cobra.Command{
			Use:   "reset-password <user-id> <new-password>",
			Short: "Overwrite a user's password",
			Args:  cobra.ExactArgs(2),
			RunE: withAdmin(func(ctx context.Context, svc *service.Services, args []string) error {
				return svc.Admin.ResetPassword(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "warn <user-id> [message]",
			Short: "Send a warning notification",
			Args:  cobra.RangeArgs(1, 2),
			RunE: withAdmin(func(ctx context.Context, svc *service.Services, args []string) error {
				msg := ""
				if len(args) == 2 {
					msg = args[1]
				}
				return svc.Admin.Warn(ctx, args[0], msg)
			}),
		},
		&cobra.Command{
			Use:   "flagged",
			Short: "List flagged posts",
			Args:  cobra.NoArgs,
			RunE: withAdmin(func(ctx context.Context, svc *service.Services, _ []string) error {
				posts, err := svc.Admin.FlaggedPosts(ctx)
				if err != nil {
					return err
				}
				if outputJSON {
					return printJSON(posts)
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tAUTHOR\tFLAGS\tTEXT")
				for _, p := range posts {
					fmt.Fprintf(w, "%s\t%s\t%d\t%.40s\n", p.ID, p.AuthorUsername, len(p.Flags), p.Text)
				}
				return w.Flush()
			}),
		},
		&cobra.Command{
			Use:   "approve <post-id>",
			Short: "Clear every flag on a post",
			Args:  cobra.ExactArgs(1),
			RunE: withAdmin(func(ctx context.Context, svc *service.Services, args []string) error {
				return svc.Admin.ApprovePost(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "delete-post <post-id>",
			Short: "Delete any post",
			Args:  cobra.ExactArgs(1),
			RunE: withAdmin(func(ctx context.Context, svc *service.Services, args []string) error {
				return svc.Admin.DeletePost(ctx, args[0])
			}),
		},
	)
	return root
}

func newUsersCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users, optionally filtered by username, display name or email",
		Args:  cobra.NoArgs,
		RunE: withAdmin(func(ctx context.Context, svc *service.Services, _ []string) error {
			users, err := svc.Admin.Users(ctx, query)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tDEACTIVATED\tFOLLOWERS")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%d\n", u.ID, u.Username, u.Email, u.Role, u.Deactivated, len(u.Followers))
			}
			return w.Flush()
		}),
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter text")
	return cmd
}

func newDeactivateCmd() *cobra.Command {
	var reactivate bool
	cmd := &cobra.Command{
		Use:   "deactivate <user-id>",
		Short: "Restrict a user, or lift the restriction with --undo",
		Args:  cobra.ExactArgs(1),
		RunE: withAdmin(func(ctx context.Context, svc *service.Services, args []string) error {
			return svc.Admin.SetDeactivated(ctx, args[0], !reactivate)
		}),
	}
	cmd.Flags().BoolVar(&reactivate, "undo", false, "reactivate instead")
	return cmd
}

type adminFunc func(ctx context.Context, svc *service.Services, args []string) error

// withAdmin opens the runtime, logs in, runs fn and logs out again.
func withAdmin(fn adminFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		rt, err := bootstrap.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()

		if err := rt.Services.Auth.Login(ctx, adminUsername, adminPassword); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		defer func() { _ = rt.Services.Auth.Logout(ctx) }()

		return fn(ctx, rt.Services, args)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
