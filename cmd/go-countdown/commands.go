package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-countdown/internal/calendar"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/engine"
	"github.com/tartampluch/go-countdown/internal/server"
	"golang.org/x/sync/errgroup"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           config.CommandName,
		Short:         config.CmdShort,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, config.FlagConfig, "c", "", config.FlagDescConfig)
	root.PersistentFlags().BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)
	root.PersistentFlags().StringVar(&a.date, config.FlagDate, "", config.FlagDescDate)

	root.AddCommand(
		upcomingCmd(a),
		gridCmd(a),
		matchesCmd(a),
		icsCmd(a),
		serveCmd(a),
		loginCmd(a),
		versionCmd(),
	)
	return root
}

func upcomingCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: config.CmdUpcomingShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.syncConfig()
			if cmd.Flags().Changed(config.FlagLimit) {
				if limit < 0 {
					return errors.New(config.ErrLimitNegative)
				}
				cfg.Limit = limit
			}

			res, err := a.generator().RunSync(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrSyncFailed, err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), a.renderer.Upcoming(res.Entries))
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, config.FlagLimit, "n", config.DefaultLimit, config.FlagDescLimit)
	return cmd
}

func gridCmd(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "grid",
		Short: config.CmdGridShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.parseMonth(month)
			if err != nil {
				return err
			}
			grid := calendar.BuildMonthGrid(target)
			_, err = fmt.Fprint(cmd.OutOrStdout(), a.renderer.MonthGrid(grid, a.today()))
			return err
		},
	}
	cmd.Flags().StringVarP(&month, config.FlagMonth, "m", "", config.FlagDescMonth)
	return cmd
}

func matchesCmd(a *app) *cobra.Command {
	var filter calendar.MatchFilter

	cmd := &cobra.Command{
		Use:   "matches",
		Short: config.CmdMatchesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter.WithinDays < 0 {
				return errors.New(config.HTTPMsgBadDays)
			}
			cat, err := a.generator().LoadCatalog(cmd.Context(), a.syncConfig())
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrCatalogLoad, err)
			}

			now := a.clock.Now()
			matches := calendar.FilterMatches(cat.Matches, filter, now)
			_, err = fmt.Fprint(cmd.OutOrStdout(), a.renderer.Matches(matches, now.Location()))
			return err
		},
	}
	cmd.Flags().StringVarP(&filter.Query, config.FlagQuery, "q", "", config.FlagDescQuery)
	cmd.Flags().IntVarP(&filter.WithinDays, config.FlagDays, "d", 0, config.FlagDescDays)
	return cmd
}

func icsCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ics",
		Short: config.CmdICSShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.generator().RunSync(cmd.Context(), a.syncConfig())
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrSyncFailed, err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(res.ICS)
				return err
			}
			if err := os.WriteFile(output, res.ICS, config.FilePermUserRW); err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, config.FlagOutput, "o", "", config.FlagDescOutput)
	return cmd
}

func serveCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: config.CmdServeShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = a.settings.Server.Port
			}
			if err := config.ValidatePort(port); err != nil {
				return err
			}
			return a.serve(cmd.Context(), server.NewCalendarServer(port, a.clock))
		},
	}
	cmd.Flags().StringVarP(&port, config.FlagPort, "p", "", config.FlagDescPort)
	return cmd
}

// serve runs the HTTP server, the periodic refresher and, for local
// catalogs, the file watcher until ctx is cancelled or one of them fails.
// Everything that can fail up front is built before the first goroutine starts.
func (a *app) serve(ctx context.Context, srv *server.CalendarServer) error {
	gen := a.generator()
	cfg := a.syncConfig()
	// The API trims per request; the server keeps every entry.
	cfg.Limit = 0

	// Buffered so that a burst of triggers collapses into one pending resync.
	trigger := make(chan struct{}, config.ChannelBufferSize)
	requestSync := func(context.Context) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	var watcher *engine.CatalogWatcher
	if cfg.Mode == config.SourceModeLocal {
		w, err := engine.NewCatalogWatcher(cfg.LocalPath, requestSync)
		if err != nil {
			return err
		}
		watcher = w
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return srv.Start(gctx) })

	g.Go(func() error {
		interval := time.Duration(a.settings.RefreshInterval) * time.Minute
		return runWorker(gctx, interval, trigger, func(ctx context.Context) {
			res, err := gen.RunSync(ctx, cfg)
			if err != nil {
				slog.Error(config.ErrSyncFailed,
					config.LogKeyComponent, config.CompWorker,
					config.LogKeyError, err)
				return
			}
			srv.Update(res)
			slog.Info(config.MsgSyncSuccess,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyToday, res.TodayCount)
		})
	})

	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}

	err := g.Wait()
	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return err
}

// runWorker syncs once immediately, then on every tick and trigger.
// An interval of config.DisabledInterval disables the ticker.
func runWorker(ctx context.Context, interval time.Duration, trigger <-chan struct{}, sync func(context.Context)) error {
	slog.Info(config.MsgWorkerStart,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyInterval, interval.String())

	sync(ctx)

	var tick <-chan time.Time
	if interval > config.DisabledInterval {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info(config.MsgWorkerStop, config.LogKeyComponent, config.CompWorker)
			return nil
		case <-tick:
			sync(ctx)
		case <-trigger:
			sync(ctx)
		}
	}
}

func loginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: config.CmdLoginShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := a.settings.Source.User
			if user == "" {
				return errors.New(config.ErrLoginUser)
			}

			scanner := bufio.NewScanner(a.stdin)
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("%s: %w", config.ErrReadPassword, err)
				}
				return errors.New(config.ErrReadPassword)
			}
			pass := strings.TrimRight(scanner.Text(), "\r")

			if err := a.keyring.SetPassword(user, pass); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), config.MsgLoginDone, user)
			return err
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: config.CmdVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}
