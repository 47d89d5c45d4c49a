package website

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"time"

	"git.agora.community/agora/agora/src/auth"
	"git.agora.community/agora/agora/src/config"
	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/jobs"
	"git.agora.community/agora/agora/src/logging"
	"git.agora.community/agora/agora/src/migration/migrations"
	"git.agora.community/agora/agora/src/migration/types"
	"git.agora.community/agora/agora/src/perf"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var WebsiteCommand = &cobra.Command{
	Short: "Run the Agora website",
	Run: func(cmd *cobra.Command, args []string) {
		defer logging.LogPanics(nil)
		logging.Info().Msg("Hello, Agora!")

		var wg sync.WaitGroup

		conn := db.NewConnPoolWithRetry(context.Background())
		warnIfDBOutdated(context.Background(), conn)
		perfCollector, perfCollectorJob := perf.RunPerfCollector()

		// Start background jobs
		wg.Add(1)
		backgroundJobs := jobs.Jobs{
			perfCollectorJob,
		}
		if config.Config.Auth.CSRFStore == "postgres" {
			// The memory store drops expired sessions on access; only the
			// postgres store needs sweeping.
			backgroundJobs = append(backgroundJobs, auth.PeriodicallyDeleteExpiredSessions(conn))
		}

		// Create HTTP server
		wg.Add(1)
		server := http.Server{
			Addr:    config.Config.Addr,
			Handler: NewWebsiteRoutes(conn, perfCollector),
		}
		go func() {
			logging.Info().Str("addr", config.Config.Addr).Msg("Serving the website")
			serverErr := server.ListenAndServe()
			if !errors.Is(serverErr, http.ErrServerClosed) {
				logging.Error().Err(serverErr).Msg("Server shut down unexpectedly")
			}
			// The wg.Done() happens in the shutdown logic below.
		}()

		// Start up the private HTTP server for pprof. Because it uses the default
		// mux, and we import pprof, it will automatically have all the routes.
		go func() {
			// We don't bother to gracefully shut this down.
			log.Println(http.ListenAndServe(config.Config.PrivateAddr, nil))
		}()

		// Wait for SIGINT in the background and trigger graceful shutdown
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		go func() {
			<-signals // First SIGINT (start shutdown)
			logging.Info().Msg("Shutting down the website")

			const timeout = 10 * time.Second

			go func() {
				logging.Info().Msg("Shutting down background jobs...")
				unfinished := backgroundJobs.CancelAndWait(timeout)
				if len(unfinished) == 0 {
					logging.Info().Msg("Background jobs closed gracefully")
				} else {
					logging.Warn().Strs("Unfinished", unfinished).Msg("Background jobs did not finish by the deadline")
				}
				wg.Done()
			}()

			// Gracefully shut down the HTTP server
			go func() {
				timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				err := server.Shutdown(timeoutCtx)
				if err != nil {
					logging.Warn().Err(err).Msg("Server did not shut down gracefully")
				}
				wg.Done()
			}()

			<-signals // Second SIGINT (force quit)
			logging.Warn().Strs("Unfinished background jobs", backgroundJobs.ListUnfinished()).Msg("Forcibly killed the website")
			os.Exit(1)
		}()

		// Wait for all of the above to finish, then exit
		wg.Wait()
	},
}

// The website runs even when the database schema is stale, but requests fail
// in confusing ways. Complain loudly on startup instead.
func warnIfDBOutdated(ctx context.Context, conn *pgxpool.Pool) {
	latest := migrations.LatestVersion()

	var rawVersion time.Time
	err := conn.QueryRow(ctx, "SELECT version FROM agora_migration").Scan(&rawVersion)
	if err != nil {
		logging.Warn().Err(err).Msg("Could not determine the database's migration version; run `agora migrate`")
		return
	}

	current := types.MigrationVersion(rawVersion.UTC())
	if !current.Equal(latest) {
		logging.Warn().
			Stringer("current", current).
			Stringer("latest", latest).
			Msg("The database schema is out of date; run `agora migrate`")
	}
}
