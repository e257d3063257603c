package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/mapops/volcsync/internal/adapter/driven/arcgis"
	"github.com/mapops/volcsync/internal/adapter/driven/envsecret"
	keyringadapter "github.com/mapops/volcsync/internal/adapter/driven/keyring"
	"github.com/mapops/volcsync/internal/adapter/driven/localfile"
	sqliteadapter "github.com/mapops/volcsync/internal/adapter/driven/sqlite"
	"github.com/mapops/volcsync/internal/adapter/driven/usgs"
	"github.com/mapops/volcsync/internal/application"
	"github.com/mapops/volcsync/internal/config"
	"github.com/mapops/volcsync/internal/logging"
)

func main() {
	history := flag.Int("history", 0, "print the N most recent runs and exit")
	setPassword := flag.Bool("set-password", false, "read the portal password from stdin, store it encrypted, and exit")
	flag.Parse()

	if err := run(*history, *setPassword); err != nil {
		fmt.Fprintf(os.Stderr, "volcsync: %v (see the run log for details)\n", err)
		os.Exit(1)
	}
}

func run(history int, setPassword bool) error {
	// 1. Load configuration (fail fast on a missing settings file or key).
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return err
	}

	// 2. Open the append-only run log and install the default logger.
	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		return err
	}
	defer logFile.Close()

	slog.Info("config loaded",
		"source_url", cfg.SourceURL,
		"portal_url", cfg.PortalURL,
		"portal_username", cfg.PortalUsername,
		"item_id", cfg.PortalItemID,
		"data_path", cfg.DataPath,
	)

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open database and run migrations.
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	runRepo := sqliteadapter.NewRunRepo(db)
	credRepo := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)

	// 5. Maintenance modes exit before any network traffic.
	if setPassword {
		return storePassword(ctx, credRepo, cfg.PortalUsername)
	}
	if history > 0 {
		return printHistory(ctx, runRepo, history)
	}

	// 6. Wire the sync pipeline. Secret backends in priority order:
	// OS keychain, encrypted local store, environment variable.
	secrets := application.NewSecretChain(
		keyringadapter.NewProvider(),
		credRepo,
		envsecret.NewProvider("VOLCSYNC_PORTAL_PASSWORD"),
	)

	syncSvc := application.NewSyncService(
		usgs.NewSource(cfg.SourceURL, cfg.CacheDir),
		localfile.NewStore(cfg.DataPath),
		secrets,
		arcgis.NewClient(cfg.PortalURL),
		runRepo,
		cfg.PortalUsername,
		cfg.PortalItemID,
	)

	// 7. One run to completion or first failure; the service appends the
	// outcome to the run history either way.
	_, err = syncSvc.Run(ctx)
	return err
}

// storePassword reads one line from stdin and stores it in the encrypted
// credential store under the configured portal username.
func storePassword(ctx context.Context, creds *sqliteadapter.CredentialRepo, username string) error {
	fmt.Fprintf(os.Stderr, "password for %s: ", username)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return fmt.Errorf("empty password")
	}

	if err := creds.Set(ctx, application.SecretService, username, password); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "stored.")
	return nil
}

// printHistory writes the most recent runs to stdout, newest first.
func printHistory(ctx context.Context, runs *sqliteadapter.RunRepo, limit int) error {
	recs, err := runs.ListRecent(ctx, limit)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		line := fmt.Sprintf("%s  %-13s  %8s  %d bytes",
			rec.StartedAt.Local().Format(time.RFC3339),
			rec.State,
			rec.Duration.Round(time.Millisecond),
			rec.DatasetBytes,
		)
		if rec.Error != "" {
			line += "  " + rec.Error
		}
		fmt.Println(line)
	}
	return nil
}
