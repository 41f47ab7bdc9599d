package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/infrastructure/config"
	"github.com/erp/pymes/internal/infrastructure/logger"
	"github.com/erp/pymes/internal/infrastructure/migration"
	"github.com/erp/pymes/internal/infrastructure/persistence"
	"github.com/erp/pymes/internal/infrastructure/tenantdb"
	"github.com/erp/pymes/internal/infrastructure/tenantschema"
	"github.com/erp/pymes/migrations"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	sealer, err := loadSealer(cfg)
	if err != nil {
		log.Fatal("Invalid tenancy directory key", zap.Error(err))
	}

	// seal-password needs no database
	if command == "seal-password" {
		if err := sealPassword(sealer, args[1:]); err != nil {
			log.Fatal("Failed to seal password", zap.Error(err))
		}
		return
	}

	master, err := persistence.NewMasterDatabase(&cfg.Master, nil)
	if err != nil {
		log.Fatal("Failed to connect to master database", zap.Error(err))
	}
	defer func() { _ = master.Close() }()

	ctx := context.Background()
	resolver := apptenant.NewResolver(persistence.NewGormDirectoryRepository(master.DB), cfg.Tenancy.PublicHost, log)

	switch command {
	case "up", "down", "steps", "version", "force":
		if err := runMigration(master, log, command, args[1:]); err != nil {
			log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
		}

	case "tenants":
		entries, err := resolver.List(ctx)
		if err != nil {
			log.Fatal("Failed to list tenants", zap.Error(err))
		}
		fmt.Printf("%-15s %-40s %-25s %-20s %s\n", "NIT", "NOMBRE", "HOST", "DB", "ACTIVO")
		for _, e := range entries {
			fmt.Printf("%-15s %-40s %-25s %-20s %t\n", e.NIT, e.DisplayName, e.Host, e.Database, e.Active)
		}

	case "tenant-init":
		fs := flag.NewFlagSet("tenant-init", flag.ExitOnError)
		nit := fs.String("nit", "", "NIT of the tenant to initialize")
		all := fs.Bool("all", false, "Initialize every active tenant")
		_ = fs.Parse(args[1:])

		runner := tenantdb.NewRunner(tenantdb.RunnerConfig{
			Resolver: resolver,
			Opener: tenantdb.NewFactory(tenantdb.FactoryConfig{
				ConnectTimeout: cfg.Tenancy.ConnectTimeout,
				ReadTimeout:    cfg.Tenancy.ReadTimeout,
				WriteTimeout:   cfg.Tenancy.WriteTimeout,
			}, sealer),
			Schema: tenantschema.NewInitializer(log),
			Logger: log,
		})
		if err := initTenants(ctx, runner, resolver, *nit, *all); err != nil {
			log.Fatal("Tenant initialization failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func loadSealer(cfg *config.Config) (*tenantdb.Sealer, error) {
	key := cfg.Tenancy.DirectoryKeyBytes()
	if key == nil {
		return nil, nil
	}
	return tenantdb.NewSealer(key)
}

func runMigration(master *persistence.MasterDatabase, log *zap.Logger, command string, args []string) error {
	sqlDB, err := master.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.Master, migrations.MasterDir, log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		n, err := intArg(args, "steps <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "force":
		v, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		log.Warn("Forcing migration version", zap.Int("version", v))
		return m.Force(v)
	default:
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	}
}

func intArg(args []string, usage string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing argument, usage: migrate %s", usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}

// initTenants runs the schema initializer for one tenant or for all of
// them, printing each report. With -all a failing tenant does not stop the
// others; the failures are returned together.
func initTenants(ctx context.Context, runner *tenantdb.Runner, resolver *apptenant.Resolver, nit string, all bool) error {
	var nits []string
	switch {
	case nit != "" && all:
		return errors.New("use either -nit or -all")
	case nit != "":
		nits = []string{nit}
	case all:
		entries, err := resolver.List(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Active {
				nits = append(nits, e.NIT)
			}
		}
	default:
		return errors.New("tenant-init requires -nit <NIT> or -all")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	var errs error
	for _, n := range nits {
		report, err := runner.InitSchema(ctx, n)
		if report != nil {
			_ = enc.Encode(report)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("tenant %s: %w", n, err))
		}
	}
	return errs
}

// sealPassword prints the sealed form of a directory password read from
// the first argument or, without one, from stdin.
func sealPassword(sealer *tenantdb.Sealer, args []string) error {
	if sealer == nil {
		return errors.New("tenancy.directory_key is not configured")
	}

	var plain string
	if len(args) > 0 {
		plain = args[0]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		plain = strings.TrimRight(line, "\r\n")
	}
	if plain == "" {
		return errors.New("empty password")
	}

	sealed, err := sealer.Seal(plain)
	if err != nil {
		return err
	}
	fmt.Println(sealed)
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `pymes migration tool

Usage:
  migrate [flags] <command> [arguments]

Master directory commands:
  up                      Apply all pending migrations
  down                    Roll back all migrations
  steps <n>               Apply n migrations (positive=up, negative=down)
  version                 Show current migration version
  force <version>         Force set migration version

Tenant commands:
  tenants                 List directory rows (passwords are never shown)
  tenant-init -nit <NIT>  Run the schema initializer for one tenant
  tenant-init -all        Run the schema initializer for every active tenant
  seal-password [plain]   Print the encrypted form of a db_password

Flags:
  -log-level string       Log level: debug, info, warn, error (default: info)`)
}
