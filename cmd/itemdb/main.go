package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/l1jgo/itemdb/internal/config"
	"github.com/l1jgo/itemdb/internal/data"
	"github.com/l1jgo/itemdb/internal/persist"
	"github.com/l1jgo/itemdb/internal/scripting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Report helpers ────────────────────────────────────────────────

func printBanner(client string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              itemdb  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      item store · sprite metadata         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mclient:\033[0m %s\n\n", client)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printWarn(msg string) {
	fmt.Printf("  \033[33m!\033[0m %s\n", msg)
}

// maxPrintedWarnings caps the report; the full list is in the log.
const maxPrintedWarnings = 20

func run() error {
	cfgPath := "config/itemdb.toml"
	if p := os.Getenv("ITEMDB_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Data.Client)

	catalog, err := data.LoadClientCatalog(cfg.Data.CatalogPath)
	if err != nil {
		return err
	}
	client := catalog.Get(cfg.Data.Client)
	if client == nil {
		return fmt.Errorf("client %q not in %s", cfg.Data.Client, cfg.Data.CatalogPath)
	}

	printSection("load")
	start := time.Now()
	reg, warns, err := loadRegistry(cfg, client, log)
	if err != nil {
		return err
	}
	v := reg.Version()
	printStat("items", reg.Count())
	printStat("max id", int(reg.MaxID()))
	printStat("warnings", len(warns))
	printOK(fmt.Sprintf("version %d.%d.%d loaded in %s", v.Major, v.Minor, v.Build, time.Since(start).Round(time.Millisecond)))
	fingerprint := reg.Fingerprint()
	printOK("fingerprint " + hex.EncodeToString(fingerprint[:8]))
	fmt.Println()

	if cfg.Scripting.Enabled {
		printSection("scripts")
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		scriptWarns := engine.Validate(reg)
		engine.Close()
		printStat("script warnings", len(scriptWarns))
		warns = append(warns, scriptWarns...)
		fmt.Println()
	}

	if len(warns) > 0 {
		printSection("warnings")
		for i, w := range warns {
			if i == maxPrintedWarnings {
				printWarn(fmt.Sprintf("… %d more", len(warns)-maxPrintedWarnings))
				break
			}
			printWarn(w)
		}
		fmt.Println()
	}

	if cfg.Database.Enabled {
		printSection("database")
		if err := persistRegistry(cfg, reg, warns, fingerprint, log); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}

func loadRegistry(cfg *config.Config, client *data.ClientVersion, log *zap.Logger) (*data.Registry, data.Warnings, error) {
	sprites, err := data.NewCachedSpriteSource(data.NoSprites, cfg.Loader.SpriteCacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("sprite cache: %w", err)
	}

	reg := data.NewRegistry()
	loader := data.NewLoader(reg, sprites, client.LoadOptions(cfg.Loader.CheckSignatures, cfg.Loader.PreferClientID), log)
	warns, err := loader.LoadAll(sourcesFor(cfg.Data))
	if err != nil {
		return nil, warns, fmt.Errorf("load items: %w", err)
	}
	return reg, warns, nil
}

func sourcesFor(d config.DataConfig) data.Sources {
	path := func(name string) string {
		if name == "" {
			return ""
		}
		return filepath.Join(d.Dir, name)
	}
	return data.Sources{
		Mode: d.Source,
		OTB:  path(d.OTBFile),
		DAT:  path(d.DATFile),
		XML:  path(d.XMLFile),
		Meta: path(d.MetaFile),
	}
}

func persistRegistry(cfg *config.Config, reg *data.Registry, warns data.Warnings, fingerprint [32]byte, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")

	n, err := persist.NewItemTypeRepo(db).SaveRegistry(ctx, reg)
	if err != nil {
		return err
	}
	printStat("rows written", int(n))

	runID, err := persist.NewLoadRunRepo(db).Record(ctx, persist.LoadRun{
		Client:      cfg.Data.Client,
		Source:      cfg.Data.Source,
		Version:     reg.Version(),
		ItemCount:   reg.Count(),
		MaxID:       reg.MaxID(),
		Fingerprint: fingerprint,
		Warnings:    warns,
	})
	if err != nil {
		return err
	}
	printOK(fmt.Sprintf("load run %d recorded", runID))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
