// itemconv loads a client's item files and writes the resulting registry as
// YAML, one entry per item in ascending id order.
//
// Usage:
//
//	go run ./cmd/itemconv -config config/itemdb.toml -out data/yaml/items.yaml
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/l1jgo/itemdb/internal/config"
	"github.com/l1jgo/itemdb/internal/data"
)

func main() {
	cfgPath := flag.String("config", "config/itemdb.toml", "config file")
	client := flag.String("client", "", "client name in the catalog (overrides config)")
	out := flag.String("out", "data/yaml/items.yaml", "output file, - for stdout")
	flag.Parse()

	if err := convert(*cfgPath, *client, *out); err != nil {
		fmt.Fprintf(os.Stderr, "itemconv: %v\n", err)
		os.Exit(1)
	}
}

func convert(cfgPath, clientName, out string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if clientName != "" {
		cfg.Data.Client = clientName
	}

	catalog, err := data.LoadClientCatalog(cfg.Data.CatalogPath)
	if err != nil {
		return err
	}
	client := catalog.Get(cfg.Data.Client)
	if client == nil {
		return fmt.Errorf("client %q not in %s", cfg.Data.Client, cfg.Data.CatalogPath)
	}

	reg := data.NewRegistry()
	loader := data.NewLoader(reg, nil, client.LoadOptions(cfg.Loader.CheckSignatures, cfg.Loader.PreferClientID), zap.NewNop())
	warns, err := loader.LoadAll(data.Sources{
		Mode: cfg.Data.Source,
		OTB:  filepath.Join(cfg.Data.Dir, cfg.Data.OTBFile),
		DAT:  filepath.Join(cfg.Data.Dir, cfg.Data.DATFile),
		XML:  optionalPath(cfg.Data.Dir, cfg.Data.XMLFile),
		Meta: optionalPath(cfg.Data.Dir, cfg.Data.MetaFile),
	})
	if err != nil {
		return err
	}
	for _, w := range warns {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if out == "-" {
		return data.DumpYAML(reg, os.Stdout)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := data.DumpYAML(reg, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %d items (max id %d) to %s\n", reg.Count(), reg.MaxID(), out)
	return nil
}

func optionalPath(dir, name string) string {
	if name == "" {
		return ""
	}
	return filepath.Join(dir, name)
}
