// cmd/tools/dataset/main.go
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"visa-tracker/internal/codec"
	"visa-tracker/internal/common/config"
	"visa-tracker/internal/common/logger"
	"visa-tracker/internal/common/validation"
	"visa-tracker/internal/exporter"
	"visa-tracker/internal/models"
	"visa-tracker/internal/stats"
	"visa-tracker/internal/storage"
	"visa-tracker/internal/store"
	"visa-tracker/pkg/catalog"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	resetCmd := flag.NewFlagSet("reset", flag.ExitOnError)
	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)

	exportFormat := exportCmd.String("format", "json", "Export format (csv, json)")
	exportOut := exportCmd.String("out", "", "Output file (default: dated file name in the current directory, - for stdout)")

	importFormat := importCmd.String("format", "", "Import format (csv, json; default from file extension)")
	importIn := importCmd.String("in", "", "File to import")

	resetYes := resetCmd.Bool("yes", false, "Confirm replacing every record with the bundled defaults")

	statsDays := statsCmd.Int("days", stats.LongTrendDays, "Trend window in days")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		format, err := codec.ParseFormat(*exportFormat)
		if err != nil {
			fail("Error", err)
		}
		st, cfg, _, closeFn := openStore(ctx)
		defer closeFn()
		if err := exportRecords(st, cfg, format, *exportOut); err != nil {
			fail("Error exporting records", err)
		}

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importIn == "" {
			fmt.Println("Error: in is required for import.")
			importCmd.Usage()
			os.Exit(1)
		}
		format, err := formatFor(*importFormat, *importIn)
		if err != nil {
			fail("Error", err)
		}
		st, _, rv, closeFn := openStore(ctx)
		defer closeFn()
		n, err := importRecords(ctx, st, rv, format, *importIn)
		if err != nil {
			fail("Error importing records", err)
		}
		fmt.Printf("Imported %d records from %s\n", n, *importIn)

	case "reset":
		resetCmd.Parse(os.Args[2:])
		if !*resetYes {
			fmt.Println("Error: reset replaces every stored record; pass -yes to confirm.")
			os.Exit(1)
		}
		st, _, _, closeFn := openStore(ctx)
		defer closeFn()
		if err := st.Reset(ctx); err != nil {
			fail("Error resetting records", err)
		}
		fmt.Printf("Restored %d default records\n", st.Len())

	case "stats":
		statsCmd.Parse(os.Args[2:])
		st, cfg, _, closeFn := openStore(ctx)
		defer closeFn()
		printStats(st.Snapshot(), models.DateOf(time.Now().In(cfg.Location())), *statsDays)

	case "help":
		fallthrough
	default:
		help()
	}
}

// openStore loads configuration, opens the configured backend and initialises the store.
// The returned validator applies the same catalog as the store.
func openStore(ctx context.Context) (*store.Store, *config.Config, *validation.RecordValidator, func()) {
	cfg, err := config.Load()
	if err != nil {
		fail("Error loading config", err)
	}

	log := logger.NewStructured(cfg.Logging.Level, "console")

	backend, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		fail("Error opening storage", err)
	}

	cat := catalog.Builtin()
	if cfg.Catalog.Path != "" {
		if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
			fail("Error loading catalog", err)
		}
	}

	rv := validation.NewRecordValidator(cat)
	st := store.New(backend, rv, log)
	if err := st.Init(ctx); err != nil {
		fail("Error loading records", err)
	}

	return st, cfg, rv, func() {
		_ = backend.Close()
		_ = log.Sync()
	}
}

func exportRecords(st *store.Store, cfg *config.Config, format codec.Format, out string) error {
	data, err := exporter.Encode(format, st.Snapshot())
	if err != nil {
		return err
	}
	if out == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if out == "" {
		out = codec.ExportFilename(format, time.Now().In(cfg.Location()))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Printf("Exported %d records to %s\n", st.Len(), out)
	return nil
}

func importRecords(ctx context.Context, st *store.Store, rv *validation.RecordValidator, format codec.Format, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var records []models.ApplicationRecord
	switch format {
	case codec.FormatCSV:
		records, err = codec.DecodeCSV(bytes.NewReader(data))
	default:
		records, err = codec.DecodeJSON(data)
	}
	if err != nil {
		return 0, err
	}
	if err := rv.ValidateAll(records); err != nil {
		return 0, err
	}
	if err := st.ReplaceAll(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// formatFor picks the explicit format, or infers it from the file extension.
func formatFor(explicit, path string) (codec.Format, error) {
	if explicit != "" {
		return codec.ParseFormat(explicit)
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer format of %s; pass -format", path)
	}
	return codec.ParseFormat(ext)
}

func printStats(records []models.ApplicationRecord, today models.Date, days int) {
	s := stats.Summary(records, today)
	fmt.Printf("Records:          %d\n", s.Total)
	fmt.Printf("Under Process:    %d\n", s.UnderProcess)
	fmt.Printf("Granted:          %d (today %d, yesterday %d)\n", s.Granted, s.GrantedToday, s.GrantedYesterday)
	fmt.Printf("Refused:          %d (today %d, yesterday %d)\n", s.Refused, s.RefusedToday, s.RefusedYesterday)
	fmt.Printf("Grant ratio:      %.1f%%\n", s.GrantRatioPercent)
	fmt.Printf("Avg waiting days: %d\n", s.AvgWaitingDays)

	_, w := stats.Window(records, today, days)
	fmt.Printf("\nLast %d days: %d processed, %d granted, %d refused, %.1f%% success, %.1f per day\n",
		w.Days, w.TotalProcessed, w.TotalGranted, w.TotalRefused, w.SuccessRatePercent, w.AvgPerDay)

	groups, _ := stats.GroupStats(records, stats.GroupByUniversity)
	fmt.Println("\nTop universities:")
	for _, g := range stats.TopGroups(groups, 5) {
		fmt.Printf("  %-40s total %3d  success %s\n", g.Key, g.Total, g.SuccessRatePercent)
	}
}

func fail(msg string, err error) {
	fmt.Printf("%s: %v\n", msg, err)
	os.Exit(1)
}

func help() {
	fmt.Print(`
Usage: dataset <command> [flags]

Commands:
  export  Write the stored records to a CSV or JSON file
  import  Replace the stored records with a CSV or JSON file
  reset   Restore the bundled default records
  stats   Print summary statistics for the stored records
  help    Show this help message

Examples:
  dataset export -format csv
  dataset export -format json -out backup.json
  dataset import -in backup.json
  dataset reset -yes
  dataset stats -days 7

Storage is selected by configs/config.yaml and STORAGE_* environment variables.
` + "\n")
}
