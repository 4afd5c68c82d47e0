// Command romid identifies ROM and disc images and prints what it found.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/retrovault/romid"
	"github.com/retrovault/romid/analyzer"
	"github.com/retrovault/romid/datfile"
	"github.com/retrovault/romid/match"
)

var (
	inputFile  = flag.String("i", "", "input file path (required)")
	datPath    = flag.String("dat", "", "path to a Logiqx or ClrMamePro DAT file")
	quick      = flag.Bool("quick", false, "skip whole-body checksum verification")
	jsonOutput = flag.Bool("json", false, "output as JSON")
	verbose    = flag.Bool("v", false, "enable debug-level logging")
)

const appVersion = "0.1.0"

// logger emits structured, leveled diagnostics to stderr, separate from the program's
// primary result output (outputText/outputJSON, which go to stdout). -v raises the
// level from Info to Debug.
var logger *slog.Logger

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "romid %s\n\n", appVersion)
		fmt.Fprintf(os.Stderr, "Usage: %s -i <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Identifies ROM and disc image files.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *inputFile == "" {
		logger.Error("input file required (-i)")
		flag.Usage()
		os.Exit(1)
	}

	options := romid.AnalysisOptions{Quick: *quick, ComputeHashes: *datPath != ""}
	r, closer, err := romid.OpenPath(*inputFile, &options)
	if err != nil {
		logger.Error("opening input file", "path", *inputFile, "error", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	registry := analyzer.DefaultRegistry()
	logger.Debug("probing registered analyzers", "count", len(registry.Analyzers()))

	a, id, err := registry.Identify(r, options)
	if err != nil {
		logger.Error("identifying file", "path", *inputFile, "error", err)
		os.Exit(1)
	}
	logger.Info("identified file", "platform", a.PlatformName(), "serial", id.SerialNumber)

	var verdict *match.Verdict
	if *datPath != "" {
		v, err := matchAgainstDAT(r, a, id, options)
		if err != nil {
			logger.Warn("DAT match failed", "dat", *datPath, "error", err)
		} else {
			verdict = v
			if verdict.CollisionCount > 0 {
				logger.Debug("matched entry shares its hash with other catalog entries",
					"canonical_name", verdict.CanonicalName, "collision_count", verdict.CollisionCount)
			}
		}
	}

	if *jsonOutput {
		outputJSON(a, id, verdict)
	} else {
		outputText(a, id, verdict)
	}
}

func matchAgainstDAT(r romid.Reader, a romid.Analyzer, id *romid.Identification, options romid.AnalysisOptions) (*match.Verdict, error) {
	var file *datfile.Datafile
	var err error
	if len(*datPath) > 4 && (*datPath)[len(*datPath)-4:] == ".dat" {
		file, err = datfile.ParseLogiqx(*datPath)
	} else {
		file, err = datfile.ParseClrMamePro(*datPath)
	}
	if err != nil {
		return nil, err
	}

	idx := datfile.NewIndex()
	idx.Merge(file)

	digests, err := match.Hash(r, a.DatHeaderSize(), a.DatChunkNormalizer(), nil)
	if err != nil {
		return nil, err
	}

	v := match.Lookup(id, a, idx, digests)
	return &v, nil
}

func outputJSON(a romid.Analyzer, id *romid.Identification, verdict *match.Verdict) {
	out := map[string]any{
		"platform":       a.PlatformName(),
		"short_name":     a.ShortName(),
		"identification": id,
	}
	if verdict != nil {
		out["match"] = verdict
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encoding JSON output", "error", err)
		os.Exit(1)
	}
}

func outputText(a romid.Analyzer, id *romid.Identification, verdict *match.Verdict) {
	fmt.Printf("Platform: %s (%s)\n", a.PlatformName(), a.ShortName())
	if id.SerialNumber != "" {
		fmt.Printf("Serial: %s\n", id.SerialNumber)
	}
	if id.InternalName != "" {
		fmt.Printf("Internal Name: %s\n", id.InternalName)
	}
	if regions := id.Regions.List(); len(regions) > 0 {
		fmt.Printf("Regions: %v\n", regions)
	}
	fmt.Printf("File Size: %d\n", id.FileSize)

	if len(id.Extra) > 0 {
		fmt.Println("\nExtra:")
		for k, v := range id.Extra {
			fmt.Printf("  %s: %s\n", k, v)
		}
	}

	if verdict != nil {
		fmt.Printf("\nDAT match: %s\n", verdict.Kind)
		if verdict.Kind == match.Matched {
			fmt.Printf("  Canonical name: %s\n", verdict.CanonicalName)
			if verdict.CollisionCount > 0 {
				fmt.Printf("  (shared hash with %d other catalog entries)\n", verdict.CollisionCount)
			}
		}
	}
}
