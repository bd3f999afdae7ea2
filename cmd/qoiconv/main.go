package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/lexeyOK/qoiconv/internal/convert"
	"github.com/lexeyOK/qoiconv/internal/imagefile"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		format      string
		quality     int
		outputDir   string
		concurrency int
		verbose     bool
		quiet       bool
		showVersion bool
		cpuProfile  string
		memProfile  string
	)

	flag.StringVar(&format, "format", "", "Output format: qoi, png, jpeg, webp (default: qoi, or png for .qoi inputs)")
	flag.IntVar(&quality, "quality", 85, "JPEG/WebP quality 1-100")
	flag.StringVar(&outputDir, "output-dir", "", "Write converted files into this directory (default: next to input)")
	flag.IntVar(&concurrency, "concurrency", runtime.NumCPU(), "Number of parallel workers")
	flag.BoolVar(&verbose, "verbose", false, "Log every converted file")
	flag.BoolVar(&quiet, "quiet", false, "Suppress progress output")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	flag.StringVar(&memProfile, "memprofile", "", "Write memory profile to file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: qoiconv [flags] <input-files-or-dirs...>\n\n")
		fmt.Fprintf(os.Stderr, "Convert images between QOI and PNG/JPEG/WebP.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("qoiconv %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// CPU profiling.
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatalf("Creating CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Starting CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
		if verbose {
			log.Printf("CPU profiling enabled → %s", cpuProfile)
		}
	}

	// Memory profile (written at exit).
	if memProfile != "" {
		defer func() {
			f, err := os.Create(memProfile)
			if err != nil {
				log.Fatalf("Creating memory profile: %v", err)
			}
			defer f.Close()
			runtime.GC() // get up-to-date statistics
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatalf("Writing memory profile: %v", err)
			}
			if verbose {
				log.Printf("Memory profile written → %s", memProfile)
			}
		}()
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	// Validate the output format before touching any files.
	if format != "" {
		if _, err := imagefile.NewEncoder(format, quality); err != nil {
			log.Fatalf("Format: %v", err)
		}
	}

	// Collect image files.
	files, err := collectImages(flag.Args())
	if err != nil {
		log.Fatalf("Collecting input files: %v", err)
	}
	if len(files) == 0 {
		log.Fatal("No image files found in the specified inputs")
	}

	// Print settings summary.
	if !quiet {
		fmt.Printf("qoiconv %s (commit %s, built %s)\n", version, commit, buildDate)
		switch format {
		case "":
			fmt.Printf("  %-14s auto (qoi for images, png for .qoi inputs)\n", "Format:")
		case "jpeg", "jpg", "webp":
			fmt.Printf("  %-14s %s (quality: %d)\n", "Format:", format, quality)
		default:
			fmt.Printf("  %-14s %s\n", "Format:", format)
		}
		if outputDir != "" {
			fmt.Printf("  %-14s %s\n", "Output dir:", outputDir)
		}
		fmt.Printf("  %-14s %d\n", "Concurrency:", concurrency)
		fmt.Printf("  %-14s %d file(s)\n", "Input:", len(files))
	}

	start := time.Now()
	stats, err := convert.Run(files, convert.Options{
		Format:      format,
		Quality:     quality,
		OutputDir:   outputDir,
		Concurrency: concurrency,
		Verbose:     verbose,
		Quiet:       quiet,
	})
	if err != nil {
		log.Fatalf("Converting: %v", err)
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	if !quiet {
		fmt.Printf("Done: %d converted, %d skipped, %d failed (%s → %s) in %v\n",
			stats.Converted, stats.Skipped, stats.Failed,
			humanSize(stats.BytesIn), humanSize(stats.BytesOut), elapsed)
	}
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

// collectImages resolves input paths to a list of supported image files.
func collectImages(paths []string) ([]string, error) {
	var result []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			entries, err := os.ReadDir(p)
			if err != nil {
				return nil, fmt.Errorf("readdir %s: %w", p, err)
			}
			for _, e := range entries {
				if !e.IsDir() && isImage(e.Name()) {
					result = append(result, filepath.Join(p, e.Name()))
				}
			}
		} else {
			// Explicitly named files are passed through so the converter
			// can report an unsupported extension instead of silently
			// dropping the argument.
			result = append(result, p)
		}
	}
	return result, nil
}

func isImage(name string) bool {
	return imagefile.FormatForPath(name) != ""
}

func humanSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
