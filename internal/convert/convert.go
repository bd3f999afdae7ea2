package convert

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lexeyOK/qoiconv/internal/imagefile"
)

// Options holds conversion configuration.
type Options struct {
	// Format forces the output format. Empty selects the default rule:
	// QOI inputs become PNG, everything else becomes QOI.
	Format      string
	Quality     int
	OutputDir   string // empty writes next to the input
	Concurrency int
	Verbose     bool
	Quiet       bool // no progress bar
}

// Stats holds conversion statistics.
type Stats struct {
	Converted int64
	Skipped   int64
	Failed    int64
	BytesIn   int64
	BytesOut  int64
}

type result struct {
	outPath  string
	format   string
	bytesIn  int64
	bytesOut int64
	skipped  bool
}

// Run converts the given files concurrently. Files are independent, so a
// failure is logged and counted rather than aborting the batch; callers
// decide what a non-zero Failed count means for them.
func Run(paths []string, opts Options) (Stats, error) {
	if len(paths) == 0 {
		return Stats{}, fmt.Errorf("no input files")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return Stats{}, fmt.Errorf("creating output directory: %w", err)
		}
	}

	var converted, skipped, failed, bytesIn, bytesOut atomic.Int64

	var bar *progressBar
	if !opts.Quiet {
		bar = newProgressBar("Converting", int64(len(paths)))
	}

	jobs := make(chan string, opts.Concurrency*2)
	var wg sync.WaitGroup

	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				res, err := convertFile(path, opts)
				switch {
				case err != nil:
					failed.Add(1)
					if bar != nil {
						bar.Fail()
					}
					log.Printf("%s: %v", path, err)
				case res.skipped:
					skipped.Add(1)
					if opts.Verbose {
						log.Printf("%s: already %s, skipped", path, res.format)
					}
				default:
					converted.Add(1)
					bytesIn.Add(res.bytesIn)
					bytesOut.Add(res.bytesOut)
					if opts.Verbose {
						log.Printf("%s -> %s (%d -> %d bytes)", path, res.outPath, res.bytesIn, res.bytesOut)
					}
				}
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}

	for _, p := range paths {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	if bar != nil {
		bar.Finish()
	}

	return Stats{
		Converted: converted.Load(),
		Skipped:   skipped.Load(),
		Failed:    failed.Load(),
		BytesIn:   bytesIn.Load(),
		BytesOut:  bytesOut.Load(),
	}, nil
}

func convertFile(path string, opts Options) (result, error) {
	srcFormat := imagefile.FormatForPath(path)
	if srcFormat == "" {
		return result{}, fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
	dstFormat := outputFormat(srcFormat, opts)
	if dstFormat == srcFormat {
		return result{format: srcFormat, skipped: true}, nil
	}

	enc, err := imagefile.NewEncoder(dstFormat, opts.Quality)
	if err != nil {
		return result{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return result{}, err
	}
	img, err := imagefile.DecodeImage(data, srcFormat)
	if err != nil {
		return result{}, fmt.Errorf("decoding %s: %w", srcFormat, err)
	}
	out, err := enc.Encode(img)
	if err != nil {
		return result{}, fmt.Errorf("encoding %s: %w", dstFormat, err)
	}

	outPath := outputPath(path, enc.FileExtension(), opts.OutputDir)
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return result{}, err
	}

	return result{
		outPath:  outPath,
		format:   dstFormat,
		bytesIn:  int64(len(data)),
		bytesOut: int64(len(out)),
	}, nil
}

// outputFormat applies the direction rule: QOI decodes to PNG by default,
// anything else encodes to QOI. An explicit format wins.
func outputFormat(srcFormat string, opts Options) string {
	f := opts.Format
	if f == "jpg" {
		f = "jpeg"
	}
	if f != "" {
		return f
	}
	if srcFormat == "qoi" {
		return "png"
	}
	return "qoi"
}

// outputPath swaps the file extension and optionally re-roots the file
// into dir.
func outputPath(path, ext, dir string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ext
	if dir == "" {
		return filepath.Join(filepath.Dir(path), base)
	}
	return filepath.Join(dir, base)
}
