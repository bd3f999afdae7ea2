package main

import (
	"fmt"
	"os"

	"github.com/lexeyOK/qoiconv/internal/qoi"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: qoiinfo <file.qoi>...\n")
		os.Exit(1)
	}

	exit := 0
	for i, path := range os.Args[1:] {
		if i > 0 {
			fmt.Println()
		}
		if err := describe(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit = 1
		}
	}
	os.Exit(exit)
}

func describe(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	st, err := qoi.ReadStats(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Printf("File: %s\n", path)
	fmt.Printf("Image: %d x %d, %s, %s\n", st.Desc.Width, st.Desc.Height, st.Desc.Channels, st.Desc.Colorspace)
	fmt.Printf("Encoded: %d bytes (%.1f%% of %d raw bytes)\n", st.StreamLen, st.Ratio()*100, st.RawLen)
	if trailing := len(data) - st.StreamLen; trailing > 0 {
		fmt.Printf("Trailing: %d byte(s) after the end marker\n", trailing)
	}

	fmt.Printf("Chunks: %d\n", st.Chunks())
	fmt.Printf("  %-6s %d\n", "INDEX:", st.Index)
	fmt.Printf("  %-6s %d\n", "DIFF:", st.Diff)
	fmt.Printf("  %-6s %d\n", "LUMA:", st.Luma)
	fmt.Printf("  %-6s %d (%d pixels)\n", "RUN:", st.Run, st.RunPixels)
	fmt.Printf("  %-6s %d\n", "RGB:", st.RGB)
	fmt.Printf("  %-6s %d\n", "RGBA:", st.RGBA)
	return nil
}
