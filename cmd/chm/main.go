// Command chm inspects and builds Compiled HTML Help archives.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/litchm/chm"
	"github.com/litchm/chm/archive"
	"github.com/litchm/chm/internal/mimetype"
	"github.com/spf13/afero"
)

const appVersion = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(os.Args[2:])
	case "stat":
		err = runStat(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "pack":
		err = runPack(os.Args[2:])
	case "version":
		fmt.Printf("chm version %s\n", appVersion)
		return
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  list    -i <file.chm>\n")
	fmt.Fprintf(os.Stderr, "  stat    -i <file.chm> -n <name>\n")
	fmt.Fprintf(os.Stderr, "  extract -i <file.chm> -n <name> -o <out>\n")
	fmt.Fprintf(os.Stderr, "  info    -i <file.chm>\n")
	fmt.Fprintf(os.Stderr, "  pack    -o <file.chm> <source...>\n")
	fmt.Fprintf(os.Stderr, "  version\n")
}

func openArchive(path string) (*chm.Archive, *os.File, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided path is expected
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	a, err := chm.Open(f, info.Size(), chm.OpenOptions{NormalizedLookup: true})
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return a, f, nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	input := fs.String("i", "", "input CHM file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("-i is required")
	}

	a, f, err := openArchive(*input)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(); _ = f.Close() }()

	for _, name := range a.List() {
		fmt.Println(name)
	}
	return nil
}

func runStat(args []string) error {
	fs := flag.NewFlagSet("stat", flag.ExitOnError)
	input := fs.String("i", "", "input CHM file (required)")
	name := fs.String("n", "", "entry name (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" || *name == "" {
		return fmt.Errorf("-i and -n are required")
	}

	a, f, err := openArchive(*input)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(); _ = f.Close() }()

	st, err := a.Stat(*name)
	if err != nil {
		return fmt.Errorf("stat %s: %w", *name, err)
	}
	fmt.Printf("Name: %s\n", st.Name)
	fmt.Printf("Length: %d\n", st.Length)
	fmt.Printf("Section: %d\n", st.Section)
	fmt.Printf("Content-Type: %s\n", mimetype.For(st.Name))
	return nil
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	input := fs.String("i", "", "input CHM file (required)")
	name := fs.String("n", "", "entry name (required)")
	output := fs.String("o", "", "output file path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" || *name == "" || *output == "" {
		return fmt.Errorf("-i, -n, and -o are required")
	}

	a, f, err := openArchive(*input)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(); _ = f.Close() }()

	data, err := a.Extract(*name)
	if err != nil {
		return fmt.Errorf("extract %s: %w", *name, err)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil { //nolint:gosec // CLI output file
		return fmt.Errorf("write %s: %w", *output, err)
	}
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	input := fs.String("i", "", "input CHM file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("-i is required")
	}

	a, f, err := openArchive(*input)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(); _ = f.Close() }()

	info := a.Info()
	fmt.Printf("WindowSize: 0x%x\n", info.WindowSize)
	fmt.Printf("ResetInterval: 0x%x\n", info.ResetInterval)
	fmt.Printf("ChunkSize: %d\n", info.ChunkSize)
	fmt.Printf("EntryCount: %d\n", info.EntryCount)
	fmt.Printf("LanguageID: %d\n", info.LanguageID)
	return nil
}

// runPack builds a new CHM from one or more sources: plain directories
// (walked via the OS filesystem) or .zip/.7z/.rar containers (read via
// archive.Open).
func runPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	output := fs.String("o", "", "output CHM file (required)")
	windowSize := fs.Uint("window", 0x10000, "LZX window size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("-o is required")
	}
	sources := fs.Args()
	if len(sources) == 0 {
		return fmt.Errorf("at least one source directory or archive is required")
	}

	var entries []chm.Entry
	for _, src := range sources {
		collected, err := collectEntries(src)
		if err != nil {
			return err
		}
		entries = append(entries, collected...)
	}

	out, err := os.Create(*output) //nolint:gosec // CLI output file
	if err != nil {
		return fmt.Errorf("create %s: %w", *output, err)
	}
	defer func() { _ = out.Close() }()

	return chm.Pack(out, entries, chm.PackOptions{WindowSize: uint32(*windowSize)}) //nolint:gosec // CLI flag range
}

func collectEntries(src string) ([]chm.Entry, error) {
	info, err := os.Stat(src)
	if err == nil && info.IsDir() {
		return archive.Walk(afero.NewOsFs(), src)
	}

	a, err := archive.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", src, err)
	}
	defer func() { _ = a.Close() }()

	files, err := a.List()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", src, err)
	}

	entries := make([]chm.Entry, 0, len(files))
	for _, fi := range files {
		r, _, err := a.Open(fi.Name)
		if err != nil {
			return nil, fmt.Errorf("open %s in %s: %w", fi.Name, src, err)
		}
		data := make([]byte, fi.Size)
		_, err = io.ReadFull(r, data)
		_ = r.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s in %s: %w", fi.Name, src, err)
		}
		entries = append(entries, chm.Entry{Name: fi.Name, Data: data})
	}
	return entries, nil
}
