package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ipfs/go-cid"
	"github.com/sirupsen/logrus"

	"github.com/composable-auto-assessment/generator/cidutil"
	"github.com/composable-auto-assessment/generator/config"
	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/generator"
	"github.com/composable-auto-assessment/generator/metadata"
	"github.com/composable-auto-assessment/generator/payload"
	"github.com/composable-auto-assessment/generator/storage"
	"github.com/composable-auto-assessment/generator/storage/bundle"
	"github.com/composable-auto-assessment/generator/storage/casregistry"

	_ "github.com/composable-auto-assessment/generator/storage/grpccas"
	_ "github.com/composable-auto-assessment/generator/storage/localfs"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "generate":
		return cmdGenerate(args[1:], out, errOut)
	case "fingerprint":
		return cmdFingerprint(args[1:], out, errOut)
	case "payload":
		return cmdPayload(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "bundle":
		return cmdBundle(args[1:], out, errOut)
	case "archive":
		return cmdArchive(args[1:], out, errOut)
	case "version":
		fmt.Fprintln(out, version)
		return 0
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		if fi, err := os.Stat(args[0]); err == nil && fi.Mode().IsRegular() {
			return cmdGenerate(args, out, errOut)
		}
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "qrgen: QR payload generator for assessment content sets")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  qrgen <file> [<file> ...]  (same as generate with defaults)")
	fmt.Fprintln(w, "  qrgen generate [--config <file>] [--set <id>] [--pages <n>] [--prefix <p>] [--out <dir>] [--algorithm <a>] [--backend <name>] [-v] <file> [<file> ...]")
	fmt.Fprintln(w, "  qrgen fingerprint [--algorithm <a>] <file> [<file> ...]")
	fmt.Fprintln(w, "  qrgen payload --set <id> --page <n> [--algorithm <a>] <file> [<file> ...]")
	fmt.Fprintln(w, "  qrgen verify --payload-hex <hex> [--config <file>] [--algorithm <a>] [--backend <name>]")
	fmt.Fprintln(w, "  qrgen bundle export --out <file.tar> [--config <file>] [--backend <name>] <cid> [<cid> ...]")
	fmt.Fprintln(w, "  qrgen bundle import --in <file.tar> [--config <file>] [--backend <name>]")
	fmt.Fprintln(w, "  qrgen archive put [--backend <name>] <file>")
	fmt.Fprintln(w, "  qrgen archive get [--backend <name>] --cid <cid> [--out <file>]")
	fmt.Fprintln(w, "  qrgen archive backends")
	fmt.Fprintln(w, "  qrgen version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - outputs are named <prefix>-<set>-<page>.png, one per page 1..pages")
	fmt.Fprintln(w, "  - algorithms: shake128 (default), blake3")
	fmt.Fprintln(w, "  - archive backends come from --backend or the [archive] section of the config")
	fmt.Fprintf(w, "  - known backends: %v\n", casregistry.Names(casregistry.UsageCLI))
}

// archiveFlags are shared by every subcommand that may open an archive.
type archiveFlags struct {
	configPath string
	algorithm  string
	backend    string
}

func (a *archiveFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&a.configPath, "config", "", "Config file (default "+config.DefaultFileName+" if present)")
	fs.StringVar(&a.algorithm, "algorithm", "", "Fingerprint algorithm (shake128, blake3)")
	fs.StringVar(&a.backend, "backend", "", "Archive backend name (overrides the config [archive] section)")
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)
}

func (a *archiveFlags) load() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if a.algorithm != "" {
		cfg.Fingerprint.Algorithm = a.algorithm
	}
	return cfg, cfg.Validate()
}

// open returns the configured archive, or a nil CAS when none is configured.
func (a *archiveFlags) open(cfg config.Config) (storage.CAS, func() error, error) {
	opts := casregistry.Options{Algorithm: cfg.Algorithm()}
	switch {
	case a.backend != "":
		return casregistry.Open(a.backend, casregistry.UsageCLI, opts)
	case cfg.Archive.Enabled():
		return cfg.Archive.Open(casregistry.UsageCLI, "", opts)
	default:
		return nil, nil, nil
	}
}

func newLogger(w io.Writer, level string, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	l.SetLevel(lvl)
	return l
}

func cmdGenerate(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var af archiveFlags
	af.register(fs)
	setID := fs.Int("set", 0, "Set identifier (0-255)")
	pages := fs.Int("pages", 1, "Number of pages (1-255)")
	prefix := fs.String("prefix", "", "Output name prefix")
	outDir := fs.String("out", "", "Output directory")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: qrgen generate [flags] <file> [<file> ...]")
		return 2
	}

	cfg, err := af.load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "set":
			cfg.Set.ID = *setID
		case "pages":
			cfg.Set.Pages = *pages
		case "prefix":
			cfg.Output.Prefix = *prefix
		case "out":
			cfg.Output.Dir = *outDir
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	terminal, err := metadata.New(cfg.Set.ID, cfg.Set.Pages)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	enc, err := cfg.Encoder()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	archive, closeFn, err := af.open(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "open archive: %v\n", err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	g := &generator.Generator{
		Encoder:   enc,
		Writer:    cfg.Writer(),
		Algorithm: cfg.Algorithm(),
		Archive:   archive,
		Logger:    newLogger(errOut, cfg.Logging.Level, *verbose),
	}
	report, err := g.EmitFiles(fs.Args(), terminal, cfg.Output.Prefix)
	for _, name := range report.Names {
		fmt.Fprintln(out, cfg.Writer().Path(name))
	}
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if report.ManifestCID.Defined() {
		fmt.Fprintf(errOut, "manifest %s\n", report.ManifestCID)
	}
	return 0
}

func cmdFingerprint(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("fingerprint", flag.ContinueOnError)
	fs.SetOutput(errOut)
	algName := fs.String("algorithm", string(fingerprint.Default), "Fingerprint algorithm (shake128, blake3)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: qrgen fingerprint [--algorithm <a>] <file> [<file> ...]")
		return 2
	}
	alg, err := fingerprint.ParseAlgorithm(*algName)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	set, err := generator.ReadContentSet(fs.Args()...)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fp, err := fingerprint.OfWith(alg, set)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	id, err := cidutil.FingerprintCID(alg, fp)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "%s %s\n", fp, id)
	return 0
}

func cmdPayload(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("payload", flag.ContinueOnError)
	fs.SetOutput(errOut)
	algName := fs.String("algorithm", string(fingerprint.Default), "Fingerprint algorithm (shake128, blake3)")
	setID := fs.Int("set", 0, "Set identifier (0-255)")
	page := fs.Int("page", 1, "Page number (1-255)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: qrgen payload --set <id> --page <n> <file> [<file> ...]")
		return 2
	}
	alg, err := fingerprint.ParseAlgorithm(*algName)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	m, err := metadata.New(*setID, *page)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	set, err := generator.ReadContentSet(fs.Args()...)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fp, err := fingerprint.OfWith(alg, set)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	p, err := payload.Build(fp, m)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, hex.EncodeToString(p))
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var af archiveFlags
	af.register(fs)
	payloadHex := fs.String("payload-hex", "", "Scanned payload as hex")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *payloadHex == "" {
		fmt.Fprintln(errOut, "usage: qrgen verify --payload-hex <hex> [--backend <name>]")
		return 2
	}
	scanned, err := hex.DecodeString(*payloadHex)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --payload-hex: %v\n", err)
		return 2
	}
	cfg, err := af.load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	archive, closeFn, err := af.open(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "open archive: %v\n", err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	v, err := generator.Verify(archive, scanned, cfg.Algorithm())
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "fingerprint %s\n", v.Fingerprint)
	fmt.Fprintf(out, "set %d page %d\n", v.Metadata.SetID, v.Metadata.Page)
	fmt.Fprintf(out, "cid %s\n", v.ContentCID)
	if archive != nil {
		fmt.Fprintf(out, "verified %d bytes\n", len(v.Content))
	}
	return 0
}

func cmdBundle(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: qrgen bundle <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: export, import")
		return 2
	}
	sub := args[0]
	if sub != "export" && sub != "import" {
		fmt.Fprintf(errOut, "unknown bundle subcommand: %s\n", sub)
		return 2
	}

	fs := flag.NewFlagSet("bundle "+sub, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var af archiveFlags
	af.register(fs)
	var path string
	if sub == "export" {
		fs.StringVar(&path, "out", "", "Bundle file to write")
	} else {
		fs.StringVar(&path, "in", "", "Bundle file to read")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if path == "" || (sub == "export" && fs.NArg() == 0) {
		fmt.Fprintln(errOut, "usage: qrgen bundle export --out <file.tar> <cid> [<cid> ...] | qrgen bundle import --in <file.tar>")
		return 2
	}

	cfg, err := af.load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	archive, closeFn, err := af.open(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "open archive: %v\n", err)
		return 1
	}
	if archive == nil {
		fmt.Fprintln(errOut, "bundle requires an archive (--backend or [archive] in config)")
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	if sub == "import" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(errOut, "open --in: %v\n", err)
			return 1
		}
		defer f.Close()
		n, err := bundle.Import(f, archive)
		if err != nil {
			fmt.Fprintf(errOut, "import: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "imported %d objects\n", n)
		return 0
	}

	ids := make([]cid.Cid, 0, fs.NArg())
	for _, s := range fs.Args() {
		id, err := cid.Decode(s)
		if err != nil {
			fmt.Fprintf(errOut, "invalid cid %q: %v\n", s, err)
			return 2
		}
		ids = append(ids, id)
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(errOut, "create --out: %v\n", err)
		return 1
	}
	if err := bundle.Export(f, archive, ids, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "close --out: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "exported %d objects\n", len(ids))
	return 0
}

func cmdArchive(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: qrgen archive <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: put, get, backends")
		return 2
	}
	switch args[0] {
	case "backends":
		for _, b := range casregistry.List(casregistry.UsageCLI) {
			if b.Description == "" {
				fmt.Fprintln(out, b.Name)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
		}
		return 0
	case "put", "get":
	default:
		fmt.Fprintf(errOut, "unknown archive subcommand: %s\n", args[0])
		return 2
	}

	sub := args[0]
	fs := flag.NewFlagSet("archive "+sub, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var af archiveFlags
	af.register(fs)
	cidStr := fs.String("cid", "", "Object CID (get)")
	outPath := fs.String("out", "", "Write object to file instead of stdout (get)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if (sub == "put" && fs.NArg() != 1) || (sub == "get" && *cidStr == "") {
		fmt.Fprintln(errOut, "usage: qrgen archive put <file> | qrgen archive get --cid <cid> [--out <file>]")
		return 2
	}

	cfg, err := af.load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	archive, closeFn, err := af.open(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "open archive: %v\n", err)
		return 1
	}
	if archive == nil {
		fmt.Fprintln(errOut, "archive requires --backend or [archive] in config")
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	if sub == "put" {
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read: %v\n", err)
			return 1
		}
		id, err := archive.Put(b)
		if err != nil {
			fmt.Fprintf(errOut, "put: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, id)
		return 0
	}

	id, err := cid.Decode(*cidStr)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --cid: %v\n", err)
		return 2
	}
	b, err := archive.Get(id)
	if err != nil {
		fmt.Fprintf(errOut, "get: %v\n", err)
		return 1
	}
	if *outPath == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		fmt.Fprintf(errOut, "write --out: %v\n", err)
		return 1
	}
	return 0
}
