package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/heft/internal/cache"
	"github.com/sadopc/heft/internal/config"
	"github.com/sadopc/heft/internal/logging"
	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ops"
	"github.com/sadopc/heft/internal/remote"
	"github.com/sadopc/heft/internal/scanner"
	"github.com/sadopc/heft/internal/ui"
	"github.com/sadopc/heft/internal/util"
	"github.com/sadopc/heft/internal/volume"
)

var (
	version = "dev"
)

const defaultSSHPort = 22

type scanTarget struct {
	Remote         bool
	LocalPath      string
	SSHDestination string
	RemotePath     string
}

type cliFlags struct {
	threshold      string
	exportPath     string
	importPath     string
	configPath     string
	list           bool
	useCache       bool
	showHidden     bool
	noHidden       bool
	noDirs         bool
	followSymlinks bool
	disableGC      bool
	showVersion    bool
	maxDepth       int
	concurrency    int
	exclude        string

	sshPort        int
	sshBatch       bool
	sshTimeout     int
	sshScanTimeout int

	// set holds the names of flags given on the command line.
	set map[string]bool
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	f := &cliFlags{}
	fs.StringVar(&f.threshold, "t", config.DefaultThreshold, "Minimum size to report, e.g. 10KiB, 5MB, 1234")
	fs.StringVar(&f.threshold, "threshold", config.DefaultThreshold, "Same as -t")
	fs.StringVar(&f.exportPath, "export", "", "Export the report to a JSON or YAML file (headless mode, use '-' for stdout)")
	fs.StringVar(&f.importPath, "import", "", "Import and view a report from a JSON or YAML file")
	fs.StringVar(&f.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	fs.BoolVar(&f.list, "list", false, "Print the report to stdout instead of starting the UI")
	fs.BoolVar(&f.useCache, "cache", false, "Show the last cached report for the path instead of scanning")
	fs.BoolVar(&f.showHidden, "hidden", true, "Include hidden files")
	fs.BoolVar(&f.noHidden, "no-hidden", false, "Skip hidden files")
	fs.BoolVar(&f.noDirs, "no-dirs", false, "Report files only, not directories")
	fs.BoolVar(&f.followSymlinks, "follow-symlinks", false, "Follow symbolic links during scan")
	fs.BoolVar(&f.disableGC, "no-gc", false, "Disable GC during scan (faster but uses more memory)")
	fs.BoolVar(&f.showVersion, "version", false, "Show version")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "Do not descend more than this many levels (0 = unlimited)")
	fs.IntVar(&f.concurrency, "j", 0, "Max concurrent directory scans (0 = auto)")
	fs.StringVar(&f.exclude, "exclude", "", "Comma-separated list of names to exclude")
	fs.IntVar(&f.sshPort, "ssh-port", defaultSSHPort, "SSH port for remote scans")
	fs.BoolVar(&f.sshBatch, "ssh-batch", false, "Disable SSH password prompts (key/agent auth only)")
	fs.IntVar(&f.sshTimeout, "ssh-timeout", 15, "SSH connection timeout in seconds")
	fs.IntVar(&f.sshScanTimeout, "ssh-scan-timeout", 0, "SSH scan timeout in seconds (0 = no limit)")
	return f
}

// visit records which flags were given explicitly.
func (f *cliFlags) visit(fs *flag.FlagSet) {
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
}

func usage() {
	fmt.Fprintf(os.Stderr, "heft - find what is taking up space\n\n")
	fmt.Fprintf(os.Stderr, "Usage: heft [options] [path|user@host [remote-path]]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  heft .                          Scan current directory\n")
	fmt.Fprintf(os.Stderr, "  heft -t 100MB /home             Only show items of 100 MB or more\n")
	fmt.Fprintf(os.Stderr, "  heft --list --no-dirs ~         Print the largest files\n")
	fmt.Fprintf(os.Stderr, "  heft --export scan.json .       Export the report to JSON\n")
	fmt.Fprintf(os.Stderr, "  heft --export scan.yaml .       Export the report to YAML\n")
	fmt.Fprintf(os.Stderr, "  heft --import scan.json         View an exported report\n")
	fmt.Fprintf(os.Stderr, "  heft --cache /home              Reopen the last report of /home\n")
	fmt.Fprintf(os.Stderr, "  heft user@192.168.1.10          Scan remote home directory over SSH\n")
	fmt.Fprintf(os.Stderr, "  heft --ssh-port 2222 user@host /var/log\n")
	fmt.Fprintf(os.Stderr, "  heft -j 8 /home                 Scan with 8 concurrent workers\n")
}

func main() {
	f := registerFlags(flag.CommandLine)
	flag.Usage = usage
	flag.Parse()
	f.visit(flag.CommandLine)
	os.Exit(run(f, flag.Args()))
}

// run executes the command and returns the process exit code.
func run(f *cliFlags, args []string) int {
	if err := validateFlags(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if f.showVersion {
		fmt.Printf("heft %s\n", version)
		return 0
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	threshold, opts, err := settings(cfg, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, closeLog := logging.New()
	defer closeLog()

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = cache.DefaultDir()
	}
	c := &cli{
		flags:     f,
		threshold: threshold,
		opts:      opts,
		store:     cache.New(cacheDir),
		keep:      cfg.CacheKeep,
		logger:    logger,
		stdout:    os.Stdout,
	}

	if f.importPath != "" {
		if len(args) > 0 {
			fmt.Fprintf(os.Stderr, "Error: --import cannot be used with scan targets\n")
			return 1
		}
		report, err := ops.ImportReport(f.importPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
			return 1
		}
		if err := c.show(report, ui.Options{Imported: true}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	target, err := resolveScanTarget(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if target.Remote {
		err = c.runRemote(target)
	} else {
		err = c.runLocal(target.LocalPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func validateFlags(f *cliFlags) error {
	if f.set["hidden"] && f.set["no-hidden"] {
		return errors.New("--hidden and --no-hidden cannot be used together")
	}
	if f.set["t"] && f.set["threshold"] {
		return errors.New("-t and --threshold cannot be used together")
	}
	if f.sshPort < 1 || f.sshPort > 65535 {
		return errors.New("ssh-port must be between 1 and 65535")
	}
	if f.concurrency < 0 {
		return errors.New("concurrency (-j) must be >= 0")
	}
	if f.maxDepth < 0 {
		return errors.New("max-depth must be >= 0")
	}
	if f.list && f.exportPath == "-" {
		return errors.New("--list and --export - both write to stdout")
	}
	return nil
}

// loadConfig reads the given config file, or the default one if it exists.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path, false)
	}
	return config.Load(config.DefaultPath(), true)
}

// settings merges the config file with the flags given on the command line.
func settings(cfg config.Config, f *cliFlags) (uint64, scanner.Options, error) {
	if f.set["t"] || f.set["threshold"] {
		cfg.Threshold = f.threshold
	}
	threshold, err := cfg.ThresholdBytes()
	if err != nil {
		return 0, scanner.Options{}, fmt.Errorf("threshold: %w", err)
	}

	opts := cfg.ScanOptions()
	if f.set["hidden"] {
		opts.ShowHidden = f.showHidden
	}
	if f.noHidden {
		opts.ShowHidden = false
	}
	if f.noDirs {
		opts.IncludeDirectories = false
	}
	if f.set["follow-symlinks"] {
		opts.FollowSymlinks = f.followSymlinks
	}
	if f.set["max-depth"] {
		opts.MaxDepth = f.maxDepth
	}
	if f.set["j"] {
		opts.Concurrency = f.concurrency
	}
	opts.DisableGC = f.disableGC
	if f.exclude != "" {
		opts.ExcludePatterns = append(opts.ExcludePatterns, splitComma(f.exclude)...)
	}
	return threshold, opts, nil
}

type cli struct {
	flags     *cliFlags
	threshold uint64
	opts      scanner.Options
	store     *cache.Store
	keep      int
	logger    *slog.Logger
	stdout    io.Writer
}

func (c *cli) runLocal(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// A missing root fails before the UI starts, with the error a scan gives.
	if _, err := os.Stat(absPath); errors.Is(err, fs.ErrNotExist) {
		return &scanner.ScanError{Kind: scanner.ErrNotFound, Path: absPath, Err: err}
	}

	if c.flags.useCache {
		report, err := c.store.LoadLatest(absPath)
		switch {
		case err == nil:
			c.logger.Debug("using cached report", "root", absPath)
			return c.show(report, ui.Options{Cached: true})
		case errors.Is(err, cache.ErrNoCache):
			fmt.Fprintf(os.Stderr, "No cached report for %s, scanning\n", absPath)
		default:
			return err
		}
	}

	svc := scanner.NewService(scanner.NewParallelScanner(), c.logger)
	if !c.headless() {
		return c.runTUI(ui.Options{Root: absPath, Service: svc, Cache: c.store, CacheKeep: c.keep})
	}

	if c.flags.exportPath != "" && c.flags.exportPath != "-" {
		fmt.Fprintf(c.stdout, "Scanning %s...\n", absPath)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	job, err := svc.Start(ctx, scanner.Request{Root: absPath, Threshold: c.threshold, Options: c.opts})
	if err != nil {
		return err
	}
	report, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	c.save(report)
	return c.show(report, ui.Options{})
}

func (c *cli) runRemote(target scanTarget) error {
	cfg := remote.Config{
		Target:    target.SSHDestination,
		Port:      c.flags.sshPort,
		BatchMode: c.flags.sshBatch,
		Timeout:   time.Duration(c.flags.sshTimeout) * time.Second,
		Logger:    c.logger,
	}
	if c.flags.sshScanTimeout > 0 {
		cfg.ScanTimeout = time.Duration(c.flags.sshScanTimeout) * time.Second
	}
	svc := scanner.NewService(remote.NewSFTPScanner(cfg), c.logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The scan runs before the UI starts so SSH prompts can use the terminal.
	progressCh := make(chan scanner.Progress, 10)
	job, err := svc.Start(ctx, scanner.Request{
		Root:      target.RemotePath,
		Threshold: c.threshold,
		Options:   c.opts,
		Progress:  progressCh,
	})
	if err != nil {
		return err
	}

	var progressWg sync.WaitGroup
	progressWg.Add(1)
	go func() {
		defer progressWg.Done()
		for {
			select {
			case p := <-progressCh:
				fmt.Fprintf(os.Stderr, "\rScanning %s: %d files, %d dirs, %d issues...",
					target.SSHDestination, p.FilesScanned, p.DirsScanned, p.Errors)
			case <-job.Done():
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	}()

	report, err := job.Wait(ctx)
	progressWg.Wait()
	if err != nil {
		return err
	}
	return c.show(report, ui.Options{Remote: true})
}

func (c *cli) headless() bool {
	return c.flags.exportPath != "" || c.flags.list
}

// show exports or prints report in headless mode, or opens it in the UI.
func (c *cli) show(report *model.ScanReport, opts ui.Options) error {
	if !c.headless() {
		opts.Root = report.Root
		opts.Report = report
		opts.Threshold = report.ThresholdBytes
		if !opts.Imported && !opts.Remote {
			opts.Cache, opts.CacheKeep = c.store, c.keep
		}
		return c.runTUI(opts)
	}

	if c.flags.exportPath != "" {
		if err := ops.ExportReport(report, c.flags.exportPath, version); err != nil {
			return fmt.Errorf("export error: %w", err)
		}
		if c.flags.exportPath != "-" {
			fmt.Fprintf(c.stdout, "Exported to %s\n", c.flags.exportPath)
		}
	}
	if c.flags.list {
		var vol *volume.Info
		if !opts.Imported && !opts.Remote {
			if info, err := volume.Usage(report.Root); err == nil {
				vol = &info
			}
		}
		printList(c.stdout, report, vol)
	}
	return nil
}

func (c *cli) runTUI(opts ui.Options) error {
	if opts.Threshold == 0 && opts.Report == nil {
		opts.Threshold = c.threshold
	}
	opts.Scan = c.opts
	opts.Version = version
	opts.Logger = c.logger
	if opts.Service == nil {
		opts.Service = scanner.NewService(scanner.NewParallelScanner(), c.logger)
	}

	app := ui.NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return app.FatalError()
}

func (c *cli) save(report *model.ScanReport) {
	if err := c.store.Save(report); err != nil {
		c.logger.Warn("cannot cache report", "root", report.Root, "err", err)
		return
	}
	if c.keep > 0 {
		if err := c.store.Prune(report.Root, c.keep); err != nil {
			c.logger.Warn("cannot prune cache", "root", report.Root, "err", err)
		}
	}
}

// printList writes the report as plain text, largest entries first.
func printList(w io.Writer, report *model.ScanReport, vol *volume.Info) {
	fmt.Fprintf(w, "%s  (>= %s, %d matches, %s reclaimable)\n",
		report.Root, util.FormatSize(report.ThresholdBytes), len(report.Entries),
		util.FormatSize(report.ReclaimableBytes()))

	for _, e := range model.SortEntries(report.Entries, model.DefaultSort()) {
		name := relativeTo(report.Root, e.Path)
		if e.IsDir() {
			name += "/"
		}
		fmt.Fprintf(w, "%10s  %s\n", e.SizeDisplay, name)
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\n%d issue(s):\n", len(report.Errors))
		for _, is := range report.Errors {
			line := fmt.Sprintf("  %-17s %s", is.Reason, relativeTo(report.Root, is.Path))
			if is.Detail != "" {
				line += " (" + is.Detail + ")"
			}
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintf(w, "\n%s in %s files, %s dirs, scanned in %s\n",
		util.FormatSize(report.TotalBytes), util.FormatCount(report.FilesScanned),
		util.FormatCount(report.DirsScanned), report.Duration())
	if vol != nil {
		fmt.Fprintf(w, "Volume: %s\n", vol)
	}
}

func relativeTo(root, p string) string {
	if p == root || !model.IsWithin(root, p) {
		return p
	}
	return strings.TrimLeft(p[len(root):], `/\`)
}

func resolveScanTarget(args []string) (scanTarget, error) {
	if len(args) == 0 {
		return scanTarget{LocalPath: "."}, nil
	}

	first := args[0]
	if pathExists(first) {
		if len(args) > 1 {
			return scanTarget{}, fmt.Errorf("too many positional arguments for local scan")
		}
		return scanTarget{LocalPath: first}, nil
	}

	if isRemote, err := validateRemoteTarget(first); isRemote {
		if err != nil {
			return scanTarget{}, err
		}
		if len(args) > 2 {
			return scanTarget{}, fmt.Errorf("too many positional arguments for remote scan")
		}

		remotePath := "."
		if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
			remotePath = args[1]
		}

		return scanTarget{
			Remote:         true,
			SSHDestination: first,
			RemotePath:     remotePath,
		}, nil
	}

	if len(args) > 1 {
		return scanTarget{}, fmt.Errorf("too many positional arguments")
	}

	return scanTarget{LocalPath: first}, nil
}

func validateRemoteTarget(raw string) (bool, error) {
	if strings.ContainsAny(raw, `/\`) {
		return false, nil
	}
	if strings.Count(raw, "@") != 1 {
		return false, nil
	}

	user, host, _ := strings.Cut(raw, "@")
	if user == "" || host == "" {
		return true, fmt.Errorf("invalid remote target %q: expected user@host", raw)
	}
	if strings.HasPrefix(user, "-") || strings.HasPrefix(host, "-") {
		return true, fmt.Errorf("invalid remote target %q", raw)
	}
	if strings.ContainsAny(user, " \t\n\r") || strings.ContainsAny(host, " \t\n\r") {
		return true, fmt.Errorf("invalid remote target %q: spaces are not allowed", raw)
	}
	if strings.HasPrefix(host, "[") {
		end := strings.Index(host, "]")
		switch {
		case end == -1:
			return true, fmt.Errorf("invalid remote target %q: malformed bracketed host", raw)
		case end == 1:
			return true, fmt.Errorf("invalid remote target %q: empty host", raw)
		case end != len(host)-1:
			rest := host[end+1:]
			if strings.HasPrefix(rest, ":") && isAllDigits(rest[1:]) {
				return true, fmt.Errorf("remote target %q must not include :port; use --ssh-port", raw)
			}
			return true, fmt.Errorf("invalid remote target %q: malformed bracketed host", raw)
		}
	} else if strings.Contains(host, "]") {
		return true, fmt.Errorf("invalid remote target %q: malformed bracketed host", raw)
	}
	if looksLikeHostPort(host) {
		return true, fmt.Errorf("remote target %q must not include :port; use --ssh-port", raw)
	}

	return true, nil
}

func looksLikeHostPort(host string) bool {
	if strings.Count(host, ":") != 1 {
		return false
	}
	_, port, _ := strings.Cut(host, ":")
	return isAllDigits(port)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitComma(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
