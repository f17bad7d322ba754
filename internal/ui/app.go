package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/heft/internal/cache"
	"github.com/sadopc/heft/internal/model"
	"github.com/sadopc/heft/internal/ops"
	"github.com/sadopc/heft/internal/scanner"
	"github.com/sadopc/heft/internal/ui/components"
	"github.com/sadopc/heft/internal/ui/style"
	"github.com/sadopc/heft/internal/util"
	"github.com/sadopc/heft/internal/volume"
)

// DefaultExportPath is where E writes when no export path was given.
const DefaultExportPath = "heft-report.json"

// ViewMode represents the current view.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewTreemap
	ViewFileType
	ViewIssues
)

// AppState represents the application state.
type AppState int

const (
	StateScanning AppState = iota
	StateBrowsing
	StateConfirmDelete
	StateHelp
	StateExporting
)

// Scope narrows the list view to part of the report.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeTopLevel
	ScopeFiles
)

func (s Scope) String() string {
	switch s {
	case ScopeTopLevel:
		return "top-level"
	case ScopeFiles:
		return "files"
	default:
		return "entries"
	}
}

// ScanDoneMsg is sent when a scan or load completes.
type ScanDoneMsg struct {
	Report *model.ScanReport
	Volume *volume.Info
	Types  []model.CategoryStat
	Err    error
	// Fresh is set when the report comes from a scan that just ran.
	Fresh bool
}

// DeleteDoneMsg is sent when deletion completes.
type DeleteDoneMsg struct {
	Result ops.DeleteResult
	Err    error
}

// ExportDoneMsg is sent when export completes.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// Options configures the App.
type Options struct {
	Root      string
	Threshold uint64
	Scan      scanner.Options
	Service   *scanner.Service

	// Report, when set, is shown instead of scanning first.
	Report   *model.ScanReport
	Imported bool
	// Remote reports live on another machine: no volume info, no delete
	// and no content sniffing.
	Remote bool
	// Cached reports were reloaded from the cache and may no longer match
	// the disk. Delete stays off until a rescan replaces them.
	Cached bool

	Cache     *cache.Store
	CacheKeep int

	ExportPath string
	Version    string
	Logger     *slog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	state    AppState
	viewMode ViewMode
	scope    Scope
	width    int
	height   int

	report     *model.ScanReport
	vol        *volume.Info
	types      []model.CategoryStat
	sortConfig model.SortConfig
	items      []model.Entry

	cursor      int
	offset      int
	issueOffset int

	selected     map[string]bool
	confirmItems []model.Entry

	spin           spinner.Model
	progressMu     sync.Mutex
	latestProgress scanner.Progress
	scanProgress   scanner.Progress
	job            *scanner.Job

	theme  style.Theme
	keys   KeyMap
	layout style.Layout
	logger *slog.Logger

	statusMsg string
	fatalErr  error
	stale     bool
}

// NewApp creates a new App model.
func NewApp(opts Options) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Service == nil {
		opts.Service = scanner.NewService(scanner.NewParallelScanner(), logger)
	}
	return &App{
		opts:       opts,
		state:      StateScanning,
		viewMode:   ViewList,
		sortConfig: model.DefaultSort(),
		selected:   make(map[string]bool),
		spin:       sp,
		theme:      style.DefaultTheme(),
		keys:       DefaultKeyMap(),
		logger:     logger,
		stale:      opts.Cached,
	}
}

func (a *App) Init() tea.Cmd {
	if a.opts.Report != nil {
		report := a.opts.Report
		return a.summarizeCmd(func() (*model.ScanReport, error) { return report, nil }, false)
	}
	return tea.Batch(a.startScan(), a.spin.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = style.NewLayout(msg.Width, msg.Height)
		return a, nil

	case spinner.TickMsg:
		if a.state != StateScanning {
			return a, nil
		}
		a.progressMu.Lock()
		a.scanProgress = a.latestProgress
		a.progressMu.Unlock()
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case ScanDoneMsg:
		a.job = nil
		if msg.Err != nil {
			a.fatalErr = msg.Err
			return a, tea.Quit
		}
		a.fatalErr = nil
		if msg.Fresh {
			a.stale = false
		}
		a.report = msg.Report
		a.vol = msg.Volume
		a.types = msg.Types
		a.cursor, a.offset, a.issueOffset = 0, 0, 0
		a.clearSelection()
		a.state = StateBrowsing
		a.refreshItems()
		return a, tea.ClearScreen

	case DeleteDoneMsg:
		a.confirmItems = nil
		a.clearSelection()
		switch {
		case msg.Err != nil:
			a.state = StateBrowsing
			a.statusMsg = fmt.Sprintf("Delete refused: %v", msg.Err)
			return a, tea.ClearScreen
		case len(msg.Result.Failed) > 0:
			f := msg.Result.Failed[0]
			a.statusMsg = fmt.Sprintf("Deleted %d, %d failed (%s: %v)",
				len(msg.Result.Deleted), len(msg.Result.Failed), f.Path, f.Err)
		default:
			a.statusMsg = fmt.Sprintf("Deleted %d item(s), freed %s",
				len(msg.Result.Deleted)+len(msg.Result.Covered), util.FormatSize(msg.Result.FreedBytes))
		}
		// Sizes above the deleted paths are stale; the report is rebuilt.
		return a, tea.Batch(tea.ClearScreen, a.startScan(), a.spin.Tick)

	case ExportDoneMsg:
		a.state = StateBrowsing
		if msg.Err != nil {
			a.statusMsg = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			a.statusMsg = fmt.Sprintf("Exported to %s", msg.Path)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		a.cancelScan()
		return a, tea.Quit
	}

	switch a.state {
	case StateScanning:
		if key.Matches(msg, a.keys.Quit) {
			a.cancelScan()
			return a, tea.Quit
		}
		return a, nil

	case StateHelp:
		if key.Matches(msg, a.keys.Help) || msg.String() == "esc" {
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateConfirmDelete:
		if key.Matches(msg, a.keys.ConfirmYes) {
			return a, a.executeDelete()
		}
		if key.Matches(msg, a.keys.ConfirmNo) {
			a.confirmItems = nil
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateBrowsing:
		return a.handleBrowsingKey(msg)
	}

	return a, nil
}

func (a *App) handleBrowsingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.statusMsg = ""
	page := a.layout.ContentHeight()
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.state = StateHelp
		return a, tea.ClearScreen

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.PageUp):
		a.moveCursor(-page)
	case key.Matches(msg, a.keys.PageDown):
		a.moveCursor(page)
	case key.Matches(msg, a.keys.Home):
		a.moveCursor(-a.listLen())
	case key.Matches(msg, a.keys.End):
		a.moveCursor(a.listLen())

	case key.Matches(msg, a.keys.ViewList):
		a.viewMode = ViewList
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.ViewTreemap):
		a.viewMode = ViewTreemap
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.ViewFileType):
		a.viewMode = ViewFileType
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.ViewIssues):
		a.viewMode = ViewIssues
		return a, tea.ClearScreen
	case key.Matches(msg, a.keys.Scope):
		a.scope = (a.scope + 1) % 3
		a.cursor, a.offset = 0, 0
		a.refreshItems()

	case key.Matches(msg, a.keys.SortSize):
		a.toggleSort(model.SortBySize)
	case key.Matches(msg, a.keys.SortName):
		a.toggleSort(model.SortByName)
	case key.Matches(msg, a.keys.SortKind):
		a.toggleSort(model.SortByKind)
	case key.Matches(msg, a.keys.SortScan):
		a.toggleSort(model.SortByScan)
	case key.Matches(msg, a.keys.SortMtime):
		a.toggleSort(model.SortByModified)

	case key.Matches(msg, a.keys.Select):
		if a.viewMode == ViewList {
			a.toggleSelect()
		}
	case key.Matches(msg, a.keys.SelectAll):
		if a.viewMode == ViewList {
			a.toggleSelectAll()
		}

	case key.Matches(msg, a.keys.Delete):
		if a.viewMode == ViewList {
			a.prepareDelete()
			if a.state == StateConfirmDelete {
				return a, tea.ClearScreen
			}
		}

	case key.Matches(msg, a.keys.Export):
		return a, a.exportCmd()

	case key.Matches(msg, a.keys.Rescan):
		switch {
		case a.opts.Remote:
			// Reconnecting may prompt for credentials, which needs the terminal.
			a.statusMsg = "Rescan is not available for remote scans"
			return a, nil
		case a.opts.Imported:
			a.statusMsg = "Rescan is not available for imported reports"
			return a, nil
		}
		return a, tea.Batch(tea.ClearScreen, a.startScan(), a.spin.Tick)
	}

	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	switch a.state {
	case StateScanning:
		return components.RenderScanProgress(a.theme, a.opts.Root, a.spin.View(), a.scanProgress, a.width, a.height)

	case StateHelp:
		return components.RenderHelp(a.theme, a.canDelete(), a.width, a.height)

	case StateConfirmDelete:
		return components.RenderConfirmDialog(a.theme, a.report.Root, a.confirmItems, a.width, a.height)

	case StateBrowsing, StateExporting:
		return a.renderBrowsing()
	}

	return ""
}

func (a *App) renderBrowsing() string {
	header := components.RenderHeader(a.theme, a.report, a.vol, a.width)
	summary := components.RenderSummary(a.theme, a.report, a.opts.Imported, a.width)
	tabBar := components.RenderTabBar(a.theme, int(a.viewMode), a.sortConfig, len(a.report.Errors), a.width)

	width, height := a.layout.ContentWidth(), a.layout.ContentHeight()
	var content string
	switch a.viewMode {
	case ViewList:
		lv := &components.ListView{
			Theme:    a.theme,
			Layout:   a.layout,
			Root:     a.report.Root,
			Items:    a.items,
			Total:    a.report.TotalBytes,
			Cursor:   a.cursor,
			Offset:   a.offset,
			Selected: a.selected,
		}
		lv.EnsureVisible()
		a.offset = lv.Offset
		content = lv.Render()

	case ViewTreemap:
		content = components.RenderTreemap(a.theme, a.report, width, height)

	case ViewFileType:
		content = components.RenderFileTypes(a.theme, a.types, width, height)

	case ViewIssues:
		content = components.RenderIssues(a.theme, a.report.Root, a.report.Errors, a.issueOffset, width, height)
	}

	var visibleBytes uint64
	for _, e := range a.items {
		if e.IsFile || a.scope == ScopeTopLevel {
			visibleBytes = model.SaturatingAdd(visibleBytes, e.SizeBytes)
		}
	}
	statusBar := components.RenderStatusBar(a.theme, components.StatusInfo{
		Visible:       len(a.items),
		VisibleBytes:  visibleBytes,
		Scope:         a.scope.String(),
		SelectedCount: len(a.selected),
		SelectedBytes: a.selectedBytes(),
		CanDelete:     a.canDelete(),
		Message:       a.statusMsg,
	}, a.width)

	return header + "\n" + summary + "\n" + tabBar + "\n" + content + "\n" + statusBar
}

// listLen is the number of rows the cursor moves over in the current view.
func (a *App) listLen() int {
	if a.viewMode == ViewIssues && a.report != nil {
		return len(a.report.Errors)
	}
	return len(a.items)
}

func (a *App) moveCursor(delta int) {
	if a.viewMode == ViewIssues {
		a.issueOffset = min(max(a.issueOffset+delta, 0), max(a.listLen()-1, 0))
		return
	}
	a.cursor = min(max(a.cursor+delta, 0), max(len(a.items)-1, 0))
}

func (a *App) toggleSort(field model.SortField) {
	if a.sortConfig.Field == field {
		if a.sortConfig.Order == model.SortDesc {
			a.sortConfig.Order = model.SortAsc
		} else {
			a.sortConfig.Order = model.SortDesc
		}
	} else {
		a.sortConfig.Field = field
		a.sortConfig.Order = model.SortDesc
		if field == model.SortByName || field == model.SortByKind {
			a.sortConfig.Order = model.SortAsc
		}
	}
	a.refreshItems()
}

func (a *App) refreshItems() {
	if a.report == nil {
		a.items = nil
		return
	}
	var base []model.Entry
	switch a.scope {
	case ScopeTopLevel:
		base = a.report.TopLevel()
	case ScopeFiles:
		base = a.report.Files()
	default:
		base = a.report.Entries
	}
	a.items = model.SortEntries(base, a.sortConfig)
	a.cursor = min(a.cursor, max(len(a.items)-1, 0))
}

func (a *App) toggleSelect() {
	if a.cursor >= len(a.items) {
		return
	}
	p := a.items[a.cursor].Path
	if a.selected[p] {
		delete(a.selected, p)
	} else {
		a.selected[p] = true
	}
	a.moveCursor(1)
}

// toggleSelectAll selects every visible entry, or clears them all when they
// already are.
func (a *App) toggleSelectAll() {
	all := len(a.items) > 0
	for _, e := range a.items {
		if !a.selected[e.Path] {
			all = false
			break
		}
	}
	for _, e := range a.items {
		if all {
			delete(a.selected, e.Path)
		} else {
			a.selected[e.Path] = true
		}
	}
}

func (a *App) clearSelection() {
	a.selected = make(map[string]bool)
}

// selectedBytes totals the selection without counting an entry twice when
// a selected directory contains it.
func (a *App) selectedBytes() uint64 {
	if a.report == nil {
		return 0
	}
	var total uint64
	for p := range a.selected {
		covered := false
		for other := range a.selected {
			if other != p && model.IsWithin(other, p) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		if e, ok := a.report.Find(p); ok {
			total = model.SaturatingAdd(total, e.SizeBytes)
		}
	}
	return total
}

func (a *App) canDelete() bool {
	return !a.opts.Imported && !a.opts.Remote && !a.stale
}

func (a *App) cancelScan() {
	if a.job != nil {
		a.job.Cancel()
	}
}

// startScan submits a scan of the configured root to the service and
// returns the command that waits for it.
func (a *App) startScan() tea.Cmd {
	a.state = StateScanning
	a.progressMu.Lock()
	a.latestProgress = scanner.Progress{}
	a.progressMu.Unlock()
	a.scanProgress = scanner.Progress{}

	progressCh := make(chan scanner.Progress, 10)
	job, err := a.opts.Service.Start(context.Background(), scanner.Request{
		Root:      a.opts.Root,
		Threshold: a.opts.Threshold,
		Options:   a.opts.Scan,
		Progress:  progressCh,
	})
	if err != nil {
		return func() tea.Msg { return ScanDoneMsg{Err: err} }
	}
	a.job = job

	// Relay progress to shared state, read on each spinner tick.
	go func() {
		for {
			select {
			case p := <-progressCh:
				a.progressMu.Lock()
				a.latestProgress = p
				a.progressMu.Unlock()
			case <-job.Done():
				return
			}
		}
	}()

	return a.summarizeCmd(func() (*model.ScanReport, error) {
		<-job.Done()
		res := job.Result()
		return res.Report, res.Err
	}, true)
}

// summarizeCmd waits for a report and gathers what the views need beside
// it. Fresh scans are also saved to the cache.
func (a *App) summarizeCmd(load func() (*model.ScanReport, error), fresh bool) tea.Cmd {
	opts := a.opts
	logger := a.logger
	return func() tea.Msg {
		report, err := load()
		if err != nil {
			return ScanDoneMsg{Err: err}
		}

		if fresh && opts.Cache != nil {
			if err := opts.Cache.Save(report); err != nil {
				logger.Warn("cannot cache report", "root", report.Root, "err", err)
			} else if opts.CacheKeep > 0 {
				if err := opts.Cache.Prune(report.Root, opts.CacheKeep); err != nil {
					logger.Warn("cannot prune cache", "root", report.Root, "err", err)
				}
			}
		}

		msg := ScanDoneMsg{Report: report, Fresh: fresh}
		classify := model.DetectCategory
		if opts.Remote || opts.Imported {
			classify = model.ClassifyFile
		}
		msg.Types = model.Breakdown(report, classify)

		if !opts.Remote && !opts.Imported {
			if info, err := volume.Usage(report.Root); err == nil {
				msg.Volume = &info
			} else {
				logger.Debug("volume usage unavailable", "root", report.Root, "err", err)
			}
		}
		return msg
	}
}

func (a *App) prepareDelete() {
	if !a.canDelete() {
		switch {
		case a.opts.Remote:
			a.statusMsg = "Delete is disabled for remote scans"
		case a.opts.Imported:
			a.statusMsg = "Delete is disabled in import mode"
		default:
			a.statusMsg = "Delete is disabled for cached reports, press r to rescan"
		}
		return
	}
	if a.report == nil {
		return
	}

	var items []model.Entry
	if len(a.selected) > 0 {
		for p := range a.selected {
			if e, ok := a.report.Find(p); ok {
				items = append(items, e)
			}
		}
		items = model.SortEntries(items, a.sortConfig)
	} else if a.cursor < len(a.items) {
		items = append(items, a.items[a.cursor])
	}
	if len(items) == 0 {
		return
	}

	a.confirmItems = items
	a.state = StateConfirmDelete
}

func (a *App) executeDelete() tea.Cmd {
	report := a.report
	paths := make([]string, len(a.confirmItems))
	for i, e := range a.confirmItems {
		paths[i] = e.Path
	}
	a.logger.Info("deleting", "count", len(paths), "root", report.Root)

	return func() tea.Msg {
		res, err := ops.DeleteSelection(report, paths)
		return DeleteDoneMsg{Result: res, Err: err}
	}
}

// FatalError returns a fatal scan/import error, if any.
func (a *App) FatalError() error { return a.fatalErr }

func (a *App) exportCmd() tea.Cmd {
	if a.report == nil {
		return nil
	}

	// Stdout belongs to the terminal UI.
	exportPath := a.opts.ExportPath
	if exportPath == "" || exportPath == "-" {
		exportPath = DefaultExportPath
	}

	a.state = StateExporting
	report := a.report
	version := a.opts.Version
	return func() tea.Msg {
		err := ops.ExportReport(report, exportPath, version)
		return ExportDoneMsg{Path: exportPath, Err: err}
	}
}
