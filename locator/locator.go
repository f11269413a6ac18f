// Package locator finds the game process, fingerprints its build and binds a
// snapshot to it. Processes running an unknown build are ignored for the
// lifetime of the Locator.
package locator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"github.com/rythin-sr/LiveSplit.Dishonored/layout"
	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/watcher"
)

var (
	// ErrProcessNotFound means no usable game process is running yet, it is not a failure.
	ErrProcessNotFound = errors.New("game process not found")

	// ErrUnsupportedMovieLibrary is reported when the movie library has an unknown size.
	ErrUnsupportedMovieLibrary = errors.New("unexpected movie-library version")

	// ErrUnsupportedGameVersion is reported when the executable has an unknown size.
	ErrUnsupportedGameVersion = errors.New("unsupported game version. Dishonored 1.2, 1.4 or EGS is required")
)

// UnsupportedModuleError names the module whose size did not match any known build.
type UnsupportedModuleError struct {
	PID    process.ProcessID
	Module string
	Size   process.ProcessMemorySize
	Err    error
}

func (e *UnsupportedModuleError) Error() string {
	return fmt.Sprintf("pid %d: %s is %d bytes: %v", e.PID, e.Module, e.Size, e.Err)
}

func (e *UnsupportedModuleError) Unwrap() error {
	return e.Err
}

// Advisor receives the one time report about a process that will be ignored.
type Advisor interface {
	Advise(err error)
}

// AdvisorFunc adapts a function to Advisor.
type AdvisorFunc func(err error)

func (f AdvisorFunc) Advise(err error) { f(err) }

// Binding is an attached game process and the snapshot bound to its layout.
type Binding struct {
	Process process.Process
	Layout  layout.Layout
	Data    *watcher.GameData
}

// Exited reports whether the bound process is gone.
func (b *Binding) Exited() bool {
	return b == nil || process.HasExited(b.Process)
}

// Close releases the process handle.
func (b *Binding) Close() error {
	if b == nil || b.Process == nil {
		return nil
	}
	return b.Process.Close()
}

// Locator scans for the game process. It owns the set of ignored process ids,
// one Locator is used per running autosplitter.
type Locator struct {
	helper  process.ProcessHelper
	name    string
	advisor Advisor
	ignored map[process.ProcessID]struct{}
	log     *logger.Logger
}

// New returns a Locator matching processes called name, see process.NormalizeName.
// advisor may be nil.
func New(helper process.ProcessHelper, name string, advisor Advisor) *Locator {
	return &Locator{
		helper:  helper,
		name:    name,
		advisor: advisor,
		ignored: make(map[process.ProcessID]struct{}),
		log:     logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "locator")),
	}
}

// Ignored reports whether pid was rejected earlier.
func (l *Locator) Ignored(pid process.ProcessID) bool {
	_, ok := l.ignored[pid]
	return ok
}

// IgnoredPIDs lists the rejected process ids in ascending order.
func (l *Locator) IgnoredPIDs() []process.ProcessID {
	pids := make([]process.ProcessID, 0, len(l.ignored))
	for pid := range l.ignored {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

// Locate looks for a running, supported game process and binds to it.
// It returns ErrProcessNotFound when there is nothing to bind to this time,
// an *UnsupportedModuleError when a candidate was rejected and ignored.
func (l *Locator) Locate() (*Binding, error) {
	candidates, err := l.helper.FindProcessByName(l.name)
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", l.name, err)
	}

	for _, info := range candidates {
		if l.Ignored(info.PID) {
			continue
		}

		binding, err := l.bind(info)
		if err == nil {
			return binding, nil
		}

		var unsupported *UnsupportedModuleError
		if errors.As(err, &unsupported) {
			l.ignore(unsupported)
			return nil, err
		}
		l.log.Debugln("skipping pid", info.PID, err)
	}
	return nil, ErrProcessNotFound
}

// LocatePID binds to a specific process. The pid must exist and carry the
// configured process name, ignored pids stay ignored.
func (l *Locator) LocatePID(pid process.ProcessID) (*Binding, error) {
	info, err := l.helper.FindProcessByPID(pid)
	if err != nil {
		return nil, fmt.Errorf("pid %d: %w", pid, ErrProcessNotFound)
	}
	if process.NormalizeName(info.Name) != process.NormalizeName(l.name) {
		return nil, fmt.Errorf("pid %d is %q, not %q: %w", pid, info.Name, l.name, ErrProcessNotFound)
	}
	if l.Ignored(pid) {
		return nil, fmt.Errorf("pid %d is ignored: %w", pid, ErrProcessNotFound)
	}

	binding, err := l.bind(*info)
	if err != nil {
		var unsupported *UnsupportedModuleError
		if errors.As(err, &unsupported) {
			l.ignore(unsupported)
		}
		return nil, err
	}
	return binding, nil
}

func (l *Locator) ignore(err *UnsupportedModuleError) {
	l.ignored[err.PID] = struct{}{}
	l.log.Warn("ignoring process from now on: ", err)
	if l.advisor != nil {
		l.advisor.Advise(err)
	}
}

func (l *Locator) bind(info process.ProcessInfo) (*Binding, error) {
	proc, err := l.helper.NewWithPID(info.PID)
	if err != nil {
		return nil, err
	}

	selected, err := Fingerprint(proc)
	if err != nil {
		proc.Close()
		return nil, err
	}

	l.log.Infoln("attached to pid", info.PID, info.Name, "version", selected.Version)
	return &Binding{
		Process: proc,
		Layout:  selected,
		Data:    watcher.NewGameData(selected),
	}, nil
}

// Fingerprint selects the layout row from the module sizes of proc.
// A process whose movie library is not loaded yet is not rejected.
func Fingerprint(proc process.Process) (layout.Layout, error) {
	pid := proc.GetPID()
	if process.HasExited(proc) {
		return layout.Layout{}, process.ErrProcessExited
	}

	modules, err := proc.Modules()
	if err != nil {
		return layout.Layout{}, err
	}

	var movie process.ModuleInfo
	found := false
	for _, name := range layout.MovieLibraries {
		if movie, found = process.FindModule(modules, name); found {
			break
		}
	}
	if !found {
		return layout.Layout{}, fmt.Errorf("movie library not loaded: %w", process.ErrModuleNotFound)
	}

	if !layout.IsKnownMovieLibrarySize(movie.Size) {
		return layout.Layout{}, &UnsupportedModuleError{PID: pid, Module: movie.Name, Size: movie.Size, Err: ErrUnsupportedMovieLibrary}
	}

	exe, err := process.MainModule(proc)
	if err != nil {
		return layout.Layout{}, err
	}

	selected, ok := layout.ForExeSize(exe.Size)
	if !ok {
		return layout.Layout{}, &UnsupportedModuleError{PID: pid, Module: exe.Name, Size: exe.Size, Err: ErrUnsupportedGameVersion}
	}
	return selected, nil
}
