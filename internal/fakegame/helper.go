package fakegame

import (
	"fmt"
	"sort"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process_blob"
)

// Handle is one opened view of a game, closing it leaves the game running.
type Handle struct {
	*process_blob.ProcessDump
	Closed bool
}

func (h *Handle) Close() error {
	h.Closed = true
	return nil
}

// Helper is a process.ProcessHelper serving games by pid.
type Helper struct {
	games  map[process.ProcessID]*Game
	names  map[process.ProcessID]string
	opened map[process.ProcessID]int
}

var _ process.ProcessHelper = (*Helper)(nil)

func NewHelper() *Helper {
	return &Helper{
		games:  map[process.ProcessID]*Game{},
		names:  map[process.ProcessID]string{},
		opened: map[process.ProcessID]int{},
	}
}

// Add runs g under pid with the given process name.
func (h *Helper) Add(pid process.ProcessID, name string, g *Game) {
	g.Dump.PID = pid
	h.games[pid] = g
	h.names[pid] = name
}

// Remove makes pid disappear from the process list.
func (h *Helper) Remove(pid process.ProcessID) {
	delete(h.games, pid)
	delete(h.names, pid)
}

// Opened counts the NewWithPID calls for pid.
func (h *Helper) Opened(pid process.ProcessID) int {
	return h.opened[pid]
}

func (h *Helper) NewWithPID(pid process.ProcessID) (process.Process, error) {
	g, ok := h.games[pid]
	if !ok {
		return nil, fmt.Errorf("process with PID %d does not exist", pid)
	}
	h.opened[pid]++
	return &Handle{ProcessDump: g.Dump}, nil
}

func (h *Helper) FindProcessByPID(pid process.ProcessID) (*process.ProcessInfo, error) {
	if _, ok := h.games[pid]; !ok {
		return nil, fmt.Errorf("process with PID %d does not exist", pid)
	}
	return &process.ProcessInfo{PID: pid, Name: h.names[pid]}, nil
}

func (h *Helper) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	want := process.NormalizeName(name)
	var result []process.ProcessInfo
	for pid, n := range h.names {
		if process.NormalizeName(n) == want {
			result = append(result, process.ProcessInfo{PID: pid, Name: n})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PID < result[j].PID })
	return result, nil
}
