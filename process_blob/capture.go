package process_blob

import (
	"sort"
	"sync"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
	"github.com/rythin-sr/LiveSplit.Dishonored/process/memory_map"
)

const capturePage = 0x1000

// Recorder wraps a live process and remembers every range read through it,
// so the memory behind a set of pointer chains can be captured into a dump.
type Recorder struct {
	process.Process

	mu     sync.Mutex
	ranges []span
}

type span struct {
	start, end uint64
}

var _ process.Process = (*Recorder)(nil)

func NewRecorder(proc process.Process) *Recorder {
	return &Recorder{Process: proc}
}

func (r *Recorder) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	data, err := r.Process.ReadMemory(addr, size)
	if err == nil && size > 0 {
		r.mu.Lock()
		r.ranges = append(r.ranges, span{uint64(addr), uint64(addr) + uint64(size)})
		r.mu.Unlock()
	}
	return data, err
}

// Capture copies the recorded ranges, widened to whole pages, into a new dump.
func (r *Recorder) Capture() *ProcessDump {
	r.mu.Lock()
	ranges := make([]span, len(r.ranges))
	copy(ranges, r.ranges)
	r.mu.Unlock()

	dump := NewProcessDump()
	dump.PID = r.GetPID()
	dump.PtrSize = r.PointerSize()
	if modules, err := r.Modules(); err == nil {
		dump.Images = modules
	}

	for _, s := range mergeSpans(ranges) {
		data, err := r.Process.ReadMemory(process.ProcessMemoryAddress(s.start), process.ProcessMemorySize(s.end-s.start))
		if err != nil {
			// Page widening crossed into unmapped memory, fall back to the exact reads
			for _, exact := range ranges {
				if exact.start >= s.start && exact.end <= s.end {
					r.captureExact(dump, exact)
				}
			}
			continue
		}
		dump.addBlob(NewProcessBlob(process.ProcessMemoryAddress(s.start), data), "r--p", "")
	}
	return dump
}

func (r *Recorder) captureExact(dump *ProcessDump, s span) {
	if memory_map.IsValidAddress(s.start, dump.MemoryMap) {
		return
	}
	data, err := r.Process.ReadMemory(process.ProcessMemoryAddress(s.start), process.ProcessMemorySize(s.end-s.start))
	if err != nil {
		return
	}
	dump.addBlob(NewProcessBlob(process.ProcessMemoryAddress(s.start), data), "r--p", "")
}

// mergeSpans widens spans to page boundaries and merges overlapping ones.
func mergeSpans(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}

	widened := make([]span, len(spans))
	for i, s := range spans {
		widened[i] = span{
			start: s.start &^ (capturePage - 1),
			end:   (s.end + capturePage - 1) &^ (capturePage - 1),
		}
	}
	sort.Slice(widened, func(i, j int) bool { return widened[i].start < widened[j].start })

	merged := []span{widened[0]}
	for _, s := range widened[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
