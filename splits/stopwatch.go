package splits

import (
	"fmt"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Phase of a run.
type Phase int

const (
	NotRunning Phase = iota
	Running
	Ended
)

func (p Phase) String() string {
	switch p {
	case NotRunning:
		return "not running"
	case Running:
		return "running"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Split is one finished segment.
type Split struct {
	Index    int
	RealTime time.Duration
	GameTime time.Duration
}

// Stopwatch is a Controller keeping real time and game time, where game time
// stands still while paused. It is safe for concurrent use.
type Stopwatch struct {
	mu sync.Mutex

	segments int
	now      func() time.Time
	log      *logger.Logger

	phase       Phase
	started     time.Time
	paused      bool
	pausedAt    time.Time
	pausedTotal time.Duration
	splits      []Split
}

var _ Controller = (*Stopwatch)(nil)

// NewStopwatch ends the run on the split that completes segments, 0 never ends it.
func NewStopwatch(segments int) *Stopwatch {
	return &Stopwatch{
		segments: segments,
		now:      time.Now,
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "stopwatch")),
	}
}

// WithClock replaces the time source.
func (s *Stopwatch) WithClock(now func() time.Time) *Stopwatch {
	s.now = now
	return s
}

func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != NotRunning {
		s.log.Infoln("run reset after", len(s.splits), "splits")
	}
	s.phase = NotRunning
	s.splits = nil
	s.pausedTotal = 0
}

func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != NotRunning {
		return
	}
	s.phase = Running
	s.started = s.now()
	s.pausedTotal = 0
	if s.paused {
		s.pausedAt = s.started
	}
	s.log.Infoln("run started")
}

func (s *Stopwatch) Split() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Running {
		return
	}
	now := s.now()
	split := Split{
		Index:    len(s.splits) + 1,
		RealTime: now.Sub(s.started),
		GameTime: s.gameTime(now),
	}
	s.splits = append(s.splits, split)
	s.log.Infoln("split", split.Index, "real", split.RealTime, "game", split.GameTime)

	if s.segments > 0 && len(s.splits) >= s.segments {
		s.phase = Ended
		s.log.Infoln("run ended")
	}
}

func (s *Stopwatch) SetGameTimePaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused == paused {
		return
	}
	now := s.now()
	if paused {
		s.pausedAt = now
	} else if s.phase == Running {
		from := s.pausedAt
		if from.Before(s.started) {
			from = s.started
		}
		s.pausedTotal += now.Sub(from)
	}
	s.paused = paused
}

func (s *Stopwatch) gameTime(now time.Time) time.Duration {
	total := s.pausedTotal
	if s.paused {
		from := s.pausedAt
		if from.Before(s.started) {
			from = s.started
		}
		total += now.Sub(from)
	}
	return now.Sub(s.started) - total
}

// Phase returns the current phase.
func (s *Stopwatch) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Paused reports whether game time is paused.
func (s *Stopwatch) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Splits returns the finished segments.
func (s *Stopwatch) Splits() []Split {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Split(nil), s.splits...)
}

// Times returns real and game time of the current run. An ended run reports
// its final split, a run that is not running reports zero.
func (s *Stopwatch) Times() (realTime, gameTime time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case Running:
		now := s.now()
		return now.Sub(s.started), s.gameTime(now)
	case Ended:
		last := s.splits[len(s.splits)-1]
		return last.RealTime, last.GameTime
	default:
		return 0, 0
	}
}
