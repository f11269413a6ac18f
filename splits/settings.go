// Package splits decides what the timer does with each autosplit event and
// provides a small stopwatch to drive from the command line.
package splits

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rythin-sr/LiveSplit.Dishonored/autosplit"
)

// MaxSettingsFileSize bounds the settings file, it holds a handful of toggles.
const MaxSettingsFileSize = 64 * 1024

// Settings are the user toggles for automatic timer control.
type Settings struct {
	// AutoStartEnd resets, starts and ends the run on its own.
	AutoStartEnd bool `yaml:"auto_start_end"`

	AutoSplitIntroEnd       bool `yaml:"auto_split_intro_end"`
	AutoSplitMissionEnd     bool `yaml:"auto_split_mission_end"`
	AutoSplitPrisonEscape   bool `yaml:"auto_split_prison_escape"`
	AutoSplitOutsidersDream bool `yaml:"auto_split_outsiders_dream"`
	AutoSplitWeepers        bool `yaml:"auto_split_weepers"`

	// AutoSplitDLC06IntroEnd is stored for compatibility, no event is gated on it.
	AutoSplitDLC06IntroEnd bool `yaml:"auto_split_dlc06_intro_end"`
}

// DefaultSettings has automatic start and end on and every split off.
func DefaultSettings() Settings {
	return Settings{AutoStartEnd: true}
}

// SplitsOn reports whether completing area should split.
func (s Settings) SplitsOn(area autosplit.AreaCompletionType) bool {
	switch area {
	case autosplit.IntroEnd:
		return s.AutoSplitIntroEnd
	case autosplit.MissionEnd:
		return s.AutoSplitMissionEnd
	case autosplit.PrisonEscape:
		return s.AutoSplitPrisonEscape
	case autosplit.OutsidersDream:
		return s.AutoSplitOutsidersDream
	case autosplit.Weepers:
		return s.AutoSplitWeepers
	default:
		return false
	}
}

// SetSplit turns the split on completing area on or off.
func (s *Settings) SetSplit(area autosplit.AreaCompletionType, on bool) error {
	switch area {
	case autosplit.IntroEnd:
		s.AutoSplitIntroEnd = on
	case autosplit.MissionEnd:
		s.AutoSplitMissionEnd = on
	case autosplit.PrisonEscape:
		s.AutoSplitPrisonEscape = on
	case autosplit.OutsidersDream:
		s.AutoSplitOutsidersDream = on
	case autosplit.Weepers:
		s.AutoSplitWeepers = on
	default:
		return fmt.Errorf("no split setting for %s", area)
	}
	return nil
}

// ParseSettings decodes YAML settings. Keys that are missing keep their default.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return DefaultSettings(), fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}

// LoadSettings reads a settings file. Special files and files larger than
// MaxSettingsFileSize are rejected.
func LoadSettings(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to open settings file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to stat settings file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return DefaultSettings(), errors.New("settings file must be a regular file")
	}
	if info.Size() > MaxSettingsFileSize {
		return DefaultSettings(), fmt.Errorf("settings file too large: %d bytes (max %d)", info.Size(), MaxSettingsFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxSettingsFileSize+1))
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to read settings file: %w", err)
	}
	return ParseSettings(data)
}

// Save writes the settings next to path and renames them into place.
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
