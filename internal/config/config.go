// Package config loads playbook run parameters from YAML files, .env files
// and PLAYBOOK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"playbook-lab/internal/domain"
)

// ErrInvalidConfig is returned for parameters that cannot describe a run.
var ErrInvalidConfig = errors.New("invalid config")

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	cutoffOff   = "off"
)

// File is the on-disk configuration shape (YAML). The HTTP API accepts the same
// shape as JSON. Unset fields keep the playbook defaults.
type File struct {
	StartDate  string    `yaml:"start_date" json:"start_date,omitempty"`
	EndDate    string    `yaml:"end_date" json:"end_date,omitempty"`
	Cutoff     string    `yaml:"cutoff" json:"cutoff,omitempty"` // HH:MM, "off" disables
	Weekdays   []string  `yaml:"weekdays" json:"weekdays,omitempty"`
	Targets    []Target  `yaml:"targets" json:"targets,omitempty"`
	StopPoints *float64  `yaml:"stop_points" json:"stop_points,omitempty"`
	Trailing   *Trailing `yaml:"trailing" json:"trailing,omitempty"`
}

// Target is one profit target.
type Target struct {
	Points   float64 `yaml:"points" json:"points"`
	Quantity int     `yaml:"quantity" json:"quantity"`
}

// Trailing configures the dynamic stop.
type Trailing struct {
	Enabled  bool     `yaml:"enabled" json:"enabled"`
	Trigger  *float64 `yaml:"trigger" json:"trigger,omitempty"`
	Distance *float64 `yaml:"distance" json:"distance,omitempty"`
}

// Load reads path, applies environment overrides and returns a validated config.
// An empty path yields the defaults plus environment overrides.
func Load(path string) (domain.BacktestConfig, error) {
	f, err := LoadUnchecked(path)
	if err != nil {
		return domain.BacktestConfig{}, err
	}
	f.ApplyEnv()
	return f.Build()
}

// LoadUnchecked reads and parses path without validating it.
func LoadUnchecked(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML document.
func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &f, nil
}

// LoadDotEnv loads .env style files into the process environment.
// Variables already set win. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, name := range files {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// ApplyEnv overlays PLAYBOOK_* environment variables onto f.
func (f *File) ApplyEnv() {
	if v := os.Getenv("PLAYBOOK_START_DATE"); v != "" {
		f.StartDate = v
	}
	if v := os.Getenv("PLAYBOOK_END_DATE"); v != "" {
		f.EndDate = v
	}
	if v := os.Getenv("PLAYBOOK_CUTOFF"); v != "" {
		f.Cutoff = v
	}
	if v := os.Getenv("PLAYBOOK_WEEKDAYS"); v != "" {
		f.Weekdays = splitList(v)
	}
	if v := os.Getenv("PLAYBOOK_TARGETS"); v != "" {
		if targets, err := ParseTargets(v); err == nil {
			f.Targets = targets
		}
	}
	if v, ok := parseFloatEnv("PLAYBOOK_STOP_POINTS"); ok {
		f.StopPoints = &v
	}

	if v := os.Getenv("PLAYBOOK_TRAILING"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			f.trailing().Enabled = enabled
		}
	}
	if v, ok := parseFloatEnv("PLAYBOOK_TRAILING_TRIGGER"); ok {
		f.trailing().Trigger = &v
	}
	if v, ok := parseFloatEnv("PLAYBOOK_TRAILING_DISTANCE"); ok {
		f.trailing().Distance = &v
	}
}

func (f *File) trailing() *Trailing {
	if f.Trailing == nil {
		f.Trailing = &Trailing{}
	}
	return f.Trailing
}

// Build converts f into a validated run config, starting from the defaults.
func (f *File) Build() (domain.BacktestConfig, error) {
	cfg := domain.DefaultBacktestConfig()
	var err error

	if f.StartDate != "" {
		if cfg.StartDate, err = ParseDate(f.StartDate); err != nil {
			return cfg, err
		}
	}
	if f.EndDate != "" {
		if cfg.EndDate, err = ParseDate(f.EndDate); err != nil {
			return cfg, err
		}
	}
	if f.Cutoff != "" {
		if cfg.Cutoff, err = ParseCutoff(f.Cutoff); err != nil {
			return cfg, err
		}
	}
	if f.Weekdays != nil {
		cfg.Weekdays = make([]time.Weekday, 0, len(f.Weekdays))
		for _, name := range f.Weekdays {
			wd, err := ParseWeekday(name)
			if err != nil {
				return cfg, err
			}
			cfg.Weekdays = append(cfg.Weekdays, wd)
		}
	}
	if f.Targets != nil {
		cfg.Targets = make([]domain.TargetSpec, len(f.Targets))
		for i, t := range f.Targets {
			cfg.Targets[i] = domain.TargetSpec{Index: i + 1, Points: t.Points, Quantity: t.Quantity}
		}
	}
	if f.StopPoints != nil {
		cfg.StopPoints = *f.StopPoints
	}
	if f.Trailing != nil {
		cfg.Trailing.Enabled = f.Trailing.Enabled
		if f.Trailing.Trigger != nil {
			cfg.Trailing.Trigger = *f.Trailing.Trigger
		}
		if f.Trailing.Distance != nil {
			cfg.Trailing.Distance = *f.Trailing.Distance
		}
	}

	return cfg, Validate(cfg)
}

// Validate checks cfg for values no run can use.
func Validate(cfg domain.BacktestConfig) error {
	if cfg.StopPoints < 0 {
		return fmt.Errorf("%w: stop_points must be >= 0, got %v", ErrInvalidConfig, cfg.StopPoints)
	}
	if cfg.Trailing.Trigger < 0 || cfg.Trailing.Distance < 0 {
		return fmt.Errorf("%w: trailing trigger and distance must be >= 0", ErrInvalidConfig)
	}
	if len(cfg.Targets) > domain.MaxTargets {
		return fmt.Errorf("%w: at most %d targets, got %d", ErrInvalidConfig, domain.MaxTargets, len(cfg.Targets))
	}
	for i, t := range cfg.Targets {
		if t.Quantity < 0 {
			return fmt.Errorf("%w: target %d quantity must be >= 0", ErrInvalidConfig, i+1)
		}
	}
	if cfg.Cutoff < 0 || cfg.Cutoff >= 24*time.Hour {
		return fmt.Errorf("%w: cutoff must be within the day, got %v", ErrInvalidConfig, cfg.Cutoff)
	}
	if !cfg.StartDate.IsZero() && !cfg.EndDate.IsZero() && cfg.EndDate.Before(cfg.StartDate) {
		return fmt.Errorf("%w: end_date %s is before start_date %s", ErrInvalidConfig,
			cfg.EndDate.Format(dateLayout), cfg.StartDate.Format(dateLayout))
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: want YYYY-MM-DD", ErrInvalidConfig, s)
	}
	return t, nil
}

// ParseCutoff parses an HH:MM wall-clock limit. "off" disables the cutoff.
func ParseCutoff(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, cutoffOff) {
		return 0, nil
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: cutoff %q: want HH:MM", ErrInvalidConfig, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "dom": time.Sunday,
	"mon": time.Monday, "seg": time.Monday,
	"tue": time.Tuesday, "ter": time.Tuesday,
	"wed": time.Wednesday, "qua": time.Wednesday,
	"thu": time.Thursday, "qui": time.Thursday,
	"fri": time.Friday, "sex": time.Friday,
	"sat": time.Saturday, "sab": time.Saturday, "sáb": time.Saturday,
}

// ParseWeekday accepts English (mon..sun) or Portuguese (seg..dom) short names,
// or a full English name.
func ParseWeekday(s string) (time.Weekday, error) {
	key := []rune(strings.ToLower(strings.TrimSpace(s)))
	if len(key) > 3 {
		key = key[:3]
	}
	if wd, ok := weekdayNames[string(key)]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidConfig, s)
}

// ParseTargets parses a comma separated list of POINTSxQTY pairs, e.g. "700x1,900x2".
// A bare number means one contract.
func ParseTargets(s string) ([]Target, error) {
	var out []Target
	for _, item := range splitList(s) {
		pts, qty, found := strings.Cut(strings.ToLower(item), "x")
		t := Target{Quantity: 1}
		var err error
		if t.Points, err = strconv.ParseFloat(pts, 64); err != nil {
			return nil, fmt.Errorf("%w: target %q", ErrInvalidConfig, item)
		}
		if found {
			if t.Quantity, err = strconv.Atoi(qty); err != nil {
				return nil, fmt.Errorf("%w: target %q", ErrInvalidConfig, item)
			}
		}
		out = append(out, t)
	}
	return out, nil
}

// EnvOr returns the value of key or def when unset.
func EnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseFloatEnv(key string) (float64, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Set overrides one field by its command-line name:
// start, end, cutoff, weekdays, targets, stop, trailing, trigger, distance.
func (f *File) Set(name, value string) error {
	switch name {
	case "start":
		f.StartDate = value
	case "end":
		f.EndDate = value
	case "cutoff":
		f.Cutoff = value
	case "weekdays":
		f.Weekdays = splitList(value)
	case "targets":
		targets, err := ParseTargets(value)
		if err != nil {
			return err
		}
		f.Targets = targets
	case "stop", "trigger", "distance":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidConfig, name, value)
		}
		switch name {
		case "stop":
			f.StopPoints = &v
		case "trigger":
			f.trailing().Trigger = &v
		default:
			f.trailing().Distance = &v
		}
	case "trailing":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: trailing %q", ErrInvalidConfig, value)
		}
		f.trailing().Enabled = enabled
	default:
		return fmt.Errorf("%w: unknown option %q", ErrInvalidConfig, name)
	}
	return nil
}
