package idhash

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"playbook-lab/internal/domain"
)

const dateLayout = "2006-01-02"

// ComputeConfigID computes a deterministic fingerprint of a backtest config.
// Formula: base58(SHA256(start|end|cutoff|weekdays|targets|stop|trailing))
// Configs that simulate identically hash identically: the target list is
// taken after defaulting and the weekday set is sorted and deduplicated.
func ComputeConfigID(cfg domain.BacktestConfig) string {
	data := fmt.Sprintf("%s|%s|%d|%s|%s|%g|%s",
		formatDate(cfg.StartDate),
		formatDate(cfg.EndDate),
		cfg.Cutoff/time.Minute,
		weekdayKey(cfg.Weekdays),
		targetKey(cfg.EffectiveTargets()),
		cfg.StopPoints,
		trailingKey(cfg.Trailing),
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func weekdayKey(days []time.Weekday) string {
	if len(days) == 0 {
		return "*"
	}
	seen := make(map[time.Weekday]bool, len(days))
	ints := make([]int, 0, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		ints = append(ints, int(d))
	}
	sort.Ints(ints)

	parts := make([]string, len(ints))
	for i, d := range ints {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return strings.Join(parts, ",")
}

func targetKey(targets []domain.TargetSpec) string {
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = fmt.Sprintf("%g:%d", t.Points, t.Quantity)
	}
	return strings.Join(parts, ",")
}

// trailingKey ignores trigger and distance while trailing is off.
func trailingKey(t domain.TrailingConfig) string {
	if !t.Enabled {
		return "off"
	}
	return fmt.Sprintf("on:%g:%g", t.Trigger, t.Distance)
}
