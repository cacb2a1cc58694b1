package config

import (
	"flag"

	"playbook-lab/internal/domain"
)

var overrideUsage = []struct{ name, usage string }{
	{"start", "First day to simulate (YYYY-MM-DD)"},
	{"end", "Last day to simulate (YYYY-MM-DD)"},
	{"cutoff", "Ignore boxes after HH:MM, \"off\" to keep all"},
	{"weekdays", "Comma-separated weekdays, e.g. seg,ter,qua"},
	{"targets", "Comma-separated POINTSxQTY targets, e.g. 700x1,900x2"},
	{"stop", "Stop distance in points"},
	{"trailing", "Enable the trailing stop (true/false)"},
	{"trigger", "Trailing trigger in points"},
	{"distance", "Trailing distance in points"},
}

// Overrides binds the run parameters to command-line flags.
type Overrides struct {
	fs *flag.FlagSet
}

// BindFlags registers the override flags on fs.
func BindFlags(fs *flag.FlagSet) *Overrides {
	for _, o := range overrideUsage {
		fs.String(o.name, "", o.usage)
	}
	return &Overrides{fs: fs}
}

// Apply copies the flags set on the command line onto f.
// Call it after fs.Parse.
func (o *Overrides) Apply(f *File) error {
	var err error
	o.fs.Visit(func(fl *flag.Flag) {
		if err != nil || !isOverride(fl.Name) {
			return
		}
		err = f.Set(fl.Name, fl.Value.String())
	})
	return err
}

// Resolve loads path, then environment, then command-line overrides,
// and returns the validated config.
func (o *Overrides) Resolve(path string) (domain.BacktestConfig, error) {
	f, err := LoadUnchecked(path)
	if err != nil {
		return domain.BacktestConfig{}, err
	}
	f.ApplyEnv()
	if err := o.Apply(f); err != nil {
		return domain.BacktestConfig{}, err
	}
	return f.Build()
}

func isOverride(name string) bool {
	for _, o := range overrideUsage {
		if o.name == name {
			return true
		}
	}
	return false
}
