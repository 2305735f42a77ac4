// Package config loads experiment configuration for the overcode CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-overcode/pkg/output"
	"github.com/dd0wney/cluso-overcode/pkg/overcode"
	"github.com/dd0wney/cluso-overcode/pkg/validation"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid experiment configuration")

// Mode selects where graphs come from.
type Mode string

const (
	ModeClustered Mode = "clustered"
	ModeEgo       Mode = "ego"
	ModeFile      Mode = "file"
)

// Default values used when the file and environment leave a field unset.
const (
	DefaultNodesPerCluster = 5000
	DefaultEgoNodes        = 125
	DefaultAlpha           = 0.92
	DefaultBeta            = 0.95
	DefaultEgoBeta         = 0.85
	DefaultMajoritySamples = 3
)

// DefaultOverlaps gives three communities: 10 nodes shared by each pair
// and 5 by all three.
func DefaultOverlaps() []int {
	return []int{10, 5}
}

// ReportConfig controls structured report output.
type ReportConfig struct {
	// Dir receives one report file per ensemble. Empty disables the file sink.
	Dir    string        `yaml:"dir"`
	Format output.Format `yaml:"format" validate:"omitempty,oneof=json yaml"`
}

// PostgresConfig configures the Postgres report sink.
type PostgresConfig struct {
	URL string `yaml:"url"`
}

// Experiment is one invocation of the CLI: which graphs to build, how
// often to run the ensemble on each, and where results go.
type Experiment struct {
	ID     string `yaml:"id"`
	Mode   Mode   `yaml:"mode" validate:"required,oneof=clustered ego file"`
	Graph  string `yaml:"graph"`
	Output string `yaml:"output" validate:"required"`
	Graphs int    `yaml:"graphs" validate:"gte=1"`
	Runs   int    `yaml:"runs" validate:"gte=1"`

	// Clustered mode.
	NodesPerCluster int   `yaml:"nodes_per_cluster" validate:"gte=0"`
	Overlaps        []int `yaml:"overlaps,flow"`

	// Protocol parameters. Zero values are derived from the node count.
	Params overcode.Params `yaml:"params" validate:"-"`

	// History writes <output>_history/<graph>_<run>.txt[.sz] per ensemble.
	History     bool   `yaml:"history"`
	Compress    bool   `yaml:"compress"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	Reports  ReportConfig    `yaml:"reports"`
	S3       output.S3Config `yaml:"s3"`
	Postgres PostgresConfig  `yaml:"postgres"`
}

// Default returns a clustered experiment with one graph and one run.
func Default() *Experiment {
	return &Experiment{
		Mode:            ModeClustered,
		Output:          "clusters.txt",
		Graphs:          1,
		Runs:            1,
		NodesPerCluster: DefaultNodesPerCluster,
		Overlaps:        DefaultOverlaps(),
		Reports:         ReportConfig{Format: output.FormatJSON},
	}
}

// Load reads a YAML experiment file over the defaults and then applies
// OVERCODE_* environment overrides. An empty path skips the file.
func Load(path string) (*Experiment, error) {
	e := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := e.decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if err := e.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(e); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Nodes returns the node count protocol parameters are derived from:
// the community size in clustered mode, the nominal ego size in ego mode,
// and zero in file mode, where it is only known once the graph is read.
func (e *Experiment) Nodes() int {
	switch e.Mode {
	case ModeClustered:
		return e.NodesPerCluster
	case ModeEgo:
		return DefaultEgoNodes
	default:
		return 0
	}
}

// Derive fills the zero fields of the protocol parameters for a graph of
// n nodes. Ego experiments run more rounds and many more ensemble runs.
func (e *Experiment) Derive(n int) overcode.Params {
	p := e.Params
	logn := math.Log2(float64(n))
	sqrtn := math.Sqrt(float64(n))

	rounds, runs := int(10*logn), 0
	if e.Mode == ModeEgo {
		rounds = int(50 * logn)
		runs = int(250 * logn)
	}
	p.Rounds = validation.DefaultOrInt(p.Rounds, max(rounds, 1))
	if runs == 0 {
		runs = p.Rounds
	}
	p.Runs = validation.DefaultOrInt(p.Runs, max(runs, 1))
	p.Pushes = validation.DefaultOrInt(p.Pushes, max(int(2*sqrtn*logn), 1))
	p.PullSamples = validation.DefaultOrInt(p.PullSamples, max(int(2*sqrtn), 1))
	p.MajoritySamples = validation.DefaultOrInt(p.MajoritySamples, DefaultMajoritySamples)

	if p.Alpha == 0 {
		p.Alpha = DefaultAlpha
	}
	if p.Beta == 0 {
		p.Beta = DefaultBeta
		if e.Mode == ModeEgo {
			p.Beta = DefaultEgoBeta
		}
	}
	if p.Window == "" {
		p.Window = overcode.WindowMajority
	}
	return p
}

// Validate checks the experiment before any graph is built. Protocol
// parameters left at zero are checked after derivation by the engine.
func (e *Experiment) Validate() error {
	if err := validation.Struct(e); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cv := validation.NewConfigValidator("Experiment")
	cv.When(e.Mode == ModeFile, func(v *validation.ConfigValidator) {
		v.Required("graph", e.Graph)
	})
	cv.When(e.Mode == ModeClustered, func(v *validation.ConfigValidator) {
		v.Positive("nodes_per_cluster", e.NodesPerCluster)
		v.Custom("overlaps", func() error {
			if len(e.Overlaps) == 0 {
				return errors.New("at least one overlap size is required")
			}
			return nil
		})
	})
	cv.When(e.Params.Alpha != 0, func(v *validation.ConfigValidator) {
		v.UnitInterval("params.alpha", e.Params.Alpha)
	})
	cv.When(e.Params.Beta != 0, func(v *validation.ConfigValidator) {
		v.UnitInterval("params.beta", e.Params.Beta)
	})
	cv.NonNegative("params.max_workers", e.Params.MaxWorkers)
	cv.When(e.Params.Window != "", func(v *validation.ConfigValidator) {
		v.OneOf("params.window", string(e.Params.Window),
			[]string{string(overcode.WindowMajority), string(overcode.WindowFull)})
	})
	for _, f := range []struct {
		name string
		v    int
	}{
		{"params.rounds", e.Params.Rounds},
		{"params.pushes", e.Params.Pushes},
		{"params.pull_samples", e.Params.PullSamples},
		{"params.majority_samples", e.Params.MajoritySamples},
		{"params.runs", e.Params.Runs},
	} {
		cv.NonNegative(f.name, f.v)
	}
	cv.When(e.S3.SecretKey != "", func(v *validation.ConfigValidator) {
		v.Required("s3.access_key", e.S3.AccessKey)
	})

	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
