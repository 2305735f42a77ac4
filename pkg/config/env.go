package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "OVERCODE_"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from OVERCODE_* variables. Unset variables
// leave the field alone; malformed numbers are errors.
func (e *Experiment) ApplyEnv(lookup LookupFunc) error {
	p := envParser{lookup: lookup}

	p.str("MODE", (*string)(&e.Mode))
	p.str("GRAPH", &e.Graph)
	p.str("OUTPUT", &e.Output)
	p.str("EXPERIMENT_ID", &e.ID)
	p.integer("GRAPHS", &e.Graphs)
	p.integer("RUNS", &e.Runs)
	p.integer("NODES_PER_CLUSTER", &e.NodesPerCluster)
	if v, ok := p.get("OVERLAPS"); ok {
		overlaps, err := ParseOverlaps(v)
		if err != nil {
			p.fail("OVERLAPS", err)
		} else {
			e.Overlaps = overlaps
		}
	}
	p.boolean("HISTORY", &e.History)
	p.boolean("COMPRESS", &e.Compress)
	p.str("METRICS_ADDR", &e.MetricsAddr)
	p.str("LOG_LEVEL", &e.LogLevel)

	p.integer("ROUNDS", &e.Params.Rounds)
	p.integer("PUSHES", &e.Params.Pushes)
	p.integer("PULL_SAMPLES", &e.Params.PullSamples)
	p.integer("MAJORITY_SAMPLES", &e.Params.MajoritySamples)
	p.integer("ENSEMBLE_RUNS", &e.Params.Runs)
	p.integer("WORKERS", &e.Params.MaxWorkers)
	p.float("ALPHA", &e.Params.Alpha)
	p.float("BETA", &e.Params.Beta)
	p.str("WINDOW", (*string)(&e.Params.Window))
	if v, ok := p.get("SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			p.fail("SEED", err)
		} else {
			e.Params.Seed = seed
		}
	}

	p.str("REPORT_DIR", &e.Reports.Dir)
	p.str("REPORT_FORMAT", (*string)(&e.Reports.Format))
	p.str("S3_BUCKET", &e.S3.Bucket)
	p.str("S3_PREFIX", &e.S3.Prefix)
	p.str("S3_REGION", &e.S3.Region)
	p.str("S3_ENDPOINT", &e.S3.Endpoint)
	p.str("S3_ACCESS_KEY", &e.S3.AccessKey)
	p.str("S3_SECRET_KEY", &e.S3.SecretKey)
	p.str("PG_URL", &e.Postgres.URL)

	return p.err
}

type envParser struct {
	lookup LookupFunc
	err    error
}

func (p *envParser) get(name string) (string, bool) {
	v, ok := p.lookup(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *envParser) fail(name string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err)
	}
}

func (p *envParser) str(name string, dst *string) {
	if v, ok := p.get(name); ok {
		*dst = v
	}
}

func (p *envParser) integer(name string, dst *int) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, err)
		return
	}
	*dst = n
}

func (p *envParser) float(name string, dst *float64) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(name, err)
		return
	}
	*dst = f
}

func (p *envParser) boolean(name string, dst *bool) {
	v, ok := p.get(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(name, err)
		return
	}
	*dst = b
}

// ParseOverlaps parses a comma-separated overlap list such as "10,5".
func ParseOverlaps(s string) ([]int, error) {
	parts := splitAndTrim(s, ",")
	if len(parts) == 0 {
		return nil, errors.New("empty overlap list")
	}
	out := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("overlap %q: %w", part, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("overlap %d is negative", n)
		}
		out[i] = n
	}
	return out, nil
}

// splitAndTrim splits a string and trims whitespace from each part,
// dropping empty parts.
func splitAndTrim(s, sep string) []string {
	var result []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
