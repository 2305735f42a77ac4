package logging

import (
	"strconv"
	"time"
)

func String(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field         { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field     { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field       { return Field{Key: key, Value: value} }
func Any(key string, value any) Field         { return Field{Key: key, Value: value} }

// Uint64 records value as a decimal string. Seeds use all 64 bits and
// JSON readers that parse numbers as float64 would round them.
func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: strconv.FormatUint(value, 10)}
}

// Duration records d in milliseconds.
func Duration(key string, d time.Duration) Field {
	return Field{Key: key, Value: float64(d) / float64(time.Millisecond)}
}

// Error records err's message under "error"; a nil error is recorded as
// null.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain fields.

func Component(name string) Field { return String("component", name) }

// Run identifies one protocol run within an ensemble by its index.
func Run(index int) Field { return Int("run", index) }

func Worker(id int) Field           { return Int("worker", id) }
func Nodes(n int) Field             { return Int("nodes", n) }
func Rounds(t int) Field            { return Int("rounds", t) }
func Clusters(n int) Field          { return Int("clusters", n) }
func Count(n int) Field             { return Int("count", n) }
func ExperimentID(id string) Field  { return String("experiment_id", id) }
func Path(p string) Field           { return String("path", p) }
func Latency(d time.Duration) Field { return Duration("latency_ms", d) }

