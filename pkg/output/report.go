package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-overcode/pkg/evaluation"
	"github.com/dd0wney/cluso-overcode/pkg/graph"
	"github.com/dd0wney/cluso-overcode/pkg/overcode"
)

// GraphInfo describes the graph an ensemble ran on.
type GraphInfo struct {
	Source string `json:"source" yaml:"source"`
	Index  int    `json:"index" yaml:"index"`
	Nodes  int    `json:"nodes" yaml:"nodes"`
	Edges  int    `json:"edges" yaml:"edges"`
}

// ClusterEntry is the serialized form of one detected cluster.
type ClusterEntry struct {
	ID             int    `json:"id" yaml:"id"`
	Representative int    `json:"representative" yaml:"representative"`
	Signature      string `json:"signature" yaml:"signature"`
	Members        []int  `json:"members" yaml:"members,flow"`
}

// Report is the record of one ensemble: what ran, on what, and what it
// found.
type Report struct {
	ID             string             `json:"id" yaml:"id"`
	ExperimentID   string             `json:"experiment_id,omitempty" yaml:"experiment_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at" yaml:"created_at"`
	Graph          GraphInfo          `json:"graph" yaml:"graph"`
	Run            int                `json:"run" yaml:"run"`
	Params         overcode.Params    `json:"params" yaml:"params"`
	Seed           uint64             `json:"seed" yaml:"seed"`
	ElapsedSeconds float64            `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	Clusters       []ClusterEntry     `json:"clusters" yaml:"clusters"`
	Evaluation     *evaluation.Report `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`
}

// NewReport builds a report for res with a fresh random ID.
func NewReport(info GraphInfo, run int, params overcode.Params, res *overcode.Result) *Report {
	r := &Report{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Graph:          info,
		Run:            run,
		Params:         params,
		Seed:           res.Seed(),
		ElapsedSeconds: res.Elapsed().Seconds(),
	}
	for _, c := range res.Clusters() {
		r.Clusters = append(r.Clusters, ClusterEntry{
			ID:             c.ID,
			Representative: c.Representative,
			Signature:      c.Signature.String(),
			Members:        c.Members,
		})
	}
	return r
}

// Relabel rewrites cluster representatives and members to their labels.
func (r *Report) Relabel(labels graph.Labels) {
	if labels == nil {
		return
	}
	for i := range r.Clusters {
		c := &r.Clusters[i]
		c.Representative = labels.ID(c.Representative)
		c.Members = labels.IDs(c.Members)
	}
}

// Members returns each cluster's member list.
func (r *Report) Members() [][]int {
	out := make([][]int, len(r.Clusters))
	for i, c := range r.Clusters {
		out[i] = c.Members
	}
	return out
}

// Format selects a report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Encode writes r in the given format.
func (r *Report) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// DecodeReport reads a report in the given format.
func DecodeReport(rd io.Reader, f Format) (*Report, error) {
	r := &Report{}
	var err error
	switch f {
	case FormatJSON, "":
		err = json.NewDecoder(rd).Decode(r)
	case FormatYAML:
		err = yaml.NewDecoder(rd).Decode(r)
	default:
		err = fmt.Errorf("unknown report format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}
