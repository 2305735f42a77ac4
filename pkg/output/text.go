// Package output serializes ensemble results: plain-text history and
// cluster files, structured reports, and report sinks.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-overcode/pkg/graph"
	"github.com/dd0wney/cluso-overcode/pkg/overcode"
)

// SnappySuffix marks files written through a snappy stream.
const SnappySuffix = ".sz"

// symbolCode is the numeric form used in text files: R is 0, B is 1 and
// an uncertain run is -1.
func symbolCode(s overcode.Symbol) string {
	switch s {
	case overcode.SymbolR:
		return "0"
	case overcode.SymbolB:
		return "1"
	default:
		return "-1"
	}
}

func joinSignature(sig overcode.Signature) string {
	parts := make([]string, len(sig))
	for i, s := range sig {
		parts[i] = symbolCode(s)
	}
	return strings.Join(parts, " ")
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}

// WriteHistory writes every node's signature as
//
//	<node>
//	<code> <code> ...
//	<blank line>
//
// Nodes are written under their labels.
func WriteHistory(w io.Writer, sigs []overcode.Signature, labels graph.Labels) error {
	bw := bufio.NewWriter(w)
	for u, sig := range sigs {
		if _, err := fmt.Fprintf(bw, "%d\n%s\n\n", labels.ID(u), joinSignature(sig)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteClusters writes each cluster's representative signature and
// members, then the elapsed time in whole seconds.
func WriteClusters(w io.Writer, clusters []overcode.Cluster, elapsed time.Duration) error {
	bw := bufio.NewWriter(w)
	for i, c := range clusters {
		if _, err := fmt.Fprintf(bw, "Cluster %d: %s\nNodes: %s\n", i+1, joinSignature(c.Signature), joinInts(c.Members)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "Time taken: ~%ds\n", int64(elapsed/time.Second)); err != nil {
		return err
	}
	return bw.Flush()
}

// Relabel returns copies of clusters whose representatives and members
// carry their labels. Clusters are returned as is when labels is nil.
func Relabel(clusters []overcode.Cluster, labels graph.Labels) []overcode.Cluster {
	if labels == nil {
		return clusters
	}
	out := make([]overcode.Cluster, len(clusters))
	for i, c := range clusters {
		c.Representative = labels.ID(c.Representative)
		c.Members = labels.IDs(c.Members)
		out[i] = c
	}
	return out
}

// AppendExperiment appends one ensemble's clusters to an experiment
// cluster file under a "<graph> <run>" header.
func AppendExperiment(w io.Writer, graphIndex, runIndex int, clusters []overcode.Cluster) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", graphIndex, runIndex)
	for i, c := range clusters {
		fmt.Fprintf(bw, "Cluster %d: %s\n%s\n\n", i+1, joinSignature(c.Signature), joinInts(c.Members))
	}
	fmt.Fprint(bw, "\n\n")
	return bw.Flush()
}

// AppendTruth appends the planted communities for one ensemble under the
// same header AppendExperiment uses.
func AppendTruth(w io.Writer, graphIndex, runIndex int, truth [][]int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", graphIndex, runIndex)
	for i, members := range truth {
		fmt.Fprintf(bw, "Cluster %d: \n%s\n", i+1, joinInts(members))
	}
	return bw.Flush()
}

// Create opens path for writing, through a snappy stream when the path
// ends in SnappySuffix. Closing the returned writer flushes and closes
// the file.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if !strings.HasSuffix(path, SnappySuffix) {
		return f, nil
	}
	return &snappyFile{w: snappy.NewBufferedWriter(f), f: f}, nil
}

type snappyFile struct {
	w *snappy.Writer
	f *os.File
}

func (s *snappyFile) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *snappyFile) Close() error {
	if err := s.w.Close(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// SaveHistory writes the history file at path.
func SaveHistory(path string, sigs []overcode.Signature, labels graph.Labels) (err error) {
	w, err := Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteHistory(w, sigs, labels)
}
