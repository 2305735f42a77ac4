package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
)

// SnappySuffix marks edge-list files stored as a snappy framed stream.
const SnappySuffix = ".sz"

// ErrMalformedLine is returned for edge-list lines that are not "u v".
var ErrMalformedLine = errors.New("malformed edge-list line")

// Labels maps each dense node id to the id it carries in the source file.
// A nil Labels is the identity.
type Labels []int

// ID returns the file id of dense node u.
func (l Labels) ID(u int) int {
	if l == nil {
		return u
	}
	return l[u]
}

// IDs maps dense ids to file ids. The result is a new slice unless l is
// nil. Labels ascend, so sorted input stays sorted.
func (l Labels) IDs(us []int) []int {
	if l == nil {
		return us
	}
	out := make([]int, len(us))
	for i, u := range us {
		out[i] = l[u]
	}
	return out
}

// LoadEdgeList reads an undirected graph from a whitespace separated edge
// list. Plain files are memory-mapped; files ending in SnappySuffix are
// decompressed on the fly. See ReadEdgeList for the id mapping.
func LoadEdgeList(path string) (*Graph, Labels, error) {
	if strings.HasSuffix(path, SnappySuffix) {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open edge list: %w", err)
		}
		defer f.Close()
		return ReadEdgeList(snappy.NewReader(f))
	}

	r, err := mmap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to map edge list: %w", err)
	}
	defer r.Close()
	return ReadEdgeList(io.NewSectionReader(r, 0, int64(r.Len())))
}

// ReadEdgeList parses an edge list from r. Blank lines and lines starting
// with '#' or '%' are skipped. Extra columns (weights) are ignored.
//
// Node ids are remapped to 0..n-1 in ascending order, n being the number
// of distinct ids in the file, so sparse ids cost nothing. The returned
// Labels recover the file ids; it is nil when the file already uses
// exactly 0..n-1.
func ReadEdgeList(r io.Reader) (*Graph, Labels, error) {
	edges, err := parseEdges(r)
	if err != nil {
		return nil, nil, err
	}
	labels, n := densify(edges)
	g, err := FromEdges(n, edges)
	if err != nil {
		return nil, nil, err
	}
	return g, labels, nil
}

// densify rewrites edges in place onto dense ids and returns the labels
// and node count.
func densify(edges []Edge) (Labels, int) {
	seen := make(map[int]struct{})
	maxID := -1
	for _, e := range edges {
		seen[e.U] = struct{}{}
		seen[e.V] = struct{}{}
		maxID = max(maxID, e.U, e.V)
	}
	n := len(seen)
	if maxID == n-1 {
		return nil, n
	}

	labels := make(Labels, 0, n)
	for id := range seen {
		labels = append(labels, id)
	}
	sort.Ints(labels)
	dense := make(map[int]int, n)
	for i, id := range labels {
		dense[id] = i
	}
	for i, e := range edges {
		edges[i] = Edge{U: dense[e.U], V: dense[e.V]}
	}
	return labels, n
}

func parseEdges(r io.Reader) ([]Edge, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var edges []Edge
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' || text[0] == '%' {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedLine, line, text)
		}
		u, err := strconv.Atoi(fields[0])
		if err != nil || u < 0 {
			return nil, fmt.Errorf("%w: line %d: bad node %q", ErrMalformedLine, line, fields[0])
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: line %d: bad node %q", ErrMalformedLine, line, fields[1])
		}
		edges = append(edges, Edge{U: u, V: v})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edge list: %w", err)
	}
	return edges, nil
}

// WriteEdgeList writes every undirected edge of g once as "u v" lines.
func WriteEdgeList(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	for _, e := range g.Edges() {
		if _, err := fmt.Fprintf(bw, "%d %d\n", e.U, e.V); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveEdgeList writes g to path, snappy-compressed when path ends in
// SnappySuffix.
func SaveEdgeList(path string, g *Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create edge list: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, SnappySuffix) {
		sw := snappy.NewBufferedWriter(f)
		if err := WriteEdgeList(sw, g); err != nil {
			return err
		}
		if err := sw.Close(); err != nil {
			return err
		}
		return f.Close()
	}

	if err := WriteEdgeList(f, g); err != nil {
		return err
	}
	return f.Close()
}
