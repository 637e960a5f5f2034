// Package edgelist reads undirected edge lists into a graph.
//
// The format is line oriented: blank lines and lines starting with '#' are
// skipped, every other line holds exactly two whitespace-separated
// non-negative integers naming the endpoints of one edge.
package edgelist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

const maxLineBytes = 1 << 20

// Parse reads an edge list from r into a new graph. source names r in errors.
func Parse(r io.Reader, source string) (*graph.Graph, error) {
	g := graph.New()
	if _, err := ParseInto(r, source, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ParseInto appends the edges read from r to g and returns how many were added.
func ParseInto(r io.Reader, source string, g *graph.Graph) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	edges := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		u, v, err := parseEdge(line)
		if err != nil {
			return edges, graph.FormatError(source, lineNo, err.Error())
		}
		if err := g.AddEdge(u, v); err != nil {
			return edges, graph.NewError("parse", graph.ErrRange).Source(source).Line(lineNo).Cause(err).Err()
		}
		edges++
	}
	if err := scanner.Err(); err != nil {
		return edges, graph.IOError("read", source, err)
	}
	return edges, nil
}

func parseEdge(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected 2 node ids, found %d fields", len(fields))
	}
	u, err := parseNodeID(fields[0])
	if err != nil {
		return 0, 0, err
	}
	v, err := parseNodeID(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return u, v, nil
}

func parseNodeID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("node id %q is not an integer", s)
	}
	if id < 0 {
		return 0, fmt.Errorf("node id %d is negative", id)
	}
	return id, nil
}

// Write renders g's edges in the edge-list format. Each undirected edge is
// written once, self-loops included.
func Write(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	seen := make(map[[2]int]int)

	for _, u := range g.NodeIDs() {
		for _, v := range g.Neighbors(u) {
			if v < u {
				continue
			}
			key := [2]int{u, v}
			seen[key]++
			// Each edge appears once in u's list and once in v's; a self-loop
			// appears twice in the same list.
			if u == v && seen[key]%2 == 0 {
				continue
			}
			if _, err := fmt.Fprintf(bw, "%d %d\n", u, v); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
