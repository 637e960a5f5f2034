package edgelist

import (
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// SnappySuffix marks edge lists stored as snappy framed streams.
const SnappySuffix = ".sz"

// LoadFile reads an edge-list file. Plain files are memory-mapped; files
// ending in SnappySuffix are decompressed while streaming.
func LoadFile(path string) (*graph.Graph, error) {
	if strings.HasSuffix(path, SnappySuffix) {
		f, err := os.Open(path)
		if err != nil {
			return nil, graph.IOError("open", path, err)
		}
		defer f.Close()
		return Parse(snappy.NewReader(f), path)
	}

	reader, err := mmap.Open(path)
	if err != nil {
		return nil, graph.IOError("open", path, err)
	}
	defer reader.Close()

	return Parse(io.NewSectionReader(reader, 0, int64(reader.Len())), path)
}

// WriteFile writes g to path, snappy-compressed when path ends in SnappySuffix.
func WriteFile(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return graph.IOError("create", path, err)
	}

	var w io.Writer = f
	var sw *snappy.Writer
	if strings.HasSuffix(path, SnappySuffix) {
		sw = snappy.NewBufferedWriter(f)
		w = sw
	}

	if err := Write(w, g); err != nil {
		f.Close()
		return graph.IOError("write", path, err)
	}
	if sw != nil {
		if err := sw.Close(); err != nil {
			f.Close()
			return graph.IOError("write", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return graph.IOError("close", path, err)
	}
	return nil
}
