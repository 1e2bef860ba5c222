package pipeline

import (
	"bytes"
	"os"

	"github.com/arslanmit/istanbul-transportation-network/pkg/cache"
	"github.com/arslanmit/istanbul-transportation-network/pkg/errors"
	"github.com/arslanmit/istanbul-transportation-network/pkg/transit"
)

// LoadResult carries the parsed input tables together with their content
// hashes, which downstream stages use for cache keys.
type LoadResult struct {
	Stops   []transit.Stop
	Records []transit.EdgeRecord

	StopsHash string
	LinesHash string
}

// Load reads and parses both input tables and expands lines into
// directed edge records.
func (r *Runner) Load(opts Options) (*LoadResult, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	stopsData, err := readTable(opts.StopsPath)
	if err != nil {
		return nil, err
	}
	linesData, err := readTable(opts.LinesPath)
	if err != nil {
		return nil, err
	}

	stops, err := transit.ReadStops(bytes.NewReader(stopsData), opts.StopsPath)
	if err != nil {
		return nil, err
	}
	lines, err := transit.ReadLines(bytes.NewReader(linesData), opts.LinesPath)
	if err != nil {
		return nil, err
	}

	return &LoadResult{
		Stops:     stops,
		Records:   transit.BuildEdges(lines),
		StopsHash: cache.Hash(stopsData),
		LinesHash: cache.Hash(linesData),
	}, nil
}

func readTable(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "input file %s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return data, nil
}
