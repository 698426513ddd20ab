package upload

import (
	"fmt"
	"sort"

	"github.com/apillon/apillon-go"
)

// Target is the upload descriptor the API returns for one file of a session.
type Target struct {
	FileName    string `json:"fileName"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	FileUUID    string `json:"fileUuid"`
	ContentType string `json:"contentType"`
}

// Key is the virtual path of the target: Path joined with FileName.
func (t Target) Key() string {
	return apillon.JoinVirtualPath(t.Path, t.FileName)
}

// Matching selects how local files are paired with upload targets.
type Matching int

const (
	// MatchByPath pairs on the full virtual path (directory + file name).
	MatchByPath Matching = iota
	// MatchByFileName sorts both sides by file name and pairs them in order.
	// Files sharing a name in different directories cannot be told apart.
	MatchByFileName
)

// Pair binds a local file to the pre-signed target it must be uploaded to.
type Pair struct {
	File   File
	Target Target
}

// Match pairs every file with its target. The server does not keep the
// request order, so the pairing is keyed, never positional on the raw input.
func Match(files []File, targets []Target, mode Matching) ([]Pair, error) {
	if len(files) != len(targets) {
		return nil, &apillon.ProtocolError{
			Message: fmt.Sprintf("upload session returned %d targets for %d files", len(targets), len(files)),
		}
	}

	switch mode {
	case MatchByFileName:
		return matchByFileName(files, targets)
	default:
		return matchByPath(files, targets)
	}
}

func matchByPath(files []File, targets []Target) ([]Pair, error) {
	byKey := make(map[string]Target, len(targets))
	for _, t := range targets {
		k := t.Key()
		if _, dup := byKey[k]; dup {
			return nil, &apillon.ProtocolError{Message: "duplicate upload target for " + k}
		}
		byKey[k] = t
	}

	pairs := make([]Pair, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		k := f.Key()
		if _, dup := seen[k]; dup {
			return nil, &apillon.ProtocolError{Message: "duplicate local file " + k}
		}
		seen[k] = struct{}{}

		t, ok := byKey[k]
		if !ok {
			return nil, &apillon.ProtocolError{Message: "no upload target for " + k}
		}
		pairs = append(pairs, Pair{File: f, Target: t})
	}
	return pairs, nil
}

func matchByFileName(files []File, targets []Target) ([]Pair, error) {
	fs := append([]File(nil), files...)
	ts := append([]Target(nil), targets...)
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].FileName < fs[j].FileName })
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].FileName < ts[j].FileName })

	pairs := make([]Pair, len(fs))
	for i := range fs {
		if fs[i].FileName != ts[i].FileName {
			return nil, &apillon.ProtocolError{
				Message: fmt.Sprintf("upload target %q does not match file %q", ts[i].FileName, fs[i].FileName),
			}
		}
		pairs[i] = Pair{File: fs[i], Target: ts[i]}
	}
	return pairs, nil
}

// Chunk splits items into consecutive groups of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		chunks = append(chunks, items[i:end])
	}
	return chunks
}
