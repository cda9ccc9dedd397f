package asset

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

var zipMagic = []byte("PK\x03\x04")

// errNoModelInArchive is returned for a zip archive without a .glb entry.
var errNoModelInArchive = errors.New("asset: archive holds no .glb file")

// Unpack returns the model bytes inside data. A zip archive yields its first .glb entry
// by path; anything else is returned unchanged.
func Unpack(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, zipMagic) {
		return data, nil
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	var candidates []*zip.File
	for _, f := range r.File {
		name := path.Clean(f.Name)
		if f.FileInfo().IsDir() || strings.HasPrefix(name, "../") || strings.HasPrefix(name, "__MACOSX/") {
			continue // skip path escape and resource forks
		}
		if strings.EqualFold(path.Ext(name), ".glb") {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return nil, errNoModelInArchive
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

	rc, err := candidates[0].Open()
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unzip %s: %w", candidates[0].Name, err)
	}
	return out, nil
}
