package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/hack-pad/hackpadfs"
)

// Unzip extracts zipPath into destDir on fsys, preserving directory structure.
// destDir is created if needed. Entries that would escape destDir are skipped.
// Returns the list of extracted file paths, or an error.
func Unzip(fsys hackpadfs.FS, zipPath, destDir string) (extracted []string, err error) {
	data, err := fs.ReadFile(fsys, zipPath)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unzip: %s: %w", zipPath, err)
	}
	if err := hackpadfs.MkdirAll(fsys, destDir, 0755); err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	for _, f := range r.File {
		name := path.Clean(strings.ReplaceAll(f.Name, "\\", "/"))
		if name == "." || !fs.ValidPath(name) {
			continue // skip path escape
		}
		dest := path.Join(destDir, name)
		if f.FileInfo().IsDir() {
			_ = hackpadfs.MkdirAll(fsys, dest, 0755)
			continue
		}
		if err := hackpadfs.MkdirAll(fsys, path.Dir(dest), 0755); err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		body, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("unzip: %s: %w", f.Name, err)
		}
		if err := hackpadfs.WriteFullFile(fsys, dest, body, 0644); err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		extracted = append(extracted, dest)
	}
	return extracted, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FindModel picks the scene file out of extracted paths: .glb before .gltf, then the shallowest
// path, then lexical order. Returns false when there is none.
func FindModel(paths []string) (string, bool) {
	var glb, gltf []string
	for _, p := range paths {
		switch strings.ToLower(path.Ext(p)) {
		case ".glb":
			glb = append(glb, p)
		case ".gltf":
			gltf = append(gltf, p)
		}
	}
	for _, group := range [][]string{glb, gltf} {
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			di, dj := strings.Count(group[i], "/"), strings.Count(group[j], "/")
			if di != dj {
				return di < dj
			}
			return group[i] < group[j]
		})
		return group[0], true
	}
	return "", false
}
