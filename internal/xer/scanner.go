package xer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks dir and returns every .xer file under it, sorted by path.
// A missing directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		if !isXER(dir) {
			return nil, nil
		}
		return []DiscoveredFile{discovered(dir, info)}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() || !isXER(path) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished mid-walk
		}
		files = append(files, discovered(path, fi))
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func isXER(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xer")
}

func discovered(path string, fi os.FileInfo) DiscoveredFile {
	return DiscoveredFile{
		Path:      path,
		Name:      filepath.Base(path),
		MtimeNs:   fi.ModTime().UnixNano(),
		SizeBytes: fi.Size(),
	}
}
