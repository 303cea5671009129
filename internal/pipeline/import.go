package pipeline

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/theirongolddev/xercost/internal/model"
	"github.com/theirongolddev/xercost/internal/store"
	"github.com/theirongolddev/xercost/internal/xer"
)

// ImportResult summarises one import run.
type ImportResult struct {
	TotalFiles  int
	Imported    int
	Skipped     int // unchanged since the last import
	FileErrors  int
	ParseErrors int
	Uploads     []model.Upload
}

// ProgressFunc is called during importing to report progress.
// current is the number of files parsed so far, total is the number to parse.
type ProgressFunc func(current, total int)

// Import discovers XER files under dir, parses the ones that changed since
// they were last imported and stores them as uploads.
func Import(dir string, st *store.Store, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := xer.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &ImportResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := st.TrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading tracked files: %w", err)
	}

	var toParse []xer.DiscoveredFile
	for _, f := range files {
		abs, err := filepath.Abs(f.Path)
		if err == nil {
			f.Path = abs
		}
		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == f.MtimeNs && cached.SizeBytes == f.SizeBytes {
			result.Skipped++
			continue
		}
		toParse = append(toParse, f)
	}

	if len(toParse) == 0 {
		return result, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(toParse) {
		numWorkers = len(toParse)
	}

	work := make(chan int, len(toParse))
	results := make([]xer.ParseResult, len(toParse))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range toParse {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = xer.ParseFile(toParse[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(toParse))
				}
			}
		}()
	}

	wg.Wait()

	// SQLite takes one writer at a time, so saving stays sequential.
	for _, pr := range results {
		if pr.Err != nil {
			log.Warn().Err(pr.Err).Str("file", pr.File.Path).Msg("skipping unreadable XER file")
			result.FileErrors++
			continue
		}
		result.ParseErrors += pr.ParseErrors
		u, err := st.SaveUpload(model.Upload{
			FileName:  pr.File.Name,
			Path:      pr.File.Path,
			MtimeNs:   pr.File.MtimeNs,
			SizeBytes: pr.File.SizeBytes,
		}, pr.Data.Schedule())
		if err != nil {
			return result, fmt.Errorf("saving %s: %w", pr.File.Path, err)
		}
		log.Debug().Int64("upload", u.ID).Str("file", u.FileName).Int("parse_errors", pr.ParseErrors).Msg("imported")
		result.Imported++
		result.Uploads = append(result.Uploads, u)
	}

	return result, nil
}
