package processor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelospk/osdbclient/pkg/core/opensubtitles"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SubtitleFinder is the lookup the processor runs for every video file.
// *opensubtitles.Client implements it.
type SubtitleFinder interface {
	Find(ctx context.Context, q opensubtitles.Query, all bool) ([]string, error)
}

// Ensure the client satisfies SubtitleFinder
var _ SubtitleFinder = (*opensubtitles.Client)(nil)

// DefaultConcurrency is the number of lookups in flight when Options leaves it unset.
const DefaultConcurrency = 4

// Known video and subtitle extensions
var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true, ".flv": true,
	".m4v": true, ".mpg": true, ".mpeg": true, ".ts": true, ".webm": true,
}
var subtitleExtensions = map[string]bool{
	".srt": true, ".sub": true, ".ssa": true, ".ass": true, ".vtt": true,
}

// Options controls a directory lookup.
type Options struct {
	Recursive bool
	All       bool // return every URL per video instead of the best one
	// SkipSubtitled leaves out videos that already have a subtitle file with
	// the same base name next to them.
	SkipSubtitled bool
	Concurrency   int
}

// LookupResult is the outcome for one video file. Err is set when that
// file's lookup failed; URLs is then empty.
type LookupResult struct {
	VideoFile string
	URLs      []string
	Err       error
}

// Processor scans directories for video files and looks their subtitles up
// by file hash.
type Processor struct {
	finder SubtitleFinder
	logger *log.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(finder SubtitleFinder, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.New()
		logger.SetFormatter(&log.TextFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(log.InfoLevel)
	}
	return &Processor{
		finder: finder,
		logger: logger,
	}
}

// ScanDirectoryResult holds the lists of video and subtitle files found.
type ScanDirectoryResult struct {
	VideoFiles    []string
	SubtitleFiles []string
}

// ScanDirectory scans a directory for video and subtitle files, descending
// into subdirectories only when recursive is set.
func (p *Processor) ScanDirectory(ctx context.Context, rootPath string, recursive bool) (*ScanDirectoryResult, error) {
	result := &ScanDirectoryResult{}

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			p.logger.Warnf("Error accessing path %q: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path != rootPath && !recursive {
				p.logger.Debugf("Skipping directory (not recursive): %s", path)
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if videoExtensions[ext] {
			result.VideoFiles = append(result.VideoFiles, path)
		} else if subtitleExtensions[ext] {
			result.SubtitleFiles = append(result.SubtitleFiles, path)
		}
		return nil
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		p.logger.Errorf("Error walking directory %q: %v", rootPath, err)
		return nil, err
	}

	p.logger.Infof("Scan complete. Found %d video files and %d subtitle files in %s (Recursive: %t)",
		len(result.VideoFiles), len(result.SubtitleFiles), rootPath, recursive)
	return result, nil
}

// LookupDirectory scans rootPath and looks subtitles up for every video file
// found. Results keep the scan order. A failed lookup is reported in its
// LookupResult and does not stop the others; only scan failures and context
// cancellation return an error.
func (p *Processor) LookupDirectory(ctx context.Context, rootPath string, opts Options) ([]LookupResult, error) {
	scan, err := p.ScanDirectory(ctx, rootPath, opts.Recursive)
	if err != nil {
		return nil, err
	}

	videos := scan.VideoFiles
	if opts.SkipSubtitled {
		videos = withoutSubtitles(videos, scan.SubtitleFiles)
		if skipped := len(scan.VideoFiles) - len(videos); skipped > 0 {
			p.logger.Infof("Skipping %d videos that already have subtitles", skipped)
		}
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]LookupResult, len(videos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, video := range videos {
		i, video := i, video
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			urls, err := p.finder.Find(gctx, opensubtitles.ByLocalFile{Path: video}, opts.All)
			results[i] = LookupResult{VideoFile: video, URLs: urls, Err: err}
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				p.logger.Warnf("Lookup failed for %s: %v", filepath.Base(video), err)
				return nil
			}
			p.logger.Debugf("Found %d subtitle URLs for %s", len(urls), filepath.Base(video))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	found := 0
	for _, r := range results {
		if len(r.URLs) > 0 {
			found++
		}
	}
	p.logger.Infof("Lookup complete. Subtitles found for %d of %d videos.", found, len(results))
	return results, nil
}

// withoutSubtitles drops videos that have a subtitle with the same base name
// in the same directory.
func withoutSubtitles(videos, subtitles []string) []string {
	subtitled := make(map[string]bool, len(subtitles))
	for _, s := range subtitles {
		subtitled[stem(s)] = true
	}
	var out []string
	for _, v := range videos {
		if !subtitled[stem(v)] {
			out = append(out, v)
		}
	}
	return out
}

func stem(path string) string {
	return strings.ToLower(strings.TrimSuffix(path, filepath.Ext(path)))
}
