package opensubtitles

import (
	"fmt"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"

	coreErrors "github.com/angelospk/osdbclient/pkg/core/errors"
)

// Query identifies the movie to look subtitles up for. It is one of
// ByLocalFile, ByCatalogID or ByFreeText.
type Query interface {
	isQuery()
}

// ByLocalFile matches subtitles by the OSDb hash and size of a video file.
type ByLocalFile struct {
	Path string
}

// ByCatalogID matches subtitles by numeric IMDb id (tt0133093 -> 133093).
type ByCatalogID struct {
	ID int64
}

// ByFreeText matches subtitles by a title search.
type ByFreeText struct {
	Text string
}

func (ByLocalFile) isQuery() {}
func (ByCatalogID) isQuery() {}
func (ByFreeText) isQuery()  {}

// Classify turns a loosely typed lookup value into a Query:
//   - a Query is returned as is
//   - a string naming an existing regular file becomes ByLocalFile
//   - any integer becomes ByCatalogID
//   - any other string becomes ByFreeText, even when it only holds digits
func Classify(v interface{}) (Query, error) {
	if q, ok := v.(Query); ok {
		return q, nil
	}
	if v == nil {
		return nil, fmt.Errorf("%w: <nil>", coreErrors.ErrUnsupportedQuery)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		s := rv.String()
		if isRegularFile(s) {
			return ByLocalFile{Path: s}, nil
		}
		return ByFreeText{Text: s}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ByCatalogID{ID: rv.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: catalog id %d out of range", coreErrors.ErrUnsupportedQuery, u)
		}
		return ByCatalogID{ID: int64(u)}, nil
	default:
		return nil, fmt.Errorf("%w: %T", coreErrors.ErrUnsupportedQuery, v)
	}
}

// ParseIMDbID parses "tt0133093" or "133093" into a ByCatalogID.
func ParseIMDbID(s string) (ByCatalogID, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 2 && strings.EqualFold(trimmed[:2], "tt") {
		trimmed = trimmed[2:]
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return ByCatalogID{}, fmt.Errorf("%w: invalid IMDb id %q", coreErrors.ErrUnsupportedQuery, s)
	}
	return ByCatalogID{ID: id}, nil
}

func isRegularFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
