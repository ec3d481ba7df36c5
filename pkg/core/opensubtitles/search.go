package opensubtitles

import (
	"context"
	"fmt"

	coreErrors "github.com/angelospk/osdbclient/pkg/core/errors"
	log "github.com/sirupsen/logrus"
)

// SearchSubtitles criteria field names.
const (
	FieldSubLanguageID = "sublanguageid"
	FieldMovieHash     = "moviehash"
	FieldMovieByteSize = "moviebytesize"
	FieldIMDbID        = "imdbid"
	FieldQuery         = "query"
)

// SearchCriteria is one criteria struct of a SearchSubtitles call.
type SearchCriteria map[string]interface{}

// searcher builds and dispatches SearchSubtitles calls.
type searcher struct {
	rpc      *rpcCaller
	session  *session
	language string
	limit    int
	logger   *log.Logger
}

// merge adds the configured language to criteria. Fields already present in
// criteria win.
func (s *searcher) merge(criteria SearchCriteria) SearchCriteria {
	merged := SearchCriteria{FieldSubLanguageID: s.language}
	for k, v := range criteria {
		merged[k] = v
	}
	return merged
}

// search runs SearchSubtitles for one identification shape. A failed login
// short-circuits before any search request is sent. On error no records are
// returned.
func (s *searcher) search(ctx context.Context, criteria SearchCriteria) ([]SubtitleRecord, error) {
	token, err := s.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	args := []interface{}{token, []interface{}{s.merge(criteria)}}
	if s.limit > 0 {
		args = append(args, map[string]interface{}{"limit": s.limit})
	}

	env, err := s.rpc.call(ctx, methodSearchSubtitles, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if env.Fault != nil {
		return nil, coreErrors.NewSearchFault(env.Fault.Code, env.Fault.Message)
	}
	if !env.OK() {
		return nil, coreErrors.NewSearchRejected(env.Status())
	}

	records, err := env.records()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", coreErrors.ErrSearch, err)
	}

	s.logger.WithFields(log.Fields{
		"criteria": criteria,
		"results":  len(records),
	}).Debug("Subtitle search complete")
	return records, nil
}
