package opensubtitles

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelospk/osdbclient/internal/constants"
	"github.com/angelospk/osdbclient/internal/httpclient"
	coreErrors "github.com/angelospk/osdbclient/pkg/core/errors"
	"github.com/angelospk/osdbclient/pkg/core/fileops"
	log "github.com/sirupsen/logrus"
)

// defaultHashCacheSize bounds the default hasher's memo of file hashes.
const defaultHashCacheSize = 256

// Config holds the configuration for the subtitle client.
type Config struct {
	Credentials

	Endpoint   string        // Optional: Override the default XML-RPC endpoint
	Timeout    time.Duration // Per request, ignored when HTTPClient is set
	HTTPClient *http.Client
	Limit      int // Optional: max results per search (the service caps it at 500)

	// ReleaseNameQueries reduces free-text queries that look like release
	// names to "<title> <year>" before searching.
	ReleaseNameQueries bool

	// Collaborators; nil selects the defaults.
	Transport Transport
	Hasher    fileops.Hasher
	Resolver  URLResolver
	Logger    *log.Logger
}

// Client looks subtitles up on the OpenSubtitles XML-RPC API. It is safe for
// concurrent use; all calls share one lazily obtained session token.
type Client struct {
	config   Config
	session  *session
	searcher *searcher
	hasher   fileops.Hasher
	resolver URLResolver
	logger   *log.Logger
}

// NewClient creates a new subtitle client.
func NewClient(config Config) (*Client, error) {
	if config.Language == "" {
		config.Language = constants.DefaultLanguage
	}
	if config.UserAgent == "" {
		config.UserAgent = constants.DefaultUserAgent
	}
	if config.Endpoint == "" {
		config.Endpoint = constants.DefaultEndpoint
	}
	if _, err := url.ParseRequestURI(config.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid Endpoint provided: %w", err)
	}
	if config.Limit < 0 {
		return nil, fmt.Errorf("invalid Limit %d: must not be negative", config.Limit)
	}

	logger := config.Logger
	if logger == nil {
		logger = log.New()
		logger.SetFormatter(&log.TextFormatter{})
		logger.SetLevel(log.InfoLevel)
	}

	transport := config.Transport
	if transport == nil {
		transport = httpclient.New(config.Endpoint, config.UserAgent, config.HTTPClient, config.Timeout)
	}
	hasher := config.Hasher
	if hasher == nil {
		hasher = fileops.NewCachingHasher(fileops.OSDbHasher{}, defaultHashCacheSize, 0)
	}
	resolver := config.Resolver
	if resolver == nil {
		resolver = DownloadLinkResolver{}
	}

	rpc := &rpcCaller{transport: transport, logger: logger}
	sess := newSession(rpc, config.Credentials, logger)

	return &Client{
		config:  config,
		session: sess,
		searcher: &searcher{
			rpc:      rpc,
			session:  sess,
			language: config.Language,
			limit:    config.Limit,
			logger:   logger,
		},
		hasher:   hasher,
		resolver: resolver,
		logger:   logger,
	}, nil
}

// Get classifies query (see Classify) and returns subtitle download URLs: the
// best match, or every match when all is set.
//
// Failures never produce partial output: on any error Get returns an empty,
// non-nil slice together with the error, so callers that only want URLs can
// ignore the error and still get the empty result.
func (c *Client) Get(ctx context.Context, query interface{}, all bool) ([]string, error) {
	q, err := Classify(query)
	if err != nil {
		return []string{}, err
	}
	return c.Find(ctx, q, all)
}

// Find is Get for an already classified query.
func (c *Client) Find(ctx context.Context, q Query, all bool) ([]string, error) {
	records, err := c.Search(ctx, q)
	if err != nil {
		c.logger.WithError(err).WithField("query", describeQuery(q)).Warn("Subtitle lookup failed")
		return []string{}, err
	}
	return c.resolver.Resolve(records, all), nil
}

// Search returns the raw search records for q.
func (c *Client) Search(ctx context.Context, q Query) ([]SubtitleRecord, error) {
	criteria, err := c.Criteria(q)
	if err != nil {
		return nil, err
	}
	return c.searcher.search(ctx, criteria)
}

// Criteria builds the identification fields for q. Exactly one shape is
// produced: {moviehash, moviebytesize}, {imdbid} or {query}. File queries call
// the hasher once.
func (c *Client) Criteria(q Query) (SearchCriteria, error) {
	switch q := q.(type) {
	case ByLocalFile:
		hash, size, err := c.hasher.Hash(q.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to hash '%s': %w", q.Path, err)
		}
		return SearchCriteria{
			FieldMovieHash: hash,
			// double on the wire so sizes beyond 2GiB survive
			FieldMovieByteSize: float64(size),
		}, nil
	case ByCatalogID:
		if q.ID <= 0 {
			return nil, fmt.Errorf("%w: catalog id must be positive, got %d", coreErrors.ErrUnsupportedQuery, q.ID)
		}
		return SearchCriteria{FieldIMDbID: q.ID}, nil
	case ByFreeText:
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: empty text query", coreErrors.ErrUnsupportedQuery)
		}
		if c.config.ReleaseNameQueries {
			text = releaseTitleQuery(text)
		}
		return SearchCriteria{FieldQuery: text}, nil
	default:
		return nil, fmt.Errorf("%w: %T", coreErrors.ErrUnsupportedQuery, q)
	}
}

// IsAuthenticated reports whether the client already holds a session token.
func (c *Client) IsAuthenticated() bool {
	return c.session.IsAuthenticated()
}

func describeQuery(q Query) string {
	switch q := q.(type) {
	case ByLocalFile:
		return "file:" + q.Path
	case ByCatalogID:
		return fmt.Sprintf("imdb:%d", q.ID)
	case ByFreeText:
		return "text:" + q.Text
	default:
		return fmt.Sprintf("%T", q)
	}
}
