package opensubtitles

import (
	"context"
	"fmt"
	"sync"

	coreErrors "github.com/angelospk/osdbclient/pkg/core/errors"
	"github.com/angelospk/osdbclient/pkg/core/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Credentials identify the user and the client application to the service.
type Credentials struct {
	Username  string
	Password  string
	Language  string // LogIn language and sublanguageid search filter
	UserAgent string // registered client identifier
}

// session owns the LogIn token. The token is fetched on first use and kept for
// the life of the client; there is no logout or refresh.
type session struct {
	rpc    *rpcCaller
	creds  Credentials
	logger *log.Logger

	mu     sync.RWMutex // Protects token
	token  string
	flight singleflight.Group
}

func newSession(rpc *rpcCaller, creds Credentials, logger *log.Logger) *session {
	return &session{rpc: rpc, creds: creds, logger: logger}
}

// cached returns the stored token, or "" before the first successful login.
func (s *session) cached() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Token returns the cached token or logs in. Concurrent first callers share a
// single LogIn call and its result, including its context.
func (s *session) Token(ctx context.Context) (string, error) {
	if token := s.cached(); token != "" {
		return token, nil
	}

	v, err, _ := s.flight.Do(methodLogIn, func() (interface{}, error) {
		// A flight that finished just before this one may have stored a token.
		if token := s.cached(); token != "" {
			return token, nil
		}
		token, err := s.logIn(ctx)
		metrics.LoginsTotal.WithLabelValues(outcomeOf(err)).Inc()
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *session) logIn(ctx context.Context) (string, error) {
	env, err := s.rpc.call(ctx, methodLogIn, s.creds.Username, s.creds.Password, s.creds.Language, s.creds.UserAgent)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	if env.Fault != nil {
		return "", coreErrors.NewAuthenticationFault(env.Fault.Code, env.Fault.Message)
	}
	if !env.OK() {
		return "", coreErrors.NewAuthenticationRejected(env.Status())
	}

	token, _ := env.Fields["token"].(string)
	if token == "" {
		return "", fmt.Errorf("%w: %w: LogIn reply carried no token", coreErrors.ErrAuthentication, coreErrors.ErrMalformedResponse)
	}

	s.logger.WithFields(log.Fields{
		"username": s.creds.Username,
		"token":    maskToken(token),
	}).Info("XML-RPC login successful")
	return token, nil
}

// IsAuthenticated reports whether a token is held.
func (s *session) IsAuthenticated() bool {
	return s.cached() != ""
}

// maskToken keeps only the ends of a token for logging.
func maskToken(token string) string {
	if len(token) > 8 {
		return token[:4] + "..." + token[len(token)-4:]
	}
	return "***"
}
