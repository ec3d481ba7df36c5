package opensubtitles

import (
	"context"
	"errors"
	"fmt"
	"time"

	coreErrors "github.com/angelospk/osdbclient/pkg/core/errors"
	"github.com/angelospk/osdbclient/pkg/core/metrics"
	log "github.com/sirupsen/logrus"
)

// XML-RPC method names used by the client.
const (
	methodLogIn           = "LogIn"
	methodSearchSubtitles = "SearchSubtitles"
)

// Transport performs one blocking POST of an encoded request and returns the
// raw response body.
type Transport interface {
	Post(ctx context.Context, body []byte) ([]byte, error)
}

// rpcCaller runs encode, send and decode for a single XML-RPC method call.
type rpcCaller struct {
	transport Transport
	logger    *log.Logger
}

// call returns the decoded envelope. A fault or bad status is not an error at
// this level; callers interpret the envelope.
func (c *rpcCaller) call(ctx context.Context, method string, args ...interface{}) (*Envelope, error) {
	body, err := EncodeRequest(method, args...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	respBody, err := c.transport.Post(ctx, body)
	elapsed := time.Since(start)
	metrics.RPCCallDuration.WithLabelValues(method).Observe(elapsed.Seconds())

	if err != nil {
		metrics.RPCCallsTotal.WithLabelValues(method, metrics.OutcomeTransportError).Inc()
		if !errors.Is(err, coreErrors.ErrTransport) {
			err = fmt.Errorf("%w: %w", coreErrors.ErrTransport, err)
		}
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	env, err := DecodeEnvelope(respBody)
	if err != nil {
		metrics.RPCCallsTotal.WithLabelValues(method, metrics.OutcomeDecodeError).Inc()
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	outcome := metrics.OutcomeOK
	switch {
	case env.Fault != nil:
		outcome = metrics.OutcomeFault
	case !env.OK():
		outcome = metrics.OutcomeRejected
	}
	metrics.RPCCallsTotal.WithLabelValues(method, outcome).Inc()

	c.logger.WithFields(log.Fields{
		"method":   method,
		"outcome":  outcome,
		"status":   env.Status(),
		"duration": elapsed,
	}).Debug("XML-RPC call finished")

	return env, nil
}

// outcomeOf maps an error returned by a call site to a metrics outcome.
func outcomeOf(err error) string {
	var fault *coreErrors.FaultError
	var rejected *coreErrors.RejectedError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &fault):
		return metrics.OutcomeFault
	case errors.As(err, &rejected):
		return metrics.OutcomeRejected
	case errors.Is(err, coreErrors.ErrTransport):
		return metrics.OutcomeTransportError
	default:
		return metrics.OutcomeDecodeError
	}
}
