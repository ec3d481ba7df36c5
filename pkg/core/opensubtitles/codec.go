package opensubtitles

import (
	"errors"
	"fmt"

	"github.com/angelospk/osdbclient/internal/constants"
	coreErrors "github.com/angelospk/osdbclient/pkg/core/errors"
	xmlrpc "github.com/kolo/xmlrpc"
)

// SubtitleRecord is one entry of the SearchSubtitles data array. Its fields
// (SubDownloadLink, SubFileName, IDSubtitleFile, ...) are passed through as decoded.
type SubtitleRecord map[string]interface{}

// Fault is a remote-reported XML-RPC fault.
type Fault struct {
	Code    int
	Message string
}

// Envelope is a decoded XML-RPC reply: either a Fault or the named fields of
// the returned struct.
type Envelope struct {
	Fault  *Fault
	Fields map[string]interface{}
}

// Status returns the status field, or "" when it is missing or not a string.
func (e *Envelope) Status() string {
	if e == nil || e.Fields == nil {
		return ""
	}
	status, _ := e.Fields["status"].(string)
	return status
}

// OK reports whether the envelope is fault-free and carries the success status.
func (e *Envelope) OK() bool {
	return e != nil && e.Fault == nil && e.Status() == constants.StatusOK
}

// records extracts the SearchSubtitles data array. The service answers
// data=false when nothing matched; absent, nil and false all mean no records.
// Any other shape is rejected as a whole.
func (e *Envelope) records() ([]SubtitleRecord, error) {
	raw, ok := e.Fields["data"]
	if !ok || raw == nil {
		return []SubtitleRecord{}, nil
	}

	switch v := raw.(type) {
	case bool:
		if !v {
			return []SubtitleRecord{}, nil
		}
		return nil, fmt.Errorf("%w: unexpected data=true", coreErrors.ErrMalformedResponse)
	case []interface{}:
		records := make([]SubtitleRecord, 0, len(v))
		for i, item := range v {
			fields, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: data[%d] is %T, want struct", coreErrors.ErrMalformedResponse, i, item)
			}
			records = append(records, SubtitleRecord(fields))
		}
		return records, nil
	default:
		return nil, fmt.Errorf("%w: data is %T, want array", coreErrors.ErrMalformedResponse, raw)
	}
}

// EncodeRequest encodes an XML-RPC methodCall with positional arguments.
func EncodeRequest(method string, args ...interface{}) ([]byte, error) {
	body, err := xmlrpc.EncodeMethodCall(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}
	return body, nil
}

// DecodeEnvelope decodes a methodResponse body. Remote faults are returned
// inside the Envelope; only unreadable bodies produce an error, which wraps
// coreErrors.ErrMalformedResponse.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	resp := xmlrpc.Response(body)

	if err := resp.Err(); err != nil {
		var fault xmlrpc.FaultError
		if errors.As(err, &fault) {
			return &Envelope{Fault: &Fault{Code: fault.Code, Message: fault.String}}, nil
		}
		return nil, fmt.Errorf("%w: failed to decode fault: %v", coreErrors.ErrMalformedResponse, err)
	}

	var raw interface{}
	if err := resp.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", coreErrors.ErrMalformedResponse, err)
	}

	fields, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: response is %T, want struct", coreErrors.ErrMalformedResponse, raw)
	}
	return &Envelope{Fields: fields}, nil
}
