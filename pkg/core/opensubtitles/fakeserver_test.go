package opensubtitles

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	xmlrpc "github.com/kolo/xmlrpc"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- XML-RPC fixtures --- //

func xmlString(s string) string { return "<string>" + s + "</string>" }
func xmlInt(i int) string       { return fmt.Sprintf("<int>%d</int>", i) }
func xmlBool(b bool) string {
	if b {
		return "<boolean>1</boolean>"
	}
	return "<boolean>0</boolean>"
}

func xmlMember(name, value string) string {
	return "<member><name>" + name + "</name><value>" + value + "</value></member>"
}

func xmlStruct(members ...string) string {
	return "<struct>" + strings.Join(members, "") + "</struct>"
}

func xmlArray(values ...string) string {
	var b strings.Builder
	b.WriteString("<array><data>")
	for _, v := range values {
		b.WriteString("<value>" + v + "</value>")
	}
	b.WriteString("</data></array>")
	return b.String()
}

func methodResponse(value string) string {
	return `<?xml version="1.0"?><methodResponse><params><param><value>` + value + `</value></param></params></methodResponse>`
}

func faultResponse(code int, message string) string {
	return `<?xml version="1.0"?><methodResponse><fault><value>` +
		xmlStruct(xmlMember("faultCode", xmlInt(code)), xmlMember("faultString", xmlString(message))) +
		`</value></fault></methodResponse>`
}

func loginResponse(status, token string) string {
	members := []string{xmlMember("status", xmlString(status)), xmlMember("seconds", "<double>0.004</double>")}
	if token != "" {
		members = append(members, xmlMember("token", xmlString(token)))
	}
	return methodResponse(xmlStruct(members...))
}

func subtitleRecordXML(id, link string) string {
	return xmlStruct(
		xmlMember("IDSubtitleFile", xmlString(id)),
		xmlMember("SubFileName", xmlString(id+".srt")),
		xmlMember("SubDownloadLink", xmlString(link)),
	)
}

func searchResponse(status string, data string) string {
	members := []string{xmlMember("status", xmlString(status))}
	if data != "" {
		members = append(members, xmlMember("data", data))
	}
	return methodResponse(xmlStruct(members...))
}

// --- Request decoding --- //

type rpcCall struct {
	Method string
	Params []interface{}
}

type methodCallXML struct {
	MethodName string `xml:"methodName"`
	Params     []struct {
		Value struct {
			Inner string `xml:",innerxml"`
		} `xml:"value"`
	} `xml:"params>param"`
}

// decodeCall parses a methodCall body by feeding each param through the
// client's response decoder.
func decodeCall(body []byte) (rpcCall, error) {
	var mc methodCallXML
	if err := xml.Unmarshal(body, &mc); err != nil {
		return rpcCall{}, err
	}
	call := rpcCall{Method: mc.MethodName}
	for _, p := range mc.Params {
		var v interface{}
		if err := xmlrpc.Response([]byte(methodResponse(p.Value.Inner))).Unmarshal(&v); err != nil {
			return rpcCall{}, err
		}
		call.Params = append(call.Params, v)
	}
	return call, nil
}

// criteriaOf returns the single criteria struct of a SearchSubtitles call.
func criteriaOf(t *testing.T, call rpcCall) map[string]interface{} {
	t.Helper()
	require.GreaterOrEqual(t, len(call.Params), 2)
	list, ok := call.Params[1].([]interface{})
	require.True(t, ok, "criteria param should be an array, got %T", call.Params[1])
	require.Len(t, list, 1)
	criteria, ok := list[0].(map[string]interface{})
	require.True(t, ok, "criteria should be a struct, got %T", list[0])
	return criteria
}

// --- Fake OpenSubtitles server --- //

type fakeOSDb struct {
	t      *testing.T
	mu     sync.Mutex
	calls  []rpcCall
	login  func(call rpcCall) string
	search func(call rpcCall) string
}

func newFakeOSDb(t *testing.T) *fakeOSDb {
	return &fakeOSDb{
		t: t,
		login: func(rpcCall) string {
			return loginResponse("200 OK", "test-session-token")
		},
		search: func(rpcCall) string {
			return searchResponse("200 OK", xmlBool(false))
		},
	}
}

func (f *fakeOSDb) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, http.MethodPost, r.Method)
	assert.Equal(f.t, "text/xml", r.Header.Get("Content-Type"))

	body, err := io.ReadAll(r.Body)
	if !assert.NoError(f.t, err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	call, err := decodeCall(body)
	if !assert.NoError(f.t, err, "request body: %s", body) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	var resp string
	switch call.Method {
	case methodLogIn:
		resp = f.login(call)
	case methodSearchSubtitles:
		resp = f.search(call)
	default:
		resp = faultResponse(-32601, "unknown method "+call.Method)
	}
	w.Header().Set("Content-Type", "text/xml")
	_, _ = io.WriteString(w, resp)
}

func (f *fakeOSDb) callsTo(method string) []rpcCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []rpcCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestClient points a client with credentials u/p/en_US at fake.
func newTestClient(t *testing.T, fake http.Handler, mutate func(*Config)) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	config := Config{
		Credentials: Credentials{Username: "u", Password: "p", Language: "en_US"},
		Endpoint:    server.URL + "/xml-rpc",
		HTTPClient:  server.Client(),
		Hasher:      new(MockHasher),
		Logger:      quietLogger(),
	}
	if mutate != nil {
		mutate(&config)
	}
	client, err := NewClient(config)
	require.NoError(t, err, "Failed to create client for test")
	return client
}

// MockHasher is a testify mock of fileops.Hasher.
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(filePath string) (string, int64, error) {
	args := m.Called(filePath)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}
