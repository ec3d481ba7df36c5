package constants

// DefaultEndpoint is the OpenSubtitles XML-RPC endpoint.
const DefaultEndpoint = "https://api.opensubtitles.org:443/xml-rpc"

// DefaultLanguage is used for LogIn and as the sublanguageid search filter.
const DefaultLanguage = "en_US"

// DefaultUserAgent identifies the client to the service. Production clients
// must register their own user agent with OpenSubtitles.
const DefaultUserAgent = "OSTestUserAgent"

// StatusOK is the status string of every successful XML-RPC reply.
const StatusOK = "200 OK"
