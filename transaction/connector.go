package transaction

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrife/warden/collection"
	"go.uber.org/zap"
)

// The raw request is laid out as the request line followed by one
// "name: value" line per header, every line ending in "\n". Offsets of
// captured values point into that layout.

// ProcessConnection records both ends of the connection and binds the
// IP collection to the client address.
func (t *Transaction) ProcessConnection(clientIP string, clientPort int, serverIP string, serverPort int) {
	t.variables[VariableRemoteAddr].Set(clientIP, 0)
	t.variables[VariableRemotePort].Set(strconv.Itoa(clientPort), 0)
	t.variables[VariableServerAddr].Set(serverIP, 0)
	t.variables[VariableServerPort].Set(strconv.Itoa(serverPort), 0)

	if !t.collections.Bind(collection.IP, clientIP) {
		t.logger.Debug("could not bind IP collection", zap.String("client_ip", clientIP))
	}

	t.logger.Debug("connection processed",
		zap.String("client_ip", clientIP),
		zap.Int("client_port", clientPort),
		zap.String("server_ip", serverIP),
		zap.Int("server_port", serverPort),
	)
}

func unescape(s string, unescaper func(string) (string, error)) string {
	unescaped, err := unescaper(s)

	if err != nil {
		return s
	}

	return unescaped
}

// ProcessURI records the request line "method uri HTTP/protocol" and
// everything derived from it, including the query string arguments.
func (t *Transaction) ProcessURI(uri string, method string, protocol string) {
	protocol = "HTTP/" + protocol
	uriOffset := len(method) + 1
	protocolOffset := uriOffset + len(uri) + 1
	requestLine := method + " " + uri + " " + protocol

	t.variables[VariableRequestMethod].Set(method, 0)
	t.variables[VariableRequestURIRaw].Set(uri, uriOffset)
	t.variables[VariableRequestURI].SetWithLength(unescape(uri, url.PathUnescape), uriOffset, len(uri))
	t.variables[VariableRequestProtocol].Set(protocol, protocolOffset)

	line := t.variables[VariableRequestLine]
	line.Set(method, 0)
	line.Append(uri, uriOffset, true)
	line.Append(protocol, protocolOffset, true)

	path, query, hasQuery := strings.Cut(uri, "?")

	t.variables[VariableRequestFilename].SetWithLength(unescape(path, url.PathUnescape), uriOffset, len(path))

	basenameOffset := strings.LastIndex(path, "/") + 1
	t.variables[VariableRequestBasename].SetWithLength(unescape(path[basenameOffset:], url.PathUnescape), uriOffset+basenameOffset, len(path)-basenameOffset)

	if hasQuery {
		queryOffset := uriOffset + len(path) + 1

		t.variables[VariableQueryString].Set(query, queryOffset)
		t.addQueryArguments(query, queryOffset)
	}

	t.offset = len(requestLine) + 1

	t.logger.Debug("uri processed", zap.String("method", method), zap.String("uri", uri), zap.String("protocol", protocol))
}

// addQueryArguments splits query into ARGS_GET and ARGS. Offsets point at
// each value, or at the key for arguments without one.
func (t *Transaction) addQueryArguments(query string, offset int) {
	argsGet := t.sets.Lookup(SetArgsGet)
	args := t.sets.Lookup(SetArgs)

	for _, pair := range strings.Split(query, "&") {
		if pair != "" {
			key, value, hasValue := strings.Cut(pair, "=")
			key = unescape(key, url.QueryUnescape)
			valueOffset := offset

			if hasValue {
				valueOffset += strings.Index(pair, "=") + 1
			}

			rawLength := len(pair) - (valueOffset - offset)
			value = unescape(value, url.QueryUnescape)

			argsGet.SetWithLength(key, value, valueOffset, rawLength)
			args.SetWithLength(key, value, valueOffset, rawLength)
		}

		offset += len(pair) + 1
	}
}

// AddRequestHeader records one request header. Cookie headers also fill
// REQUEST_COOKIES and the Host header fills SERVER_NAME.
func (t *Transaction) AddRequestHeader(name string, value string) {
	nameOffset := t.offset
	valueOffset := nameOffset + len(name) + 2

	t.sets.Lookup(SetRequestHeaders).Set(name, value, valueOffset)
	t.sets.Lookup(SetRequestHeadersNames).Set(name, name, nameOffset)

	switch strings.ToLower(name) {
	case "cookie":
		t.addCookies(value, valueOffset)
	case "host":
		host := value

		if h, _, err := net.SplitHostPort(value); err == nil {
			host = h
		}

		t.variables[VariableServerName].SetWithLength(host, valueOffset, len(host))
	}

	t.offset = valueOffset + len(value) + 1
}

func (t *Transaction) addCookies(header string, offset int) {
	cookies := t.sets.Lookup(SetRequestCookies)
	names := t.sets.Lookup(SetRequestCookiesNames)

	for _, cookie := range strings.Split(header, ";") {
		trimmed := strings.TrimLeft(cookie, " ")
		keyOffset := offset + len(cookie) - len(trimmed)
		offset += len(cookie) + 1

		if trimmed == "" {
			continue
		}

		key, value, _ := strings.Cut(trimmed, "=")
		valueOffset := keyOffset + len(key) + 1

		cookies.Set(key, value, valueOffset)
		names.Set(key, key, keyOffset)
	}
}
