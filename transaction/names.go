package transaction

// Names of the anchored variables a transaction carries
const (
	VariableRemoteAddr      = "REMOTE_ADDR"
	VariableRemotePort      = "REMOTE_PORT"
	VariableServerAddr      = "SERVER_ADDR"
	VariableServerName      = "SERVER_NAME"
	VariableServerPort      = "SERVER_PORT"
	VariableUniqueID        = "UNIQUE_ID"
	VariableRequestLine     = "REQUEST_LINE"
	VariableRequestMethod   = "REQUEST_METHOD"
	VariableRequestProtocol = "REQUEST_PROTOCOL"
	VariableRequestURI      = "REQUEST_URI"
	VariableRequestURIRaw   = "REQUEST_URI_RAW"
	VariableRequestFilename = "REQUEST_FILENAME"
	VariableRequestBasename = "REQUEST_BASENAME"
	VariableQueryString     = "QUERY_STRING"

	SetArgs                = "ARGS"
	SetArgsGet             = "ARGS_GET"
	SetArgsPost            = "ARGS_POST"
	SetRequestHeaders      = "REQUEST_HEADERS"
	SetRequestHeadersNames = "REQUEST_HEADERS_NAMES"
	SetRequestCookies      = "REQUEST_COOKIES"
	SetRequestCookiesNames = "REQUEST_COOKIES_NAMES"

	ProxyArgsNames     = "ARGS_NAMES"
	ProxyArgsGetNames  = "ARGS_GET_NAMES"
	ProxyArgsPostNames = "ARGS_POST_NAMES"
)

// VariableNames lists every single-valued anchored variable
var VariableNames = []string{
	"RESPONSE_CONTENT_TYPE",
	"ARGS_COMBINED_SIZE",
	"AUTH_TYPE",
	"FILES_COMBINED_SIZE",
	"FULL_REQUEST",
	"FULL_REQUEST_LENGTH",
	"INBOUND_DATA_ERROR",
	"MATCHED_VAR",
	"MATCHED_VAR_NAME",
	"MSC_PCRE_ERROR",
	"MSC_PCRE_LIMITS_EXCEEDED",
	"MULTIPART_BOUNDARY_QUOTED",
	"MULTIPART_BOUNDARY_WHITESPACE",
	"MULTIPART_CRLF_LF_LINES",
	"MULTIPART_DATA_AFTER",
	"MULTIPART_DATA_BEFORE",
	"MULTIPART_FILE_LIMIT_EXCEEDED",
	"MULTIPART_HEADER_FOLDING",
	"MULTIPART_INVALID_HEADER_FOLDING",
	"MULTIPART_INVALID_PART",
	"MULTIPART_INVALID_QUOTING",
	"MULTIPART_LF_LINE",
	"MULTIPART_MISSING_SEMICOLON",
	"MULTIPART_STRICT_ERROR",
	"MULTIPART_UNMATCHED_BOUNDARY",
	"OUTBOUND_DATA_ERROR",
	"PATH_INFO",
	VariableQueryString,
	VariableRemoteAddr,
	"REMOTE_HOST",
	VariableRemotePort,
	"REQBODY_ERROR",
	"REQBODY_ERROR_MSG",
	"REQBODY_PROCESSOR_ERROR",
	"REQBODY_PROCESSOR_ERROR_MSG",
	"REQBODY_PROCESSOR",
	VariableRequestBasename,
	"REQUEST_BODY",
	"REQUEST_BODY_LENGTH",
	VariableRequestFilename,
	VariableRequestLine,
	VariableRequestMethod,
	VariableRequestProtocol,
	VariableRequestURI,
	VariableRequestURIRaw,
	"RESOURCE",
	"RESPONSE_BODY",
	"RESPONSE_CONTENT_LENGTH",
	"RESPONSE_PROTOCOL",
	"RESPONSE_STATUS",
	VariableServerAddr,
	VariableServerName,
	VariableServerPort,
	"SESSIONID",
	VariableUniqueID,
	"URLENCODED_ERROR",
	"USERID",
}

// SetVariableNames lists every multi-valued anchored variable
var SetVariableNames = []string{
	SetArgs,
	SetArgsGet,
	SetArgsPost,
	SetRequestHeadersNames,
	"RESPONSE_HEADERS_NAMES",
	"FILES_SIZES",
	"FILES_NAMES",
	"FILES_TMP_CONTENT",
	"MULTIPART_FILENAME",
	"MULTIPART_NAME",
	"MATCHED_VARS_NAMES",
	"MATCHED_VARS",
	"FILES",
	SetRequestCookies,
	SetRequestHeaders,
	"RESPONSE_HEADERS",
	"GEO",
	SetRequestCookiesNames,
	"FILES_TMPNAMES",
	"MULTIPART_PART_HEADERS",
}

// ProxyFounts maps every key-name view to the set it is derived from
var ProxyFounts = map[string]string{
	ProxyArgsNames:     SetArgs,
	ProxyArgsGetNames:  SetArgsGet,
	ProxyArgsPostNames: SetArgsPost,
}
