package errors

// ErrorCode represents an application-specific error code
type ErrorCode string

const (
	// Generic errors
	ErrUnknown  ErrorCode = "ERR_UNKNOWN"
	ErrInternal ErrorCode = "ERR_INTERNAL"

	// Profile / configuration errors. These are fatal to a resolution
	// call and surfaced verbatim to the operator.
	ErrConfigMissingField ErrorCode = "ERR_CONFIG_MISSING_FIELD"
	ErrConfigInvalid      ErrorCode = "ERR_CONFIG_INVALID"
	ErrConfigLoadFailed   ErrorCode = "ERR_CONFIG_LOAD_FAILED"
	ErrDefaultsDiscovery  ErrorCode = "ERR_DEFAULTS_DISCOVERY_FAILED"

	// Connection errors: the profile names an unknown method, or a
	// method-specific failure points at a setup/connectivity problem.
	ErrMethodInvalid       ErrorCode = "ERR_METHOD_INVALID"
	ErrKeyfileLoadFailed   ErrorCode = "ERR_KEYFILE_LOAD_FAILED"
	ErrKeyfileMalformed    ErrorCode = "ERR_KEYFILE_MALFORMED"
	ErrCredentialInvalid   ErrorCode = "ERR_CREDENTIAL_INVALID"
	ErrImpersonationFailed ErrorCode = "ERR_IMPERSONATION_FAILED"
	ErrExchangeFailed      ErrorCode = "ERR_TOKEN_EXCHANGE_FAILED"

	// Setup errors: the local environment is missing a required tool.
	ErrSDKMissing  ErrorCode = "ERR_SDK_MISSING"
	ErrLoginFailed ErrorCode = "ERR_LOGIN_FAILED"

	// Token errors
	ErrTokenFetchFailed ErrorCode = "ERR_TOKEN_FETCH_FAILED"
	ErrTokenInvalid     ErrorCode = "ERR_TOKEN_INVALID"

	// Token endpoint / subject token supplier errors
	ErrEndpointInvalid    ErrorCode = "ERR_TOKEN_ENDPOINT_INVALID"
	ErrSubjectTokenFailed ErrorCode = "ERR_SUBJECT_TOKEN_FAILED"

	// Output document errors
	ErrOutputInvalid ErrorCode = "ERR_OUTPUT_INVALID"
	ErrOutputFailed  ErrorCode = "ERR_OUTPUT_FAILED"

	// Validation errors
	ErrValidationFailed ErrorCode = "ERR_VALIDATION_FAILED"
)

// ErrorInfo contains metadata about an error code
type ErrorInfo struct {
	Code   ErrorCode
	Type   string
	Status int
	Title  string
}

// errorInfoMap maps error codes to their metadata
var errorInfoMap = map[ErrorCode]ErrorInfo{
	ErrUnknown: {
		Code:   ErrUnknown,
		Type:   "https://dbt-adapters.io/errors/unknown",
		Status: 500,
		Title:  "Unknown Error",
	},
	ErrInternal: {
		Code:   ErrInternal,
		Type:   "https://dbt-adapters.io/errors/internal",
		Status: 500,
		Title:  "Internal Error",
	},

	// Configuration errors (400)
	ErrConfigMissingField: {
		Code:   ErrConfigMissingField,
		Type:   "https://dbt-adapters.io/errors/config-missing-field",
		Status: 400,
		Title:  "Missing Configuration Field",
	},
	ErrConfigInvalid: {
		Code:   ErrConfigInvalid,
		Type:   "https://dbt-adapters.io/errors/config-invalid",
		Status: 400,
		Title:  "Invalid Configuration",
	},
	ErrConfigLoadFailed: {
		Code:   ErrConfigLoadFailed,
		Type:   "https://dbt-adapters.io/errors/config-load-failed",
		Status: 500,
		Title:  "Configuration Load Failed",
	},
	ErrDefaultsDiscovery: {
		Code:   ErrDefaultsDiscovery,
		Type:   "https://dbt-adapters.io/errors/defaults-discovery-failed",
		Status: 401,
		Title:  "Default Credentials Discovery Failed",
	},
	ErrValidationFailed: {
		Code:   ErrValidationFailed,
		Type:   "https://dbt-adapters.io/errors/validation-failed",
		Status: 400,
		Title:  "Validation Failed",
	},

	// Connection errors (500-ish, setup problems)
	ErrMethodInvalid: {
		Code:   ErrMethodInvalid,
		Type:   "https://dbt-adapters.io/errors/method-invalid",
		Status: 400,
		Title:  "Invalid Authentication Method",
	},
	ErrKeyfileLoadFailed: {
		Code:   ErrKeyfileLoadFailed,
		Type:   "https://dbt-adapters.io/errors/keyfile-load-failed",
		Status: 500,
		Title:  "Keyfile Load Failed",
	},
	ErrKeyfileMalformed: {
		Code:   ErrKeyfileMalformed,
		Type:   "https://dbt-adapters.io/errors/keyfile-malformed",
		Status: 500,
		Title:  "Malformed Keyfile",
	},
	ErrCredentialInvalid: {
		Code:   ErrCredentialInvalid,
		Type:   "https://dbt-adapters.io/errors/credential-invalid",
		Status: 401,
		Title:  "Invalid Credential",
	},
	ErrImpersonationFailed: {
		Code:   ErrImpersonationFailed,
		Type:   "https://dbt-adapters.io/errors/impersonation-failed",
		Status: 500,
		Title:  "Impersonation Failed",
	},
	ErrExchangeFailed: {
		Code:   ErrExchangeFailed,
		Type:   "https://dbt-adapters.io/errors/token-exchange-failed",
		Status: 500,
		Title:  "Token Exchange Failed",
	},

	// Setup errors (500)
	ErrSDKMissing: {
		Code:   ErrSDKMissing,
		Type:   "https://dbt-adapters.io/errors/sdk-missing",
		Status: 500,
		Title:  "Required SDK Missing",
	},
	ErrLoginFailed: {
		Code:   ErrLoginFailed,
		Type:   "https://dbt-adapters.io/errors/login-failed",
		Status: 500,
		Title:  "Interactive Login Failed",
	},

	// Token errors
	ErrTokenFetchFailed: {
		Code:   ErrTokenFetchFailed,
		Type:   "https://dbt-adapters.io/errors/token-fetch-failed",
		Status: 500,
		Title:  "Token Fetch Failed",
	},
	ErrTokenInvalid: {
		Code:   ErrTokenInvalid,
		Type:   "https://dbt-adapters.io/errors/token-invalid",
		Status: 401,
		Title:  "Invalid Token",
	},

	// Token endpoint errors
	ErrEndpointInvalid: {
		Code:   ErrEndpointInvalid,
		Type:   "https://dbt-adapters.io/errors/token-endpoint-invalid",
		Status: 400,
		Title:  "Invalid Token Endpoint",
	},
	ErrSubjectTokenFailed: {
		Code:   ErrSubjectTokenFailed,
		Type:   "https://dbt-adapters.io/errors/subject-token-failed",
		Status: 500,
		Title:  "Subject Token Retrieval Failed",
	},

	// Output errors
	ErrOutputInvalid: {
		Code:   ErrOutputInvalid,
		Type:   "https://dbt-adapters.io/errors/output-invalid",
		Status: 500,
		Title:  "Invalid Output Document",
	},
	ErrOutputFailed: {
		Code:   ErrOutputFailed,
		Type:   "https://dbt-adapters.io/errors/output-failed",
		Status: 500,
		Title:  "Output Write Failed",
	},
}

// GetErrorInfo returns metadata for an error code
func GetErrorInfo(code ErrorCode) ErrorInfo {
	if info, ok := errorInfoMap[code]; ok {
		return info
	}
	return errorInfoMap[ErrUnknown]
}

// configCodes are the codes that make up the configuration-error class:
// the profile is structurally invalid or required fields are missing.
var configCodes = map[ErrorCode]bool{
	ErrConfigMissingField: true,
	ErrConfigInvalid:      true,
	ErrConfigLoadFailed:   true,
	ErrDefaultsDiscovery:  true,
	ErrValidationFailed:   true,
	ErrEndpointInvalid:    true,
}

// connectionCodes are the codes that make up the connection-error class:
// an unrecognized method or a method-specific setup/connectivity failure.
var connectionCodes = map[ErrorCode]bool{
	ErrMethodInvalid:       true,
	ErrKeyfileLoadFailed:   true,
	ErrKeyfileMalformed:    true,
	ErrCredentialInvalid:   true,
	ErrImpersonationFailed: true,
	ErrExchangeFailed:      true,
	ErrSubjectTokenFailed:  true,
}

// setupCodes are the codes raised when the local environment lacks a
// required tool.
var setupCodes = map[ErrorCode]bool{
	ErrSDKMissing:  true,
	ErrLoginFailed: true,
}

// IsConfigError reports whether err belongs to the configuration class.
func IsConfigError(err error) bool {
	return configCodes[GetCode(err)]
}

// IsConnectionError reports whether err belongs to the connection class.
func IsConnectionError(err error) bool {
	return connectionCodes[GetCode(err)]
}

// IsSetupError reports whether err belongs to the setup class.
func IsSetupError(err error) bool {
	return setupCodes[GetCode(err)]
}
