package common

// AuthorizationHeaderName carries the session token on outbound HTTP requests
// as "Bearer <token>".
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the session token in AuthorizationHeaderName.
const BearerPrefix = "Bearer "
