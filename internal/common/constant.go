package common

// AuthorizationHeaderName is the HTTP header used to carry the access token
// on authenticated API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the expected scheme prefix of the Authorization header value.
const BearerPrefix = "Bearer "

// TripDateLayout is the wire and storage format of a trip date. Trips carry a
// calendar date only, never a time component.
const TripDateLayout = "2006-01-02"
