package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultExchangeRate is the number of tokens minted per unit of base currency.
const DefaultExchangeRate uint64 = 1000
