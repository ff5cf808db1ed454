// Package client is the CLI's typed gRPC client for the GhostTips service.
//
// GRPCClient attaches the configured access token to every call through a
// unary interceptor and converts gRPC status errors back into the sentinel
// errors of package common, so callers can use errors.Is:
//
//	codes.Unavailable        -> ErrUnavailable
//	codes.Unauthenticated    -> ErrUnauthorized
//	codes.InvalidArgument    -> common.ErrorInvalidInput
//	codes.NotFound           -> common.ErrorNotFound
//	codes.PermissionDenied   -> common.ErrorUnauthorized
//	codes.FailedPrecondition -> the balance, allowance or inactive-jar error
//	                            named by the status message
package client
