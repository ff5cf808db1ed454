package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps ledger errors onto gRPC codes. Each caller-facing error
// kind gets its own code or message so clients can tell them apart.
func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, common.ErrorInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorInsufficientBalance),
		errors.Is(err, common.ErrorInsufficientAllowance),
		errors.Is(err, common.ErrorJarInactive):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorReserveInvariant):
		return status.Error(codes.Internal, common.ErrorReserveInvariant.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

// fail logs err at a level matching its kind and converts it to a status.
func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, "request failed", "method", method, "error", err.Error())
	} else {
		s.logger.Debug(ctx, "request rejected", "method", method, "error", err.Error())
	}
	return st
}
