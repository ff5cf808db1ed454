package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

var preconditions = []error{
	common.ErrorInsufficientBalance,
	common.ErrorInsufficientAllowance,
	common.ErrorJarInactive,
}

func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unavailable:
		return ErrUnavailable
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorInvalidInput, strings.TrimPrefix(st.Message(), common.ErrorInvalidInput.Error()+": "))
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.PermissionDenied:
		return common.ErrorUnauthorized
	case codes.FailedPrecondition:
		for _, e := range preconditions {
			if strings.Contains(st.Message(), e.Error()) {
				return e
			}
		}
	}
	return fmt.Errorf("%s: %s", st.Code(), st.Message())
}
