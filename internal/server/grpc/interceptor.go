package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	pb "github.com/dmitrijs2005/ghosttips/internal/proto"
	"github.com/dmitrijs2005/ghosttips/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accountKey ctxKey = "account"

// Methods anyone may call without a token.
var publicMethods = map[string]struct{}{
	pb.FullMethod(pb.MethodPing):        {},
	pb.FullMethod(pb.MethodGetTipJar):   {},
	pb.FullMethod(pb.MethodListTipJars): {},
	pb.FullMethod(pb.MethodTopJars):     {},
	pb.FullMethod(pb.MethodExchange):    {},
}

// Methods where a token is optional; it only supplies a default account.
var optionalAuthMethods = map[string]struct{}{
	pb.FullMethod(pb.MethodGetEncryptedBalance): {},
	pb.FullMethod(pb.MethodJarsOwnedBy):         {},
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AccessTokenHeaderName)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// accessTokenInterceptor resolves the caller's account from the access
// token. Every method outside publicMethods requires one.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	token := tokenFromMetadata(ctx)
	if token == "" {
		if _, ok := optionalAuthMethods[info.FullMethod]; ok {
			return handler(ctx, req)
		}
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	account, err := auth.AccountFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	return handler(context.WithValue(ctx, accountKey, account), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start).String())
	return resp, err
}

// accountFrom returns the authenticated caller, if any.
func accountFrom(ctx context.Context) (string, bool) {
	a, ok := ctx.Value(accountKey).(string)
	return a, ok && a != ""
}
