package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/logging"
	pb "github.com/dmitrijs2005/ghosttips/internal/proto"
	"github.com/dmitrijs2005/ghosttips/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func intercept(t *testing.T, ctx context.Context, method string) (string, bool, error) {
	t.Helper()
	s := NewGRPCServer("", logging.NewNop(), nil, nil, testSecret)

	var (
		account string
		called  bool
	)
	handler := func(ctx context.Context, req any) (any, error) {
		called = true
		account, _ = accountFrom(ctx)
		return nil, nil
	}
	_, err := s.accessTokenInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: pb.FullMethod(method)}, handler)
	return account, called, err
}

func withToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))
}

func TestAccessTokenInterceptor(t *testing.T) {
	valid, err := auth.GenerateToken("Alice", []byte(testSecret), time.Minute)
	require.NoError(t, err)
	expired, err := auth.GenerateToken("alice", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken("alice", []byte("other"), time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name     string
		ctx      context.Context
		method   string
		called   bool
		account  string
		wantCode codes.Code
	}{
		{"public without token", context.Background(), pb.MethodTopJars, true, "", codes.OK},
		{"public ignores bad token", withToken("garbage"), pb.MethodGetTipJar, true, "", codes.OK},
		{"private without token", context.Background(), pb.MethodDeposit, false, "", codes.Unauthenticated},
		{"private with valid token", withToken(valid), pb.MethodDeposit, true, "alice", codes.OK},
		{"private with expired token", withToken(expired), pb.MethodSendTip, false, "", codes.Unauthenticated},
		{"private with foreign token", withToken(foreign), pb.MethodApprove, false, "", codes.Unauthenticated},
		{"optional without token", context.Background(), pb.MethodJarsOwnedBy, true, "", codes.OK},
		{"optional with valid token", withToken(valid), pb.MethodGetEncryptedBalance, true, "alice", codes.OK},
		{"optional with bad token", withToken("garbage"), pb.MethodJarsOwnedBy, false, "", codes.Unauthenticated},
		{"unknown method needs token", context.Background(), "Mystery", false, "", codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, called, err := intercept(t, tt.ctx, tt.method)
			assert.Equal(t, tt.called, called)
			assert.Equal(t, tt.account, account)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

func TestTokenFromMetadata(t *testing.T) {
	assert.Empty(t, tokenFromMetadata(context.Background()))
	assert.Empty(t, tokenFromMetadata(metadata.NewIncomingContext(context.Background(), metadata.MD{})))
	assert.Equal(t, "abc", tokenFromMetadata(withToken("abc")))
}
