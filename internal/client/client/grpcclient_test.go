package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/fhe"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/dmitrijs2005/ghosttips/internal/logging"
	"github.com/dmitrijs2005/ghosttips/internal/server/auth"
	gs "github.com/dmitrijs2005/ghosttips/internal/server/grpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const secret = "client-test-secret"

func token(t *testing.T, account string) string {
	t.Helper()
	tok, err := auth.GenerateToken(account, []byte(secret), time.Minute)
	require.NoError(t, err)
	return tok
}

func newTestClient(t *testing.T, account string) *GRPCClient {
	t.Helper()

	lg, err := ledger.New(context.Background(), ledger.Config{Rate: common.DefaultExchangeRate},
		fhe.NewMemoryProvider(), ledger.NewMemoryStore(), nil, logging.NewNop())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := gs.NewGRPCServer("bufnet", logging.NewNop(), lg, nil, secret).NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	tok := ""
	if account != "" {
		tok = token(t, account)
	}
	c, err := NewGhostTipsClient("passthrough:///bufnet", tok,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGRPCClient_Flow(t *testing.T) {
	c := newTestClient(t, "bob")
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	minted, reserve, err := c.Deposit(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), minted)
	assert.Equal(t, uint64(2), reserve)

	// Bob tips his own jar here so one token covers both roles.
	id, err := c.CreateTipJar(ctx, "Mine", "desc", "education")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	require.NoError(t, c.Approve(ctx, 500))
	allowance, err := c.Allowance(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), allowance)

	count, err := c.SendTip(ctx, id, 300, "hi")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	j, err := c.TipJar(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mine", j.Name)
	assert.Equal(t, "education", j.Category)
	assert.Equal(t, uint64(1), j.TipCount)
	assert.Equal(t, []string{"bob"}, j.EncryptedTotal.Viewers)
	assert.False(t, j.CreatedAt.IsZero())

	tips, err := c.ReceivedTips(ctx, id)
	require.NoError(t, err)
	require.Len(t, tips, 1)
	assert.Equal(t, uint64(300), tips[0].Amount)
	assert.Equal(t, "hi", tips[0].Message)

	total, err := c.DecryptJarTotal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), total)

	require.NoError(t, c.WithdrawFromTipJar(ctx, id, 300))
	balance, err := c.DecryptBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), balance)

	payout, burned, err := c.Withdraw(ctx, 1500)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), payout)
	assert.Equal(t, uint64(1000), burned)

	ex, err := c.Exchange(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), ex.Rate)
	assert.Equal(t, uint64(1), ex.Reserve)
	assert.Equal(t, uint64(1000), ex.Supply)

	jars, n, err := c.ListTipJars(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	assert.Len(t, jars, 1)

	standings, err := c.TopJars(ctx, 5)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, uint64(1), standings[0].Rank)

	ids, err := c.JarsOwnedBy(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)

	ct, err := c.EncryptedBalance(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, ct.Handle)

	require.NoError(t, c.SetTipJarActive(ctx, id, false))
	_, err = c.SendTip(ctx, id, 1, "")
	assert.ErrorIs(t, err, common.ErrorJarInactive)
}

func TestGRPCClient_Errors(t *testing.T) {
	ctx := context.Background()

	anon := newTestClient(t, "")
	_, _, err := anon.Deposit(ctx, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = anon.TipJar(ctx, 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, _, err = anon.ExportLeaderboard(ctx, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)

	anon.SetAccessToken(token(t, "carol"))
	_, _, err = anon.Deposit(ctx, 0)
	assert.ErrorIs(t, err, common.ErrorInvalidInput)

	_, err = anon.SendTip(ctx, 1, 1, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, _, err = anon.ExportLeaderboard(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unimplemented")
}

func TestWithAccessToken_ReplacesExisting(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "old", "x-other", "1")
	ctx = withAccessToken(ctx, "new")

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
	assert.Equal(t, []string{"1"}, md.Get("x-other"))
}

func TestMapError(t *testing.T) {
	plain := errors.New("plain")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"non status", plain, plain},
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrUnavailable},
		{"unauthenticated", status.Error(codes.Unauthenticated, "token expired"), ErrUnauthorized},
		{"invalid", status.Error(codes.InvalidArgument, "invalid input: bad"), common.ErrorInvalidInput},
		{"not found", status.Error(codes.NotFound, "tip jar 3: not found"), common.ErrorNotFound},
		{"denied", status.Error(codes.PermissionDenied, "unauthorized"), common.ErrorUnauthorized},
		{"balance", status.Error(codes.FailedPrecondition, "insufficient balance"), common.ErrorInsufficientBalance},
		{"allowance", status.Error(codes.FailedPrecondition, "insufficient allowance"), common.ErrorInsufficientAllowance},
		{"inactive", status.Error(codes.FailedPrecondition, "tip jar 1: tip jar is inactive"), common.ErrorJarInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in), tt.want)
		})
	}

	err := mapError(status.Error(codes.InvalidArgument, "invalid input: amount must be positive"))
	assert.Equal(t, "invalid input: amount must be positive", err.Error())

	err = mapError(status.Error(codes.Internal, "internal error"))
	assert.Equal(t, "Internal: internal error", err.Error())
}
