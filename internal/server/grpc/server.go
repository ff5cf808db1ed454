// Package grpc exposes the ledger over the GhostTips gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/ghosttips/internal/fhe"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	"github.com/dmitrijs2005/ghosttips/internal/logging"
	pb "github.com/dmitrijs2005/ghosttips/internal/proto"
	"google.golang.org/grpc"
)

// Ledger is the subset of *ledger.Ledger the transport needs.
type Ledger interface {
	Deposit(ctx context.Context, account string, baseAmount uint64) (uint64, error)
	Withdraw(ctx context.Context, account string, tokenAmount uint64) (uint64, uint64, error)
	CreateTipJar(ctx context.Context, owner string, spec ledger.JarSpec) (uint64, error)
	SetTipJarActive(ctx context.Context, caller string, jarID uint64, active bool) error
	Approve(ctx context.Context, owner string, amount uint64) error
	SendTip(ctx context.Context, sender string, jarID uint64, amount uint64, message string) (uint64, error)
	WithdrawFromTipJar(ctx context.Context, caller string, jarID uint64, amount uint64) error
	TipJar(jarID uint64) (ledger.TipJar, error)
	TipJarCount() uint64
	ListTipJars(offset, limit int) []ledger.TipJar
	TopJars(n int) []ledger.Standing
	EncryptedBalance(account string) (fhe.Value, error)
	JarsOwnedBy(account string) ([]uint64, error)
	Allowance(owner string) (uint64, error)
	ReceivedTips(caller string, jarID uint64) ([]ledger.Tip, error)
	Reveal(ctx context.Context, caller string, v fhe.Value) (uint64, error)
	DecryptBalance(ctx context.Context, caller string) (uint64, error)
	DecryptJarTotal(ctx context.Context, caller string, jarID uint64) (uint64, error)
	Exchange() ledger.Exchange
}

// Exporter uploads a leaderboard snapshot and returns its object key and a
// download URL.
type Exporter interface {
	Export(ctx context.Context, n int) (key string, url string, err error)
}

type GRPCServer struct {
	address   string
	ledger    Ledger
	exporter  Exporter
	logger    logging.Logger
	jwtSecret []byte
}

// NewGRPCServer builds the server. exporter may be nil, in which case
// ExportLeaderboard reports Unimplemented.
func NewGRPCServer(address string, l logging.Logger, lg Ledger, exporter Exporter, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		ledger:    lg,
		exporter:  exporter,
		logger:    l.With("module", "grpc_server"),
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds the grpc.Server with the interceptor chain and the
// service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterGhostTipsServer(srv, s)
	return srv
}

// Run serves until ctx is done, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	return srv.Serve(listen)
}
