// Package proto defines the GhostTips gRPC contract. Every method takes and
// returns a google.protobuf.Struct; the field names of each message are
// listed next to its method constant. Amounts and ids travel as decimal
// strings so that uint64 values survive the trip intact.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "ghosttips.v1.GhostTips"

const (
	MethodPing                = "Ping"                // -> status
	MethodDeposit             = "Deposit"             // base_amount -> minted, reserve
	MethodWithdraw            = "Withdraw"            // token_amount -> payout, burned
	MethodCreateTipJar        = "CreateTipJar"        // name, description, category -> jar_id
	MethodSetTipJarActive     = "SetTipJarActive"     // jar_id, active -> {}
	MethodApprove             = "Approve"             // amount -> {}
	MethodSendTip             = "SendTip"             // jar_id, amount, message -> tip_count
	MethodWithdrawFromTipJar  = "WithdrawFromTipJar"  // jar_id, amount -> {}
	MethodGetTipJar           = "GetTipJar"           // jar_id -> jar
	MethodListTipJars         = "ListTipJars"         // offset, limit -> jars, total
	MethodTopJars             = "TopJars"             // n -> standings
	MethodGetEncryptedBalance = "GetEncryptedBalance" // [account] -> handle, viewers
	MethodJarsOwnedBy         = "JarsOwnedBy"         // [account] -> jar_ids
	MethodGetAllowance        = "GetAllowance"        // -> amount
	MethodReceivedTips        = "ReceivedTips"        // jar_id -> tips
	MethodDecryptBalance      = "DecryptBalance"      // -> balance
	MethodDecryptJarTotal     = "DecryptJarTotal"     // jar_id -> total
	MethodExportLeaderboard   = "ExportLeaderboard"   // n -> key, url
	MethodExchange            = "Exchange"            // -> rate, reserve, supply
)

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// GhostTipsServer is implemented by the gRPC transport.
type GhostTipsServer interface {
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateTipJar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetTipJarActive(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Approve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendTip(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WithdrawFromTipJar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTipJar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTipJars(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TopJars(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEncryptedBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	JarsOwnedBy(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAllowance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReceivedTips(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DecryptBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DecryptJarTotal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportLeaderboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Exchange(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type call func(GhostTipsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(method string, fn call) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(GhostTipsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(GhostTipsServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the GhostTips service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GhostTipsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, GhostTipsServer.Ping),
		unary(MethodDeposit, GhostTipsServer.Deposit),
		unary(MethodWithdraw, GhostTipsServer.Withdraw),
		unary(MethodCreateTipJar, GhostTipsServer.CreateTipJar),
		unary(MethodSetTipJarActive, GhostTipsServer.SetTipJarActive),
		unary(MethodApprove, GhostTipsServer.Approve),
		unary(MethodSendTip, GhostTipsServer.SendTip),
		unary(MethodWithdrawFromTipJar, GhostTipsServer.WithdrawFromTipJar),
		unary(MethodGetTipJar, GhostTipsServer.GetTipJar),
		unary(MethodListTipJars, GhostTipsServer.ListTipJars),
		unary(MethodTopJars, GhostTipsServer.TopJars),
		unary(MethodGetEncryptedBalance, GhostTipsServer.GetEncryptedBalance),
		unary(MethodJarsOwnedBy, GhostTipsServer.JarsOwnedBy),
		unary(MethodGetAllowance, GhostTipsServer.GetAllowance),
		unary(MethodReceivedTips, GhostTipsServer.ReceivedTips),
		unary(MethodDecryptBalance, GhostTipsServer.DecryptBalance),
		unary(MethodDecryptJarTotal, GhostTipsServer.DecryptJarTotal),
		unary(MethodExportLeaderboard, GhostTipsServer.ExportLeaderboard),
		unary(MethodExchange, GhostTipsServer.Exchange),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ghosttips/v1/ghosttips.proto",
}

func RegisterGhostTipsServer(s grpc.ServiceRegistrar, srv GhostTipsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// GhostTipsClient calls GhostTips methods by name.
type GhostTipsClient interface {
	Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type ghostTipsClient struct {
	cc grpc.ClientConnInterface
}

func NewGhostTipsClient(cc grpc.ClientConnInterface) GhostTipsClient {
	return &ghostTipsClient{cc: cc}
}

func (c *ghostTipsClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
