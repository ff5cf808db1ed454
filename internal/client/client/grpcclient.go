package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/ghosttips/internal/client/models"
	"github.com/dmitrijs2005/ghosttips/internal/common"
	pb "github.com/dmitrijs2005/ghosttips/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.GhostTipsClient

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGhostTipsClient connects lazily to endpointURL; the first call dials.
func NewGhostTipsClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewGhostTipsClient(conn)
	return c, nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) call(ctx context.Context, method string, fields map[string]*structpb.Value) (*structpb.Struct, error) {
	out, err := s.client.Call(ctx, method, pb.Message(fields))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	_, err := s.call(ctx, pb.MethodPing, nil)
	return err
}

func (s *GRPCClient) Exchange(ctx context.Context) (models.Exchange, error) {
	out, err := s.call(ctx, pb.MethodExchange, nil)
	if err != nil {
		return models.Exchange{}, err
	}
	return models.Exchange{
		Rate:    pb.GetUint(out, "rate"),
		Reserve: pb.GetUint(out, "reserve"),
		Supply:  pb.GetUint(out, "supply"),
	}, nil
}

func (s *GRPCClient) Deposit(ctx context.Context, baseAmount uint64) (uint64, uint64, error) {
	out, err := s.call(ctx, pb.MethodDeposit, map[string]*structpb.Value{"base_amount": pb.U(baseAmount)})
	if err != nil {
		return 0, 0, err
	}
	return pb.GetUint(out, "minted"), pb.GetUint(out, "reserve"), nil
}

func (s *GRPCClient) Withdraw(ctx context.Context, tokenAmount uint64) (uint64, uint64, error) {
	out, err := s.call(ctx, pb.MethodWithdraw, map[string]*structpb.Value{"token_amount": pb.U(tokenAmount)})
	if err != nil {
		return 0, 0, err
	}
	return pb.GetUint(out, "payout"), pb.GetUint(out, "burned"), nil
}

func (s *GRPCClient) DecryptBalance(ctx context.Context) (uint64, error) {
	out, err := s.call(ctx, pb.MethodDecryptBalance, nil)
	if err != nil {
		return 0, err
	}
	return pb.GetUint(out, "balance"), nil
}

func ciphertext(m *structpb.Struct) models.Ciphertext {
	c := models.Ciphertext{Handle: pb.GetStr(m, "handle")}
	for _, v := range m.GetFields()["viewers"].GetListValue().GetValues() {
		c.Viewers = append(c.Viewers, v.GetStringValue())
	}
	return c
}

// EncryptedBalance returns account's ciphertext; an empty account means
// the caller.
func (s *GRPCClient) EncryptedBalance(ctx context.Context, account string) (models.Ciphertext, error) {
	var fields map[string]*structpb.Value
	if account != "" {
		fields = map[string]*structpb.Value{"account": pb.S(account)}
	}
	out, err := s.call(ctx, pb.MethodGetEncryptedBalance, fields)
	if err != nil {
		return models.Ciphertext{}, err
	}
	return ciphertext(out), nil
}

func (s *GRPCClient) CreateTipJar(ctx context.Context, name, description, category string) (uint64, error) {
	out, err := s.call(ctx, pb.MethodCreateTipJar, map[string]*structpb.Value{
		"name":        pb.S(name),
		"description": pb.S(description),
		"category":    pb.S(category),
	})
	if err != nil {
		return 0, err
	}
	return pb.GetUint(out, "jar_id"), nil
}

func (s *GRPCClient) SetTipJarActive(ctx context.Context, jarID uint64, active bool) error {
	_, err := s.call(ctx, pb.MethodSetTipJarActive, map[string]*structpb.Value{
		"jar_id": pb.U(jarID),
		"active": pb.B(active),
	})
	return err
}

func jar(m *structpb.Struct) models.Jar {
	return models.Jar{
		ID:             pb.GetUint(m, "id"),
		Owner:          pb.GetStr(m, "owner"),
		Name:           pb.GetStr(m, "name"),
		Description:    pb.GetStr(m, "description"),
		Category:       pb.GetStr(m, "category"),
		Active:         pb.GetBool(m, "active"),
		TipCount:       pb.GetUint(m, "tip_count"),
		CreatedAt:      pb.GetTime(m, "created_at"),
		EncryptedTotal: ciphertext(pb.GetObj(m, "encrypted_total")),
	}
}

func (s *GRPCClient) TipJar(ctx context.Context, jarID uint64) (models.Jar, error) {
	out, err := s.call(ctx, pb.MethodGetTipJar, map[string]*structpb.Value{"jar_id": pb.U(jarID)})
	if err != nil {
		return models.Jar{}, err
	}
	return jar(pb.GetObj(out, "jar")), nil
}

func (s *GRPCClient) ListTipJars(ctx context.Context, offset, limit uint64) ([]models.Jar, uint64, error) {
	out, err := s.call(ctx, pb.MethodListTipJars, map[string]*structpb.Value{
		"offset": pb.U(offset),
		"limit":  pb.U(limit),
	})
	if err != nil {
		return nil, 0, err
	}
	list := pb.GetList(out, "jars")
	jars := make([]models.Jar, len(list))
	for i, m := range list {
		jars[i] = jar(m)
	}
	return jars, pb.GetUint(out, "total"), nil
}

// JarsOwnedBy lists the ids of account's jars; an empty account means the
// caller.
func (s *GRPCClient) JarsOwnedBy(ctx context.Context, account string) ([]uint64, error) {
	var fields map[string]*structpb.Value
	if account != "" {
		fields = map[string]*structpb.Value{"account": pb.S(account)}
	}
	out, err := s.call(ctx, pb.MethodJarsOwnedBy, fields)
	if err != nil {
		return nil, err
	}
	return pb.GetUints(out, "jar_ids"), nil
}

func (s *GRPCClient) TopJars(ctx context.Context, n uint64) ([]models.Standing, error) {
	out, err := s.call(ctx, pb.MethodTopJars, map[string]*structpb.Value{"n": pb.U(n)})
	if err != nil {
		return nil, err
	}
	list := pb.GetList(out, "standings")
	standings := make([]models.Standing, len(list))
	for i, m := range list {
		standings[i] = models.Standing{
			Rank:     pb.GetUint(m, "rank"),
			JarID:    pb.GetUint(m, "jar_id"),
			Name:     pb.GetStr(m, "name"),
			Category: pb.GetStr(m, "category"),
			Owner:    pb.GetStr(m, "owner"),
			TipCount: pb.GetUint(m, "tip_count"),
		}
	}
	return standings, nil
}

func (s *GRPCClient) Approve(ctx context.Context, amount uint64) error {
	_, err := s.call(ctx, pb.MethodApprove, map[string]*structpb.Value{"amount": pb.U(amount)})
	return err
}

func (s *GRPCClient) Allowance(ctx context.Context) (uint64, error) {
	out, err := s.call(ctx, pb.MethodGetAllowance, nil)
	if err != nil {
		return 0, err
	}
	return pb.GetUint(out, "amount"), nil
}

func (s *GRPCClient) SendTip(ctx context.Context, jarID, amount uint64, message string) (uint64, error) {
	out, err := s.call(ctx, pb.MethodSendTip, map[string]*structpb.Value{
		"jar_id":  pb.U(jarID),
		"amount":  pb.U(amount),
		"message": pb.S(message),
	})
	if err != nil {
		return 0, err
	}
	return pb.GetUint(out, "tip_count"), nil
}

func (s *GRPCClient) ReceivedTips(ctx context.Context, jarID uint64) ([]models.Tip, error) {
	out, err := s.call(ctx, pb.MethodReceivedTips, map[string]*structpb.Value{"jar_id": pb.U(jarID)})
	if err != nil {
		return nil, err
	}
	list := pb.GetList(out, "tips")
	tips := make([]models.Tip, len(list))
	for i, m := range list {
		tips[i] = models.Tip{
			Seq:       pb.GetUint(m, "seq"),
			Sender:    pb.GetStr(m, "sender"),
			Amount:    pb.GetUint(m, "amount"),
			Message:   pb.GetStr(m, "message"),
			CreatedAt: pb.GetTime(m, "created_at"),
		}
	}
	return tips, nil
}

func (s *GRPCClient) DecryptJarTotal(ctx context.Context, jarID uint64) (uint64, error) {
	out, err := s.call(ctx, pb.MethodDecryptJarTotal, map[string]*structpb.Value{"jar_id": pb.U(jarID)})
	if err != nil {
		return 0, err
	}
	return pb.GetUint(out, "total"), nil
}

func (s *GRPCClient) WithdrawFromTipJar(ctx context.Context, jarID, amount uint64) error {
	_, err := s.call(ctx, pb.MethodWithdrawFromTipJar, map[string]*structpb.Value{
		"jar_id": pb.U(jarID),
		"amount": pb.U(amount),
	})
	return err
}

func (s *GRPCClient) ExportLeaderboard(ctx context.Context, n uint64) (string, string, error) {
	out, err := s.call(ctx, pb.MethodExportLeaderboard, map[string]*structpb.Value{"n": pb.U(n)})
	if err != nil {
		return "", "", err
	}
	return pb.GetStr(out, "key"), pb.GetStr(out, "url"), nil
}
