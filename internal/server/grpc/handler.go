package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/fhe"
	"github.com/dmitrijs2005/ghosttips/internal/ledger"
	pb "github.com/dmitrijs2005/ghosttips/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	defaultTopN      = 10
	maxTopN          = 100
)

// caller returns the authenticated account. The interceptor guarantees one
// for every method that reaches here through it.
func caller(ctx context.Context) (string, error) {
	a, ok := accountFrom(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return a, nil
}

// targetAccount reads the optional "account" field and falls back to the
// caller.
func targetAccount(ctx context.Context, req *structpb.Struct) (string, error) {
	account, err := pb.Str(req, "account")
	if err != nil {
		return "", err
	}
	if account != "" {
		return account, nil
	}
	if a, ok := accountFrom(ctx); ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: field %q: missing", common.ErrorInvalidInput, "account")
}

func encrypted(v fhe.Value) *structpb.Value {
	return pb.Obj(map[string]*structpb.Value{
		"handle":  pb.S(v.Handle),
		"viewers": pb.Strings(v.Viewers),
	})
}

func jarValue(j ledger.TipJar) *structpb.Value {
	return pb.Obj(map[string]*structpb.Value{
		"id":              pb.U(j.ID),
		"owner":           pb.S(j.Owner),
		"name":            pb.S(j.Name),
		"description":     pb.S(j.Description),
		"category":        pb.S(string(j.Category)),
		"active":          pb.B(j.Active),
		"tip_count":       pb.U(j.TipCount),
		"created_at":      pb.T(j.CreatedAt),
		"encrypted_total": encrypted(j.EncryptedTotal),
	})
}

func standingValue(s ledger.Standing) *structpb.Value {
	return pb.Obj(map[string]*structpb.Value{
		"rank":      pb.U(uint64(s.Rank)),
		"jar_id":    pb.U(s.JarID),
		"name":      pb.S(s.Name),
		"category":  pb.S(string(s.Category)),
		"owner":     pb.S(s.Owner),
		"tip_count": pb.U(s.TipCount),
	})
}

// clamp reads an optional count field, applying def when it is absent and
// capping it at limit.
func clamp(req *structpb.Struct, key string, def, limit uint64) (int, error) {
	n, err := pb.OptUint(req, key, def)
	if err != nil {
		return 0, err
	}
	return int(min(n, limit)), nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return pb.Message(map[string]*structpb.Value{"status": pb.S("ok")}), nil
}

func (s *GRPCServer) Exchange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ex := s.ledger.Exchange()
	return pb.Message(map[string]*structpb.Value{
		"rate":    pb.U(ex.Rate),
		"reserve": pb.U(ex.Reserve),
		"supply":  pb.U(ex.Supply),
	}), nil
}

func (s *GRPCServer) Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := pb.Uint(req, "base_amount")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodDeposit, err)
	}

	minted, err := s.ledger.Deposit(ctx, account, amount)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodDeposit, err)
	}

	return pb.Message(map[string]*structpb.Value{
		"minted":  pb.U(minted),
		"reserve": pb.U(s.ledger.Exchange().Reserve),
	}), nil
}

func (s *GRPCServer) Withdraw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := pb.Uint(req, "token_amount")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodWithdraw, err)
	}

	payout, burned, err := s.ledger.Withdraw(ctx, account, amount)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodWithdraw, err)
	}

	return pb.Message(map[string]*structpb.Value{
		"payout": pb.U(payout),
		"burned": pb.U(burned),
	}), nil
}

func (s *GRPCServer) CreateTipJar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	var spec ledger.JarSpec
	if spec.Name, err = pb.Str(req, "name"); err != nil {
		return nil, s.fail(ctx, pb.MethodCreateTipJar, err)
	}
	if spec.Description, err = pb.Str(req, "description"); err != nil {
		return nil, s.fail(ctx, pb.MethodCreateTipJar, err)
	}
	if spec.Category, err = pb.Str(req, "category"); err != nil {
		return nil, s.fail(ctx, pb.MethodCreateTipJar, err)
	}

	id, err := s.ledger.CreateTipJar(ctx, account, spec)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodCreateTipJar, err)
	}

	return pb.Message(map[string]*structpb.Value{"jar_id": pb.U(id)}), nil
}

func (s *GRPCServer) SetTipJarActive(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	jarID, err := pb.Uint(req, "jar_id")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodSetTipJarActive, err)
	}
	active, err := pb.Bool(req, "active")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodSetTipJarActive, err)
	}

	if err := s.ledger.SetTipJarActive(ctx, account, jarID, active); err != nil {
		return nil, s.fail(ctx, pb.MethodSetTipJarActive, err)
	}
	return pb.Message(nil), nil
}

func (s *GRPCServer) Approve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := pb.Uint(req, "amount")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodApprove, err)
	}

	if err := s.ledger.Approve(ctx, account, amount); err != nil {
		return nil, s.fail(ctx, pb.MethodApprove, err)
	}
	return pb.Message(nil), nil
}

func (s *GRPCServer) SendTip(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	jarID, err := pb.Uint(req, "jar_id")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodSendTip, err)
	}
	amount, err := pb.Uint(req, "amount")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodSendTip, err)
	}
	message, err := pb.Str(req, "message")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodSendTip, err)
	}

	count, err := s.ledger.SendTip(ctx, account, jarID, amount, message)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodSendTip, err)
	}
	return pb.Message(map[string]*structpb.Value{"tip_count": pb.U(count)}), nil
}

func (s *GRPCServer) WithdrawFromTipJar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	jarID, err := pb.Uint(req, "jar_id")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodWithdrawFromTipJar, err)
	}
	amount, err := pb.Uint(req, "amount")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodWithdrawFromTipJar, err)
	}

	if err := s.ledger.WithdrawFromTipJar(ctx, account, jarID, amount); err != nil {
		return nil, s.fail(ctx, pb.MethodWithdrawFromTipJar, err)
	}
	return pb.Message(nil), nil
}

func (s *GRPCServer) GetTipJar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	jarID, err := pb.Uint(req, "jar_id")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodGetTipJar, err)
	}

	jar, err := s.ledger.TipJar(jarID)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodGetTipJar, err)
	}
	return pb.Message(map[string]*structpb.Value{"jar": jarValue(jar)}), nil
}

func (s *GRPCServer) ListTipJars(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	offset, err := pb.OptUint(req, "offset", 0)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodListTipJars, err)
	}
	limit, err := clamp(req, "limit", defaultListLimit, maxListLimit)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodListTipJars, err)
	}

	total := s.ledger.TipJarCount()
	var jars []*structpb.Value
	if offset < total {
		for _, j := range s.ledger.ListTipJars(int(offset), limit) {
			jars = append(jars, jarValue(j))
		}
	}

	return pb.Message(map[string]*structpb.Value{
		"jars":  pb.List(jars),
		"total": pb.U(total),
	}), nil
}

func (s *GRPCServer) TopJars(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	n, err := clamp(req, "n", defaultTopN, maxTopN)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodTopJars, err)
	}

	standings := s.ledger.TopJars(n)
	values := make([]*structpb.Value, len(standings))
	for i, st := range standings {
		values[i] = standingValue(st)
	}
	return pb.Message(map[string]*structpb.Value{"standings": pb.List(values)}), nil
}

func (s *GRPCServer) GetEncryptedBalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := targetAccount(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodGetEncryptedBalance, err)
	}

	v, err := s.ledger.EncryptedBalance(account)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodGetEncryptedBalance, err)
	}
	return pb.Message(map[string]*structpb.Value{
		"handle":  pb.S(v.Handle),
		"viewers": pb.Strings(v.Viewers),
	}), nil
}

func (s *GRPCServer) JarsOwnedBy(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := targetAccount(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodJarsOwnedBy, err)
	}

	ids, err := s.ledger.JarsOwnedBy(account)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodJarsOwnedBy, err)
	}
	values := make([]*structpb.Value, len(ids))
	for i, id := range ids {
		values[i] = pb.U(id)
	}
	return pb.Message(map[string]*structpb.Value{"jar_ids": pb.List(values)}), nil
}

func (s *GRPCServer) GetAllowance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	amount, err := s.ledger.Allowance(account)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodGetAllowance, err)
	}
	return pb.Message(map[string]*structpb.Value{"amount": pb.U(amount)}), nil
}

// ReceivedTips lists a jar's tips for its owner, revealing each amount.
func (s *GRPCServer) ReceivedTips(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	jarID, err := pb.Uint(req, "jar_id")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodReceivedTips, err)
	}

	tips, err := s.ledger.ReceivedTips(account, jarID)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodReceivedTips, err)
	}

	values := make([]*structpb.Value, len(tips))
	for i, t := range tips {
		amount, err := s.ledger.Reveal(ctx, account, t.EncryptedAmount)
		if err != nil {
			return nil, s.fail(ctx, pb.MethodReceivedTips, err)
		}
		values[i] = pb.Obj(map[string]*structpb.Value{
			"seq":        pb.U(t.Seq),
			"sender":     pb.S(t.Sender),
			"amount":     pb.U(amount),
			"message":    pb.S(t.Message),
			"created_at": pb.T(t.CreatedAt),
		})
	}
	return pb.Message(map[string]*structpb.Value{"tips": pb.List(values)}), nil
}

func (s *GRPCServer) DecryptBalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.DecryptBalance(ctx, account)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodDecryptBalance, err)
	}
	return pb.Message(map[string]*structpb.Value{"balance": pb.U(balance)}), nil
}

func (s *GRPCServer) DecryptJarTotal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	jarID, err := pb.Uint(req, "jar_id")
	if err != nil {
		return nil, s.fail(ctx, pb.MethodDecryptJarTotal, err)
	}

	total, err := s.ledger.DecryptJarTotal(ctx, account, jarID)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodDecryptJarTotal, err)
	}
	return pb.Message(map[string]*structpb.Value{"total": pb.U(total)}), nil
}

func (s *GRPCServer) ExportLeaderboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.exporter == nil {
		return nil, status.Error(codes.Unimplemented, "leaderboard export is not configured")
	}
	n, err := clamp(req, "n", defaultTopN, maxTopN)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodExportLeaderboard, err)
	}

	key, url, err := s.exporter.Export(ctx, n)
	if err != nil {
		return nil, s.fail(ctx, pb.MethodExportLeaderboard, err)
	}
	return pb.Message(map[string]*structpb.Value{
		"key": pb.S(key),
		"url": pb.S(url),
	}), nil
}
