package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/client/models"
)

// fakeClient records calls and returns canned results.
type fakeClient struct {
	token   string
	calls   []string
	pingErr error
	err     error

	jars      []models.Jar
	tips      []models.Tip
	exportURL string
}

func (f *fakeClient) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeClient) Close() error                { return nil }
func (f *fakeClient) SetAccessToken(token string) { f.token = token }
func (f *fakeClient) Ping(context.Context) error  { return f.pingErr }

func (f *fakeClient) Exchange(context.Context) (models.Exchange, error) {
	return models.Exchange{Rate: 1000, Reserve: 3, Supply: 3000}, f.record("exchange")
}

func (f *fakeClient) Deposit(_ context.Context, base uint64) (uint64, uint64, error) {
	return base * 1000, base, f.record("deposit")
}

func (f *fakeClient) Withdraw(_ context.Context, tokens uint64) (uint64, uint64, error) {
	return tokens / 1000, tokens / 1000 * 1000, f.record("withdraw")
}

func (f *fakeClient) DecryptBalance(context.Context) (uint64, error) {
	return 4200, f.record("balance")
}

func (f *fakeClient) EncryptedBalance(_ context.Context, account string) (models.Ciphertext, error) {
	return models.Ciphertext{Handle: "h-" + account, Viewers: []string{account}}, f.record("ciphertext:" + account)
}

func (f *fakeClient) CreateTipJar(_ context.Context, name, description, category string) (uint64, error) {
	return 7, f.record("create:" + name + "|" + description + "|" + category)
}

func (f *fakeClient) SetTipJarActive(_ context.Context, jarID uint64, active bool) error {
	if active {
		return f.record("open")
	}
	return f.record("close")
}

func (f *fakeClient) TipJar(_ context.Context, jarID uint64) (models.Jar, error) {
	for _, j := range f.jars {
		if j.ID == jarID {
			return j, f.record("jar")
		}
	}
	return models.Jar{}, f.record("jar")
}

func (f *fakeClient) ListTipJars(_ context.Context, offset, limit uint64) ([]models.Jar, uint64, error) {
	return f.jars, uint64(len(f.jars)), f.record("jars")
}

func (f *fakeClient) JarsOwnedBy(_ context.Context, account string) ([]uint64, error) {
	return []uint64{1, 3}, f.record("myjars:" + account)
}

func (f *fakeClient) TopJars(_ context.Context, n uint64) ([]models.Standing, error) {
	return []models.Standing{{Rank: 1, JarID: 3, Name: "three", Category: "other", Owner: "carol", TipCount: 5}}, f.record("top")
}

func (f *fakeClient) Approve(context.Context, uint64) error { return f.record("approve") }

func (f *fakeClient) Allowance(context.Context) (uint64, error) {
	return 50, f.record("allowance")
}

func (f *fakeClient) SendTip(_ context.Context, jarID, amount uint64, message string) (uint64, error) {
	return 2, f.record("tip:" + message)
}

func (f *fakeClient) ReceivedTips(context.Context, uint64) ([]models.Tip, error) {
	return f.tips, f.record("tips")
}

func (f *fakeClient) DecryptJarTotal(context.Context, uint64) (uint64, error) {
	return 900, f.record("total")
}

func (f *fakeClient) WithdrawFromTipJar(context.Context, uint64, uint64) error {
	return f.record("cashout")
}

func (f *fakeClient) ExportLeaderboard(context.Context, uint64) (string, string, error) {
	url := "https://example.test/x"
	if f.exportURL != "" {
		url = f.exportURL
	}
	return "leaderboards/x.json", url, f.record("export")
}

var created = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
