package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/filex"
	"github.com/dmitrijs2005/ghosttips/internal/netx"
)

const exportDir = "exports"

var download = netx.DownloadFromPresignedURL

type command struct {
	usage string
	help  string
	// auth marks commands that need a signed-in account.
	auth bool
	run  func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"exchange":   {"exchange", "show rate, reserve and supply", false, (*App).exchange},
	"jar":        {"jar <id>", "show a tip jar", false, (*App).showJar},
	"jars":       {"jars [offset] [limit]", "list tip jars", false, (*App).listJars},
	"top":        {"top [n]", "leaderboard by tip count", false, (*App).top},
	"myjars":     {"myjars [account]", "ids of jars owned by an account", false, (*App).myJars},
	"ciphertext": {"ciphertext [account]", "show an encrypted balance handle", false, (*App).ciphertext},
	"deposit":    {"deposit <base amount>", "buy tokens", true, (*App).deposit},
	"withdraw":   {"withdraw <tokens>", "sell tokens for base currency", true, (*App).withdraw},
	"balance":    {"balance", "reveal your token balance", true, (*App).balance},
	"approve":    {"approve <amount>", "set your tipping allowance", true, (*App).approve},
	"allowance":  {"allowance", "show your tipping allowance", true, (*App).allowance},
	"create":     {"create", "create a tip jar", true, (*App).createJar},
	"open":       {"open <jar>", "reactivate one of your jars", true, (*App).openJar},
	"close":      {"close <jar>", "deactivate one of your jars", true, (*App).closeJar},
	"tip":        {"tip <jar> <amount> [message]", "send a tip", true, (*App).tip},
	"tips":       {"tips <jar>", "list tips received by your jar", true, (*App).tips},
	"total":      {"total <jar>", "reveal your jar's total", true, (*App).total},
	"cashout":    {"cashout <jar> <amount>", "move tokens from your jar to your balance", true, (*App).cashout},
	"export":     {"export [n] [file]", "export the leaderboard, optionally saving it under exports/", true, (*App).export},
}

func argUint(args []string, i int, name string) (uint64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%w: %s is required", common.ErrorInvalidInput, name)
	}
	n, err := strconv.ParseUint(args[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", common.ErrorInvalidInput, name)
	}
	return n, nil
}

func optUint(args []string, i int, name string, def uint64) (uint64, error) {
	if i >= len(args) {
		return def, nil
	}
	return argUint(args, i, name)
}

func optString(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i]
}

func (a *App) exchange(ctx context.Context, _ []string) error {
	ex, err := a.client.Exchange(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Rate: %d tokens per unit\nReserve: %d\nSupply: %d\n", ex.Rate, ex.Reserve, ex.Supply)
	return nil
}

func (a *App) showJar(ctx context.Context, args []string) error {
	id, err := argUint(args, 0, "jar")
	if err != nil {
		return err
	}
	j, err := a.client.TipJar(ctx, id)
	if err != nil {
		return err
	}

	status := "active"
	if !j.Active {
		status = "inactive"
	}
	fmt.Fprintf(a.out, "#%d %s [%s, %s]\n", j.ID, j.Name, j.Category, status)
	if j.Description != "" {
		fmt.Fprintln(a.out, j.Description)
	}
	fmt.Fprintf(a.out, "Owner: %s\nTips: %d\nCreated: %s\n", j.Owner, j.TipCount, j.CreatedAt.Format(time.RFC3339))
	return nil
}

func (a *App) listJars(ctx context.Context, args []string) error {
	offset, err := optUint(args, 0, "offset", 0)
	if err != nil {
		return err
	}
	limit, err := optUint(args, 1, "limit", 20)
	if err != nil {
		return err
	}

	jars, total, err := a.client.ListTipJars(ctx, offset, limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tOWNER\tTIPS\tACTIVE")
	for _, j := range jars {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%t\n", j.ID, j.Name, j.Category, j.Owner, j.TipCount, j.Active)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d of %d jars\n", len(jars), total)
	return nil
}

func (a *App) top(ctx context.Context, args []string) error {
	n, err := optUint(args, 0, "n", 10)
	if err != nil {
		return err
	}
	standings, err := a.client.TopJars(ctx, n)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tJAR\tNAME\tCATEGORY\tOWNER\tTIPS")
	for _, s := range standings {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%d\n", s.Rank, s.JarID, s.Name, s.Category, s.Owner, s.TipCount)
	}
	return tw.Flush()
}

func (a *App) myJars(ctx context.Context, args []string) error {
	account := optString(args, 0)
	if account == "" && !a.isLoggedIn() {
		return fmt.Errorf("%w: account is required when signed out", common.ErrorInvalidInput)
	}
	ids, err := a.client.JarsOwnedBy(ctx, account)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(a.out, "No jars")
		return nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	fmt.Fprintf(a.out, "Jars: %s\n", strings.Join(parts, ", "))
	return nil
}

func (a *App) ciphertext(ctx context.Context, args []string) error {
	account := optString(args, 0)
	if account == "" && !a.isLoggedIn() {
		return fmt.Errorf("%w: account is required when signed out", common.ErrorInvalidInput)
	}
	c, err := a.client.EncryptedBalance(ctx, account)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Handle: %s\nViewers: %s\n", c.Handle, strings.Join(c.Viewers, ", "))
	return nil
}

func (a *App) deposit(ctx context.Context, args []string) error {
	amount, err := argUint(args, 0, "base amount")
	if err != nil {
		return err
	}
	minted, reserve, err := a.client.Deposit(ctx, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Minted %d tokens (reserve now %d)\n", minted, reserve)
	return nil
}

func (a *App) withdraw(ctx context.Context, args []string) error {
	amount, err := argUint(args, 0, "tokens")
	if err != nil {
		return err
	}
	payout, burned, err := a.client.Withdraw(ctx, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Paid out %d, burned %d tokens\n", payout, burned)
	return nil
}

func (a *App) balance(ctx context.Context, _ []string) error {
	b, err := a.client.DecryptBalance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Balance: %d tokens\n", b)
	return nil
}

func (a *App) approve(ctx context.Context, args []string) error {
	amount, err := argUint(args, 0, "amount")
	if err != nil {
		return err
	}
	if err := a.client.Approve(ctx, amount); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Allowance set to %d\n", amount)
	return nil
}

func (a *App) allowance(ctx context.Context, _ []string) error {
	n, err := a.client.Allowance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Allowance: %d\n", n)
	return nil
}

func (a *App) createJar(ctx context.Context, _ []string) error {
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	category, err := GetSimpleText(a.reader, "Category (creator, developer, charity, education, other)", a.out)
	if err != nil {
		return err
	}

	id, err := a.client.CreateTipJar(ctx, name, description, category)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created tip jar #%d\n", id)
	return nil
}

func (a *App) setActive(ctx context.Context, args []string, active bool) error {
	id, err := argUint(args, 0, "jar")
	if err != nil {
		return err
	}
	if err := a.client.SetTipJarActive(ctx, id, active); err != nil {
		return err
	}
	state := "closed"
	if active {
		state = "opened"
	}
	fmt.Fprintf(a.out, "Tip jar #%d %s\n", id, state)
	return nil
}

func (a *App) openJar(ctx context.Context, args []string) error {
	return a.setActive(ctx, args, true)
}

func (a *App) closeJar(ctx context.Context, args []string) error {
	return a.setActive(ctx, args, false)
}

func (a *App) tip(ctx context.Context, args []string) error {
	id, err := argUint(args, 0, "jar")
	if err != nil {
		return err
	}
	amount, err := argUint(args, 1, "amount")
	if err != nil {
		return err
	}
	message := ""
	if len(args) > 2 {
		message = strings.Join(args[2:], " ")
	}

	count, err := a.client.SendTip(ctx, id, amount, message)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Tip sent, jar #%d now has %d tips\n", id, count)
	return nil
}

func (a *App) tips(ctx context.Context, args []string) error {
	id, err := argUint(args, 0, "jar")
	if err != nil {
		return err
	}
	tips, err := a.client.ReceivedTips(ctx, id)
	if err != nil {
		return err
	}
	if len(tips) == 0 {
		fmt.Fprintln(a.out, "No tips yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFROM\tAMOUNT\tWHEN\tMESSAGE")
	for _, t := range tips {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", t.Seq, t.Sender, t.Amount, t.CreatedAt.Format(time.RFC3339), t.Message)
	}
	return tw.Flush()
}

func (a *App) total(ctx context.Context, args []string) error {
	id, err := argUint(args, 0, "jar")
	if err != nil {
		return err
	}
	total, err := a.client.DecryptJarTotal(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Jar #%d holds %d tokens\n", id, total)
	return nil
}

func (a *App) cashout(ctx context.Context, args []string) error {
	id, err := argUint(args, 0, "jar")
	if err != nil {
		return err
	}
	amount, err := argUint(args, 1, "amount")
	if err != nil {
		return err
	}
	if err := a.client.WithdrawFromTipJar(ctx, id, amount); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Moved %d tokens from jar #%d to your balance\n", amount, id)
	return nil
}

func (a *App) export(ctx context.Context, args []string) error {
	n, err := optUint(args, 0, "n", 10)
	if err != nil {
		return err
	}
	key, url, err := a.client.ExportLeaderboard(ctx, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %s\n%s\n", key, url)

	name := optString(args, 1)
	if name == "" {
		return nil
	}
	data, err := download(ctx, url)
	if err != nil {
		return err
	}
	path, err := filex.SaveInSubdir(exportDir, name, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved to %s\n", path)
	return nil
}
