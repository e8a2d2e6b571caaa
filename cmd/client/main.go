// client is a terminal front end for the dashboard API: OTP or password
// login, then the balance overview. The session credential is kept in a
// local SQLite store so a restart stays logged in.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"dastyar-dashboard/internal/client/api"
	"dastyar-dashboard/internal/client/session"
	"dastyar-dashboard/internal/client/store"
	"dastyar-dashboard/internal/funds/calc"
)

type consoleNavigator struct{}

func (consoleNavigator) Navigate(path string, firstLogin bool) {
	if firstLogin {
		fmt.Printf("خوش آمدید! (%s)\n", path)
		return
	}
	fmt.Printf("ورود موفق (%s)\n", path)
}

type consoleNotifier struct{}

func (consoleNotifier) Notify(message string) {
	fmt.Println(message)
}

func main() {
	baseURL := flag.String("server", "http://localhost:8080", "dashboard API base URL")
	storePath := flag.String("store", defaultStorePath(), "path to the local settings database")
	usePassword := flag.Bool("password", false, "log in with phone number and password instead of OTP")
	logout := flag.Bool("logout", false, "clear the stored credential and exit")
	flag.Parse()

	kv, err := store.Open(*storePath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer kv.Close()

	ctx := context.Background()
	if *logout {
		if err := kv.Delete(ctx, store.KeyAuthToken); err != nil {
			log.Fatalf("logout: %v", err)
		}
		fmt.Println("خارج شدید")
		return
	}

	client := api.NewClient(*baseURL, kv)
	mgr := session.NewManager(client, kv, consoleNavigator{}, consoleNotifier{}, nil)

	if !mgr.Authenticated(ctx) {
		if *usePassword {
			loginWithPassword(ctx, mgr)
		} else {
			loginWithOTP(ctx, mgr)
		}
		if !mgr.Authenticated(ctx) {
			os.Exit(1)
		}
	}

	showBalances(ctx, client)
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dastyar.db"
	}
	return filepath.Join(home, ".dastyar", "settings.db")
}

func loginWithOTP(ctx context.Context, mgr *session.Manager) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("شماره موبایل: ")
	phone, _ := reader.ReadString('\n')
	if err := mgr.SubmitPhone(ctx, strings.TrimSpace(phone)); err != nil {
		fmt.Println("شماره موبایل وارد شده معتبر نیست")
		return
	}
	if mgr.State() != session.StateCodeSent {
		return
	}

	fmt.Print("کد پیامک شده: ")
	code, _ := reader.ReadString('\n')
	code = strings.TrimSpace(code)
	if len(code) != session.CodeDigits {
		fmt.Println("کد باید ۶ رقم باشد")
		return
	}
	for i, r := range code {
		mgr.SetDigit(ctx, i, string(r))
	}
}

func loginWithPassword(ctx context.Context, mgr *session.Manager) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("شماره موبایل: ")
	phone, _ := reader.ReadString('\n')
	fmt.Print("رمز عبور: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Fatalf("read password: %v", err)
	}
	mgr.PasswordLogin(ctx, strings.TrimSpace(phone), string(password))
}

func showBalances(ctx context.Context, client *api.Client) {
	combined := client.GetAvailableFunds(ctx)
	bank := client.GetBankBalance(ctx)
	fund := client.GetFundBalance(ctx)
	for _, r := range []api.Kind{combined.Kind(), bank.Kind(), fund.Kind()} {
		if r == api.KindTransportError {
			fmt.Println("خطا در دریافت اطلاعات؛ لطفا دوباره تلاش کنید")
			return
		}
	}
	if combined.Kind() != api.KindSuccess || bank.Kind() != api.KindSuccess || fund.Kind() != api.KindSuccess {
		for _, msg := range append(combined.Messages(), append(bank.Messages(), fund.Messages()...)...) {
			fmt.Println(msg)
		}
		return
	}

	combinedReport := combined.Data()
	bankReport := bank.Data()
	fundReport := fund.Data()
	result := calc.Calculate(&combinedReport, &bankReport, &fundReport, calc.TabToman)

	fmt.Printf("\nموجودی کل: %s تومان\n", result.CombinedBalanceDisplay)
	fmt.Printf("بانک‌ها: %s تومان (%d%%)\n", result.BankBalanceDisplay, result.BankPercentage)
	for _, a := range result.BankAccounts {
		fmt.Printf("  %s: %s\n", a.AccountingName, a.BalanceDisplay)
	}
	fmt.Printf("صندوق‌ها: %s تومان (%d%%)\n", result.FundBalanceDisplay, result.FundPercentage)
	for _, a := range result.FundAccounts {
		fmt.Printf("  %s: %s\n", a.AccountingName, a.BalanceDisplay)
	}
}
