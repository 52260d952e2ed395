package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"arcadia-news/internal/api"
	"arcadia-news/internal/models"
)

// DashboardViewModel holds data for the account dashboard.
type DashboardViewModel struct {
	Page
	Profile      *models.User
	Balance      *models.WalletBalance
	MyArticles   []models.Article
	Transactions []models.Transaction
	// Tab is the active payment-history filter: all, earned or spent.
	Tab string
}

// Dashboard renders the account page: profile, balance, the viewer's
// articles and the payment history.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	viewer := ViewerFromContext(r)
	vm := DashboardViewModel{Page: h.page(r), Tab: "all"}

	switch r.URL.Query().Get("tab") {
	case "earned":
		vm.Tab = "earned"
	case "spent":
		vm.Tab = "spent"
	}

	profile, err := h.client.Profile(r.Context(), viewer.Token)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to load profile")
		vm.Profile = viewer.User
	} else {
		vm.Profile = profile
	}

	vm.Balance = h.fetchBalance(r.Context(), viewer.Token, true)

	if viewer.User != nil {
		list, err := h.client.ListArticles(r.Context(), api.ArticleParams{
			Page:   1,
			Limit:  50,
			Author: viewer.User.ID,
		})
		if err != nil {
			h.log.Warn().Err(err).Msg("failed to load own articles")
		} else {
			vm.MyArticles = list.Items
		}
	}

	transactions, err := h.client.WalletTransactions(r.Context(), viewer.Token)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to load transactions")
	} else {
		vm.Transactions = filterTransactions(transactions, vm.Tab)
	}

	h.render(w, r, "dashboard.html", vm)
}

func filterTransactions(all []models.Transaction, tab string) []models.Transaction {
	if tab == "all" {
		return all
	}
	want := models.TransactionEarning
	if tab == "spent" {
		want = models.TransactionSpending
	}
	filtered := make([]models.Transaction, 0, len(all))
	for _, tx := range all {
		if tx.Type == want {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

// TopUpViewModel holds data for the balance top-up page.
type TopUpViewModel struct {
	Page
	Balance      *models.WalletBalance
	QuickAmounts []int
	Methods      []string
	Amount       string
	Method       string
	Error        string
	Notice       string
}

var topUpMethods = []string{"BTC", "ETH", "USDT", "ACD"}

func (h *Handlers) topUpViewModel(r *http.Request) TopUpViewModel {
	viewer := ViewerFromContext(r)
	return TopUpViewModel{
		Page:         h.page(r),
		Balance:      h.fetchBalance(r.Context(), viewer.Token, viewer.LoggedIn()),
		QuickAmounts: []int{10, 25, 50, 100},
		Methods:      topUpMethods,
		Method:       topUpMethods[0],
	}
}

// TopUpForm renders the top-up page.
func (h *Handlers) TopUpForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "topup.html", h.topUpViewModel(r))
}

// TopUp validates the requested amount and method. Actual payment
// processing lives outside this application; the page reports that the
// request was recorded without moving any funds.
func (h *Handlers) TopUp(w http.ResponseWriter, r *http.Request) {
	vm := h.topUpViewModel(r)

	if err := r.ParseForm(); err != nil {
		vm.Error = "Invalid form submission"
		h.render(w, r, "topup.html", vm)
		return
	}

	vm.Amount = strings.TrimSpace(r.FormValue("amount"))
	vm.Method = r.FormValue("method")

	amount, err := strconv.ParseFloat(vm.Amount, 64)
	if err != nil || amount <= 0 {
		vm.Error = "Enter a positive amount"
		h.render(w, r, "topup.html", vm)
		return
	}
	if !validMethod(vm.Method) {
		vm.Error = "Choose a payment method"
		h.render(w, r, "topup.html", vm)
		return
	}

	h.log.Info().
		Float64("amount", amount).
		Str("method", vm.Method).
		Msg("top-up requested")
	vm.Notice = "Payment processing is not available in this environment. Your balance was not changed."
	h.render(w, r, "topup.html", vm)
}

func validMethod(method string) bool {
	for _, m := range topUpMethods {
		if m == method {
			return true
		}
	}
	return false
}
