package view

import (
	"net/url"

	"github.com/hongminglow/loyalty-console/internal/flash"
	"github.com/hongminglow/loyalty-console/internal/models"
	"github.com/hongminglow/loyalty-console/internal/paging"
)

// Layout is the chrome shared by every page.
type Layout struct {
	Title     string
	Active    string
	UserName  string
	CSRFToken string
	SignedIn  bool
	Flash     *flash.Message
}

// SignInPage backs the sign-in form.
type SignInPage struct {
	Layout
	Email string
	Error string
}

// SignUpPage backs the registration form and its OTP modal.
type SignUpPage struct {
	Layout
	Name  string
	Email string
	Phone string
	Error string
	// OTP is set while a registration waits for its code; the modal is then shown.
	OTP *OTPModal
}

// OTPModal is the pending enrollment shown in the verification modal.
type OTPModal struct {
	Email    string
	Attempts int
}

// DashboardPage is the landing page. MerchantCountKnown is false when the count could not be fetched.
type DashboardPage struct {
	Layout
	MerchantCount      int
	MerchantCountKnown bool
	Email              string
}

// MerchantsPage is the paginated merchant list with its add/edit modal.
type MerchantsPage struct {
	Layout
	Rows  []MerchantRow
	Pager Pager
	Form  MerchantForm
	Types []models.MerchantType
}

// MerchantForm backs the add/edit modal. ID is empty when adding.
type MerchantForm struct {
	Open  bool
	ID    string
	Name  string
	Type  models.MerchantType
	Error string
}

// Editing reports whether the form updates an existing merchant.
func (f MerchantForm) Editing() bool { return f.ID != "" }

// TransactionsPage is the paginated transaction history.
type TransactionsPage struct {
	Layout
	Rows   []TransactionRow
	Pager  Pager
	Filter MerchantFilter
}

// ProgramRulesPage is the paginated list of earning rules.
type ProgramRulesPage struct {
	Layout
	Rows   []ProgramRuleRow
	Pager  Pager
	Filter MerchantFilter
}

// ErrorPage renders a status code with a message.
type ErrorPage struct {
	Layout
	Status  int
	Message string
}

// MerchantFilter drives the "All Merchants" dropdown.
type MerchantFilter struct {
	Selected string
	Label    string
	Options  []FilterOption
}

// FilterOption is one merchant in the filter dropdown.
type FilterOption struct {
	ID   string
	Name string
}

// NewMerchantFilter builds the dropdown with "All Merchants" first.
func NewMerchantFilter(merchants []models.Merchant, selected string) MerchantFilter {
	f := MerchantFilter{Selected: selected, Label: "All Merchants"}
	f.Options = append(f.Options, FilterOption{ID: "all", Name: "All Merchants"})
	for _, m := range merchants {
		f.Options = append(f.Options, FilterOption{ID: m.ID, Name: m.Name})
		if m.ID == selected {
			f.Label = m.Name
		}
	}
	if selected == "" {
		f.Selected = "all"
	}
	return f
}

// Pager turns a paging.View into links for a given list path, keeping extra
// query parameters such as the merchant filter.
type Pager struct {
	paging.View
	Path  string
	Extra url.Values
}

// PrevURL links to the previous page.
func (p Pager) PrevURL() string { return p.link(p.View.PrevQuery()) }

// NextURL links to the next page.
func (p Pager) NextURL() string { return p.link(p.View.NextQuery()) }

// SizeURL links to the first page at size n.
func (p Pager) SizeURL(n int) string { return p.link(p.View.SizeQuery(n)) }

func (p Pager) link(encoded string) string {
	q, _ := url.ParseQuery(encoded)
	for k, vs := range p.Extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return p.Path + "?" + q.Encode()
}
