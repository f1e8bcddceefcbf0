package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/loyalty-console/internal/models"
)

// NotAvailable is shown for missing values.
const NotAvailable = "N/A"

// MerchantRow is one formatted line of the merchant table.
type MerchantRow struct {
	ID          string
	Name        string
	Type        string
	Created     string
	Updated     string
	Status      string
	StatusClass string
}

// TransactionRow is one formatted line of the transaction history.
type TransactionRow struct {
	ID         string
	MerchantID string
	ProgramID  string
	Amount     string
	Type       string
	Status     string
	BadgeClass string
	Date       string
}

// ProgramRuleRow is one formatted line of the program-rule table.
type ProgramRuleRow struct {
	ProgramName    string
	RuleName       string
	ConditionType  string
	ConditionValue string
	Multiplier     string
	Points         string
	Effective      string
}

// MerchantRows formats merchants for display, marking active ones.
func MerchantRows(merchants []models.Merchant) []MerchantRow {
	rows := make([]MerchantRow, 0, len(merchants))
	for _, m := range merchants {
		status := orNA(m.Status)
		class := "text-dark"
		if m.Active() {
			class = "text-success"
		}
		rows = append(rows, MerchantRow{
			ID:          m.ID,
			Name:        orNA(m.Name),
			Type:        orNA(string(m.Type)),
			Created:     FormatTime(m.CreatedAt),
			Updated:     FormatTime(m.UpdatedAt),
			Status:      status,
			StatusClass: class,
		})
	}
	return rows
}

// TransactionRows formats transactions with amounts in dollars and a status badge.
func TransactionRows(txs []models.Transaction) []TransactionRow {
	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		status := tx.Status
		if status == "" {
			status = "Unknown"
		}
		rows = append(rows, TransactionRow{
			ID:         orNA(tx.ID),
			MerchantID: orNA(tx.MerchantID),
			ProgramID:  orNA(tx.ProgramID),
			Amount:     fmt.Sprintf("$%.2f", tx.Amount),
			Type:       orNA(tx.Type),
			Status:     status,
			BadgeClass: StatusBadge(status),
			Date:       FormatTime(tx.Date),
		})
	}
	return rows
}

// ProgramRuleRows formats rules; an open-ended rule shows N/A as its end date.
func ProgramRuleRows(rules []models.ProgramRule) []ProgramRuleRow {
	rows := make([]ProgramRuleRow, 0, len(rules))
	for _, r := range rules {
		to := NotAvailable
		if r.EffectiveTo != nil {
			to = FormatDay(*r.EffectiveTo)
		}
		rows = append(rows, ProgramRuleRow{
			ProgramName:    orNA(r.ProgramName),
			RuleName:       r.RuleName,
			ConditionType:  orNA(r.ConditionType),
			ConditionValue: r.ConditionValue,
			Multiplier:     strconv.FormatFloat(r.Multiplier, 'f', -1, 64) + "x",
			Points:         strconv.Itoa(r.PointsAwarded),
			Effective:      FormatDay(r.EffectiveFrom) + " - " + to,
		})
	}
	return rows
}

// StatusBadge maps a transaction status to its badge class.
func StatusBadge(status string) string {
	switch strings.ToLower(status) {
	case "completed":
		return "bg-gradient-success"
	case "pending":
		return "bg-gradient-warning"
	case "failed":
		return "bg-gradient-danger"
	default:
		return "bg-gradient-secondary"
	}
}

// FormatTime renders a timestamp, or N/A for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// FormatDay renders a date without the time of day.
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format("Jan 2, 2006")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
