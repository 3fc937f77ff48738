// Package ofx imports OFX/QFX bank and credit card statements as cashbook transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line that are missing their closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Options controls how statement lines become transactions.
type Options struct {
	// BusinessID owns every imported transaction.
	BusinessID string
	// ExpenseCategory and IncomeCategory are assigned to debits and credits.
	// Empty leaves the transaction uncategorized.
	ExpenseCategory string
	IncomeCategory  string
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file into transactions for one business.
// Debits become expenses and credits become income, both with positive
// amounts. Zero-amount lines are skipped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, opts Options) ([]model.Transaction, error) {
	if opts.BusinessID == "" {
		return nil, fmt.Errorf("business ID is required")
	}

	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			transactions = append(transactions,
				p.convertAll(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID), opts)...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			transactions = append(transactions,
				p.convertAll(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID), opts)...)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Info("Parsed OFX file",
		"business_id", opts.BusinessID,
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (p *Parser) convertAll(lines []ofxgo.Transaction, accountID string, opts Options) []model.Transaction {
	var out []model.Transaction
	for _, line := range lines {
		tx, ok := p.convertTransaction(line, accountID, opts)
		if !ok {
			slog.Debug("Skipping zero-amount OFX line", "fitid", string(line.FiTID), "account", accountID)
			continue
		}
		out = append(out, tx)
	}
	return out
}

// convertTransaction converts an OFX statement line to a cashbook transaction.
func (p *Parser) convertTransaction(line ofxgo.Transaction, accountID string, opts Options) (model.Transaction, bool) {
	// OFX uses negative amounts for debits
	amount := decimal.NewFromBigRat(&line.TrnAmt.Rat, 4)
	if amount.IsZero() {
		return model.Transaction{}, false
	}

	tx := model.Transaction{
		ID:          TransactionID(accountID, string(line.FiTID)),
		BusinessID:  opts.BusinessID,
		Date:        line.DtPosted.Time,
		Amount:      amount.Abs(),
		Type:        model.TransactionTypeIncome,
		Category:    opts.IncomeCategory,
		Description: p.extractMerchantName(line),
		PaymentMode: paymentMode(fmt.Sprint(line.TrnType)),
	}
	if amount.IsNegative() {
		tx.Type = model.TransactionTypeExpense
		tx.Category = opts.ExpenseCategory
	}
	if tx.Description == "" {
		tx.Description = strings.ToUpper(string(tx.Type[:1])) + string(tx.Type[1:])
	}

	switch {
	case line.CheckNum != "":
		tx.Remark = "Check #" + string(line.CheckNum)
	case line.Memo != "" && string(line.Memo) != tx.Description:
		tx.Remark = strings.TrimSpace(string(line.Memo))
	}

	return tx, true
}

// TransactionID derives a stable transaction ID from the account and the
// bank's FITID, so importing the same statement twice adds nothing.
func TransactionID(accountID, fitID string) string {
	return fmt.Sprintf("ofx-%s-%s", accountID, fitID)
}

func paymentMode(trnType string) string {
	switch strings.ToUpper(trnType) {
	case "ATM", "CASH":
		return "cash"
	case "CHECK":
		return "check"
	case "POS":
		return "card"
	default:
		return "bank"
	}
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is usually the cleanest name
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " date
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			accounts = append(accounts, id)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}

	return accounts, nil
}
