package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/budget"
	"github.com/Veraticus/cashbook/internal/model"
)

// ErrInputTerminated is returned when input ends before a prompt is answered.
var ErrInputTerminated = errors.New("input terminated")

// Prompter asks the user questions on a terminal.
type Prompter struct {
	writer io.Writer
	reader *NonBlockingReader
}

// NewPrompter creates a prompter with the given reader and writer.
// Nil arguments fall back to stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// Confirm asks a yes/no question. Anything but y or yes means no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.readAnswer(ctx, question+" [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// PromptAmount asks for a non-negative amount until one parses. An empty
// answer returns fallback.
func (p *Prompter) PromptAmount(ctx context.Context, label string, fallback decimal.Decimal) (decimal.Decimal, error) {
	for {
		prompt := label
		if !fallback.IsZero() {
			prompt += fmt.Sprintf(" [%s]", fallback.StringFixed(2))
		}

		answer, err := p.readAnswer(ctx, prompt)
		if err != nil {
			return decimal.Zero, err
		}
		if answer == "" {
			return fallback, nil
		}

		amount, err := decimal.NewFromString(strings.ReplaceAll(answer, ",", ""))
		if err != nil || amount.IsNegative() {
			p.println(FormatError("Please enter a valid amount."))
			continue
		}
		return amount, nil
	}
}

// BudgetAnswers is what the interactive budget setup collected.
type BudgetAnswers struct {
	CategoryLimits map[string]decimal.Decimal
	TotalLimit     decimal.Decimal
}

// PromptBudget walks the user through a total limit and one limit per
// expense category. Existing values are offered as defaults; entering 0
// removes a category limit. The running allocation is shown after every
// answer and a warning is printed as soon as it exceeds the total.
func (p *Prompter) PromptBudget(ctx context.Context, categories []model.Category, existing *model.Budget, symbol string) (BudgetAnswers, error) {
	answers := BudgetAnswers{CategoryLimits: make(map[string]decimal.Decimal)}

	var current model.Budget
	if existing != nil {
		current = *existing
	}

	p.println(FormatTitle("Budget setup"))

	for {
		total, err := p.PromptAmount(ctx, "Total budget ("+symbol+")", current.TotalLimit)
		if err != nil {
			return answers, err
		}
		if total.IsPositive() {
			answers.TotalLimit = total
			break
		}
		p.println(FormatError(budget.MsgTotalNotPositive))
	}

	allocations := make(map[string]model.CategoryBudget)
	for _, category := range model.ExpenseCategories(categories) {
		fallback, _ := current.LimitFor(category.ID)
		limit, err := p.PromptAmount(ctx, "  "+category.Name, fallback)
		if err != nil {
			return answers, err
		}
		if !limit.IsPositive() {
			continue
		}

		answers.CategoryLimits[category.ID] = limit
		allocations[category.ID] = model.CategoryBudget{Limit: limit}

		sum := budget.CategorySum(allocations)
		p.println(SubtleStyle.Render(fmt.Sprintf("    allocated %s of %s",
			FormatMoney(symbol, sum), FormatMoney(symbol, answers.TotalLimit))))
		if sum.GreaterThan(answers.TotalLimit) {
			p.println(FormatWarning(budget.MsgCategorySumExceed))
		}
	}

	return answers, nil
}

func (p *Prompter) readAnswer(ctx context.Context, prompt string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrInputTerminated
		}
		return "", err
	}
	return answer, nil
}

func (p *Prompter) println(s string) {
	if _, err := fmt.Fprintln(p.writer, s); err != nil {
		slog.Warn("Failed to write prompt output", "error", err)
	}
}

// NewImportProgress creates a progress bar for importing total transactions.
func NewImportProgress(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
