package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitgroup/internal/calculator"
)

// Ledger is a group's history as written in a ledger file:
//
//	members: [alice, bob, carol]
//	expenses:
//	  - description: Dinner
//	    payer: alice
//	    total: "90.00"
//	    method: by_weights          # optional, default equally
//	    participants: [alice, bob]  # optional, default all members
//	    params:
//	      weights:
//	        - {user: alice, value: "1"}
//	        - {user: bob, value: "2"}
//	payments:
//	  - {from: bob, to: alice, amount: "20.00"}
type Ledger struct {
	Members  []string        `yaml:"members"`
	Expenses []LedgerExpense `yaml:"expenses"`
	Payments []LedgerPayment `yaml:"payments"`
}

type LedgerExpense struct {
	Description  string       `yaml:"description"`
	Payer        string       `yaml:"payer"`
	Total        string       `yaml:"total"`
	Method       string       `yaml:"method"`
	Participants []string     `yaml:"participants"`
	Params       LedgerParams `yaml:"params"`
}

type LedgerParams struct {
	Percentages []LedgerPortion `yaml:"percentages"`
	Weights     []LedgerPortion `yaml:"weights"`
	Amounts     []LedgerPortion `yaml:"amounts"`
}

type LedgerPortion struct {
	User  string `yaml:"user"`
	Value string `yaml:"value"`
}

type LedgerPayment struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Amount string `yaml:"amount"`
}

// LoadLedger reads and parses a ledger file.
func LoadLedger(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return ParseLedger(bytes.NewReader(data))
}

// ParseLedger decodes a ledger. Unknown keys are rejected.
func ParseLedger(r io.Reader) (*Ledger, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var l Ledger
	if err := dec.Decode(&l); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse ledger: %w", err)
	}
	if len(l.Members) == 0 {
		return nil, errors.New("ledger has no members")
	}
	return &l, nil
}

// SplitExpense is one ledger expense after its split rule has been applied.
type SplitExpense struct {
	Description string
	Method      calculator.SplitMethod
	Expense     calculator.Expense
}

// Resolve applies each expense's split rule and validates the payments.
func (l *Ledger) Resolve() ([]SplitExpense, []calculator.Payment, error) {
	members := make(map[string]bool, len(l.Members))
	for _, m := range l.Members {
		members[m] = true
	}

	expenses := make([]SplitExpense, len(l.Expenses))
	for i, e := range l.Expenses {
		resolved, err := l.resolveExpense(e, members)
		if err != nil {
			return nil, nil, fmt.Errorf("expense %d (%s): %w", i+1, e.Description, err)
		}
		expenses[i] = resolved
	}

	payments := make([]calculator.Payment, len(l.Payments))
	for i, p := range l.Payments {
		amount, err := calculator.ParseAmount(p.Amount)
		if err != nil {
			return nil, nil, fmt.Errorf("payment %d: %w", i+1, err)
		}
		switch {
		case !members[p.From] || !members[p.To]:
			return nil, nil, fmt.Errorf("payment %d: %w: %s -> %s", i+1, calculator.ErrUnknownParticipant, p.From, p.To)
		case p.From == p.To:
			return nil, nil, fmt.Errorf("payment %d: %w: payer and receiver are the same", i+1, calculator.ErrInvalidInput)
		case !amount.IsPositive():
			return nil, nil, fmt.Errorf("payment %d: %w: amount must be positive", i+1, calculator.ErrInvalidInput)
		}
		payments[i] = calculator.Payment{PayerID: p.From, ReceiverID: p.To, Amount: amount}
	}
	return expenses, payments, nil
}

func (l *Ledger) resolveExpense(e LedgerExpense, members map[string]bool) (SplitExpense, error) {
	if !members[e.Payer] {
		return SplitExpense{}, fmt.Errorf("payer %w: %s", calculator.ErrUnknownParticipant, e.Payer)
	}
	total, err := calculator.ParseAmount(e.Total)
	if err != nil {
		return SplitExpense{}, err
	}
	method, err := calculator.ParseSplitMethod(e.Method)
	if err != nil {
		return SplitExpense{}, err
	}

	participants := e.Participants
	if len(participants) == 0 {
		participants = l.Members
	}
	for _, p := range participants {
		if !members[p] {
			return SplitExpense{}, fmt.Errorf("%w: %s", calculator.ErrUnknownParticipant, p)
		}
	}

	var params calculator.SplitParams
	if params.Percentages, err = portions(e.Params.Percentages); err != nil {
		return SplitExpense{}, err
	}
	if params.Weights, err = portions(e.Params.Weights); err != nil {
		return SplitExpense{}, err
	}
	if params.Amounts, err = portions(e.Params.Amounts); err != nil {
		return SplitExpense{}, err
	}

	shares, err := calculator.NewSplitRuleEngine(participants, total).ApplySplit(method, params)
	if err != nil {
		return SplitExpense{}, err
	}
	return SplitExpense{
		Description: e.Description,
		Method:      method,
		Expense:     calculator.Expense{PayerID: e.Payer, Total: total, Participants: shares},
	}, nil
}

func portions(in []LedgerPortion) ([]calculator.Portion, error) {
	var out []calculator.Portion
	for _, p := range in {
		portion, err := calculator.ParsePortion(p.User, p.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, portion)
	}
	return out, nil
}
