package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultTokenName   = "EMB Token"
	defaultTokenSymbol = "EMB"
)

var (
	ErrNotController    = errors.New("caller is not the token controller")
	ErrNotOwner         = errors.New("caller is not the token owner")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidRecipient = errors.New("cannot mint to the zero address")
	ErrTokenNotDeployed = errors.New("token is not deployed")
	ErrSupplyOverflow   = errors.New("total supply would exceed 2^256-1")
)

var maxSupply = decimal.NewFromBigInt(new(uint256.Int).SetAllOne().ToBig(), 0)

// TokenState holds the owner and controller registers of a token.
type TokenState struct {
	Symbol     string `gorm:"column:symbol;primaryKey"`
	Name       string `gorm:"column:name;not null"`
	Owner      string `gorm:"column:owner;not null"`
	Controller string `gorm:"column:controller;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (TokenState) TableName() string {
	return "token_state"
}

// Entry is a single credit or debit on an account.
type Entry struct {
	ID        uint            `gorm:"primaryKey"`
	Account   string          `gorm:"column:account;not null;index:idx_account_symbol"`
	Symbol    string          `gorm:"column:symbol;not null;index:idx_account_symbol"`
	Credit    decimal.Decimal `gorm:"column:credit;type:varchar(78);not null"`
	Debit     decimal.Decimal `gorm:"column:debit;type:varchar(78);not null"`
	CreatedAt time.Time
}

func (Entry) TableName() string {
	return "ledger"
}

// Token is the EMB accounting ledger. Units are created only by the
// controller, and only the owner may replace the controller.
type Token struct {
	db     *gorm.DB
	symbol string
}

// DeployToken creates the token state with a zero controller. Deploying an
// existing symbol again returns the stored token as long as the owner matches.
func DeployToken(db *gorm.DB, name, symbol string, owner common.Address) (*Token, error) {
	if owner == (common.Address{}) {
		return nil, fmt.Errorf("token owner must not be the zero address")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		state, found, err := findTokenState(tx, symbol)
		if err != nil {
			return err
		}
		if found {
			if state.Owner != owner.Hex() {
				return fmt.Errorf("token %s is already deployed with owner %s", symbol, state.Owner)
			}
			return nil
		}

		return tx.Create(&TokenState{
			Symbol:     symbol,
			Name:       name,
			Owner:      owner.Hex(),
			Controller: common.Address{}.Hex(),
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to deploy token %s: %w", symbol, err)
	}

	return &Token{db: db, symbol: symbol}, nil
}

// GetToken returns a previously deployed token.
func GetToken(db *gorm.DB, symbol string) (*Token, error) {
	t := &Token{db: db, symbol: symbol}
	if _, err := t.state(); err != nil {
		return nil, err
	}
	return t, nil
}

// WithTx returns a view of the token bound to tx.
func (t *Token) WithTx(tx *gorm.DB) *Token {
	return &Token{db: tx, symbol: t.symbol}
}

// findTokenState looks the state up without treating absence as an error,
// so an undeployed token is not logged as a failed query.
func findTokenState(tx *gorm.DB, symbol string) (TokenState, bool, error) {
	var state TokenState
	res := tx.Where("symbol = ?", symbol).Limit(1).Find(&state)
	if res.Error != nil {
		return TokenState{}, false, fmt.Errorf("failed to load token state: %w", res.Error)
	}
	return state, res.RowsAffected > 0, nil
}

func mustFindTokenState(tx *gorm.DB, symbol string) (TokenState, error) {
	state, found, err := findTokenState(tx, symbol)
	if err != nil {
		return TokenState{}, err
	}
	if !found {
		return TokenState{}, fmt.Errorf("%w: %s", ErrTokenNotDeployed, symbol)
	}
	return state, nil
}

func (t *Token) state() (TokenState, error) {
	return mustFindTokenState(t.db, t.symbol)
}

func (t *Token) Symbol() string {
	return t.symbol
}

func (t *Token) Name() (string, error) {
	state, err := t.state()
	if err != nil {
		return "", err
	}
	return state.Name, nil
}

func (t *Token) Owner() (common.Address, error) {
	state, err := t.state()
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(state.Owner), nil
}

// Controller returns the zero address until the owner assigns one.
func (t *Token) Controller() (common.Address, error) {
	state, err := t.state()
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(state.Controller), nil
}

// SetController replaces the controller. Only the owner may call it.
func (t *Token) SetController(caller, controller common.Address) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		state, err := mustFindTokenState(tx, t.symbol)
		if err != nil {
			return err
		}
		if state.Owner != caller.Hex() {
			return ErrNotOwner
		}

		return tx.Model(&TokenState{}).
			Where("symbol = ?", t.symbol).
			Update("controller", controller.Hex()).Error
	})
}

// Mint credits amount units to recipient. Only the controller may call it.
func (t *Token) Mint(caller, recipient common.Address, amount *uint256.Int) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		state, err := mustFindTokenState(tx, t.symbol)
		if err != nil {
			return err
		}
		// a zero controller never matches: nothing can be minted before one is set
		if state.Controller == (common.Address{}).Hex() || state.Controller != caller.Hex() {
			return ErrNotController
		}
		if amount == nil || amount.IsZero() {
			return ErrInvalidAmount
		}
		if recipient == (common.Address{}) {
			return ErrInvalidRecipient
		}

		credit := decimal.NewFromBigInt(amount.ToBig(), 0)
		supply, err := t.WithTx(tx).TotalSupply()
		if err != nil {
			return fmt.Errorf("failed to get total supply: %w", err)
		}
		if supply.Add(credit).GreaterThan(maxSupply) {
			return ErrSupplyOverflow
		}

		entry := &Entry{
			Account:   recipient.Hex(),
			Symbol:    t.symbol,
			Credit:    credit,
			Debit:     decimal.Zero,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record a ledger entry: %w", err)
		}
		return nil
	})
}

// BalanceOf returns the number of units held by account.
func (t *Token) BalanceOf(account common.Address) (decimal.Decimal, error) {
	return t.sum(t.db.Model(&Entry{}).Where("account = ? AND symbol = ?", account.Hex(), t.symbol))
}

// TotalSupply returns the number of units minted so far.
func (t *Token) TotalSupply() (decimal.Decimal, error) {
	return t.sum(t.db.Model(&Entry{}).Where("symbol = ?", t.symbol))
}

func (t *Token) sum(q *gorm.DB) (decimal.Decimal, error) {
	switch t.db.Dialector.Name() {
	case "postgres":
		var result struct {
			Balance decimal.Decimal
		}
		err := q.Select("COALESCE(SUM(credit), 0) - COALESCE(SUM(debit), 0) AS balance").
			Scan(&result).Error
		if err != nil {
			return decimal.Zero, err
		}
		return result.Balance, nil

	case "sqlite":
		// Sum in Go: SQLite would convert large values to floating point.
		var entries []Entry
		if err := q.Find(&entries).Error; err != nil {
			return decimal.Zero, err
		}

		balance := decimal.Zero
		for _, entry := range entries {
			balance = balance.Add(entry.Credit).Sub(entry.Debit)
		}
		return balance, nil

	default:
		return decimal.Zero, fmt.Errorf("unsupported database driver: %s", t.db.Dialector.Name())
	}
}
