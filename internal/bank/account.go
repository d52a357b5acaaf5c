// internal/bank/account.go
//
// 本檔定義 Account 與 Transaction 結構，不含任何 HTTP 或儲存細節。

package bank

import (
	"math"
	"time"
)

// TransactionType 為交易種類標籤；集合是開放的，以下為目前使用的值。
type TransactionType string

const (
	TypeDeposit          TransactionType = "Deposit"
	TypeWithdraw         TransactionType = "Withdraw"
	TypeTransfer         TransactionType = "Transfer"
	TypeIncomingTransfer TransactionType = "Incoming Transfer"
)

// Transaction represents a transaction record.
type Transaction struct {
	Type     TransactionType
	Amount   float64
	DateTime time.Time
}

// NewTransaction 建立一筆交易；at 通常為操作完成的時間。
func NewTransaction(typ TransactionType, amount float64, at time.Time) Transaction {
	return Transaction{Type: typ, Amount: amount, DateTime: at}
}

// Account represents a bank account.
type Account struct {
	PIN           string
	UserName      string
	DateOfBirth   time.Time
	Balance       float64
	AccountNumber string
	RoutingNumber string
	Transactions  []Transaction
}

// NewAccount 建立註冊當下的新帳戶：餘額 0、交易紀錄為空。
func NewAccount(userName, pin string, dateOfBirth time.Time, accountNumber, routingNumber string) Account {
	return Account{
		PIN:           pin,
		UserName:      userName,
		DateOfBirth:   dateOfBirth,
		AccountNumber: accountNumber,
		RoutingNumber: routingNumber,
	}
}

// Deposit 存款：金額需為有限且 > 0 的數字，存入後餘額也必須有限；
// 否則回傳 ErrBadAmount 且餘額不變。只調整餘額，交易紀錄由呼叫端追加。
func (a *Account) Deposit(amount float64) error {
	if !validAmount(amount) || math.IsInf(a.Balance+amount, 0) {
		return ErrBadAmount
	}
	a.Balance += amount
	return nil
}

// Withdraw 提款：金額需 > 0 且不得超過餘額，維持餘額非負。
func (a *Account) Withdraw(amount float64) error {
	if !validAmount(amount) {
		return ErrBadAmount
	}
	if amount > a.Balance {
		return ErrInsufficient
	}
	a.Balance -= amount
	return nil
}

// validAmount 排除 0、負數、NaN 與無限大。
func validAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0)
}

// AddTransaction 追加一筆交易；順序即時間先後。
func (a *Account) AddTransaction(t Transaction) {
	a.Transactions = append(a.Transactions, t)
}

// clone 回傳深拷貝，避免外部與 Registry 共用交易切片。
func (a Account) clone() Account {
	if a.Transactions != nil {
		a.Transactions = append([]Transaction(nil), a.Transactions...)
	}
	return a
}
