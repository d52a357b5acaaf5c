package bank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountStartsEmpty(t *testing.T) {
	a := NewAccount("alice1", "1234", birthday(), "100000001", "222222222")
	assert.Zero(t, a.Balance)
	assert.Empty(t, a.Transactions)
	assert.Equal(t, "1234", a.PIN)
}

func TestDepositWithdraw(t *testing.T) {
	a := NewAccount("alice1", "1234", birthday(), "100000001", "1")

	require.NoError(t, a.Deposit(30))
	assert.Equal(t, 30.0, a.Balance)

	assert.ErrorIs(t, a.Withdraw(50), ErrInsufficient)
	assert.Equal(t, 30.0, a.Balance)

	assert.ErrorIs(t, a.Deposit(0), ErrBadAmount)
	assert.ErrorIs(t, a.Deposit(-1), ErrBadAmount)
	assert.ErrorIs(t, a.Withdraw(-1), ErrBadAmount)
	assert.Equal(t, 30.0, a.Balance)

	require.NoError(t, a.Withdraw(30))
	assert.Zero(t, a.Balance)
	// 餘額變動不會自動產生交易紀錄
	assert.Empty(t, a.Transactions)
}

func TestNonFiniteAmountsRejected(t *testing.T) {
	a := NewAccount("alice1", "1234", birthday(), "100000001", "1")
	require.NoError(t, a.Deposit(10))

	for _, amt := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, a.Deposit(amt), ErrBadAmount)
		assert.ErrorIs(t, a.Withdraw(amt), ErrBadAmount)
	}
	assert.Equal(t, 10.0, a.Balance)

	// 存入後溢位為無限大
	a.Balance = math.MaxFloat64
	assert.ErrorIs(t, a.Deposit(math.MaxFloat64), ErrBadAmount)
	assert.Equal(t, math.MaxFloat64, a.Balance)
}

func TestAddTransactionKeepsOrder(t *testing.T) {
	a := NewAccount("alice1", "1234", birthday(), "100000001", "1")
	a.AddTransaction(NewTransaction(TypeDeposit, 10, fixedNow))
	a.AddTransaction(NewTransaction("Fee", 1, fixedNow))
	a.AddTransaction(NewTransaction(TypeWithdraw, 5, fixedNow))

	require.Len(t, a.Transactions, 3)
	assert.Equal(t, TypeDeposit, a.Transactions[0].Type)
	assert.Equal(t, TransactionType("Fee"), a.Transactions[1].Type)
	assert.Equal(t, TypeWithdraw, a.Transactions[2].Type)
}

func TestCloneIsDeep(t *testing.T) {
	a := NewAccount("alice1", "1234", birthday(), "100000001", "1")
	a.AddTransaction(NewTransaction(TypeDeposit, 10, fixedNow))

	cp := a.clone()
	cp.Transactions[0].Amount = 99
	cp.AddTransaction(NewTransaction(TypeDeposit, 1, fixedNow))

	assert.Equal(t, 10.0, a.Transactions[0].Amount)
	assert.Len(t, a.Transactions, 1)
}

func TestRegister(t *testing.T) {
	seq := []int{123, 123, 456, 7, 42}
	next := func(int) int {
		n := seq[0]
		seq = seq[1:]
		return n
	}
	store := &memStore{}
	r := NewRegistry(store, nil, WithRand(next))

	// 帳號 123、路由 123
	a, err := r.Register("alice1", "1234", birthday())
	require.NoError(t, err)
	assert.Equal(t, "000000123", a.AccountNumber)
	assert.Equal(t, "000000123", a.RoutingNumber)
	assert.Zero(t, a.Balance)

	// 帳號 456、路由 7
	b, err := r.Register("bobby", "0000", birthday())
	require.NoError(t, err)
	assert.Equal(t, "000000456", b.AccountNumber)
	assert.Equal(t, "000000007", b.RoutingNumber)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, store.saveCount())

	_, err = r.Register("alice1", "9999", birthday())
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	_, err = r.Register("carol", "12", birthday())
	assert.ErrorIs(t, err, ErrInvalidPIN)
	assert.Equal(t, 2, r.Len())
}

func TestNewAccountNumberSkipsTaken(t *testing.T) {
	seq := []int{100000001, 100000001, 5}
	r := newTestRegistry(t, &memStore{})
	mustAdd(t, r, "alice1", "100000001", 0)
	r.intn = func(int) int {
		n := seq[0]
		seq = seq[1:]
		return n
	}

	assert.Equal(t, "000000005", r.NewAccountNumber())
}
