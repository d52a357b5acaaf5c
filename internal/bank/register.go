// internal/bank/register.go

package bank

import (
	"fmt"
	"time"
)

// Register 建立新帳戶：產生未被使用的 9 位數帳號與 9 位數路由號碼（不需唯一），
// 再經 AddAccount 相同的唯一性檢核後保存。
// 使用者名稱格式（長度、非純數字）與生日格式由呼叫端先行驗證。
func (r *Registry) Register(userName, pin string, dateOfBirth time.Time) (Account, error) {
	if !isPIN(pin) {
		return Account{}, ErrInvalidPIN
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.usernameFree(userName) {
		return Account{}, ErrDuplicateIdentity
	}
	a := NewAccount(userName, pin, dateOfBirth, r.newAccountNumber(), r.nineDigits())
	if err := r.add(a); err != nil {
		return a, err
	}
	return a, nil
}

// NewAccountNumber 回傳目前未被使用的 9 位數帳號。
func (r *Registry) NewAccountNumber() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newAccountNumber()
}

func (r *Registry) newAccountNumber() string {
	for {
		n := r.nineDigits()
		if r.find(n) == nil {
			return n
		}
	}
}

func (r *Registry) nineDigits() string {
	return fmt.Sprintf("%09d", r.intn(1_000_000_000))
}
