// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 這些錯誤屬於商業邏輯層級（非系統錯誤），呼叫端以 errors.Is 判斷並轉為可讀訊息；
// 只有儲存層的 I/O 失敗會以 *PersistError 回報。

package bank

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 代表帳戶不存在。
	ErrNotFound = errors.New("account not found")

	// ErrRecipientNotFound 代表轉帳對象帳號不存在。
	ErrRecipientNotFound = fmt.Errorf("recipient %w", ErrNotFound)

	// ErrBadAmount 代表金額非法（<= 0）。
	ErrBadAmount = errors.New("amount must be > 0")

	// ErrInsufficient 代表餘額不足，導致提款或轉帳失敗。
	ErrInsufficient = errors.New("insufficient funds")

	// ErrSameAccount 代表轉帳來源與目標帳戶相同。
	ErrSameAccount = errors.New("from and to are same")

	// ErrDuplicateIdentity 代表使用者名稱或帳號已被使用。
	ErrDuplicateIdentity = errors.New("account with this username or account number already exists")

	// ErrUnstorable 代表欄位值無法寫入備份檔（含雙引號、換行，或金額非有限）。
	ErrUnstorable = errors.New("account contains a value that cannot be stored")

	// ErrInvalidPIN 代表新 PIN 不是 4 位數字。
	ErrInvalidPIN = errors.New("pin must be 4 digits")
)

// PersistError 代表記憶體狀態已變更，但寫回備份檔失敗；
// 此時檔案內容可能落後於記憶體。
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return "persist registry: " + e.Err.Error() }

func (e *PersistError) Unwrap() error { return e.Err }
