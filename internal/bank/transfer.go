// internal/bank/transfer.go

package bank

import (
	"log/slog"
	"math"
	"time"
)

// Receipt 為轉帳完成後雙方帳戶的最新狀態。
type Receipt struct {
	From   Account
	To     Account
	Amount float64
	At     time.Time
}

// Transfer 將 amount 從帳號 from 轉到帳號 to。
//
// 檢核順序：金額為有限且 > 0 → 來源存在 → 餘額足夠 → 目標存在 → 非同一帳戶；
// 任一失敗皆不改變任何狀態。
//
// 之後依序執行：提款、存款、保存來源餘額、保存目標餘額、
// 追加雙方交易紀錄（同一時間戳）、再整份保存一次。
// 這些步驟對當機不是原子的：備份檔沒有交易日誌或 write-ahead 機制，
// 中途當機時檔案可能只反映前幾步。記憶體中的步驟在同一個鎖內全部完成；
// 保存失敗時仍會完成所有記憶體步驟，並回傳第一個 *PersistError。
func (r *Registry) Transfer(from, to string, amount float64) (Receipt, error) {
	if !validAmount(amount) {
		return Receipt{}, ErrBadAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	src := r.find(from)
	if src == nil {
		return Receipt{}, ErrNotFound
	}
	if amount > src.Balance {
		return Receipt{}, ErrInsufficient
	}
	dst := r.find(to)
	if dst == nil {
		return Receipt{}, ErrRecipientNotFound
	}
	if src == dst {
		return Receipt{}, ErrSameAccount
	}
	if math.IsInf(dst.Balance+amount, 0) {
		return Receipt{}, ErrBadAmount
	}

	if err := src.Withdraw(amount); err != nil {
		return Receipt{}, err
	}
	// 金額與目標餘額已檢核，存款不會失敗
	_ = dst.Deposit(amount)

	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}
	keep(r.updateBalance(*src))
	keep(r.updateBalance(*dst))

	at := r.now()
	src.AddTransaction(NewTransaction(TypeTransfer, amount, at))
	dst.AddTransaction(NewTransaction(TypeIncomingTransfer, amount, at))
	keep(r.persist())

	rcpt := Receipt{From: src.clone(), To: dst.clone(), Amount: amount, At: at}
	if firstErr != nil {
		return rcpt, firstErr
	}
	r.log.Info("transfer completed",
		slog.String("from", from),
		slog.String("to", to),
		slog.Float64("amount", amount))
	return rcpt, nil
}
