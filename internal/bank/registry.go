// internal/bank/registry.go

// Package bank 定義核心商業邏輯：帳戶註冊、登入、餘額與 PIN 更新、轉帳與交易紀錄。
// Registry 是所有帳戶的唯一擁有者，也是備份檔唯一的寫入者：
// 每次變更後都把「整份」帳戶清單交給 Store 覆寫（不做增量寫入）。
// 採用單一互斥鎖 (sync.Mutex) 讓所有狀態變更序列化。
package bank

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"jmbank/internal/storage"
)

// Store 為持久化接縫：Load 讀回全部紀錄、Save 覆寫全部紀錄。
// 目前由 storage.FileStore 實作；換成其他後端時 Registry 的公開介面不變。
type Store interface {
	Load() ([]storage.AccountRecord, error)
	Save([]storage.AccountRecord) error
}

// Registry 為聚合根 (Aggregate Root)：
// - mu：序列化所有讀寫。
// - accts：依加入／載入順序排列；帳號與使用者名稱皆以線性搜尋查找。
// - 對外一律回傳拷貝，呼叫端不可能持有與內部共用的指標。
type Registry struct {
	mu    sync.Mutex
	log   *slog.Logger
	store Store
	now   func() time.Time
	intn  func(n int) int
	accts []*Account
}

// Option 調整 Registry 的可替換相依（測試用）。
type Option func(*Registry)

// WithClock 指定交易時間來源。
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithRand 指定帳號產生用的亂數來源，回傳 [0, n)。
func WithRand(intn func(n int) int) Option {
	return func(r *Registry) { r.intn = intn }
}

// NewRegistry 建立 Registry 並立即從 store 載入。
// 載入失敗不會中止：錯誤已記錄於日誌，Registry 以成功解碼的帳戶（或空清單）啟動。
func NewRegistry(store Store, log *slog.Logger, opts ...Option) *Registry {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{
		log:   log,
		store: store,
		now:   func() time.Time { return time.Now().Round(0) },
		intn:  rand.Intn,
	}
	for _, opt := range opts {
		opt(r)
	}
	_ = r.Load()
	return r
}

// Load 以 store 的內容取代記憶體中的帳戶清單。
// 檔案不存在視為空；單筆紀錄損壞只略過該筆；整體無法解析則清單為空。
// 與既有帳戶重複（使用者名稱或帳號）的紀錄會被略過。回傳值為診斷用錯誤。
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.store.Load()
	if err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				r.log.Warn("skipping unreadable account record", slog.String("error", e.Error()))
			}
		} else {
			r.log.Error("failed to load registry, starting empty", slog.String("error", err.Error()))
		}
	}

	r.accts = make([]*Account, 0, len(recs))
	for _, rec := range recs {
		a := fromRecord(rec)
		if !r.usernameFree(a.UserName) || r.find(a.AccountNumber) != nil {
			r.log.Warn("skipping duplicate account record",
				slog.String("userName", a.UserName),
				slog.String("accountNumber", a.AccountNumber))
			continue
		}
		r.accts = append(r.accts, &a)
	}
	r.log.Info("registry loaded", slog.Int("accounts", len(r.accts)))
	return err
}

// Persist 將整份帳戶清單寫回 store（完整覆寫）。
func (r *Registry) Persist() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persist()
}

// persist 需在持有 mu 時呼叫。失敗時記憶體狀態保留，錯誤回報給呼叫端。
func (r *Registry) persist() error {
	recs := make([]storage.AccountRecord, 0, len(r.accts))
	for _, a := range r.accts {
		recs = append(recs, toRecord(*a))
	}
	if err := r.store.Save(recs); err != nil {
		r.log.Error("failed to persist registry; on-disk copy is stale", slog.String("error", err.Error()))
		return &PersistError{Err: err}
	}
	return nil
}

// IsUsernameUnique 回傳是否沒有任何帳戶使用該名稱。
func (r *Registry) IsUsernameUnique(userName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usernameFree(userName)
}

// IsAccountNumberTaken 兼作存在檢查與查詢：找到則回傳該帳戶的拷貝。
func (r *Registry) IsAccountNumberTaken(accountNumber string) (Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.find(accountNumber)
	if a == nil {
		return Account{}, false
	}
	return a.clone(), true
}

// Login 只在使用者名稱與 PIN 都相符時回傳帳戶；嘗試次數限制由呼叫端負責。
func (r *Registry) Login(userName, pin string) (Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accts {
		if a.UserName == userName && a.PIN == pin {
			return a.clone(), true
		}
	}
	r.log.Info("login failed", slog.String("userName", userName))
	return Account{}, false
}

// AddAccount 只在使用者名稱與帳號皆未被使用時加入並保存；
// 否則回傳 ErrDuplicateIdentity，狀態不變。
// 欄位值無法寫入備份檔時回傳 ErrUnstorable，同樣不加入。
func (r *Registry) AddAccount(a Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(a)
}

func (r *Registry) add(a Account) error {
	if !r.usernameFree(a.UserName) || r.find(a.AccountNumber) != nil {
		return ErrDuplicateIdentity
	}
	if err := checkStorable(a); err != nil {
		return err
	}
	cp := a.clone()
	r.accts = append(r.accts, &cp)
	r.log.Info("account added", slog.String("userName", a.UserName))
	return r.persist()
}

// UpdateBalance 以帳號找到已儲存的帳戶，覆寫其餘額後保存。
// 找不到時回傳 ErrNotFound。
func (r *Registry) UpdateBalance(a Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateBalance(a)
}

func (r *Registry) updateBalance(a Account) error {
	stored := r.find(a.AccountNumber)
	if stored == nil {
		return ErrNotFound
	}
	stored.Balance = a.Balance
	return r.persist()
}

// UpdatePin 以帳號查找後更新 PIN 並保存，回傳更新後的帳戶。
func (r *Registry) UpdatePin(accountNumber, newPin string) (Account, error) {
	if !isPIN(newPin) {
		return Account{}, ErrInvalidPIN
	}
	a, err := r.Update(accountNumber, func(a *Account) error {
		a.PIN = newPin
		return nil
	})
	if err == nil {
		r.log.Info("pin updated", slog.String("accountNumber", accountNumber))
	}
	return a, err
}

// Update 以帳號查找帳戶，在拷貝上執行 fn：
//   - fn 回傳錯誤 → 不做任何變更，直接回傳該錯誤。
//   - 結果無法寫入備份檔 → 同樣不做變更，回傳 ErrUnstorable。
//   - fn 成功 → 以拷貝取代儲存的帳戶並保存一次，回傳更新後的帳戶。
//
// 帳號與使用者名稱為識別欄位，fn 對它們的修改會被忽略。
func (r *Registry) Update(accountNumber string, fn func(*Account) error) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.find(accountNumber)
	if stored == nil {
		return Account{}, ErrNotFound
	}
	cp := stored.clone()
	if err := fn(&cp); err != nil {
		return stored.clone(), err
	}
	cp.AccountNumber = stored.AccountNumber
	cp.UserName = stored.UserName
	if err := checkStorable(cp); err != nil {
		return stored.clone(), err
	}
	*stored = cp

	return stored.clone(), r.persist()
}

// Accounts 依加入順序回傳所有帳戶的拷貝。
func (r *Registry) Accounts() []Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Account, 0, len(r.accts))
	for _, a := range r.accts {
		out = append(out, a.clone())
	}
	return out
}

// Len 回傳帳戶數量。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accts)
}

func (r *Registry) find(accountNumber string) *Account {
	for _, a := range r.accts {
		if a.AccountNumber == accountNumber {
			return a
		}
	}
	return nil
}

func (r *Registry) usernameFree(userName string) bool {
	for _, a := range r.accts {
		if a.UserName == userName {
			return false
		}
	}
	return true
}

// checkStorable 在變更生效前確認帳戶能被編碼；
// 一筆無法編碼的帳戶一旦進入清單，之後每次整份保存都會失敗。
func checkStorable(a Account) error {
	if err := storage.CheckEncodable(toRecord(a)); err != nil {
		return fmt.Errorf("%w: %w", ErrUnstorable, err)
	}
	return nil
}

func isPIN(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func toRecord(a Account) storage.AccountRecord {
	rec := storage.AccountRecord{
		UserName:      a.UserName,
		PIN:           a.PIN,
		DateOfBirth:   a.DateOfBirth,
		Balance:       a.Balance,
		AccountNumber: a.AccountNumber,
		RoutingNumber: a.RoutingNumber,
	}
	for _, t := range a.Transactions {
		rec.Transactions = append(rec.Transactions, storage.TransactionRecord{
			Type: string(t.Type), Amount: t.Amount, DateTime: t.DateTime,
		})
	}
	return rec
}

func fromRecord(rec storage.AccountRecord) Account {
	a := NewAccount(rec.UserName, rec.PIN, rec.DateOfBirth, rec.AccountNumber, rec.RoutingNumber)
	a.Balance = rec.Balance
	for _, t := range rec.Transactions {
		a.AddTransaction(NewTransaction(TransactionType(t.Type), t.Amount, t.DateTime))
	}
	return a
}
