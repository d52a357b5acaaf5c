// internal/storage/model.go
//
// 定義「資料持久化層 (storage layer)」的紀錄結構。
// 此層只描述檔案中「長什麼樣子」，不含任何商業規則；
// bank 層負責在 Account 與 AccountRecord 之間轉換。
package storage

import "time"

// 日期欄位在檔案中的文字格式。
const (
	DateLayout     = time.DateOnly
	DateTimeLayout = "2006-01-02T15:04:05.999999999"
)

// dateTimeLayouts 為解碼時依序嘗試的格式；
// 舊檔可能省略秒數（例如 2024-03-01T10:15）。
var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04",
}

// TransactionRecord 為單筆交易在檔案中的欄位。
type TransactionRecord struct {
	Type     string
	Amount   float64
	DateTime time.Time
}

// AccountRecord 為帳戶在檔案中的欄位，順序即為編碼時的欄位順序。
type AccountRecord struct {
	UserName      string
	PIN           string
	DateOfBirth   time.Time
	Balance       float64
	AccountNumber string
	RoutingNumber string
	Transactions  []TransactionRecord
}
