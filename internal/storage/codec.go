// internal/storage/codec.go
//
// 提供帳戶紀錄的文字編碼與解碼。
// 格式外觀類似 JSON（物件 { key: value }、陣列 [ ... ]、字串加引號、數字不加），
// 但只支援兩層固定結構：帳戶 → 交易清單，且不支援跳脫字元。
//
// 解碼流程：
//  1. 去掉最外層 [ ]。
//  2. 以大括號深度切出每個帳戶物件（交易陣列內的逗號與大括號不會誤切）。
//  3. 每個欄位各自以鍵名掃描取值，欄位順序不影響解碼。
//  4. 交易陣列以 "transactions" 鍵定位，再依 { 切成單筆交易。
//
// 單一帳戶解碼失敗只會略過該筆並回報 RecordError，其餘帳戶照常回傳。
package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

const (
	keyUserName      = "userName"
	keyPIN           = "pin"
	keyDateOfBirth   = "dateOfBirth"
	keyBalance       = "balance"
	keyAccountNumber = "accountNumber"
	keyRoutingNumber = "routingNumber"
	keyTransactions  = "transactions"

	keyType     = "type"
	keyAmount   = "amount"
	keyDateTime = "dateTime"
)

// Encode 將所有帳戶依固定欄位順序輸出為文字。
// 相同輸入必定產生相同位元組，可直接比對。
func Encode(accounts []AccountRecord) ([]byte, error) {
	var b strings.Builder
	b.WriteString("[\n")
	for i, a := range accounts {
		if err := CheckEncodable(a); err != nil {
			return nil, &RecordError{Index: i, Err: err}
		}
		b.WriteString("  {\n")
		writeString(&b, "    ", keyUserName, a.UserName, false)
		writeString(&b, "    ", keyPIN, a.PIN, false)
		writeString(&b, "    ", keyDateOfBirth, a.DateOfBirth.Format(DateLayout), false)
		writeNumber(&b, "    ", keyBalance, a.Balance, false)
		writeString(&b, "    ", keyAccountNumber, a.AccountNumber, false)
		writeString(&b, "    ", keyRoutingNumber, a.RoutingNumber, false)

		b.WriteString(`    "` + keyTransactions + `": [` + "\n")
		for j, t := range a.Transactions {
			b.WriteString("      {\n")
			writeString(&b, "        ", keyType, t.Type, false)
			writeNumber(&b, "        ", keyAmount, t.Amount, false)
			writeString(&b, "        ", keyDateTime, t.DateTime.Local().Format(DateTimeLayout), true)
			closeObject(&b, "      ", j == len(a.Transactions)-1)
		}
		b.WriteString("    ]\n")
		closeObject(&b, "  ", i == len(accounts)-1)
	}
	b.WriteString("]\n")
	return []byte(b.String()), nil
}

func writeString(b *strings.Builder, indent, key, value string, last bool) {
	b.WriteString(indent + `"` + key + `": "` + value + `"`)
	endField(b, last)
}

// writeNumber 以最短且精確的十進位表示輸出，不使用指數形式。
func writeNumber(b *strings.Builder, indent, key string, value float64, last bool) {
	b.WriteString(indent + `"` + key + `": ` + strconv.FormatFloat(value, 'f', -1, 64))
	endField(b, last)
}

func endField(b *strings.Builder, last bool) {
	if last {
		b.WriteString("\n")
		return
	}
	b.WriteString(",\n")
}

func closeObject(b *strings.Builder, indent string, last bool) {
	if last {
		b.WriteString(indent + "}\n")
		return
	}
	b.WriteString(indent + "},\n")
}

// CheckEncodable 檢查一筆帳戶能否寫成紀錄格式並原樣讀回：
// 字串不可含雙引號或換行；金額必須是有限且非負的數字。
func CheckEncodable(a AccountRecord) error {
	values := []string{a.UserName, a.PIN, a.AccountNumber, a.RoutingNumber}
	amounts := []float64{a.Balance}
	for _, t := range a.Transactions {
		values = append(values, t.Type)
		amounts = append(amounts, t.Amount)
	}
	for _, v := range values {
		if strings.ContainsAny(v, "\"\r\n") {
			return fmt.Errorf("%w: %q", ErrUnencodable, v)
		}
	}
	for _, n := range amounts {
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			return fmt.Errorf("%w: number %v", ErrUnencodable, n)
		}
	}
	return nil
}

// Decode 將 Encode 產生的文字還原為帳戶紀錄。
// 空內容或 [] 視為沒有帳戶；最外層括號不完整回傳 ErrMalformed 且不含任何帳戶。
// 個別帳戶的錯誤以 *multierror.Error 彙整，成功的帳戶仍會回傳。
func Decode(data []byte) ([]AccountRecord, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	if len(text) < 2 || text[0] != '[' || text[len(text)-1] != ']' {
		return nil, fmt.Errorf("%w: missing outer array brackets", ErrMalformed)
	}

	objects, rest := splitObjects(text[1 : len(text)-1])

	var (
		accounts []AccountRecord
		errs     *multierror.Error
	)
	for i, obj := range objects {
		a, err := decodeAccount(obj)
		if err != nil {
			errs = multierror.Append(errs, &RecordError{Index: i, Err: err})
			continue
		}
		accounts = append(accounts, a)
	}
	if strings.Trim(rest, " \t\r\n,") != "" {
		errs = multierror.Append(errs, &RecordError{
			Index: len(objects),
			Err:   fmt.Errorf("%w: unterminated object", ErrMalformed),
		})
	}
	return accounts, errs.ErrorOrNil()
}

// splitObjects 以大括號深度切割頂層物件：遇 { 加一、遇 } 減一，
// 深度回到 0 時，自該物件起點到此的文字即為一個完整物件。
// 引號內的大括號不計入深度；rest 為最後未閉合的殘餘文字。
func splitObjects(s string) (objects []string, rest string) {
	depth, start := 0, 0
	inString := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				objects = append(objects, s[start:i+1])
			}
		}
	}
	if depth > 0 {
		rest = s[start:]
	}
	return objects, rest
}

func decodeAccount(obj string) (AccountRecord, error) {
	var (
		a   AccountRecord
		err error
	)
	if a.UserName, err = lookup(obj, keyUserName); err != nil {
		return a, err
	}
	if a.PIN, err = lookup(obj, keyPIN); err != nil {
		return a, err
	}
	if a.DateOfBirth, err = lookupTime(obj, keyDateOfBirth, DateLayout); err != nil {
		return a, err
	}
	if a.Balance, err = lookupFloat(obj, keyBalance); err != nil {
		return a, err
	}
	if a.AccountNumber, err = lookup(obj, keyAccountNumber); err != nil {
		return a, err
	}
	if a.RoutingNumber, err = lookup(obj, keyRoutingNumber); err != nil {
		return a, err
	}
	if a.Transactions, err = decodeTransactions(obj); err != nil {
		return a, err
	}
	return a, nil
}

// decodeTransactions 找出 "transactions" 的陣列區段，依 { 切成單筆交易；
// 第一段（{ 之前）與不含 type 鍵的片段一律略過。
func decodeTransactions(obj string) ([]TransactionRecord, error) {
	c, ok := seekKey(obj, keyTransactions)
	if !ok {
		return nil, fmt.Errorf("%w: missing key %q", ErrMalformed, keyTransactions)
	}
	inner, err := c.readArray()
	if err != nil {
		return nil, err
	}

	var txs []TransactionRecord
	for i, frag := range strings.Split(inner, "{")[1:] {
		if _, ok := seekKey(frag, keyType); !ok {
			continue
		}
		t, err := decodeTransaction(frag)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func decodeTransaction(frag string) (TransactionRecord, error) {
	var (
		t   TransactionRecord
		err error
	)
	if t.Type, err = lookup(frag, keyType); err != nil {
		return t, err
	}
	if t.Amount, err = lookupFloat(frag, keyAmount); err != nil {
		return t, err
	}
	if t.DateTime, err = lookupTime(frag, keyDateTime, dateTimeLayouts...); err != nil {
		return t, err
	}
	return t, nil
}

func lookupFloat(src, key string) (float64, error) {
	v, err := lookup(src, key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: key %q: %v", ErrMalformed, key, err)
	}
	return f, nil
}

// lookupTime 以本地時區解析（檔案中的時間不帶時區）。
func lookupTime(src, key string, layouts ...string) (time.Time, error) {
	v, err := lookup(src, key)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: key %q: bad time %q", ErrMalformed, key, v)
}
