// internal/storage/errors.go

package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed 代表檔案內容不符合紀錄格式。
	ErrMalformed = errors.New("malformed record text")

	// ErrUnencodable 代表字串值含有格式無法表示的字元（雙引號或換行），或數字非有限、為負。
	ErrUnencodable = errors.New("value cannot be encoded")
)

// RecordError 標示第幾個帳戶紀錄出錯；解碼時單筆錯誤不影響其他紀錄。
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("account record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
