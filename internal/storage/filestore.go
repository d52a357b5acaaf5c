// internal/storage/filestore.go
//
// 以單一文字檔保存所有帳戶紀錄。
// 採「原子寫入」策略：先完整寫入 .tmp 檔並關閉，再以 rename() 取代原檔，
// 讀取端不會看到寫到一半的內容。
//
// 每次 Save 都覆寫整個檔案（不是 append log）；沒有檔案鎖、沒有校驗碼、沒有版本標記。
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileStore 為 bank.Store 的檔案實作。
type FileStore struct {
	path string
}

// NewFileStore 建立指向 path 的檔案儲存；檔案可以尚未存在。
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path 回傳備份檔路徑。
func (s *FileStore) Path() string { return s.path }

// Load 讀取並解碼整個檔案。
// 檔案不存在視為空資料（nil, nil）；解碼的部分錯誤會與成功的紀錄一起回傳。
func (s *FileStore) Load() ([]AccountRecord, error) {
	const op = "storage.FileStore.Load"

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accounts, err := Decode(data)
	if err != nil {
		return accounts, fmt.Errorf("%s: %w", op, err)
	}
	return accounts, nil
}

// Save 編碼全部紀錄後寫入 path+".tmp"，關閉後再 rename 取代正式檔案。
// 編碼失敗時不會碰到任何檔案。
func (s *FileStore) Save(accounts []AccountRecord) error {
	const op = "storage.FileStore.Save"

	data, err := Encode(accounts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%s: %w", op, err)
	}

	// 原子替換
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
