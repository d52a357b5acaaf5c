// internal/storage/filestore_test.go
//
// 測試目標：驗證檔案儲存的寫入與讀回是否一致。
// 使用 t.TempDir() 確保測試不汙染本機環境。
package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// TestFileStoreRoundTrip
// ------------------------------------------------------------
// 將紀錄寫入檔案後重新載入，比對欄位是否一致，並確認暫存檔已被 rename 掉。
// ------------------------------------------------------------
func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	s := NewFileStore(path)
	if s.Path() != path {
		t.Fatalf("Path=%s want %s", s.Path(), path)
	}

	orig := sampleAccounts()
	if err := s.Save(orig); err != nil {
		t.Fatalf("Save err=%v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file should be gone, stat err=%v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if len(loaded) != len(orig) {
		t.Fatalf("loaded %d accounts want %d", len(loaded), len(orig))
	}
	for i := range orig {
		if loaded[i].AccountNumber != orig[i].AccountNumber || loaded[i].Balance != orig[i].Balance ||
			len(loaded[i].Transactions) != len(orig[i].Transactions) {
			t.Fatalf("account %d mismatch: loaded=%+v orig=%+v", i, loaded[i], orig[i])
		}
	}
}

// TestFileStoreMissingFile 檔案不存在時視為空資料，不回傳錯誤。
func TestFileStoreMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty, got %d", len(got))
	}
}

// TestFileStoreSaveTwiceIdentical 連續兩次保存同一份資料，檔案位元組完全相同。
func TestFileStoreSaveTwiceIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s := NewFileStore(path)

	if err := s.Save(sampleAccounts()); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(path)
	if err := s.Save(sampleAccounts()); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Fatalf("persist not idempotent:\n%s\n---\n%s", first, second)
	}
}

// TestFileStoreEncodeErrorKeepsOldFile 編碼失敗時不應覆寫既有檔案。
func TestFileStoreEncodeErrorKeepsOldFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s := NewFileStore(path)
	if err := s.Save(sampleAccounts()); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(path)

	bad := sampleAccounts()
	bad[0].PIN = "12\n34"
	if err := s.Save(bad); err == nil {
		t.Fatal("expect encode error")
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Fatal("file changed after failed save")
	}
}

// TestFileStoreLoadUnreadable 路徑是目錄時回傳 I/O 錯誤。
func TestFileStoreLoadUnreadable(t *testing.T) {
	s := NewFileStore(t.TempDir())
	if _, err := s.Load(); err == nil {
		t.Fatal("expect error reading a directory")
	}
}
