// internal/server/response.go
//
// 本檔負責統一 HTTP 回應格式：成功回應的 JSON 結構、錯誤回應 {"error": "..."}，
// 以及領域錯誤到 HTTP 狀態碼的對應。
// 金額一律以 shopspring/decimal 轉成兩位小數字串輸出；儲存仍為浮點數。
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"jmbank/internal/bank"
	"jmbank/internal/storage"
)

var (
	errBadCredentials  = errors.New("invalid username or pin")
	errTooManyAttempts = errors.New("too many failed login attempts, try again later")
	errWrongPIN        = errors.New("pin does not match account")
)

const displayTimeLayout = "2006-01-02 15:04:05"

type accountResponse struct {
	UserName      string `json:"userName"`
	DateOfBirth   string `json:"dateOfBirth"`
	AccountNumber string `json:"accountNumber"`
	RoutingNumber string `json:"routingNumber"`
	Balance       string `json:"balance"`
}

type transactionResponse struct {
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	DateTime string `json:"dateTime"`
}

type transferResponse struct {
	Message string          `json:"message"`
	From    accountResponse `json:"from"`
	To      string          `json:"to"`
	Amount  string          `json:"amount"`
	At      string          `json:"at"`
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func newAccountResponse(a bank.Account) accountResponse {
	return accountResponse{
		UserName:      a.UserName,
		DateOfBirth:   a.DateOfBirth.Format(storage.DateLayout),
		AccountNumber: a.AccountNumber,
		RoutingNumber: a.RoutingNumber,
		Balance:       money(a.Balance),
	}
}

func newTransactionResponses(ts []bank.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, transactionResponse{
			Type:     string(t.Type),
			Amount:   money(t.Amount),
			DateTime: t.DateTime.Format(displayTimeLayout),
		})
	}
	return out
}

func newTransferResponse(rc bank.Receipt) transferResponse {
	return transferResponse{
		Message: "transfer success",
		From:    newAccountResponse(rc.From),
		To:      rc.To.AccountNumber,
		Amount:  money(rc.Amount),
		At:      rc.At.Format(time.RFC3339),
	}
}

// statusOf 將領域錯誤對應到 HTTP 狀態碼。
func statusOf(err error) int {
	var perr *bank.PersistError
	switch {
	case errors.As(err, &perr):
		return http.StatusInternalServerError
	case errors.Is(err, bank.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bank.ErrInsufficient), errors.Is(err, bank.ErrDuplicateIdentity):
		return http.StatusConflict
	case errors.Is(err, bank.ErrBadAmount), errors.Is(err, bank.ErrSameAccount), errors.Is(err, bank.ErrInvalidPIN),
		errors.Is(err, bank.ErrUnstorable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON 統一輸出成功回應。
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr 統一輸出錯誤回應：{"error": "..."}。
func writeErr(w http.ResponseWriter, err error, code int) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
