// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供 HTTP RESTful 介面，作為 bank 模組的應用層 (Application Layer)。
// 每個 handler 僅負責：
//  1. 解析與驗證請求內容
//  2. 呼叫 Registry 執行商業邏輯
//  3. 回傳標準化 JSON 回應
//
// 保存由 Registry 在每次變更後自行完成，handler 不需另外觸發。
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"

	"jmbank/internal/bank"
	"jmbank/internal/logger"
	"jmbank/internal/storage"
)

// Server 為 HTTP 層核心結構：
// - reg：帳戶 Registry（唯一的狀態擁有者）。
// - limiter：登入失敗次數限制，以使用者名稱為 key。
// - validate：請求內容驗證。
// - now：存提款交易的時間來源。
type Server struct {
	reg      *bank.Registry
	log      *slog.Logger
	limiter  *limiter.Limiter
	validate *validator.Validate
	now      func() time.Time
}

// NewServer 建立新的 HTTP 伺服器。lim 通常由 NewLoginLimiter 建立。
func NewServer(reg *bank.Registry, lim *limiter.Limiter, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		reg:      reg,
		log:      log,
		limiter:  lim,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().Round(0) },
	}
}

type registerRequest struct {
	UserName    string `json:"userName" validate:"required,min=5,max=10,notalldigits,storable"`
	PIN         string `json:"pin" validate:"required,len=4,number"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
}

type loginRequest struct {
	UserName string `json:"userName" validate:"required"`
	PIN      string `json:"pin" validate:"required"`
}

type amountRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

type transferRequest struct {
	To     string  `json:"to" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

type pinRequest struct {
	PIN string `json:"pin" validate:"required,len=4,number"`
}

// register 處理 POST /accounts → 建立帳戶。
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}
	dob, err := time.ParseInLocation(storage.DateLayout, req.DateOfBirth, time.Local)
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}

	a, err := s.reg.Register(req.UserName, req.PIN, dob)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountResponse(a))
}

// login 處理 POST /login。
// 每個使用者名稱在時間窗內只允許有限次數的失敗；成功登入會清除計數。
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	log := logger.FromContext(ctx)

	state, err := s.limiter.Peek(ctx, req.UserName)
	if err != nil {
		log.Error("login limiter peek failed", slog.String("error", err.Error()))
		writeErr(w, errors.New("internal error"), http.StatusInternalServerError)
		return
	}
	if state.Remaining <= 0 {
		log.Warn("login locked", slog.String("userName", req.UserName))
		writeErr(w, errTooManyAttempts, http.StatusTooManyRequests)
		return
	}

	a, ok := s.reg.Login(req.UserName, req.PIN)
	if !ok {
		if _, err := s.limiter.Get(ctx, req.UserName); err != nil {
			log.Error("login limiter increment failed", slog.String("error", err.Error()))
		}
		writeErr(w, errBadCredentials, http.StatusUnauthorized)
		return
	}
	if _, err := s.limiter.Reset(ctx, req.UserName); err != nil {
		log.Error("login limiter reset failed", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusOK, newAccountResponse(a))
}

// account 處理 GET /accounts/{number} → 帳戶概覽。
func (s *Server) account(w http.ResponseWriter, r *http.Request) {
	a, ok := s.reg.IsAccountNumberTaken(chi.URLParam(r, "number"))
	if !ok {
		s.fail(w, r, bank.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(a))
}

// transactions 處理 GET /accounts/{number}/transactions → 交易紀錄（依時間先後）。
func (s *Server) transactions(w http.ResponseWriter, r *http.Request) {
	a, ok := s.reg.IsAccountNumberTaken(chi.URLParam(r, "number"))
	if !ok {
		s.fail(w, r, bank.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponses(a.Transactions))
}

// deposit 處理 POST /accounts/{number}/deposit。
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	s.applyAmount(w, r, bank.TypeDeposit, (*bank.Account).Deposit)
}

// withdraw 處理 POST /accounts/{number}/withdraw；餘額不足時回 409，帳戶不變。
func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	s.applyAmount(w, r, bank.TypeWithdraw, (*bank.Account).Withdraw)
}

// applyAmount 在 Registry.Update 內調整餘額並追加一筆交易紀錄，兩者一起生效或一起放棄。
func (s *Server) applyAmount(w http.ResponseWriter, r *http.Request, typ bank.TransactionType, op func(*bank.Account, float64) error) {
	var req amountRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.reg.Update(chi.URLParam(r, "number"), func(a *bank.Account) error {
		if err := op(a, req.Amount); err != nil {
			return err
		}
		a.AddTransaction(bank.NewTransaction(typ, req.Amount, s.now()))
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(a))
}

// transfer 處理 POST /accounts/{number}/transfer → JSON {to, amount}。
// 成功後回傳來源帳戶的最新狀態。
func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !s.decode(w, r, &req) {
		return
	}
	rcpt, err := s.reg.Transfer(chi.URLParam(r, "number"), req.To, req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransferResponse(rcpt))
}

// changePIN 處理 PUT /accounts/{number}/pin。
func (s *Server) changePIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.reg.UpdatePin(chi.URLParam(r, "number"), req.PIN)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(a))
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "accounts": s.reg.Len()})
}

// fail 依錯誤種類決定狀態碼；500 一律記錄日誌。
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", slog.String("error", err.Error()))
	}
	writeErr(w, err, code)
}
