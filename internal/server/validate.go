// internal/server/validate.go

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 使用 json 名稱回報欄位，錯誤訊息與請求內容一致
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notalldigits", notAllDigits)
	_ = v.RegisterValidation("storable", storable)
	return v
}

// notAllDigits 使用者名稱不可全為數字，避免與帳號混淆。
func notAllDigits(fl validator.FieldLevel) bool {
	for _, c := range fl.Field().String() {
		if c < '0' || c > '9' {
			return true
		}
	}
	return false
}

// storable 拒絕雙引號與控制字元；備份檔格式沒有跳脫機制。
func storable(fl validator.FieldLevel) bool {
	for _, c := range fl.Field().String() {
		if c == '"' || unicode.IsControl(c) {
			return false
		}
	}
	return true
}

// decode 解析 JSON 並驗證；失敗時已寫出 400 回應並回傳 false。
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeErr(w, fmt.Errorf("invalid json: %w", err), http.StatusBadRequest)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeErr(w, validationError(err), http.StatusBadRequest)
		return false
	}
	return true
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "notalldigits":
			msgs = append(msgs, fe.Field()+" must not be all digits")
		case "storable":
			msgs = append(msgs, fe.Field()+" must not contain quotes or control characters")
		case "datetime":
			msgs = append(msgs, fe.Field()+" must be formatted as "+fe.Param())
		case "len", "min", "max", "gt":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
