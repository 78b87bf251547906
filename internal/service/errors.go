package service

import (
	"anonbox/internal/apperror"
	"anonbox/internal/repository"
)

// Domain errors. Messages are shown to the visitor as-is.
var (
	ErrMissingCredentials = apperror.Validation("請輸入使用者名稱和密碼", nil)
	ErrDuplicateUsername  = apperror.Validation("使用者名稱已存在", repository.ErrDuplicateUsername)
	ErrPasswordTooLong    = apperror.Validation("密碼長度不能超過 72 個位元組", nil)
	ErrInvalidCredentials = apperror.Auth("使用者名稱或密碼錯誤", nil)
	ErrEmptyContent       = apperror.Validation("訊息內容不能為空", nil)
	ErrInvalidLink        = apperror.NotFound("無效的連結", nil)
	ErrUserNotFound       = apperror.NotFound("找不到使用者", nil)
	ErrMessageNotFound    = apperror.NotFound("找不到訊息", nil)
	ErrUnknownResource    = apperror.NotFound("未知的資料類型", nil)
	ErrMalformedPayload   = apperror.Validation("資料格式錯誤，必須是 JSON 陣列", nil)
)

func storageError(err error) error {
	return apperror.Storage("系統忙碌中，請稍後再試", err)
}
