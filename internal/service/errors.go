package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailExist           = errors.New("邮箱已注册")
	ErrPasswordIncorrect    = errors.New("密码错误")
	ErrCodeNotFound         = errors.New("配对码不存在")
	ErrCodeExpired          = errors.New("配对码已过期")
	ErrCodeAlreadyUsed      = errors.New("配对码已被使用")
	ErrSelfPairing          = errors.New("不能使用自己生成的配对码")
	ErrAlreadyConnected     = errors.New("已存在进行中的会话")
	ErrConversationNotFound = errors.New("会话不存在或已关闭")
	ErrMessageNotFound      = errors.New("消息不存在")
	ErrFileNotExist         = errors.New("文件不存在")
	ErrFileTooLarge         = errors.New("文件大小超出限制")
	ErrNotificationNotFound = errors.New("通知不存在")
	ErrStorageFailure       = errors.New("存储服务异常")
	AuthenticationError     = errors.New("连接鉴权失败")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrUserNotFound:         NotFound,
	ErrEmailExist:           BadRequest,
	ErrPasswordIncorrect:    Unauthorized,
	ErrCodeNotFound:         NotFound,
	ErrCodeExpired:          BadRequest,
	ErrCodeAlreadyUsed:      BadRequest,
	ErrSelfPairing:          BadRequest,
	ErrAlreadyConnected:     BadRequest,
	ErrConversationNotFound: NotFound,
	ErrMessageNotFound:      NotFound,
	ErrFileNotExist:         NotFound,
	ErrFileTooLarge:         BadRequest,
	ErrNotificationNotFound: NotFound,
	ErrStorageFailure:       InternalServerError,
	AuthenticationError:     Unauthorized,
	UnauthorizedError:       Unauthorized,
	UnExpectedError:         InternalServerError,
}
