package syncerr

import (
	"errors"
	"fmt"
)

// Kind 同步错误的分类
// 控制层依据 Kind 决定是中断整条流水线还是仅记录消息继续
type Kind int

const (
	// KindAuth 鉴权失败（凭证缺失 / 刷新被拒）对该卖家是致命的
	KindAuth Kind = iota + 1
	// KindFetch 上游请求失败（刷新重试后仍非 200 或网络异常）局部可恢复
	KindFetch
	// KindPersist 入库失败（批次插入 / 清理失败）局部可恢复
	KindPersist
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindFetch:
		return "fetch"
	case KindPersist:
		return "persist"
	default:
		return "unknown"
	}
}

// Error 带分类的同步错误
type Error struct {
	Kind     Kind
	Platform string // mercadolivre / amazon / magalu
	Entity   string // produtos / pedidos / estoque ...
	Err      error
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("[%s] %s %s: %v", e.Platform, e.Kind, e.Entity, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Platform, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Auth 构造鉴权类错误
func Auth(platform string, err error) *Error {
	return &Error{Kind: KindAuth, Platform: platform, Err: err}
}

// Fetch 构造抓取类错误
func Fetch(platform, entity string, err error) *Error {
	return &Error{Kind: KindFetch, Platform: platform, Entity: entity, Err: err}
}

// Persist 构造持久化类错误
func Persist(platform, entity string, err error) *Error {
	return &Error{Kind: KindPersist, Platform: platform, Entity: entity, Err: err}
}

// ErrSellerNotFound 卖家不在凭证表中
var ErrSellerNotFound = errors.New("vendedor não encontrado")

// IsAuth 判断错误链中是否为鉴权致命错误
func IsAuth(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == KindAuth
	}
	return errors.Is(err, ErrSellerNotFound)
}

// IsFetch 判断是否为局部可恢复的抓取错误
func IsFetch(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindFetch
}

// IsPersist 判断是否为局部可恢复的持久化错误
func IsPersist(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindPersist
}
