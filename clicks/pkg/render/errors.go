package render

import "fmt"

// FailureLabel 诊断记录的固定标签
const FailureLabel = "Error fetching data:"

// FailureKind 拉取失败的种类
type FailureKind int

const (
	// NetworkError 传输层失败：建连、超时、取消、读响应体
	NetworkError FailureKind = iota + 1
	// DecodeError 响应体不是合法 JSON
	DecodeError
)

func (k FailureKind) String() string {
	switch k {
	case NetworkError:
		return "network error"
	case DecodeError:
		return "decode error"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// RetrievalError 拉取或解析失败。两种 Kind 走同一条诊断路径。
type RetrievalError struct {
	Kind FailureKind
	URL  string
	Err  error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s: GET %s: %v", e.Kind, e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
