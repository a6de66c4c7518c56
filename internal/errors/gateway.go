package errors

import "net/http"

// InvalidPickcode 定位参数形状错误，对应 400
func InvalidPickcode(pickcode string) error {
	return Newf(http.StatusBadRequest, "bad pickcode: %q", pickcode)
}

func InvalidSHA1(sha1 string) error {
	return Newf(http.StatusBadRequest, "bad sha1: %q", sha1)
}

func InvalidReceiveCode(receiveCode string) error {
	return Newf(http.StatusBadRequest, "bad receive_code: %q", receiveCode)
}

func InvalidQuery(query string) error {
	return Newf(http.StatusBadRequest, "bad query string: %q", query)
}

// NotFound 上游未命中或命中校验失败，对应 404。
// body 通常是上游的原始应答或请求的文件名。
func NotFound(body string) error {
	return New(http.StatusNotFound, body)
}

func ShareTargetRequired(shareCode string) error {
	return Newf(http.StatusNotFound, "please specify id or name: share_code=%q", shareCode)
}

// Upstream 上游返回失败状态（已处理的授权过期除外），对应 503
func Upstream(body string) error {
	return New(http.StatusServiceUnavailable, body)
}

// UpstreamTransport 上游网络层失败，对应 503
func UpstreamTransport(err error) error {
	return Wrap(http.StatusServiceUnavailable, "upstream request failed", err)
}
