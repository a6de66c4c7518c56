package p115

import "sync/atomic"

// 官方等价入口列表，按家族轮询分摊单机限流压力。
// proapi 通过重复项对 http 入口加权。
var (
	defaultWebAPIURLs = []string{
		"http://anxia.com/webapi",
		"http://v.anxia.com/webapi",
		"http://web.api.115.com",
	}
	defaultProAPIURLs = []string{
		"http://pro.api.115.com",
		"http://pro.api.115.com",
		"http://pro.api.115.com",
		"http://pro.api.115.com",
		"https://proapi.115.com",
	}
)

// endpointRing 无锁轮询环，Next 从列表首项开始依次返回，永不阻塞。
type endpointRing struct {
	urls []string
	next atomic.Uint64
}

func newEndpointRing(urls []string) *endpointRing {
	return &endpointRing{urls: urls}
}

func (r *endpointRing) Next() string {
	i := r.next.Add(1) - 1
	return r.urls[i%uint64(len(r.urls))]
}
