package p115

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yuzhii/p115gate/internal/conf"
	"github.com/yuzhii/p115gate/internal/errors"
)

// Options 客户端构造参数，零值字段取默认
type Options struct {
	// Cookie 115 登录态，透传到每次上游调用
	Cookie string
	// Cipher 下载接口报文加解密实现，缺省用生产实现
	Cipher Cipher
	// Timeout 上游 HTTP 超时
	Timeout time.Duration
	// CacheSize 各缓存表容量
	CacheSize int
	// DownloadURLTTL 直链缓存有效期
	DownloadURLTTL time.Duration
	// WebAPIURLs / ProAPIURLs 覆盖默认入口列表（测试用）
	WebAPIURLs []string
	ProAPIURLs []string
}

// Client 115 上游客户端：带凭证的 HTTP 调用、入口轮询、定位解析与缓存
type Client struct {
	http   *http.Client
	cipher Cipher
	webapi *endpointRing
	proapi *endpointRing
	cache  *cacheSet

	mu     sync.RWMutex
	cookie string
}

// NewClient 创建上游客户端
func NewClient(opts Options) (*Client, error) {
	if opts.Cipher == nil {
		opts.Cipher = NewCipher()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = conf.DefaultHTTPTimeout
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = conf.DefaultCacheSize
	}
	if opts.DownloadURLTTL <= 0 {
		opts.DownloadURLTTL = conf.DefaultDownloadURLTTL
	}
	if len(opts.WebAPIURLs) == 0 {
		opts.WebAPIURLs = defaultWebAPIURLs
	}
	if len(opts.ProAPIURLs) == 0 {
		opts.ProAPIURLs = defaultProAPIURLs
	}

	cache, err := newCacheSet(opts.CacheSize, opts.DownloadURLTTL)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:   &http.Client{Timeout: opts.Timeout},
		cipher: opts.Cipher,
		webapi: newEndpointRing(opts.WebAPIURLs),
		proapi: newEndpointRing(opts.ProAPIURLs),
		cache:  cache,
		cookie: opts.Cookie,
	}, nil
}

// SetCookie 热更新登录态
func (c *Client) SetCookie(cookie string) {
	c.mu.Lock()
	c.cookie = cookie
	c.mu.Unlock()
	log.Info().Msg("p115: cookie updated")
}

func (c *Client) currentCookie() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cookie
}

// getJSON 对 webapi 家族发起一次 GET 并解出归一化应答外壳
func (c *Client) getJSON(ctx context.Context, url string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", c.currentCookie())

	log.Debug().Str("url", url).Msg("p115: upstream GET")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.UpstreamTransport(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.UpstreamTransport(err)
	}
	return decodeEnvelope(body)
}

// postForm 对 proapi 家族发起一次表单 POST 并解出归一化应答外壳。
// userAgent 原样透传，115 的部分直链与 UA 绑定。
func (c *Client) postForm(ctx context.Context, url string, form url.Values, userAgent string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", c.currentCookie())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	log.Debug().Str("url", url).Msg("p115: upstream POST")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.UpstreamTransport(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.UpstreamTransport(err)
	}
	return decodeEnvelope(body)
}
