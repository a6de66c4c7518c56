package http

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yuzhii/p115gate/internal/errors"
)

// redirectQuery 定位参数，name 也可以来自请求路径
type redirectQuery struct {
	Name        string `form:"name"`
	ShareCode   string `form:"share_code"`
	ReceiveCode string `form:"receive_code"`
	Pickcode    string `form:"pickcode"`
	ID          int64  `form:"id"`
	SHA1        string `form:"sha1"`
	Refresh     bool   `form:"refresh"`
}

var knownParams = map[string]bool{
	"name":         true,
	"share_code":   true,
	"receive_code": true,
	"pickcode":     true,
	"id":           true,
	"sha1":         true,
	"refresh":      true,
}

// handleRedirect 解析定位参数并 302 跳转到解析出的直链
func (s *Service) handleRedirect(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		c.String(http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	params := redirectQuery{}
	if err := c.ShouldBindQuery(&params); err != nil {
		errors.Err(c, errors.Wrap(http.StatusBadRequest, "bad query parameters", err))
		return
	}
	if params.Name == "" {
		params.Name = strings.TrimPrefix(c.Request.URL.Path, "/")
	}

	// 客户端中途断开也让上游调用跑完：解析结果照常进缓存，不算白做
	ctx := context.WithoutCancel(c.Request.Context())

	var target string
	var err error
	if params.ShareCode != "" {
		target, err = s.resolveShare(ctx, &params)
	} else {
		target, err = s.resolveDirect(ctx, c, &params)
	}
	if err != nil {
		errors.Err(c, err)
		return
	}
	if target == "" {
		c.String(http.StatusNotFound, "%s", c.Request.URL.String())
		return
	}
	c.Redirect(http.StatusFound, target)
}

// resolveShare 分享上下文：补齐提取码、定位文件 id、换取直链
func (s *Service) resolveShare(ctx context.Context, p *redirectQuery) (string, error) {
	receiveCode := p.ReceiveCode
	if receiveCode == "" {
		var err error
		if receiveCode, err = s.agent.ReceiveCode(ctx, p.ShareCode); err != nil {
			return "", err
		}
	} else if len(receiveCode) != 4 {
		return "", errors.InvalidReceiveCode(receiveCode)
	}

	id := p.ID
	if id == 0 && p.Name != "" {
		var err error
		if id, err = s.agent.ShareFileID(ctx, p.ShareCode, receiveCode, p.Name, p.Refresh); err != nil {
			return "", err
		}
	}
	if id == 0 {
		return "", errors.ShareTargetRequired(p.ShareCode)
	}
	return s.agent.ShareDownloadURL(ctx, p.ShareCode, receiveCode, id)
}

// resolveDirect 普通文件：按固定优先级把各种定位方式归约成 pickcode。
// 优先级：显式 pickcode > id > sha1 > 裸查询串自动识别 > 路径名自动识别。
func (s *Service) resolveDirect(ctx context.Context, c *gin.Context, p *redirectQuery) (string, error) {
	pickcode := p.Pickcode
	var err error
	switch {
	case pickcode != "":
		if !isPickcode(pickcode) {
			return "", errors.InvalidPickcode(pickcode)
		}
	case p.ID != 0:
		pickcode, err = s.agent.PickcodeByID(ctx, p.ID)
	case p.SHA1 != "":
		if !isSHA1(p.SHA1) {
			return "", errors.InvalidSHA1(p.SHA1)
		}
		pickcode, err = s.agent.PickcodeBySHA1(ctx, p.SHA1)
	default:
		if raw := c.Request.URL.RawQuery; raw != "" && !hasKnownParam(raw) {
			pickcode, err = s.detectLocator(ctx, raw, errors.InvalidQuery(raw))
		} else if name := p.Name; name != "" {
			pickcode, err = s.detectLocator(ctx, name, nil)
			if err == nil && pickcode == "" {
				pickcode, err = s.agent.PickcodeByName(ctx, name, p.Refresh)
			}
		}
	}
	if err != nil {
		return "", err
	}
	if pickcode == "" {
		return "", nil
	}
	return s.agent.DownloadURL(ctx, strings.ToLower(pickcode), c.GetHeader("User-Agent"))
}

// detectLocator 按形状识别一个裸定位串：pickcode、sha1、全数字 id。
// 三种形状都不匹配时返回 fallback 错误；fallback 为 nil 表示交还调用方继续处理。
func (s *Service) detectLocator(ctx context.Context, value string, fallback error) (string, error) {
	switch {
	case isPickcode(value):
		return value, nil
	case isSHA1(value):
		return s.agent.PickcodeBySHA1(ctx, value)
	case isDigits(value):
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return "", errors.InvalidQuery(value)
		}
		return s.agent.PickcodeByID(ctx, id)
	}
	return "", fallback
}

func hasKnownParam(rawQuery string) bool {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return false
	}
	for key := range values {
		if knownParams[key] {
			return true
		}
	}
	return false
}

func isPickcode(s string) bool {
	if len(s) != 17 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

func isSHA1(s string) bool {
	if len(s) != 40 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
