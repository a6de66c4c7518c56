package p115

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yuzhii/p115gate/internal/errors"
)

// 分享的提取码已过期（被重置）时上游返回的错误码
const errnoReceiveCodeExpired = 4100008

// 带该标记的直链不是一次性的，才允许进入 TTL 缓存
const reusableURLMarker = "&c=0&f=&"

func cacheableURL(u string) bool {
	return strings.Contains(u, reusableURLMarker)
}

// DownloadURL 用 pickcode 换取直链。
// userAgent 透传到上游，115 会把部分直链和请求 UA 绑定。
func (c *Client) DownloadURL(ctx context.Context, pickcode string, userAgent string) (string, error) {
	if u, ok := c.cache.downloadURL.Get(pickcode); ok {
		log.Debug().Str("pickcode", pickcode).Msg("p115: download url cache hit")
		return u, nil
	}
	body, err := json.Marshal(map[string]string{"pick_code": pickcode})
	if err != nil {
		return "", err
	}
	plain, env, err := c.postEncrypted(ctx, c.proapi.Next()+"/android/2.0/ufile/download", body, userAgent)
	if err != nil {
		return "", err
	}
	if env != nil {
		return "", errors.Upstream(string(env.raw))
	}
	var payload struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(plain, &payload); err != nil {
		return "", err
	}
	if cacheableURL(payload.URL) {
		c.cache.downloadURL.Add(pickcode, payload.URL)
	}
	return payload.URL, nil
}

// ShareDownloadURL 用分享上下文里的文件 id 换取直链。
// 提取码过期时逐出缓存的授权、重查提取码并整体重试一次。
func (c *Client) ShareDownloadURL(ctx context.Context, shareCode, receiveCode string, fileID int64) (string, error) {
	return c.shareDownloadURL(ctx, shareCode, receiveCode, fileID, false)
}

func (c *Client) shareDownloadURL(ctx context.Context, shareCode, receiveCode string, fileID int64, retried bool) (string, error) {
	key := shareFileKey{shareCode: shareCode, fileID: fileID}
	if u, ok := c.cache.shareDownloadURL.Get(key); ok {
		log.Debug().Str("share_code", shareCode).Int64("file_id", fileID).Msg("p115: share download url cache hit")
		return u, nil
	}
	body, err := json.Marshal(struct {
		ShareCode   string `json:"share_code"`
		ReceiveCode string `json:"receive_code"`
		FileID      int64  `json:"file_id"`
	}{shareCode, receiveCode, fileID})
	if err != nil {
		return "", err
	}
	plain, env, err := c.postEncrypted(ctx, c.proapi.Next()+"/app/share/downurl", body, "")
	if err != nil {
		return "", err
	}
	if env != nil {
		if env.errCode() == errnoReceiveCodeExpired && !retried && c.cache.dropReceiveCode(shareCode) {
			log.Debug().Str("share_code", shareCode).Msg("p115: receive_code expired, refetching")
			receiveCode, err = c.ReceiveCode(ctx, shareCode)
			if err != nil {
				return "", err
			}
			return c.shareDownloadURL(ctx, shareCode, receiveCode, fileID, true)
		}
		return "", errors.Upstream(string(env.raw))
	}
	var payload struct {
		URL json.RawMessage `json:"url"`
	}
	if err := json.Unmarshal(plain, &payload); err != nil {
		return "", err
	}
	// url 字段为空表示文件已从分享里删除或分享已失效
	if emptyJSON(payload.URL) {
		return "", errors.NotFound(string(plain))
	}
	var urlInfo struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(payload.URL, &urlInfo); err != nil {
		return "", err
	}
	if cacheableURL(urlInfo.URL) {
		c.cache.shareDownloadURL.Add(key, urlInfo.URL)
	}
	return urlInfo.URL, nil
}

// postEncrypted 加密请求体、POST、校验状态并解密载荷。
// 上游报失败状态时返回非空 envelope，由调用方决定如何处置。
func (c *Client) postEncrypted(ctx context.Context, api string, body []byte, userAgent string) ([]byte, *envelope, error) {
	ciphertext, key, err := c.cipher.Encrypt(body)
	if err != nil {
		return nil, nil, err
	}
	form := url.Values{}
	form.Set("data", ciphertext)
	env, err := c.postForm(ctx, api, form, userAgent)
	if err != nil {
		return nil, nil, err
	}
	if !env.State {
		return nil, env, nil
	}
	var data string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, nil, err
	}
	plain, err := c.cipher.Decrypt(data, key)
	if err != nil {
		return nil, nil, err
	}
	return plain, nil, nil
}

// emptyJSON 判断 url 字段是否为空值（null / "" / {} / []）
func emptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return true
	case bytes.Equal(trimmed, []byte("null")):
		return true
	case bytes.Equal(trimmed, []byte(`""`)):
		return true
	case bytes.Equal(trimmed, []byte("{}")):
		return true
	case bytes.Equal(trimmed, []byte("[]")):
		return true
	}
	return false
}
