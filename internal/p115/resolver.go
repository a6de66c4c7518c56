package p115

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/yuzhii/p115gate/internal/errors"
)

// 搜索类接口命中该错误码表示条件过载，去掉 suffix 过滤后重试一次
const errnoQueryOverloaded = 20021

// PickcodeByID 通过文件 id 换取 pickcode
func (c *Client) PickcodeByID(ctx context.Context, id int64) (string, error) {
	if pickcode, ok := c.cache.idToPickcode.Get(id); ok {
		log.Debug().Int64("id", id).Msg("p115: id->pickcode cache hit")
		return pickcode, nil
	}
	env, err := c.getJSON(ctx, fmt.Sprintf("%s/files/file?file_id=%d", c.webapi.Next(), id))
	if err != nil {
		return "", err
	}
	if !env.State {
		return "", errors.NotFound(string(env.raw))
	}
	var records []fileRecord
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return "", err
	}
	if len(records) == 0 || records[0].pickcode() == "" {
		return "", errors.NotFound(string(env.raw))
	}
	pickcode := records[0].pickcode()
	c.cache.idToPickcode.Add(id, pickcode)
	return pickcode, nil
}

// PickcodeBySHA1 通过文件内容 sha1 换取 pickcode
func (c *Client) PickcodeBySHA1(ctx context.Context, sha1 string) (string, error) {
	sha1 = strings.ToUpper(sha1)
	if pickcode, ok := c.cache.sha1ToPickcode.Get(sha1); ok {
		log.Debug().Str("sha1", sha1).Msg("p115: sha1->pickcode cache hit")
		return pickcode, nil
	}
	env, err := c.getJSON(ctx, fmt.Sprintf("%s/files/shasearch?sha1=%s", c.webapi.Next(), sha1))
	if err != nil {
		return "", err
	}
	if !env.State {
		return "", errors.NotFound(string(env.raw))
	}
	var record fileRecord
	if err := json.Unmarshal(env.Data, &record); err != nil {
		return "", err
	}
	if record.pickcode() == "" {
		return "", errors.NotFound(string(env.raw))
	}
	c.cache.sha1ToPickcode.Add(sha1, record.pickcode())
	return record.pickcode(), nil
}

// PickcodeByName 按文件名搜索换取 pickcode，refresh 为真时跳过缓存
func (c *Client) PickcodeByName(ctx context.Context, name string, refresh bool) (string, error) {
	if !refresh {
		if pickcode, ok := c.cache.nameToPickcode.Get(name); ok {
			log.Debug().Str("name", name).Msg("p115: name->pickcode cache hit")
			return pickcode, nil
		}
	}
	api := c.webapi.Next() + "/files/search"
	payload := url.Values{}
	payload.Set("search_value", name)
	payload.Set("limit", "1")
	payload.Set("type", "99")
	if suffix := searchSuffix(name); suffix != "" {
		payload.Set("suffix", suffix)
	}
	env, err := c.searchWithRetry(ctx, api, payload)
	if err != nil {
		return "", err
	}
	if !env.State || env.Count == 0 {
		return "", errors.NotFound(string(env.raw))
	}
	var records []fileRecord
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", errors.NotFound(string(env.raw))
	}
	// 搜索接口可能做模糊匹配，名称不完全一致视为未命中
	if records[0].name() != name {
		return "", errors.NotFound(name)
	}
	pickcode := records[0].pickcode()
	c.cache.nameToPickcode.Add(name, pickcode)
	return pickcode, nil
}

// ShareFileID 在分享上下文里按文件名搜索，换取分享内的文件 id
func (c *Client) ShareFileID(ctx context.Context, shareCode, receiveCode, name string, refresh bool) (int64, error) {
	key := shareNameKey{shareCode: shareCode, name: name}
	if !refresh {
		if id, ok := c.cache.shareNameToID.Get(key); ok {
			log.Debug().Str("share_code", shareCode).Str("name", name).Msg("p115: share name->id cache hit")
			return id, nil
		}
	}
	api := c.webapi.Next() + "/share/search"
	payload := url.Values{}
	payload.Set("share_code", shareCode)
	payload.Set("receive_code", receiveCode)
	payload.Set("search_value", name)
	payload.Set("limit", "1")
	payload.Set("type", "99")
	if suffix := searchSuffix(name); suffix != "" {
		payload.Set("suffix", suffix)
	}
	env, err := c.searchWithRetry(ctx, api, payload)
	if err != nil {
		return 0, err
	}
	var data shareSearchData
	if env.State {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return 0, err
		}
	}
	if !env.State || data.Count == 0 || len(data.List) == 0 {
		return 0, errors.NotFound(string(env.raw))
	}
	record := data.List[0]
	if record.name() != name {
		return 0, errors.NotFound(name)
	}
	id, err := strconv.ParseInt(record.FileID, 10, 64)
	if err != nil {
		return 0, err
	}
	c.cache.shareNameToID.Add(key, id)
	return id, nil
}

// ReceiveCode 查询分享的提取码并缓存
func (c *Client) ReceiveCode(ctx context.Context, shareCode string) (string, error) {
	if receiveCode, ok := c.cache.receiveCode(shareCode); ok {
		log.Debug().Str("share_code", shareCode).Msg("p115: receive_code cache hit")
		return receiveCode, nil
	}
	env, err := c.getJSON(ctx, fmt.Sprintf("%s/share/shareinfo?share_code=%s", c.webapi.Next(), url.QueryEscape(shareCode)))
	if err != nil {
		return "", err
	}
	if !env.State {
		return "", errors.NotFound(string(env.raw))
	}
	var data shareInfoData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", err
	}
	c.cache.setReceiveCode(shareCode, data.ReceiveCode)
	return data.ReceiveCode, nil
}

// searchWithRetry 发起一次搜索，命中条件过载错误码时去掉 suffix 再试一次
func (c *Client) searchWithRetry(ctx context.Context, api string, payload url.Values) (*envelope, error) {
	env, err := c.getJSON(ctx, api+"?"+payload.Encode())
	if err != nil {
		return nil, err
	}
	if env.errCode() == errnoQueryOverloaded && payload.Has("suffix") {
		log.Debug().Str("api", api).Msg("p115: query overloaded, retrying without suffix")
		payload.Del("suffix")
		return c.getJSON(ctx, api+"?"+payload.Encode())
	}
	return env, nil
}

// searchSuffix 取文件名最后一个点号之后的部分作为 suffix 过滤条件，
// 含非字母数字字符时不过滤
func searchSuffix(name string) string {
	suffix := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		suffix = name[i+1:]
	}
	if suffix == "" {
		return ""
	}
	for _, r := range suffix {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ""
		}
	}
	return suffix
}
