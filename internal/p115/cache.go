package p115

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type shareNameKey struct {
	shareCode string
	name      string
}

type shareFileKey struct {
	shareCode string
	fileID    int64
}

// cacheSet 客户端的全部缓存表。
// 四张定位表按容量做 LRU 淘汰，两张直链表按 TTL 过期，
// receive_code 表无上界，只在授权过期恢复时逐出。
// 各表互不联动，也不会被主动失效。
type cacheSet struct {
	idToPickcode   *lru.Cache[int64, string]
	sha1ToPickcode *lru.Cache[string, string]
	nameToPickcode *lru.Cache[string, string]
	shareNameToID  *lru.Cache[shareNameKey, int64]

	downloadURL      *expirable.LRU[string, string]
	shareDownloadURL *expirable.LRU[shareFileKey, string]

	mu           sync.RWMutex
	receiveCodes map[string]string
}

func newCacheSet(size int, ttl time.Duration) (*cacheSet, error) {
	cs := &cacheSet{
		downloadURL:      expirable.NewLRU[string, string](size, nil, ttl),
		shareDownloadURL: expirable.NewLRU[shareFileKey, string](size, nil, ttl),
		receiveCodes:     make(map[string]string),
	}
	var err error
	if cs.idToPickcode, err = lru.New[int64, string](size); err != nil {
		return nil, err
	}
	if cs.sha1ToPickcode, err = lru.New[string, string](size); err != nil {
		return nil, err
	}
	if cs.nameToPickcode, err = lru.New[string, string](size); err != nil {
		return nil, err
	}
	if cs.shareNameToID, err = lru.New[shareNameKey, int64](size); err != nil {
		return nil, err
	}
	return cs, nil
}

func (cs *cacheSet) receiveCode(shareCode string) (string, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	code, ok := cs.receiveCodes[shareCode]
	return code, ok
}

func (cs *cacheSet) setReceiveCode(shareCode, receiveCode string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.receiveCodes[shareCode] = receiveCode
}

// dropReceiveCode 逐出授权项，返回是否确实存在过
func (cs *cacheSet) dropReceiveCode(shareCode string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	_, ok := cs.receiveCodes[shareCode]
	if ok {
		delete(cs.receiveCodes, shareCode)
	}
	return ok
}
