package conf

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// LoadCookie 读取 cookie 文件内容并去掉首尾空白
func LoadCookie(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// WatchCookie 监听 cookie 文件变更，变更后重新读取并通过 apply 下发。
// 监听目录而不是文件本身，编辑器原子替换（rename+create）也能触发。
func WatchCookie(ctx context.Context, path string, apply func(cookie string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)
	log.Debug().Str("dir", dir).Str("file", target).Msg("conf: watching cookie file")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cookie, err := LoadCookie(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("conf: reload cookie failed")
				continue
			}
			apply(cookie)
			log.Info().Str("path", path).Msg("conf: cookie reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("conf: cookie watcher error")
		}
	}
}
