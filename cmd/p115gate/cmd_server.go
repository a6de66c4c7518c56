package p115gate

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yuzhii/p115gate/internal/conf"
	"github.com/yuzhii/p115gate/internal/gateway/http"
	"github.com/yuzhii/p115gate/internal/p115"
)

var (
	serverAddr       string
	serverCookiePath string
	serverConfigPath string
)

var serverCmd = &cobra.Command{
	Use:    "server",
	Short:  "启动 302 跳转网关服务",
	PreRun: initLog,
	Run:    runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringVarP(&serverAddr, "addr", "a", "", "listen address (default \"0.0.0.0:8000\")")
	serverCmd.Flags().StringVarP(&serverCookiePath, "cookie", "c", "", "path to 115 cookie file (default \"115-cookies.txt\")")
	serverCmd.Flags().StringVar(&serverConfigPath, "config", "", "path to config file")
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := conf.Load(serverConfigPath)
	if err != nil {
		log.Err(err).Msg("failed to load config")
		return
	}
	if serverAddr != "" {
		cfg.Addr = serverAddr
	}
	if serverCookiePath != "" {
		cfg.CookiePath = serverCookiePath
	}
	if Debug {
		cfg.Debug = true
	}

	cookie, err := conf.LoadCookie(cfg.CookiePath)
	if err != nil {
		log.Err(err).Str("path", cfg.CookiePath).Msg("failed to load cookie")
		return
	}

	agent, err := p115.NewClient(p115.Options{
		Cookie:         cookie,
		Timeout:        cfg.HTTPTimeout,
		CacheSize:      cfg.CacheSize,
		DownloadURLTTL: cfg.DownloadURLTTL,
	})
	if err != nil {
		log.Err(err).Msg("failed to create 115 client")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// cookie 文件变更时热更新凭证，无需重启进程
	go func() {
		if err := conf.WatchCookie(ctx, cfg.CookiePath, agent.SetCookie); err != nil {
			log.Warn().Err(err).Str("path", cfg.CookiePath).Msg("cookie watcher stopped")
		}
	}()

	svc := http.NewService(cfg, agent)
	go func() {
		if err := svc.Serve(); err != nil {
			log.Err(err).Msg("http server stopped")
			stop()
		}
	}()
	log.Info().Str("addr", cfg.Addr).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown was not clean")
	}
}
