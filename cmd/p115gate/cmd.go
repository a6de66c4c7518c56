package p115gate

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "p115gate",
	Short: "115 网盘 302 跳转网关",
	Long:  "p115gate 接收 id / sha1 / pickcode / 文件名等定位参数，解析为 115 网盘的直链并以 302 跳转返回。",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&Debug, "debug", "d", false, "debug mode")
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("command failed")
	}
}
