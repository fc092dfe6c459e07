package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "dbrequest",
		Short: "对 SQL 数据库执行 dbrequest 请求",
		Long: `dbrequest 读取 JSON 形式的过滤和更新 AST，编译成 SQL 在一张表上执行。

--filter 和 --update 可以直接写 JSON，也可以用 @path 从文件里读。
配置来自 --config 指定的文件和 DBREQUEST_ 开头的环境变量。`,
		SilenceUsage: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "配置文件（yaml/json/toml）")
	flags.String("driver", "", "sql.Open 用的驱动：sqlite3、mysql、postgres")
	flags.String("dsn", "", "数据源")
	flags.String("table", "", "表名")
	flags.String("dialect", "", "SQL 方言，默认和驱动一致")

	cmd.AddCommand(
		newCountCmd(opts),
		newFindCmd(opts),
		newPutCmd(opts),
		newUpdateCmd(opts),
		newRemoveCmd(opts),
		newExplainCmd(opts),
	)
	return cmd
}
