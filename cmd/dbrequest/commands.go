package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dbrequest/internal/config"
	"dbrequest/request"
	"dbrequest/request/ast"
)

// runWithApp 加载配置，创建 app，执行完释放资源
func runWithApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load(opts.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	return fn(ctx, a)
}

func newCountCmd(opts *rootOptions) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "count",
		Short: "统计满足 filter 的记录数",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFragment("filter", filter)
			if err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				cnt, err := a.driver.CountElements(ctx, f)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cnt)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "过滤 AST（JSON 或 @file）")
	return cmd
}

func newFindCmd(opts *rootOptions) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "find",
		Short: "查找满足 filter 的记录，每行输出一个 JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFragment("filter", filter)
			if err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				cursor, err := a.driver.FindElements(ctx, f)
				if err != nil {
					return err
				}
				for cursor.Next() {
					if err = printJSON(cmd.OutOrStdout(), cursor.Model()); err != nil {
						return err
					}
				}
				return cursor.Err()
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "过滤 AST（JSON 或 @file）")
	return cmd
}

func newPutCmd(opts *rootOptions) *cobra.Command {
	var update string
	cmd := &cobra.Command{
		Use:   "put",
		Short: "插入一条记录，输出插入后的记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := readFragment("update", update)
			if err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				m, err := a.driver.PutElement(ctx, u)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), m)
			})
		},
	}
	cmd.Flags().StringVar(&update, "update", "", "赋值 AST（JSON 或 @file）")
	_ = cmd.MarkFlagRequired("update")
	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var filter, update string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "更新满足 filter 的记录，输出影响的行数",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFragment("filter", filter)
			if err != nil {
				return err
			}
			u, err := readFragment("update", update)
			if err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				affected, err := a.driver.UpdateElements(ctx, f, u)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), affected)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "过滤 AST（JSON 或 @file）")
	cmd.Flags().StringVar(&update, "update", "", "赋值 AST（JSON 或 @file）")
	_ = cmd.MarkFlagRequired("update")
	return cmd
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "删除满足 filter 的记录，输出影响的行数",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFragment("filter", filter)
			if err != nil {
				return err
			}
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				affected, err := a.driver.RemoveElements(ctx, f)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), affected)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "过滤 AST（JSON 或 @file）")
	return cmd
}

func newExplainCmd(opts *rootOptions) *cobra.Command {
	var typ, filter, update, format string
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "打印请求，不访问数据库",
		Long: `explain 打印请求本身：
  json   请求的 JSON
  proto  filter 和 update 的 protobuf JSON
  sql    按配置的表和方言编译出来的 SQL 和参数`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			qt, err := parseType(typ)
			if err != nil {
				return err
			}
			q := &request.Query{Type: qt}
			if q.Filter, err = readFragment("filter", filter); err != nil {
				return err
			}
			if q.Update, err = readFragment("update", update); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return printJSON(out, q)
			case "proto":
				return explainProto(out, q)
			case "sql":
				cfg, err := config.Load(opts.configFile, cmd.Flags())
				if err != nil {
					return err
				}
				stmt, err := newSQLBackend(cfg, nil).Compile(q)
				if err != nil {
					return err
				}
				if _, err = fmt.Fprintln(out, stmt.SQL); err != nil {
					return err
				}
				return printJSON(out, stmt.Args)
			default:
				return fmt.Errorf("dbrequest: 未知格式 %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&typ, "type", "find", "请求类型：count、find、put、update、remove")
	cmd.Flags().StringVar(&filter, "filter", "", "过滤 AST（JSON 或 @file）")
	cmd.Flags().StringVar(&update, "update", "", "赋值 AST（JSON 或 @file）")
	cmd.Flags().StringVar(&format, "format", "json", "输出格式：json、proto、sql")
	return cmd
}

// parseType 命令名和请求类型都认
func parseType(typ string) (request.QueryType, error) {
	switch strings.ToLower(typ) {
	case "count":
		return request.QueryCount, nil
	case "find", "read":
		return request.QueryRead, nil
	case "put", "create":
		return request.QueryCreate, nil
	case "update":
		return request.QueryUpdate, nil
	case "remove", "delete":
		return request.QueryDelete, nil
	}
	return "", fmt.Errorf("dbrequest: 未知请求类型 %q", typ)
}

func explainProto(w io.Writer, q *request.Query) error {
	res := map[string]json.RawMessage{}
	typ, err := json.Marshal(q.Type)
	if err != nil {
		return err
	}
	res["type"] = typ
	for key, f := range map[string]ast.Fragment{"filter": q.Filter, "update": q.Update} {
		if f == nil {
			continue
		}
		data, err := ast.MarshalProtoJSON(f)
		if err != nil {
			return err
		}
		res[key] = data
	}
	return printJSON(w, res)
}

func printJSON(w io.Writer, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
