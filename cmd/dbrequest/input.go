package main

import (
	"fmt"
	"os"
	"strings"

	"dbrequest/request/ast"
)

// readFragment 解析 --filter / --update，@ 开头的从文件里读，空字符串返回 nil
func readFragment(flag, val string) (ast.Fragment, error) {
	if val == "" {
		return nil, nil
	}
	data := []byte(val)
	if strings.HasPrefix(val, "@") {
		var err error
		data, err = os.ReadFile(val[1:])
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flag, err)
		}
	}
	f, err := ast.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return f, nil
}
