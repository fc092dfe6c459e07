package request

import (
	"encoding/json"

	"dbrequest/request/ast"
	"dbrequest/request/internal/errs"
)

// QueryType 标记增删改查
type QueryType string

const (
	QueryCount  QueryType = "COUNT"
	QueryCreate QueryType = "CREATE"
	QueryRead   QueryType = "READ"
	QueryUpdate QueryType = "UPDATE"
	QueryDelete QueryType = "DELETE"
)

func (t QueryType) String() string {
	return string(t)
}

// Query 是交给后端的请求
type Query struct {
	Type   QueryType    `json:"type"`
	Filter ast.Fragment `json:"filter,omitempty"`
	Update ast.Fragment `json:"update,omitempty"`
}

func (q *Query) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   QueryType       `json:"type"`
		Filter json.RawMessage `json:"filter"`
		Update json.RawMessage `json:"update"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	res := Query{Type: raw.Type}
	var err error
	if len(raw.Filter) > 0 {
		if res.Filter, err = ast.Parse(raw.Filter); err != nil {
			return err
		}
	}
	if len(raw.Update) > 0 {
		if res.Update, err = ast.Parse(raw.Update); err != nil {
			return err
		}
	}
	*q = res
	return nil
}

// Where 生成过滤容器 [{filter, p}]，多个条件从左到右用 And 连起来
func Where(ps ...Predicate) ast.Fragment {
	if len(ps) == 0 {
		return nil
	}
	p := ps[0]
	for i := 1; i < len(ps); i++ {
		p = p.And(ps[i])
	}
	return ast.Seq{ast.Filter(p.AST())}
}

// Assignment 是一条赋值，序列化成 [prop, assign]
type Assignment struct {
	prop string
	val  Expression
}

// Set("foo", "bar")
// Set("i", E("i").Add(1))
func Set(prop string, val any) Assignment {
	return Assignment{prop: prop, val: ValueOf(val)}
}

func (a Assignment) AST() ast.Fragment {
	return ast.Seq{ast.Prop(a.prop), ast.Assign(a.val.AST())}
}

// Update 生成 update 容器
func Update(assigns ...Assignment) ast.Fragment {
	res := make(ast.Seq, 0, len(assigns))
	for _, a := range assigns {
		res = append(res, a.AST())
	}
	return res
}

// Values 把结构体的每个字段都变成赋值，列名由 schema 决定
func Values(entity any) (ast.Fragment, error) {
	return defaultCore.values(entity)
}

func (c core) values(entity any) (ast.Fragment, error) {
	s, err := c.r.Get(entity)
	if err != nil {
		return nil, err
	}
	val := c.creator(s, entity)
	assigns := make([]Assignment, 0, len(s.Fields))
	for _, fd := range s.Fields {
		v, err := val.Field(fd.GoName)
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, Set(fd.ColName, v))
	}
	if len(assigns) == 0 {
		return nil, errs.ErrEmptyUpdate
	}
	return Update(assigns...), nil
}
