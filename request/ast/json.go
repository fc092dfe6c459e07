package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Marshal 把片段编码成 JSON
func Marshal(f Fragment) ([]byte, error) {
	return json.Marshal(f)
}

// Parse 解析 JSON 形态的片段，对象是 Node，数组是 Seq
func Parse(data []byte) (Fragment, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromAny(raw)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	f, err := Parse(data)
	if err != nil {
		return err
	}
	node, ok := f.(Node)
	if !ok {
		return fmt.Errorf("ast: 期望对象，得到 %T", f)
	}
	*n = node
	return nil
}

func (s *Seq) UnmarshalJSON(data []byte) error {
	f, err := Parse(data)
	if err != nil {
		return err
	}
	seq, ok := f.(Seq)
	if !ok {
		return fmt.Errorf("ast: 期望数组，得到 %T", f)
	}
	*s = seq
	return nil
}

// FromAny 把 JSON 解码出来的通用结构转回片段，
// 数字可以是 json.Number 或者 float64
func FromAny(raw any) (Fragment, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		res := make(Seq, 0, len(v))
		for _, elem := range v {
			f, err := FromAny(elem)
			if err != nil {
				return nil, err
			}
			res = append(res, f)
		}
		return res, nil
	case map[string]any:
		return nodeFromMap(v)
	default:
		return nil, fmt.Errorf("ast: 片段只能是对象或数组，得到 %T", raw)
	}
}

func nodeFromMap(m map[string]any) (Node, error) {
	name, ok := m["name"].(string)
	if !ok {
		return Node{}, fmt.Errorf("ast: 节点缺少 name")
	}
	kind := Kind(name)
	if !kind.valid() {
		return Node{}, fmt.Errorf("ast: 未知节点 %q", name)
	}
	raw := m["val"]
	switch kind {
	case KindRef, KindProp, KindOp, KindCond:
		s, ok := raw.(string)
		if !ok {
			return Node{}, fmt.Errorf("ast: %s 节点的 val 必须是字符串", kind)
		}
		return Node{Name: kind, Val: s}, nil
	case KindFunc:
		obj, ok := raw.(map[string]any)
		if !ok {
			return Node{}, fmt.Errorf("ast: func 节点的 val 必须是对象")
		}
		fn, ok := obj["func"].(string)
		if !ok {
			return Node{}, fmt.Errorf("ast: func 节点缺少函数名")
		}
		rawArgs, _ := obj["args"].([]any)
		args := make([]Fragment, 0, len(rawArgs))
		for _, a := range rawArgs {
			f, err := FromAny(a)
			if err != nil {
				return Node{}, err
			}
			args = append(args, f)
		}
		return Func(fn, args...), nil
	case KindFilter, KindAssign:
		f, err := FromAny(raw)
		if err != nil {
			return Node{}, err
		}
		return Node{Name: kind, Val: f}, nil
	default:
		return Val(literal(raw)), nil
	}
}

// DecodeValue 解码任意 JSON 值，数字的处理和字面值一样
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return literal(raw), nil
}

// literal 整数统一成 int64，其余数字是 float64
func literal(raw any) any {
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
		return v
	case []any:
		res := make([]any, len(v))
		for i, elem := range v {
			res[i] = literal(elem)
		}
		return res
	case map[string]any:
		res := make(map[string]any, len(v))
		for k, elem := range v {
			res[k] = literal(elem)
		}
		return res
	default:
		return v
	}
}
