package ast

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToProto 把片段转成 structpb.Value，形态和 JSON 一致。
// structpb 只有 double，解回来的时候整数会被还原成 int64
func ToProto(f Fragment) (*structpb.Value, error) {
	generic, err := toGeneric(f)
	if err != nil {
		return nil, err
	}
	return structpb.NewValue(generic)
}

func FromProto(v *structpb.Value) (Fragment, error) {
	if v == nil {
		return nil, nil
	}
	return FromAny(v.AsInterface())
}

// MarshalProtoJSON 使用 protojson 编码
func MarshalProtoJSON(f Fragment) ([]byte, error) {
	v, err := ToProto(f)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(v)
}

func toGeneric(f Fragment) (any, error) {
	switch frag := f.(type) {
	case nil:
		return nil, nil
	case Seq:
		res := make([]any, 0, len(frag))
		for _, elem := range frag {
			g, err := toGeneric(elem)
			if err != nil {
				return nil, err
			}
			res = append(res, g)
		}
		return res, nil
	case Node:
		val, err := genericVal(frag)
		if err != nil {
			return nil, err
		}
		return map[string]any{"name": string(frag.Name), "val": val}, nil
	default:
		return nil, fmt.Errorf("ast: 不支持的片段 %T", f)
	}
}

func genericVal(n Node) (any, error) {
	switch n.Name {
	case KindFunc:
		fc, ok := n.Call()
		if !ok {
			return nil, fmt.Errorf("ast: func 节点负载错误 %T", n.Val)
		}
		args := make([]any, 0, len(fc.Args))
		for _, a := range fc.Args {
			g, err := toGeneric(a)
			if err != nil {
				return nil, err
			}
			args = append(args, g)
		}
		return map[string]any{"func": fc.Func, "args": args}, nil
	case KindFilter, KindAssign:
		inner, _ := n.Inner()
		return toGeneric(inner)
	default:
		return n.Val, nil
	}
}
