package ast

import "dbrequest/request/internal/errs"

// Validate 检查表达式或比较片段：单个操作数节点，或者奇数长度、操作数与操作符交替的 Seq
func Validate(f Fragment) error {
	switch frag := f.(type) {
	case nil:
		return errs.NewErrMalformedAST("空片段")
	case Node:
		return validateOperand(frag)
	case Seq:
		if len(frag)%2 == 0 {
			return errs.NewErrMalformedAST("序列长度 %d 不是奇数", len(frag))
		}
		for i, elem := range frag {
			if i%2 == 1 {
				if !IsOperator(elem) {
					return errs.NewErrMalformedAST("位置 %d 应该是操作符", i)
				}
				if _, ok := elem.(Node).Symbol(); !ok {
					return errs.NewErrMalformedAST("位置 %d 的操作符不是字符串", i)
				}
				continue
			}
			if err := Validate(elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return errs.NewErrMalformedAST("未知片段 %T", f)
	}
}

func validateOperand(n Node) error {
	switch n.Name {
	case KindRef, KindProp:
		if _, ok := n.Symbol(); !ok {
			return errs.NewErrMalformedAST("%s 节点的属性名不是字符串", n.Name)
		}
		return nil
	case KindVal:
		return nil
	case KindFunc:
		fc, ok := n.Call()
		if !ok || fc.Func == "" {
			return errs.NewErrMalformedAST("func 节点负载错误")
		}
		for _, a := range fc.Args {
			if err := Validate(a); err != nil {
				return err
			}
		}
		return nil
	case KindOp, KindCond:
		return errs.NewErrMalformedAST("操作符 %v 不能作为操作数", n.Val)
	default:
		return errs.NewErrMalformedAST("%s 节点不能出现在表达式里", n.Name)
	}
}

// Filters 把过滤容器展开成谓词列表。
// 接受 nil、单个 filter 节点、filter 节点的 Seq，或者直接一个比较片段
func Filters(f Fragment) ([]Fragment, error) {
	switch frag := f.(type) {
	case nil:
		return nil, nil
	case Node:
		if frag.Name == KindFilter {
			inner, ok := frag.Inner()
			if !ok {
				return nil, errs.NewErrMalformedAST("filter 节点没有负载")
			}
			return []Fragment{inner}, nil
		}
	case Seq:
		if len(frag) == 0 {
			return nil, nil
		}
		if n, ok := frag[0].(Node); ok && n.Name == KindFilter {
			res := make([]Fragment, 0, len(frag))
			for _, elem := range frag {
				sub, err := Filters(elem)
				if err != nil {
					return nil, err
				}
				if n, ok := elem.(Node); !ok || n.Name != KindFilter {
					return nil, errs.NewErrMalformedAST("过滤容器里混入了非 filter 节点")
				}
				res = append(res, sub...)
			}
			return res, nil
		}
	}
	return []Fragment{f}, nil
}

// ValidateFilter 展开并校验过滤容器
func ValidateFilter(f Fragment) ([]Fragment, error) {
	preds, err := Filters(f)
	if err != nil {
		return nil, err
	}
	for _, p := range preds {
		if err = Validate(p); err != nil {
			return nil, err
		}
	}
	return preds, nil
}

// Assignment 是 update 容器里的一条赋值
type Assignment struct {
	Prop  string
	Value Fragment
}

// Assignments 展开 update 容器：[prop, assign] 或者它们组成的 Seq
func Assignments(f Fragment) ([]Assignment, error) {
	seq, ok := f.(Seq)
	if !ok {
		return nil, errs.NewErrMalformedAST("update 必须是序列，得到 %T", f)
	}
	if a, ok := assignment(seq); ok {
		if err := Validate(a.Value); err != nil {
			return nil, err
		}
		return []Assignment{a}, nil
	}
	res := make([]Assignment, 0, len(seq))
	for i, elem := range seq {
		sub, ok := elem.(Seq)
		if !ok {
			return nil, errs.NewErrMalformedAST("位置 %d 不是赋值", i)
		}
		a, ok := assignment(sub)
		if !ok {
			return nil, errs.NewErrMalformedAST("位置 %d 不是赋值", i)
		}
		if err := Validate(a.Value); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, nil
}

func assignment(s Seq) (Assignment, bool) {
	if len(s) != 2 {
		return Assignment{}, false
	}
	prop, ok := s[0].(Node)
	if !ok || prop.Name != KindProp {
		return Assignment{}, false
	}
	name, ok := prop.Symbol()
	if !ok {
		return Assignment{}, false
	}
	assign, ok := s[1].(Node)
	if !ok || assign.Name != KindAssign {
		return Assignment{}, false
	}
	val, ok := assign.Inner()
	if !ok {
		return Assignment{}, false
	}
	return Assignment{Prop: name, Value: val}, true
}
