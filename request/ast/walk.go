package ast

// Visitor 和 go/ast 的 Visitor 一样，返回 nil 就不再访问子节点
type Visitor interface {
	Visit(f Fragment) (w Visitor)
}

// Walk 深度优先遍历，子节点包括 Seq 的元素、func 的参数以及 filter/assign 包裹的片段
func Walk(v Visitor, f Fragment) {
	if f == nil {
		return
	}
	if v = v.Visit(f); v == nil {
		return
	}
	switch frag := f.(type) {
	case Seq:
		for _, elem := range frag {
			Walk(v, elem)
		}
	case Node:
		if fc, ok := frag.Call(); ok {
			for _, a := range fc.Args {
				Walk(v, a)
			}
		}
		if inner, ok := frag.Inner(); ok {
			Walk(v, inner)
		}
	}
	v.Visit(nil)
}

type inspector func(Fragment) bool

func (f inspector) Visit(frag Fragment) Visitor {
	if frag != nil && f(frag) {
		return f
	}
	return nil
}

// Inspect fn 返回 false 时跳过子节点
func Inspect(f Fragment, fn func(Fragment) bool) {
	Walk(inspector(fn), f)
}

// Props 收集片段里引用到的属性名（ref 和 prop），按首次出现的顺序
func Props(f Fragment) []string {
	var res []string
	seen := make(map[string]struct{})
	Inspect(f, func(frag Fragment) bool {
		n, ok := frag.(Node)
		if !ok || (n.Name != KindRef && n.Name != KindProp) {
			return true
		}
		name, _ := n.Symbol()
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			res = append(res, name)
		}
		return true
	})
	return res
}
