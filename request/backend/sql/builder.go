package sqlbackend

import (
	"regexp"
	"strings"

	"dbrequest/request"
	"dbrequest/request/ast"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var operators = map[string]string{
	"+":   "+",
	"-":   "-",
	"*":   "*",
	"/":   "/",
	"%":   "%",
	"==":  "=",
	"!=":  "<>",
	"<":   "<",
	"<=":  "<=",
	">":   ">",
	">=":  ">=",
	"in":  "IN",
	"and": "AND",
	"or":  "OR",
}

// Statement 是编译出来的 SQL 和参数
type Statement struct {
	SQL  string
	Args []any
}

type builder struct {
	sb      strings.Builder
	args    []any
	dialect Dialect
}

func (b *builder) quote(name string) error {
	if !identPattern.MatchString(name) {
		return request.NewErrMalformedAST("非法的标识符 %q", name)
	}
	b.sb.WriteByte(b.dialect.quoter())
	b.sb.WriteString(name)
	b.sb.WriteByte(b.dialect.quoter())
	return nil
}

func (b *builder) addArg(val any) {
	if b.args == nil {
		b.args = make([]any, 0, 8)
	}
	b.args = append(b.args, val)
	b.sb.WriteString(b.dialect.placeholder(len(b.args)))
}

// buildWhere 多个 filter 用 AND 连起来
func (b *builder) buildWhere(filter ast.Fragment) error {
	preds, err := ast.ValidateFilter(filter)
	if err != nil {
		return err
	}
	if len(preds) == 0 {
		return nil
	}
	b.sb.WriteString(" WHERE ")
	for i, p := range preds {
		if i > 0 {
			b.sb.WriteString(" AND ")
		}
		if len(preds) > 1 {
			b.sb.WriteByte('(')
		}
		if err = b.buildExpression(p); err != nil {
			return err
		}
		if len(preds) > 1 {
			b.sb.WriteByte(')')
		}
	}
	return nil
}

func (b *builder) buildExpression(f ast.Fragment) error {
	switch frag := f.(type) {
	case ast.Node:
		return b.buildOperand(frag)
	case ast.Seq:
		return b.buildSeq(frag)
	default:
		return request.NewErrMalformedAST("未知片段 %T", f)
	}
}

// buildSeq 从左到右结合：[a, +, b, *, c] 编译成 (a + b) * c
func (b *builder) buildSeq(seq ast.Seq) error {
	if len(seq)%2 == 0 {
		return request.NewErrMalformedAST("序列长度 %d 不是奇数", len(seq))
	}
	for i := 0; i < len(seq)/2-1; i++ {
		b.sb.WriteByte('(')
	}
	if err := b.buildSubExpression(seq[0]); err != nil {
		return err
	}
	for i := 1; i < len(seq); i += 2 {
		n, ok := seq[i].(ast.Node)
		if !ok {
			return request.NewErrMalformedAST("位置 %d 应该是操作符", i)
		}
		symbol, _ := n.Symbol()
		op, ok := operators[symbol]
		if !ok {
			return request.NewErrMalformedAST("未知操作符 %q", symbol)
		}
		right := seq[i+1]
		if isNull(right) && (symbol == "==" || symbol == "!=") {
			if symbol == "==" {
				b.sb.WriteString(" IS NULL")
			} else {
				b.sb.WriteString(" IS NOT NULL")
			}
		} else {
			b.sb.WriteByte(' ')
			b.sb.WriteString(op)
			b.sb.WriteByte(' ')
			if err := b.buildSubExpression(right); err != nil {
				return err
			}
		}
		if i+2 < len(seq) {
			b.sb.WriteByte(')')
		}
	}
	return nil
}

// buildSubExpression 嵌套的序列加上括号
func (b *builder) buildSubExpression(f ast.Fragment) error {
	if seq, ok := f.(ast.Seq); ok && len(seq) > 1 {
		b.sb.WriteByte('(')
		if err := b.buildSeq(seq); err != nil {
			return err
		}
		b.sb.WriteByte(')')
		return nil
	}
	return b.buildExpression(f)
}

func (b *builder) buildOperand(n ast.Node) error {
	switch n.Name {
	case ast.KindRef, ast.KindProp:
		name, ok := n.Symbol()
		if !ok {
			return request.NewErrMalformedAST("%s 节点的属性名不是字符串", n.Name)
		}
		return b.quote(name)
	case ast.KindVal:
		return b.buildValue(n.Val)
	case ast.KindFunc:
		fc, ok := n.Call()
		if !ok {
			return request.NewErrMalformedAST("func 节点负载错误")
		}
		if fc.Func == "not" {
			if len(fc.Args) != 1 {
				return request.NewErrMalformedAST("not 需要 1 个参数，得到 %d 个", len(fc.Args))
			}
			b.sb.WriteString("NOT (")
			if err := b.buildExpression(fc.Args[0]); err != nil {
				return err
			}
			b.sb.WriteByte(')')
			return nil
		}
		if !identPattern.MatchString(fc.Func) {
			return request.NewErrMalformedAST("非法的函数名 %q", fc.Func)
		}
		b.sb.WriteString(strings.ToUpper(fc.Func))
		b.sb.WriteByte('(')
		for i, a := range fc.Args {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			if err := b.buildExpression(a); err != nil {
				return err
			}
		}
		b.sb.WriteByte(')')
		return nil
	default:
		return request.NewErrMalformedAST("%s 节点不能出现在表达式里", n.Name)
	}
}

func (b *builder) buildValue(val any) error {
	switch v := val.(type) {
	case nil:
		b.sb.WriteString("NULL")
	case []any:
		b.sb.WriteByte('(')
		if len(v) == 0 {
			// 空列表什么都匹配不到
			b.sb.WriteString("NULL")
		}
		for i, elem := range v {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			b.addArg(elem)
		}
		b.sb.WriteByte(')')
	default:
		b.addArg(v)
	}
	return nil
}

func isNull(f ast.Fragment) bool {
	n, ok := f.(ast.Node)
	return ok && n.Name == ast.KindVal && n.Val == nil
}
