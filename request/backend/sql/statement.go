package sqlbackend

import (
	"dbrequest/request"
	"dbrequest/request/ast"
)

// Compile 把请求编译成 SQL，不会访问数据库
func (b *Backend) Compile(q *request.Query) (*Statement, error) {
	sb := &builder{dialect: b.dialect}
	var err error
	switch q.Type {
	case request.QueryCount:
		err = sb.buildCount(b.table, q.Filter)
	case request.QueryRead:
		err = sb.buildSelect(b.table, q.Filter)
	case request.QueryCreate:
		err = sb.buildInsert(b.table, q.Update)
	case request.QueryUpdate:
		err = sb.buildUpdate(b.table, q.Filter, q.Update)
	case request.QueryDelete:
		err = sb.buildDelete(b.table, q.Filter)
	default:
		return nil, request.NewErrUnsupportedQueryType(q.Type)
	}
	if err != nil {
		return nil, err
	}
	sb.sb.WriteByte(';')
	return &Statement{
		SQL:  sb.sb.String(),
		Args: sb.args,
	}, nil
}

func (b *builder) buildCount(table string, filter ast.Fragment) error {
	b.sb.WriteString("SELECT COUNT(*) FROM ")
	if err := b.quote(table); err != nil {
		return err
	}
	return b.buildWhere(filter)
}

func (b *builder) buildSelect(table string, filter ast.Fragment) error {
	b.sb.WriteString("SELECT * FROM ")
	if err := b.quote(table); err != nil {
		return err
	}
	return b.buildWhere(filter)
}

func (b *builder) buildInsert(table string, update ast.Fragment) error {
	assigns, err := assignments(update)
	if err != nil {
		return err
	}
	b.sb.WriteString("INSERT INTO ")
	if err = b.quote(table); err != nil {
		return err
	}
	b.sb.WriteByte('(')
	for i, a := range assigns {
		if i > 0 {
			b.sb.WriteByte(',')
		}
		if err = b.quote(a.Prop); err != nil {
			return err
		}
	}
	b.sb.WriteString(") VALUES (")
	for i, a := range assigns {
		if i > 0 {
			b.sb.WriteByte(',')
		}
		if err = b.buildExpression(a.Value); err != nil {
			return err
		}
	}
	b.sb.WriteByte(')')
	if b.dialect.returning() {
		b.sb.WriteString(" RETURNING *")
	}
	return nil
}

func (b *builder) buildUpdate(table string, filter, update ast.Fragment) error {
	assigns, err := assignments(update)
	if err != nil {
		return err
	}
	b.sb.WriteString("UPDATE ")
	if err = b.quote(table); err != nil {
		return err
	}
	b.sb.WriteString(" SET ")
	for i, a := range assigns {
		if i > 0 {
			b.sb.WriteByte(',')
		}
		if err = b.quote(a.Prop); err != nil {
			return err
		}
		b.sb.WriteByte('=')
		if err = b.buildExpression(a.Value); err != nil {
			return err
		}
	}
	return b.buildWhere(filter)
}

func (b *builder) buildDelete(table string, filter ast.Fragment) error {
	b.sb.WriteString("DELETE FROM ")
	if err := b.quote(table); err != nil {
		return err
	}
	return b.buildWhere(filter)
}

func assignments(update ast.Fragment) ([]ast.Assignment, error) {
	assigns, err := ast.Assignments(update)
	if err != nil {
		return nil, err
	}
	if len(assigns) == 0 {
		return nil, request.ErrEmptyUpdate
	}
	return assigns, nil
}
