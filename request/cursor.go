package request

import (
	"errors"
	"io"

	"dbrequest/request/internal/errs"
)

// Records 是后端返回的结果集。
// Next 在结束时返回 io.EOF，能不能重新遍历取决于实现
type Records interface {
	Len() int
	At(i int) (Record, error)
	Next() (Record, error)
}

// SliceRecords 把切片适配成 Records，Next 只能遍历一次，At 不受影响
func SliceRecords(data []Record) Records {
	return &sliceRecords{data: data}
}

type sliceRecords struct {
	data []Record
	pos  int
}

func (s *sliceRecords) Len() int {
	return len(s.data)
}

func (s *sliceRecords) At(i int) (Record, error) {
	if i < 0 || i >= len(s.data) {
		return nil, errs.NewErrIndexOutOfRange(i, len(s.data))
	}
	return s.data[i], nil
}

func (s *sliceRecords) Next() (Record, error) {
	if s.pos >= len(s.data) {
		return nil, io.EOF
	}
	rec := s.data[s.pos]
	s.pos++
	return rec, nil
}

// Cursor 在访问时才把记录包装成 Model，自己不做缓存
//
//	for cursor.Next() {
//		m := cursor.Model()
//	}
//	err := cursor.Err()
type Cursor struct {
	raw  Records
	core core

	cur *Model
	err error
}

func newCursor(c core, raw Records) *Cursor {
	return &Cursor{raw: raw, core: c}
}

func (c *Cursor) Len() int {
	return c.raw.Len()
}

func (c *Cursor) At(i int) (*Model, error) {
	rec, err := c.raw.At(i)
	if err != nil {
		return nil, err
	}
	return newModel(c.core, rec), nil
}

func (c *Cursor) Next() bool {
	if c.err != nil {
		return false
	}
	rec, err := c.raw.Next()
	if err != nil {
		c.cur = nil
		if !errors.Is(err, io.EOF) {
			c.err = err
		}
		return false
	}
	c.cur = newModel(c.core, rec)
	return true
}

// Model 返回 Next 之后的当前记录
func (c *Cursor) Model() *Model {
	return c.cur
}

func (c *Cursor) Err() error {
	return c.err
}

// All 把剩下的记录都读出来
func (c *Cursor) All() ([]*Model, error) {
	res := make([]*Model, 0, c.Len())
	for c.Next() {
		res = append(res, c.cur)
	}
	return res, c.err
}
