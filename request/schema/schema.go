package schema

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"dbrequest/request/internal/errs"
)

const (
	tagName      = "dbrequest"
	tagKeyColumn = "column"
)

// Registry 缓存结构体的元数据
type Registry interface {
	Get(val any) (*Schema, error)
	Register(val any, opts ...Option) (*Schema, error)
}

// Schema 描述一个结构体和记录之间的映射
type Schema struct {
	Name   string
	Fields []*Field
	// 字段名到字段的映射
	FieldMap map[string]*Field
	// 列名到字段的映射
	ColumnMap map[string]*Field
}

type Option func(s *Schema) error

type Field struct {
	ColName string
	Type    reflect.Type
	// 字段名
	GoName string
	// 字段相对于结构体起始地址的偏移量
	Offset uintptr
}

// Namer 可以自定义 Schema 的名字
type Namer interface {
	SchemaName() string
}

type registry struct {
	schemas sync.Map
}

func NewRegistry() Registry {
	return &registry{}
}

func (r *registry) Get(val any) (*Schema, error) {
	typ := reflect.TypeOf(val)
	s, ok := r.schemas.Load(typ)
	if ok {
		return s.(*Schema), nil
	}
	return r.Register(val)
}

// Register 只接受指向结构体的一级指针，未导出字段会被跳过
func (r *registry) Register(entity any, opts ...Option) (*Schema, error) {
	typ := reflect.TypeOf(entity)
	if typ == nil || typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointOnly
	}
	elemTyp := typ.Elem()
	numField := elemTyp.NumField()
	fieldMap := make(map[string]*Field, numField)
	columnMap := make(map[string]*Field, numField)
	fields := make([]*Field, 0, numField)
	for i := 0; i < numField; i++ {
		fd := elemTyp.Field(i)
		if !fd.IsExported() {
			continue
		}
		pair, err := parseTag(fd.Tag)
		if err != nil {
			return nil, err
		}
		colName := pair[tagKeyColumn]
		if colName == "-" {
			continue
		}
		if colName == "" {
			colName = underscoreName(fd.Name)
		}
		fdMeta := &Field{
			ColName: colName,
			Type:    fd.Type,
			GoName:  fd.Name,
			Offset:  fd.Offset,
		}
		fieldMap[fd.Name] = fdMeta
		columnMap[colName] = fdMeta
		fields = append(fields, fdMeta)
	}
	var name string
	if n, ok := entity.(Namer); ok {
		name = n.SchemaName()
	}
	if name == "" {
		name = underscoreName(elemTyp.Name())
	}
	res := &Schema{
		Name:      name,
		Fields:    fields,
		FieldMap:  fieldMap,
		ColumnMap: columnMap,
	}
	for _, opt := range opts {
		if err := opt(res); err != nil {
			return nil, err
		}
	}
	r.schemas.Store(typ, res)
	return res, nil
}

func WithColumnName(field string, colName string) Option {
	return func(s *Schema) error {
		fd, ok := s.FieldMap[field]
		if !ok {
			return errs.NewUnknownField(field)
		}
		delete(s.ColumnMap, fd.ColName)
		fd.ColName = colName
		s.ColumnMap[colName] = fd
		return nil
	}
}

func WithName(name string) Option {
	return func(s *Schema) error {
		s.Name = name
		return nil
	}
}

// type User struct {
//	ID uint64 `dbrequest:"column=_id"`
// }
func parseTag(tag reflect.StructTag) (map[string]string, error) {
	val, ok := tag.Lookup(tagName)
	if !ok {
		return map[string]string{}, nil
	}
	pairs := strings.Split(val, ",")
	res := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		segs := strings.Split(pair, "=")
		if len(segs) != 2 {
			return nil, errs.NewErrInvalidTagContext(pair)
		}
		res[segs[0]] = segs[1]
	}
	return res, nil
}

func underscoreName(name string) string {
	var buf []byte
	for i, v := range name {
		if unicode.IsUpper(v) {
			if i != 0 {
				buf = append(buf, '_')
			}
			buf = append(buf, byte(unicode.ToLower(v)))
		} else {
			buf = append(buf, byte(v))
		}
	}
	return string(buf)
}
