package ast

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNode(t *testing.T) {
	Convey("构造节点", t, func() {
		Convey("ref 和 prop 带属性名", func() {
			So(Ref("age"), ShouldResemble, Node{Name: KindRef, Val: "age"})
			name, ok := Prop("age").Symbol()
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "age")
		})

		Convey("func 没有参数时 args 是空切片", func() {
			fc, ok := Func("now").Call()
			So(ok, ShouldBeTrue)
			So(fc.Args, ShouldNotBeNil)
			So(fc.Args, ShouldBeEmpty)
		})

		Convey("filter 和 assign 包裹片段", func() {
			inner := Seq{Prop("foo"), Cond("=="), Val("bar")}
			f, ok := Filter(inner).Inner()
			So(ok, ShouldBeTrue)
			So(f, ShouldResemble, inner)

			_, ok = Ref("foo").Inner()
			So(ok, ShouldBeFalse)
		})

		Convey("只有 op 和 cond 是操作符", func() {
			So(IsOperator(Op("+")), ShouldBeTrue)
			So(IsOperator(Cond("==")), ShouldBeTrue)
			So(IsOperator(Ref("a")), ShouldBeFalse)
			So(IsOperator(Seq{Op("+")}), ShouldBeFalse)
		})
	})
}
