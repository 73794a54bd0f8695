package tx

import (
	"fmt"
	"strings"
)

// Variant 是转账交易类型的封闭集合。
// 未导出的 sealed 方法保证只有本包能实现该接口；
// 分发点通过 Visitor 实现，新增类型时所有 Visitor 都会编译失败。
type Variant interface {
	fmt.Stringer
	// Code 是设备协议中的类型字节
	Code() byte
	Accept(v Visitor) error
	sealed()
}

// Visitor 对每种交易类型各有一个方法
type Visitor interface {
	VisitTransfer() error
	VisitTransferCreate() error
	VisitTransferCrossChain() error
}

type (
	Transfer           struct{}
	TransferCreate     struct{}
	TransferCrossChain struct{}
)

func (Transfer) Code() byte           { return 0 }
func (TransferCreate) Code() byte     { return 1 }
func (TransferCrossChain) Code() byte { return 2 }

func (Transfer) String() string           { return "transfer" }
func (TransferCreate) String() string     { return "transfer_create" }
func (TransferCrossChain) String() string { return "transfer_cross_chain" }

func (Transfer) Accept(v Visitor) error           { return v.VisitTransfer() }
func (TransferCreate) Accept(v Visitor) error     { return v.VisitTransferCreate() }
func (TransferCrossChain) Accept(v Visitor) error { return v.VisitTransferCrossChain() }

func (Transfer) sealed()           {}
func (TransferCreate) sealed()     {}
func (TransferCrossChain) sealed() {}

// Variants 按类型字节排序
var Variants = []Variant{Transfer{}, TransferCreate{}, TransferCrossChain{}}

// ParseVariant 接受名称 (transfer / transfer_create / transfer_cross_chain，
// '-' 与 '_' 等价) 或类型字节 0/1/2。
func ParseVariant(s string) (Variant, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, v := range Variants {
		if key == v.String() || key == fmt.Sprint(v.Code()) {
			return v, nil
		}
	}
	return nil, &EncodingError{Field: "variant", Reason: fmt.Sprintf("unknown transaction type %q", s)}
}
