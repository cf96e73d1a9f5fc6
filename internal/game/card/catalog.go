package card

import (
	"github.com/palemoky/card-battle-arena/internal/apperrors"
)

// Definition 卡牌静态属性
type Definition struct {
	ID      string `json:"id"`
	Speed   int    `json:"speed"`
	HP      int    `json:"hp"`
	Attack  int    `json:"attack"`
	Passive string `json:"passive"`
	Active  string `json:"active"`
}

// Catalog 卡池（进程生命周期内只读）
type Catalog struct {
	defs map[string]Definition
}

// NewCatalog 创建卡池
func NewCatalog() *Catalog {
	defs := map[string]Definition{
		"warrior": {ID: "warrior", Speed: 3, HP: 50, Attack: 20, Passive: "none", Active: "slash"},
		"archer":  {ID: "archer", Speed: 5, HP: 30, Attack: 15, Passive: "range", Active: "shoot"},
	}
	return &Catalog{defs: defs}
}

// Lookup 查找卡牌定义
func (c *Catalog) Lookup(cardID string) (Definition, error) {
	def, ok := c.defs[cardID]
	if !ok {
		return Definition{}, apperrors.ErrUnknownCard
	}
	return def, nil
}

// Has 判断卡牌是否存在
func (c *Catalog) Has(cardID string) bool {
	_, ok := c.defs[cardID]
	return ok
}
