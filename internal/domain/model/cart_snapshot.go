package model

import (
	"encoding/hex"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"
)

// カート1行分（読み取り専用）
type CartLine struct {
	Key       string          `json:"key"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartSnapshotはある時点のカート内容。追加順を保持する。
type CartSnapshot struct {
	Lines    []CartLine      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// NewCartSnapshotは明細から小計を計算して作る。
func NewCartSnapshot(lines []CartLine) CartSnapshot {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}
	return CartSnapshot{Lines: lines, Subtotal: subtotal}
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// 合計数量（ヘッダーのバッジ用）
func (s CartSnapshot) ItemCount() int64 {
	var n int64
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// カート内の商品ID（行順、重複あり）
func (s CartSnapshot) ProductIDs() []int64 {
	ids := make([]int64, 0, len(s.Lines))
	for _, l := range s.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// Fingerprintは内容（商品・数量・行合計）と行順から決まるハッシュ。
// 行のKeyやセッションは含めないので、同じ内容のカートは同じ値になる。
// 空カートは空文字。
func (s CartSnapshot) Fingerprint() string {
	if s.IsEmpty() {
		return ""
	}

	h, _ := blake2b.New256(nil)
	for _, l := range s.Lines {
		h.Write([]byte(strconv.FormatInt(l.ProductID, 10)))
		h.Write([]byte{':'})
		h.Write([]byte(strconv.FormatInt(l.Quantity, 10)))
		h.Write([]byte{':'})
		h.Write([]byte(l.LineTotal.StringFixed(2)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
