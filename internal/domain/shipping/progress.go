// Package shipping は送料無料ラインまでの進捗を計算する。
package shipping

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// 送料無料ラインまでの進捗
type Progress struct {
	Percentage decimal.Decimal `json:"percentage"`
	Remaining  decimal.Decimal `json:"remaining"`
	Qualified  bool            `json:"qualified"`
	CartTotal  decimal.Decimal `json:"cart_total"`
	Threshold  decimal.Decimal `json:"threshold"`
}

// ComputeProgress は小計としきい値から進捗を返す。
// しきい値が0以下なら 0% / 残り0 / 未達成 を返す（常に達成扱いにはしない）。
// マイナスの小計は0として扱う。
func ComputeProgress(cartTotal, threshold decimal.Decimal) Progress {
	if cartTotal.IsNegative() {
		cartTotal = decimal.Zero
	}

	if !threshold.IsPositive() {
		return Progress{
			Percentage: decimal.Zero,
			Remaining:  decimal.Zero,
			Qualified:  false,
			CartTotal:  cartTotal,
			Threshold:  threshold,
		}
	}

	percentage := decimal.Min(cartTotal.Div(threshold).Mul(hundred), hundred)
	remaining := decimal.Max(threshold.Sub(cartTotal), decimal.Zero)

	return Progress{
		Percentage: percentage.Round(2),
		Remaining:  remaining,
		Qualified:  cartTotal.GreaterThanOrEqual(threshold),
		CartTotal:  cartTotal,
		Threshold:  threshold,
	}
}
