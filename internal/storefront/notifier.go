package storefront

import "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/storefront/transport"

// 利用者への通知（ブラウザならalert相当）
type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

const (
	MsgAddFailed    = "Failed to add product"
	MsgUpdateFailed = "Failed to update cart"
)

// サーバーが理由を返した場合はそれを、通信エラーは汎用メッセージを出す。
func notifyError(n Notifier, err error, fallback string) {
	if n == nil || err == nil {
		return
	}
	if ae, ok := transport.AsAPIError(err); ok && ae.Status < 500 && ae.Message != "" {
		n.Notify(ae.Message)
		return
	}
	n.Notify(fallback)
}
