package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/config"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/domain/model"
	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/event"
	repo "github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// クロスセル上限の最大値
const maxCrossSellsLimit = 50

// SettingsProviderは現在の設定を返す（他のusecaseはこれだけに依存する）
type SettingsProvider interface {
	Get(ctx context.Context) (model.SideCartSettings, error)
}

// SettingsUsecaseはサイドカート設定の取得・更新。
type SettingsUsecase struct {
	settingRepo repo.SettingRepository
	auditRepo   repo.AuditLogRepository
	bus         *event.Bus
	defaults    config.SettingsDefaults
	log         *zap.Logger
}

// DI
func NewSettingsUsecase(
	settingRepo repo.SettingRepository,
	auditRepo repo.AuditLogRepository,
	bus *event.Bus,
	defaults config.SettingsDefaults,
	log *zap.Logger,
) *SettingsUsecase {
	return &SettingsUsecase{
		settingRepo: settingRepo,
		auditRepo:   auditRepo,
		bus:         bus,
		defaults:    defaults,
		log:         log,
	}
}

// 部分更新の入力。nilは変更しない。
type UpdateSettingsInput struct {
	ShippingThreshold  *decimal.Decimal `json:"shipping_threshold"`
	ShippingBarEnabled *bool            `json:"shipping_bar_enabled"`
	CrossSellsEnabled  *bool            `json:"cross_sells_enabled"`
	CrossSellsLimit    *int             `json:"cross_sells_limit"`
	AutoOpen           *bool            `json:"auto_open"`
}

// Getは保存値を初期値に重ねて返す。壊れた値は初期値のまま。
func (u *SettingsUsecase) Get(ctx context.Context) (model.SideCartSettings, error) {
	rows, err := u.settingRepo.All(ctx)
	if err != nil {
		return model.SideCartSettings{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	s := model.SideCartSettings{
		ShippingThreshold:  u.defaults.ShippingThreshold,
		ShippingBarEnabled: u.defaults.ShippingBarEnabled,
		CrossSellsEnabled:  u.defaults.CrossSellsEnabled,
		CrossSellsLimit:    u.defaults.CrossSellsLimit,
		AutoOpen:           u.defaults.AutoOpen,
	}

	for _, row := range rows {
		if err := applySetting(&s, row); err != nil {
			u.log.Warn("ignoring invalid setting", zap.String("key", row.Key), zap.String("value", row.Value), zap.Error(err))
		}
	}
	return s, nil
}

// Updateは変更のあったキーだけ保存し、監査ログとイベントを出す。
func (u *SettingsUsecase) Update(ctx context.Context, actor string, in UpdateSettingsInput) (model.SideCartSettings, error) {
	if in.ShippingThreshold != nil && in.ShippingThreshold.IsNegative() {
		return model.SideCartSettings{}, NewHTTPError(http.StatusBadRequest, "shipping_threshold must be >= 0")
	}
	if in.CrossSellsLimit != nil && (*in.CrossSellsLimit < 0 || *in.CrossSellsLimit > maxCrossSellsLimit) {
		return model.SideCartSettings{}, NewHTTPError(http.StatusBadRequest, "cross_sells_limit must be between 0 and 50")
	}

	before, err := u.Get(ctx)
	if err != nil {
		return model.SideCartSettings{}, err
	}

	after := before
	if in.ShippingThreshold != nil {
		after.ShippingThreshold = *in.ShippingThreshold
	}
	if in.ShippingBarEnabled != nil {
		after.ShippingBarEnabled = *in.ShippingBarEnabled
	}
	if in.CrossSellsEnabled != nil {
		after.CrossSellsEnabled = *in.CrossSellsEnabled
	}
	if in.CrossSellsLimit != nil {
		after.CrossSellsLimit = *in.CrossSellsLimit
	}
	if in.AutoOpen != nil {
		after.AutoOpen = *in.AutoOpen
	}

	changed := diffSettings(before, after)
	if len(changed) == 0 {
		return after, nil
	}

	values := settingValues(after)
	rows := make([]model.Setting, 0, len(changed))
	for _, k := range changed {
		rows = append(rows, model.Setting{Key: k, Value: values[k], UpdatedAt: time.Now()})
	}
	if err := u.settingRepo.SaveAll(ctx, rows); err != nil {
		return model.SideCartSettings{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	beforeJSON, _ := json.Marshal(before)
	afterJSON, _ := json.Marshal(after)
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		Actor:        actor,
		Action:       model.AuditActionUpdateSettings,
		ResourceType: model.AuditResourceSettings,
		ResourceKey:  strings.Join(changed, ","),
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    time.Now(),
	}); err != nil {
		// 設定は保存済みなので失敗させない
		u.log.Error("audit log write failed", zap.Error(err))
	}

	_ = u.bus.Publish(ctx, event.Event{Name: event.SettingsUpdated, ChangedKeys: changed})

	return after, nil
}

func applySetting(s *model.SideCartSettings, row model.Setting) error {
	switch row.Key {
	case model.SettingShippingThreshold:
		d, err := decimal.NewFromString(row.Value)
		if err != nil {
			return err
		}
		s.ShippingThreshold = d
	case model.SettingShippingBarEnabled:
		b, err := strconv.ParseBool(row.Value)
		if err != nil {
			return err
		}
		s.ShippingBarEnabled = b
	case model.SettingCrossSellsEnabled:
		b, err := strconv.ParseBool(row.Value)
		if err != nil {
			return err
		}
		s.CrossSellsEnabled = b
	case model.SettingCrossSellsLimit:
		n, err := strconv.Atoi(row.Value)
		if err != nil {
			return err
		}
		// 負数は0扱い
		if n < 0 {
			n = 0
		}
		s.CrossSellsLimit = n
	case model.SettingAutoOpen:
		b, err := strconv.ParseBool(row.Value)
		if err != nil {
			return err
		}
		s.AutoOpen = b
	}
	return nil
}

func settingValues(s model.SideCartSettings) map[string]string {
	return map[string]string{
		model.SettingShippingThreshold:  s.ShippingThreshold.String(),
		model.SettingShippingBarEnabled: strconv.FormatBool(s.ShippingBarEnabled),
		model.SettingCrossSellsEnabled:  strconv.FormatBool(s.CrossSellsEnabled),
		model.SettingCrossSellsLimit:    strconv.Itoa(s.CrossSellsLimit),
		model.SettingAutoOpen:           strconv.FormatBool(s.AutoOpen),
	}
}

// 変わったキー（ソート済み）
func diffSettings(before, after model.SideCartSettings) []string {
	var changed []string
	if !before.ShippingThreshold.Equal(after.ShippingThreshold) {
		changed = append(changed, model.SettingShippingThreshold)
	}
	if before.ShippingBarEnabled != after.ShippingBarEnabled {
		changed = append(changed, model.SettingShippingBarEnabled)
	}
	if before.CrossSellsEnabled != after.CrossSellsEnabled {
		changed = append(changed, model.SettingCrossSellsEnabled)
	}
	if before.CrossSellsLimit != after.CrossSellsLimit {
		changed = append(changed, model.SettingCrossSellsLimit)
	}
	if before.AutoOpen != after.AutoOpen {
		changed = append(changed, model.SettingAutoOpen)
	}
	sort.Strings(changed)
	return changed
}

// ListAuditLogsは設定変更の履歴（新しい順）。
func (u *SettingsUsecase) ListAuditLogs(ctx context.Context, limit, offset int) ([]model.AuditLog, error) {
	if limit < 1 || limit > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	logs, err := u.auditRepo.List(ctx, repo.AuditLogFilter{
		ResourceType: model.AuditResourceSettings,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
