package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"marketsync_v1_202608/internal/config"
	"marketsync_v1_202608/internal/model"
	"marketsync_v1_202608/internal/repository"
	"marketsync_v1_202608/internal/syncerr"
	"marketsync_v1_202608/pkg/net"
)

// ==================== Magalu 同步 ====================

const magaluPageLimit = 100

// MagaluService Magalu 平台的采集流水线
// 和其他平台不同点：offset 翻页无页间休眠，价格为分单位需除以 100
type MagaluService struct {
	cfg     config.PlatformConfig
	creds   *CredentialStore
	store   repository.SyncStore
	runs    repository.SyncRunRepo
	quality *QualityService
	client  *resty.Client
}

func NewMagaluService(cfg config.PlatformConfig, creds *CredentialStore, store repository.SyncStore, runs repository.SyncRunRepo, quality *QualityService, client *resty.Client) *MagaluService {
	return &MagaluService{cfg: cfg, creds: creds, store: store, runs: runs, quality: quality, client: client}
}

// Sellers 已配置的卖家列表
func (s *MagaluService) Sellers() []string { return s.creds.Sellers() }

// ==================== 上游响应结构 ====================

type magaluNamedValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type magaluSKUListItem struct {
	SKU        string             `json:"sku"`
	Attributes []magaluNamedValue `json:"attributes"`
}

type magaluSKUPage struct {
	Results []magaluSKUListItem `json:"results"`
}

// magaluDimensionValue 上游的 value 既可能是数字也可能是字符串
type magaluDimensionValue struct {
	Value json.RawMessage `json:"value"`
}

func (v magaluDimensionValue) String() string {
	raw := strings.Trim(strings.TrimSpace(string(v.Value)), `"`)
	if raw == "null" {
		return ""
	}
	return raw
}

type magaluImage struct {
	Reference string `json:"reference"`
	Type      string `json:"type"`
}

type magaluSKUDetail struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Brand       string             `json:"brand"`
	Status      string             `json:"status"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
	Datasheet   []magaluNamedValue `json:"datasheet"`
	ExtraData   []magaluNamedValue `json:"extra_data"`
	Dimensions  struct {
		Height magaluDimensionValue `json:"height"`
		Width  magaluDimensionValue `json:"width"`
		Length magaluDimensionValue `json:"length"`
		Weight magaluDimensionValue `json:"weight"`
	} `json:"dimensions"`
	Images []magaluImage `json:"images"`
}

type magaluPricePage struct {
	Results []struct {
		Price int64 `json:"price"`
	} `json:"results"`
}

type magaluStockPage struct {
	Results []struct {
		Quantity int `json:"quantity"`
	} `json:"results"`
}

type magaluOrder struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	Amounts   struct {
		Total      int64 `json:"total"`
		Normalizer int64 `json:"normalizer"`
	} `json:"amounts"`
	Payments []struct {
		Method   string `json:"method"`
		Currency string `json:"currency"`
	} `json:"payments"`
}

type magaluOrderPage struct {
	Results []magaluOrder `json:"results"`
}

// ==================== 翻译 ====================

var magaluStatusMap = map[string]string{
	"INACTIVE":    "Inativo",
	"UNPUBLISHED": "Não publicado",
	"PUBLISHED":   "Publicado",
	"BLOCKED":     "Bloqueado",
}

var magaluOrderStatusMap = map[string]string{
	"created":   "Criado",
	"finished":  "Finalizado",
	"cancelled": "Cancelado",
}

var magaluPaymentStatusMap = map[string]string{
	"created":   "Criado",
	"finished":  "Pago",
	"cancelled": "Cancelado",
}

var magaluPaymentMethodMap = map[string]string{
	"credit_card": "Cartão de crédito",
	"bank_slip":   "Boleto bancário",
}

func translateMagaluStatus(status string) string {
	if translated, ok := magaluStatusMap[strings.ToUpper(status)]; ok {
		return translated
	}
	return status
}

// translateMagaluAttrName 少数属性名有固定的葡语展示名
func translateMagaluAttrName(name string) string {
	switch name {
	case "update_only_front":
		return "Apenas atualização no frontend"
	case "color":
		return "Cor"
	}
	return name
}

func mapOrDefault(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

// ==================== 抓取 ====================

// fetchSKUs offset 翻页收集全部组合 SKU
func (s *MagaluService) fetchSKUs(ctx context.Context, gw *net.Gateway) ([]magaluSKUListItem, error) {
	url := fmt.Sprintf("%s/seller/v1/portfolios/skus", s.cfg.BaseURL)
	return net.PaginateOffset(ctx, magaluPageLimit, 0, func(ctx context.Context, limit, offset int) ([]magaluSKUListItem, error) {
		query := map[string]string{
			"_limit":  fmt.Sprintf("%d", limit),
			"_offset": fmt.Sprintf("%d", offset),
		}
		var page magaluSKUPage
		if err := gw.GetJSON(ctx, url, query, &page); err != nil {
			return nil, err
		}
		return page.Results, nil
	})
}

func (s *MagaluService) fetchSKUDetail(ctx context.Context, gw *net.Gateway, sku string) (*magaluSKUDetail, error) {
	var detail magaluSKUDetail
	url := fmt.Sprintf("%s/seller/v1/portfolios/skus/%s", s.cfg.BaseURL, sku)
	if err := gw.GetJSON(ctx, url, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// fetchPrice 价格为分单位，换算成带两位小数的货币值
// 失败时返回零值和原始错误，由调用方判断是否致命
func (s *MagaluService) fetchPrice(ctx context.Context, gw *net.Gateway, sku string) (decimal.Decimal, error) {
	var page magaluPricePage
	url := fmt.Sprintf("%s/seller/v1/portfolios/prices/%s", s.cfg.BaseURL, sku)
	if err := gw.GetJSON(ctx, url, map[string]string{"_limit": "100"}, &page); err != nil {
		return decimal.Zero, err
	}
	if len(page.Results) == 0 {
		return decimal.Zero, nil
	}
	return decimal.New(page.Results[0].Price, -2), nil
}

func (s *MagaluService) fetchStock(ctx context.Context, gw *net.Gateway, sku string) (int, error) {
	var page magaluStockPage
	url := fmt.Sprintf("%s/seller/v1/portfolios/stocks/%s", s.cfg.BaseURL, sku)
	if err := gw.GetJSON(ctx, url, map[string]string{"_limit": "100"}, &page); err != nil {
		return 0, err
	}
	if len(page.Results) == 0 {
		return 0, nil
	}
	return page.Results[0].Quantity, nil
}

// fetchOrders offset 翻页收集全部订单
func (s *MagaluService) fetchOrders(ctx context.Context, gw *net.Gateway) ([]magaluOrder, error) {
	url := fmt.Sprintf("%s/seller/v1/orders", s.cfg.BaseURL)
	return net.PaginateOffset(ctx, magaluPageLimit, 0, func(ctx context.Context, limit, offset int) ([]magaluOrder, error) {
		query := map[string]string{
			"_limit":  fmt.Sprintf("%d", limit),
			"_offset": fmt.Sprintf("%d", offset),
		}
		var page magaluOrderPage
		if err := gw.GetJSON(ctx, url, query, &page); err != nil {
			return nil, err
		}
		return page.Results, nil
	})
}

// ==================== 归一化 ====================

// appendAttr 过滤平台内部字段后追加属性行
func appendAttr(attrs []model.ProductAttribute, seller, sku, name, value string, now time.Time) []model.ProductAttribute {
	if name == "" || value == "" || name == "IdProduct" || name == "fulfillment" {
		return attrs
	}
	return append(attrs, model.ProductAttribute{
		Platform: model.PlatformMagalu,
		Seller:   seller,
		SKU:      sku,
		Name:     translateMagaluAttrName(name),
		Value:    value,
		SyncedAt: now,
	})
}

func (s *MagaluService) normalizeOrders(orders []magaluOrder, seller string, now time.Time) []model.Order {
	rows := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		normalizer := o.Amounts.Normalizer
		if normalizer == 0 {
			normalizer = 100
		}
		total := decimal.NewFromInt(o.Amounts.Total).Div(decimal.NewFromInt(normalizer))

		method, currency := "", ""
		if len(o.Payments) > 0 {
			method = o.Payments[0].Method
			currency = o.Payments[0].Currency
		}

		rows = append(rows, model.Order{
			Platform:      model.PlatformMagalu,
			Seller:        seller,
			OrderID:       o.ID,
			Status:        mapOrDefault(magaluOrderStatusMap, o.Status),
			PaymentStatus: mapOrDefault(magaluPaymentStatusMap, o.Status),
			PaymentMethod: mapOrDefault(magaluPaymentMethodMap, method),
			PurchaseDate:  o.CreatedAt,
			TotalAmount:   total.String(),
			Currency:      currency,
			SyncedAt:      now,
		})
	}
	return rows
}

// ==================== 采集流水线 ====================

// Collect 对单个卖家执行完整采集：
// SKU 列表 -> 逐 SKU 价格/库存/详情 -> 订单 -> 清除旧数据 -> 落库 -> 质量诊断
func (s *MagaluService) Collect(ctx context.Context, seller string) error {
	log.Printf("[Magalu] 开始采集，卖家: %s", seller)
	startedAt := time.Now()

	cred, err := s.creds.Get(seller)
	if err != nil {
		return syncerr.Auth(model.PlatformMagalu, err)
	}

	tokenURL := s.cfg.AuthBaseURL + "/oauth/token"
	session := NewTokenSession(model.PlatformMagalu, tokenURL, s.cfg.ClientID, s.cfg.ClientSecret, cred, s.client)
	gw := net.NewBearerGateway(s.client, session)

	var messages []string
	failedBatches := 0

	skuItems, err := s.fetchSKUs(ctx, gw)
	if err != nil && len(skuItems) == 0 {
		if isFatalAuth(err) {
			return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformMagalu, err))
		}
		return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Fetch(model.PlatformMagalu, "skus", err))
	}
	if err != nil {
		log.Printf("[Magalu] SKU 翻页中断: %v", err)
		messages = append(messages, fmt.Sprintf("Paginação de SKUs interrompida: %v", err))
	}
	log.Printf("[Magalu] 卖家 %s 共 %d 个 SKU", seller, len(skuItems))

	now := time.Now()
	var (
		products   []model.Product
		attributes []model.ProductAttribute
		images     []model.ProductImage
	)

	for _, item := range skuItems {
		if item.SKU == "" {
			log.Printf("[Magalu] 跳过无 SKU 的条目")
			continue
		}

		price, err := s.fetchPrice(ctx, gw, item.SKU)
		if err != nil {
			if isFatalAuth(err) {
				return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformMagalu, err))
			}
			log.Printf("[Magalu] SKU %s 价格获取失败: %v", item.SKU, err)
		}
		stock, err := s.fetchStock(ctx, gw, item.SKU)
		if err != nil {
			if isFatalAuth(err) {
				return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformMagalu, err))
			}
			log.Printf("[Magalu] SKU %s 库存获取失败: %v", item.SKU, err)
		}
		detail, err := s.fetchSKUDetail(ctx, gw, item.SKU)
		if err != nil {
			if isFatalAuth(err) {
				return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformMagalu, err))
			}
			log.Printf("[Magalu] SKU %s 详情获取失败: %v", item.SKU, err)
			detail = &magaluSKUDetail{}
		}

		products = append(products, model.Product{
			Platform:      model.PlatformMagalu,
			Seller:        seller,
			SKU:           item.SKU,
			Title:         detail.Title,
			Description:   detail.Description,
			Brand:         detail.Brand,
			Status:        translateMagaluStatus(detail.Status),
			Price:         price,
			StockQuantity: stock,
			CreatedDate:   detail.CreatedAt,
			UpdatedDate:   detail.UpdatedAt,
			SyncedAt:      now,
		})

		for _, attr := range item.Attributes {
			attributes = appendAttr(attributes, seller, item.SKU, attr.Name, attr.Value, now)
		}
		for _, attr := range detail.Datasheet {
			attributes = appendAttr(attributes, seller, item.SKU, attr.Name, attr.Value, now)
		}
		for _, attr := range detail.ExtraData {
			attributes = appendAttr(attributes, seller, item.SKU, attr.Name, attr.Value, now)
		}

		dims := detail.Dimensions
		attributes = appendAttr(attributes, seller, item.SKU, "Altura (cm)", dims.Height.String(), now)
		attributes = appendAttr(attributes, seller, item.SKU, "Largura (cm)", dims.Width.String(), now)
		attributes = appendAttr(attributes, seller, item.SKU, "Comprimento (cm)", dims.Length.String(), now)
		attributes = appendAttr(attributes, seller, item.SKU, "Peso (g)", dims.Weight.String(), now)

		for idx, img := range detail.Images {
			images = append(images, model.ProductImage{
				Platform:   model.PlatformMagalu,
				Seller:     seller,
				SKU:        item.SKU,
				ImageID:    fmt.Sprintf("%s_%d", item.SKU, idx),
				URL:        img.Reference,
				Resolution: img.Type,
				SyncedAt:   now,
			})
		}
	}

	rawOrders, err := s.fetchOrders(ctx, gw)
	if err != nil {
		if isFatalAuth(err) {
			return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformMagalu, err))
		}
		log.Printf("[Magalu] 订单翻页中断: %v", err)
		messages = append(messages, fmt.Sprintf("Paginação de pedidos interrompida: %v", err))
	}
	orders := s.normalizeOrders(rawOrders, seller, now)

	err = s.store.PurgeSeller(ctx, model.PlatformMagalu, seller,
		&model.ProductQuality{}, &model.ProductAttribute{}, &model.ProductImage{}, &model.Order{}, &model.Product{})
	if err != nil {
		return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Persist(model.PlatformMagalu, "limpeza", err))
	}

	failedBatches += s.store.UpsertProducts(ctx, products)
	failedBatches += s.store.UpsertImages(ctx, images)
	failedBatches += s.store.UpsertAttributes(ctx, attributes)
	failedBatches += s.store.UpsertOrders(ctx, orders)
	messages = append(messages, fmt.Sprintf("%d produtos salvos", len(products)))
	messages = append(messages, fmt.Sprintf("%d pedidos salvos", len(orders)))

	findings := s.quality.DeriveMagaluQuality(products, images, attributes, now)
	skus, err := s.store.ListProductSKUs(ctx, model.PlatformMagalu, seller)
	if err != nil {
		log.Printf("[Magalu] 读取已入库 SKU 失败: %v", err)
	} else {
		findings = FilterToExisting(findings, skus)
	}
	failedBatches += s.store.UpsertProductQuality(ctx, findings)
	messages = append(messages, fmt.Sprintf("%d diagnósticos de qualidade salvos", len(findings)))

	log.Printf("[Magalu] 卖家 %s 采集完成", seller)
	return s.finishRun(seller, startedAt, messages, failedBatches, nil)
}

func (s *MagaluService) finishRun(seller string, startedAt time.Time, messages []string, failedBatches int, collectErr error) error {
	run := model.SyncRun{
		Platform:      model.PlatformMagalu,
		Seller:        seller,
		Status:        model.SyncRunStatusDone,
		FailedBatches: failedBatches,
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
	}
	if collectErr != nil {
		run.Status = model.SyncRunStatusFailed
		run.ErrorMessage = collectErr.Error()
	}
	if payload, err := json.Marshal(messages); err == nil {
		run.Messages = datatypes.JSON(payload)
	}
	if err := s.runs.Create(context.Background(), &run); err != nil {
		log.Printf("[Magalu] 流水记录写入失败: %v", err)
	}
	return collectErr
}
