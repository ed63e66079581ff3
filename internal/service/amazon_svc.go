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

// ==================== Amazon SP-API 同步 ====================

const (
	amazonPageDelay   = 2 * time.Second
	amazonTimeLayout  = "2006-01-02T15:04:05.000Z"
	amazonAccessToken = "x-amz-access-token"
)

// AmazonService Amazon SP-API 平台的采集流水线
// 与其他平台不同：采集前先用 refresh_token 铸造首个访问令牌，
// 铸造失败对该卖家直接致命
type AmazonService struct {
	cfg     config.AmazonConfig
	creds   *CredentialStore
	store   repository.SyncStore
	runs    repository.SyncRunRepo
	quality *QualityService
	client  *resty.Client
}

func NewAmazonService(cfg config.AmazonConfig, creds *CredentialStore, store repository.SyncStore, runs repository.SyncRunRepo, quality *QualityService, client *resty.Client) *AmazonService {
	return &AmazonService{cfg: cfg, creds: creds, store: store, runs: runs, quality: quality, client: client}
}

// Sellers 已配置的卖家列表
func (s *AmazonService) Sellers() []string { return s.creds.Sellers() }

// ==================== 上游响应结构 ====================

type amazonMainImage struct {
	Link   string `json:"link"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type amazonSummary struct {
	ASIN            string          `json:"asin"`
	ProductType     string          `json:"productType"`
	ConditionType   string          `json:"conditionType"`
	Status          []string        `json:"status"`
	ItemName        string          `json:"itemName"`
	CreatedDate     string          `json:"createdDate"`
	LastUpdatedDate string          `json:"lastUpdatedDate"`
	MainImage       amazonMainImage `json:"mainImage"`
}

type amazonListingItem struct {
	SKU       string          `json:"sku"`
	Summaries []amazonSummary `json:"summaries"`
}

type amazonListingsPage struct {
	Items      []amazonListingItem `json:"items"`
	Pagination struct {
		NextToken string `json:"nextToken"`
	} `json:"pagination"`
}

type amazonMoney struct {
	Amount       string `json:"Amount"`
	CurrencyCode string `json:"CurrencyCode"`
}

type amazonOrder struct {
	AmazonOrderID          string      `json:"AmazonOrderId"`
	OrderStatus            string      `json:"OrderStatus"`
	PurchaseDate           string      `json:"PurchaseDate"`
	LastUpdateDate         string      `json:"LastUpdateDate"`
	SalesChannel           string      `json:"SalesChannel"`
	FulfillmentChannel     string      `json:"FulfillmentChannel"`
	PaymentMethodDetails   []string    `json:"PaymentMethodDetails"`
	OrderTotal             amazonMoney `json:"OrderTotal"`
	NumberOfItemsShipped   int         `json:"NumberOfItemsShipped"`
	NumberOfItemsUnshipped int         `json:"NumberOfItemsUnshipped"`
	IsPrime                bool        `json:"IsPrime"`
	IsBusinessOrder        bool        `json:"IsBusinessOrder"`
	BuyerInfo              struct {
		BuyerCounty string `json:"BuyerCounty"`
	} `json:"BuyerInfo"`
	ShippingAddress struct {
		StateOrRegion string `json:"StateOrRegion"`
		City          string `json:"City"`
	} `json:"ShippingAddress"`
}

type amazonOrdersPage struct {
	Payload struct {
		Orders    []amazonOrder `json:"Orders"`
		NextToken string        `json:"NextToken"`
	} `json:"payload"`
}

type amazonReservedQty struct {
	TotalReservedQuantity        int `json:"totalReservedQuantity"`
	PendingCustomerOrderQuantity int `json:"pendingCustomerOrderQuantity"`
	PendingTransshipmentQuantity int `json:"pendingTransshipmentQuantity"`
	FCProcessingQuantity         int `json:"fcProcessingQuantity"`
}

type amazonUnfulfillableQty struct {
	TotalUnfulfillableQuantity int `json:"totalUnfulfillableQuantity"`
	CustomerDamagedQuantity    int `json:"customerDamagedQuantity"`
	WarehouseDamagedQuantity   int `json:"warehouseDamagedQuantity"`
	DistributorDamagedQuantity int `json:"distributorDamagedQuantity"`
	CarrierDamagedQuantity     int `json:"carrierDamagedQuantity"`
	DefectiveQuantity          int `json:"defectiveQuantity"`
	ExpiredQuantity            int `json:"expiredQuantity"`
}

type amazonInventorySummary struct {
	ASIN             string `json:"asin"`
	FNSKU            string `json:"fnSku"`
	Condition        string `json:"condition"`
	ProductName      string `json:"productName"`
	TotalQuantity    int    `json:"totalQuantity"`
	LastUpdatedTime  string `json:"lastUpdatedTime"`
	InventoryDetails struct {
		FulfillableQuantity      *int                   `json:"fulfillableQuantity"`
		InboundReceivingQuantity int                    `json:"inboundReceivingQuantity"`
		ReservedQuantity         amazonReservedQty      `json:"reservedQuantity"`
		ResearchingQuantity      struct {
			TotalResearchingQuantity int `json:"totalResearchingQuantity"`
		} `json:"researchingQuantity"`
		UnfulfillableQuantity amazonUnfulfillableQty `json:"unfulfillableQuantity"`
		FutureSupplyQuantity  struct {
			ReservedFutureSupplyQuantity int `json:"reservedFutureSupplyQuantity"`
			FutureSupplyBuyableQuantity  int `json:"futureSupplyBuyableQuantity"`
		} `json:"futureSupplyQuantity"`
	} `json:"inventoryDetails"`
}

type amazonInventoryPage struct {
	Payload struct {
		InventorySummaries []amazonInventorySummary `json:"inventorySummaries"`
	} `json:"payload"`
	Pagination struct {
		NextToken string `json:"nextToken"`
	} `json:"pagination"`
}

type amazonMetricsMoney struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

type amazonOrderMetric struct {
	Interval         string             `json:"interval"`
	UnitCount        int                `json:"unitCount"`
	OrderItemCount   int                `json:"orderItemCount"`
	OrderCount       int                `json:"orderCount"`
	AverageUnitPrice amazonMetricsMoney `json:"averageUnitPrice"`
	TotalSales       amazonMetricsMoney `json:"totalSales"`
}

type amazonMetricsPage struct {
	Payload []amazonOrderMetric `json:"payload"`
}

// ==================== 翻译 ====================

var amazonOrderStatusMap = map[string]string{
	"Canceled": "Cancelado",
	"Shipped":  "Enviado",
	"Pending":  "Pendente",
}

var amazonPaymentDetailMap = map[string]string{
	"Debit":           "Débito",
	"Installments":    "Parcelado",
	"CreditCard":      "Cartão de crédito",
	"Rewards":         "Recompensas",
	"GiftCertificate": "Vale-presente",
	"Other":           "Outro",
}

var amazonProductTypeMap = map[string]string{
	"SHORTS":                           "Bermuda",
	"PANTS":                            "Calça",
	"UNDERPANTS":                       "Roupa de baixo",
	"BRA":                              "Sutiã",
	"APPAREL":                          "Vestuário",
	"SKIRT":                            "Saia",
	"COORDINATED_OUTFIT":               "Conjunto",
	"SHIRT":                            "Camisa",
	"BASE_LAYER_APPAREL_SET":           "Roupa térmica",
	"ELECTRONIC_CABLE":                 "Cabo eletrônico",
	"CHARGING_ADAPTER":                 "Carregador",
	"CAMERA_CONTINUOUS_LIGHT":          "Luz para câmera",
	"SWIMWEAR":                         "Roupa de banho",
	"SHOES":                            "Calçado",
	"CELLULAR_PHONE_CASE":              "Capa de celular",
	"ELECTRONIC_ADAPTER":               "Adaptador eletrônico",
	"PORTABLE_ELECTRONIC_DEVICE_COVER": "Capa para dispositivo portátil",
	"HEADPHONES":                       "Fone de ouvido",
	"SOCKS":                            "Meia",
	"MULTIPORT_HUB":                    "Hub USB",
	"COMPUTER_DRIVE_OR_STORAGE":        "Armazenamento/Drive de computador",
}

var amazonProductStatusMap = map[string]string{
	"BUYABLE":      "Disponível para venda",
	"DISCOVERABLE": "Visível no catálogo",
}

func translateAmazonOrderStatus(status string) string {
	if status == "" {
		return "Não informado"
	}
	if translated, ok := amazonOrderStatusMap[status]; ok {
		return translated
	}
	return status
}

func translateAmazonPaymentDetails(details []string) string {
	if len(details) == 0 {
		return "Não informado"
	}
	translated := make([]string, 0, len(details))
	for _, d := range details {
		if t, ok := amazonPaymentDetailMap[d]; ok {
			translated = append(translated, t)
		} else {
			translated = append(translated, d)
		}
	}
	return strings.Join(translated, ", ")
}

func translateAmazonProductType(productType string) string {
	if productType == "" {
		return "Não informado"
	}
	if translated, ok := amazonProductTypeMap[productType]; ok {
		return translated
	}
	return productType
}

func translateAmazonCondition(condition string) string {
	if condition == "new_new" {
		return "Novo"
	}
	if condition == "" {
		return "Não informado"
	}
	return condition
}

func translateAmazonProductStatus(status []string) string {
	if len(status) == 0 {
		return "Não informado"
	}
	translated := make([]string, 0, len(status))
	for _, st := range status {
		if t, ok := amazonProductStatusMap[st]; ok {
			translated = append(translated, t)
		} else {
			translated = append(translated, st)
		}
	}
	return strings.Join(translated, ", ")
}

// ==================== 抓取 ====================

// fetchListings 收集全部在售商品，2 年内创建的条目
// 整页无 sku 也无 asin 的视为噪声尾页，停止翻页
func (s *AmazonService) fetchListings(ctx context.Context, gw *net.Gateway, sellerID string) ([]amazonListingItem, error) {
	url := fmt.Sprintf("%s/listings/2021-08-01/items/%s", s.cfg.BaseURL, sellerID)
	createdAfter := time.Now().AddDate(-2, 0, 0).Format(amazonTimeLayout)

	return net.PaginateCursor(ctx, amazonPageDelay, func(ctx context.Context, cursor string) ([]amazonListingItem, string, error) {
		query := map[string]string{
			"marketplaceIds": s.cfg.MarketplaceID,
			"sortBy":         "lastUpdatedDate",
			"createdAfter":   createdAfter,
		}
		if cursor != "" {
			query["pageToken"] = cursor
		}
		var page amazonListingsPage
		if err := gw.GetJSON(ctx, url, query, &page); err != nil {
			return nil, "", err
		}

		valid := make([]amazonListingItem, 0, len(page.Items))
		for _, item := range page.Items {
			asin := ""
			if len(item.Summaries) > 0 {
				asin = item.Summaries[0].ASIN
			}
			if item.SKU != "" || asin != "" {
				valid = append(valid, item)
			}
		}
		return valid, page.Pagination.NextToken, nil
	})
}

// fetchOrders 最近 7 天的订单
// 携带 NextToken 的后续请求不再重复过滤参数
func (s *AmazonService) fetchOrders(ctx context.Context, gw *net.Gateway) ([]amazonOrder, error) {
	url := fmt.Sprintf("%s/orders/v0/orders", s.cfg.BaseURL)
	createdAfter := time.Now().UTC().AddDate(0, 0, -7).Format(amazonTimeLayout)

	return net.PaginateCursor(ctx, amazonPageDelay, func(ctx context.Context, cursor string) ([]amazonOrder, string, error) {
		query := map[string]string{
			"CreatedAfter":   createdAfter,
			"MarketplaceIds": s.cfg.MarketplaceID,
		}
		if cursor != "" {
			query = map[string]string{
				"MarketplaceIds": s.cfg.MarketplaceID,
				"NextToken":      cursor,
			}
		}
		var page amazonOrdersPage
		if err := gw.GetJSON(ctx, url, query, &page); err != nil {
			return nil, "", err
		}
		return page.Payload.Orders, page.Payload.NextToken, nil
	})
}

// fetchInventory 最近 90 天有流动的 FBA 库存快照
func (s *AmazonService) fetchInventory(ctx context.Context, gw *net.Gateway) ([]amazonInventorySummary, error) {
	url := fmt.Sprintf("%s/fba/inventory/v1/summaries", s.cfg.BaseURL)
	startDate := time.Now().UTC().AddDate(0, 0, -90).Format(amazonTimeLayout)

	return net.PaginateCursor(ctx, amazonPageDelay, func(ctx context.Context, cursor string) ([]amazonInventorySummary, string, error) {
		query := map[string]string{
			"marketplaceIds":  s.cfg.MarketplaceID,
			"details":         "true",
			"granularityType": "Marketplace",
			"granularityId":   s.cfg.MarketplaceID,
			"startDateTime":   startDate,
		}
		if cursor != "" {
			query["nextToken"] = cursor
		}
		var page amazonInventoryPage
		if err := gw.GetJSON(ctx, url, query, &page); err != nil {
			return nil, "", err
		}
		return page.Payload.InventorySummaries, page.Pagination.NextToken, nil
	})
}

// fetchOrderMetrics 近一年按月聚合的营收指标，单次调用无需翻页
func (s *AmazonService) fetchOrderMetrics(ctx context.Context, gw *net.Gateway) ([]amazonOrderMetric, error) {
	url := fmt.Sprintf("%s/sales/v1/orderMetrics", s.cfg.BaseURL)
	now := time.Now().UTC()
	intervalStart := now.AddDate(-1, 0, 0).Format("2006-01-02T00:00:00Z")
	intervalEnd := now.Format("2006-01-02T23:59:59Z")

	query := map[string]string{
		"marketplaceIds":      s.cfg.MarketplaceID,
		"interval":            intervalStart + "--" + intervalEnd,
		"granularityTimeZone": "America/Sao_Paulo",
		"granularity":         "Month",
	}
	var page amazonMetricsPage
	if err := gw.GetJSON(ctx, url, query, &page); err != nil {
		return nil, err
	}
	return page.Payload, nil
}

// ==================== 归一化 ====================

func (s *AmazonService) normalizeProducts(items []amazonListingItem, seller string, now time.Time) []model.Product {
	products := make([]model.Product, 0, len(items))
	for _, item := range items {
		var summary amazonSummary
		if len(item.Summaries) > 0 {
			summary = item.Summaries[0]
		}

		// 自然键优先用 ASIN，缺失时退回 seller SKU
		sku := summary.ASIN
		if sku == "" {
			sku = item.SKU
		}

		imageURL := summary.MainImage.Link
		if imageURL == "" {
			imageURL = "Sem imagem"
		}

		products = append(products, model.Product{
			Platform:      model.PlatformAmazon,
			Seller:        seller,
			SKU:           sku,
			ASIN:          summary.ASIN,
			SellerSKU:     item.SKU,
			Title:         summary.ItemName,
			ProductType:   translateAmazonProductType(summary.ProductType),
			ConditionType: translateAmazonCondition(summary.ConditionType),
			Status:        translateAmazonProductStatus(summary.Status),
			MainImageURL:  imageURL,
			MainImageW:    summary.MainImage.Width,
			MainImageH:    summary.MainImage.Height,
			CreatedDate:   summary.CreatedDate,
			UpdatedDate:   summary.LastUpdatedDate,
			SyncedAt:      now,
		})
	}
	return products
}

func (s *AmazonService) normalizeOrders(orders []amazonOrder, seller string, now time.Time) []model.Order {
	rows := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		status := translateAmazonOrderStatus(o.OrderStatus)
		cancelled := status == "Cancelado"
		pending := status == "Pendente"

		// 取消 / 待支付订单的金额与收货字段写哨兵文案
		sentinel := func(value string) string {
			if cancelled {
				return "Pedido cancelado"
			}
			if pending {
				return "Pendente"
			}
			return value
		}

		buyerCity := o.BuyerInfo.BuyerCounty
		if buyerCity == "" || buyerCity == "----------" {
			buyerCity = "Não informado"
		}

		rows = append(rows, model.Order{
			Platform:           model.PlatformAmazon,
			Seller:             seller,
			OrderID:            o.AmazonOrderID,
			Status:             status,
			PaymentMethod:      translateAmazonPaymentDetails(o.PaymentMethodDetails),
			PurchaseDate:       o.PurchaseDate,
			ApprovedDate:       o.LastUpdateDate,
			TotalAmount:        sentinel(o.OrderTotal.Amount),
			Currency:           sentinel(o.OrderTotal.CurrencyCode),
			SalesChannel:       o.SalesChannel,
			FulfillmentChannel: o.FulfillmentChannel,
			ItemsShipped:       o.NumberOfItemsShipped,
			ItemsUnshipped:     o.NumberOfItemsUnshipped,
			IsPrime:            o.IsPrime,
			IsBusinessOrder:    o.IsBusinessOrder,
			BuyerCity:          buyerCity,
			ShippingState:      sentinel(o.ShippingAddress.StateOrRegion),
			ShippingCity:       sentinel(o.ShippingAddress.City),
			SyncedAt:           now,
		})
	}
	return rows
}

func (s *AmazonService) normalizeInventory(summaries []amazonInventorySummary, seller string, now time.Time) []model.InventorySnapshot {
	rows := make([]model.InventorySnapshot, 0, len(summaries))
	for _, e := range summaries {
		d := e.InventoryDetails
		rows = append(rows, model.InventorySnapshot{
			Platform:                 model.PlatformAmazon,
			Seller:                   seller,
			ASIN:                     e.ASIN,
			FNSKU:                    e.FNSKU,
			Condition:                e.Condition,
			ProductName:              e.ProductName,
			Fulfillable:              d.FulfillableQuantity,
			InboundReceiving:         d.InboundReceivingQuantity,
			ReservedTotal:            d.ReservedQuantity.TotalReservedQuantity,
			ReservedCustomer:         d.ReservedQuantity.PendingCustomerOrderQuantity,
			ReservedTransship:        d.ReservedQuantity.PendingTransshipmentQuantity,
			ReservedFCProcessing:     d.ReservedQuantity.FCProcessingQuantity,
			ResearchingTotal:         d.ResearchingQuantity.TotalResearchingQuantity,
			UnfulfillableTotal:       d.UnfulfillableQuantity.TotalUnfulfillableQuantity,
			UnfulfillableCustomer:    d.UnfulfillableQuantity.CustomerDamagedQuantity,
			UnfulfillableWarehouse:   d.UnfulfillableQuantity.WarehouseDamagedQuantity,
			UnfulfillableDistributor: d.UnfulfillableQuantity.DistributorDamagedQuantity,
			UnfulfillableCarrier:     d.UnfulfillableQuantity.CarrierDamagedQuantity,
			UnfulfillableDefective:   d.UnfulfillableQuantity.DefectiveQuantity,
			UnfulfillableExpired:     d.UnfulfillableQuantity.ExpiredQuantity,
			FutureSupplyReserved:     d.FutureSupplyQuantity.ReservedFutureSupplyQuantity,
			FutureSupplyBuyable:      d.FutureSupplyQuantity.FutureSupplyBuyableQuantity,
			TotalQuantity:            e.TotalQuantity,
			LastUpdated:              e.LastUpdatedTime,
			SyncedAt:                 now,
		})
	}
	return rows
}

func (s *AmazonService) normalizeRevenue(metrics []amazonOrderMetric, seller string, now time.Time) []model.RevenuePeriod {
	rows := make([]model.RevenuePeriod, 0, len(metrics))
	for _, m := range metrics {
		parts := strings.SplitN(m.Interval, "--", 2)
		start := parts[0]
		end := ""
		if len(parts) == 2 {
			end = parts[1]
		}

		rows = append(rows, model.RevenuePeriod{
			Platform:           model.PlatformAmazon,
			Seller:             seller,
			PeriodStart:        start,
			PeriodEnd:          end,
			UnitsSold:          m.UnitCount,
			OrderItems:         m.OrderItemCount,
			OrdersCount:        m.OrderCount,
			AvgUnitPrice:       m.AverageUnitPrice.Amount,
			AvgUnitCurrency:    m.AverageUnitPrice.CurrencyCode,
			TotalSales:         m.TotalSales.Amount,
			TotalSalesCurrency: m.TotalSales.CurrencyCode,
			SyncedAt:           now,
		})
	}
	return rows
}

// ==================== 采集流水线 ====================

// Collect 对单个卖家执行完整采集
// 顺序：铸造令牌 -> 商品 -> 清除旧数据 -> 落库 -> 订单 -> 库存 -> 营收 -> 质量诊断
func (s *AmazonService) Collect(ctx context.Context, seller string) error {
	log.Printf("[Amazon] 开始采集，卖家: %s", seller)
	startedAt := time.Now()

	cred, err := s.creds.Get(seller)
	if err != nil {
		return syncerr.Auth(model.PlatformAmazon, err)
	}

	session := NewTokenSession(model.PlatformAmazon, s.cfg.AuthBaseURL, s.cfg.ClientID, s.cfg.ClientSecret, cred, s.client)

	// 先铸造首个访问令牌，失败即致命
	if err := session.Refresh(ctx); err != nil {
		return s.finishRun(seller, startedAt, nil, 0, syncerr.Auth(model.PlatformAmazon, err))
	}
	gw := net.NewHeaderGateway(s.client, session, amazonAccessToken)

	var messages []string
	failedBatches := 0
	now := time.Now()

	// 商品
	items, err := s.fetchListings(ctx, gw, cred.SellerID)
	if err != nil {
		if isFatalAuth(err) {
			return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformAmazon, err))
		}
		log.Printf("[Amazon] 商品翻页中断: %v", err)
		messages = append(messages, fmt.Sprintf("Paginação de produtos interrompida: %v", err))
	}
	products := s.normalizeProducts(items, seller, now)

	err = s.store.PurgeSeller(ctx, model.PlatformAmazon, seller,
		&model.ProductQuality{}, &model.InventoryQuality{}, &model.InventorySnapshot{},
		&model.Order{}, &model.RevenuePeriod{}, &model.Product{})
	if err != nil {
		return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Persist(model.PlatformAmazon, "limpeza", err))
	}

	failedBatches += s.store.UpsertProducts(ctx, products)
	messages = append(messages, fmt.Sprintf("%d produtos salvos", len(products)))

	productFindings := s.quality.DeriveAmazonProductQuality(products, now)
	failedBatches += s.store.UpsertProductQuality(ctx, productFindings)
	messages = append(messages, fmt.Sprintf("%d diagnósticos de produtos salvos", len(productFindings)))

	// 订单
	rawOrders, err := s.fetchOrders(ctx, gw)
	if err != nil {
		if isFatalAuth(err) {
			return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformAmazon, err))
		}
		log.Printf("[Amazon] 订单翻页中断: %v", err)
		messages = append(messages, fmt.Sprintf("Paginação de pedidos interrompida: %v", err))
	}
	orders := s.normalizeOrders(rawOrders, seller, now)
	failedBatches += s.store.UpsertOrders(ctx, orders)
	messages = append(messages, fmt.Sprintf("%d pedidos salvos", len(orders)))

	// 库存
	rawInventory, err := s.fetchInventory(ctx, gw)
	if err != nil {
		if isFatalAuth(err) {
			return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformAmazon, err))
		}
		log.Printf("[Amazon] 库存翻页中断: %v", err)
		messages = append(messages, fmt.Sprintf("Paginação de estoque interrompida: %v", err))
	}
	inventory := s.normalizeInventory(rawInventory, seller, now)
	failedBatches += s.store.UpsertInventory(ctx, inventory)
	messages = append(messages, fmt.Sprintf("%d registros de estoque salvos", len(inventory)))

	inventoryFindings := s.quality.DeriveAmazonInventoryQuality(inventory, now)
	failedBatches += s.store.UpsertInventoryQuality(ctx, inventoryFindings)
	messages = append(messages, fmt.Sprintf("%d diagnósticos de estoque salvos", len(inventoryFindings)))

	// 营收
	metrics, err := s.fetchOrderMetrics(ctx, gw)
	if err != nil {
		if isFatalAuth(err) {
			return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformAmazon, err))
		}
		log.Printf("[Amazon] 营收指标获取失败: %v", err)
		messages = append(messages, fmt.Sprintf("Falha ao obter faturamento: %v", err))
	}
	revenue := s.normalizeRevenue(metrics, seller, now)
	failedBatches += s.store.UpsertRevenue(ctx, revenue)
	messages = append(messages, fmt.Sprintf("%d registros de faturamento salvos", len(revenue)))

	log.Printf("[Amazon] 卖家 %s 采集完成", seller)
	return s.finishRun(seller, startedAt, messages, failedBatches, nil)
}

func (s *AmazonService) finishRun(seller string, startedAt time.Time, messages []string, failedBatches int, collectErr error) error {
	run := model.SyncRun{
		Platform:      model.PlatformAmazon,
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
		log.Printf("[Amazon] 流水记录写入失败: %v", err)
	}
	return collectErr
}
