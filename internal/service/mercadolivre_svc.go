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

// ==================== Mercado Livre 同步 ====================

const meliPageDelay = 500 * time.Millisecond

// MeliService Mercado Livre 平台的采集流水线
type MeliService struct {
	cfg     config.PlatformConfig
	creds   *CredentialStore
	store   repository.SyncStore
	runs    repository.SyncRunRepo
	quality *QualityService
	client  *resty.Client
}

func NewMeliService(cfg config.PlatformConfig, creds *CredentialStore, store repository.SyncStore, runs repository.SyncRunRepo, quality *QualityService, client *resty.Client) *MeliService {
	return &MeliService{cfg: cfg, creds: creds, store: store, runs: runs, quality: quality, client: client}
}

// Sellers 已配置的卖家列表
func (s *MeliService) Sellers() []string { return s.creds.Sellers() }

// ==================== 上游响应结构 ====================

type meliScrollPage struct {
	Results  []string `json:"results"`
	ScrollID string   `json:"scroll_id"`
}

type meliAttribute struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ValueName string `json:"value_name"`
}

type meliPicture struct {
	ID        string `json:"id"`
	SecureURL string `json:"secure_url"`
	Size      string `json:"size"`
}

type meliVariation struct {
	ID                    json.Number     `json:"id"`
	Price                 decimal.Decimal `json:"price"`
	AttributeCombinations []meliAttribute `json:"attribute_combinations"`
}

type meliItem struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	CategoryID         string          `json:"category_id"`
	Price              decimal.Decimal `json:"price"`
	Status             string          `json:"status"`
	Health             json.Number     `json:"health"`
	InitialQuantity    int             `json:"initial_quantity"`
	SoldQuantity       int             `json:"sold_quantity"`
	AvailableQuantity  int             `json:"available_quantity"`
	Permalink          string          `json:"permalink"`
	AcceptsMercadoPago bool            `json:"accepts_mercadopago"`
	Warranty           *string         `json:"warranty"`
	Pictures           []meliPicture   `json:"pictures"`
	Attributes         []meliAttribute `json:"attributes"`
	Variations         []meliVariation `json:"variations"`
}

type meliDescription struct {
	PlainText string `json:"plain_text"`
}

type meliCategory struct {
	Name string `json:"name"`
}

// ==================== 归一化 ====================

// translateMeliStatus 商品状态翻译，未知值原样透传
func translateMeliStatus(status string) string {
	switch status {
	case "closed":
		return "Fechado"
	case "active":
		return "Ativo"
	case "paused":
		return "Pausado"
	}
	return status
}

// normalizeDescription 空描述替换为占位文案
func normalizeDescription(description string) string {
	if strings.TrimSpace(description) == "" {
		return "Sem descrição"
	}
	return description
}

// normalizeWarranty 缺失的保修替换为占位文案
func normalizeWarranty(warranty *string) string {
	if warranty == nil || strings.ToLower(strings.TrimSpace(*warranty)) == "null" || strings.TrimSpace(*warranty) == "" {
		return "Sem garantia informada"
	}
	return *warranty
}

// attributeValue 按属性 ID 取值 (GTIN / BRAND)
func attributeValue(attrs []meliAttribute, id string) string {
	for _, a := range attrs {
		if a.ID == id {
			return a.ValueName
		}
	}
	return ""
}

// ==================== 抓取 ====================

// fetchItemIDs scan 式滚动翻页收集全部商品 ID
func (s *MeliService) fetchItemIDs(ctx context.Context, gw *net.Gateway, sellerID string) ([]string, error) {
	url := fmt.Sprintf("%s/users/%s/items/search", s.cfg.BaseURL, sellerID)
	return net.PaginateCursor(ctx, meliPageDelay, func(ctx context.Context, cursor string) ([]string, string, error) {
		query := map[string]string{"search_type": "scan"}
		if cursor != "" {
			query["scroll_id"] = cursor
		}
		var page meliScrollPage
		if err := gw.GetJSON(ctx, url, query, &page); err != nil {
			return nil, "", err
		}
		return page.Results, page.ScrollID, nil
	})
}

func (s *MeliService) fetchItem(ctx context.Context, gw *net.Gateway, itemID string) (*meliItem, error) {
	var item meliItem
	if err := gw.GetJSON(ctx, fmt.Sprintf("%s/items/%s", s.cfg.BaseURL, itemID), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// fetchDescription 失败时返回占位文案和原始错误，由调用方判断是否致命
func (s *MeliService) fetchDescription(ctx context.Context, gw *net.Gateway, itemID string) (string, error) {
	var desc meliDescription
	if err := gw.GetJSON(ctx, fmt.Sprintf("%s/items/%s/description", s.cfg.BaseURL, itemID), nil, &desc); err != nil {
		return "Erro de conexão", err
	}
	return normalizeDescription(desc.PlainText), nil
}

func (s *MeliService) fetchCategoryName(ctx context.Context, gw *net.Gateway, categoryID string) (string, error) {
	if categoryID == "" {
		return "Categoria não encontrada", nil
	}
	var cat meliCategory
	if err := gw.GetJSON(ctx, fmt.Sprintf("%s/categories/%s", s.cfg.BaseURL, categoryID), nil, &cat); err != nil {
		return "Erro ao buscar categoria", err
	}
	if cat.Name == "" {
		return "Categoria não encontrada", nil
	}
	return cat.Name, nil
}

// ==================== 采集流水线 ====================

// Collect 对单个卖家执行完整采集：
// 抓取 -> 归一化 -> 清除旧数据 -> 落库 -> 质量诊断 -> 记录流水
func (s *MeliService) Collect(ctx context.Context, seller string) error {
	log.Printf("[MercadoLivre] 开始采集，卖家: %s", seller)
	startedAt := time.Now()

	cred, err := s.creds.Get(seller)
	if err != nil {
		return syncerr.Auth(model.PlatformMercadoLivre, err)
	}

	tokenURL := s.cfg.BaseURL + "/oauth/token"
	if s.cfg.AuthBaseURL != "" {
		tokenURL = s.cfg.AuthBaseURL + "/oauth/token"
	}
	session := NewTokenSession(model.PlatformMercadoLivre, tokenURL, s.cfg.ClientID, s.cfg.ClientSecret, cred, s.client)
	gw := net.NewBearerGateway(s.client, session)

	var messages []string
	failedBatches := 0

	itemIDs, err := s.fetchItemIDs(ctx, gw, cred.SellerID)
	if err != nil {
		if isFatalAuth(err) {
			return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformMercadoLivre, err))
		}
		// 翻页中断时带着部分 ID 继续
		log.Printf("[MercadoLivre] 商品 ID 翻页中断: %v", err)
		messages = append(messages, fmt.Sprintf("Paginação de produtos interrompida: %v", err))
	}
	log.Printf("[MercadoLivre] 卖家 %s 共 %d 个商品 ID", seller, len(itemIDs))

	now := time.Now()
	var (
		products   []model.Product
		images     []model.ProductImage
		attributes []model.ProductAttribute
		variations []model.ProductVariation
	)

	for _, itemID := range itemIDs {
		item, err := s.fetchItem(ctx, gw, itemID)
		if err != nil {
			if isFatalAuth(err) {
				return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformMercadoLivre, err))
			}
			log.Printf("[MercadoLivre] 商品 %s 详情获取失败，跳过: %v", itemID, err)
			continue
		}

		description, err := s.fetchDescription(ctx, gw, itemID)
		if isFatalAuth(err) {
			return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformMercadoLivre, err))
		}
		categoryName, err := s.fetchCategoryName(ctx, gw, item.CategoryID)
		if isFatalAuth(err) {
			return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Auth(model.PlatformMercadoLivre, err))
		}

		var imageLinks []string
		for _, pic := range item.Pictures {
			if pic.SecureURL != "" {
				imageLinks = append(imageLinks, pic.SecureURL)
			}
		}

		products = append(products, model.Product{
			Platform:           model.PlatformMercadoLivre,
			Seller:             seller,
			SKU:                item.ID,
			Title:              item.Title,
			Description:        description,
			Status:             translateMeliStatus(item.Status),
			Health:             item.Health.String(),
			CategoryID:         item.CategoryID,
			CategoryName:       categoryName,
			Price:              item.Price,
			StockQuantity:      item.AvailableQuantity,
			InitialQty:         item.InitialQuantity,
			SoldQty:            item.SoldQuantity,
			VariationCount:     len(item.Variations),
			ImageCount:         len(item.Pictures),
			ImageLinks:         strings.Join(imageLinks, ", "),
			GTIN:               attributeValue(item.Attributes, "GTIN"),
			Brand:              attributeValue(item.Attributes, "BRAND"),
			Permalink:          item.Permalink,
			Warranty:           normalizeWarranty(item.Warranty),
			AcceptsMercadoPago: item.AcceptsMercadoPago,
			SyncedAt:           now,
		})

		for _, pic := range item.Pictures {
			images = append(images, model.ProductImage{
				Platform:   model.PlatformMercadoLivre,
				Seller:     seller,
				SKU:        item.ID,
				ImageID:    pic.ID,
				URL:        pic.SecureURL,
				Resolution: pic.Size,
				SyncedAt:   now,
			})
		}

		for _, attr := range item.Attributes {
			// IdProduct 是平台内部字段，不入库
			if attr.Name == "" || attr.ValueName == "" || attr.Name == "IdProduct" {
				continue
			}
			attributes = append(attributes, model.ProductAttribute{
				Platform: model.PlatformMercadoLivre,
				Seller:   seller,
				SKU:      item.ID,
				Name:     attr.Name,
				Value:    attr.ValueName,
				SyncedAt: now,
			})
		}

		for _, variation := range item.Variations {
			for _, combo := range variation.AttributeCombinations {
				variations = append(variations, model.ProductVariation{
					Platform:       model.PlatformMercadoLivre,
					Seller:         seller,
					SKU:            item.ID,
					VariationID:    variation.ID.String(),
					AttributeName:  combo.Name,
					AttributeValue: combo.ValueName,
					Price:          variation.Price,
					SyncedAt:       now,
				})
			}
		}
	}

	// 快照替换：先整体清除该卖家旧数据
	err = s.store.PurgeSeller(ctx, model.PlatformMercadoLivre, seller,
		&model.ProductQuality{}, &model.ProductVariation{}, &model.ProductAttribute{}, &model.ProductImage{}, &model.Product{})
	if err != nil {
		return s.finishRun(seller, startedAt, messages, failedBatches, syncerr.Persist(model.PlatformMercadoLivre, "limpeza", err))
	}

	failedBatches += s.store.UpsertProducts(ctx, products)
	failedBatches += s.store.UpsertImages(ctx, images)
	failedBatches += s.store.UpsertAttributes(ctx, attributes)
	failedBatches += s.store.UpsertVariations(ctx, variations)
	messages = append(messages, fmt.Sprintf("%d produtos salvos", len(products)))

	// 质量诊断：只为已入库商品生成
	findings := s.quality.DeriveMeliQuality(products, images, attributes, now)
	skus, err := s.store.ListProductSKUs(ctx, model.PlatformMercadoLivre, seller)
	if err != nil {
		log.Printf("[MercadoLivre] 读取已入库 SKU 失败: %v", err)
	} else {
		findings = FilterToExisting(findings, skus)
	}
	failedBatches += s.store.UpsertProductQuality(ctx, findings)
	messages = append(messages, fmt.Sprintf("%d diagnósticos de qualidade salvos", len(findings)))

	log.Printf("[MercadoLivre] 卖家 %s 采集完成", seller)
	return s.finishRun(seller, startedAt, messages, failedBatches, nil)
}

// finishRun 写入流水记录并透传采集结果
func (s *MeliService) finishRun(seller string, startedAt time.Time, messages []string, failedBatches int, collectErr error) error {
	run := model.SyncRun{
		Platform:      model.PlatformMercadoLivre,
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
		log.Printf("[MercadoLivre] 流水记录写入失败: %v", err)
	}
	return collectErr
}
