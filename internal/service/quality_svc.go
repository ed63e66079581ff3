package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"marketsync_v1_202608/internal/model"
)

// ==================== 质量诊断 ====================

// QualityService 商品 / 库存的上架质量诊断
// 纯内存计算：输入当期归一化数据，输出诊断行
// 每条诊断要么是 "OK"，要么是带数量的葡语缺陷文案
type QualityService struct{}

func NewQualityService() *QualityService {
	return &QualityService{}
}

// countLowResolution 统计低分辨率图片数
// 分辨率形如 "800x600"，任一边小于 1000 即判低；无法解析的跳过
func countLowResolution(resolutions []string) int {
	low := 0
	for _, r := range resolutions {
		parts := strings.Split(strings.ToLower(strings.TrimSpace(r)), "x")
		if len(parts) != 2 {
			continue
		}
		w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
		h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errW != nil || errH != nil {
			continue
		}
		if w < 1000 || h < 1000 {
			low++
		}
	}
	return low
}

// groupImagesBySKU 把图片行按 sku 聚合成分辨率列表
func groupImagesBySKU(images []model.ProductImage) map[string][]string {
	grouped := make(map[string][]string)
	for _, img := range images {
		if img.Resolution != "" {
			grouped[img.SKU] = append(grouped[img.SKU], img.Resolution)
		} else {
			grouped[img.SKU] = append(grouped[img.SKU], "")
		}
	}
	return grouped
}

// countEmptyAttrs 统计每个 sku 下值为空的属性数
func countEmptyAttrs(attrs []model.ProductAttribute) map[string]int {
	counts := make(map[string]int)
	for _, a := range attrs {
		if strings.TrimSpace(a.Value) == "" {
			counts[a.SKU]++
		}
	}
	return counts
}

func titleCheck(title string, min, max int) string {
	n := utf8.RuneCountInString(title)
	if n >= min && n <= max {
		return model.QualityOK
	}
	return "Necessário preencher"
}

func descriptionCheck(description string) string {
	if strings.TrimSpace(description) != "" && utf8.RuneCountInString(description) > 500 {
		return model.QualityOK
	}
	return "Necessário preencher"
}

// DeriveMeliQuality Mercado Livre 商品诊断
// 规则：标题 50~60 字符、至少 6 张图、无低分辨率图、描述超过 500 字符、
// 已填保修、无空属性
func (s *QualityService) DeriveMeliQuality(products []model.Product, images []model.ProductImage, attrs []model.ProductAttribute, now time.Time) []model.ProductQuality {
	imgsBySKU := groupImagesBySKU(images)
	emptyAttrs := countEmptyAttrs(attrs)

	findings := make([]model.ProductQuality, 0, len(products))
	for _, p := range products {
		resolutions := imgsBySKU[p.SKU]
		imgCount := len(resolutions)

		imgMsg := model.QualityOK
		if imgCount < 6 {
			imgMsg = fmt.Sprintf("Necessário adicionar mais %d imagens", 6-imgCount)
		}

		resMsg := model.QualityOK
		if low := countLowResolution(resolutions); low > 0 {
			resMsg = fmt.Sprintf("%d imagens com a qualidade baixa", low)
		}

		warrantyMsg := model.QualityOK
		w := strings.ToLower(strings.TrimSpace(p.Warranty))
		if w == "" || w == "null" || w == "sem garantia informada" {
			warrantyMsg = "Sem garantia informada"
		}

		findings = append(findings, model.ProductQuality{
			Platform:         p.Platform,
			Seller:           p.Seller,
			SKU:              p.SKU,
			ProductTitle:     p.Title,
			Status:           p.Status,
			TitleCheck:       titleCheck(p.Title, 50, 60),
			ImageCountCheck:  imgMsg,
			ResolutionCheck:  resMsg,
			DescriptionCheck: descriptionCheck(p.Description),
			WarrantyCheck:    warrantyMsg,
			AttributesCheck:  fmt.Sprintf("%d campos vazios", emptyAttrs[p.SKU]),
			SyncedAt:         now,
		})
	}
	return findings
}

// DeriveMagaluQuality Magalu 商品诊断
// 规则：标题 10~60 字符、超过 3 张图、无低分辨率图、描述超过 500 字符、已填品牌
func (s *QualityService) DeriveMagaluQuality(products []model.Product, images []model.ProductImage, attrs []model.ProductAttribute, now time.Time) []model.ProductQuality {
	imgsBySKU := groupImagesBySKU(images)
	emptyAttrs := countEmptyAttrs(attrs)

	findings := make([]model.ProductQuality, 0, len(products))
	for _, p := range products {
		resolutions := imgsBySKU[p.SKU]
		imgCount := len(resolutions)

		imgMsg := model.QualityOK
		if imgCount <= 3 {
			imgMsg = fmt.Sprintf("Necessário adicionar mais %d imagens", 3-imgCount)
		}

		resMsg := model.QualityOK
		if low := countLowResolution(resolutions); low > 0 {
			resMsg = fmt.Sprintf("%d imagens com qualidade baixa", low)
		}

		brandMsg := model.QualityOK
		if strings.TrimSpace(p.Brand) == "" {
			brandMsg = "Necessário preencher"
		}

		findings = append(findings, model.ProductQuality{
			Platform:         p.Platform,
			Seller:           p.Seller,
			SKU:              p.SKU,
			ProductTitle:     p.Title,
			Status:           p.Status,
			TitleCheck:       titleCheck(p.Title, 10, 60),
			ImageCountCheck:  imgMsg,
			ResolutionCheck:  resMsg,
			DescriptionCheck: descriptionCheck(p.Description),
			BrandCheck:       brandMsg,
			AttributesCheck:  fmt.Sprintf("%d campos vazios", emptyAttrs[p.SKU]),
			SyncedAt:         now,
		})
	}
	return findings
}

// DeriveAmazonProductQuality Amazon 商品诊断：主图两边都不小于 500 像素
func (s *QualityService) DeriveAmazonProductQuality(products []model.Product, now time.Time) []model.ProductQuality {
	findings := make([]model.ProductQuality, 0, len(products))
	for _, p := range products {
		mainImgMsg := "Resolução baixa"
		if p.MainImageW >= 500 && p.MainImageH >= 500 {
			mainImgMsg = model.QualityOK
		}

		findings = append(findings, model.ProductQuality{
			Platform:       p.Platform,
			Seller:         p.Seller,
			SKU:            p.SKU,
			ProductTitle:   p.Title,
			Status:         p.Status,
			MainImageCheck: mainImgMsg,
			SyncedAt:       now,
		})
	}
	return findings
}

// DeriveAmazonInventoryQuality Amazon FBA 库存诊断
// 可售量缺失报缺货，显式的 0 是有效的库存数据；不可履约量非零报数量
func (s *QualityService) DeriveAmazonInventoryQuality(snapshots []model.InventorySnapshot, now time.Time) []model.InventoryQuality {
	findings := make([]model.InventoryQuality, 0, len(snapshots))
	for _, snap := range snapshots {
		fulfillableMsg := model.QualityOK
		if snap.Fulfillable == nil {
			fulfillableMsg = "Sem estoque"
		}

		unfulfillableMsg := model.QualityOK
		if snap.UnfulfillableTotal > 0 {
			unfulfillableMsg = fmt.Sprintf("%d itens inutilizáveis", snap.UnfulfillableTotal)
		}

		findings = append(findings, model.InventoryQuality{
			Platform:           snap.Platform,
			Seller:             snap.Seller,
			ASIN:               snap.ASIN,
			FulfillableCheck:   fulfillableMsg,
			UnfulfillableCheck: unfulfillableMsg,
			SyncedAt:           now,
		})
	}
	return findings
}

// FilterToExisting 只保留主表中存在的商品的诊断行，避免孤儿诊断
func FilterToExisting(findings []model.ProductQuality, skus map[string]bool) []model.ProductQuality {
	kept := make([]model.ProductQuality, 0, len(findings))
	for _, f := range findings {
		if skus[f.SKU] {
			kept = append(kept, f)
		}
	}
	return kept
}
