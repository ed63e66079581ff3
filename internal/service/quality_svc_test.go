package service

import (
	"strings"
	"testing"
	"time"

	"marketsync_v1_202608/internal/model"
)

// ==================== 解析辅助 ====================

func TestCountLowResolution(t *testing.T) {
	tests := []struct {
		name        string
		resolutions []string
		want        int
	}{
		{"全部高清", []string{"1200x1200", "1000x1000"}, 0},
		{"一边偏低", []string{"800x1200", "1200x900"}, 2},
		{"混合", []string{"500x500", "1500x1500"}, 1},
		{"无法解析的跳过", []string{"", "abc", "500", "n/a"}, 0},
		{"大写 X 与空格", []string{" 800X600 "}, 1},
		{"空列表", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countLowResolution(tt.resolutions); got != tt.want {
				t.Errorf("countLowResolution() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTitleCheck(t *testing.T) {
	if got := titleCheck(strings.Repeat("a", 55), 50, 60); got != model.QualityOK {
		t.Errorf("55 caracteres = %s, want OK", got)
	}
	if got := titleCheck("curto", 50, 60); got != "Necessário preencher" {
		t.Errorf("curto = %s, want Necessário preencher", got)
	}
	// 多字节字符按符文计数
	if got := titleCheck(strings.Repeat("ç", 50), 50, 60); got != model.QualityOK {
		t.Errorf("50 cedilhas = %s, want OK", got)
	}
}

func TestDescriptionCheck(t *testing.T) {
	if got := descriptionCheck(strings.Repeat("d", 501)); got != model.QualityOK {
		t.Errorf("501 caracteres = %s, want OK", got)
	}
	if got := descriptionCheck(strings.Repeat("d", 500)); got != "Necessário preencher" {
		t.Errorf("500 caracteres = %s, want Necessário preencher", got)
	}
	if got := descriptionCheck("   "); got != "Necessário preencher" {
		t.Errorf("em branco = %s, want Necessário preencher", got)
	}
}

// ==================== Mercado Livre ====================

func TestDeriveMeliQuality(t *testing.T) {
	svc := NewQualityService()
	now := time.Now()

	product := model.Product{
		Platform:    model.PlatformMercadoLivre,
		Seller:      "loja_a",
		SKU:         "MLB1",
		Title:       strings.Repeat("t", 55),
		Description: strings.Repeat("d", 600),
		Warranty:    "90 dias",
	}
	images := []model.ProductImage{
		{SKU: "MLB1", Resolution: "1200x1200"},
		{SKU: "MLB1", Resolution: "800x600"},
	}
	attrs := []model.ProductAttribute{
		{SKU: "MLB1", Name: "Cor", Value: "Azul"},
		{SKU: "MLB1", Name: "Voltagem", Value: ""},
	}

	findings := svc.DeriveMeliQuality([]model.Product{product}, images, attrs, now)
	if len(findings) != 1 {
		t.Fatalf("len = %d, want 1", len(findings))
	}
	f := findings[0]

	if f.TitleCheck != model.QualityOK {
		t.Errorf("TitleCheck = %s, want OK", f.TitleCheck)
	}
	if f.ImageCountCheck != "Necessário adicionar mais 4 imagens" {
		t.Errorf("ImageCountCheck = %s", f.ImageCountCheck)
	}
	if f.ResolutionCheck != "1 imagens com a qualidade baixa" {
		t.Errorf("ResolutionCheck = %s", f.ResolutionCheck)
	}
	if f.DescriptionCheck != model.QualityOK {
		t.Errorf("DescriptionCheck = %s, want OK", f.DescriptionCheck)
	}
	if f.WarrantyCheck != model.QualityOK {
		t.Errorf("WarrantyCheck = %s, want OK", f.WarrantyCheck)
	}
	if f.AttributesCheck != "1 campos vazios" {
		t.Errorf("AttributesCheck = %s", f.AttributesCheck)
	}
}

func TestDeriveMeliQuality_MissingWarranty(t *testing.T) {
	svc := NewQualityService()

	for _, warranty := range []string{"", "null", "Sem garantia informada"} {
		product := model.Product{SKU: "MLB1", Warranty: warranty}
		findings := svc.DeriveMeliQuality([]model.Product{product}, nil, nil, time.Now())
		if findings[0].WarrantyCheck != "Sem garantia informada" {
			t.Errorf("warranty %q: check = %s, want Sem garantia informada", warranty, findings[0].WarrantyCheck)
		}
	}
}

func TestDeriveMeliQuality_EnoughImages(t *testing.T) {
	svc := NewQualityService()

	images := make([]model.ProductImage, 6)
	for i := range images {
		images[i] = model.ProductImage{SKU: "MLB1", Resolution: "1200x1200"}
	}
	findings := svc.DeriveMeliQuality([]model.Product{{SKU: "MLB1"}}, images, nil, time.Now())
	if findings[0].ImageCountCheck != model.QualityOK {
		t.Errorf("ImageCountCheck = %s, want OK", findings[0].ImageCountCheck)
	}
}

// ==================== Magalu ====================

func TestDeriveMagaluQuality(t *testing.T) {
	svc := NewQualityService()

	product := model.Product{
		Platform: model.PlatformMagalu,
		Seller:   "loja_b",
		SKU:      "SKU1",
		Title:    "Título razoável",
		Brand:    "",
	}
	// 3 张图：Magalu 要求超过 3 张
	images := []model.ProductImage{
		{SKU: "SKU1", Resolution: "1200x1200"},
		{SKU: "SKU1", Resolution: "1200x1200"},
		{SKU: "SKU1", Resolution: "640x480"},
	}

	findings := svc.DeriveMagaluQuality([]model.Product{product}, images, nil, time.Now())
	f := findings[0]

	if f.TitleCheck != model.QualityOK {
		t.Errorf("TitleCheck = %s, want OK (10~60)", f.TitleCheck)
	}
	if f.ImageCountCheck != "Necessário adicionar mais 0 imagens" {
		t.Errorf("ImageCountCheck = %s", f.ImageCountCheck)
	}
	if f.ResolutionCheck != "1 imagens com qualidade baixa" {
		t.Errorf("ResolutionCheck = %s", f.ResolutionCheck)
	}
	if f.BrandCheck != "Necessário preencher" {
		t.Errorf("BrandCheck = %s", f.BrandCheck)
	}
}

// ==================== Amazon ====================

func TestDeriveAmazonProductQuality(t *testing.T) {
	svc := NewQualityService()

	products := []model.Product{
		{SKU: "ASIN1", MainImageW: 1000, MainImageH: 1000},
		{SKU: "ASIN2", MainImageW: 500, MainImageH: 499},
		{SKU: "ASIN3"}, // 无主图尺寸
	}
	findings := svc.DeriveAmazonProductQuality(products, time.Now())

	if findings[0].MainImageCheck != model.QualityOK {
		t.Errorf("ASIN1 = %s, want OK", findings[0].MainImageCheck)
	}
	if findings[1].MainImageCheck != "Resolução baixa" {
		t.Errorf("ASIN2 = %s, want Resolução baixa", findings[1].MainImageCheck)
	}
	if findings[2].MainImageCheck != "Resolução baixa" {
		t.Errorf("ASIN3 = %s, want Resolução baixa", findings[2].MainImageCheck)
	}
}

func TestDeriveAmazonInventoryQuality(t *testing.T) {
	svc := NewQualityService()

	ten, zero := 10, 0
	snapshots := []model.InventorySnapshot{
		{ASIN: "A1", Fulfillable: &ten, UnfulfillableTotal: 0},
		{ASIN: "A2", Fulfillable: nil, UnfulfillableTotal: 4},
		{ASIN: "A3", Fulfillable: &zero, UnfulfillableTotal: 0},
	}
	findings := svc.DeriveAmazonInventoryQuality(snapshots, time.Now())

	if findings[0].FulfillableCheck != model.QualityOK {
		t.Errorf("A1 fulfillable = %s, want OK", findings[0].FulfillableCheck)
	}
	if findings[0].UnfulfillableCheck != model.QualityOK {
		t.Errorf("A1 unfulfillable = %s, want OK", findings[0].UnfulfillableCheck)
	}
	if findings[1].FulfillableCheck != "Sem estoque" {
		t.Errorf("A2 fulfillable = %s, want Sem estoque", findings[1].FulfillableCheck)
	}
	if findings[1].UnfulfillableCheck != "4 itens inutilizáveis" {
		t.Errorf("A2 unfulfillable = %s", findings[1].UnfulfillableCheck)
	}
	// 显式的零库存是有效数据，不算缺货
	if findings[2].FulfillableCheck != model.QualityOK {
		t.Errorf("A3 fulfillable = %s, want OK", findings[2].FulfillableCheck)
	}
}

// ==================== 过滤 ====================

func TestFilterToExisting(t *testing.T) {
	findings := []model.ProductQuality{
		{SKU: "A"}, {SKU: "B"}, {SKU: "C"},
	}
	kept := FilterToExisting(findings, map[string]bool{"A": true, "C": true})
	if len(kept) != 2 {
		t.Fatalf("len = %d, want 2", len(kept))
	}
	if kept[0].SKU != "A" || kept[1].SKU != "C" {
		t.Errorf("kept = %v", kept)
	}
}
