package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"marketsync_v1_202608/internal/model"
	"marketsync_v1_202608/internal/repository"
)

// ==================== 日报导出 ====================

// ReportService 导出当天同步数据为 xlsx 打包的 zip
// 每个实体一个 xlsx，空实体不生成文件
type ReportService struct {
	repo repository.ReportRepo
}

func NewReportService(repo repository.ReportRepo) *ReportService {
	return &ReportService{repo: repo}
}

// buildSheet 用表头和行数据生成一个单 Sheet 的 xlsx
func buildSheet(headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ==================== 实体导出行 ====================

func productRows(products []model.Product) ([]string, [][]interface{}) {
	headers := []string{
		"sku", "titulo", "descricao", "marca", "status", "health",
		"categoria", "preco", "estoque", "qtd_inicial", "qtd_vendida",
		"variacoes", "imagens", "gtin", "permalink", "garantia",
		"asin", "tipo_produto", "condicao", "data_criacao", "data_atualizacao",
	}
	rows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		rows = append(rows, []interface{}{
			p.SKU, p.Title, p.Description, p.Brand, p.Status, p.Health,
			p.CategoryName, p.Price.String(), p.StockQuantity, p.InitialQty, p.SoldQty,
			p.VariationCount, p.ImageCount, p.GTIN, p.Permalink, p.Warranty,
			p.ASIN, p.ProductType, p.ConditionType, p.CreatedDate, p.UpdatedDate,
		})
	}
	return headers, rows
}

func imageRows(images []model.ProductImage) ([]string, [][]interface{}) {
	headers := []string{"sku", "id_imagem", "url", "resolucao"}
	rows := make([][]interface{}, 0, len(images))
	for _, img := range images {
		rows = append(rows, []interface{}{img.SKU, img.ImageID, img.URL, img.Resolution})
	}
	return headers, rows
}

func attributeRows(attrs []model.ProductAttribute) ([]string, [][]interface{}) {
	headers := []string{"sku", "atributo", "valor"}
	rows := make([][]interface{}, 0, len(attrs))
	for _, a := range attrs {
		rows = append(rows, []interface{}{a.SKU, a.Name, a.Value})
	}
	return headers, rows
}

func variationRows(variations []model.ProductVariation) ([]string, [][]interface{}) {
	headers := []string{"sku", "id_variacao", "atributo", "valor", "preco"}
	rows := make([][]interface{}, 0, len(variations))
	for _, v := range variations {
		rows = append(rows, []interface{}{v.SKU, v.VariationID, v.AttributeName, v.AttributeValue, v.Price.String()})
	}
	return headers, rows
}

func orderRows(orders []model.Order) ([]string, [][]interface{}) {
	headers := []string{
		"id_pedido", "status", "status_pagamento", "metodo_pagamento",
		"data_compra", "data_aprovacao", "total", "moeda",
		"canal_venda", "canal_fulfillment", "itens_enviados", "itens_nao_enviados",
		"prime", "pedido_empresarial", "municipio_comprador", "estado_entrega", "cidade_entrega",
	}
	rows := make([][]interface{}, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []interface{}{
			o.OrderID, o.Status, o.PaymentStatus, o.PaymentMethod,
			o.PurchaseDate, o.ApprovedDate, o.TotalAmount, o.Currency,
			o.SalesChannel, o.FulfillmentChannel, o.ItemsShipped, o.ItemsUnshipped,
			o.IsPrime, o.IsBusinessOrder, o.BuyerCity, o.ShippingState, o.ShippingCity,
		})
	}
	return headers, rows
}

// nullableInt NULL 列导出为空单元格
func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func inventoryRows(snapshots []model.InventorySnapshot) ([]string, [][]interface{}) {
	headers := []string{
		"asin", "fnsku", "condicao", "nome_produto",
		"disponivel", "recebendo", "reservado_total", "em_pesquisa",
		"inutilizavel_total", "quantidade_total", "ultima_atualizacao",
	}
	rows := make([][]interface{}, 0, len(snapshots))
	for _, snap := range snapshots {
		rows = append(rows, []interface{}{
			snap.ASIN, snap.FNSKU, snap.Condition, snap.ProductName,
			nullableInt(snap.Fulfillable), snap.InboundReceiving, snap.ReservedTotal, snap.ResearchingTotal,
			snap.UnfulfillableTotal, snap.TotalQuantity, snap.LastUpdated,
		})
	}
	return headers, rows
}

func revenueRows(periods []model.RevenuePeriod) ([]string, [][]interface{}) {
	headers := []string{
		"periodo_inicio", "periodo_fim", "unidades_vendidas", "itens_vendidos",
		"pedidos", "preco_medio_unitario", "moeda_unitario", "total_vendas", "moeda_vendas",
	}
	rows := make([][]interface{}, 0, len(periods))
	for _, p := range periods {
		rows = append(rows, []interface{}{
			p.PeriodStart, p.PeriodEnd, p.UnitsSold, p.OrderItems,
			p.OrdersCount, p.AvgUnitPrice.String(), p.AvgUnitCurrency, p.TotalSales.String(), p.TotalSalesCurrency,
		})
	}
	return headers, rows
}

func productQualityRows(findings []model.ProductQuality) ([]string, [][]interface{}) {
	headers := []string{
		"sku", "produto", "status", "titulo", "qtd_imagem", "resolucao_imagem",
		"descricao", "marca", "garantia", "atributos", "imagem_principal",
	}
	rows := make([][]interface{}, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []interface{}{
			f.SKU, f.ProductTitle, f.Status, f.TitleCheck, f.ImageCountCheck, f.ResolutionCheck,
			f.DescriptionCheck, f.BrandCheck, f.WarrantyCheck, f.AttributesCheck, f.MainImageCheck,
		})
	}
	return headers, rows
}

func inventoryQualityRows(findings []model.InventoryQuality) ([]string, [][]interface{}) {
	headers := []string{"asin", "disponivel_vendavel", "inutilizavel_total"}
	rows := make([][]interface{}, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []interface{}{f.ASIN, f.FulfillableCheck, f.UnfulfillableCheck})
	}
	return headers, rows
}

// ==================== ZIP 打包 ====================

type reportEntry struct {
	filename string
	headers  []string
	rows     [][]interface{}
}

// BuildDailyArchive 生成某卖家当天的全部报表 zip
// 文件集合按平台不同：只有 Amazon 有库存和营收，只有 ML 有变体
func (s *ReportService) BuildDailyArchive(ctx context.Context, platform, seller string) ([]byte, error) {
	var entries []reportEntry

	addEntry := func(filename string, headers []string, rows [][]interface{}) {
		if len(rows) > 0 {
			entries = append(entries, reportEntry{filename: filename, headers: headers, rows: rows})
		}
	}

	products, err := s.repo.TodayProducts(ctx, platform, seller)
	if err != nil {
		return nil, fmt.Errorf("leitura de produtos falhou: %w", err)
	}
	headers, rows := productRows(products)
	addEntry(fmt.Sprintf("produtos_%s.xlsx", seller), headers, rows)

	switch platform {
	case model.PlatformMercadoLivre:
		images, err := s.repo.TodayImages(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = imageRows(images)
		addEntry(fmt.Sprintf("imagens_%s.xlsx", seller), headers, rows)

		attrs, err := s.repo.TodayAttributes(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = attributeRows(attrs)
		addEntry(fmt.Sprintf("atributos_%s.xlsx", seller), headers, rows)

		variations, err := s.repo.TodayVariations(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = variationRows(variations)
		addEntry(fmt.Sprintf("variacoes_%s.xlsx", seller), headers, rows)

		findings, err := s.repo.TodayProductQuality(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = productQualityRows(findings)
		addEntry(fmt.Sprintf("erros_gerais_%s.xlsx", seller), headers, rows)

	case model.PlatformAmazon:
		orders, err := s.repo.TodayOrders(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = orderRows(orders)
		addEntry("pedidos.xlsx", headers, rows)

		inventory, err := s.repo.TodayInventory(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = inventoryRows(inventory)
		addEntry("estoque_FBA.xlsx", headers, rows)

		revenue, err := s.repo.TodayRevenue(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = revenueRows(revenue)
		addEntry("faturamento.xlsx", headers, rows)

		findings, err := s.repo.TodayProductQuality(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = productQualityRows(findings)
		addEntry("erros_qualidade_produtos.xlsx", headers, rows)

		invFindings, err := s.repo.TodayInventoryQuality(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = inventoryQualityRows(invFindings)
		addEntry("erros_qualidade_estoque_FBA.xlsx", headers, rows)

	case model.PlatformMagalu:
		images, err := s.repo.TodayImages(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = imageRows(images)
		addEntry(fmt.Sprintf("imagens_%s.xlsx", seller), headers, rows)

		attrs, err := s.repo.TodayAttributes(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = attributeRows(attrs)
		addEntry(fmt.Sprintf("atributos_%s.xlsx", seller), headers, rows)

		orders, err := s.repo.TodayOrders(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = orderRows(orders)
		addEntry(fmt.Sprintf("pedidos_%s.xlsx", seller), headers, rows)

		findings, err := s.repo.TodayProductQuality(ctx, platform, seller)
		if err != nil {
			return nil, err
		}
		headers, rows = productQualityRows(findings)
		addEntry(fmt.Sprintf("erros_gerais_%s.xlsx", seller), headers, rows)

	default:
		return nil, fmt.Errorf("plataforma desconhecida: %s", platform)
	}

	if len(entries) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		data, err := buildSheet(entry.headers, entry.rows)
		if err != nil {
			return nil, fmt.Errorf("geração de %s falhou: %w", entry.filename, err)
		}
		w, err := zw.Create(entry.filename)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
