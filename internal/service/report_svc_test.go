package service

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"marketsync_v1_202608/internal/model"
	"marketsync_v1_202608/internal/repository"
)

func TestBuildSheet(t *testing.T) {
	headers := []string{"sku", "titulo"}
	rows := [][]interface{}{
		{"MLB1", "Produto 1"},
		{"MLB2", "Produto 2"},
	}

	data, err := buildSheet(headers, rows)
	if err != nil {
		t.Fatalf("buildSheet() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("abrir xlsx: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	got, err := f.GetCellValue(sheet, "A1")
	if err != nil || got != "sku" {
		t.Errorf("A1 = %q (%v), want sku", got, err)
	}
	got, _ = f.GetCellValue(sheet, "B3")
	if got != "Produto 2" {
		t.Errorf("B3 = %q, want Produto 2", got)
	}
}

func TestBuildDailyArchive_Meli(t *testing.T) {
	db := setupServiceTestDB(t)
	store := repository.NewSyncStore(db)
	ctx := context.Background()
	now := time.Now()

	store.UpsertProducts(ctx, []model.Product{{
		Platform: model.PlatformMercadoLivre, Seller: "loja_a", SKU: "MLB1",
		Title: "Produto", Price: decimal.NewFromInt(10), SyncedAt: now,
	}})
	store.UpsertImages(ctx, []model.ProductImage{{
		Platform: model.PlatformMercadoLivre, Seller: "loja_a", SKU: "MLB1",
		ImageID: "p1", URL: "https://img/p1.jpg", SyncedAt: now,
	}})

	svc := NewReportService(repository.NewReportRepo(db))
	data, err := svc.BuildDailyArchive(ctx, model.PlatformMercadoLivre, "loja_a")
	if err != nil {
		t.Fatalf("BuildDailyArchive() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("abrir zip: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["produtos_loja_a.xlsx"] {
		t.Errorf("faltou produtos_loja_a.xlsx, arquivos: %v", names)
	}
	if !names["imagens_loja_a.xlsx"] {
		t.Errorf("faltou imagens_loja_a.xlsx, arquivos: %v", names)
	}
	// 空实体不生成文件
	if names["variacoes_loja_a.xlsx"] {
		t.Error("variações vazias não deveriam gerar arquivo")
	}
}

func TestBuildDailyArchive_EmptyDay(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewReportService(repository.NewReportRepo(db))

	data, err := svc.BuildDailyArchive(context.Background(), model.PlatformMagalu, "loja_vazia")
	if err != nil {
		t.Fatalf("BuildDailyArchive() error = %v", err)
	}
	if len(data) != 0 {
		t.Errorf("len = %d, want 0 (sem dados no dia)", len(data))
	}
}

func TestBuildDailyArchive_UnknownPlatform(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewReportService(repository.NewReportRepo(db))

	if _, err := svc.BuildDailyArchive(context.Background(), "ebay", "loja_a"); err == nil {
		t.Fatal("plataforma desconhecida deveria falhar")
	}
}
