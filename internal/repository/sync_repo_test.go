package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketsync_v1_202608/internal/model"
)

// ==================== 测试辅助 ====================

func setupSyncTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.Product{}, &model.ProductImage{}, &model.ProductAttribute{}, &model.ProductVariation{},
		&model.Order{}, &model.InventorySnapshot{}, &model.RevenuePeriod{},
		&model.ProductQuality{}, &model.InventoryQuality{},
		&model.SyncRun{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func testProduct(seller, sku, title string) model.Product {
	return model.Product{
		Platform: model.PlatformMercadoLivre,
		Seller:   seller,
		SKU:      sku,
		Title:    title,
		Price:    decimal.NewFromFloat(99.90),
		SyncedAt: time.Now(),
	}
}

// ==================== 合并插入 ====================

func TestSyncStore_UpsertProducts_Idempotent(t *testing.T) {
	db := setupSyncTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	rows := []model.Product{
		testProduct("loja_a", "MLB1", "Produto 1"),
		testProduct("loja_a", "MLB2", "Produto 2"),
	}

	if failed := store.UpsertProducts(ctx, rows); failed != 0 {
		t.Fatalf("failed batches = %d, want 0", failed)
	}
	// 第二次写入同样的自然键不应产生新行
	if failed := store.UpsertProducts(ctx, rows); failed != 0 {
		t.Fatalf("failed batches = %d, want 0", failed)
	}

	var count int64
	db.Model(&model.Product{}).Count(&count)
	if count != 2 {
		t.Errorf("rows = %d, want 2", count)
	}
}

func TestSyncStore_UpsertProducts_UpdatesMutableColumns(t *testing.T) {
	db := setupSyncTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	store.UpsertProducts(ctx, []model.Product{testProduct("loja_a", "MLB1", "Título antigo")})
	store.UpsertProducts(ctx, []model.Product{testProduct("loja_a", "MLB1", "Título novo")})

	var found model.Product
	if err := db.Where("sku = ?", "MLB1").First(&found).Error; err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if found.Title != "Título novo" {
		t.Errorf("title = %s, want Título novo", found.Title)
	}
}

func TestSyncStore_UpsertProducts_LastWinsInBatch(t *testing.T) {
	// 同一批里重复的自然键：后出现的值覆盖先出现的
	db := setupSyncTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	rows := []model.Product{
		testProduct("loja_a", "MLB1", "primeiro"),
		testProduct("loja_a", "MLB1", "segundo"),
	}
	if failed := store.UpsertProducts(ctx, rows); failed != 0 {
		t.Fatalf("failed batches = %d, want 0", failed)
	}

	var count int64
	db.Model(&model.Product{}).Count(&count)
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}

	var found model.Product
	db.Where("sku = ?", "MLB1").First(&found)
	if found.Title != "segundo" {
		t.Errorf("title = %s, want segundo", found.Title)
	}
}

func TestSyncStore_UpsertAttributes_ValueOverwrite(t *testing.T) {
	db := setupSyncTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	attr := model.ProductAttribute{
		Platform: model.PlatformMagalu,
		Seller:   "loja_b",
		SKU:      "SKU1",
		Name:     "Cor",
		Value:    "Azul",
		SyncedAt: time.Now(),
	}
	store.UpsertAttributes(ctx, []model.ProductAttribute{attr})

	attr.Value = "Vermelho"
	store.UpsertAttributes(ctx, []model.ProductAttribute{attr})

	var found model.ProductAttribute
	db.Where("sku = ? AND name = ?", "SKU1", "Cor").First(&found)
	if found.Value != "Vermelho" {
		t.Errorf("value = %s, want Vermelho", found.Value)
	}

	var count int64
	db.Model(&model.ProductAttribute{}).Count(&count)
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestSyncStore_UpsertOrders_SellerScopedKey(t *testing.T) {
	// 不同卖家出现同一个 order_id：两行并存，互不覆盖
	db := setupSyncTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	orders := []model.Order{
		{Platform: model.PlatformAmazon, Seller: "loja_a", OrderID: "111-222", Status: "Enviado", SyncedAt: time.Now()},
		{Platform: model.PlatformAmazon, Seller: "loja_b", OrderID: "111-222", Status: "Pendente", SyncedAt: time.Now()},
	}
	if failed := store.UpsertOrders(ctx, orders); failed != 0 {
		t.Fatalf("failed batches = %d, want 0", failed)
	}

	var count int64
	db.Model(&model.Order{}).Count(&count)
	if count != 2 {
		t.Errorf("rows = %d, want 2", count)
	}
}

// ==================== 快照替换 ====================

func TestSyncStore_PurgeSeller_ScopedDelete(t *testing.T) {
	db := setupSyncTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	store.UpsertProducts(ctx, []model.Product{
		testProduct("loja_a", "MLB1", "A1"),
		testProduct("loja_b", "MLB2", "B1"),
	})
	// 另一个平台同名卖家的数据也不能被误删
	other := testProduct("loja_a", "SKU9", "Outro")
	other.Platform = model.PlatformMagalu
	store.UpsertProducts(ctx, []model.Product{other})

	err := store.PurgeSeller(ctx, model.PlatformMercadoLivre, "loja_a", &model.Product{})
	if err != nil {
		t.Fatalf("PurgeSeller() error = %v", err)
	}

	var count int64
	db.Model(&model.Product{}).Count(&count)
	if count != 2 {
		t.Errorf("rows = %d, want 2 (只清除 mercadolivre/loja_a)", count)
	}

	var gone int64
	db.Model(&model.Product{}).
		Where("platform = ? AND seller = ?", model.PlatformMercadoLivre, "loja_a").
		Count(&gone)
	if gone != 0 {
		t.Errorf("loja_a rows = %d, want 0", gone)
	}
}

func TestSyncStore_PurgeSeller_MultipleEntities(t *testing.T) {
	db := setupSyncTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	now := time.Now()
	store.UpsertProducts(ctx, []model.Product{testProduct("loja_a", "MLB1", "A1")})
	store.UpsertImages(ctx, []model.ProductImage{
		{Platform: model.PlatformMercadoLivre, Seller: "loja_a", SKU: "MLB1", ImageID: "img1", SyncedAt: now},
	})
	store.UpsertProductQuality(ctx, []model.ProductQuality{
		{Platform: model.PlatformMercadoLivre, Seller: "loja_a", SKU: "MLB1", Status: "verificar", SyncedAt: now},
	})

	err := store.PurgeSeller(ctx, model.PlatformMercadoLivre, "loja_a",
		&model.ProductQuality{}, &model.ProductImage{}, &model.Product{})
	if err != nil {
		t.Fatalf("PurgeSeller() error = %v", err)
	}

	for _, entity := range []interface{}{&model.Product{}, &model.ProductImage{}, &model.ProductQuality{}} {
		var count int64
		db.Model(entity).Count(&count)
		if count != 0 {
			t.Errorf("%T rows = %d, want 0", entity, count)
		}
	}
}

// ==================== 查询 ====================

func TestSyncStore_ListProductSKUs(t *testing.T) {
	db := setupSyncTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	store.UpsertProducts(ctx, []model.Product{
		testProduct("loja_a", "MLB1", "A1"),
		testProduct("loja_a", "MLB2", "A2"),
		testProduct("loja_b", "MLB3", "B1"),
	})

	skus, err := store.ListProductSKUs(ctx, model.PlatformMercadoLivre, "loja_a")
	if err != nil {
		t.Fatalf("ListProductSKUs() error = %v", err)
	}
	if len(skus) != 2 {
		t.Errorf("len = %d, want 2", len(skus))
	}
	if !skus["MLB1"] || !skus["MLB2"] {
		t.Errorf("skus = %v, want MLB1 e MLB2", skus)
	}
	if skus["MLB3"] {
		t.Error("MLB3 pertence a outro vendedor")
	}
}

// ==================== 去重辅助 ====================

func TestDedupeLast(t *testing.T) {
	type row struct {
		key string
		val int
	}
	rows := []row{
		{"a", 1}, {"b", 2}, {"a", 3}, {"c", 4}, {"b", 5},
	}

	out := dedupeLast(rows, func(r row) string { return r.key })
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	// 顺序按首次出现，内容按最后一次出现
	want := []row{{"a", 3}, {"b", 5}, {"c", 4}}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("out[%d] = %v, want %v", i, out[i], w)
		}
	}
}

func TestDedupeLast_Empty(t *testing.T) {
	out := dedupeLast(nil, func(s string) string { return s })
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}
