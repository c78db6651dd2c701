// Package seed loads the demo catalog on first start. Existing records are never
// overwritten, so it is safe to run on every boot.
package seed

import (
	"context"
	"errors"
	"time"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"

	"go.uber.org/zap"
)

var demoIngredients = []model.Ingredient{
	{ID: "ing_shrimp", Name: "กุ้งสด", Stock: 50, Unit: "กิโลกรัม", MinStock: 10},
	{ID: "ing_noodle", Name: "เส้นผัดไทย", Stock: 20, Unit: "แพ็ค", MinStock: 5},
	{ID: "ing_tamarind", Name: "มะขามเปียก", Stock: 15, Unit: "กิโลกรัม", MinStock: 3},
	{ID: "ing_palm_sugar", Name: "น้ำตาลปี๊บ", Stock: 8, Unit: "กิโลกรัม", MinStock: 2},
	{ID: "ing_fishsauce", Name: "น้ำปลา", Stock: 25, Unit: "ขวด", MinStock: 5},
}

var demoMenu = []model.MenuItem{
	{ID: "menu_padthai", Name: "ผัดไทยกุ้งสด", Category: model.CategoryMain, Price: 120,
		Description: "เส้นเหนียวนุ่ม ซอสเข้มข้น พร้อมกุ้งสดตัวโต",
		Image:       "https://images.unsplash.com/photo-1604908176997-4319c03f2cfb?w=800",
		IngredientsUsage: map[string]float64{
			"ing_shrimp": 0.12, "ing_noodle": 0.18, "ing_tamarind": 0.03, "ing_fishsauce": 0.02, "ing_palm_sugar": 0.02,
		}},
	{ID: "menu_tomyum", Name: "ต้มยำกุ้ง", Category: model.CategoryMain, Price: 150,
		Description:      "ต้มยำกุ้งรสจัดจ้าน หอมสมุนไพร",
		Image:            "https://images.unsplash.com/photo-1569562211093-4ed0d0758f12?w=800",
		IngredientsUsage: map[string]float64{"ing_shrimp": 0.15}},
	{ID: "menu_somtam", Name: "ส้มตำไทย", Category: model.CategoryAppetizer, Price: 80,
		Description: "ส้มตำไทยรสชาติดั้งเดิม เผ็ดหวานกลมกล่อม",
		Image:       "https://images.unsplash.com/photo-1540189549336-e6e99c3679fe?w=800"},
	{ID: "menu_friedrice", Name: "ข้าวผัดกุ้ง", Category: model.CategoryMain, Price: 100,
		Description:      "ข้าวผัดหอมกระทะ กุ้งเด้ง ใส่ไข่ดาว",
		Image:            "https://images.unsplash.com/photo-1603133872878-684f208fb84b?w=800",
		IngredientsUsage: map[string]float64{"ing_shrimp": 0.12}},
	{ID: "menu_mango", Name: "ข้าวเหนียวมะม่วง", Category: model.CategoryDessert, Price: 65,
		Description: "มะม่วงสุกหวาน ข้าวเหนียวมันกะทิ",
		Image:       "https://images.unsplash.com/photo-1551024506-0bccd828d307?w=800"},
	{ID: "menu_thaitea", Name: "ชาไทยเย็น", Category: model.CategoryBeverage, Price: 40,
		Description: "ชาไทยเข้ม หวานมัน เย็นชื่นใจ",
		Image:       "https://images.unsplash.com/photo-1571934811356-5cc061b6821f?w=800"},
	{ID: "menu_krapao_pork", Name: "กะเพราหมูกรอบ", Category: model.CategoryMain, Price: 95,
		Description: "เผ็ดหอมกะเพรา หมูกรอบชิ้นโต",
		Image:       "https://images.unsplash.com/photo-1544025162-d76694265947?w=800"},
	{ID: "menu_green_curry", Name: "แกงเขียวหวานไก่", Category: model.CategoryMain, Price: 120,
		Description: "เข้มข้นหอมใบโหระพา เสิร์ฟพร้อมข้าวสวย",
		Image:       "https://images.unsplash.com/photo-1551892374-ecf8754cf8f2?w=800"},
	{ID: "menu_massaman", Name: "แกงมัสมั่นเนื้อ", Category: model.CategoryMain, Price: 180,
		Description: "มันฝรั่ง ถั่วลิสง ซอสเข้มข้น",
		Image:       "https://images.unsplash.com/photo-1617191519400-8cc6f0907561?w=800"},
	{ID: "menu_moo_satay", Name: "หมูสะเต๊ะ", Category: model.CategoryAppetizer, Price: 85,
		Description: "หมูนุ่มไม้โต น้ำจิ้มถั่วเข้มข้น",
		Image:       "https://images.unsplash.com/photo-1553621042-f6e147245754?w=800"},
	{ID: "menu_bua_loi", Name: "บัวลอย", Category: model.CategoryDessert, Price: 45,
		Description: "แป้งหนึบหนับ น้ำกะทิหอม",
		Image:       "https://images.unsplash.com/photo-1504754524776-8f4f37790ca0?w=800"},
	{ID: "menu_milk_tea", Name: "ชานม", Category: model.CategoryBeverage, Price: 45,
		Description: "หอมชา นมละมุน",
		Image:       "https://images.unsplash.com/photo-1517705008128-361805f42e86?w=800"},
}

var demoSets = []model.FoodSet{
	{ID: "set_lunch", Name: "Lunch Set", Items: []model.SetItem{
		{MenuItemID: "menu_padthai", Quantity: 1},
		{MenuItemID: "menu_thaitea", Quantity: 1},
	}},
}

var demoVouchers = []model.Voucher{
	{Code: "WELCOME10", Type: model.VoucherPercent, Value: 10, Min: 100, Active: true},
}

// Result counts what a Demo call inserted.
type Result struct {
	Ingredients int
	MenuItems   int
	Sets        int
	Vouchers    int
}

func (r Result) Empty() bool {
	return r.Ingredients+r.MenuItems+r.Sets+r.Vouchers == 0
}

// Demo inserts the demo ingredients, menu, sets and vouchers whose ids are missing.
func Demo(ctx context.Context, st store.Store, logger *zap.Logger, now time.Time) (Result, error) {
	var res Result
	err := st.InTx(ctx, func(r store.Repositories) error {
		for _, ing := range demoIngredients {
			if _, err := r.Ingredients().Get(ctx, ing.ID); err == nil {
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			ing := ing
			if err := r.Ingredients().Save(ctx, &ing); err != nil {
				return err
			}
			res.Ingredients++
		}

		for i, item := range demoMenu {
			if _, err := r.Menu().Get(ctx, item.ID); err == nil {
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			item := item
			item.Available = true
			// Spread creation times so "newest" listings have a stable order.
			item.CreatedAt = now.Add(-time.Duration(i) * time.Minute)
			item.UpdatedAt = item.CreatedAt
			if err := r.Menu().Save(ctx, &item); err != nil {
				return err
			}
			res.MenuItems++
		}

		for _, set := range demoSets {
			if _, err := r.Sets().Get(ctx, set.ID); err == nil {
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			set := set
			set.Items = append([]model.SetItem(nil), set.Items...)
			set.CreatedAt, set.UpdatedAt = now, now
			if err := r.Sets().Save(ctx, &set); err != nil {
				return err
			}
			res.Sets++
		}

		for _, v := range demoVouchers {
			if _, err := r.Vouchers().Get(ctx, v.Code); err == nil {
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			v.CreatedAt = now
			if err := r.Vouchers().Create(ctx, v); err != nil {
				return err
			}
			res.Vouchers++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if logger != nil && !res.Empty() {
		logger.Info("demo data seeded",
			zap.Int("ingredients", res.Ingredients),
			zap.Int("menuItems", res.MenuItems),
			zap.Int("sets", res.Sets),
			zap.Int("vouchers", res.Vouchers))
	}
	return res, nil
}
