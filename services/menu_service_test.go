package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/repositories"
	"github.com/yeremiapane/global-bites/testutil"
	"github.com/yeremiapane/global-bites/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type memCache struct {
	entries     map[string][]byte
	generation  int64
	hits        int
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) (int64, bool) {
	raw, ok := c.entries[key]
	if !ok {
		return c.generation, false
	}
	c.hits++
	return c.generation, json.Unmarshal(raw, dest) == nil
}

func (c *memCache) Set(ctx context.Context, key string, generation int64, value interface{}) {
	if generation != c.generation {
		return
	}
	raw, _ := json.Marshal(value)
	c.entries[key] = raw
}

func (c *memCache) Invalidate(ctx context.Context) {
	c.invalidated++
	c.generation++
	c.entries = map[string][]byte{}
}

func newMenuService(t *testing.T, cache MenuCache) (*MenuService, *gorm.DB) {
	db := testutil.NewDB(t)
	return NewMenuService(repositories.NewDishRepository(db), repositories.NewMenuRepository(db), cache), db
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func pricePtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func dishNames(dishes []models.Dish) []string {
	names := make([]string, 0, len(dishes))
	for _, d := range dishes {
		names = append(names, d.Name)
	}
	return names
}

func TestSearchMatchesCaseInsensitiveSubstring(t *testing.T) {
	svc, db := newMenuService(t, nil)
	testutil.CreateDish(t, db, "Spicy Miso Ramen", "Noodles", "12.50", true)
	testutil.CreateDish(t, db, "Caesar Salad", "Salads", "9.00", true)
	testutil.CreateDish(t, db, "Miso Soup", "Starters", "4.00", false)
	ctx := context.Background()

	for _, q := range []string{"miso", "MISO", "  Miso "} {
		page, err := svc.ListPublicDishes(ctx, q, "", utils.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Equal(t, []string{"Spicy Miso Ramen"}, dishNames(page.Items), "query %q", q)
		assert.EqualValues(t, 1, page.Total)
	}

	found, err := svc.SearchDishes(ctx, "miso")
	require.NoError(t, err)
	assert.Equal(t, []string{"Spicy Miso Ramen"}, dishNames(found))

	none, err := svc.SearchDishes(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)

	admin, err := svc.ListDishes(ctx, repositories.DishFilter{Search: "miso"}, utils.NewPagination(1, 10))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Spicy Miso Ramen", "Miso Soup"}, dishNames(admin.Items))
}

func TestListDishesPagination(t *testing.T) {
	svc, db := newMenuService(t, nil)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 20; i++ {
		dish := models.Dish{
			Name:      fmt.Sprintf("Dish %02d", i),
			Category:  "Mains",
			Price:     decimal.NewFromInt(int64(i)),
			Active:    true,
			Tags:      datatypes.JSONSlice[string]{},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&dish).Error)
	}

	page, err := svc.ListPublicDishes(context.Background(), "", "", utils.NewPagination(2, 8))
	require.NoError(t, err)
	assert.EqualValues(t, 20, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 8, page.PageSize)
	// newest first: page 2 holds the 9th..16th newest
	assert.Equal(t, []string{
		"Dish 12", "Dish 11", "Dish 10", "Dish 09",
		"Dish 08", "Dish 07", "Dish 06", "Dish 05",
	}, dishNames(page.Items))

	last, err := svc.ListPublicDishes(context.Background(), "", "", utils.NewPagination(3, 8))
	require.NoError(t, err)
	assert.Len(t, last.Items, 4)

	beyond, err := svc.ListPublicDishes(context.Background(), "", "", utils.NewPagination(9, 8))
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.EqualValues(t, 20, beyond.Total)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	svc, db := newMenuService(t, nil)
	testutil.CreateDish(t, db, "50% Off Dumplings", "Dumplings", "6.00", true)
	testutil.CreateDish(t, db, "500g Brisket", "Grill", "28.00", true)
	testutil.CreateDish(t, db, "Katsu_Don", "Rice", "12.00", true)
	testutil.CreateDish(t, db, "Katsu Curry", "Curry", "13.00", true)
	ctx := context.Background()

	page, err := svc.ListPublicDishes(ctx, "50%", "", utils.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"50% Off Dumplings"}, dishNames(page.Items))

	found, err := svc.SearchDishes(ctx, "katsu_")
	require.NoError(t, err)
	assert.Equal(t, []string{"Katsu_Don"}, dishNames(found))

	found, err = svc.SearchDishes(ctx, "!")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestListPublicDishesHidesInactiveMenus(t *testing.T) {
	svc, db := newMenuService(t, nil)
	ramen := testutil.CreateDish(t, db, "Tonkotsu Ramen", "Noodles", "14.00", true)
	lunch := testutil.CreateMenu(t, db, "Lunch", true)
	winter := testutil.CreateMenu(t, db, "Winter", true)
	ctx := context.Background()

	require.NoError(t, svc.AttachDish(ctx, lunch.ID.String(), ramen.ID.String()))
	require.NoError(t, svc.AttachDish(ctx, winter.ID.String(), ramen.ID.String()))
	require.NoError(t, svc.DeleteMenu(ctx, winter.ID.String()))

	page, err := svc.ListPublicDishes(ctx, "", "", utils.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Len(t, page.Items[0].Menus, 1)
	assert.Equal(t, "Lunch", page.Items[0].Menus[0].Name)

	admin, err := svc.ListDishes(ctx, repositories.DishFilter{}, utils.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, admin.Items, 1)
	assert.Len(t, admin.Items[0].Menus, 2)
}

func TestListPublicDishesFiltersCategory(t *testing.T) {
	svc, db := newMenuService(t, nil)
	testutil.CreateDish(t, db, "Pho", "Noodles", "10.00", true)
	testutil.CreateDish(t, db, "Udon", "noodles", "10.00", true)
	testutil.CreateDish(t, db, "Greek Salad", "Salads", "8.00", true)

	page, err := svc.ListPublicDishes(context.Background(), "", "NOODLES", utils.NewPagination(1, 10))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pho", "Udon"}, dishNames(page.Items))
}

func TestCreateDishValidation(t *testing.T) {
	svc, _ := newMenuService(t, nil)

	tests := []struct {
		name string
		in   DishInput
		kind utils.ErrorKind
	}{
		{"missing name", DishInput{Category: strPtr("Mains"), Price: pricePtr("5")}, utils.KindInvalidInput},
		{"short name", DishInput{Name: strPtr("A"), Category: strPtr("Mains"), Price: pricePtr("5")}, utils.KindInvalidInput},
		{"blank name", DishInput{Name: strPtr("    "), Category: strPtr("Mains"), Price: pricePtr("5")}, utils.KindInvalidInput},
		{"missing category", DishInput{Name: strPtr("Tacos"), Price: pricePtr("5")}, utils.KindInvalidInput},
		{"short description", DishInput{Name: strPtr("Tacos"), Category: strPtr("Mains"), Description: strPtr("too short"), Price: pricePtr("5")}, utils.KindInvalidInput},
		{"missing price", DishInput{Name: strPtr("Tacos"), Category: strPtr("Mains")}, utils.KindInvalidInput},
		{"negative price", DishInput{Name: strPtr("Tacos"), Category: strPtr("Mains"), Price: pricePtr("-0.01")}, utils.KindInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dish, err := svc.CreateDish(context.Background(), tt.in)
			assert.Nil(t, dish)
			assert.Equal(t, tt.kind, utils.KindOf(err))
		})
	}
}

func TestCreateDish(t *testing.T) {
	cache := newMemCache()
	svc, _ := newMenuService(t, cache)
	tags := []string{" spicy ", "", "vegan"}

	dish, err := svc.CreateDish(context.Background(), DishInput{
		Name:        strPtr("  Tofu Katsu Curry "),
		Category:    strPtr("Curry"),
		Description: strPtr("Crispy tofu with Japanese curry sauce"),
		Price:       pricePtr("13.456"),
		Tags:        &tags,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, dish.ID)
	assert.Equal(t, "Tofu Katsu Curry", dish.Name)
	assert.True(t, dish.Active)
	assert.Equal(t, "13.46", dish.Price.StringFixed(2))
	assert.Equal(t, datatypes.JSONSlice[string]{"spicy", "vegan"}, dish.Tags)
	assert.Equal(t, 1, cache.invalidated)

	free, err := svc.CreateDish(context.Background(), DishInput{
		Name: strPtr("Tap Water"), Category: strPtr("Drinks"), Price: pricePtr("0"), Active: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, free.Active)

	stored, err := svc.GetDish(context.Background(), free.ID.String(), false)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestUpdateDishIsPartial(t *testing.T) {
	svc, db := newMenuService(t, nil)
	dish := testutil.CreateDish(t, db, "Shakshuka", "Brunch", "11.00", true)
	ctx := context.Background()

	updated, err := svc.UpdateDish(ctx, dish.ID.String(), DishInput{Price: pricePtr("12.25")})
	require.NoError(t, err)
	assert.Equal(t, "12.25", updated.Price.StringFixed(2))
	assert.Equal(t, "Shakshuka", updated.Name)
	assert.Equal(t, "Brunch", updated.Category)
	assert.True(t, updated.Active)

	_, err = svc.UpdateDish(ctx, dish.ID.String(), DishInput{Name: strPtr("X")})
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))

	_, err = svc.UpdateDish(ctx, "not-a-uuid", DishInput{Name: strPtr("Tagine")})
	assert.Equal(t, utils.KindInvalidIdentifier, utils.KindOf(err))

	_, err = svc.UpdateDish(ctx, uuid.NewString(), DishInput{Name: strPtr("Tagine")})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestSetDishActiveHidesFromPublic(t *testing.T) {
	svc, db := newMenuService(t, newMemCache())
	dish := testutil.CreateDish(t, db, "Jollof Rice", "Rice", "10.00", true)
	ctx := context.Background()

	toggled, err := svc.SetDishActive(ctx, dish.ID.String(), nil)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	page, err := svc.ListPublicDishes(ctx, "", "", utils.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = svc.GetDish(ctx, dish.ID.String(), true)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	hidden, err := svc.GetDish(ctx, dish.ID.String(), false)
	require.NoError(t, err)
	assert.False(t, hidden.Active)

	restored, err := svc.SetDishActive(ctx, dish.ID.String(), boolPtr(true))
	require.NoError(t, err)
	assert.True(t, restored.Active)

	page, err = svc.ListPublicDishes(ctx, "", "", utils.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestDeleteDishKeepsOrderHistory(t *testing.T) {
	svc, db := newMenuService(t, nil)
	orders := NewOrderService(repositories.NewOrderRepository(db), repositories.NewDishRepository(db), nil)
	dish := testutil.CreateDish(t, db, "Paella", "Rice", "18.00", true)
	menu := testutil.CreateMenu(t, db, "Dinner", true)
	ctx := context.Background()

	require.NoError(t, svc.AttachDish(ctx, menu.ID.String(), dish.ID.String()))
	order, err := orders.PlaceOrder(ctx, []CartItem{{DishID: dish.ID.String(), Quantity: 2}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDish(ctx, dish.ID.String()))

	_, err = svc.GetDish(ctx, dish.ID.String(), false)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	assert.Equal(t, utils.KindNotFound, utils.KindOf(svc.DeleteDish(ctx, dish.ID.String())))

	stored, err := orders.GetOrder(ctx, order.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Nil(t, stored.Items[0].DishID)
	assert.Equal(t, "Paella", stored.Items[0].DishName)
	assert.Equal(t, "18.00", stored.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "36.00", stored.TotalPrice.StringFixed(2))

	dishes, err := svc.ListMenuDishes(ctx, menu.ID.String(), false)
	require.NoError(t, err)
	assert.Empty(t, dishes)
}

func TestMenuLifecycle(t *testing.T) {
	svc, db := newMenuService(t, nil)
	ramen := testutil.CreateDish(t, db, "Tonkotsu Ramen", "Noodles", "14.00", true)
	retired := testutil.CreateDish(t, db, "Cold Soba", "Noodles", "11.00", false)
	ctx := context.Background()

	_, err := svc.CreateMenu(ctx, MenuInput{Name: strPtr("L")})
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))

	menu, err := svc.CreateMenu(ctx, MenuInput{Name: strPtr("Lunch"), Description: strPtr("Weekday lunch")})
	require.NoError(t, err)
	assert.True(t, menu.Active)

	require.NoError(t, svc.AttachDish(ctx, menu.ID.String(), ramen.ID.String()))
	require.NoError(t, svc.AttachDish(ctx, menu.ID.String(), ramen.ID.String()), "attaching twice is a no-op")
	require.NoError(t, svc.AttachDish(ctx, menu.ID.String(), retired.ID.String()))

	public, err := svc.ListMenuDishes(ctx, menu.ID.String(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tonkotsu Ramen"}, dishNames(public))

	all, err := svc.ListMenuDishes(ctx, menu.ID.String(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.Equal(t, utils.KindNotFound, utils.KindOf(svc.AttachDish(ctx, menu.ID.String(), uuid.NewString())))
	assert.Equal(t, utils.KindNotFound, utils.KindOf(svc.AttachDish(ctx, uuid.NewString(), ramen.ID.String())))
	assert.Equal(t, utils.KindInvalidIdentifier, utils.KindOf(svc.AttachDish(ctx, "menu", ramen.ID.String())))

	require.NoError(t, svc.DetachDish(ctx, menu.ID.String(), retired.ID.String()))
	all, err = svc.ListMenuDishes(ctx, menu.ID.String(), false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	renamed, err := svc.UpdateMenu(ctx, menu.ID.String(), MenuInput{Name: strPtr("Express Lunch")})
	require.NoError(t, err)
	assert.Equal(t, "Express Lunch", renamed.Name)
	assert.Equal(t, "Weekday lunch", renamed.Description)

	require.NoError(t, svc.DeleteMenu(ctx, menu.ID.String()))

	active, err := svc.ListMenus(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	everything, err := svc.ListMenus(ctx, false)
	require.NoError(t, err)
	require.Len(t, everything, 1)
	assert.False(t, everything[0].Active)

	_, err = svc.ListMenuDishes(ctx, menu.ID.String(), true)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	kept, err := svc.ListMenuDishes(ctx, menu.ID.String(), false)
	require.NoError(t, err)
	assert.Len(t, kept, 1, "soft delete keeps dish links")

	assert.Equal(t, utils.KindNotFound, utils.KindOf(svc.DeleteMenu(ctx, uuid.NewString())))
}

func TestPublicListingsAreCachedUntilMutation(t *testing.T) {
	cache := newMemCache()
	svc, db := newMenuService(t, cache)
	testutil.CreateDish(t, db, "Arepa", "Street Food", "6.00", true)
	ctx := context.Background()

	first, err := svc.ListPublicDishes(ctx, "", "", utils.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Len(t, first.Items, 1)
	assert.Zero(t, cache.hits)

	_, err = svc.ListPublicDishes(ctx, "", "", utils.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	_, err = svc.CreateDish(ctx, DishInput{Name: strPtr("Empanada"), Category: strPtr("Street Food"), Price: pricePtr("4.50")})
	require.NoError(t, err)

	fresh, err := svc.ListPublicDishes(ctx, "", "", utils.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Len(t, fresh.Items, 2)
	assert.Equal(t, 1, cache.hits)

	_, err = svc.ListMenus(ctx, true)
	require.NoError(t, err)
	_, err = svc.ListMenus(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.hits)
}
