package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/repositories"
	"github.com/yeremiapane/global-bites/utils"
	"gorm.io/datatypes"
)

const searchResultLimit = 20

// DishInput carries create and update fields. Nil means "not provided".
type DishInput struct {
	Name                  *string          `json:"name"`
	Description           *string          `json:"description"`
	Price                 *decimal.Decimal `json:"price"`
	ImageURL              *string          `json:"image_url"`
	Category              *string          `json:"category"`
	Active                *bool            `json:"active"`
	Pairing               *string          `json:"pairing"`
	IngredientSuggestions *[]string        `json:"ingredient_suggestions"`
	Tags                  *[]string        `json:"tags"`
}

type MenuInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

type DishPage struct {
	Items    []models.Dish `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type MenuService struct {
	dishes repositories.DishRepository
	menus  repositories.MenuRepository
	cache  MenuCache
}

func NewMenuService(dishes repositories.DishRepository, menus repositories.MenuRepository, cache MenuCache) *MenuService {
	if cache == nil {
		cache = NoopCache{}
	}
	return &MenuService{dishes: dishes, menus: menus, cache: cache}
}

func validateDishInput(in DishInput, creating bool) error {
	if creating {
		if in.Name == nil {
			return utils.NewInvalidInput("name is required")
		}
		if in.Category == nil {
			return utils.NewInvalidInput("category is required")
		}
		if in.Price == nil {
			return utils.NewInvalidInput("price is required")
		}
	}
	if in.Name != nil {
		if err := utils.ValidateLength("name", *in.Name, 2, 100); err != nil {
			return err
		}
	}
	if in.Category != nil {
		if err := utils.ValidateLength("category", *in.Category, 2, 50); err != nil {
			return err
		}
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
		if err := utils.ValidateLength("description", *in.Description, 10, 500); err != nil {
			return err
		}
	}
	if in.Price != nil {
		if err := utils.ValidatePrice(*in.Price); err != nil {
			return err
		}
	}
	return nil
}

func cleanList(values []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *MenuService) ListPublicDishes(ctx context.Context, search, category string, page utils.Pagination) (*DishPage, error) {
	key := fmt.Sprintf("dishes:%d:%d:%s:%s", page.Page, page.PageSize, strings.ToLower(strings.TrimSpace(search)), strings.ToLower(strings.TrimSpace(category)))

	var cached DishPage
	gen, hit := s.cache.Get(ctx, key, &cached)
	if hit {
		return &cached, nil
	}

	active := true
	result, err := s.ListDishes(ctx, repositories.DishFilter{Active: &active, Category: category, Search: search, ActiveMenusOnly: true}, page)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, gen, result)
	return result, nil
}

func (s *MenuService) ListDishes(ctx context.Context, filter repositories.DishFilter, page utils.Pagination) (*DishPage, error) {
	dishes, total, err := s.dishes.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	if dishes == nil {
		dishes = []models.Dish{}
	}
	return &DishPage{Items: dishes, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// SearchDishes matches active dish names. A blank query returns no results.
func (s *MenuService) SearchDishes(ctx context.Context, query string) ([]models.Dish, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Dish{}, nil
	}
	return s.dishes.SearchByName(ctx, query, searchResultLimit)
}

// GetDish hides inactive dishes when publicOnly is set.
func (s *MenuService) GetDish(ctx context.Context, rawID string, publicOnly bool) (*models.Dish, error) {
	id, err := utils.ParseID(rawID, "dish id")
	if err != nil {
		return nil, err
	}
	dish, err := s.dishes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if publicOnly && !dish.Active {
		return nil, utils.NewNotFound("dish not found")
	}
	return dish, nil
}

func (s *MenuService) CreateDish(ctx context.Context, in DishInput) (*models.Dish, error) {
	if err := validateDishInput(in, true); err != nil {
		return nil, err
	}

	dish := &models.Dish{
		Name:                  strings.TrimSpace(*in.Name),
		Category:              strings.TrimSpace(*in.Category),
		Price:                 in.Price.Round(2),
		Active:                true,
		Tags:                  datatypes.JSONSlice[string]{},
		IngredientSuggestions: datatypes.JSONSlice[string]{},
	}
	if in.Description != nil {
		dish.Description = strings.TrimSpace(*in.Description)
	}
	if in.ImageURL != nil {
		dish.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Pairing != nil {
		dish.Pairing = strings.TrimSpace(*in.Pairing)
	}
	if in.Active != nil {
		dish.Active = *in.Active
	}
	if in.Tags != nil {
		dish.Tags = cleanList(*in.Tags)
	}
	if in.IngredientSuggestions != nil {
		dish.IngredientSuggestions = cleanList(*in.IngredientSuggestions)
	}

	if err := s.dishes.Create(ctx, dish); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	utils.InfoLogger.WithFields(logrus.Fields{"dish_id": dish.ID, "name": dish.Name}).Info("Dish created")
	return dish, nil
}

// UpdateDish applies only the provided fields.
func (s *MenuService) UpdateDish(ctx context.Context, rawID string, in DishInput) (*models.Dish, error) {
	id, err := utils.ParseID(rawID, "dish id")
	if err != nil {
		return nil, err
	}
	if err := validateDishInput(in, false); err != nil {
		return nil, err
	}
	if _, err := s.dishes.FindByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		fields["price"] = in.Price.Round(2)
	}
	if in.ImageURL != nil {
		fields["image_url"] = strings.TrimSpace(*in.ImageURL)
	}
	if in.Category != nil {
		fields["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}
	if in.Pairing != nil {
		fields["pairing"] = strings.TrimSpace(*in.Pairing)
	}
	if in.Tags != nil {
		fields["tags"] = cleanList(*in.Tags)
	}
	if in.IngredientSuggestions != nil {
		fields["ingredient_suggestions"] = cleanList(*in.IngredientSuggestions)
	}

	if err := s.dishes.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return s.dishes.FindByID(ctx, id)
}

// SetDishActive sets visibility. With active nil the current flag is flipped.
func (s *MenuService) SetDishActive(ctx context.Context, rawID string, active *bool) (*models.Dish, error) {
	id, err := utils.ParseID(rawID, "dish id")
	if err != nil {
		return nil, err
	}
	dish, err := s.dishes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := !dish.Active
	if active != nil {
		next = *active
	}
	if err := s.dishes.Update(ctx, id, map[string]interface{}{"active": next}); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	dish.Active = next
	return dish, nil
}

// DeleteDish removes the dish permanently. Past orders keep their line snapshots.
func (s *MenuService) DeleteDish(ctx context.Context, rawID string) error {
	id, err := utils.ParseID(rawID, "dish id")
	if err != nil {
		return err
	}
	if err := s.dishes.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	utils.InfoLogger.WithField("dish_id", id).Info("Dish deleted")
	return nil
}

func validateMenuInput(in MenuInput, creating bool) error {
	if creating && in.Name == nil {
		return utils.NewInvalidInput("name is required")
	}
	if in.Name != nil {
		return utils.ValidateLength("name", *in.Name, 2, 50)
	}
	return nil
}

func (s *MenuService) ListMenus(ctx context.Context, activeOnly bool) ([]models.Menu, error) {
	key := "menus:all"
	var gen int64
	if activeOnly {
		key = "menus:active"
		var cached []models.Menu
		var hit bool
		if gen, hit = s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	menus, err := s.menus.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if menus == nil {
		menus = []models.Menu{}
	}
	if activeOnly {
		s.cache.Set(ctx, key, gen, menus)
	}
	return menus, nil
}

func (s *MenuService) GetMenu(ctx context.Context, rawID string) (*models.Menu, error) {
	id, err := utils.ParseID(rawID, "menu id")
	if err != nil {
		return nil, err
	}
	return s.menus.FindByID(ctx, id)
}

func (s *MenuService) CreateMenu(ctx context.Context, in MenuInput) (*models.Menu, error) {
	if err := validateMenuInput(in, true); err != nil {
		return nil, err
	}
	menu := &models.Menu{Name: strings.TrimSpace(*in.Name), Active: true}
	if in.Description != nil {
		menu.Description = strings.TrimSpace(*in.Description)
	}
	if in.Active != nil {
		menu.Active = *in.Active
	}
	if err := s.menus.Create(ctx, menu); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return menu, nil
}

func (s *MenuService) UpdateMenu(ctx context.Context, rawID string, in MenuInput) (*models.Menu, error) {
	id, err := utils.ParseID(rawID, "menu id")
	if err != nil {
		return nil, err
	}
	if err := validateMenuInput(in, false); err != nil {
		return nil, err
	}
	if _, err := s.menus.FindByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}
	if err := s.menus.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return s.menus.FindByID(ctx, id)
}

// DeleteMenu is a soft delete: the menu is deactivated and keeps its dish links.
func (s *MenuService) DeleteMenu(ctx context.Context, rawID string) error {
	id, err := utils.ParseID(rawID, "menu id")
	if err != nil {
		return err
	}
	if _, err := s.menus.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.menus.Update(ctx, id, map[string]interface{}{"active": false}); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *MenuService) parseMenuDish(ctx context.Context, rawMenuID, rawDishID string) (uuid.UUID, uuid.UUID, error) {
	menuID, err := utils.ParseID(rawMenuID, "menu id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	dishID, err := utils.ParseID(rawDishID, "dish id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if _, err := s.menus.FindByID(ctx, menuID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if _, err := s.dishes.FindByID(ctx, dishID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return menuID, dishID, nil
}

func (s *MenuService) AttachDish(ctx context.Context, rawMenuID, rawDishID string) error {
	menuID, dishID, err := s.parseMenuDish(ctx, rawMenuID, rawDishID)
	if err != nil {
		return err
	}
	if err := s.menus.AttachDish(ctx, menuID, dishID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *MenuService) DetachDish(ctx context.Context, rawMenuID, rawDishID string) error {
	menuID, dishID, err := s.parseMenuDish(ctx, rawMenuID, rawDishID)
	if err != nil {
		return err
	}
	if err := s.menus.DetachDish(ctx, menuID, dishID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// ListMenuDishes returns a menu's dishes. Public callers only see active dishes of
// active menus.
func (s *MenuService) ListMenuDishes(ctx context.Context, rawMenuID string, publicOnly bool) ([]models.Dish, error) {
	menuID, err := utils.ParseID(rawMenuID, "menu id")
	if err != nil {
		return nil, err
	}

	key := "menu-dishes:" + menuID.String()
	var gen int64
	if publicOnly {
		var cached []models.Dish
		var hit bool
		if gen, hit = s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	menu, err := s.menus.FindByID(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if publicOnly && !menu.Active {
		return nil, utils.NewNotFound("menu not found")
	}

	dishes, err := s.menus.ListDishes(ctx, menuID, publicOnly)
	if err != nil {
		return nil, err
	}
	if dishes == nil {
		dishes = []models.Dish{}
	}
	if publicOnly {
		s.cache.Set(ctx, key, gen, dishes)
	}
	return dishes, nil
}
