package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/global-bites/repositories"
	"github.com/yeremiapane/global-bites/services"
	"github.com/yeremiapane/global-bites/utils"
)

type DishController struct {
	Menus *services.MenuService
}

func NewDishController(menus *services.MenuService) *DishController {
	return &DishController{Menus: menus}
}

// ListPublicDishes -> active dishes, paged, with ?search= and ?category=
func (dc *DishController) ListPublicDishes(c *gin.Context) {
	page, err := dc.Menus.ListPublicDishes(c.Request.Context(), c.Query("search"), c.Query("category"), utils.PaginationFromQuery(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of dishes", page)
}

func (dc *DishController) SearchDishes(c *gin.Context) {
	dishes, err := dc.Menus.SearchDishes(c.Request.Context(), c.Query("q"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Search results", dishes)
}

func (dc *DishController) GetPublicDish(c *gin.Context) {
	dish, err := dc.Menus.GetDish(c.Request.Context(), c.Param("dish_id"), true)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish details", dish)
}

// ListDishes -> admin listing, inactive dishes included unless ?active= is given
func (dc *DishController) ListDishes(c *gin.Context) {
	active, err := optionalBoolQuery(c, "active")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	filter := repositories.DishFilter{
		Active:   active,
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	page, err := dc.Menus.ListDishes(c.Request.Context(), filter, utils.PaginationFromQuery(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of dishes", page)
}

func (dc *DishController) GetDish(c *gin.Context) {
	dish, err := dc.Menus.GetDish(c.Request.Context(), c.Param("dish_id"), false)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish details", dish)
}

func (dc *DishController) CreateDish(c *gin.Context) {
	var input services.DishInput
	if !bindJSON(c, &input) {
		return
	}

	dish, err := dc.Menus.CreateDish(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Dish created", dish)
}

func (dc *DishController) UpdateDish(c *gin.Context) {
	var input services.DishInput
	if !bindJSON(c, &input) {
		return
	}

	dish, err := dc.Menus.UpdateDish(c.Request.Context(), c.Param("dish_id"), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish updated", dish)
}

// SetDishActive -> body {"active": bool}; an empty body toggles
func (dc *DishController) SetDishActive(c *gin.Context) {
	var body struct {
		Active *bool `json:"active"`
	}
	if c.Request.ContentLength != 0 && !bindJSON(c, &body) {
		return
	}

	dish, err := dc.Menus.SetDishActive(c.Request.Context(), c.Param("dish_id"), body.Active)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	message := "Dish deactivated"
	if dish.Active {
		message = "Dish activated"
	}
	utils.RespondJSON(c, http.StatusOK, message, dish)
}

// DeleteDish -> permanent; order history keeps the dish name and price
func (dc *DishController) DeleteDish(c *gin.Context) {
	if err := dc.Menus.DeleteDish(c.Request.Context(), c.Param("dish_id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish deleted", nil)
}
