package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/global-bites/services"
	"github.com/yeremiapane/global-bites/utils"
)

type MenuController struct {
	Menus *services.MenuService
}

func NewMenuController(menus *services.MenuService) *MenuController {
	return &MenuController{Menus: menus}
}

func (mc *MenuController) ListPublicMenus(c *gin.Context) {
	menus, err := mc.Menus.ListMenus(c.Request.Context(), true)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

func (mc *MenuController) ListPublicMenuDishes(c *gin.Context) {
	dishes, err := mc.Menus.ListMenuDishes(c.Request.Context(), c.Param("menu_id"), true)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu dishes", dishes)
}

// ListMenus -> admin listing; ?active=true hides deleted menus
func (mc *MenuController) ListMenus(c *gin.Context) {
	active, err := optionalBoolQuery(c, "active")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	menus, err := mc.Menus.ListMenus(c.Request.Context(), active != nil && *active)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

func (mc *MenuController) GetMenu(c *gin.Context) {
	menu, err := mc.Menus.GetMenu(c.Request.Context(), c.Param("menu_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu details", menu)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var input services.MenuInput
	if !bindJSON(c, &input) {
		return
	}
	menu, err := mc.Menus.CreateMenu(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	var input services.MenuInput
	if !bindJSON(c, &input) {
		return
	}
	menu, err := mc.Menus.UpdateMenu(c.Request.Context(), c.Param("menu_id"), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", menu)
}

// DeleteMenu -> soft delete, the menu is only deactivated
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	if err := mc.Menus.DeleteMenu(c.Request.Context(), c.Param("menu_id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deactivated", nil)
}

func (mc *MenuController) ListMenuDishes(c *gin.Context) {
	dishes, err := mc.Menus.ListMenuDishes(c.Request.Context(), c.Param("menu_id"), false)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu dishes", dishes)
}

func (mc *MenuController) AttachDish(c *gin.Context) {
	if err := mc.Menus.AttachDish(c.Request.Context(), c.Param("menu_id"), c.Param("dish_id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish added to menu", nil)
}

func (mc *MenuController) DetachDish(c *gin.Context) {
	if err := mc.Menus.DetachDish(c.Request.Context(), c.Param("menu_id"), c.Param("dish_id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish removed from menu", nil)
}
