package menu

import (
	"errors"
	"net/http"

	"menuvo/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	menus  Repository
	stores store.Repository
}

func NewHandler(menus Repository, stores store.Repository) *Handler {
	return &Handler{menus: menus, stores: stores}
}

// --------------------------------------------------
// Public: read a store's current menu
// --------------------------------------------------
func (h *Handler) GetMenu(c *gin.Context) {
	storeID := c.Param("store_id")

	language := c.Query("lang")
	if language == "" {
		lang, err := h.stores.DefaultLanguage(c.Request.Context(), storeID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		language = lang
	}

	menu, err := h.menus.GetMenu(c.Request.Context(), storeID, language)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, menu)
}
