package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khatapp/khata_backend/internal/core/domain"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/dto"
	"github.com/khatapp/khata_backend/internal/middleware"
)

// shopHandler handles HTTP requests related to shops and their members.
type shopHandler struct {
	shopService portssvc.ShopSvcFacade
}

// newShopHandler creates a new shopHandler.
func newShopHandler(ss portssvc.ShopSvcFacade) *shopHandler {
	return &shopHandler{
		shopService: ss,
	}
}

// registerShopRoutes registers routes related to shops and their members.
// It also registers the SALE, CUSTOMER and STATS routes nested under a
// specific shop.
func registerShopRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newShopHandler(services.Shop)

	// Routes for managing shops themselves
	shopsTopLevel := rg.Group("/shops")
	{
		shopsTopLevel.POST("", h.createShop)
		shopsTopLevel.GET("", h.listUserShops) // List shops the calling user belongs to
	}

	// Routes specific to a single shop (identified by shop_id)
	shopSpecific := rg.Group("/shops/:shop_id")
	{
		shopSpecific.GET("", h.getShop)
		shopSpecific.POST("/activate", h.activateShop)
		shopSpecific.POST("/deactivate", h.deactivateShop)

		// Manage users within a shop
		shopUsers := shopSpecific.Group("/users")
		{
			shopUsers.POST("", h.addUserToShop)
			shopUsers.GET("", h.listShopUsers)
			shopUsers.PUT("/:user_id", h.updateUserShopRole)
			shopUsers.DELETE("/:user_id", h.removeUserFromShop)
		}

		// -- NESTED SALE ROUTES --
		RegisterSaleRoutes(shopSpecific, services.Ledger)

		// -- NESTED CUSTOMER ROUTES --
		registerCustomerRoutes(shopSpecific, services.Customer, services.Ledger)

		// -- NESTED STATS ROUTES --
		registerStatsRoutes(shopSpecific, services.Analytics)
	}
}

// createShop godoc
// @Summary Create a new shop
// @Description Creates a new shop and assigns the creator as admin.
// @Tags shops
// @Accept  json
// @Produce  json
// @Param   shop body dto.CreateShopRequest true "Shop details"
// @Success 201 {object} dto.ShopResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /shops [post]
func (h *shopHandler) createShop(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createShop", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	newShop, err := h.shopService.CreateShop(c.Request.Context(), req.Name, req.Description, req.DefaultCurrencyCode, creatorUserID)
	if err != nil {
		logger.Error("Failed to create shop in service", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("Shop created successfully", slog.String("shop_id", newShop.ShopID))
	c.JSON(http.StatusCreated, dto.ToShopResponse(newShop))
}

// listUserShops godoc
// @Summary List shops for current user
// @Description Retrieves the shops the authenticated user belongs to. Disabled shops are excluded unless includeDisabled is set.
// @Tags shops
// @Produce  json
// @Param includeDisabled query bool false "Include deactivated shops"
// @Success 200 {object} dto.ListShopsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /shops [get]
func (h *shopHandler) listUserShops(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	includeDisabled := c.Query("includeDisabled") == "true"

	shops, err := h.shopService.ListUserShops(c.Request.Context(), userID, includeDisabled)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListShopsResponse(shops))
}

// getShop godoc
// @Summary Get shop details
// @Tags shops
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Success 200 {object} dto.ShopResponse
// @Failure 404 {object} ErrorResponse "Shop not found"
// @Security BearerAuth
// @Router /shops/{shop_id} [get]
func (h *shopHandler) getShop(c *gin.Context) {
	shopID := c.Param("shop_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	// Membership check keeps shop metadata inside the tenant boundary.
	if err := h.shopService.AuthorizeUserAction(c.Request.Context(), userID, shopID, domain.RoleReadOnly); err != nil {
		respondError(c, err)
		return
	}

	shop, err := h.shopService.FindShopByID(c.Request.Context(), shopID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToShopResponse(shop))
}

// activateShop godoc
// @Summary Reactivate a shop
// @Tags shops
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Success 204 "Activated"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /shops/{shop_id}/activate [post]
func (h *shopHandler) activateShop(c *gin.Context) {
	h.setShopActive(c, true)
}

// deactivateShop godoc
// @Summary Deactivate a shop
// @Description Marks the shop inactive. Its data is retained and it can be reactivated later.
// @Tags shops
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Success 204 "Deactivated"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /shops/{shop_id}/deactivate [post]
func (h *shopHandler) deactivateShop(c *gin.Context) {
	h.setShopActive(c, false)
}

func (h *shopHandler) setShopActive(c *gin.Context, active bool) {
	shopID := c.Param("shop_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var err error
	if active {
		err = h.shopService.ActivateShop(c.Request.Context(), shopID, userID)
	} else {
		err = h.shopService.DeactivateShop(c.Request.Context(), shopID, userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// addUserToShop godoc
// @Summary Add a user to a shop
// @Description Adds a user to the shop with the given role. Admins only.
// @Tags shops
// @Accept json
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param membership body dto.AddUserToShopRequest true "User and role"
// @Success 204 "Added"
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /shops/{shop_id}/users [post]
func (h *shopHandler) addUserToShop(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shopID := c.Param("shop_id")

	var req dto.AddUserToShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for addUserToShop", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	addingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.shopService.AddUserToShop(c.Request.Context(), addingUserID, req.UserID, shopID, req.Role); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// listShopUsers godoc
// @Summary List shop members
// @Tags shops
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Success 200 {array} dto.UserShopResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /shops/{shop_id}/users [get]
func (h *shopHandler) listShopUsers(c *gin.Context) {
	shopID := c.Param("shop_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	members, err := h.shopService.ListShopUsers(c.Request.Context(), shopID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.UserShopResponse, len(members))
	for i := range members {
		out[i] = dto.ToUserShopResponse(&members[i])
	}
	c.JSON(http.StatusOK, out)
}

// updateUserShopRole godoc
// @Summary Change a member's role
// @Tags shops
// @Accept json
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param user_id path string true "User ID"
// @Param role body dto.UpdateUserShopRoleRequest true "New role"
// @Success 204 "Updated"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /shops/{shop_id}/users/{user_id} [put]
func (h *shopHandler) updateUserShopRole(c *gin.Context) {
	shopID := c.Param("shop_id")
	targetUserID := c.Param("user_id")

	var req dto.UpdateUserShopRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.shopService.UpdateUserShopRole(c.Request.Context(), requestingUserID, targetUserID, shopID, req.Role); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// removeUserFromShop godoc
// @Summary Remove a member from a shop
// @Description Revokes the user's membership. History recorded by the user is kept.
// @Tags shops
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param user_id path string true "User ID"
// @Success 204 "Removed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /shops/{shop_id}/users/{user_id} [delete]
func (h *shopHandler) removeUserFromShop(c *gin.Context) {
	shopID := c.Param("shop_id")
	targetUserID := c.Param("user_id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.shopService.RemoveUserFromShop(c.Request.Context(), requestingUserID, targetUserID, shopID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
