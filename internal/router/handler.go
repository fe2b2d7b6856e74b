package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"julianmorley.ca/con-plar/storefront/internal/account"
	"julianmorley.ca/con-plar/storefront/internal/cart"
	"julianmorley.ca/con-plar/storefront/internal/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Catalog  *catalog.Service
	Cart     *cart.Service
	Accounts *account.Service
	AI       *ai.Client
	Store    Pinger
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, global.ErrValidation),
		errors.Is(kind, global.ErrDuplicate),
		errors.Is(kind, global.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(kind, global.ErrNotFound),
		errors.Is(kind, global.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes client errors with their own message. Anything else
// is logged and answered with fallback only.
func respondError(c *gin.Context, err error, fallback string) {
	var appErr *global.Error
	if errors.As(err, &appErr) {
		c.JSON(statusFor(appErr.Kind), global.ErrorResponse(appErr.Message, appErr.Fields))
		return
	}

	log.Error().Err(err).Str("requestId", requestID(c)).Str("route", c.FullPath()).Msg(fallback)
	c.JSON(http.StatusInternalServerError, global.ErrorResponse(fallback, nil))
}

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

func (h *Handler) GetAllItems(c *gin.Context) {
	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	items, err := h.Catalog.ListItems(ctx)
	if err != nil {
		respondError(c, err, "Failed to fetch items")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(items))
}

func (h *Handler) SearchItems(c *gin.Context) {
	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	items, err := h.Catalog.SearchItems(ctx, c.Query("name"))
	if err != nil {
		respondError(c, err, "Failed to search items")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(items))
}

func (h *Handler) AddDummyItems(c *gin.Context) {
	var items []models.Item
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Send an array of items", []global.ValidationError{
			{Field: "body", Message: "Request body must be a JSON array of items", Code: "json_parse_error"},
		}))
		return
	}

	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	inserted, err := h.Catalog.InsertItems(ctx, items)
	if err != nil {
		respondError(c, err, "Failed to insert items")
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Items added successfully", inserted))
}

func (h *Handler) DeleteItem(c *gin.Context) {
	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	removed, err := h.Catalog.RemoveItem(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete item")
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Item deleted", removed))
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "body", Message: "Request body must be a JSON object", Code: "json_parse_error"},
		}))
		return
	}

	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	entry, err := h.Cart.AddToCart(ctx, req.UserID, req.ItemID)
	if err != nil {
		respondError(c, err, "Failed to add item to cart")
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Item added to cart", entry))
}

func (h *Handler) GetCart(c *gin.Context) {
	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	items, err := h.Cart.GetCart(ctx, c.Param("userId"))
	if err != nil {
		respondError(c, err, "Failed to fetch cart items")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(items))
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	entry, err := h.Cart.RemoveFromCart(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Item removed from cart", entry))
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Enter email and password", nil))
		return
	}

	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	res, err := h.Accounts.Login(ctx, req)
	if err != nil {
		respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Logged in successfully", res))
}

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Fill all fields", nil))
		return
	}

	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	res, err := h.Accounts.Register(ctx, req)
	if err != nil {
		respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("User registered successfully", res))
}

func (h *Handler) GetTopCarted(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	ctx, cancel := global.WithDefaultTimeout(c.Request.Context())
	defer cancel()

	counts, err := h.Cart.TopCarted(ctx, limit)
	if err != nil {
		respondError(c, err, "Failed to fetch cart analytics")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(counts))
}

func (h *Handler) GenerateAICartReport(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, err := h.cartDemandRows(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to fetch cart analytics")
		return
	}

	c.JSON(http.StatusOK, h.AI.GenerateCartDemandReport(c.Request.Context(), rows))
}

// cartDemandRows gathers the report input under the store timeout; the AI
// call that follows runs on the request context alone.
func (h *Handler) cartDemandRows(ctx context.Context, limit int) ([]ai.CartDemandRow, error) {
	ctx, cancel := global.WithDefaultTimeout(ctx)
	defer cancel()

	counts, err := h.Cart.TopCarted(ctx, limit)
	if err != nil {
		return nil, err
	}

	rows := make([]ai.CartDemandRow, 0, len(counts))
	for _, cc := range counts {
		row := ai.CartDemandRow{ItemID: cc.ItemID, Carts: cc.Count}
		item, err := h.Catalog.GetItem(ctx, cc.ItemID)
		switch {
		case err == nil:
			row.Title, row.Price, row.Currency = item.Title, item.EffectivePrice(), item.Currency
			row.Positive, row.Negative = item.ReviewSentiment()
		case !errors.Is(err, global.ErrNotFound):
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
