package web

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"nakula/pkg/core"
	"nakula/pkg/exchange"
	"nakula/pkg/order"
)

type assetView struct {
	Asset         string
	WalletBalance string
	UnrealizedPnL string
}

type accountView struct {
	WalletBalance    string
	MarginBalance    string
	AvailableBalance string
	UnrealizedPnL    string
	Assets           []assetView
}

type orderView struct {
	ID          string
	Symbol      string
	Side        string
	Type        string
	Price       string
	Quantity    string
	Filled      string
	Status      string
	TimeInForce string
	CreatedAt   string
}

type dashboardView struct {
	Sandbox      bool
	Message      string
	Error        string
	Account      *accountView
	AccountError string
	Orders       []orderView
	OrdersError  string
}

func (s *Server) handleDashboard(c *gin.Context) {
	view := dashboardView{
		Sandbox: s.sandbox,
		Message: c.Query("msg"),
		Error:   c.Query("err"),
	}

	snapshot, err := s.client.GetAccountSnapshot(c.Request.Context())
	if err != nil {
		view.AccountError = err.Error()
	} else {
		view.Account = newAccountView(snapshot)
	}

	orders, err := s.client.ListOpenOrders(c.Request.Context(), "")
	if err != nil {
		view.OrdersError = err.Error()
	} else {
		view.Orders = newOrderViews(orders)
	}

	c.HTML(http.StatusOK, "index.html", view)
}

func (s *Server) handlePlaceOrderForm(c *gin.Context) {
	req, err := buildOrderRequest(
		c.PostForm("symbol"),
		c.PostForm("side"),
		c.PostForm("type"),
		c.PostForm("quantity"),
		c.PostForm("price"),
	)
	if err != nil {
		redirectWithError(c, err)
		return
	}

	placed, err := s.client.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		redirectWithError(c, err)
		return
	}

	redirectWithMessage(c, "order "+placed.ID+" placed: "+placed.Status.String())
}

func (s *Server) handleCancelOrderForm(c *gin.Context) {
	symbol := c.PostForm("symbol")
	id := c.PostForm("order_id")

	canceled, err := s.client.CancelOrder(c.Request.Context(), symbol, id)
	if err != nil {
		if core.IsNotFound(err) {
			redirectWithMessage(c, "order "+id+" no longer exists")
			return
		}
		redirectWithError(c, err)
		return
	}

	redirectWithMessage(c, "order "+canceled.ID+" canceled")
}

func (s *Server) handleBalance(c *gin.Context) {
	snapshot, err := s.client.GetAccountSnapshot(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handlePrice(c *gin.Context) {
	quote, err := s.client.GetPrice(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (s *Server) handleListOrders(c *gin.Context) {
	orders, err := s.client.ListOpenOrders(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) handlePlaceOrder(c *gin.Context) {
	var body struct {
		Symbol   string `json:"symbol" binding:"required"`
		Side     string `json:"side" binding:"required"`
		Type     string `json:"type" binding:"required"`
		Quantity string `json:"quantity" binding:"required"`
		Price    string `json:"price"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := buildOrderRequest(body.Symbol, body.Side, body.Type, body.Quantity, body.Price)
	if err != nil {
		abortWithError(c, err)
		return
	}

	placed, err := s.client.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placed)
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	canceled, err := s.client.CancelOrder(c.Request.Context(), c.Param("symbol"), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, canceled)
}

// buildOrderRequest converts raw form or JSON input into a validated order
// request. All parse failures surface as validation errors.
func buildOrderRequest(symbol, side, orderType, quantity, price string) (*exchange.OrderRequest, error) {
	parsedSide, ok := core.ParseOrderSide(side)
	if !ok {
		return nil, core.NewValidationError("unrecognized side %q", side)
	}
	parsedType, ok := core.ParseOrderType(orderType)
	if !ok {
		return nil, core.NewValidationError("unrecognized order type %q", orderType)
	}

	b := order.NewBuilder(symbol).
		Side(parsedSide).
		Type(parsedType).
		Quantity(quantity)
	if parsedType == core.TypeLimit {
		b = b.Price(price)
	}

	req, err := b.Build()
	if err != nil {
		if core.IsValidation(err) {
			return nil, err
		}
		return nil, core.NewValidationError("%s", err.Error())
	}
	return req, nil
}

func redirectWithMessage(c *gin.Context, msg string) {
	c.Redirect(http.StatusSeeOther, "/?msg="+url.QueryEscape(msg))
}

func redirectWithError(c *gin.Context, err error) {
	c.Redirect(http.StatusSeeOther, "/?err="+url.QueryEscape(err.Error()))
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// statusFor maps client error kinds onto HTTP statuses for the JSON API.
func statusFor(err error) int {
	switch {
	case core.IsValidation(err):
		return http.StatusBadRequest
	case core.IsAuth(err):
		return http.StatusUnauthorized
	case core.IsNotFound(err):
		return http.StatusNotFound
	case core.IsNetwork(err):
		return http.StatusBadGateway
	case core.IsExchangeRejection(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func newAccountView(snapshot *core.AccountSnapshot) *accountView {
	view := &accountView{
		WalletBalance:    snapshot.WalletBalance.Text('f'),
		MarginBalance:    snapshot.MarginBalance.Text('f'),
		AvailableBalance: snapshot.AvailableBalance.Text('f'),
		UnrealizedPnL:    snapshot.UnrealizedPnL.Text('f'),
	}
	for _, a := range snapshot.Assets {
		view.Assets = append(view.Assets, assetView{
			Asset:         a.Asset,
			WalletBalance: a.WalletBalance.Text('f'),
			UnrealizedPnL: a.UnrealizedPnL.Text('f'),
		})
	}
	return view
}

func newOrderViews(orders []core.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{
			ID:          o.ID,
			Symbol:      o.Symbol,
			Side:        o.Side.String(),
			Type:        o.Type.String(),
			Price:       o.Price.Text('f'),
			Quantity:    o.Quantity.Text('f'),
			Filled:      o.FilledQuantity.Text('f'),
			Status:      o.Status.String(),
			TimeInForce: o.TimeInForce.String(),
			CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		})
	}
	return views
}
