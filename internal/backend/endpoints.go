package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

var (
	_ port.ProductSource  = (*Client)(nil)
	_ port.AuthGateway    = (*Client)(nil)
	_ port.OrderSource    = (*Client)(nil)
	_ port.PaymentGateway = (*Client)(nil)
)

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var resp struct {
		Products []productDTO `json:"products"`
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, segments: []string{"api", "products"}}, &resp); err != nil {
		return nil, fmt.Errorf("ListProducts: %w", err)
	}

	products := make([]domain.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, p.toDomain())
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return domain.Product{}, fmt.Errorf("productID is empty")
	}

	var resp struct {
		Product productDTO `json:"product"`
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, segments: []string{"api", "products", productID}}, &resp); err != nil {
		return domain.Product{}, fmt.Errorf("GetProduct: %w", err)
	}
	return resp.Product.toDomain(), nil
}

func (c *Client) Login(ctx context.Context, email, password string) (port.LoginResult, error) {
	var resp struct {
		Token string  `json:"token"`
		User  userDTO `json:"user"`
	}
	msg, err := c.do(ctx, call{
		method:   http.MethodPost,
		segments: []string{"api", "user", "login"},
		body:     map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return port.LoginResult{}, fmt.Errorf("Login: %w", err)
	}
	if resp.Token == "" {
		return port.LoginResult{}, fmt.Errorf("Login: response has no token")
	}

	user := resp.User.toDomain()
	if user.Email == "" {
		user.Email = email
	}
	return port.LoginResult{User: user, Token: resp.Token, Message: msg}, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	msg, err := c.do(ctx, call{
		method:   http.MethodPost,
		segments: []string{"api", "user", "register"},
		body: map[string]string{
			"name":     name,
			"email":    email,
			"password": password,
			"role":     "user",
		},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("Register: %w", err)
	}
	return msg, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	var resp struct {
		Orders []orderDTO `json:"orders"`
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, segments: []string{"api", "order", "my-orders"}, auth: true}, &resp); err != nil {
		return nil, fmt.Errorf("MyOrders: %w", err)
	}

	orders := make([]domain.Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		orders = append(orders, o.toDomain())
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, fmt.Errorf("orderID is empty")
	}

	var resp struct {
		Order orderDTO `json:"order"`
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, segments: []string{"api", "order", "user", orderID}, auth: true}, &resp); err != nil {
		return domain.Order{}, fmt.Errorf("GetOrder: %w", err)
	}
	return resp.Order.toDomain(), nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, orderID string) (string, error) {
	if strings.TrimSpace(orderID) == "" {
		return "", fmt.Errorf("orderID is empty")
	}

	var resp struct {
		ClientSecret string `json:"clientSecret"`
	}
	if _, err := c.do(ctx, call{
		method:     http.MethodPost,
		segments:   []string{"api", "payment", "stripe", "create-payment-intent"},
		body:       map[string]string{"orderId": orderID},
		auth:       true,
		idempotent: true,
	}, &resp); err != nil {
		return "", fmt.Errorf("CreatePaymentIntent: %w", err)
	}
	if resp.ClientSecret == "" {
		return "", fmt.Errorf("CreatePaymentIntent: response has no client secret")
	}
	return resp.ClientSecret, nil
}

func (c *Client) ConfirmPayment(ctx context.Context, paymentIntentID, orderID string) (domain.Order, error) {
	if strings.TrimSpace(paymentIntentID) == "" {
		return domain.Order{}, fmt.Errorf("paymentIntentID is empty")
	}
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, fmt.Errorf("orderID is empty")
	}

	var resp struct {
		Order orderDTO `json:"order"`
	}
	if _, err := c.do(ctx, call{
		method:     http.MethodPost,
		segments:   []string{"api", "payment", "stripe", "confirm-payment"},
		body:       map[string]string{"paymentIntentId": paymentIntentID, "orderId": orderID},
		auth:       true,
		idempotent: true,
	}, &resp); err != nil {
		return domain.Order{}, fmt.Errorf("ConfirmPayment: %w", err)
	}

	order := resp.Order.toDomain()
	if order.ID == "" {
		order.ID = orderID
	}
	return order, nil
}
