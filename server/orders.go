package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/studyshelf/studyshelf/internal/model"
)

type orderRequest struct {
	OrderType     string            `json:"orderType"`
	Items         []model.OrderItem `json:"items"`
	ClassID       string            `json:"classId"`
	PackageType   string            `json:"packageType"`
	Amount        int               `json:"amount"`
	PaymentMethod string            `json:"paymentMethod"`
	PaymentStatus string            `json:"paymentStatus"`
	OrderStatus   string            `json:"orderStatus"`
	Address       *model.Address    `json:"address"`
}

// handleCreateOrder records an order. Payment is taken at face value
// under the demo payment method; a real gateway would verify here.
func (s *Server) handleCreateOrder(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}

	if req.OrderType != "digital" && req.OrderType != "hardcopy" {
		return fail(c, http.StatusBadRequest, "Invalid order type")
	}
	if len(req.Items) == 0 && req.PackageType == "" {
		return fail(c, http.StatusBadRequest, "Order has no items")
	}
	if req.Amount < 0 {
		return fail(c, http.StatusBadRequest, "Invalid amount")
	}
	if req.OrderType == "hardcopy" {
		if req.Address == nil {
			return fail(c, http.StatusBadRequest, "Delivery address is required")
		}
		if errs := model.ValidateAddress(*req.Address); len(errs) > 0 {
			for _, msg := range errs {
				return fail(c, http.StatusBadRequest, msg)
			}
		}
	}

	orderID := uuid.New().String()

	items, err := json.Marshal(req.Items)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid items")
	}
	var address []byte
	if req.Address != nil {
		if address, err = json.Marshal(req.Address); err != nil {
			return fail(c, http.StatusBadRequest, "Invalid address")
		}
	}

	_, err = s.db.Exec(`
		INSERT INTO orders (id, user_id, order_type, items, class_id,
			package_type, amount, payment_method, payment_status,
			order_status, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		orderID, userID, req.OrderType, items, req.ClassID,
		req.PackageType, req.Amount, req.PaymentMethod,
		req.PaymentStatus, req.OrderStatus, address)
	if err != nil {
		c.Logger().Error("db error:", err)
		return fail(c, http.StatusInternalServerError, "Failed to create order")
	}

	// Leave a receipt in the notification feed
	title := "Order placed"
	if req.OrderType == "hardcopy" {
		title = "Hard copy order placed"
	}
	_, _ = s.db.Exec(`
		INSERT INTO notifications (user_id, title, body)
		VALUES ($1, $2, $3)`,
		userID, title, "Order "+orderID+" has been received.")

	return ok(c, map[string]string{"orderId": orderID})
}

// handleListOrders returns the user's order ledger, newest first
func (s *Server) handleListOrders(c echo.Context) error {
	userID := c.Get("user_id").(string)

	rows, err := s.db.Query(`
		SELECT id, order_type, items, class_id, package_type, amount,
			payment_method, payment_status, order_status, tracking_id,
			created_at
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		c.Logger().Error("db error:", err)
		return fail(c, http.StatusInternalServerError, "Internal error")
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		var items []byte
		var classID, packageType, trackingID sql.NullString
		var createdAt time.Time

		err := rows.Scan(&o.ID, &o.OrderType, &items, &classID,
			&packageType, &o.Amount, &o.PaymentMethod, &o.PaymentStatus,
			&o.OrderStatus, &trackingID, &createdAt)
		if err != nil {
			c.Logger().Error("scan error:", err)
			return fail(c, http.StatusInternalServerError, "Internal error")
		}

		if len(items) > 0 {
			if err := json.Unmarshal(items, &o.Items); err != nil {
				c.Logger().Error("items decode error:", err)
				return fail(c, http.StatusInternalServerError, "Internal error")
			}
		}
		o.ClassID = classID.String
		o.PackageType = packageType.String
		o.TrackingID = trackingID.String
		o.CreatedAt = createdAt
		orders = append(orders, o)
	}
	return ok(c, orders)
}
