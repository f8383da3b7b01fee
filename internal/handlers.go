package internal

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

type Handlers struct {
	Service      IService
	Schema       *Schema
	DeliveryFile string
	logger       *zap.SugaredLogger
}

func NewHandlers(service IService, schema *Schema, deliveryFile string, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{Service: service, Schema: schema, DeliveryFile: deliveryFile, logger: logger}
}

// NewRouter builds the fiber app: the token gate runs before every route,
// and all failures funnel into the error boundary.
func NewRouter(h *Handlers, gate *TokenGate) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: h.ErrorBoundary})

	app.Use(logger.New())
	app.Use(gate.Middleware)

	order := app.Group("/order")
	order.Post("/", h.CreateOrder)
	order.Get("/", h.ListOrders)
	order.Get("/:id", h.GetOrder)
	order.Patch("/:id", h.UpdateOrder)
	order.All("/", h.MethodNotAllowed)
	order.All("/*", h.MethodNotAllowed)

	app.Get("/delivery", h.GetDelivery)

	return app
}

func (h *Handlers) CreateOrder(c *fiber.Ctx) error {
	payload := map[string]interface{}{}
	if err := c.BodyParser(&payload); err != nil {
		return fmt.Errorf("%w: malformed body", ErrValidation)
	}

	fields, err := h.Schema.Validate(payload, OpCreate)
	if err != nil {
		return err
	}

	id, err := h.Service.Create(c.Context(), fields)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Order created", "id": id})
}

func (h *Handlers) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	order, err := h.Service.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	// a missing order renders as a JSON null, not a 404
	return c.Status(fiber.StatusOK).JSON(order)
}

func (h *Handlers) ListOrders(c *fiber.Ctx) error {
	payload := map[string]interface{}{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		payload[string(k)] = string(v)
	})

	filter, err := h.Schema.Validate(payload, OpQuery)
	if err != nil {
		return err
	}

	orders, err := h.Service.List(c.Context(), filter)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(orders)
}

func (h *Handlers) UpdateOrder(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	payload := map[string]interface{}{}
	if err = c.BodyParser(&payload); err != nil {
		return fmt.Errorf("%w: malformed body", ErrValidation)
	}

	fields, err := h.Schema.Validate(payload, OpUpdate)
	if err != nil {
		return err
	}

	err = h.Service.Update(c.Context(), id, fields)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Order updated successfully"})
}

// MethodNotAllowed answers for every method without a tailored contract,
// and for contract methods hitting a path shape no handler claims.
func (h *Handlers) MethodNotAllowed(c *fiber.Ctx) error {
	if _, err := OperationForMethod(c.Method()); err != nil {
		return err
	}
	return ErrMethodNotSupported
}

func (h *Handlers) GetDelivery(c *fiber.Ctx) error {
	settings, err := ReadDeliverySettings(h.DeliveryFile)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(settings)
}

// ErrorBoundary is the single error-translation point: typed failures map
// to statuses, everything unexpected becomes an opaque 500. It always sends
// a response; a failing write is only logged.
func (h *Handlers) ErrorBoundary(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	body := fiber.Map{"error": "Internal server error"}

	var fe *fiber.Error

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmptyUpdate):
		status, body = fiber.StatusBadRequest, fiber.Map{"error": "Validation error"}
	case errors.Is(err, ErrNoAuthHeader):
		status, body = fiber.StatusUnauthorized, fiber.Map{"error": "Unauthorized"}
	case errors.Is(err, ErrBadAuthScheme), errors.Is(err, ErrInvalidToken):
		status, body = fiber.StatusForbidden, fiber.Map{"error": "Forbidden"}
	case errors.Is(err, ErrOrderNotFound):
		status, body = fiber.StatusNotFound, fiber.Map{"error": "Order not found"}
	case errors.Is(err, ErrMethodNotSupported):
		status, body = fiber.StatusMethodNotAllowed, fiber.Map{"error": "Not allowed"}
	case errors.As(err, &fe):
		status, body = fe.Code, fiber.Map{"error": fe.Message}
	default:
		h.logger.Errorf("internal error: %s", err.Error())
	}

	if writeErr := c.Status(status).JSON(body); writeErr != nil {
		h.logger.Errorf("error response write failed: %s", writeErr.Error())
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed id %q", ErrValidation, raw)
	}
	return id, nil
}
