package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/calisthenics-hub/api/models"
	"github.com/calisthenics-hub/api/utils"
)

// CatalogHandler serves the exercise, training, product and order routes.
// Reads acknowledge the request whatever the id; writes validate the body
// and acknowledge it without persisting.
type CatalogHandler struct {
	logger *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{logger: logger}
}

// ListExercises handles GET /api/exercises
func (h *CatalogHandler) ListExercises(w http.ResponseWriter, r *http.Request) error {
	return utils.WriteMessage(w, http.StatusOK, "Get exercises")
}

// GetExercise handles GET /api/exercises/{id}
func (h *CatalogHandler) GetExercise(w http.ResponseWriter, r *http.Request) error {
	return utils.WriteMessage(w, http.StatusOK, "Get exercise")
}

// ListTrainingReports handles GET /api/training/reports
func (h *CatalogHandler) ListTrainingReports(w http.ResponseWriter, r *http.Request) error {
	if _, err := requirePrincipal(r); err != nil {
		return err
	}
	return utils.WriteMessage(w, http.StatusOK, "Get training reports")
}

// CreateTrainingReport handles POST /api/training/reports
func (h *CatalogHandler) CreateTrainingReport(w http.ResponseWriter, r *http.Request) error {
	p, err := requirePrincipal(r)
	if err != nil {
		return err
	}

	var report models.TrainingReport
	if err := utils.DecodeJSON(r, &report); err != nil {
		return err
	}

	h.logger.Debug("training report accepted",
		zap.String("sub", p.SubjectID),
		zap.Int("exercises", len(report.Exercises)))
	return utils.WriteMessage(w, http.StatusCreated, "Create training report")
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	return utils.WriteMessage(w, http.StatusOK, "Get products")
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	return utils.WriteMessage(w, http.StatusOK, "Get product")
}

// CreateProduct handles POST /api/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var product models.Product
	if err := utils.DecodeJSON(r, &product); err != nil {
		return err
	}

	h.logger.Debug("product accepted", zap.String("name", product.Name))
	return utils.WriteMessage(w, http.StatusCreated, "Create product")
}

// ListOrders handles GET /api/orders
func (h *CatalogHandler) ListOrders(w http.ResponseWriter, r *http.Request) error {
	if _, err := requirePrincipal(r); err != nil {
		return err
	}
	return utils.WriteMessage(w, http.StatusOK, "Get orders")
}

// CreateOrder handles POST /api/orders
func (h *CatalogHandler) CreateOrder(w http.ResponseWriter, r *http.Request) error {
	p, err := requirePrincipal(r)
	if err != nil {
		return err
	}

	var order models.Order
	if err := utils.DecodeJSON(r, &order); err != nil {
		return err
	}

	h.logger.Debug("order accepted",
		zap.String("sub", p.SubjectID),
		zap.Int("items", len(order.Items)))
	return utils.WriteMessage(w, http.StatusCreated, "Create order")
}

// GetOrder handles GET /api/orders/{id}
func (h *CatalogHandler) GetOrder(w http.ResponseWriter, r *http.Request) error {
	if _, err := requirePrincipal(r); err != nil {
		return err
	}
	return utils.WriteMessage(w, http.StatusOK, "Get order")
}
