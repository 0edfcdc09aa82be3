package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/billmate/app/requests"
	"github.com/shashiranjanraj/billmate/app/services"
	"github.com/shashiranjanraj/billmate/pkg/bind"
	"github.com/shashiranjanraj/billmate/pkg/middleware"
	"github.com/shashiranjanraj/billmate/pkg/response"
)

type SaleController struct {
	checkout *services.CheckoutService
	reports  *services.ReportService
}

func NewSaleController() *SaleController {
	return &SaleController{
		checkout: services.NewCheckoutService(),
		reports:  services.NewReportService(),
	}
}

// Store runs a checkout for the authenticated cashier. On success the
// client receives the persisted sale with resolved product and user
// display data; on failure, the datastore is untouched.
func (c *SaleController) Store(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var req requests.CreateSaleRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	sale, err := c.checkout.Checkout(r.Context(), userID, req)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Created(w, sale)
}

// Index pages through past sales, newest first.
func (c *SaleController) Index(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	sales, pagination, err := c.reports.Sales(page, limit)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Paginated(w, sales, pagination)
}

func (c *SaleController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid sale id")
		return
	}

	receipt, err := c.reports.BuildReceipt(id)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Success(w, receipt)
}
