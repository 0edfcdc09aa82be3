package controllers

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/billmate/app/services"
	"github.com/shashiranjanraj/billmate/pkg/response"
)

type ReportController struct {
	service *services.ReportService
}

func NewReportController() *ReportController {
	return &ReportController{service: services.NewReportService()}
}

// Today returns the aggregate summary for the current calendar day.
func (c *ReportController) Today(w http.ResponseWriter, r *http.Request) {
	summary, err := c.service.Today()
	if err != nil {
		renderError(w, err)
		return
	}
	response.Success(w, summary)
}

// Range returns the aggregate summary for [from, to). Both bounds are
// "2006-01-02" dates; to is exclusive and defaults to tomorrow.
func (c *ReportController) Range(w http.ResponseWriter, r *http.Request) {
	const layout = "2006-01-02"

	rawFrom := r.URL.Query().Get("from")
	from, err := time.ParseInLocation(layout, rawFrom, time.Local)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid or missing from date (want YYYY-MM-DD)")
		return
	}

	to := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	if rawTo := r.URL.Query().Get("to"); rawTo != "" {
		to, err = time.ParseInLocation(layout, rawTo, time.Local)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid to date (want YYYY-MM-DD)")
			return
		}
	}

	summary, err := c.service.Range(from, to)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Success(w, summary)
}
