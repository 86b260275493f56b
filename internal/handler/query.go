package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/alive-sleep/internal/apperror"
	"github.com/sakif/alive-sleep/internal/service"
)

var validate = validator.New()

// pageQuery is the paging part of a list request.
type pageQuery struct {
	Page  int `validate:"min=1"`
	Limit int `validate:"min=1,max=100"`
}

// entryQuery adds the optional inclusive date range of GET /sleep-entries.
type entryQuery struct {
	pageQuery
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
}

var queryMessages = map[string]string{
	"Page":      "Page must be a positive number",
	"Limit":     "Limit must be between 1 and 100",
	"StartDate": "startDate must be a date in YYYY-MM-DD format",
	"EndDate":   "endDate must be a date in YYYY-MM-DD format",
}

func parsePageQuery(r *http.Request, defaultLimit int) (pageQuery, error) {
	q := pageQuery{Page: 1, Limit: defaultLimit}
	var err error
	if q.Page, err = intParam(r, "page", q.Page); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(r, "limit", q.Limit); err != nil {
		return q, err
	}
	return q, checkStruct(q)
}

func parseEntryQuery(r *http.Request) (service.ListQuery, error) {
	page, err := parsePageQuery(r, service.DefaultEntryLimit)
	if err != nil {
		return service.ListQuery{}, err
	}
	q := entryQuery{
		pageQuery: page,
		StartDate: strings.TrimSpace(r.URL.Query().Get("startDate")),
		EndDate:   strings.TrimSpace(r.URL.Query().Get("endDate")),
	}
	if err := checkStruct(q); err != nil {
		return service.ListQuery{}, err
	}

	out := service.ListQuery{Page: q.Page, Limit: q.Limit}
	if q.StartDate != "" {
		d, _ := time.Parse(time.DateOnly, q.StartDate)
		out.StartDate = &d
	}
	if q.EndDate != "" {
		d, _ := time.Parse(time.DateOnly, q.EndDate)
		out.EndDate = &d
	}
	return out, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be a whole number")
	}
	return n, nil
}

// checkStruct runs validator tags and reports the first failing field.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		field := errs[0].Field()
		msg, ok := queryMessages[field]
		if !ok {
			msg = field + " is invalid"
		}
		return apperror.ValidationFailed(field, msg)
	}
	return apperror.ValidationFailed("query", err.Error())
}

// pathDate parses the {date} URL segment.
func pathDate(raw string) (time.Time, error) {
	d, ok := service.ParseDate(raw)
	if !ok {
		return time.Time{}, apperror.ValidationFailed("date", "Date must be valid")
	}
	return d, nil
}
