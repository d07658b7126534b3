package models

import (
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// ReportParams are the shared list-endpoint query parameters:
// ?page=1&pageSize=50&sortBy=created_at&sortOrder=desc&from=...&to=...
// plus arbitrary column filters via ?filter.<column>=<value>.
type ReportParams struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	From      *time.Time
	To        *time.Time
	Filters   map[string]string
}

var columnNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ParseReportParams pulls paging, sorting and filters off the request.
func ParseReportParams(r *http.Request) (*ReportParams, error) {
	q := r.URL.Query()

	params := &ReportParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "created_at",
		SortOrder: "desc",
		Filters:   map[string]string{},
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", v)
		}
		params.Page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid pageSize %q", v)
		}
		params.PageSize = n
	}
	if v := q.Get("sortBy"); v != "" {
		params.SortBy = v
	}
	if v := q.Get("sortOrder"); v != "" {
		params.SortOrder = v
	}
	for key, vals := range q {
		if len(key) > 7 && key[:7] == "filter." && len(vals) > 0 {
			params.Filters[key[7:]] = vals[0]
		}
	}
	for name, dst := range map[string]**time.Time{"from": &params.From, "to": &params.To} {
		if v := q.Get(name); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s date %q", name, v)
			}
			*dst = &t
		}
	}
	return params, nil
}

// Validate rejects out-of-range paging and anything that could smuggle SQL
// through a column name.
func (p *ReportParams) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("page must be >= 1")
	}
	if p.PageSize < 1 || p.PageSize > 500 {
		return fmt.Errorf("pageSize must be between 1 and 500")
	}
	if p.SortOrder != "asc" && p.SortOrder != "desc" {
		return fmt.Errorf("sortOrder must be asc or desc")
	}
	if !columnNameRe.MatchString(p.SortBy) {
		return fmt.Errorf("invalid sort column %q", p.SortBy)
	}
	for col := range p.Filters {
		if !columnNameRe.MatchString(col) {
			return fmt.Errorf("invalid filter column %q", col)
		}
	}
	return nil
}

// ReportResponse is the common paged list envelope.
type ReportResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ReportService runs paged, filtered list queries for a model.
type ReportService struct {
	db    *gorm.DB
	model interface{}
}

func NewReportService(db *gorm.DB, model interface{}) *ReportService {
	return &ReportService{db: db, model: model}
}

// GetReport executes the query described by params and returns generic rows.
func (s *ReportService) GetReport(params *ReportParams) (*ReportResponse, error) {
	query := s.db.Model(s.model)

	for col, val := range params.Filters {
		query = query.Where(col+" = ?", val)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at < ?", params.To.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	var rows []map[string]interface{}
	err := query.
		Order(params.SortBy + " " + params.SortOrder).
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	return &ReportResponse{
		Data:       rows,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(params.PageSize))),
	}, nil
}
