package models

import (
	"net/http/httptest"
	"testing"
)

func TestParseReportParams(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/v1/installation-jobs?page=2&pageSize=25&sortBy=status&sortOrder=asc&from=2026-01-01&filter.status=Verified&filter.customer=Acme", nil)

	params, err := ParseReportParams(r)
	if err != nil {
		t.Fatalf("ParseReportParams() failed: %v", err)
	}

	if params.Page != 2 || params.PageSize != 25 {
		t.Errorf("paging = %d/%d", params.Page, params.PageSize)
	}
	if params.SortBy != "status" || params.SortOrder != "asc" {
		t.Errorf("sorting = %s %s", params.SortBy, params.SortOrder)
	}
	if params.From == nil || params.From.Format("2006-01-02") != "2026-01-01" {
		t.Errorf("from = %v", params.From)
	}
	if params.To != nil {
		t.Errorf("to should be unset, got %v", params.To)
	}
	if params.Filters["status"] != "Verified" || params.Filters["customer"] != "Acme" {
		t.Errorf("filters = %v", params.Filters)
	}
}

func TestParseReportParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/warranties", nil)
	params, err := ParseReportParams(r)
	if err != nil {
		t.Fatalf("ParseReportParams() failed: %v", err)
	}
	if params.Page != 1 || params.PageSize != 50 || params.SortBy != "created_at" || params.SortOrder != "desc" {
		t.Errorf("unexpected defaults: %+v", params)
	}
}

func TestParseReportParamsBadInput(t *testing.T) {
	for _, url := range []string{
		"/x?page=abc",
		"/x?pageSize=many",
		"/x?from=01-01-2026",
	} {
		r := httptest.NewRequest("GET", url, nil)
		if _, err := ParseReportParams(r); err == nil {
			t.Errorf("%s accepted", url)
		}
	}
}

func TestReportParamsValidate(t *testing.T) {
	base := func() *ReportParams {
		return &ReportParams{Page: 1, PageSize: 50, SortBy: "created_at", SortOrder: "desc", Filters: map[string]string{}}
	}

	tests := []struct {
		name    string
		mutate  func(*ReportParams)
		wantErr bool
	}{
		{"defaults", func(p *ReportParams) {}, false},
		{"zero page", func(p *ReportParams) { p.Page = 0 }, true},
		{"oversized page size", func(p *ReportParams) { p.PageSize = 1000 }, true},
		{"bad sort order", func(p *ReportParams) { p.SortOrder = "descending" }, true},
		{"sort column injection", func(p *ReportParams) { p.SortBy = "created_at; drop table users" }, true},
		{"filter column injection", func(p *ReportParams) { p.Filters["1=1 or x"] = "v" }, true},
		{"underscored column", func(p *ReportParams) { p.SortBy = "installation_date" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base()
			tt.mutate(p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
