// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/adminauth/pkg/pagination"
)

/*
TestFromRequest verifies parsing and clamping of list query parameters.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pagination.Params
	}{
		{"defaults", "", pagination.Params{Page: 1, Limit: 20, Order: "desc"}},
		{"explicit", "?page=3&limit=50&search=ada", pagination.Params{Page: 3, Limit: 50, Search: "ada", Order: "desc"}},
		{"negative_page", "?page=-2", pagination.Params{Page: 1, Limit: 20, Order: "desc"}},
		{"limit_too_large", "?limit=1000", pagination.Params{Page: 1, Limit: 20, Order: "desc"}},
		{"not_a_number", "?page=abc&limit=x", pagination.Params{Page: 1, Limit: 20, Order: "desc"}},
		{"search_trimmed", "?search=%20%20ada%20", pagination.Params{Page: 1, Limit: 20, Search: "ada", Order: "desc"}},
		{"sort_ascending", "?sortBy=email&sortOrder=ASC", pagination.Params{Page: 1, Limit: 20, Sort: "email", Order: "asc"}},
		{"unknown_order", "?sortBy=email&sortOrder=sideways", pagination.Params{Page: 1, Limit: 20, Sort: "email", Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/users"+tt.query, nil)
			assert.Equal(t, tt.want, pagination.FromRequest(request))
		})
	}
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, pagination.Params{Page: 3, Limit: 20}.Offset())
}

func TestNormalize_CapsSearch(t *testing.T) {
	params := pagination.Params{Search: strings.Repeat("x", 500)}.Normalize()
	assert.Len(t, params.Search, pagination.MaxSearchLen)
}

func TestNewPage(t *testing.T) {
	page := pagination.NewPage[string](nil, pagination.Params{Page: 2, Limit: 10}, 25)

	assert.NotNil(t, page.Items)
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 10, Total: 25, TotalPages: 3}, page.Meta)
}

/*
TestParams_SortedBy verifies sort keys outside the allow-list fall back.
*/
func TestParams_SortedBy(t *testing.T) {
	allowed := []string{"created_at", "email"}

	tests := []struct {
		name string
		sort string
		want string
	}{
		{"allowed", "email", "email"},
		{"empty", "", "created_at"},
		{"unknown", "password_hash", "created_at"},
		{"injection", "email; DROP TABLE iam.account", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := pagination.Params{Sort: tt.sort}.Normalize().SortedBy("created_at", allowed...)
			assert.Equal(t, tt.want, params.Sort)
			assert.False(t, params.Ascending())
		})
	}
}
