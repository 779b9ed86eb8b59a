package entities

import "time"

// DefaultMetaAPIVersion is the Graph API version used when none is configured
const DefaultMetaAPIVersion = "v18.0"

// MetaAPIConfig holds a tenant's Lead Ads form credentials
type MetaAPIConfig struct {
	ID                   int64      `json:"id" db:"id"`
	TenantID             int64      `json:"tenant_id" db:"tenant_id"`
	PageID               string     `json:"page_id" db:"page_id"`
	FormID               string     `json:"form_id" db:"form_id"`
	AccessToken          string     `json:"-" db:"access_token"`
	APIVersion           string     `json:"api_version" db:"api_version"`
	IsActive             bool       `json:"is_active" db:"is_active"`
	FetchIntervalMinutes int        `json:"fetch_interval_minutes" db:"fetch_interval_minutes"`
	LastFetchTime        *time.Time `json:"last_fetch_time,omitempty" db:"last_fetch_time"`
	LastError            *string    `json:"last_error,omitempty" db:"last_error"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// Version returns the configured API version or the default
func (c *MetaAPIConfig) Version() string {
	if c.APIVersion == "" {
		return DefaultMetaAPIVersion
	}
	return c.APIVersion
}

// HasCredentials reports whether a form id and token are set
func (c *MetaAPIConfig) HasCredentials() bool {
	return c.AccessToken != "" && c.FormID != ""
}

// MetaLeadField is one answer in a Lead Ads submission
type MetaLeadField struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// MetaLead is a raw Lead Ads submission as returned by the Graph API
type MetaLead struct {
	ID          string          `json:"id"`
	CreatedTime string          `json:"created_time"`
	FieldData   []MetaLeadField `json:"field_data"`
}

// MetaSyncResult summarises one sync run for a tenant
type MetaSyncResult struct {
	TenantID int64    `json:"tenant_id"`
	Success  bool     `json:"success"`
	Fetched  int      `json:"fetched"`
	Stored   int      `json:"stored"`
	Errors   []string `json:"errors"`
	Message  string   `json:"message"`
}
