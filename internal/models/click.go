package models

import (
	"time"

	"github.com/google/uuid"
)

// ClickEvent is one recorded visit to a link. Every attribute except the
// identifiers and the timestamp is optional.
type ClickEvent struct {
	ID          uuid.UUID `json:"id" db:"id"`
	LinkID      uuid.UUID `json:"link_id" db:"link_id"`
	Timestamp   time.Time `json:"timestamp" db:"clicked_at"`
	IP          *string   `json:"ip,omitempty" db:"ip"`
	UserAgent   *string   `json:"user_agent,omitempty" db:"user_agent"`
	Referer     *string   `json:"referer,omitempty" db:"referer"`
	Device      *string   `json:"device,omitempty" db:"device"`
	Browser     *string   `json:"browser,omitempty" db:"browser"`
	OS          *string   `json:"os,omitempty" db:"os"`
	Country     *string   `json:"country,omitempty" db:"country"`
	Region      *string   `json:"region,omitempty" db:"region"`
	City        *string   `json:"city,omitempty" db:"city"`
	UTMSource   *string   `json:"utm_source,omitempty" db:"utm_source"`
	UTMMedium   *string   `json:"utm_medium,omitempty" db:"utm_medium"`
	UTMCampaign *string   `json:"utm_campaign,omitempty" db:"utm_campaign"`
	UTMTerm     *string   `json:"utm_term,omitempty" db:"utm_term"`
	UTMContent  *string   `json:"utm_content,omitempty" db:"utm_content"`
}

// UTMParams are the five standard campaign parameters.
type UTMParams struct {
	Source   *string `json:"utm_source,omitempty"`
	Medium   *string `json:"utm_medium,omitempty"`
	Campaign *string `json:"utm_campaign,omitempty"`
	Term     *string `json:"utm_term,omitempty"`
	Content  *string `json:"utm_content,omitempty"`
}

// ClickMetadata is what a request tells us about a visit. Device, Browser
// and OS are derived from UserAgent when absent; Country, Region and City
// from IP.
type ClickMetadata struct {
	IP        *string
	UserAgent *string
	Referer   *string
	Device    *string
	Browser   *string
	OS        *string
	Country   *string
	Region    *string
	City      *string
	UTM       UTMParams
}

// RecordClickRequest is the body of POST /api/clicks.
type RecordClickRequest struct {
	LinkID      uuid.UUID `json:"link_id" binding:"required"`
	IP          *string   `json:"ip,omitempty"`
	UserAgent   *string   `json:"user_agent,omitempty"`
	Referer     *string   `json:"referer,omitempty"`
	Device      *string   `json:"device,omitempty"`
	Browser     *string   `json:"browser,omitempty"`
	OS          *string   `json:"os,omitempty"`
	Country     *string   `json:"country,omitempty"`
	Region      *string   `json:"region,omitempty"`
	City        *string   `json:"city,omitempty"`
	UTMSource   *string   `json:"utm_source,omitempty"`
	UTMMedium   *string   `json:"utm_medium,omitempty"`
	UTMCampaign *string   `json:"utm_campaign,omitempty"`
	UTMTerm     *string   `json:"utm_term,omitempty"`
	UTMContent  *string   `json:"utm_content,omitempty"`
}

// Metadata converts the request body into click metadata.
func (r *RecordClickRequest) Metadata() ClickMetadata {
	return ClickMetadata{
		IP:        r.IP,
		UserAgent: r.UserAgent,
		Referer:   r.Referer,
		Device:    r.Device,
		Browser:   r.Browser,
		OS:        r.OS,
		Country:   r.Country,
		Region:    r.Region,
		City:      r.City,
		UTM: UTMParams{
			Source:   r.UTMSource,
			Medium:   r.UTMMedium,
			Campaign: r.UTMCampaign,
			Term:     r.UTMTerm,
			Content:  r.UTMContent,
		},
	}
}
