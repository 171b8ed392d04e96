package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rdrlink/shortener/internal/models"
)

var standardUTMKeys = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

type queryParam struct {
	key   string
	value string
}

// MergeUTM copies campaign parameters from the incoming query string onto
// destination. Strict mode forwards the five standard keys; prefix mode
// forwards every utm_* key. Existing keys keep their position and take the
// incoming value; new keys are appended in request order. Other incoming
// parameters are ignored. The returned UTMParams hold the standard values
// that were applied.
func MergeUTM(destination, incomingQuery string, prefixMatch bool) (string, models.UTMParams, error) {
	target, err := url.Parse(destination)
	if err != nil {
		return "", models.UTMParams{}, fmt.Errorf("parse destination: %w", err)
	}
	if !target.IsAbs() || target.Host == "" {
		return "", models.UTMParams{}, fmt.Errorf("destination is not absolute: %q", destination)
	}

	applied := incomingUTM(incomingQuery, prefixMatch)
	if len(applied) == 0 {
		return destination, models.UTMParams{}, nil
	}

	values := make(map[string]string, len(applied))
	for _, p := range applied {
		values[p.key] = p.value
	}

	var segments []string
	replaced := make(map[string]bool, len(applied))
	for _, seg := range strings.Split(target.RawQuery, "&") {
		if seg == "" {
			continue
		}
		rawKey, _, _ := strings.Cut(seg, "=")
		key, err := url.QueryUnescape(rawKey)
		if err == nil {
			if v, ok := values[key]; ok {
				if !replaced[key] {
					replaced[key] = true
					segments = append(segments, encodeParam(key, v))
				}
				continue
			}
		}
		segments = append(segments, seg)
	}
	for _, p := range applied {
		if !replaced[p.key] {
			segments = append(segments, encodeParam(p.key, p.value))
		}
	}

	target.RawQuery = strings.Join(segments, "&")
	target.ForceQuery = false
	return target.String(), utmParams(values), nil
}

// incomingUTM returns the recognized, non-empty parameters of rawQuery,
// first occurrence per key, in request order.
func incomingUTM(rawQuery string, prefixMatch bool) []queryParam {
	var params []queryParam
	seen := make(map[string]bool)
	for _, seg := range strings.Split(rawQuery, "&") {
		if seg == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(seg, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil || seen[key] || !isUTMKey(key, prefixMatch) {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil || value == "" {
			continue
		}
		seen[key] = true
		params = append(params, queryParam{key: key, value: value})
	}
	return params
}

func isUTMKey(key string, prefixMatch bool) bool {
	if prefixMatch {
		return strings.HasPrefix(key, "utm_")
	}
	for _, k := range standardUTMKeys {
		if key == k {
			return true
		}
	}
	return false
}

func encodeParam(key, value string) string {
	return url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

func utmParams(values map[string]string) models.UTMParams {
	get := func(key string) *string {
		if v, ok := values[key]; ok {
			return &v
		}
		return nil
	}
	return models.UTMParams{
		Source:   get("utm_source"),
		Medium:   get("utm_medium"),
		Campaign: get("utm_campaign"),
		Term:     get("utm_term"),
		Content:  get("utm_content"),
	}
}
