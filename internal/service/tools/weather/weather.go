package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 1 << 20

// Client fetches current conditions from a wttr.in-compatible JSON API.
// Missing data is reported as a descriptive text result rather than an
// error, so the conversation can continue.
type Client struct {
	baseURL string
	http    *http.Client
}

func (c *Client) Invoke(ctx context.Context, params *Params) (string, error) {
	if params == nil || strings.TrimSpace(params.Location) == "" {
		return "", fmt.Errorf("location must be provided")
	}
	location := strings.TrimSpace(params.Location)

	requestURL := fmt.Sprintf("%s/%s?format=j1", strings.TrimRight(c.baseURL, "/"), url.PathEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("No weather data was found for %q. The location may be unknown.", location), nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read weather response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("weather response is not valid JSON")
	}

	return formatConditions(location, gjson.ParseBytes(body)), nil
}

func formatConditions(location string, data gjson.Result) string {
	current := data.Get("current_condition.0")
	if !current.Exists() {
		return fmt.Sprintf("No current weather conditions are available for %q.", location)
	}

	area := data.Get("nearest_area.0.areaName.0.value").String()
	if area == "" {
		area = location
	}
	country := data.Get("nearest_area.0.country.0.value").String()
	if country != "" {
		area = fmt.Sprintf("%s, %s", area, country)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current weather for %s:\n", area)
	if desc := current.Get("weatherDesc.0.value").String(); desc != "" {
		fmt.Fprintf(&b, "Conditions: %s\n", desc)
	}
	if temp := current.Get("temp_C"); temp.Exists() {
		fmt.Fprintf(&b, "Temperature: %s°C (feels like %s°C)\n", temp.String(), current.Get("FeelsLikeC").String())
	}
	if humidity := current.Get("humidity"); humidity.Exists() {
		fmt.Fprintf(&b, "Humidity: %s%%\n", humidity.String())
	}
	if wind := current.Get("windspeedKmph"); wind.Exists() {
		fmt.Fprintf(&b, "Wind: %s km/h", wind.String())
	}

	return strings.TrimRight(b.String(), "\n")
}
