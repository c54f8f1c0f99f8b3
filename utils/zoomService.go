package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"sadhaka/config"

	"github.com/go-resty/resty/v2"
)

// getZoomAccessToken fetches a server-to-server OAuth token
func getZoomAccessToken() (string, error) {
	client := resty.New()
	resp, err := client.R().
		SetBasicAuth(config.AppConfig.ZoomClientID, config.AppConfig.ZoomClientSecret).
		SetQueryParams(map[string]string{
			"grant_type": "account_credentials",
			"account_id": config.AppConfig.ZoomAccountID,
		}).
		Post("https://zoom.us/oauth/token")
	if err != nil {
		log.Printf("Failed to get Zoom access token: %v", err)
		return "", err
	}
	if resp.StatusCode() != 200 {
		log.Printf("Zoom auth failed: %s", resp.String())
		return "", fmt.Errorf("zoom auth failed with status %d", resp.StatusCode())
	}

	var authResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		log.Printf("Failed to parse Zoom auth response: %v", err)
		return "", err
	}
	return authResp.AccessToken, nil
}

// CreateZoomMeeting creates a scheduled Zoom meeting for a live workshop
// session and returns its join URL.
func CreateZoomMeeting(topic string, startTime time.Time, durationMinutes int) (string, error) {
	token, err := getZoomAccessToken()
	if err != nil {
		return "", err
	}

	client := resty.New()
	resp, err := client.R().
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"topic":      topic,
			"type":       2, // scheduled meeting
			"start_time": startTime.UTC().Format("2006-01-02T15:04:05Z"),
			"duration":   durationMinutes,
			"settings": map[string]interface{}{
				"join_before_host": false,
				"waiting_room":     true,
			},
		}).
		Post(config.AppConfig.ZoomApiURL + "/users/me/meetings")
	if err != nil {
		log.Printf("Failed to create Zoom meeting: %v", err)
		return "", err
	}
	if resp.StatusCode() != 201 {
		log.Printf("Zoom meeting creation failed: %s", resp.String())
		return "", fmt.Errorf("zoom meeting creation failed with status %d", resp.StatusCode())
	}

	var meetingResp struct {
		JoinURL string `json:"join_url"`
	}
	if err := json.Unmarshal(resp.Body(), &meetingResp); err != nil {
		log.Printf("Failed to parse Zoom meeting response: %v", err)
		return "", err
	}
	return meetingResp.JoinURL, nil
}
