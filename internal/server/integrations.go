package server

import (
	"encoding/json"
	"net/http"
	"time"

	"riabuilder/internal/logging"
)

type integrationStatus struct {
	SlackConfigured        bool `json:"slackConfigured"`
	SlackChannelConfigured bool `json:"slackChannelConfigured"`
	TavilyConfigured       bool `json:"tavilyConfigured"`
	DriveConfigured        bool `json:"driveConfigured"`
	VoiceConfigured        bool `json:"voiceConfigured"`
	ModelConfigured        bool `json:"modelConfigured"`
}

var statusClient = &http.Client{Timeout: 10 * time.Second}

// IntegrationStatus reports which integrations are usable. Relay-side
// facts come from the remote status endpoint when one is configured;
// local facts come straight from config. A failing remote endpoint
// degrades to local knowledge only.
func (h *Handler) IntegrationStatus(w http.ResponseWriter, r *http.Request) {
	status := integrationStatus{
		SlackConfigured:  h.cfg.Integrations.SlackSendURL != "",
		TavilyConfigured: h.cfg.Integrations.WebResearchURL != "",
		DriveConfigured:  h.cfg.Integrations.GoogleAccessToken != "",
		VoiceConfigured:  h.cfg.Integrations.TranscribeURL != "",
		ModelConfigured:  h.cfg.Model.APIKey != "",
	}

	if url := h.cfg.Integrations.IntegrationStatusURL; url != "" {
		if remote, err := fetchRemoteStatus(r, url); err != nil {
			logging.Server("integration status endpoint failed: %v", err)
		} else {
			status.SlackConfigured = remote.SlackConfigured
			status.SlackChannelConfigured = remote.SlackChannelConfigured
			status.TavilyConfigured = remote.TavilyConfigured
		}
	}
	writeJSON(w, http.StatusOK, status)
}

type remoteStatus struct {
	SlackConfigured        bool `json:"slackConfigured"`
	SlackChannelConfigured bool `json:"slackChannelConfigured"`
	TavilyConfigured       bool `json:"tavilyConfigured"`
}

func fetchRemoteStatus(r *http.Request, url string) (remoteStatus, error) {
	var status remoteStatus
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		return status, err
	}
	resp, err := statusClient.Do(req)
	if err != nil {
		return status, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, err
	}
	return status, nil
}
