package mcsrvstat

import (
	"encoding/json"

	"github.com/craftstat/craftstat/pkg/errors"
)

// apiResponse mirrors the upstream v3 payload. Every section except online
// is optional; pointer fields distinguish "absent" from zero values.
type apiResponse struct {
	Online      bool        `json:"online"`
	IP          string      `json:"ip"`
	Port        int         `json:"port"`
	Hostname    string      `json:"hostname"`
	Version     *string     `json:"version"`
	Software    *string     `json:"software"`
	Protocol    *Protocol   `json:"protocol"`
	Players     *Players    `json:"players"`
	Motd        *Motd       `json:"motd"`
	Info        *Motd       `json:"info"`
	Map         *Motd       `json:"map"`
	Icon        *string     `json:"icon"`
	Gamemode    *string     `json:"gamemode"`
	ServerID    *string     `json:"serverid"`
	EULABlocked *bool       `json:"eula_blocked"`
	Plugins     []Component `json:"plugins"`
	Mods        []Component `json:"mods"`
	Debug       *Debug      `json:"debug"`
}

// Normalize converts a raw upstream body into a ServerStatus.
//
// The only structurally required key is "online"; a missing or non-boolean
// value, a non-JSON body, or a wrong-typed known section all fail with
// MALFORMED_RESPONSE. Unknown keys never fail normalization: the full
// payload is retained in the Raw map so callers can reach fields this
// library does not model yet.
//
// Offline servers yield a ServerStatus with nil Players, Version and Motd
// regardless of what else the body carried.
func Normalize(body []byte, edition Edition) (*ServerStatus, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedResponse, err, "upstream body is not a JSON object")
	}

	onlineRaw, ok := fields["online"]
	if !ok {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "upstream body missing required key %q", "online")
	}
	var online bool
	if err := json.Unmarshal(onlineRaw, &online); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedResponse, err, "upstream key %q is not a boolean", "online")
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedResponse, err, "upstream body failed schema validation")
	}

	st := &ServerStatus{
		Online:      online,
		IP:          resp.IP,
		Port:        resp.Port,
		Hostname:    resp.Hostname,
		Version:     resp.Version,
		Software:    resp.Software,
		Protocol:    resp.Protocol,
		Players:     resp.Players,
		Motd:        resp.Motd,
		Info:        resp.Info,
		Map:         resp.Map,
		Icon:        resp.Icon,
		Gamemode:    resp.Gamemode,
		ServerID:    resp.ServerID,
		EULABlocked: resp.EULABlocked,
		Plugins:     resp.Plugins,
		Mods:        resp.Mods,
		Debug:       resp.Debug,
		Raw:         fields,
	}

	if !online {
		// Offline implies the live sections are absent even if the body
		// carried stale remnants.
		st.Players = nil
		st.Version = nil
		st.Motd = nil
		st.Software = nil
		st.Protocol = nil
	}

	return st, nil
}
