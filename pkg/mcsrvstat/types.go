package mcsrvstat

import (
	"encoding/json"
	"time"
)

// ServerStatus is the normalized result of a status lookup.
//
// Everything except Online is optional: the upstream API omits sections
// when a server is offline or when data is edition-specific (gamemode and
// serverid exist only for Bedrock, plugins and mods only for modded Java
// servers). Absent sections stay nil rather than decaying to zero values,
// so Online == false always implies nil Players, Version and Motd.
//
// Raw retains the full upstream payload keyed by field name, including
// keys this library does not model yet.
type ServerStatus struct {
	Online   bool   `json:"online"`
	IP       string `json:"ip,omitempty"`
	Port     int    `json:"port,omitempty"`
	Hostname string `json:"hostname,omitempty"`

	Version  *string   `json:"version,omitempty"`
	Software *string   `json:"software,omitempty"`
	Protocol *Protocol `json:"protocol,omitempty"`

	Players *Players `json:"players,omitempty"`
	Motd    *Motd    `json:"motd,omitempty"`
	Info    *Motd    `json:"info,omitempty"`
	Map     *Motd    `json:"map,omitempty"`

	// Icon is the server icon as a base64 data URI.
	Icon *string `json:"icon,omitempty"`

	// Bedrock-only fields.
	Gamemode *string `json:"gamemode,omitempty"`
	ServerID *string `json:"serverid,omitempty"`

	EULABlocked *bool `json:"eula_blocked,omitempty"`

	Plugins []Component `json:"plugins,omitempty"`
	Mods    []Component `json:"mods,omitempty"`

	Debug *Debug `json:"debug,omitempty"`

	// Latency is the round-trip time of the upstream request that produced
	// this status. Results served from cache report the original request.
	Latency time.Duration `json:"-"`

	// RetrievedAt is when the upstream request completed.
	RetrievedAt time.Time `json:"-"`

	// Raw is the unmodified upstream payload, field by field. Unknown keys
	// land here untouched for forward compatibility.
	Raw map[string]json.RawMessage `json:"-"`
}

// Protocol identifies the server's wire protocol.
type Protocol struct {
	Version int     `json:"version"`
	Name    *string `json:"name,omitempty"`
}

// Players holds the player counts and, when the server exposes it, a
// sample of online players in upstream order.
type Players struct {
	Online int      `json:"online"`
	Max    int      `json:"max"`
	List   []Player `json:"list,omitempty"`
}

// Player is one entry of the online-player sample.
type Player struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// Motd is a server banner in its three upstream renderings: raw keeps the
// § formatting codes, clean strips them, html carries markup.
type Motd struct {
	Raw   Lines `json:"raw,omitempty"`
	Clean Lines `json:"clean,omitempty"`
	HTML  Lines `json:"html,omitempty"`
}

// Component is a named plugin or mod with its version.
type Component struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Debug mirrors the upstream debug block describing how the status was
// obtained (ping vs. query, SRV resolution, upstream cache state).
type Debug struct {
	Ping          bool  `json:"ping"`
	Query         bool  `json:"query"`
	SRV           bool  `json:"srv"`
	QueryMismatch bool  `json:"querymismatch"`
	IPInSRV       bool  `json:"ipinsrv"`
	CNameInSRV    bool  `json:"cnameinsrv"`
	AnimatedMotd  bool  `json:"animatedmotd"`
	CacheHit      bool  `json:"cachehit"`
	CacheTime     int64 `json:"cachetime"`
	CacheExpire   int64 `json:"cacheexpire"`
	APIVersion    int   `json:"apiversion"`
}

// Lines is a multi-line upstream text field. The status API has served
// both a single string and an array of per-line strings for these fields
// across versions; both forms decode into Lines.
type Lines []string

// UnmarshalJSON accepts either a JSON array of strings or a single string.
func (l *Lines) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = Lines{one}
	return nil
}
