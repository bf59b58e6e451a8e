package mcsrvstat

import (
	"encoding/json"
	"testing"

	"github.com/craftstat/craftstat/pkg/errors"
)

func TestNormalizeOfflineServer(t *testing.T) {
	st, err := Normalize([]byte(`{"online": false}`), EditionJava)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if st.Online {
		t.Error("Online = true, want false")
	}
	if st.Players != nil {
		t.Error("Players != nil for offline server")
	}
	if st.Version != nil {
		t.Error("Version != nil for offline server")
	}
	if st.Motd != nil {
		t.Error("Motd != nil for offline server")
	}
}

func TestNormalizeOfflineStripsLiveSections(t *testing.T) {
	// An offline body must not leak live sections even if the upstream
	// sends stale remnants.
	body := `{"online": false, "version": "1.20.1", "players": {"online": 3, "max": 10}, "motd": {"raw": ["x"]}}`
	st, err := Normalize([]byte(body), EditionJava)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if st.Players != nil || st.Version != nil || st.Motd != nil {
		t.Error("offline status carries live sections, want all nil")
	}
}

func TestNormalizeOnlineServer(t *testing.T) {
	body := `{
		"online": true,
		"ip": "203.0.113.7",
		"port": 25565,
		"hostname": "play.example.com",
		"version": "1.21.4",
		"protocol": {"version": 769, "name": "1.21.4"},
		"players": {"online": 5, "max": 20, "list": [{"name": "jeb_", "uuid": "853c80ef-3c37-49fd-aa49-938b674adae6"}]},
		"motd": {"raw": ["§aHi"], "clean": ["Hi"], "html": ["<span style=\"color: #55FF55\">Hi</span>"]},
		"icon": "data:image/png;base64,iVBORw0KGgo=",
		"debug": {"ping": true, "query": false, "srv": true, "cachehit": false, "apiversion": 3}
	}`
	st, err := Normalize([]byte(body), EditionJava)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if !st.Online {
		t.Fatal("Online = false, want true")
	}
	if st.Players == nil || st.Players.Online != 5 || st.Players.Max != 20 {
		t.Errorf("Players = %+v, want online=5 max=20", st.Players)
	}
	if len(st.Players.List) != 1 || st.Players.List[0].Name != "jeb_" {
		t.Errorf("Players.List = %+v, want one entry jeb_", st.Players.List)
	}
	if st.Version == nil || *st.Version != "1.21.4" {
		t.Errorf("Version = %v, want 1.21.4", st.Version)
	}
	if st.Motd == nil || len(st.Motd.Raw) != 1 || st.Motd.Raw[0] != "§aHi" {
		t.Errorf("Motd.Raw = %v, want [§aHi]", st.Motd)
	}
	if st.Motd.Clean[0] != "Hi" {
		t.Errorf("Motd.Clean = %v, want [Hi]", st.Motd.Clean)
	}
	if st.Protocol == nil || st.Protocol.Version != 769 {
		t.Errorf("Protocol = %+v, want version 769", st.Protocol)
	}
	if st.Icon == nil {
		t.Error("Icon = nil, want data URI")
	}
	if st.Debug == nil || !st.Debug.Ping || st.Debug.APIVersion != 3 {
		t.Errorf("Debug = %+v, want ping=true apiversion=3", st.Debug)
	}
}

func TestNormalizeMotdSingleStringForm(t *testing.T) {
	// Older upstream revisions served motd lines as a bare string.
	body := `{"online": true, "motd": {"raw": "§aHi", "clean": "Hi"}}`
	st, err := Normalize([]byte(body), EditionJava)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if st.Motd == nil || len(st.Motd.Raw) != 1 || st.Motd.Raw[0] != "§aHi" {
		t.Errorf("Motd.Raw = %v, want [§aHi]", st.Motd)
	}
	if st.Motd.Clean[0] != "Hi" {
		t.Errorf("Motd.Clean = %v, want [Hi]", st.Motd.Clean)
	}
}

func TestNormalizeBedrockFields(t *testing.T) {
	body := `{"online": true, "gamemode": "Survival", "serverid": "12345678", "version": "1.21.51"}`
	st, err := Normalize([]byte(body), EditionBedrock)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if st.Gamemode == nil || *st.Gamemode != "Survival" {
		t.Errorf("Gamemode = %v, want Survival", st.Gamemode)
	}
	if st.ServerID == nil || *st.ServerID != "12345678" {
		t.Errorf("ServerID = %v, want 12345678", st.ServerID)
	}
}

func TestNormalizeUnknownKeysRetained(t *testing.T) {
	body := `{"online": true, "some_future_field": {"nested": 42}}`
	st, err := Normalize([]byte(body), EditionJava)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	raw, ok := st.Raw["some_future_field"]
	if !ok {
		t.Fatal("unknown key missing from Raw passthrough")
	}
	var nested struct {
		Nested int `json:"nested"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil || nested.Nested != 42 {
		t.Errorf("Raw[some_future_field] = %s, want nested 42", raw)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>rate limited</html>`},
		{"not an object", `[1, 2, 3]`},
		{"missing online", `{"ip": "203.0.113.7"}`},
		{"online wrong type", `{"online": "yes"}`},
		{"players wrong type", `{"online": true, "players": "many"}`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.body), EditionJava)
			if err == nil {
				t.Fatal("Normalize() error = nil, want MALFORMED_RESPONSE")
			}
			if !errors.Is(err, errors.ErrCodeMalformedResponse) {
				t.Errorf("Normalize() code = %v, want MALFORMED_RESPONSE", errors.GetCode(err))
			}
		})
	}
}

func TestNormalizePluginsAndMods(t *testing.T) {
	body := `{"online": true, "plugins": [{"name": "EssentialsX", "version": "2.20.1"}], "mods": [{"name": "sodium", "version": "0.6.0"}]}`
	st, err := Normalize([]byte(body), EditionJava)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(st.Plugins) != 1 || st.Plugins[0].Name != "EssentialsX" {
		t.Errorf("Plugins = %+v", st.Plugins)
	}
	if len(st.Mods) != 1 || st.Mods[0].Version != "0.6.0" {
		t.Errorf("Mods = %+v", st.Mods)
	}
}
