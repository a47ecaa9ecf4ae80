package stremio

// Descriptor is an installed addon: its manifest, transport URL, and
// install flags. Two descriptors are equal iff their TransportURL match:
// that's the addon identity the rest of the system keys off of.
type Descriptor struct {
	Manifest      Manifest        `json:"manifest"`
	TransportURL  string          `json:"transportUrl"`
	Flags         DescriptorFlags `json:"flags"`
}

type DescriptorFlags struct {
	Official  bool `json:"official,omitempty"`
	Protected bool `json:"protected,omitempty"`
}

// AuthUser is the account identity returned by the account API.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Auth pairs an account API key with the user it authenticates.
type Auth struct {
	Key  string   `json:"key"`
	User AuthUser `json:"user"`
}

// Settings holds user-configurable player/addon preferences, part of
// Profile but itemized separately per SPEC_FULL.md's supplemented-features
// section (recovered from original_source's settings model).
type Settings struct {
	InterfaceLanguage  string `json:"interfaceLanguage"`
	StreamingServerURL string `json:"streamingServerUrl"`
	BingeWatching      bool   `json:"bingeWatching"`
	PlayInBackground   bool   `json:"playInBackground"`
	HardwareDecoding   bool   `json:"hardwareDecoding"`
	SubtitlesLanguage  string `json:"subtitlesLanguage"`
	SubtitlesSize      int    `json:"subtitlesSize"`
	SeekTimeDuration   int    `json:"seekTimeDuration"`
}

// DefaultSettings returns the Settings a fresh/reset Profile carries.
func DefaultSettings() Settings {
	return Settings{
		InterfaceLanguage:  "eng",
		StreamingServerURL: "http://127.0.0.1:11470",
		BingeWatching:      true,
		SubtitlesLanguage:  "eng",
		SubtitlesSize:      100,
		SeekTimeDuration:   10000,
	}
}

// Profile is the user's identity, installed addons, and settings.
type Profile struct {
	Auth     *Auth        `json:"auth,omitempty"`
	Addons   []Descriptor `json:"addons"`
	Settings Settings     `json:"settings"`
}

// UID returns auth.user.id, or "" if not authenticated.
func (p Profile) UID() string {
	if p.Auth == nil {
		return ""
	}
	return p.Auth.User.ID
}

// FindAddon returns the installed descriptor with the given transport URL.
func (p Profile) FindAddon(transportURL string) (Descriptor, bool) {
	for _, d := range p.Addons {
		if d.TransportURL == transportURL {
			return d, true
		}
	}
	return Descriptor{}, false
}
