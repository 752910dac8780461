package rtspgateway

// Config holds every knob enumerated for the control plane. Zero-value
// fields are filled in by ApplyDefaults.
type Config struct {
	// Port is the TCP control port.
	Port int `yaml:"port"`

	// MaximumClients caps the number of simultaneously accepted Sessions.
	MaximumClients int `yaml:"maximumClients"`

	// ReceiveTimeoutMs / SendTimeoutMs bound a single socket read or write.
	ReceiveTimeoutMs int `yaml:"receiveTimeoutMs"`
	SendTimeoutMs    int `yaml:"sendTimeoutMs"`

	// ClientInactivityTimeoutSeconds is the Session idle threshold enforced
	// by the maintenance loop; -1 disables it.
	ClientInactivityTimeoutSeconds int `yaml:"clientInactivityTimeoutSeconds"`

	// RequireUserAgent rejects any request missing a User-Agent header.
	RequireUserAgent bool `yaml:"requireUserAgent"`

	// RequireRangeHeader rejects a PLAY request missing a Range header.
	RequireRangeHeader bool `yaml:"requireRangeHeader"`

	// ServerName is advertised in the Server: response header.
	ServerName string `yaml:"serverName"`

	// MinimumUdpPort / MaximumUdpPort bound the UDP media port pool.
	MinimumUdpPort int `yaml:"minimumUdpPort"`
	MaximumUdpPort int `yaml:"maximumUdpPort"`

	// EnableHTTP turns on the base64 HTTP tunnel (and WebSocket upgrade) on
	// the given port; 0 disables it.
	EnableHTTP int `yaml:"enableHttp"`

	// EnableUDP turns on the standalone UDP RTSP listener on the given
	// port; 0 disables it.
	EnableUDP   int  `yaml:"enableUdp"`
	EnableUDPv6 bool `yaml:"enableUdpIPv6"`

	// MaintenanceIntervalSeconds is how often the maintenance sweep runs.
	MaintenanceIntervalSeconds int `yaml:"maintenanceIntervalSeconds"`

	// Sources lists the upstream sources to register at startup.
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig describes one upstream Source entry in the YAML config.
type SourceConfig struct {
	Name       string   `yaml:"name"`
	Aliases    []string `yaml:"aliases"`
	ForceTCP   bool     `yaml:"forceTcp"`
	AuthScheme string   `yaml:"authScheme"` // "", "basic" or "digest"
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
}

// BuildSource constructs a Source from this config entry, backed by a
// nullPuller since no concrete upstream RTSP client ships in this module.
func (sc SourceConfig) BuildSource() *Source {
	src := NewSource(sc.Name, sc.Aliases, nullPuller{})
	src.ForceTCP = sc.ForceTCP

	switch sc.AuthScheme {
	case "basic":
		src.AuthScheme = AuthSchemeBasic
	case "digest":
		src.AuthScheme = AuthSchemeDigest
	default:
		src.AuthScheme = AuthSchemeNone
	}

	if sc.Username != "" {
		src.Credential = &Credential{User: sc.Username, Pass: sc.Password}
	}

	return src
}

// ApplyDefaults fills in every field left at its zero value.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 554
	}
	if c.MaximumClients == 0 {
		c.MaximumClients = 1024
	}
	if c.ReceiveTimeoutMs == 0 {
		c.ReceiveTimeoutMs = 1000
	}
	if c.SendTimeoutMs == 0 {
		c.SendTimeoutMs = 1000
	}
	if c.ClientInactivityTimeoutSeconds == 0 {
		c.ClientInactivityTimeoutSeconds = 60
	}
	if c.ServerName == "" {
		c.ServerName = "ASTI Media Server"
	}
	if c.MinimumUdpPort == 0 {
		c.MinimumUdpPort = 20000
	}
	if c.MaximumUdpPort == 0 {
		c.MaximumUdpPort = 20100
	}
	if c.MaintenanceIntervalSeconds == 0 {
		c.MaintenanceIntervalSeconds = 30
	}
}
