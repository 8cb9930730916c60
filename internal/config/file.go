package config

import "time"

// Profile is a set of connection settings in the config file.
type Profile struct {
	// Server is the JobGuard server base URL.
	Server string `yaml:"server,omitempty"`

	// AdminUser overrides the admin username.
	AdminUser string `yaml:"admin_user,omitempty"`

	// Timeout is the per-request timeout, e.g. "30s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Proxy is a SOCKS5 proxy in "host:port" form.
	Proxy string `yaml:"proxy,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .jobguard configuration file.
type File struct {
	// Defaults applies to every profile unless overridden.
	Defaults Profile `yaml:"defaults,omitempty"`

	// Profiles maps a profile name to its settings.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// GetProfile returns the named profile merged over the defaults.
// An empty or unknown name yields the defaults alone; ok reports whether
// the name was found.
func (cf *File) GetProfile(name string) (Profile, bool) {
	result := cf.Defaults
	if result.Headers != nil {
		headers := make(map[string]string, len(result.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	if name == "" {
		return result, true
	}

	p, ok := cf.Profiles[name]
	if !ok {
		return result, false
	}

	if p.Server != "" {
		result.Server = p.Server
	}
	if p.AdminUser != "" {
		result.AdminUser = p.AdminUser
	}
	if p.Timeout > 0 {
		result.Timeout = p.Timeout
	}
	if p.Proxy != "" {
		result.Proxy = p.Proxy
	}
	if len(p.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(p.Headers))
		}
		for k, v := range p.Headers {
			result.Headers[k] = v
		}
	}

	return result, true
}
