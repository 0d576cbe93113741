package apperror

// Context carries request-scoped diagnostics attached to an Error.
// IPAddress and UserAgent are logged but never serialized into the
// response envelope.
type Context struct {
	RequestID string
	UserID    string
	Endpoint  string
	Method    string
	IPAddress string
	UserAgent string
	Extra     map[string]any
}

// merge overlays non-empty fields of other onto a copy of c.
func (c Context) merge(other Context) Context {
	if other.RequestID != "" {
		c.RequestID = other.RequestID
	}
	if other.UserID != "" {
		c.UserID = other.UserID
	}
	if other.Endpoint != "" {
		c.Endpoint = other.Endpoint
	}
	if other.Method != "" {
		c.Method = other.Method
	}
	if other.IPAddress != "" {
		c.IPAddress = other.IPAddress
	}
	if other.UserAgent != "" {
		c.UserAgent = other.UserAgent
	}
	if len(other.Extra) > 0 {
		merged := make(map[string]any, len(c.Extra)+len(other.Extra))
		for k, v := range c.Extra {
			merged[k] = v
		}
		for k, v := range other.Extra {
			merged[k] = v
		}
		c.Extra = merged
	}
	return c
}

// envelope renders the serializable subset of the context. Fields
// that identify the client machine are stripped here, always.
func (c Context) envelope() map[string]any {
	out := make(map[string]any)
	if c.RequestID != "" {
		out["request_id"] = c.RequestID
	}
	if c.UserID != "" {
		out["user_id"] = c.UserID
	}
	if c.Endpoint != "" {
		out["endpoint"] = c.Endpoint
	}
	if c.Method != "" {
		out["method"] = c.Method
	}
	for k, v := range c.Extra {
		if k == "ip_address" || k == "user_agent" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
