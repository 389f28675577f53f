package api

// Session is the authenticated context every request is issued with.
// It is obtained from session.Manager.Current and passed explicitly.
type Session struct {
	Token    string `toml:"token"`
	UserID   int64  `toml:"user_id,omitempty"`
	Username string `toml:"username,omitempty"`
}

// Valid reports whether the session carries a token.
func (s Session) Valid() bool {
	return s.Token != ""
}
