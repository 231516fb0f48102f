package domain

// ActionCall is a single invocation of the dynamic entry point: the method name
// the caller used and the positional parameters it supplied.
type ActionCall struct {
	Method string `json:"method"`
	Params []any  `json:"params,omitempty"`
}

// Action returns the capitalized action token, e.g. "Publish".
func (c ActionCall) Action() string {
	return Capitalize(c.Method)
}
