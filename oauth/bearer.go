package oauth

// Bearer signs requests with a static application-only bearer token.
type Bearer struct {
	token string
}

// NewBearer creates a bearer-token signer.
func NewBearer(token string) *Bearer {
	return &Bearer{token: token}
}

// Sign returns the bearer Authorization header. The request parameters
// are not part of the signature.
func (b *Bearer) Sign(method, rawurl string, params map[string]string) (map[string]string, error) {
	return map[string]string{"Authorization": "Bearer " + b.token}, nil
}
