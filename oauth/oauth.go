package oauth

import "errors"

// Signer generates the headers that authorize one physical request
// attempt.
//
// params must contain every parameter transmitted in the query string
// or url-encoded body. Pass nil for multipart bodies, which are
// excluded from OAuth1 signatures.
type Signer interface {
	Sign(method, rawurl string, params map[string]string) (map[string]string, error)
}

// Credentials holds the application and user secrets in either OAuth1
// or bearer-token form.
type Credentials struct {
	ConsumerKey       string `yaml:"consumer_key" mapstructure:"consumer_key" validate:"required_without=BearerToken"`
	ConsumerSecret    string `yaml:"consumer_secret" mapstructure:"consumer_secret" validate:"required_with=ConsumerKey"`
	AccessToken       string `yaml:"access_token" mapstructure:"access_token"`
	AccessTokenSecret string `yaml:"access_token_secret" mapstructure:"access_token_secret"`
	BearerToken       string `yaml:"bearer_token" mapstructure:"bearer_token"`
}

// ErrNoCredentials indicates that neither OAuth1 nor bearer
// credentials were provided.
var ErrNoCredentials = errors.New("oauth: no usable credentials")

// Signer returns the signer matching the populated credential form.
// OAuth1 wins when both forms are present, matching the capabilities
// of the user-context API surface.
func (c Credentials) Signer() (Signer, error) {
	switch {
	case c.ConsumerKey != "":
		return NewOAuth1(c), nil
	case c.BearerToken != "":
		return NewBearer(c.BearerToken), nil
	default:
		return nil, ErrNoCredentials
	}
}
