package payments

import (
	"net/url"
)

// ReturnRedirect is where the customer lands after a confirmation that needed
// no further action: the return URL with the intent identifiers appended.
func ReturnRedirect(returnURL string, in Intent) (string, error) {
	if in.NextActionURL != "" {
		return in.NextActionURL, nil
	}
	u, err := url.Parse(returnURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("payment_intent", in.ID)
	q.Set("payment_intent_client_secret", in.ClientSecret)
	q.Set("redirect_status", in.Status)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
