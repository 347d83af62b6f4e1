package models

// AccessGranted is the only access value that authenticates a session.
const AccessGranted = "granted"

// LoginResponse captures the result of POST /api/login.
type LoginResponse struct {
	Access string `json:"access"`
}

// Granted reports whether the appliance accepted the credentials.
func (r LoginResponse) Granted() bool {
	return r.Access == AccessGranted
}
