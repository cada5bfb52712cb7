package netease

// QRKeyResponse mirrors /login/qr/key.
type QRKeyResponse struct {
	Code int       `json:"code"`
	Data QRKeyData `json:"data"`
}

// QRKeyData carries the issued key.
type QRKeyData struct {
	Code   int    `json:"code"`
	UniKey string `json:"unikey"`
}

// QRCreateResponse mirrors /login/qr/create.
type QRCreateResponse struct {
	Code int          `json:"code"`
	Data QRCreateData `json:"data"`
}

// QRCreateData holds the code in either form. QRImg is a data URI when the
// request set qrimg=true.
type QRCreateData struct {
	QRURL string `json:"qrurl"`
	QRImg string `json:"qrimg"`
}

// QRCheckResponse mirrors /login/qr/check. Cookie is only present at 803.
type QRCheckResponse struct {
	Code    int
	Message string
	Cookie  string
}

type qrCheckPayload struct {
	Code    *int   `json:"code"`
	Message string `json:"message"`
	Cookie  string `json:"cookie"`
}

// AccountResponse mirrors /user/account. Profile is null for accounts that
// never set one up.
type AccountResponse struct {
	Code    int          `json:"code"`
	Account *AccountInfo `json:"account"`
	Profile *Profile     `json:"profile"`
}

// AccountInfo is the account half of /user/account.
type AccountInfo struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
}

// Profile is the public profile half of /user/account.
type Profile struct {
	UserID    int64  `json:"userId"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
}

// UserID returns the best available account id.
func (a AccountResponse) UserID() int64 {
	if a.Profile != nil && a.Profile.UserID != 0 {
		return a.Profile.UserID
	}
	if a.Account != nil {
		return a.Account.ID
	}
	return 0
}

// Nickname returns the profile nickname, empty when there is no profile.
func (a AccountResponse) Nickname() string {
	if a.Profile == nil {
		return ""
	}
	return a.Profile.Nickname
}
