package storage

// Logical record names
const (
	KeyMeetings     = "meetings"
	KeyPastMeetings = "past_meetings"
	KeyUserSession  = "user_session"
)

// Keys builds organisation-scoped storage keys.
// Changing the organisation id orphans records written under the old prefix.
type Keys struct {
	OrgID string
}

// Key returns "<org>_<name>"
func (k Keys) Key(name string) string {
	return k.OrgID + "_" + name
}

func (k Keys) Meetings() string {
	return k.Key(KeyMeetings)
}

func (k Keys) PastMeetings() string {
	return k.Key(KeyPastMeetings)
}

func (k Keys) UserSession() string {
	return k.Key(KeyUserSession)
}
