package model

// Collection names served by the store.
const (
	CollectionEvents        = "events"
	CollectionUpdates       = "updates"
	CollectionNotifications = "notifications"
	CollectionUsers         = "users"
	CollectionAdmins        = "admins"
)

// Severity values shared by updates and notifications.
const (
	TypeInfo    = "info"
	TypeWarning = "warning"
	TypeSuccess = "success"
)

// ValidType reports whether t is one of the known severity values.
func ValidType(t string) bool {
	switch t {
	case TypeInfo, TypeWarning, TypeSuccess:
		return true
	}
	return false
}

// Event is a campus event published by an admin.
type Event struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Update is an announcement shown next to events. Older records carry the
// body in Message instead of Description.
type Update struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Message     string `json:"message,omitempty"`
	Type        string `json:"type"`
	Time        string `json:"time"`
}

// Body returns the announcement text whichever field holds it.
func (u Update) Body() string {
	if u.Description != "" {
		return u.Description
	}
	return u.Message
}

// Notification is a short admin message. Read is never written back to the store.
type Notification struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Time    string `json:"time"`
	Read    bool   `json:"read"`
}

// User is a registered student.
type User struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	CollegeID string `json:"collegeId"`
	Password  string `json:"password,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// AdminLogin is the audit row written on every successful admin login.
type AdminLogin struct {
	ID         string `json:"id,omitempty"`
	Username   string `json:"username"`
	LoggedInAt string `json:"loggedInAt"`
}

// Topic is a discussion forum thread. Topics never leave the portal process.
type Topic struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Replies  int    `json:"replies"`
	Time     string `json:"time"`
}
