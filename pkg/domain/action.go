package domain

// ActionRequest represents a side-effect the service asks the host to perform.
type ActionRequest struct {
	Type    string `json:"type"`
	UserID  int64  `json:"user_id,omitempty"`
	Payload any    `json:"payload"`
}

// Standard Action Types
const (
	// ActionSendMessage delivers an external message.
	// Payload: MessagePayload
	ActionSendMessage = "SEND_MESSAGE"

	// ActionNotifyAdmin tells the assignee about a new admin task.
	// Payload: AdminTaskPayload
	ActionNotifyAdmin = "NOTIFY_ADMIN"

	// ActionProvisionAccount creates an account in a third party.
	// Payload: ProvisionPayload
	ActionProvisionAccount = "PROVISION_ACCOUNT"

	// ActionSendCredentials mails the login credentials to a new hire.
	// Payload: CredentialsPayload
	ActionSendCredentials = "SEND_CREDENTIALS"
)

// MessagePayload is the payload of ActionSendMessage.
type MessagePayload struct {
	MessageID   int64  `json:"message_id"`
	Channel     string `json:"channel"`
	RecipientID int64  `json:"recipient_id"`
	Email       string `json:"email,omitempty"`
	SlackUserID string `json:"slack_user_id,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Content     string `json:"content"`
}

// AdminTaskPayload is the payload of ActionNotifyAdmin.
type AdminTaskPayload struct {
	AdminTaskID int64  `json:"admin_task_id"`
	Channel     string `json:"channel"`
	Email       string `json:"email,omitempty"`
	SlackUser   string `json:"slack_user,omitempty"`
	Name        string `json:"name"`
}

// ProvisionPayload is the payload of ActionProvisionAccount.
type ProvisionPayload struct {
	ProvisionID     int64          `json:"provision_id"`
	IntegrationID   int64          `json:"integration_id"`
	IntegrationType string         `json:"integration_type"`
	Data            map[string]any `json:"data"`
}

// CredentialsPayload is the payload of ActionSendCredentials.
type CredentialsPayload struct {
	Email string `json:"email"`
}
