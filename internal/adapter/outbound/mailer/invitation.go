package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/port/outbound"
	"github.com/romitgit/tc-project-service/internal/utils/requestctx"
)

// DefaultTopic is the bus topic consumed by the platform email service.
const DefaultTopic = "external.action.email"

// Config contains invitation mailer configuration.
type Config struct {
	Topic      string
	TemplateID string
	AppURL     string
}

// InvitationMailer implements outbound.InvitationMailerPort by publishing an
// email action to the bus. Delivery is owned by the email service.
type InvitationMailer struct {
	publisher  outbound.EventPublisherPort
	topic      string
	templateID string
	appURL     string
}

// NewInvitationMailer creates a new invitation mailer.
func NewInvitationMailer(publisher outbound.EventPublisherPort, cfg *Config) *InvitationMailer {
	if cfg == nil {
		cfg = &Config{}
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return &InvitationMailer{
		publisher:  publisher,
		topic:      topic,
		templateID: cfg.TemplateID,
		appURL:     strings.TrimRight(cfg.AppURL, "/"),
	}
}

// Compile-time interface check
var _ outbound.InvitationMailerPort = (*InvitationMailer)(nil)

// emailAction is the payload understood by the email service.
type emailAction struct {
	Data       invitationData `json:"data"`
	TemplateID string         `json:"sendgrid_template_id,omitempty"`
	Recipients []string       `json:"recipients"`
	Version    string         `json:"version"`
}

type invitationData struct {
	ProjectID int64                   `json:"projectId"`
	InviteID  int64                   `json:"inviteId"`
	Role      model.ProjectMemberRole `json:"role"`
	InvitedBy int64                   `json:"invitedBy"`
	JoinURL   string                  `json:"joinUrl,omitempty"`
}

// SendInvitation publishes the invitation email for an unregistered invitee.
func (m *InvitationMailer) SendInvitation(ctx context.Context, projectID int64, invite *model.ProjectMemberInvite) error {
	if invite == nil || invite.Email == nil || *invite.Email == "" {
		return errors.New("invite has no email recipient")
	}

	action := emailAction{
		Data: invitationData{
			ProjectID: projectID,
			InviteID:  invite.ID,
			Role:      invite.Role,
			InvitedBy: invite.CreatedBy,
		},
		TemplateID: m.templateID,
		Recipients: []string{*invite.Email},
		Version:    "v3",
	}
	if m.appURL != "" {
		action.Data.JoinURL = fmt.Sprintf("%s/projects/%d", m.appURL, projectID)
	}

	return m.publisher.Publish(ctx, m.topic, action, requestctx.RequestID(ctx))
}
