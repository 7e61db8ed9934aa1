package notifyreviewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	awsclient "proposal-workers/internal/common/aws"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/common/validation"
	"proposal-workers/internal/engine/redflags"
)

const (
	TaskType = "notify-reviewer"
)

var (
	ErrInvalidInput           = errors.New("INVALID_INPUT")
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	awsCfg, err := awsclient.NewConfig(context.Background(), config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: awsclient.NewSESClient(awsCfg),
		snsClient: awsclient.NewSNSClient(awsCfg),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "INVALID_INPUT"
		retries := int32(0)
		if errors.Is(err, ErrNotificationSendFailed) {
			errorCode = "NOTIFICATION_SEND_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.ProposalID == "" {
		return nil, fmt.Errorf("%w: proposalId is required", ErrInvalidInput)
	}
	if !validation.ValidateEmail(input.ReviewerEmail) {
		return nil, fmt.Errorf("%w: reviewer email %q is not valid", ErrInvalidInput, input.ReviewerEmail)
	}

	subject, body := buildDigest(input)
	critical := countCritical(input.Flags)

	sentAt := time.Now().UTC().Format(time.RFC3339)
	notificationID := uuid.New().String()

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled {
		if err := h.sendEmail(ctx, input.ReviewerEmail, subject, body); err != nil {
			return nil, fmt.Errorf("%w: email to %s: %v", ErrNotificationSendFailed, input.ReviewerEmail, err)
		}
		emailSent = true
	}

	// SMS is reserved for proposals that cannot ship as-is.
	if h.config.SMSEnabled && input.ReviewerPhone != "" && critical > 0 {
		if err := h.sendSMS(ctx, input.ReviewerPhone, smsText(input, critical)); err != nil {
			return nil, fmt.Errorf("%w: SMS to %s: %v", ErrNotificationSendFailed, input.ReviewerPhone, err)
		}
		smsSent = true
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	h.logger.Info("reviewer notified", map[string]interface{}{
		"proposalId":    input.ProposalID,
		"flagCount":     len(input.Flags),
		"criticalCount": critical,
		"emailSent":     emailSent,
		"smsSent":       smsSent,
	})

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		EmailSent:      emailSent,
		SMSSent:        smsSent,
		SentAt:         sentAt,
	}, nil
}

// buildDigest renders the review email: flags grouped in their severity
// order, each with its message and recommended actions.
func buildDigest(input *Input) (subject, body string) {
	project := input.ProjectName
	if project == "" {
		project = input.ProposalID
	}

	if len(input.Flags) == 0 {
		subject = fmt.Sprintf("Proposal ready for review: %s", project)
		body = fmt.Sprintf("Proposal %s passed the audit with no findings.\n", input.ProposalID)
		return subject, body
	}

	subject = fmt.Sprintf("Proposal review required: %s (%d findings)", project, len(input.Flags))

	var b strings.Builder
	fmt.Fprintf(&b, "Proposal %s raised %d findings during audit.\n\n", input.ProposalID, len(input.Flags))
	for i, flag := range input.Flags {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, strings.ToUpper(flag.Severity), flag.Title)
		fmt.Fprintf(&b, "   %s\n", flag.Message)
		for _, action := range flag.Actions {
			fmt.Fprintf(&b, "   - %s\n", action)
		}
	}
	return subject, b.String()
}

func smsText(input *Input, critical int) string {
	project := input.ProjectName
	if project == "" {
		project = input.ProposalID
	}
	return fmt.Sprintf("Proposal %s has %d critical audit findings and needs immediate review.", project, critical)
}

func countCritical(flags []redflags.SmartFlag) int {
	n := 0
	for _, flag := range flags {
		if flag.Severity == redflags.SeverityCritical {
			n++
		}
	}
	return n
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
